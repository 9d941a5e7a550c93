// Command ledger replays a CSV stream of payment-engine events and
// writes the final per-client account summary to standard output.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"ledger-pipeline/internal/config"
	"ledger-pipeline/internal/logging"
	"ledger-pipeline/internal/router"
	"ledger-pipeline/internal/runid"
	"ledger-pipeline/internal/server"
	"ledger-pipeline/internal/stream"
	"ledger-pipeline/internal/summary"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out *os.File) int {
	fs := flag.NewFlagSet("ledger", flag.ContinueOnError)
	metricsAddr := fs.String("metrics-addr", "", "if set, serve /metrics and /healthz on this address for the run's duration")
	logLevel := fs.String("log-level", "", "override LEDGER_LOG_LEVEL (debug|info|warn|error)")
	logFormat := fs.String("log-format", "", "override LEDGER_LOG_FORMAT (text|json)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ledger [flags] <input.csv>")
		return 2
	}
	inputPath := fs.Arg(0)

	cfg := config.Load()
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}

	logging.Init(cfg.Logging.Level, cfg.Logging.Format)
	logging.SetRunID(runid.New())

	metricsServer, err := server.Start(cfg.Metrics.Addr)
	if err != nil {
		logging.Error("failed to start metrics server", err, nil)
		return 1
	}
	if metricsServer != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(ctx)
		}()
	}

	f, err := os.Open(inputPath)
	if err != nil {
		logging.Error("failed to open input", err, map[string]interface{}{"path": inputPath})
		fmt.Fprintf(os.Stderr, "ledger: %v\n", err)
		return 1
	}
	defer f.Close()

	r := router.New(cfg.Router.InboxCapacity)

	logging.Info("stream processing started", map[string]interface{}{"input": inputPath})
	if err := stream.Process(f, r); err != nil {
		logging.Error("fatal stream error", err, nil)
		fmt.Fprintf(os.Stderr, "ledger: %v\n", err)
		return 1
	}

	if err := r.Drain(); err != nil {
		logging.Error("pipeline failed during drain", err, nil)
		fmt.Fprintf(os.Stderr, "ledger: %v\n", err)
		return 1
	}
	logging.Info("drain complete", nil)

	rows := summary.FromAccounts(r.Accounts())
	if err := summary.Write(out, rows); err != nil {
		logging.Error("failed to write summary", err, nil)
		fmt.Fprintf(os.Stderr, "ledger: %v\n", err)
		return 1
	}

	return 0
}
