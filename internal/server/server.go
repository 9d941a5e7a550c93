// Package server optionally exposes /metrics and /healthz while a long
// ledger replay is running: a gin engine wrapping a *http.Server with
// explicit timeouts and a graceful Shutdown(ctx). The server's whole
// lifetime is one pipeline run: it starts when the run starts and is
// shut down by the pipeline itself once Drain returns, rather than on
// a SIGINT/SIGTERM signal handler.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ledger-pipeline/internal/logging"
)

// MetricsServer is the optional /metrics + /healthz surface.
type MetricsServer struct {
	httpServer *http.Server
}

// Start launches a MetricsServer bound to addr and returns once it is
// accepting connections, or returns (nil, nil) if addr is empty (the
// default: disabled).
func Start(addr string) (*MetricsServer, error) {
	if addr == "" {
		return nil, nil
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind metrics listener on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s := &MetricsServer{httpServer: httpServer}

	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Error("metrics server failed", err, nil)
		}
	}()

	logging.Info("metrics server listening", map[string]interface{}{"address": listener.Addr().String()})
	return s, nil
}

// Shutdown gracefully stops the metrics server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
