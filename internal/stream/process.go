package stream

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"ledger-pipeline/internal/ledgererr"
	"ledger-pipeline/internal/logging"
	"ledger-pipeline/internal/metrics"
	"ledger-pipeline/internal/models"
)

// Dispatcher is the seam between the stream processor and the router:
// Process never imports internal/router directly, so it can drive a
// router.Router or the synchronous single-account dispatcher behind
// ProcessSync.
type Dispatcher interface {
	Dispatch(tx models.Transaction)
}

var expectedHeader = []string{"type", "client", "tx", "amount"}

// Process reads r as a CSV stream with the header `type,client,tx,amount`,
// converts each row into a Transaction, and calls disp.Dispatch for
// each one, in file order. It returns the first fatal ParsingError
// encountered: any amount parse failure, or a missing amount on a
// deposit or withdrawal, aborts the stream.
func Process(r io.Reader, disp Dispatcher) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ledgererr.Wrap(ledgererr.KindParsing, err, "empty input, expected header %v", expectedHeader)
		}
		return ledgererr.Wrap(ledgererr.KindParsing, err, "failed to read header")
	}
	if err := checkHeader(header); err != nil {
		return err
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ledgererr.Wrap(ledgererr.KindParsing, err, "failed to read record")
		}

		rec, err := toRecord(row)
		if err != nil {
			metrics.ParseErrorsTotal.Inc()
			return err
		}

		tx, err := Convert(rec)
		if err != nil {
			metrics.ParseErrorsTotal.Inc()
			logging.Error("fatal parse error", err, map[string]interface{}{
				"type":   rec.Type,
				"client": rec.ClientID,
				"tx":     rec.TransactionID,
			})
			return err
		}

		metrics.RecordsParsed.Inc()
		disp.Dispatch(tx)
	}

	return nil
}

func checkHeader(got []string) error {
	trimmed := make([]string, len(got))
	for i, h := range got {
		trimmed[i] = strings.TrimSpace(strings.ToLower(h))
	}
	if len(trimmed) != len(expectedHeader) {
		return ledgererr.Wrap(ledgererr.KindParsing, nil, "unexpected header %v, want %v", got, expectedHeader)
	}
	for i, want := range expectedHeader {
		if trimmed[i] != want {
			return ledgererr.Wrap(ledgererr.KindParsing, nil, "unexpected header %v, want %v", got, expectedHeader)
		}
	}
	return nil
}

func toRecord(row []string) (TransactionRecord, error) {
	if len(row) < 3 {
		return TransactionRecord{}, ledgererr.Wrap(ledgererr.KindParsing, nil, "record %v has too few fields", row)
	}

	clientID, err := parseUint("client", row[1])
	if err != nil {
		return TransactionRecord{}, err
	}
	txID, err := parseUint("tx", row[2])
	if err != nil {
		return TransactionRecord{}, err
	}

	rec := TransactionRecord{
		Type:          strings.TrimSpace(row[0]),
		ClientID:      clientID,
		TransactionID: txID,
	}
	if len(row) >= 4 {
		rec.Amount = row[3]
	}
	return rec, nil
}

// syncDispatcher drives a single worker's worth of state synchronously,
// reusing the same Transaction conversion and transactor dispatch code
// as the async path, for fast table-driven tests that don't need
// goroutines.
type syncDispatcher struct {
	apply func(models.Transaction) error
	first error
}

func (d *syncDispatcher) Dispatch(tx models.Transaction) {
	if err := d.apply(tx); err != nil && d.first == nil {
		if lerr, ok := err.(*ledgererr.LedgerError); ok && (lerr.Kind.SurfacedAtDrain() || lerr.Kind.Fatal()) {
			d.first = lerr
		}
	}
}

// ProcessSync runs Process against a single account synchronously,
// applying each converted Transaction directly via apply (typically
// transactor.Apply bound to one *models.Account). It returns the first
// fatal parse error, or the first AccountLocked/IncompatibleTransaction
// error seen, matching Router.Drain's contract for a single client.
func ProcessSync(r io.Reader, apply func(models.Transaction) error) error {
	disp := &syncDispatcher{apply: apply}
	if err := Process(r, disp); err != nil {
		return err
	}
	return disp.first
}
