// Package stream implements the stream processor: it reads CSV records
// with a `type,client,tx,amount` header, converts each to a
// models.Transaction, and hands it to a dispatcher.
package stream

import (
	"strconv"
	"strings"

	"ledger-pipeline/internal/amount"
	"ledger-pipeline/internal/ledgererr"
	"ledger-pipeline/internal/models"
)

// TransactionRecord is the as-deserialized CSV row, before conversion
// to a domain Transaction. This struct and Convert are the seam the
// stream processor uses between raw CSV text and validated domain
// values.
type TransactionRecord struct {
	Type          string
	ClientID      uint64
	TransactionID uint64
	// Amount is the raw field text; empty string means "absent".
	Amount string
}

var recordKinds = map[string]models.TransactionKind{
	"deposit":    models.KindDeposit,
	"withdrawal": models.KindWithdrawal,
	"dispute":    models.KindDispute,
	"resolve":    models.KindResolve,
	"chargeback": models.KindChargeback,
}

// Convert turns one deserialized record into a domain Transaction:
// deposit/withdrawal require an amount, the other three require it
// absent or ignore it if present.
func Convert(rec TransactionRecord) (models.Transaction, error) {
	typ := strings.TrimSpace(strings.ToLower(rec.Type))
	kind, ok := recordKinds[typ]
	if !ok {
		return models.Transaction{}, ledgererr.Wrap(ledgererr.KindParsing, nil,
			"unknown transaction type %q", rec.Type)
	}

	if rec.ClientID > 0xFFFF {
		return models.Transaction{}, ledgererr.Wrap(ledgererr.KindParsing, nil,
			"client id %d out of range", rec.ClientID)
	}
	if rec.TransactionID > 0xFFFFFFFF {
		return models.Transaction{}, ledgererr.Wrap(ledgererr.KindParsing, nil,
			"transaction id %d out of range", rec.TransactionID)
	}

	tx := models.Transaction{
		ClientID:      models.ClientID(rec.ClientID),
		TransactionID: models.TransactionID(rec.TransactionID),
		Kind:          kind,
	}

	switch kind {
	case models.KindDeposit, models.KindWithdrawal:
		trimmed := strings.TrimSpace(rec.Amount)
		if trimmed == "" {
			return models.Transaction{}, ledgererr.Wrap(ledgererr.KindParsing, nil,
				"%s record %d missing required amount", typ, rec.TransactionID)
		}
		amt, err := amount.Parse(trimmed)
		if err != nil {
			return models.Transaction{}, ledgererr.Wrap(ledgererr.KindParsing, err,
				"%s record %d: %v", typ, rec.TransactionID, err)
		}
		tx.Amount = amt
	default:
		// dispute/resolve/chargeback: amount is absent or ignored.
	}

	return tx, nil
}

// parseUint is a small helper used by the CSV reader to turn a
// whitespace-trimmed numeric field into a uint64, or report which
// field failed.
func parseUint(field, value string) (uint64, error) {
	trimmed := strings.TrimSpace(value)
	v, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, ledgererr.Wrap(ledgererr.KindParsing, err, "invalid %s %q", field, value)
	}
	return v, nil
}
