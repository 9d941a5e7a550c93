// Package ledgererr defines the error taxonomy produced by the ledger
// core: a typed kind plus a human message, so callers can branch on
// severity without string matching.
package ledgererr

import "fmt"

// Kind classifies a ledger error by severity.
type Kind string

const (
	// KindParsing is fatal: the input stream is malformed and the run aborts.
	KindParsing Kind = "PARSING_ERROR"

	// KindAccountLocked is recorded at drain and fails the whole run.
	KindAccountLocked Kind = "ACCOUNT_LOCKED"

	// KindIncompatibleTransaction is recorded at drain and fails the whole run.
	KindIncompatibleTransaction Kind = "INCOMPATIBLE_TRANSACTION"

	// KindInsufficientFund is a per-event no-op, never surfaced from drain.
	KindInsufficientFund Kind = "INSUFFICIENT_FUND"

	// KindNoTransactionFound is a per-event no-op, never surfaced from drain.
	KindNoTransactionFound Kind = "NO_TRANSACTION_FOUND"

	// KindInternal is fatal: an internal failure such as a deposit that
	// would overflow the available balance, or an unknown transaction kind.
	KindInternal Kind = "INTERNAL_ERROR"
)

// Fatal reports whether errors of this kind abort the run immediately
// (as opposed to being recorded at drain, or silently skipped).
func (k Kind) Fatal() bool {
	return k == KindParsing || k == KindInternal
}

// SurfacedAtDrain reports whether an error of this kind, seen by a
// worker, must be captured and returned as drain's result (the first
// one observed wins; see Router.Drain).
func (k Kind) SurfacedAtDrain() bool {
	return k == KindAccountLocked || k == KindIncompatibleTransaction
}

// LedgerError is the concrete error type returned by transactors, the
// account transactor, and the stream processor. It carries enough
// context (client/transaction id) for a caller to log or branch on
// without re-deriving it from the original Transaction.
type LedgerError struct {
	Kind      Kind
	Message   string
	ClientID  uint16
	TxID      uint32
	HasTxCtx  bool
	Cause     error
}

func (e *LedgerError) Error() string {
	if e.HasTxCtx {
		return fmt.Sprintf("%s: %s (client=%d tx=%d)", e.Kind, e.Message, e.ClientID, e.TxID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *LedgerError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ledgererr.AccountLocked) style sentinel
// comparisons work by Kind, ignoring message and context.
func (e *LedgerError) Is(target error) bool {
	other, ok := target.(*LedgerError)
	if !ok {
		return false
	}
	if other.Message != "" {
		return false
	}
	return e.Kind == other.Kind
}

// sentinel constructs a zero-context LedgerError usable purely as an
// errors.Is comparison target, e.g. errors.Is(err, ledgererr.AccountLocked).
func sentinel(k Kind) *LedgerError { return &LedgerError{Kind: k} }

var (
	AccountLocked           = sentinel(KindAccountLocked)
	IncompatibleTransaction = sentinel(KindIncompatibleTransaction)
	InsufficientFund        = sentinel(KindInsufficientFund)
	NoTransactionFound      = sentinel(KindNoTransactionFound)
)

// New builds a LedgerError tagged with the offending client/transaction.
func New(kind Kind, clientID uint16, txID uint32, format string, args ...interface{}) *LedgerError {
	return &LedgerError{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		ClientID: clientID,
		TxID:     txID,
		HasTxCtx: true,
	}
}

// Wrap builds an untagged LedgerError (no single transaction context,
// e.g. a parse error or a channel send failure).
func Wrap(kind Kind, cause error, format string, args ...interface{}) *LedgerError {
	return &LedgerError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}
