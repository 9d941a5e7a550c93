package ledgererr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"ledger-pipeline/internal/ledgererr"
)

func TestSentinelComparison(t *testing.T) {
	err := ledgererr.New(ledgererr.KindAccountLocked, 7, 42, "account is locked")

	assert.True(t, errors.Is(err, ledgererr.AccountLocked))
	assert.False(t, errors.Is(err, ledgererr.InsufficientFund))
}

func TestFatalAndSurfacedAtDrain(t *testing.T) {
	assert.True(t, ledgererr.KindParsing.Fatal())
	assert.True(t, ledgererr.KindInternal.Fatal())
	assert.False(t, ledgererr.KindAccountLocked.Fatal())

	assert.True(t, ledgererr.KindAccountLocked.SurfacedAtDrain())
	assert.True(t, ledgererr.KindIncompatibleTransaction.SurfacedAtDrain())
	assert.False(t, ledgererr.KindInsufficientFund.SurfacedAtDrain())
	assert.False(t, ledgererr.KindNoTransactionFound.SurfacedAtDrain())
}

func TestErrorMessageIncludesContext(t *testing.T) {
	err := ledgererr.New(ledgererr.KindNoTransactionFound, 1, 2, "no such deposit")
	assert.Contains(t, err.Error(), "client=1")
	assert.Contains(t, err.Error(), "tx=2")
}
