package transactor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-pipeline/internal/amount"
	"ledger-pipeline/internal/ledgererr"
	"ledger-pipeline/internal/models"
	"ledger-pipeline/internal/transactor"
)

func mustAmount(t *testing.T, s string) amount.Amount {
	t.Helper()
	a, err := amount.Parse(s)
	require.NoError(t, err)
	return a
}

func newAccount() *models.Account {
	return models.NewAccount(1)
}

func TestDeposit(t *testing.T) {
	acc := newAccount()
	amt := mustAmount(t, "10.0000")

	status, err := transactor.Deposit(acc, 1, amt)
	require.NoError(t, err)
	assert.Equal(t, transactor.Transacted, status)
	assert.Equal(t, "10.0000", acc.Snapshot.Available.String())

	// Duplicate with the same amount is a no-op success.
	status, err = transactor.Deposit(acc, 1, amt)
	require.NoError(t, err)
	assert.Equal(t, transactor.Duplicate, status)
	assert.Equal(t, "10.0000", acc.Snapshot.Available.String())

	// Same id, different amount: incompatible.
	_, err = transactor.Deposit(acc, 1, mustAmount(t, "11.0000"))
	require.Error(t, err)
	var lerr *ledgererr.LedgerError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ledgererr.KindIncompatibleTransaction, lerr.Kind)
	// Unchanged on failure.
	assert.Equal(t, "10.0000", acc.Snapshot.Available.String())
}

func TestDepositOverflowIsInternalError(t *testing.T) {
	acc := newAccount()
	acc.Snapshot.Available = amount.Amount(1<<63 - 1)

	_, err := transactor.Deposit(acc, 1, mustAmount(t, "1.0000"))
	require.Error(t, err)
	var lerr *ledgererr.LedgerError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ledgererr.KindInternal, lerr.Kind)
	assert.Equal(t, amount.Amount(1<<63-1), acc.Snapshot.Available)
}

func TestDepositOnLockedAccountDoesNotMutate(t *testing.T) {
	acc := newAccount()
	acc.Status = models.Locked

	before := acc.Snapshot
	_, err := transactor.Deposit(acc, 99, mustAmount(t, "5.0000"))
	require.Error(t, err)
	assert.True(t, err.(*ledgererr.LedgerError).Kind == ledgererr.KindAccountLocked)
	assert.Equal(t, before, acc.Snapshot)
}

func TestWithdrawalInsufficientFunds(t *testing.T) {
	acc := newAccount()
	_, err := transactor.Deposit(acc, 1, mustAmount(t, "3.0000"))
	require.NoError(t, err)

	_, err = transactor.Withdrawal(acc, 2, mustAmount(t, "5.0000"))
	require.Error(t, err)
	var lerr *ledgererr.LedgerError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ledgererr.KindInsufficientFund, lerr.Kind)
	assert.Equal(t, "3.0000", acc.Snapshot.Available.String())
}

func TestWithdrawalSuccess(t *testing.T) {
	acc := newAccount()
	_, err := transactor.Deposit(acc, 1, mustAmount(t, "10.0000"))
	require.NoError(t, err)

	status, err := transactor.Withdrawal(acc, 2, mustAmount(t, "4.0000"))
	require.NoError(t, err)
	assert.Equal(t, transactor.Transacted, status)
	assert.Equal(t, "6.0000", acc.Snapshot.Available.String())
}

func TestDisputeResolveRoundTrip(t *testing.T) {
	acc := newAccount()
	amt := mustAmount(t, "10.0000")
	_, err := transactor.Deposit(acc, 1, amt)
	require.NoError(t, err)

	before := acc.Snapshot

	status, err := transactor.Dispute(acc, 1)
	require.NoError(t, err)
	assert.Equal(t, transactor.Transacted, status)
	assert.Equal(t, "0.0000", acc.Snapshot.Available.String())
	assert.Equal(t, "10.0000", acc.Snapshot.Held.String())
	assert.Equal(t, models.DepositHeld, acc.Deposits[1].Status)

	status, err = transactor.Resolve(acc, 1)
	require.NoError(t, err)
	assert.Equal(t, transactor.Transacted, status)
	assert.Equal(t, before, acc.Snapshot)
	assert.Equal(t, models.DepositResolved, acc.Deposits[1].Status)

	// Re-dispute a resolved deposit is a no-op.
	status, err = transactor.Dispute(acc, 1)
	require.NoError(t, err)
	assert.Equal(t, transactor.Duplicate, status)
	assert.Equal(t, before, acc.Snapshot)
}

func TestChargebackLocksAccount(t *testing.T) {
	acc := newAccount()
	amt := mustAmount(t, "10.0000")
	_, err := transactor.Deposit(acc, 1, amt)
	require.NoError(t, err)
	_, err = transactor.Deposit(acc, 2, mustAmount(t, "5.0000"))
	require.NoError(t, err)

	_, err = transactor.Dispute(acc, 1)
	require.NoError(t, err)

	heldBefore := acc.Snapshot.Held

	status, err := transactor.Chargeback(acc, 1)
	require.NoError(t, err)
	assert.Equal(t, transactor.Transacted, status)
	assert.Equal(t, models.Locked, acc.Status)
	assert.Equal(t, heldBefore.Sub(amt), acc.Snapshot.Held)
	assert.Equal(t, models.DepositChargedBack, acc.Deposits[1].Status)

	// Duplicate chargeback after lock is still just a no-op duplicate,
	// not AccountLocked.
	status, err = transactor.Chargeback(acc, 1)
	require.NoError(t, err)
	assert.Equal(t, transactor.Duplicate, status)

	// A fresh deposit on the now-locked account is rejected.
	_, err = transactor.Deposit(acc, 3, mustAmount(t, "1.0000"))
	require.Error(t, err)
	var lerr *ledgererr.LedgerError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ledgererr.KindAccountLocked, lerr.Kind)
}

func TestResolveNonDisputedIsIncompatible(t *testing.T) {
	acc := newAccount()
	_, err := transactor.Deposit(acc, 1, mustAmount(t, "3.0000"))
	require.NoError(t, err)

	before := acc.Snapshot
	_, err = transactor.Resolve(acc, 1)
	require.Error(t, err)
	var lerr *ledgererr.LedgerError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ledgererr.KindIncompatibleTransaction, lerr.Kind)
	assert.Equal(t, before, acc.Snapshot)
}

func TestDisputeUnknownTransaction(t *testing.T) {
	acc := newAccount()
	_, err := transactor.Dispute(acc, 404)
	require.Error(t, err)
	var lerr *ledgererr.LedgerError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ledgererr.KindNoTransactionFound, lerr.Kind)
}

func TestLockedAccountRejectsEverythingExceptIdempotentNoOps(t *testing.T) {
	acc := newAccount()
	_, err := transactor.Deposit(acc, 1, mustAmount(t, "10.0000"))
	require.NoError(t, err)
	_, err = transactor.Dispute(acc, 1)
	require.NoError(t, err)
	_, err = transactor.Chargeback(acc, 1)
	require.NoError(t, err)
	require.Equal(t, models.Locked, acc.Status)

	before := acc.Snapshot

	_, err = transactor.Withdrawal(acc, 2, mustAmount(t, "1.0000"))
	require.Error(t, err)
	assert.Equal(t, ledgererr.KindAccountLocked, err.(*ledgererr.LedgerError).Kind)
	assert.Equal(t, before, acc.Snapshot)

	// Duplicate chargeback on the already-terminal deposit is still a
	// no-op success.
	status, err := transactor.Chargeback(acc, 1)
	require.NoError(t, err)
	assert.Equal(t, transactor.Duplicate, status)
}

func TestApplyDispatchesByKind(t *testing.T) {
	acc := newAccount()
	err := transactor.Apply(acc, models.Transaction{
		ClientID:      1,
		TransactionID: 1,
		Kind:          models.KindDeposit,
		Amount:        mustAmount(t, "4.0000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "4.0000", acc.Snapshot.Available.String())
}
