// Package transactor implements the five pure per-event mutators and
// the dispatcher that routes a Transaction to the right one.
//
// Every function here mutates its *models.Account argument in place on
// success and leaves it untouched on failure — a failing event never
// half-mutates.
package transactor

import (
	"ledger-pipeline/internal/amount"
	"ledger-pipeline/internal/ledgererr"
	"ledger-pipeline/internal/models"
)

// SuccessStatus distinguishes a genuine state change from an idempotent
// replay that left the account in its already-intended state.
type SuccessStatus int

const (
	Transacted SuccessStatus = iota
	Duplicate
)

// Deposit applies a deposit event:
//
//  1. tx_id already seen -> same amount: Duplicate; different amount:
//     IncompatibleTransaction.
//  2. otherwise -> available += amount, insert Accepted deposit, Transacted.
//  3. locked account -> AccountLocked, never mutates.
func Deposit(acc *models.Account, txID models.TransactionID, amt amount.Amount) (SuccessStatus, error) {
	if existing, ok := acc.Deposits[txID]; ok {
		if existing.Amount != amt {
			// A conflicting amount on an already-seen deposit id is
			// rejected rather than treated as a programming error, so one
			// bad record doesn't crash a long-running batch.
			return 0, ledgererr.New(ledgererr.KindIncompatibleTransaction, uint16(acc.ClientID), uint32(txID),
				"deposit %d already recorded with a different amount", txID)
		}
		return Duplicate, nil
	}

	if acc.Status == models.Locked {
		return 0, ledgererr.New(ledgererr.KindAccountLocked, uint16(acc.ClientID), uint32(txID), "account is locked")
	}

	sum, ok := acc.Snapshot.Available.AddChecked(amt)
	if !ok {
		return 0, ledgererr.New(ledgererr.KindInternal, uint16(acc.ClientID), uint32(txID),
			"deposit %d would overflow available balance", txID)
	}

	acc.Snapshot.Available = sum
	acc.Deposits[txID] = &models.Deposit{Amount: amt, Status: models.DepositAccepted}
	return Transacted, nil
}

// Withdrawal applies a withdrawal event.
func Withdrawal(acc *models.Account, txID models.TransactionID, amt amount.Amount) (SuccessStatus, error) {
	if acc.Status == models.Locked {
		return 0, ledgererr.New(ledgererr.KindAccountLocked, uint16(acc.ClientID), uint32(txID), "account is locked")
	}

	if amt != amount.Zero && acc.Snapshot.Available.LessThan(amt) {
		return 0, ledgererr.New(ledgererr.KindInsufficientFund, uint16(acc.ClientID), uint32(txID),
			"available %s < withdrawal %s", acc.Snapshot.Available, amt)
	}

	if existing, ok := acc.Withdrawals[txID]; ok {
		if existing.Amount != amt {
			return 0, ledgererr.New(ledgererr.KindIncompatibleTransaction, uint16(acc.ClientID), uint32(txID),
				"withdrawal %d already recorded with a different amount", txID)
		}
		return Duplicate, nil
	}

	acc.Snapshot.Available = acc.Snapshot.Available.Sub(amt)
	acc.Withdrawals[txID] = &models.Withdrawal{Amount: amt, Status: models.WithdrawalAccepted}
	return Transacted, nil
}

// Dispute applies a dispute event: it looks the deposit up first and
// only checks the lock if the dispute would actually change state, so
// a duplicate dispute on an already-locked account is a no-op rather
// than an error.
func Dispute(acc *models.Account, txID models.TransactionID) (SuccessStatus, error) {
	dep, ok := acc.Deposits[txID]
	if !ok {
		if acc.Status == models.Locked {
			return 0, ledgererr.New(ledgererr.KindAccountLocked, uint16(acc.ClientID), uint32(txID), "account is locked")
		}
		return 0, ledgererr.New(ledgererr.KindNoTransactionFound, uint16(acc.ClientID), uint32(txID), "no such deposit")
	}

	switch dep.Status {
	case models.DepositAccepted:
		if acc.Status == models.Locked {
			return 0, ledgererr.New(ledgererr.KindAccountLocked, uint16(acc.ClientID), uint32(txID), "account is locked")
		}
		acc.Snapshot.Available = acc.Snapshot.Available.Sub(dep.Amount)
		acc.Snapshot.Held = acc.Snapshot.Held.Add(dep.Amount)
		dep.Status = models.DepositHeld
		return Transacted, nil
	case models.DepositHeld, models.DepositResolved, models.DepositChargedBack:
		return Duplicate, nil
	default:
		return Duplicate, nil
	}
}

// Resolve applies a resolve event.
func Resolve(acc *models.Account, txID models.TransactionID) (SuccessStatus, error) {
	dep, ok := acc.Deposits[txID]
	if !ok {
		if acc.Status == models.Locked {
			return 0, ledgererr.New(ledgererr.KindAccountLocked, uint16(acc.ClientID), uint32(txID), "account is locked")
		}
		return 0, ledgererr.New(ledgererr.KindNoTransactionFound, uint16(acc.ClientID), uint32(txID), "no such deposit")
	}

	switch dep.Status {
	case models.DepositHeld:
		if acc.Status == models.Locked {
			return 0, ledgererr.New(ledgererr.KindAccountLocked, uint16(acc.ClientID), uint32(txID), "account is locked")
		}
		acc.Snapshot.Available = acc.Snapshot.Available.Add(dep.Amount)
		acc.Snapshot.Held = acc.Snapshot.Held.Sub(dep.Amount)
		dep.Status = models.DepositResolved
		return Transacted, nil
	case models.DepositResolved:
		return Duplicate, nil
	case models.DepositAccepted, models.DepositChargedBack:
		if acc.Status == models.Locked {
			return 0, ledgererr.New(ledgererr.KindAccountLocked, uint16(acc.ClientID), uint32(txID), "account is locked")
		}
		return 0, ledgererr.New(ledgererr.KindIncompatibleTransaction, uint16(acc.ClientID), uint32(txID),
			"deposit %d is not currently disputed", txID)
	default:
		return Duplicate, nil
	}
}

// Chargeback applies a chargeback event. It is the only transition
// that locks the account.
func Chargeback(acc *models.Account, txID models.TransactionID) (SuccessStatus, error) {
	dep, ok := acc.Deposits[txID]
	if !ok {
		if acc.Status == models.Locked {
			return 0, ledgererr.New(ledgererr.KindAccountLocked, uint16(acc.ClientID), uint32(txID), "account is locked")
		}
		return 0, ledgererr.New(ledgererr.KindNoTransactionFound, uint16(acc.ClientID), uint32(txID), "no such deposit")
	}

	switch dep.Status {
	case models.DepositHeld:
		if acc.Status == models.Locked {
			// Reached when another held deposit of this account was
			// charged back first, which locked the account.
			return 0, ledgererr.New(ledgererr.KindAccountLocked, uint16(acc.ClientID), uint32(txID), "account is locked")
		}
		acc.Snapshot.Held = acc.Snapshot.Held.Sub(dep.Amount)
		dep.Status = models.DepositChargedBack
		acc.Status = models.Locked
		return Transacted, nil
	case models.DepositChargedBack:
		return Duplicate, nil
	case models.DepositAccepted, models.DepositResolved:
		if acc.Status == models.Locked {
			return 0, ledgererr.New(ledgererr.KindAccountLocked, uint16(acc.ClientID), uint32(txID), "account is locked")
		}
		return 0, ledgererr.New(ledgererr.KindIncompatibleTransaction, uint16(acc.ClientID), uint32(txID),
			"deposit %d is not currently disputed", txID)
	default:
		return Duplicate, nil
	}
}

// Apply is the account transactor: it dispatches tx to the right
// per-kind function, drops the SuccessStatus (both Transacted and
// Duplicate are success from the caller's point of view), and
// propagates any error unchanged — the error already carries the
// offending client/transaction id.
func Apply(acc *models.Account, tx models.Transaction) error {
	var err error
	switch tx.Kind {
	case models.KindDeposit:
		_, err = Deposit(acc, tx.TransactionID, tx.Amount)
	case models.KindWithdrawal:
		_, err = Withdrawal(acc, tx.TransactionID, tx.Amount)
	case models.KindDispute:
		_, err = Dispute(acc, tx.TransactionID)
	case models.KindResolve:
		_, err = Resolve(acc, tx.TransactionID)
	case models.KindChargeback:
		_, err = Chargeback(acc, tx.TransactionID)
	default:
		err = ledgererr.New(ledgererr.KindInternal, uint16(tx.ClientID), uint32(tx.TransactionID),
			"unknown transaction kind %v", tx.Kind)
	}
	return err
}
