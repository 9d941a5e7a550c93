package router_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-pipeline/internal/amount"
	"ledger-pipeline/internal/models"
	"ledger-pipeline/internal/router"
)

func mustAmount(t *testing.T, s string) amount.Amount {
	t.Helper()
	a, err := amount.Parse(s)
	require.NoError(t, err)
	return a
}

func TestRouterBasicDepositsTwoClients(t *testing.T) {
	r := router.New(0)
	r.Dispatch(models.Transaction{ClientID: 1, TransactionID: 10, Kind: models.KindDeposit, Amount: mustAmount(t, "4.0")})
	r.Dispatch(models.Transaction{ClientID: 1, TransactionID: 20, Kind: models.KindDeposit, Amount: mustAmount(t, "5.0")})
	r.Dispatch(models.Transaction{ClientID: 2, TransactionID: 30, Kind: models.KindDeposit, Amount: mustAmount(t, "6.0")})

	require.NoError(t, r.Drain())

	accounts := r.Accounts()
	assert.Equal(t, "9.0000", accounts[1].Snapshot.Available.String())
	assert.Equal(t, "6.0000", accounts[2].Snapshot.Available.String())
}

func TestRouterSurfacesAccountLockedFromDrain(t *testing.T) {
	r := router.New(0)
	r.Dispatch(models.Transaction{ClientID: 1, TransactionID: 1, Kind: models.KindDeposit, Amount: mustAmount(t, "10.0")})
	r.Dispatch(models.Transaction{ClientID: 1, TransactionID: 2, Kind: models.KindDeposit, Amount: mustAmount(t, "5.0")})
	r.Dispatch(models.Transaction{ClientID: 1, TransactionID: 1, Kind: models.KindDispute})
	r.Dispatch(models.Transaction{ClientID: 1, TransactionID: 1, Kind: models.KindChargeback})
	r.Dispatch(models.Transaction{ClientID: 1, TransactionID: 3, Kind: models.KindDeposit, Amount: mustAmount(t, "1.0")})

	err := r.Drain()
	require.Error(t, err)

	accounts := r.Accounts()
	acc := accounts[1]
	assert.Equal(t, "5.0000", acc.Snapshot.Available.String())
	assert.Equal(t, "0.0000", acc.Snapshot.Held.String())
	assert.Equal(t, models.Locked, acc.Status)
}

func TestRouterSwallowsInsufficientFundAndNoTransactionFound(t *testing.T) {
	r := router.New(0)
	r.Dispatch(models.Transaction{ClientID: 1, TransactionID: 1, Kind: models.KindDeposit, Amount: mustAmount(t, "3.0")})
	r.Dispatch(models.Transaction{ClientID: 1, TransactionID: 2, Kind: models.KindWithdrawal, Amount: mustAmount(t, "5.0")})
	r.Dispatch(models.Transaction{ClientID: 1, TransactionID: 999, Kind: models.KindResolve})

	require.NoError(t, r.Drain())
	assert.Equal(t, "3.0000", r.Accounts()[1].Snapshot.Available.String())
}

// TestRouterPerClientOrderingUnderConcurrency checks that N clients
// each receiving many deposits concurrently from many goroutines each
// end up with the exact sum, because within one client's inbox,
// dispatch order is preserved.
func TestRouterPerClientOrderingUnderConcurrency(t *testing.T) {
	const numClients = 10
	const depositsPerClient = 1000

	r := router.New(0)

	var wg sync.WaitGroup
	for c := 0; c < numClients; c++ {
		wg.Add(1)
		go func(clientID uint16) {
			defer wg.Done()
			for i := 0; i < depositsPerClient; i++ {
				r.Dispatch(models.Transaction{
					ClientID:      models.ClientID(clientID),
					TransactionID: models.TransactionID(uint32(clientID)*1_000_000 + uint32(i)),
					Kind:          models.KindDeposit,
					Amount:        mustAmount(t, "1.0"),
				})
			}
		}(uint16(c))
	}
	wg.Wait()

	require.NoError(t, r.Drain())

	accounts := r.Accounts()
	for c := 0; c < numClients; c++ {
		acc := accounts[models.ClientID(c)]
		require.NotNil(t, acc, fmt.Sprintf("client %d", c))
		assert.Equal(t, fmt.Sprintf("%d.0000", depositsPerClient), acc.Snapshot.Available.String())
	}
}
