// Package router implements the per-client fan-out: a concurrent map
// from ClientID to an inbox+worker pair, lazy worker creation, and a
// drain protocol that closes every inbox and waits for every worker to
// finish applying what it was sent, in order.
//
// Every client gets its own goroutine owning exactly its own Account:
// one goroutine owns a piece of state and is only ever talked to over
// a channel, so there is no lock around Account at all.
package router

import (
	"sync"

	"ledger-pipeline/internal/ledgererr"
	"ledger-pipeline/internal/logging"
	"ledger-pipeline/internal/metrics"
	"ledger-pipeline/internal/models"
	"ledger-pipeline/internal/transactor"
)

// DefaultInboxCapacity is the default bounded-channel capacity per
// client inbox.
const DefaultInboxCapacity = 256

// worker is one client's inbox plus the goroutine draining it.
type worker struct {
	inbox chan models.Transaction
	done  chan error
}

// Router owns the client_id -> worker map and the per-client ordering
// guarantee: transactions dispatched for the same client are applied
// in the order they were dispatched.
type Router struct {
	inboxCapacity int

	mu      sync.Mutex
	workers map[models.ClientID]*worker

	// accounts gets each client's Account when its worker is created;
	// only that worker mutates it, so the summary emitter reads the
	// final state after Drain without racing any worker.
	accounts map[models.ClientID]*models.Account
}

// New creates a Router with the given per-client inbox capacity. A
// capacity of 0 uses DefaultInboxCapacity.
func New(inboxCapacity int) *Router {
	if inboxCapacity <= 0 {
		inboxCapacity = DefaultInboxCapacity
	}
	return &Router{
		inboxCapacity: inboxCapacity,
		workers:       make(map[models.ClientID]*worker),
		accounts:      make(map[models.ClientID]*models.Account),
	}
}

// Dispatch hands tx to its client's worker, spawning the worker (and
// the Active account behind it) on first sight of that client id. The
// send may block if the inbox is full — this is the pipeline's only
// backpressure point.
func (r *Router) Dispatch(tx models.Transaction) {
	w := r.workerFor(tx.ClientID)
	w.inbox <- tx
}

func (r *Router) workerFor(id models.ClientID) *worker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.workers[id]; ok {
		return w
	}

	acc := models.NewAccount(id)
	w := &worker{
		inbox: make(chan models.Transaction, r.inboxCapacity),
		done:  make(chan error, 1),
	}
	r.workers[id] = w
	r.accounts[id] = acc
	metrics.WorkersActive.Inc()

	go r.runWorker(acc, w)
	return w
}

// runWorker is the straight-line event loop for one client: read from
// the inbox in arrival order, apply via the account transactor, repeat
// until the inbox is closed and drained.
func (r *Router) runWorker(acc *models.Account, w *worker) {
	defer metrics.WorkersActive.Dec()

	var firstFatal error
	for tx := range w.inbox {
		err := transactor.Apply(acc, tx)
		if err == nil {
			metrics.TransactionsTotal.WithLabelValues(tx.Kind.String(), "transacted").Inc()
			continue
		}

		lerr, ok := err.(*ledgererr.LedgerError)
		if !ok {
			// Shouldn't happen: transactor.Apply only ever returns
			// *ledgererr.LedgerError. Treat as internal and surface it.
			metrics.TransactionsTotal.WithLabelValues(tx.Kind.String(), "internal_error").Inc()
			if firstFatal == nil {
				firstFatal = err
			}
			continue
		}

		metrics.TransactionsTotal.WithLabelValues(tx.Kind.String(), string(lerr.Kind)).Inc()
		logging.Warn("transaction rejected", map[string]interface{}{
			"client_id":      uint16(acc.ClientID),
			"transaction_id": uint32(tx.TransactionID),
			"kind":           tx.Kind.String(),
			"error_kind":     string(lerr.Kind),
			"error":          lerr.Error(),
		})

		if (lerr.Kind.SurfacedAtDrain() || lerr.Kind.Fatal()) && firstFatal == nil {
			firstFatal = lerr
		}
		// InsufficientFund and NoTransactionFound are expected ledger
		// outcomes and are not recorded beyond the log line above and
		// the metrics counter.
	}

	w.done <- firstFatal
}

// Drain closes every inbox, waits for every worker to finish applying
// whatever was already queued, and returns the first AccountLocked,
// IncompatibleTransaction, or internal error seen across all workers.
// InsufficientFund and NoTransactionFound never surface here. A failed
// worker does not cancel its siblings — they all drain to completion.
func (r *Router) Drain() error {
	r.mu.Lock()
	workers := make([]*worker, 0, len(r.workers))
	for _, w := range r.workers {
		workers = append(workers, w)
	}
	r.mu.Unlock()

	for _, w := range workers {
		close(w.inbox)
	}

	var first error
	for _, w := range workers {
		if err := <-w.done; err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Accounts returns the final per-client account state after Drain has
// completed. Calling this before Drain returns may observe accounts
// still being mutated by their worker; callers must only use this
// after Drain.
func (r *Router) Accounts() map[models.ClientID]*models.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[models.ClientID]*models.Account, len(r.accounts))
	for id, acc := range r.accounts {
		out[id] = acc
	}
	return out
}
