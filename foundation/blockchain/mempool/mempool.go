// Package mempool maintains the pool of accepted transactions waiting to be
// mined into a block. Transactions are kept in arrival order and the same
// transaction may be held more than once.
package mempool

import (
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Mempool represents an ordered cache of transactions.
type Mempool struct {
	mu   sync.RWMutex
	pool []database.BlockTx
}

// New constructs a new, empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Append adds a transaction to the end of the pool and returns the new size.
func (mp *Mempool) Append(tx database.BlockTx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Drain returns every transaction in the pool and leaves the pool empty.
// The snapshot and the clear happen under a single lock.
func (mp *Mempool) Drain() []database.BlockTx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := mp.pool
	mp.pool = nil

	return trans
}

// Restore puts a drained set of transactions back at the front of the pool,
// ahead of anything that arrived since the drain.
func (mp *Mempool) Restore(trans []database.BlockTx) {
	if len(trans) == 0 {
		return
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	pool := make([]database.BlockTx, 0, len(trans)+len(mp.pool))
	pool = append(pool, trans...)
	pool = append(pool, mp.pool...)

	mp.pool = pool
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
}

// Copy returns a copy of the transactions in arrival order.
func (mp *Mempool) Copy() []database.BlockTx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	trans := make([]database.BlockTx, len(mp.pool))
	copy(trans, mp.pool)

	return trans
}
