package state

import "github.com/ardanlabs/powledger/foundation/blockchain/database"

// SubmitTransaction accepts a transaction for inclusion in the next block.
// It returns false, leaving the pool unchanged, when the transaction is not
// a reward and its signature does not verify.
func (s *State) SubmitTransaction(tx database.BlockTx) bool {
	if !tx.Verify() {
		s.evHandler("state: SubmitTransaction: rejected: tx[%s]", tx)
		return false
	}

	s.mu.Lock()
	n := s.mempool.Append(tx)
	s.mu.Unlock()

	s.evHandler("viewer: tx: accepted: tx[%s]: pool[%d]", tx, n)

	return true
}
