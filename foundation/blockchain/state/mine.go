package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// ErrStaleParent is returned when the parent a block was mined on is no
// longer the head of the chain.
var ErrStaleParent = errors.New("parent block is no longer the head of the chain")

// =============================================================================

// Mine asks the worker to mine a new block and waits for the result. Without
// a worker the block is mined on the calling goroutine.
func (s *State) Mine(ctx context.Context) (database.Block, error) {
	if s.Worker != nil {
		return s.Worker.Mine(ctx)
	}

	return s.MineNewBlock(ctx)
}

// MineNewBlock mines the pending pool, followed by the reward transaction
// for this node, on top of the current head of the chain.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: started")
	defer s.evHandler("state: MineNewBlock: MINING: completed")

	latest, ok := s.db.LatestBlock()
	if !ok {
		return database.Block{}, database.ErrNoGenesis
	}

	reward := database.NewRewardTx(s.minerAddress, s.genesis.MiningReward)

	return s.mineBlock(ctx, latest.Hash(), reward)
}

// MineBlock mines the pending pool on top of the specified parent. The pool
// is drained when mining starts. If mining is cancelled or the chain moved on
// while mining, the drained transactions are put back in the pool.
func (s *State) MineBlock(ctx context.Context, previousHash string) (database.Block, error) {
	return s.mineBlock(ctx, previousHash)
}

// mineBlock performs the mining with optional transactions appended after
// the drained pool. The extra transactions never enter the pool.
func (s *State) mineBlock(ctx context.Context, previousHash string, extra ...database.BlockTx) (database.Block, error) {

	// Snapshot and clear the pool while holding the lock so no submission
	// can interleave.
	s.mu.Lock()
	if !s.isHead(previousHash) {
		s.mu.Unlock()
		return database.Block{}, ErrStaleParent
	}
	drained := s.mempool.Drain()
	s.mu.Unlock()

	trans := make([]database.BlockTx, 0, len(drained)+len(extra))
	trans = append(trans, drained...)
	trans = append(trans, extra...)

	s.evHandler("state: mineBlock: MINING: perform POW: prevBlk[%s]: trans[%d]", previousHash, len(trans))

	// The proof of work runs without holding any lock.
	block, err := database.POW(ctx, database.POWArgs{
		PreviousHash:    previousHash,
		ProtocolVersion: s.genesis.ProtocolVersion,
		Difficulty:      s.genesis.Difficulty,
		Trans:           trans,
		EvHandler:       s.evHandler,
	})
	if err != nil {
		s.mempool.Restore(drained)
		s.evHandler("state: mineBlock: MINING: restored trans[%d]: %s", len(drained), err)
		return database.Block{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isHead(previousHash) {
		s.mempool.Restore(drained)
		s.evHandler("state: mineBlock: MINING: stale parent: restored trans[%d]", len(drained))
		return database.Block{}, ErrStaleParent
	}

	if err := s.db.Write(block); err != nil {
		s.mempool.Restore(drained)
		return database.Block{}, fmt.Errorf("write block: %w", err)
	}

	s.evHandler("viewer: block: mined: blk[%s]: trans[%d]", block.Hash(), len(trans))

	return block, nil
}

// isHead reports whether the hash is the head of the chain. An empty chain
// takes the zero hash as its head. The caller must hold the lock.
func (s *State) isHead(hash string) bool {
	latest, ok := s.db.LatestBlock()
	if !ok {
		return hash == signature.ZeroHash
	}

	return latest.Hash() == hash
}
