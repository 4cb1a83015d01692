// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// defaultPeerTimeout is used when no peer timeout is configured.
const defaultPeerTimeout = 5 * time.Second

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// ChainFetcher retrieves the chain a peer reports. It is the only way the
// ledger talks to other nodes.
type ChainFetcher func(ctx context.Context, host string) ([]database.BlockData, error)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining and conflict resolution.
type Worker interface {
	Shutdown()
	Mine(ctx context.Context) (database.Block, error)
	SignalResolve()
	SignalCancelMining() (done func())
}

// =============================================================================

// Config represents the configuration required to start
// the ledger.
type Config struct {
	MinerAddress string
	Host         string
	Genesis      genesis.Genesis
	Storage      database.Storage
	KnownPeers   *peer.PeerSet
	FetchChain   ChainFetcher
	PeerTimeout  time.Duration
	EvHandler    EventHandler
}

// State manages the ledger: the chain, the pending pool and the peers.
type State struct {
	mu sync.RWMutex

	minerAddress string
	host         string
	evHandler    EventHandler
	fetchChain   ChainFetcher
	peerTimeout  time.Duration

	genesis    genesis.Genesis
	knownPeers *peer.PeerSet
	mempool    *mempool.Mempool
	db         *database.Database

	Worker Worker
}

// New constructs the ledger and mines the genesis block when the storage
// does not already hold a chain.
func New(ctx context.Context, cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.MinerAddress == "" {
		return nil, errors.New("miner address is required")
	}

	if cfg.Genesis.ProtocolVersion == "" {
		cfg.Genesis = genesis.Default()
	}

	if cfg.Storage == nil {
		strg, err := memory.New()
		if err != nil {
			return nil, err
		}
		cfg.Storage = strg
	}

	if cfg.KnownPeers == nil {
		cfg.KnownPeers = peer.NewPeerSet()
	}

	if cfg.PeerTimeout <= 0 {
		cfg.PeerTimeout = defaultPeerTimeout
	}

	if cfg.FetchChain == nil {
		cfg.FetchChain = HTTPFetcher(nil)
	}

	db, err := database.New(cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	state := State{
		minerAddress: cfg.MinerAddress,
		host:         cfg.Host,
		evHandler:    ev,
		fetchChain:   cfg.FetchChain,
		peerTimeout:  cfg.PeerTimeout,

		genesis:    cfg.Genesis,
		knownPeers: cfg.KnownPeers,
		mempool:    mempool.New(),
		db:         db,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	if db.Length() == 0 {
		ev("state: New: mining genesis block")

		if _, err := state.MineBlock(ctx, signature.ZeroHash); err != nil {
			db.Close()
			return nil, fmt.Errorf("mining genesis: %w", err)
		}
	}

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {

	// Make sure the storage is properly closed.
	defer func() {
		s.db.Close()
	}()

	// Stop all ledger writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// Truncate clears the pending pool and returns how many transactions were
// dropped.
func (s *State) Truncate() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.mempool.Count()
	s.mempool.Truncate()

	s.evHandler("state: Truncate: dropped[%d]", n)

	return n
}

// signalCancelMining asks the worker, if there is one, to stop a running
// mining operation. The returned function must be called once the caller is
// done changing the chain.
func (s *State) signalCancelMining() (done func()) {
	if s.Worker == nil {
		return func() {}
	}

	return s.Worker.SignalCancelMining()
}
