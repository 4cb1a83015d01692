package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveMinerAddress returns the address mining rewards are paid to.
func (s *State) RetrieveMinerAddress() string {
	return s.minerAddress
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy of the head of the chain.
func (s *State) RetrieveLatestBlock() database.BlockData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest, _ := s.db.LatestBlock()
	return latest
}

// RetrieveMempool returns a copy of the pending pool in arrival order.
func (s *State) RetrieveMempool() []database.BlockTx {
	return s.mempool.Copy()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrievePeerStatus returns the status this node reports to its peers.
func (s *State) RetrievePeerStatus() peer.PeerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest, _ := s.db.LatestBlock()

	return peer.PeerStatus{
		LatestBlockHash: latest.Hash(),
		ChainLength:     s.db.Length(),
		KnownPeers:      s.RetrieveKnownPeers(),
	}
}

// ExportChain returns a consistent copy of the whole chain.
func (s *State) ExportChain() ([]database.BlockData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.Chain()
}

// QueryMempoolLength returns the current length of the pending pool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryChainLength returns the current number of blocks in the chain.
func (s *State) QueryChainLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.db.Length()
}
