package state

import (
	"context"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
)

// AddPeer normalizes the network location and adds it to the set of known
// peers. Adding a known peer or this node itself is a no-op.
func (s *State) AddPeer(location string) error {
	p, err := peer.New(location)
	if err != nil {
		return err
	}

	if p.Match(s.host) {
		return nil
	}

	if s.knownPeers.Add(p) {
		s.evHandler("state: AddPeer: added peer[%s]", p.Host)
	}

	return nil
}

// ValidateChain reports whether the candidate chain is linked by hash, has
// a valid proof on every block after genesis and commits to its
// transactions.
func (s *State) ValidateChain(chain []database.BlockData) bool {
	if err := database.ValidateChain(chain, s.evHandler); err != nil {
		s.evHandler("state: ValidateChain: invalid: %s", err)
		return false
	}

	return true
}

// ResolveConflicts asks every known peer for its chain and replaces the local
// chain with the longest valid chain that is strictly longer than it. Among
// equally long candidates the one with the smallest head hash wins. Peers
// that fail to answer in time or answer with an invalid chain are skipped.
func (s *State) ResolveConflicts(ctx context.Context) (bool, error) {
	s.evHandler("state: ResolveConflicts: started")
	defer s.evHandler("state: ResolveConflicts: completed")

	peers := s.RetrieveKnownPeers()
	chains := make([][]database.BlockData, len(peers))

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for i, pr := range peers {
		go func(i int, pr peer.Peer) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
			defer cancel()

			chain, err := s.fetchChain(ctx, pr.Host)
			if err != nil {
				s.evHandler("state: ResolveConflicts: peer[%s]: fetch: WARNING: %s", pr.Host, err)
				return
			}

			chains[i] = chain
		}(i, pr)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	localLength := s.db.Length()

	var best []database.BlockData
	for i, chain := range chains {
		if len(chain) <= localLength {
			continue
		}

		if !s.ValidateChain(chain) {
			s.evHandler("state: ResolveConflicts: peer[%s]: skipped invalid chain", peers[i].Host)
			continue
		}

		if better(chain, best) {
			best = chain
		}
	}

	if best == nil {
		s.evHandler("state: ResolveConflicts: local chain is authoritative: length[%d]", localLength)
		return false, nil
	}

	// Stop any mining taking place since the parent it works on is about
	// to go away. The mining G waits until done is called.
	done := s.signalCancelMining()
	defer done()

	s.mu.Lock()
	defer s.mu.Unlock()

	// The chain may have grown while the peers were being asked.
	if len(best) <= s.db.Length() {
		s.evHandler("state: ResolveConflicts: local chain grew: length[%d]", s.db.Length())
		return false, nil
	}

	if err := s.db.Replace(best); err != nil {
		return false, err
	}

	s.evHandler("viewer: chain: replaced: length[%d]: head[%s]", len(best), best[len(best)-1].Hash())

	return true, nil
}

// better reports whether the candidate chain should be preferred over the
// current best. Longer wins, equal length goes to the smallest head hash.
func better(candidate []database.BlockData, best []database.BlockData) bool {
	switch {
	case best == nil:
		return true
	case len(candidate) != len(best):
		return len(candidate) > len(best)
	default:
		return candidate[len(candidate)-1].Hash() < best[len(best)-1].Hash()
	}
}
