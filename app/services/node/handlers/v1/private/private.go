// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// nodeStatus is the peer status plus the address this node mines for.
type nodeStatus struct {
	peer.PeerStatus
	MinerAddress string `json:"miner_address"`
}

// Status returns the current status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	status := nodeStatus{
		PeerStatus:   h.State.RetrievePeerStatus(),
		MinerAddress: h.State.RetrieveMinerAddress(),
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// Truncate drops every pending transaction from the pool.
func (h Handlers) Truncate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	dropped := h.State.Truncate()
	h.Log.Infow("truncate pool", "traceid", v.TraceID, "dropped", dropped)

	resp := struct {
		Message string `json:"message"`
		Dropped int    `json:"dropped"`
	}{
		Message: "Pending transactions have been dropped",
		Dropped: dropped,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Chain returns the full chain so peers can resolve conflicts against it.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	chain, err := h.State.ExportChain()
	if err != nil {
		return fmt.Errorf("exporting chain: %w", err)
	}

	resp := state.ChainResponse{
		Chain:  chain,
		Length: len(chain),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
