// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/powledger/business/sys/metrics"
	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// SubmitTransaction verifies a wallet transaction and adds it to the pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var stx submitTx
	if err := web.Decode(r, &stx); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(stx); err != nil {
		return fmt.Errorf("validating payload: %w", err)
	}

	data, err := database.NewTx(stx.Sender, stx.Recipient, stx.Amount)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx := database.BlockTx{
		Data:      data,
		Signature: stx.Signature,
		PublicKey: stx.PublicKey,
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "sender", tx.Data.Sender, "recipient", tx.Data.Recipient, "amount", tx.Data.Amount)
	if !h.State.SubmitTransaction(tx) {
		return errs.NewTrusted(errors.New("transaction signature does not verify"), http.StatusBadRequest)
	}

	resp := struct {
		Message string `json:"message"`
	}{
		Message: "Transaction will be added to BlockChain",
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mempool := h.State.RetrieveMempool()

	trans := make([]tx, len(mempool))
	for i, tran := range mempool {
		trans[i] = tx{
			Sender:        tran.Data.Sender,
			SenderName:    h.NS.Lookup(wallet.Address(tran.Data.Sender)),
			Recipient:     tran.Data.Recipient,
			RecipientName: h.NS.Lookup(wallet.Address(tran.Data.Recipient)),
			Amount:        tran.Data.Amount,
			Signature:     tran.Signature,
			PublicKey:     tran.PublicKey,
		}
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}

// Mine forges a new block from the pending pool and the mining reward.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.State.Mine(ctx)
	if err != nil {
		if errors.Is(err, state.ErrStaleParent) {
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return fmt.Errorf("mining: %w", err)
	}

	metrics.AddMined(ctx)

	resp := mined{
		Message:      "New Block Forged",
		Index:        h.State.QueryChainLength(),
		Transactions: block.Trans.Values(),
		Proof:        block.Header.Nonce,
		PreviousHash: block.Header.PreviousHash,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Chain returns the full chain held by this node.
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

// RegisterNodes adds the specified peers to the set of known peers.
func (h Handlers) RegisterNodes(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var rn registerNodes
	if err := web.Decode(r, &rn); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(rn); err != nil {
		return fmt.Errorf("validating payload: %w", err)
	}

	for _, node := range rn.Nodes {
		if err := h.State.AddPeer(node); err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
	}

	peers := h.State.RetrieveKnownPeers()
	hosts := make([]string, len(peers))
	for i, pr := range peers {
		hosts[i] = pr.Host
	}

	resp := struct {
		Message    string   `json:"message"`
		TotalNodes []string `json:"total_nodes"`
	}{
		Message:    "New nodes have been added",
		TotalNodes: hosts,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Resolve runs the consensus algorithm against the known peers and reports
// whether the local chain was replaced.
func (h Handlers) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	replaced, err := h.State.ResolveConflicts(ctx)
	if err != nil {
		return fmt.Errorf("resolving conflicts: %w", err)
	}

	chain, err := h.State.ExportChain()
	if err != nil {
		return fmt.Errorf("exporting chain: %w", err)
	}

	resp := resolved{
		Message: "Our chain is authoritative",
		Chain:   chain,
	}

	if replaced {
		metrics.AddReplaced(ctx)

		resp = resolved{
			Message:  "Our chain was replaced",
			NewChain: chain,
		}
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
