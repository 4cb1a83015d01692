package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/powledger/app/services/node/handlers"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/peer"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
)

const (
	success = "✓"
	failed  = "✗"
)

type node struct {
	public  http.Handler
	private http.Handler
	state   *state.State
}

func newNode(t *testing.T) node {
	t.Helper()

	miner, err := wallet.DeriveKeyPair("random string")
	if err != nil {
		t.Fatalf("Should be able to derive the miner wallet: %s", err)
	}

	fetch := func(ctx context.Context, host string) ([]database.BlockData, error) {
		return nil, errors.New("peer unreachable")
	}

	st, err := state.New(context.Background(), state.Config{
		MinerAddress: string(miner.Address()),
		Host:         "localhost:9080",
		FetchChain:   fetch,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	ns, err := nameservice.New([]string{"miner:random string", "a", "b"})
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	cfg := handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		NS:       ns,
		Evts:     events.New(),
	}

	return node{
		public:  handlers.PublicMux(cfg),
		private: handlers.PrivateMux(cfg),
		state:   st,
	}
}

func call(t *testing.T, h http.Handler, method string, path string, body any, resp any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Should be able to encode the body: %s", err)
		}
	}

	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if resp != nil {
		if err := json.NewDecoder(w.Body).Decode(resp); err != nil {
			t.Fatalf("Should be able to decode the response of %s %s: %s", method, path, err)
		}
	}

	return w.Code
}

func signed(t *testing.T, from string, to string, amount json.Number) map[string]any {
	t.Helper()

	sender, err := wallet.DeriveKeyPair(from)
	if err != nil {
		t.Fatalf("Should be able to derive the sender wallet: %s", err)
	}
	recipient, err := wallet.DeriveKeyPair(to)
	if err != nil {
		t.Fatalf("Should be able to derive the recipient wallet: %s", err)
	}

	data, err := database.NewTx(string(sender.Address()), string(recipient.Address()), amount)
	if err != nil {
		t.Fatalf("Should be able to construct the transaction: %s", err)
	}

	tx, err := data.Sign(sender)
	if err != nil {
		t.Fatalf("Should be able to sign the transaction: %s", err)
	}

	return map[string]any{
		"sender":     tx.Data.Sender,
		"recipient":  tx.Data.Recipient,
		"amount":     tx.Data.Amount,
		"signature":  tx.Signature,
		"public_key": tx.PublicKey,
	}
}

// =============================================================================

func Test_SubmitTransaction(t *testing.T) {
	n := newNode(t)

	good := signed(t, "a", "b", "10")

	forged := signed(t, "a", "b", "10")
	forged["amount"] = 11

	missing := signed(t, "a", "b", "10")
	delete(missing, "signature")

	reward := map[string]any{
		"sender":     "0",
		"recipient":  "anyone",
		"amount":     6,
		"signature":  "0",
		"public_key": "0",
	}

	rewardOf := func(amount any) map[string]any {
		r := make(map[string]any, len(reward))
		for k, v := range reward {
			r[k] = v
		}
		r["amount"] = amount
		return r
	}

	noAmount := rewardOf(nil)
	delete(noAmount, "amount")

	tt := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{name: "signed", body: good, status: http.StatusCreated},
		{name: "forged", body: forged, status: http.StatusBadRequest},
		{name: "missing", body: missing, status: http.StatusBadRequest},
		{name: "reward", body: reward, status: http.StatusCreated},
		{name: "reward-fraction", body: rewardOf(10.5), status: http.StatusCreated},
		{name: "reward-negative", body: rewardOf(-1), status: http.StatusCreated},
		{name: "amount-not-number", body: rewardOf("abc"), status: http.StatusBadRequest},
		{name: "amount-missing", body: noAmount, status: http.StatusBadRequest},
	}

	t.Log("Given the need to submit transactions over the public API.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				var resp map[string]any
				if status := call(t, n.public, http.MethodPost, "/v1/tx/submit", tst.body, &resp); status != tst.status {
					t.Fatalf("\t%s\tTest %d:\tShould receive status %d, got %d: %s", failed, testID, tst.status, status, spew.Sdump(resp))
				}
				t.Logf("\t%s\tTest %d:\tShould receive status %d.", success, testID, tst.status)
			}

			t.Run(tst.name, f)
		}

		var pool []map[string]any
		if status := call(t, n.public, http.MethodGet, "/v1/tx/uncommitted/list", nil, &pool); status != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to list the pool, got %d", failed, status)
		}

		if len(pool) != 4 {
			t.Fatalf("\t%s\tShould hold the four accepted transactions, got %d", failed, len(pool))
		}
		if pool[0]["sender_name"] != "a" || pool[0]["recipient_name"] != "b" {
			t.Fatalf("\t%s\tShould resolve the names of the parties: %s", failed, spew.Sdump(pool[0]))
		}
		if pool[2]["amount"] != 10.5 || pool[3]["amount"] != -1.0 {
			t.Fatalf("\t%s\tShould keep fractional and negative amounts: %s", failed, spew.Sdump(pool[2:]))
		}
		t.Logf("\t%s\tShould list the accepted transactions in arrival order.", success)
	}
}

func Test_MineAndChain(t *testing.T) {
	n := newNode(t)

	t.Log("Given the need to forge blocks over the public API.")
	{
		if status := call(t, n.public, http.MethodPost, "/v1/tx/submit", signed(t, "a", "b", "10"), nil); status != http.StatusCreated {
			t.Fatalf("\t%s\tShould be able to submit a transaction, got %d", failed, status)
		}

		var resp struct {
			Message      string             `json:"message"`
			Index        int                `json:"index"`
			Transactions []database.BlockTx `json:"transactions"`
			Proof        uint64             `json:"proof"`
			PreviousHash string             `json:"previous_hash"`
		}

		genesis := n.state.RetrieveLatestBlock()

		if status := call(t, n.public, http.MethodGet, "/v1/mine", nil, &resp); status != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to mine, got %d: %s", failed, status, spew.Sdump(resp))
		}
		t.Logf("\t%s\tShould be able to mine.", success)

		if resp.Message != "New Block Forged" || resp.Index != 2 {
			t.Fatalf("\t%s\tShould report the forged block: %s", failed, spew.Sdump(resp))
		}
		if resp.PreviousHash != genesis.Hash() {
			t.Fatalf("\t%s\tShould link to the genesis block.", failed)
		}
		if len(resp.Transactions) != 2 || !resp.Transactions[1].IsReward() {
			t.Fatalf("\t%s\tShould include the transaction and the reward: %s", failed, spew.Sdump(resp.Transactions))
		}
		t.Logf("\t%s\tShould report the forged block.", success)

		var chain state.ChainResponse
		if status := call(t, n.public, http.MethodGet, "/v1/chain", nil, &chain); status != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to get the chain, got %d", failed, status)
		}

		if chain.Length != 2 || len(chain.Chain) != 2 {
			t.Fatalf("\t%s\tShould hold two blocks, got %d", failed, chain.Length)
		}
		if chain.Chain[1].Header.Nonce != resp.Proof {
			t.Fatalf("\t%s\tShould export the mined nonce.", failed)
		}
		if !n.state.ValidateChain(chain.Chain) {
			t.Fatalf("\t%s\tShould export a valid chain.", failed)
		}
		t.Logf("\t%s\tShould export a valid chain.", success)

		var private state.ChainResponse
		if status := call(t, n.private, http.MethodGet, "/v1/node/chain", nil, &private); status != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to get the chain from the private API, got %d", failed, status)
		}
		if private.Length != chain.Length || private.Chain[1].Hash() != chain.Chain[1].Hash() {
			t.Fatalf("\t%s\tShould export the same chain to peers.", failed)
		}
		t.Logf("\t%s\tShould export the same chain to peers.", success)
	}
}

func Test_MineFractionalAmounts(t *testing.T) {
	n := newNode(t)

	t.Log("Given the need to forge and export blocks holding non integer amounts.")
	{
		for _, amount := range []any{10.5, -1} {
			body := map[string]any{
				"sender":     "0",
				"recipient":  "anyone",
				"amount":     amount,
				"signature":  "0",
				"public_key": "0",
			}
			if status := call(t, n.public, http.MethodPost, "/v1/tx/submit", body, nil); status != http.StatusCreated {
				t.Fatalf("\t%s\tShould be able to submit amount %v, got %d", failed, amount, status)
			}
		}

		if status := call(t, n.public, http.MethodGet, "/v1/mine", nil, nil); status != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to mine, got %d", failed, status)
		}
		t.Logf("\t%s\tShould be able to mine.", success)

		var chain state.ChainResponse
		if status := call(t, n.private, http.MethodGet, "/v1/node/chain", nil, &chain); status != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to get the chain, got %d", failed, status)
		}
		t.Logf("\t%s\tShould be able to decode the exported chain.", success)

		trans := chain.Chain[1].Trans
		if len(trans) != 3 || trans[0].Data.Amount != "10.5" || trans[1].Data.Amount != "-1" {
			t.Fatalf("\t%s\tShould export the amounts as submitted: %s", failed, spew.Sdump(trans))
		}
		if !n.state.ValidateChain(chain.Chain) {
			t.Fatalf("\t%s\tShould accept the exported chain as valid.", failed)
		}
		t.Logf("\t%s\tShould accept the exported chain as valid.", success)
	}
}

func Test_Nodes(t *testing.T) {
	n := newNode(t)

	t.Log("Given the need to manage peers over the public API.")
	{
		var bad errs.Response
		if status := call(t, n.public, http.MethodPost, "/v1/nodes/register", map[string]any{"nodes": []string{}}, &bad); status != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject an empty list of nodes, got %d", failed, status)
		}
		t.Logf("\t%s\tShould reject an empty list of nodes.", success)

		var reg struct {
			Message    string   `json:"message"`
			TotalNodes []string `json:"total_nodes"`
		}
		body := map[string]any{"nodes": []string{"http://node2:9080/", "node3:9080", "localhost:9080"}}
		if status := call(t, n.public, http.MethodPost, "/v1/nodes/register", body, &reg); status != http.StatusCreated {
			t.Fatalf("\t%s\tShould be able to register nodes, got %d", failed, status)
		}

		if len(reg.TotalNodes) != 2 || reg.TotalNodes[0] != "node2:9080" || reg.TotalNodes[1] != "node3:9080" {
			t.Fatalf("\t%s\tShould normalize the nodes and skip itself: %v", failed, reg.TotalNodes)
		}
		t.Logf("\t%s\tShould normalize the nodes and skip itself.", success)

		var res struct {
			Message  string               `json:"message"`
			Chain    []database.BlockData `json:"chain"`
			NewChain []database.BlockData `json:"new_chain"`
		}
		if status := call(t, n.public, http.MethodGet, "/v1/nodes/resolve", nil, &res); status != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to resolve, got %d", failed, status)
		}

		if res.Message != "Our chain is authoritative" || len(res.Chain) != 1 || res.NewChain != nil {
			t.Fatalf("\t%s\tShould keep the local chain when peers are down: %s", failed, spew.Sdump(res))
		}
		t.Logf("\t%s\tShould keep the local chain when peers are down.", success)

		var status struct {
			peer.PeerStatus
			MinerAddress string `json:"miner_address"`
		}
		if code := call(t, n.private, http.MethodGet, "/v1/node/status", nil, &status); code != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to get the node status, got %d", failed, code)
		}

		if status.ChainLength != 1 || len(status.KnownPeers) != 2 {
			t.Fatalf("\t%s\tShould report the node status: %s", failed, spew.Sdump(status))
		}
		if status.MinerAddress != "1Fcz4Q7yz2HFYrzpBvBfSrJB3yaaoYVwbE" {
			t.Fatalf("\t%s\tShould report the miner address, got %q", failed, status.MinerAddress)
		}
		t.Logf("\t%s\tShould report the node status.", success)
	}
}

func Test_Truncate(t *testing.T) {
	n := newNode(t)

	t.Log("Given the need to drop the pending pool over the private API.")
	{
		for _, amount := range []json.Number{"1", "2"} {
			if status := call(t, n.public, http.MethodPost, "/v1/tx/submit", signed(t, "a", "b", amount), nil); status != http.StatusCreated {
				t.Fatalf("\t%s\tShould be able to submit a transaction, got %d", failed, status)
			}
		}

		var resp struct {
			Message string `json:"message"`
			Dropped int    `json:"dropped"`
		}
		if status := call(t, n.private, http.MethodPost, "/v1/node/tx/truncate", nil, &resp); status != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to truncate the pool, got %d", failed, status)
		}

		if resp.Dropped != 2 || n.state.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould drop every pending transaction: %s", failed, spew.Sdump(resp))
		}
		t.Logf("\t%s\tShould drop every pending transaction.", success)

		if status := call(t, n.public, http.MethodPost, "/v1/node/tx/truncate", nil, nil); status == http.StatusOK {
			t.Fatalf("\t%s\tShould not expose truncate on the public API, got %d", failed, status)
		}
		t.Logf("\t%s\tShould not expose truncate on the public API.", success)
	}
}
