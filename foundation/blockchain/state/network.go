package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

const baseURL = "http://%s/v1/node"

// ChainResponse is the document a node serves for its chain.
type ChainResponse struct {
	Chain  []database.BlockData `json:"chain"`
	Length int                  `json:"length"`
}

// HTTPFetcher returns a ChainFetcher that asks the peer's private api for
// its chain. A nil client uses http.DefaultClient.
func HTTPFetcher(client *http.Client) ChainFetcher {
	if client == nil {
		client = http.DefaultClient
	}

	return func(ctx context.Context, host string) ([]database.BlockData, error) {
		url := fmt.Sprintf("%s/chain", fmt.Sprintf(baseURL, host))

		var resp ChainResponse
		if err := send(ctx, client, http.MethodGet, url, nil, &resp); err != nil {
			return nil, err
		}

		if resp.Length != len(resp.Chain) {
			return nil, fmt.Errorf("reported length %d does not match chain length %d", resp.Length, len(resp.Chain))
		}

		return resp.Chain, nil
	}
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func send(ctx context.Context, client *http.Client, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader

	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
