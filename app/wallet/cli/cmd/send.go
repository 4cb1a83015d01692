package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var (
	url    string
	to     string
	amount string
)

// submitTx is the document the node expects for a new transaction.
type submitTx struct {
	Sender    string      `json:"sender"`
	Recipient string      `json:"recipient"`
	Amount    json.Number `json:"amount"`
	Signature string      `json:"signature"`
	PublicKey string      `json:"public_key"`
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and send a transaction to a node",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the recipient.")
	sendCmd.Flags().StringVarP(&amount, "amount", "v", "0", "Amount to send, any JSON number.")
}

func sendRun(cmd *cobra.Command, args []string) error {
	kp, err := keyPair()
	if err != nil {
		return err
	}

	stx, err := newSubmitTx(kp, to, json.Number(amount))
	if err != nil {
		return err
	}

	data, err := json.Marshal(stx)
	if err != nil {
		return err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("node rejected the transaction: status[%d]: %s", resp.StatusCode, body)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(body))

	return nil
}

// newSubmitTx signs a transaction from the key pair's address to the
// recipient.
func newSubmitTx(kp wallet.KeyPair, recipient string, amount json.Number) (submitTx, error) {
	if err := wallet.ValidateAddress(wallet.Address(recipient)); err != nil {
		return submitTx{}, fmt.Errorf("invalid recipient: %w", err)
	}

	data, err := database.NewTx(string(kp.Address()), recipient, amount)
	if err != nil {
		return submitTx{}, err
	}

	tx, err := data.Sign(kp)
	if err != nil {
		return submitTx{}, err
	}

	stx := submitTx{
		Sender:    tx.Data.Sender,
		Recipient: tx.Data.Recipient,
		Amount:    tx.Data.Amount,
		Signature: tx.Signature,
		PublicKey: tx.PublicKey,
	}

	return stx, nil
}
