package public

import (
	"encoding/json"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// submitTx is the document a wallet posts to submit a transaction. A reward
// transaction carries "0" for both the signature and the public key.
type submitTx struct {
	Sender    string      `json:"sender" validate:"required"`
	Recipient string      `json:"recipient" validate:"required"`
	Amount    json.Number `json:"amount" validate:"required"`
	Signature string      `json:"signature" validate:"required"`
	PublicKey string      `json:"public_key" validate:"required"`
}

// registerNodes is the document used to add peers to the node.
type registerNodes struct {
	Nodes []string `json:"nodes" validate:"required,min=1,dive,required"`
}

// tx is a pending transaction with the names of the parties resolved.
type tx struct {
	Sender        string      `json:"sender"`
	SenderName    string      `json:"sender_name"`
	Recipient     string      `json:"recipient"`
	RecipientName string      `json:"recipient_name"`
	Amount        json.Number `json:"amount"`
	Signature     string      `json:"signature"`
	PublicKey     string      `json:"public_key"`
}

// mined is the response returned after forging a block.
type mined struct {
	Message      string             `json:"message"`
	Index        int                `json:"index"`
	Transactions []database.BlockTx `json:"transactions"`
	Proof        uint64             `json:"proof"`
	PreviousHash string             `json:"previous_hash"`
}

// resolved is the response of a conflict resolution. Only one of the chain
// fields is set, depending on whether the local chain was replaced.
type resolved struct {
	Message  string               `json:"message"`
	NewChain []database.BlockData `json:"new_chain,omitempty"`
	Chain    []database.BlockData `json:"chain,omitempty"`
}
