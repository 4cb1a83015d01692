package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
)

// Unsigned is the value carried in the sender, signature and public key
// fields of a mining reward transaction.
const Unsigned = "0"

// =============================================================================

// TxData is the part of a transaction that is hashed and signed.
type TxData struct {
	Sender    string      `json:"sender"`    // Address of the sender or "0" for a reward.
	Recipient string      `json:"recipient"` // Address receiving the amount.
	Amount    json.Number `json:"amount"`    // Amount as the number literal it was submitted with.
}

// ErrInvalidAmount is returned when an amount is not a JSON number literal.
var ErrInvalidAmount = errors.New("amount is not a number")

// NewTx constructs a new transaction payload. Any JSON number is accepted as
// an amount, fractions and negative values included.
func NewTx(sender string, recipient string, amount json.Number) (TxData, error) {
	if sender == "" {
		return TxData{}, errors.New("sender is required")
	}

	if recipient == "" {
		return TxData{}, errors.New("recipient is required")
	}

	if err := ValidAmount(amount); err != nil {
		return TxData{}, err
	}

	tx := TxData{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
	}

	return tx, nil
}

// ValidAmount checks the amount is a JSON number literal. The empty value is
// rejected even though it marshals as 0.
func ValidAmount(amount json.Number) error {
	if amount == "" {
		return fmt.Errorf("empty: %w", ErrInvalidAmount)
	}

	if _, err := json.Marshal(amount); err != nil {
		return fmt.Errorf("%q: %w", amount, ErrInvalidAmount)
	}

	return nil
}

// Hash returns the hex digest of the payload. The ascii bytes of this
// digest are what gets signed.
func (tx TxData) Hash() (string, error) {
	return signature.HashValue(tx)
}

// Sign uses the specified key pair to sign the transaction.
func (tx TxData) Sign(kp wallet.KeyPair) (BlockTx, error) {
	hash, err := tx.Hash()
	if err != nil {
		return BlockTx{}, fmt.Errorf("hash: %w", err)
	}

	sig, err := kp.Sign([]byte(hash))
	if err != nil {
		return BlockTx{}, fmt.Errorf("sign: %w", err)
	}

	blockTx := BlockTx{
		Data:      tx,
		Signature: fmt.Sprintf("%x", sig),
		PublicKey: kp.PublicHex(),
	}

	return blockTx, nil
}

// =============================================================================

// BlockTx represents the transaction as it's recorded inside the pool and
// inside a block.
type BlockTx struct {
	Data      TxData `json:"data"`
	Signature string `json:"signature"`  // Hex encoded R|S or "0" for a reward.
	PublicKey string `json:"public_key"` // Hex encoded X|Y or "0" for a reward.
}

// NewRewardTx constructs the unsigned transaction that pays the miner.
func NewRewardTx(recipient string, amount uint64) BlockTx {
	return BlockTx{
		Data: TxData{
			Sender:    Unsigned,
			Recipient: recipient,
			Amount:    json.Number(strconv.FormatUint(amount, 10)),
		},
		Signature: Unsigned,
		PublicKey: Unsigned,
	}
}

// IsReward reports whether the transaction carries the unsigned sentinel
// pair and therefore skips signature verification.
func (tx BlockTx) IsReward() bool {
	return tx.Signature == Unsigned && tx.PublicKey == Unsigned
}

// Verify reports whether the transaction is acceptable: either it is a
// reward or the signature is valid for the public key and the payload.
// Malformed hex is reported as false, as is a payload that cannot be hashed
// even when it is a reward.
func (tx BlockTx) Verify() bool {
	hash, err := tx.Data.Hash()
	if err != nil {
		return false
	}

	if tx.IsReward() {
		return true
	}

	pub, err := signature.DecodeHex(tx.PublicKey)
	if err != nil {
		return false
	}

	sig, err := signature.DecodeHex(tx.Signature)
	if err != nil {
		return false
	}

	return signature.Verify(pub, sig, []byte(hash))
}

// Hash implements the merkle Hashable interface for providing a hash
// of a block transaction.
func (tx BlockTx) Hash() (string, error) {
	return signature.HashValue(tx)
}

// Equals implements the merkle Hashable interface for providing an equality
// check between two block transactions.
func (tx BlockTx) Equals(otherTx BlockTx) bool {
	return tx == otherTx
}

// String implements the fmt.Stringer interface for logging.
func (tx BlockTx) String() string {
	return fmt.Sprintf("%s->%s:%s", tx.Data.Sender, tx.Data.Recipient, tx.Data.Amount)
}
