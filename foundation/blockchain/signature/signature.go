// Package signature provides helper functions for handling the blockchain
// hashing and signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash represents a hash code of zeros. It is the previous hash of the
// genesis block and the merkle root of a block without transactions.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// publicKeyLength is the size of an uncompressed public key without the
// 0x04 marker, X followed by Y.
const publicKeyLength = 64

// =============================================================================

// Hash returns a unique string for the value. The value is serialized in its
// canonical form so the order fields were constructed in does not matter.
// A value that has no canonical form hashes to the empty string, which never
// equals a digest, ZeroHash or a proof prefix. Use HashValue to see the error.
func Hash(value any) string {
	hash, err := HashValue(value)
	if err != nil {
		return ""
	}

	return hash
}

// HashValue is Hash that reports why a value could not be serialized, such
// as a malformed number literal or a NaN.
func HashValue(value any) (string, error) {
	data, err := Canonical(value)
	if err != nil {
		return "", fmt.Errorf("canonical: %w", err)
	}

	return HashBytes(data), nil
}

// HashBytes returns the lowercase hex sha256 digest of the data.
func HashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Sign uses the specified private key to sign the message. The message is
// digested with sha256 and the 64 byte [R|S] signature is returned.
func Sign(privateKey *ecdsa.PrivateKey, message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)

	sig, err := crypto.Sign(digest[:], privateKey)
	if err != nil {
		return nil, err
	}

	// Drop the recovery id, the public key travels with the transaction.
	return sig[:crypto.RecoveryIDOffset], nil
}

// Verify reports whether sig is a valid signature of the message for the
// public key. Malformed keys and signatures are reported as invalid.
func Verify(publicKey []byte, sig []byte, message []byte) bool {
	pub, err := UncompressedPublicKey(publicKey)
	if err != nil {
		return false
	}

	if len(sig) != crypto.RecoveryIDOffset {
		return false
	}

	digest := sha256.Sum256(message)
	return crypto.VerifySignature(pub, digest[:], sig)
}

// UncompressedPublicKey accepts a public key as X|Y or 0x04|X|Y and returns
// the 65 byte form after checking the point is on the curve.
func UncompressedPublicKey(publicKey []byte) ([]byte, error) {
	var pub []byte
	switch len(publicKey) {
	case publicKeyLength:
		pub = append([]byte{0x04}, publicKey...)
	case publicKeyLength + 1:
		pub = publicKey
	default:
		return nil, errors.New("invalid public key length")
	}

	if _, err := crypto.UnmarshalPubkey(pub); err != nil {
		return nil, err
	}

	return pub, nil
}

// DecodeHex decodes a hex string with or without the 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return hexutil.Decode("0x" + s[2:])
	}

	return hex.DecodeString(s)
}
