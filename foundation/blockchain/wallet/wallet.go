// Package wallet derives key pairs and checksummed addresses from seed
// strings. Addresses follow the pay-to-public-key-hash scheme: sha256, then
// ripemd160, a network version byte and a double sha256 checksum, base58
// encoded.
package wallet

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/btcsuite/btcutil/base58"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ripemd160"
)

// Version bytes for the base58 check encoded values.
const (
	AddressVersion byte = 0x00
	WIFVersion     byte = 0x80
)

// ErrInvalidScalar is returned when the digest of a seed is not a usable
// private key for the curve.
var ErrInvalidScalar = errors.New("seed does not produce a valid private scalar")

// Address represents a base58 check encoded public key hash.
type Address string

// =============================================================================

// KeyPair holds the private scalar and the public point derived from a seed.
type KeyPair struct {
	PrivateKey *ecdsa.PrivateKey
}

// DeriveKeyPair turns the seed into a key pair. The private scalar is the
// sha256 digest of the seed.
func DeriveKeyPair(seed string) (KeyPair, error) {
	digest := sha256.Sum256([]byte(seed))

	privateKey, err := crypto.ToECDSA(digest[:])
	if err != nil {
		return KeyPair{}, errors.Wrap(ErrInvalidScalar, err.Error())
	}

	return KeyPair{PrivateKey: privateKey}, nil
}

// PrivateBytes returns the 32 byte big endian private scalar.
func (kp KeyPair) PrivateBytes() []byte {
	return crypto.FromECDSA(kp.PrivateKey)
}

// PublicBytes returns the 64 byte uncompressed public key, X followed by Y.
func (kp KeyPair) PublicBytes() []byte {
	return crypto.FromECDSAPub(&kp.PrivateKey.PublicKey)[1:]
}

// PublicHex returns the public key in the hex form carried by transactions.
func (kp KeyPair) PublicHex() string {
	return hex.EncodeToString(kp.PublicBytes())
}

// CompressedPublicKey returns 0x02 or 0x03, depending on the parity of Y,
// followed by X.
func (kp KeyPair) CompressedPublicKey() []byte {
	return crypto.CompressPubkey(&kp.PrivateKey.PublicKey)
}

// WIF returns the wallet import form of the private key.
func (kp KeyPair) WIF() string {
	return base58.CheckEncode(kp.PrivateBytes(), WIFVersion)
}

// Address returns the address for the public key of this pair.
func (kp KeyPair) Address() Address {
	addr, _ := DeriveAddress(kp.PublicBytes())
	return addr
}

// Sign signs the message with the private key of this pair.
func (kp KeyPair) Sign(message []byte) ([]byte, error) {
	return signature.Sign(kp.PrivateKey, message)
}

// =============================================================================

// DeriveAddress computes the address for a public key provided as X|Y or
// 0x04|X|Y.
func DeriveAddress(publicKey []byte) (Address, error) {
	pub, err := signature.UncompressedPublicKey(publicKey)
	if err != nil {
		return "", errors.Wrap(err, "derive address")
	}

	digest := sha256.Sum256(pub)

	h := ripemd160.New()
	h.Write(digest[:])

	return Address(base58.CheckEncode(h.Sum(nil), AddressVersion)), nil
}

// ValidateAddress checks the encoding, checksum, version and payload size
// of the address.
func ValidateAddress(addr Address) error {
	payload, version, err := base58.CheckDecode(string(addr))
	if err != nil {
		return errors.Wrapf(err, "address %q", addr)
	}

	if version != AddressVersion {
		return errors.Errorf("address %q: wrong version %#x", addr, version)
	}

	if len(payload) != ripemd160.Size {
		return errors.Errorf("address %q: wrong payload size %d", addr, len(payload))
	}

	return nil
}
