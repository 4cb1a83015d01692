package signature_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"math"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
)

// =============================================================================

func Test_Hash(t *testing.T) {
	value := struct {
		Name string `json:"name"`
	}{
		Name: "Bill",
	}
	hash := "8df3d440792909b3fba4a6cd05c3fed9ebc7a60d300952e0cd1db79b949fccb6"

	h := signature.Hash(value)
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the right hash: %s", h[:6])
	}

	h = signature.Hash(map[string]string{"name": "Bill"})
	if h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the same hash for a map.")
	}
}

func Test_HashUnserializable(t *testing.T) {
	tt := []struct {
		name  string
		value any
	}{
		{name: "nan", value: map[string]any{"amount": math.NaN()}},
		{name: "inf", value: map[string]any{"amount": math.Inf(1)}},
		{name: "number", value: map[string]any{"amount": json.Number("abc")}},
		{name: "channel", value: make(chan int)},
	}

	t.Log("Given the need to surface values that have no canonical form.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				if _, err := signature.HashValue(tst.value); err == nil {
					t.Fatalf("\t%s\tTest %d:\tShould get an error from HashValue.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get an error from HashValue.", success, testID)

				h := signature.Hash(tst.value)
				if h != "" {
					t.Fatalf("\t%s\tTest %d:\tShould hash to the empty string, got %q.", failed, testID, h)
				}
				t.Logf("\t%s\tTest %d:\tShould hash to the empty string.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_HashFieldOrder(t *testing.T) {
	first := struct {
		A int    `json:"a"`
		B string `json:"b"`
	}{A: 1, B: "x"}

	second := struct {
		B string `json:"b"`
		A int    `json:"a"`
	}{B: "x", A: 1}

	if signature.Hash(first) != signature.Hash(second) {
		t.Fatalf("Should get the same hash regardless of field order.")
	}
}

func Test_Canonical(t *testing.T) {
	value := map[string]any{
		"b": 1,
		"a": []any{true, nil, "x<y&z"},
		"c": map[string]any{"z": "é\n", "y": 31251101365711.12},
	}

	exp := `{"a": [true, null, "x<y&z"], "b": 1, "c": {"y": 31251101365711.12, "z": "\u00e9\n"}}`
	hash := "266fff60e12b0182a55d8d8c671c19fc590f36322986baae35e2080dbefdda6f"

	data, err := signature.Canonical(value)
	if err != nil {
		t.Fatalf("Should be able to produce the canonical form: %s", err)
	}

	if string(data) != exp {
		t.Logf("got: %s", data)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should get back the right canonical form.")
	}

	if h := signature.Hash(value); h != hash {
		t.Logf("got: %s", h)
		t.Logf("exp: %s", hash)
		t.Fatalf("Should get back the right hash.")
	}
}

func Test_SignVerify(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	pub := crypto.FromECDSAPub(&pk.PublicKey)

	message := []byte("the quick brown fox")

	sig, err := signature.Sign(pk, message)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	if len(sig) != 64 {
		t.Fatalf("Should get a 64 byte signature, got %d", len(sig))
	}

	if !signature.Verify(pub, sig, message) {
		t.Fatalf("Should be able to verify the signature with the 0x04 key.")
	}

	if !signature.Verify(pub[1:], sig, message) {
		t.Fatalf("Should be able to verify the signature with the X|Y key.")
	}

	// Every single bit flip in the signature must fail verification.
	for i := 0; i < len(sig)*8; i++ {
		bad := bytes.Clone(sig)
		bad[i/8] ^= 1 << (i % 8)
		if signature.Verify(pub, bad, message) {
			t.Fatalf("Should fail verification with bit %d of the signature flipped.", i)
		}
	}

	// Every single bit flip in the message must fail verification.
	for i := 0; i < len(message)*8; i++ {
		bad := bytes.Clone(message)
		bad[i/8] ^= 1 << (i % 8)
		if signature.Verify(pub, sig, bad) {
			t.Fatalf("Should fail verification with bit %d of the message flipped.", i)
		}
	}
}

func Test_VerifyMalformed(t *testing.T) {
	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}
	pub := crypto.FromECDSAPub(&pk.PublicKey)

	message := []byte("message")
	sig, err := signature.Sign(pk, message)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	tt := []struct {
		name string
		pub  []byte
		sig  []byte
	}{
		{name: "empty-sig", pub: pub, sig: nil},
		{name: "short-sig", pub: pub, sig: sig[:40]},
		{name: "long-sig", pub: pub, sig: append(bytes.Clone(sig), 0x01)},
		{name: "empty-pub", pub: nil, sig: sig},
		{name: "short-pub", pub: pub[:33], sig: sig},
		{name: "off-curve", pub: bytes.Repeat([]byte{0x01}, 64), sig: sig},
		{name: "zero-sig", pub: pub, sig: make([]byte, 64)},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			if signature.Verify(tst.pub, tst.sig, message) {
				t.Fatalf("Test %s:\tShould report malformed input as invalid.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_DecodeHex(t *testing.T) {
	exp := []byte{0xde, 0xad, 0xbe, 0xef}

	for _, s := range []string{"deadbeef", "0xdeadbeef", "0XDEADBEEF"} {
		b, err := signature.DecodeHex(s)
		if err != nil {
			t.Fatalf("Should be able to decode %q: %s", s, err)
		}
		if !bytes.Equal(b, exp) {
			t.Fatalf("Should decode %q to %s, got %s", s, hex.EncodeToString(exp), hex.EncodeToString(b))
		}
	}

	if _, err := signature.DecodeHex("0"); err == nil {
		t.Fatalf("Should not be able to decode an odd length string.")
	}
}
