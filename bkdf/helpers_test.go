package bkdf_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/hasbyte1/go-bkdf/bkdf"
)

// testCost is the minimum work factor. Used in unit tests only so the suite
// runs quickly.
const testCost = bkdf.MinCost

var (
	saltA = mustHex("000102030405060708090a0b0c0d0e0f")
	saltB = mustHex("f298fda14e437dd2bdccf6451163788e")
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func newTestHasher(t testing.TB, v bkdf.Version) *bkdf.Hasher {
	t.Helper()
	h, err := bkdf.NewHasher(bkdf.HasherOptions{Version: v})
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func newTestVerifier(t testing.TB) *bkdf.Verifier {
	t.Helper()
	v, err := bkdf.NewVerifier(bkdf.VerifierOptions{})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return v
}

func newTestUpgrader(t testing.TB) *bkdf.Upgrader {
	t.Helper()
	u, err := bkdf.NewUpgrader(bkdf.UpgraderOptions{})
	if err != nil {
		t.Fatalf("NewUpgrader: %v", err)
	}
	return u
}

func encode(t testing.TB, x interface{ EncodeToString() (string, error) }) string {
	t.Helper()
	s, err := x.EncodeToString()
	if err != nil {
		t.Fatalf("EncodeToString: %v", err)
	}
	return s
}

// fixedReader returns the same byte forever. It makes salts predictable.
type fixedReader byte

func (r fixedReader) Read(p []byte) (int, error) {
	copy(p, bytes.Repeat([]byte{byte(r)}, len(p)))
	return len(p), nil
}
