package hashing_test

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hasbyte1/go-bkdf/hashing"
)

func newTestBcryptHasher(tb testing.TB, cost int) *hashing.BcryptHasher {
	tb.Helper()
	h, err := hashing.NewBcryptHasher(hashing.BcryptOptions{Cost: cost})
	if err != nil {
		tb.Fatalf("NewBcryptHasher: %v", err)
	}
	return h
}

func TestNewBcryptHasher_InvalidCost(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost - 1, 0, -1, bcrypt.MaxCost + 1} {
		_, err := hashing.NewBcryptHasher(hashing.BcryptOptions{Cost: cost})
		if !errors.Is(err, hashing.ErrInvalidOption) {
			t.Errorf("cost %d: expected ErrInvalidOption, got %v", cost, err)
		}
	}
}

func TestNewBcryptHasher_DefaultOptions(t *testing.T) {
	h, err := hashing.NewBcryptHasher(hashing.DefaultBcryptOptions())
	if err != nil {
		t.Fatalf("NewBcryptHasher: %v", err)
	}
	if h.Cost() != hashing.DefaultBcryptCost {
		t.Fatalf("got cost %d, want %d", h.Cost(), hashing.DefaultBcryptCost)
	}
}

func TestBcryptHasher_MakeCheck(t *testing.T) {
	h := newTestBcryptHasher(t, bcrypt.MinCost)
	hash, err := h.Make("hunter2")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if ok, err := h.Check("hunter2", hash); err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if ok, err := h.Check("hunter3", hash); err != nil || ok {
		t.Fatalf("wrong password: ok=%v err=%v", ok, err)
	}
}

func TestBcryptHasher_RejectsBKDF(t *testing.T) {
	h := newTestBcryptHasher(t, bcrypt.MinCost)
	_, err := h.Check("secret", bkdfSecretCost4)
	if !errors.Is(err, hashing.ErrAlgorithmMismatch) {
		t.Fatalf("expected ErrAlgorithmMismatch, got %v", err)
	}
}

func TestBcryptHasher_NeedsRehashAndInfo(t *testing.T) {
	old := legacyBcrypt(t, "pw", bcrypt.MinCost)

	same := newTestBcryptHasher(t, bcrypt.MinCost)
	if need, err := same.NeedsRehash(old); err != nil || need {
		t.Fatalf("same cost: need=%v err=%v", need, err)
	}
	higher := newTestBcryptHasher(t, bcrypt.MinCost+1)
	if need, err := higher.NeedsRehash(old); err != nil || !need {
		t.Fatalf("higher cost: need=%v err=%v", need, err)
	}

	info, err := same.Info(old)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Driver != hashing.DriverBcrypt || info.Params["cost"] != bcrypt.MinCost {
		t.Fatalf("got %+v", info)
	}
}

func TestBcryptHasher_TruncatedHash(t *testing.T) {
	h := newTestBcryptHasher(t, bcrypt.MinCost)
	_, err := h.Check("pw", "$2a$04$short")
	if !errors.Is(err, hashing.ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}
