package bkdf

import (
	"crypto/rand"
	"fmt"
	"io"
)

// HasherOptions configures a [Hasher].
type HasherOptions struct {
	// Version selects the protocol variant. Default: [DefaultVersion].
	Version Version

	// Rand is the salt source. Default: crypto/rand.Reader.
	Rand io.Reader

	// Observer receives stretch timings. Default: none.
	Observer Observer
}

// Hasher produces single-stage BKDF hashes.
//
// # Thread safety
//
// Hasher is immutable after construction and safe for concurrent use as
// long as its Rand source is.
type Hasher struct {
	version Version
	rand    io.Reader
	obs     Observer
}

// NewHasher constructs a Hasher. A zero Version selects [DefaultVersion].
// Returns [ErrUnsupportedVersion] for any other unregistered version.
func NewHasher(opts HasherOptions) (*Hasher, error) {
	v := opts.Version
	if v == (Version{}) {
		v = DefaultVersion()
	}
	if err := v.check(); err != nil {
		return nil, err
	}
	r := opts.Rand
	if r == nil {
		r = rand.Reader
	}
	return &Hasher{version: v, rand: r, obs: observerOrNop(opts.Observer)}, nil
}

// Version returns the version this hasher produces.
func (h *Hasher) Version() Version { return h.version }

// Hash hashes password at cost with a fresh salt and returns the Base64-URL
// storage form.
func (h *Hasher) Hash(password string, cost int) (string, error) {
	d, err := h.HashRaw(password, cost)
	if err != nil {
		return "", err
	}
	defer d.Wipe()
	return d.EncodeToString()
}

// HashRaw is like Hash but returns the decoded [HashData].
//
// Returns [ErrInvalidParameter] if cost is outside [MinCost, MaxCost] or the
// UTF-8 password is longer than [MaxPasswordLen] bytes.
func (h *Hasher) HashRaw(password string, cost int) (*HashData, error) {
	b := []byte(password)
	defer clear(b)
	return h.HashBytesRaw(b, cost)
}

// HashBytes hashes an arbitrary byte secret and returns the storage form.
func (h *Hasher) HashBytes(secret []byte, cost int) (string, error) {
	d, err := h.HashBytesRaw(secret, cost)
	if err != nil {
		return "", err
	}
	defer d.Wipe()
	return d.EncodeToString()
}

// HashBytesRaw hashes an arbitrary byte secret with a fresh salt.
func (h *Hasher) HashBytesRaw(secret []byte, cost int) (*HashData, error) {
	salt, err := randomSalt(h.rand)
	if err != nil {
		return nil, err
	}
	defer clear(salt)
	return h.HashWithSalt(secret, salt, cost)
}

// HashWithSalt hashes secret with a caller-provided 16-byte salt. It is
// deterministic and exists for reproducible test vectors and for callers
// that manage salts themselves.
func (h *Hasher) HashWithSalt(secret, salt []byte, cost int) (*HashData, error) {
	if err := checkCost(cost); err != nil {
		return nil, err
	}
	if err := checkSecret(secret); err != nil {
		return nil, err
	}
	if err := checkSalt(salt); err != nil {
		return nil, err
	}
	out, err := stretchRound(h.obs, OpHash, h.version, cost, salt, secret)
	if err != nil {
		return nil, err
	}
	defer clear(out)
	return NewHashData(h.version, cost, salt, out)
}

func checkSecret(secret []byte) error {
	if len(secret) > MaxPasswordLen {
		return fmt.Errorf("%w: password must be at most %d bytes, got %d",
			ErrInvalidParameter, MaxPasswordLen, len(secret))
	}
	return nil
}

// randomSalt reads SaltLen bytes from r.
func randomSalt(r io.Reader) ([]byte, error) {
	b := make([]byte, SaltLen)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("bkdf: failed to generate salt: %w", err)
	}
	return b, nil
}
