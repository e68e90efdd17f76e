package bkdf

import (
	"bytes"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"github.com/hasbyte1/go-bkdf/internal/stretch"
)

const (
	// SaltLen is the length of every BKDF salt in bytes.
	SaltLen = stretch.SaltLen

	// MinCost and MaxCost bound the log2 work factor of a single round.
	MinCost = stretch.MinCost
	MaxCost = stretch.MaxCost

	// DefaultCost is the recommended work factor for new hashes.
	// It matches the bcrypt recommendation of roughly 250 ms per hash on a
	// current server CPU.
	DefaultCost = 12

	// MaxPasswordLen is the longest accepted password or secret, in bytes.
	MaxPasswordLen = 256
)

// b64 is the textual form of both wire formats.
var b64 = base64.URLEncoding

// HashData is a single-stage BKDF hash: one round at one cost.
//
// Binary layout:
//
//	[version:1][cost:1][salt:16][hash:23|24]
//
// HashData holds sensitive material. Call [HashData.Wipe] once it is no
// longer needed; every later encode fails with [ErrWiped].
//
// # Thread safety
//
// Read-only methods are safe for concurrent use. Wipe must not run
// concurrently with any other method on the same value.
type HashData struct {
	version Version
	cost    int
	salt    []byte
	hash    []byte
	wiped   bool
}

// NewHashData validates and copies its arguments into a new HashData.
//
// Returns [ErrUnsupportedVersion] for an unregistered version and
// [ErrInvalidParameter] for a bad cost, salt length or hash length.
func NewHashData(v Version, cost int, salt, hash []byte) (*HashData, error) {
	if err := v.check(); err != nil {
		return nil, err
	}
	if err := checkCost(cost); err != nil {
		return nil, err
	}
	if err := checkSalt(salt); err != nil {
		return nil, err
	}
	if len(hash) != v.hashLen {
		return nil, fmt.Errorf("%w: hash must be %d bytes for %s, got %d",
			ErrInvalidParameter, v.hashLen, v, len(hash))
	}
	return &HashData{
		version: v,
		cost:    cost,
		salt:    bytes.Clone(salt),
		hash:    bytes.Clone(hash),
	}, nil
}

// ParseHashData decodes the binary single-stage format.
//
// Returns [ErrUnsupportedVersion] when the leading byte is not a known
// version and [ErrMalformedMessage] when the length does not match it exactly.
func ParseHashData(b []byte) (*HashData, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty message", ErrMalformedMessage)
	}
	v, err := VersionByCode(b[0])
	if err != nil {
		return nil, err
	}
	want := 2 + SaltLen + v.hashLen
	if len(b) != want {
		return nil, fmt.Errorf("%w: %s message must be %d bytes, got %d",
			ErrMalformedMessage, v, want, len(b))
	}
	cost := int(b[1])
	if err := checkCost(cost); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return &HashData{
		version: v,
		cost:    cost,
		salt:    bytes.Clone(b[2 : 2+SaltLen]),
		hash:    bytes.Clone(b[2+SaltLen:]),
	}, nil
}

// ParseHashDataString decodes the Base64-URL single-stage format.
func ParseHashDataString(s string) (*HashData, error) {
	b, err := decodeText(s)
	if err != nil {
		return nil, err
	}
	defer clear(b)
	return ParseHashData(b)
}

// Version returns the protocol version of the hash.
func (h *HashData) Version() Version { return h.version }

// Cost returns the log2 work factor.
func (h *HashData) Cost() int { return h.cost }

// Salt returns a copy of the salt, or nil after Wipe.
func (h *HashData) Salt() []byte {
	if h.wiped {
		return nil
	}
	return bytes.Clone(h.salt)
}

// Hash returns a copy of the stretch output, or nil after Wipe.
func (h *HashData) Hash() []byte {
	if h.wiped {
		return nil
	}
	return bytes.Clone(h.hash)
}

// Wiped reports whether Wipe has been called.
func (h *HashData) Wiped() bool { return h.wiped }

// Wipe zeroes the salt and hash in place and marks h as dead.
// Calling Wipe more than once is a no-op.
func (h *HashData) Wipe() {
	if h.wiped {
		return
	}
	clear(h.salt)
	clear(h.hash)
	h.wiped = true
}

// Equal reports whether h and o carry the same version, cost, salt and hash.
// Salt and hash are compared in constant time. Wiped values are never equal.
func (h *HashData) Equal(o *HashData) bool {
	if h == nil || o == nil || h.wiped || o.wiped {
		return false
	}
	if h.version != o.version || h.cost != o.cost {
		return false
	}
	s := subtle.ConstantTimeCompare(h.salt, o.salt)
	x := subtle.ConstantTimeCompare(h.hash, o.hash)
	return s&x == 1
}

// MarshalBinary implements [encoding.BinaryMarshaler].
func (h *HashData) MarshalBinary() ([]byte, error) {
	if h.wiped {
		return nil, ErrWiped
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	out := make([]byte, 0, 2+SaltLen+len(h.hash))
	out = append(out, h.version.code, byte(h.cost))
	out = append(out, h.salt...)
	out = append(out, h.hash...)
	return out, nil
}

// UnmarshalBinary implements [encoding.BinaryUnmarshaler].
func (h *HashData) UnmarshalBinary(b []byte) error {
	p, err := ParseHashData(b)
	if err != nil {
		return err
	}
	*h = *p
	return nil
}

// MarshalText implements [encoding.TextMarshaler] using Base64-URL.
func (h *HashData) MarshalText() ([]byte, error) {
	b, err := h.MarshalBinary()
	if err != nil {
		return nil, err
	}
	defer clear(b)
	out := make([]byte, b64.EncodedLen(len(b)))
	b64.Encode(out, b)
	return out, nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (h *HashData) UnmarshalText(text []byte) error {
	p, err := ParseHashDataString(string(text))
	if err != nil {
		return err
	}
	*h = *p
	return nil
}

// EncodeToString returns the Base64-URL storage form.
func (h *HashData) EncodeToString() (string, error) {
	b, err := h.MarshalText()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// validate rejects values that did not come from a constructor or decoder,
// such as the zero HashData.
func (h *HashData) validate() error {
	if err := h.version.check(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	if err := checkCost(h.cost); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return checkFields(h.salt, h.hash, h.version.hashLen)
}

// ──────────────────────────────────────────────────────────────────────────────
// Shared validation
// ──────────────────────────────────────────────────────────────────────────────

func checkCost(cost int) error {
	if cost < MinCost || cost > MaxCost {
		return fmt.Errorf("%w: cost %d must be in [%d, %d]",
			ErrInvalidParameter, cost, MinCost, MaxCost)
	}
	return nil
}

func checkSalt(salt []byte) error {
	if len(salt) != SaltLen {
		return fmt.Errorf("%w: salt must be %d bytes, got %d",
			ErrInvalidParameter, SaltLen, len(salt))
	}
	return nil
}

// checkFields validates the salt and hash lengths of a decoded value.
func checkFields(salt, hash []byte, hashLen int) error {
	if len(salt) != SaltLen {
		return fmt.Errorf("%w: salt is %d bytes, want %d", ErrMalformedMessage, len(salt), SaltLen)
	}
	if len(hash) != hashLen {
		return fmt.Errorf("%w: hash is %d bytes, want %d", ErrMalformedMessage, len(hash), hashLen)
	}
	return nil
}

func decodeText(s string) ([]byte, error) {
	b, err := b64.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return b, nil
}
