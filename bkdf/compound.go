package bkdf

import (
	"bytes"
	"crypto/subtle"
	"fmt"
	"slices"
)

const (
	// MaxRounds is the longest round list the compound format can carry.
	MaxRounds = 255

	// compoundMarker is the leading byte of the compound format. It is not
	// a valid version code.
	compoundMarker byte = 0xFE
)

// Round is one applied stretch: the version and cost it ran with.
type Round struct {
	Version Version
	Cost    int
}

func (r Round) String() string { return fmt.Sprintf("%s/%d", r.Version, r.Cost) }

// iterations returns 2^Cost.
func (r Round) iterations() uint64 { return uint64(1) << uint(r.Cost) }

func (r Round) check() error {
	if err := r.Version.check(); err != nil {
		return err
	}
	return checkCost(r.Cost)
}

// CompoundHashData is a chain of BKDF rounds sharing one original salt.
//
// Binary layout:
//
//	[0xFE][count:1][(version:1, cost:1) × count][salt:16][hash:N]
//
// N is the hash length of the last round's version. Only the original salt
// is stored; the salts of later rounds are derived from it while the chain
// is replayed.
//
// # Thread safety
//
// Same rules as [HashData].
type CompoundHashData struct {
	rounds []Round
	salt   []byte
	hash   []byte
	wiped  bool
}

// NewCompoundHashData validates and copies its arguments.
//
// Returns [ErrInvalidParameter] for an empty round list, a bad round, or a
// salt or hash of the wrong length, and [ErrTooManyConfigs] for more than
// [MaxRounds] rounds.
func NewCompoundHashData(rounds []Round, salt, hash []byte) (*CompoundHashData, error) {
	if len(rounds) == 0 {
		return nil, fmt.Errorf("%w: at least one round is required", ErrInvalidParameter)
	}
	if len(rounds) > MaxRounds {
		return nil, fmt.Errorf("%w: got %d", ErrTooManyConfigs, len(rounds))
	}
	for i, r := range rounds {
		if err := r.check(); err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}
	}
	if err := checkSalt(salt); err != nil {
		return nil, err
	}
	last := rounds[len(rounds)-1].Version
	if len(hash) != last.hashLen {
		return nil, fmt.Errorf("%w: hash must be %d bytes for %s, got %d",
			ErrInvalidParameter, last.hashLen, last, len(hash))
	}
	return &CompoundHashData{
		rounds: slices.Clone(rounds),
		salt:   bytes.Clone(salt),
		hash:   bytes.Clone(hash),
	}, nil
}

// CompoundFromHashData lifts a single-stage hash into a one-round chain.
func CompoundFromHashData(h *HashData) (*CompoundHashData, error) {
	if h.wiped {
		return nil, ErrWiped
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	return &CompoundHashData{
		rounds: []Round{{Version: h.version, Cost: h.cost}},
		salt:   bytes.Clone(h.salt),
		hash:   bytes.Clone(h.hash),
	}, nil
}

// ParseCompound decodes the binary compound format.
func ParseCompound(b []byte) (*CompoundHashData, error) {
	if len(b) < 2 {
		return nil, fmt.Errorf("%w: compound message too short (%d bytes)", ErrMalformedMessage, len(b))
	}
	if b[0] != compoundMarker {
		return nil, fmt.Errorf("%w: expected compound marker 0x%02x, got 0x%02x",
			ErrMalformedMessage, compoundMarker, b[0])
	}
	count := int(b[1])
	if count == 0 {
		return nil, fmt.Errorf("%w: zero rounds", ErrMalformedMessage)
	}
	off := 2
	if len(b) < off+2*count {
		return nil, fmt.Errorf("%w: truncated round list", ErrMalformedMessage)
	}
	rounds := make([]Round, count)
	for i := range rounds {
		v, err := VersionByCode(b[off])
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}
		cost := int(b[off+1])
		if err := checkCost(cost); err != nil {
			return nil, fmt.Errorf("%w: round %d: %v", ErrMalformedMessage, i, err)
		}
		rounds[i] = Round{Version: v, Cost: cost}
		off += 2
	}

	n := rounds[count-1].Version.hashLen
	if want := off + SaltLen + n; len(b) != want {
		return nil, fmt.Errorf("%w: compound message must be %d bytes, got %d",
			ErrMalformedMessage, want, len(b))
	}
	return &CompoundHashData{
		rounds: rounds,
		salt:   bytes.Clone(b[off : off+SaltLen]),
		hash:   bytes.Clone(b[off+SaltLen:]),
	}, nil
}

// ParseCompoundString decodes the Base64-URL compound format.
func ParseCompoundString(s string) (*CompoundHashData, error) {
	b, err := decodeText(s)
	if err != nil {
		return nil, err
	}
	defer clear(b)
	return ParseCompound(b)
}

// ParseStored decodes either storage format. Single-stage values are
// lifted with [CompoundFromHashData].
func ParseStored(s string) (*CompoundHashData, error) {
	if IsCompound(s) {
		return ParseCompoundString(s)
	}
	h, err := ParseHashDataString(s)
	if err != nil {
		return nil, err
	}
	defer h.Wipe()
	return CompoundFromHashData(h)
}

// IsCompound reports whether s looks like a compound message. It decodes
// the first Base64 quantum only and does not validate the rest.
func IsCompound(s string) bool {
	if len(s) < 4 {
		return false
	}
	var lead [3]byte
	n, err := b64.Decode(lead[:], []byte(s[:4]))
	return err == nil && n > 0 && lead[0] == compoundMarker
}

// Rounds returns a copy of the applied rounds in application order.
func (c *CompoundHashData) Rounds() []Round { return slices.Clone(c.rounds) }

// Len returns the number of rounds.
func (c *CompoundHashData) Len() int { return len(c.rounds) }

// Last returns the most recently applied round.
func (c *CompoundHashData) Last() Round { return c.rounds[len(c.rounds)-1] }

// Iterations returns the cumulative iteration count, the sum of 2^cost over
// all rounds.
func (c *CompoundHashData) Iterations() uint64 { return totalIterations(c.rounds) }

// Salt returns a copy of the original salt, or nil after Wipe.
func (c *CompoundHashData) Salt() []byte {
	if c.wiped {
		return nil
	}
	return bytes.Clone(c.salt)
}

// Hash returns a copy of the final chained output, or nil after Wipe.
func (c *CompoundHashData) Hash() []byte {
	if c.wiped {
		return nil
	}
	return bytes.Clone(c.hash)
}

// Wiped reports whether Wipe has been called.
func (c *CompoundHashData) Wiped() bool { return c.wiped }

// Wipe zeroes the salt and hash in place and marks c as dead.
func (c *CompoundHashData) Wipe() {
	if c.wiped {
		return
	}
	clear(c.salt)
	clear(c.hash)
	c.wiped = true
}

// Equal reports whether both chains have the same rounds, salt and hash.
func (c *CompoundHashData) Equal(o *CompoundHashData) bool {
	if c == nil || o == nil || c.wiped || o.wiped {
		return false
	}
	if !slices.Equal(c.rounds, o.rounds) {
		return false
	}
	s := subtle.ConstantTimeCompare(c.salt, o.salt)
	x := subtle.ConstantTimeCompare(c.hash, o.hash)
	return s&x == 1
}

// MarshalBinary implements [encoding.BinaryMarshaler].
func (c *CompoundHashData) MarshalBinary() ([]byte, error) {
	if c.wiped {
		return nil, ErrWiped
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	out := make([]byte, 0, 2+2*len(c.rounds)+SaltLen+len(c.hash))
	out = append(out, compoundMarker, byte(len(c.rounds)))
	for _, r := range c.rounds {
		out = append(out, r.Version.code, byte(r.Cost))
	}
	out = append(out, c.salt...)
	out = append(out, c.hash...)
	return out, nil
}

// UnmarshalBinary implements [encoding.BinaryUnmarshaler].
func (c *CompoundHashData) UnmarshalBinary(b []byte) error {
	p, err := ParseCompound(b)
	if err != nil {
		return err
	}
	*c = *p
	return nil
}

// MarshalText implements [encoding.TextMarshaler] using Base64-URL.
func (c *CompoundHashData) MarshalText() ([]byte, error) {
	b, err := c.MarshalBinary()
	if err != nil {
		return nil, err
	}
	defer clear(b)
	out := make([]byte, b64.EncodedLen(len(b)))
	b64.Encode(out, b)
	return out, nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (c *CompoundHashData) UnmarshalText(text []byte) error {
	p, err := ParseCompoundString(string(text))
	if err != nil {
		return err
	}
	*c = *p
	return nil
}

// EncodeToString returns the Base64-URL storage form.
func (c *CompoundHashData) EncodeToString() (string, error) {
	b, err := c.MarshalText()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// validate rejects chains that did not come from a constructor or decoder,
// such as the zero CompoundHashData.
func (c *CompoundHashData) validate() error {
	switch {
	case len(c.rounds) == 0:
		return fmt.Errorf("%w: zero rounds", ErrMalformedMessage)
	case len(c.rounds) > MaxRounds:
		return fmt.Errorf("%w: got %d", ErrTooManyConfigs, len(c.rounds))
	}
	for i, r := range c.rounds {
		if err := r.Version.check(); err != nil {
			return fmt.Errorf("%w: round %d: %w", ErrMalformedMessage, i, err)
		}
		if err := checkCost(r.Cost); err != nil {
			return fmt.Errorf("%w: round %d: %v", ErrMalformedMessage, i, err)
		}
	}
	return checkFields(c.salt, c.hash, c.Last().Version.hashLen)
}

func totalIterations(rounds []Round) uint64 {
	var n uint64
	for _, r := range rounds {
		n += r.iterations()
	}
	return n
}
