package bkdf

import (
	"crypto/subtle"
	"fmt"
)

// VerifierOptions configures a [Verifier].
type VerifierOptions struct {
	// MaxCost bounds the work a stored value may demand. When non-zero, a
	// value whose cumulative iteration count exceeds 2^MaxCost is rejected
	// with [ErrInvalidParameter] before any stretching. Default: unbounded.
	MaxCost int

	// Observer receives stretch timings. Default: none.
	Observer Observer
}

// Verifier checks passwords against stored BKDF hashes of either format.
//
// # Thread safety
//
// Verifier is immutable after construction and safe for concurrent use.
type Verifier struct {
	maxCost int
	obs     Observer
}

// NewVerifier constructs a Verifier.
// Returns [ErrInvalidParameter] if MaxCost is neither zero nor a valid cost.
func NewVerifier(opts VerifierOptions) (*Verifier, error) {
	if opts.MaxCost != 0 {
		if err := checkCost(opts.MaxCost); err != nil {
			return nil, fmt.Errorf("max cost: %w", err)
		}
	}
	return &Verifier{maxCost: opts.MaxCost, obs: observerOrNop(opts.Observer)}, nil
}

// Verify reports whether password matches stored, which may be in the
// single-stage or the compound format.
//
// Returns (true, nil) on match, (false, nil) on mismatch and (false, err)
// when stored cannot be decoded.
func (v *Verifier) Verify(password, stored string) (bool, error) {
	b := []byte(password)
	defer clear(b)
	return v.VerifyBytes(b, stored)
}

// VerifyBytes is Verify for byte secrets.
func (v *Verifier) VerifyBytes(secret []byte, stored string) (bool, error) {
	c, err := ParseStored(stored)
	if err != nil {
		return false, err
	}
	defer c.Wipe()
	return v.verifyChain(secret, c)
}

// VerifyHashData checks password against a decoded single-stage hash.
func (v *Verifier) VerifyHashData(password string, h *HashData) (bool, error) {
	c, err := CompoundFromHashData(h)
	if err != nil {
		return false, err
	}
	defer c.Wipe()
	b := []byte(password)
	defer clear(b)
	return v.verifyChain(b, c)
}

// VerifyCompoundHashData checks password against a decoded chain.
func (v *Verifier) VerifyCompoundHashData(password string, c *CompoundHashData) (bool, error) {
	b := []byte(password)
	defer clear(b)
	return v.verifyChain(b, c)
}

func (v *Verifier) verifyChain(secret []byte, c *CompoundHashData) (bool, error) {
	if c.wiped {
		return false, ErrWiped
	}
	if err := checkSecret(secret); err != nil {
		return false, err
	}
	if err := c.validate(); err != nil {
		return false, err
	}
	if v.maxCost != 0 && c.Iterations() > uint64(1)<<uint(v.maxCost) {
		return false, fmt.Errorf("%w: stored work %d iterations exceeds limit 2^%d",
			ErrInvalidParameter, c.Iterations(), v.maxCost)
	}
	got, err := replay(v.obs, OpVerify, c.rounds, c.salt, secret)
	if err != nil {
		return false, err
	}
	defer clear(got)
	return subtle.ConstantTimeCompare(got, c.hash) == 1, nil
}
