package hashing

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/hasbyte1/go-bkdf/bkdf"
)

// DefaultBcryptCost is the bcrypt work factor, equal to [bkdf.DefaultCost].
const DefaultBcryptCost = bkdf.DefaultCost

// BcryptOptions configures a [BcryptHasher].
type BcryptOptions struct {
	// Cost is the bcrypt work factor (logarithmic).
	// Valid range: [bcrypt.MinCost (4), bcrypt.MaxCost (31)].
	Cost int
}

// DefaultBcryptOptions returns BcryptOptions with [DefaultBcryptCost].
func DefaultBcryptOptions() BcryptOptions {
	return BcryptOptions{Cost: DefaultBcryptCost}
}

// BcryptHasher checks and produces standard bcrypt hashes. Keep it
// registered while bcrypt hashes remain in storage; new hashes should come
// from [BKDFHasher].
//
// bcrypt silently ignores password bytes beyond the 72nd. BKDF does not.
//
// # Thread safety
//
// BcryptHasher is immutable after construction and safe for concurrent use.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher constructs a BcryptHasher with the provided options.
// Returns [ErrInvalidOption] if Cost is outside [bcrypt.MinCost, bcrypt.MaxCost].
func NewBcryptHasher(opts BcryptOptions) (*BcryptHasher, error) {
	if opts.Cost < bcrypt.MinCost || opts.Cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d must be in [%d, %d]",
			ErrInvalidOption, opts.Cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: opts.Cost}, nil
}

// Driver returns [DriverBcrypt].
func (h *BcryptHasher) Driver() DriverName { return DriverBcrypt }

// Cost returns the configured bcrypt work factor.
func (h *BcryptHasher) Cost() int { return h.cost }

// Make returns a Modular Crypt Format bcrypt string.
func (h *BcryptHasher) Make(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing: bcrypt: %w", err)
	}
	return string(out), nil
}

// Check never returns bcrypt.ErrMismatchedHashAndPassword; a mismatch is
// (false, nil).
func (h *BcryptHasher) Check(password, hash string) (bool, error) {
	if err := h.claim(hash); err != nil {
		return false, err
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return true, nil
}

// NeedsRehash reports whether the stored cost is below the configured one.
func (h *BcryptHasher) NeedsRehash(hash string) (bool, error) {
	cost, err := h.storedCost(hash)
	if err != nil {
		return false, err
	}
	return cost < h.cost, nil
}

// Info returns the stored cost.
func (h *BcryptHasher) Info(hash string) (HashInfo, error) {
	cost, err := h.storedCost(hash)
	if err != nil {
		return HashInfo{}, err
	}
	return HashInfo{Driver: DriverBcrypt, Params: map[string]any{"cost": cost}}, nil
}

func (h *BcryptHasher) claim(hash string) error {
	if d, ok := DetectDriver(hash); !ok || d != DriverBcrypt {
		return fmt.Errorf("%w: hash does not appear to be bcrypt", ErrAlgorithmMismatch)
	}
	return nil
}

func (h *BcryptHasher) storedCost(hash string) (int, error) {
	if err := h.claim(hash); err != nil {
		return 0, err
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return cost, nil
}
