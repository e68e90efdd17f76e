package hashing

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hasbyte1/go-bkdf/bkdf"
)

// BKDFOptions configures a [BKDFHasher].
type BKDFOptions struct {
	// Config selects version, cost and the verify bound.
	// Default: [bkdf.DefaultConfig].
	Config bkdf.Config

	// Logger is handed to the embedded upgrader. Default: discard.
	Logger *slog.Logger

	// Observer receives stretch timings. Default: none.
	Observer bkdf.Observer
}

// BKDFHasher adapts the bkdf package to [Hasher] and [Upgrader].
//
// # Thread safety
//
// BKDFHasher is immutable after construction and safe for concurrent use.
type BKDFHasher struct {
	cfg      bkdf.Config
	hasher   *bkdf.Hasher
	verifier *bkdf.Verifier
	upgrader *bkdf.Upgrader
}

// NewBKDFHasher constructs a BKDFHasher. A zero Config selects
// [bkdf.DefaultConfig]. Returns [ErrInvalidOption] for an invalid Config.
func NewBKDFHasher(opts BKDFOptions) (*BKDFHasher, error) {
	cfg := opts.Config
	if cfg == (bkdf.Config{}) {
		cfg = bkdf.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	h, err := cfg.Hasher(opts.Observer)
	if err != nil {
		return nil, err
	}
	v, err := cfg.Verifier(opts.Observer)
	if err != nil {
		return nil, err
	}
	u, err := cfg.Upgrader(opts.Logger, opts.Observer)
	if err != nil {
		return nil, err
	}
	return &BKDFHasher{cfg: cfg, hasher: h, verifier: v, upgrader: u}, nil
}

// Driver returns [DriverBKDF].
func (h *BKDFHasher) Driver() DriverName { return DriverBKDF }

// Config returns the configuration the driver was built with.
func (h *BKDFHasher) Config() bkdf.Config { return h.cfg }

// Make hashes password at the configured cost.
func (h *BKDFHasher) Make(password string) (string, error) {
	s, err := h.hasher.Hash(password, h.cfg.Cost)
	if err != nil {
		return "", fmt.Errorf("hashing: bkdf: %w", err)
	}
	return s, nil
}

// Check verifies password against a single-stage or compound value.
func (h *BKDFHasher) Check(password, hash string) (bool, error) {
	ok, err := h.verifier.Verify(password, hash)
	if err != nil {
		return false, wrapBKDF(err)
	}
	return ok, nil
}

// NeedsRehash reports whether the cumulative work of hash is below
// 2^Cost. Unlike bcrypt, a true result can be resolved with [BKDFHasher.Upgrade].
func (h *BKDFHasher) NeedsRehash(hash string) (bool, error) {
	need, err := bkdf.NeedsUpgrade(hash, h.cfg.Cost)
	if err != nil {
		return false, wrapBKDF(err)
	}
	return need, nil
}

// Upgrade raises hash to exactly 2^Cost iterations by appending rounds.
// A hash already at or above the configured cost is returned unchanged.
func (h *BKDFHasher) Upgrade(hash string) (string, error) {
	c, err := h.upgrader.UpgradeTo(h.cfg.Cost, hash)
	if errors.Is(err, bkdf.ErrInvalidTarget) {
		return hash, nil
	}
	if err != nil {
		return "", wrapBKDF(err)
	}
	defer c.Wipe()
	return c.EncodeToString()
}

// Info reports format, rounds and work of hash.
func (h *BKDFHasher) Info(hash string) (HashInfo, error) {
	info, err := bkdf.Info(hash)
	if err != nil {
		return HashInfo{}, wrapBKDF(err)
	}
	return HashInfo{
		Driver: DriverBKDF,
		Params: map[string]any{
			"format":         info.Format,
			"rounds":         info.Rounds,
			"iterations":     info.Iterations,
			"effective_cost": info.EffectiveCost,
		},
	}, nil
}

// wrapBKDF maps decoding failures onto ErrInvalidHash and keeps the bkdf
// sentinel in the chain.
func wrapBKDF(err error) error {
	if errors.Is(err, bkdf.ErrMalformedMessage) || errors.Is(err, bkdf.ErrUnsupportedVersion) {
		return fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}
	return fmt.Errorf("hashing: bkdf: %w", err)
}
