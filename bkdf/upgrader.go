package bkdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
)

// UpgraderOptions configures an [Upgrader].
type UpgraderOptions struct {
	// Logger receives debug records about computed upgrade paths.
	// Default: discard.
	Logger *slog.Logger

	// Observer receives stretch timings. Default: none.
	Observer Observer

	// MaxCost is passed to the embedded [Verifier]. Default: unbounded.
	MaxCost int
}

// Upgrader raises the work factor of stored hashes without the password
// by chaining more rounds onto the stored output.
//
// Round k >= 1 of a chain is salted with
//
//	HKDF-SHA512-Expand(original salt, BE32(k) || version || cost || output of round k-1, 16)
//
// which ties every round to its position and its predecessor. Reordering,
// dropping or replaying rounds makes verification fail.
//
// # Thread safety
//
// Upgrader is immutable after construction and safe for concurrent use.
type Upgrader struct {
	log      *slog.Logger
	obs      Observer
	verifier *Verifier
}

// NewUpgrader constructs an Upgrader.
func NewUpgrader(opts UpgraderOptions) (*Upgrader, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	obs := observerOrNop(opts.Observer)
	ver, err := NewVerifier(VerifierOptions{MaxCost: opts.MaxCost, Observer: obs})
	if err != nil {
		return nil, err
	}
	return &Upgrader{log: log, obs: obs, verifier: ver}, nil
}

// UpgradeWith appends one round of the given version and cost to stored.
// Version and cost are not required to be stronger than earlier rounds.
func (u *Upgrader) UpgradeWith(v Version, cost int, stored string) (*CompoundHashData, error) {
	c, err := ParseStored(stored)
	if err != nil {
		return nil, err
	}
	defer c.Wipe()
	return u.UpgradeData(c, Round{Version: v, Cost: cost})
}

// UpgradeTo appends the rounds computed by [CalcUpgradeSeq] so that the
// cumulative iteration count of stored becomes exactly 2^targetCost. New
// rounds use the version of the last applied round.
//
// Returns [ErrInvalidTarget] if stored already meets or exceeds the target.
func (u *Upgrader) UpgradeTo(targetCost int, stored string) (*CompoundHashData, error) {
	c, err := ParseStored(stored)
	if err != nil {
		return nil, err
	}
	defer c.Wipe()

	applied := make([]int, len(c.rounds))
	for i, r := range c.rounds {
		applied[i] = r.Cost
	}
	seq, err := CalcUpgradeSeq(applied, targetCost)
	if err != nil {
		return nil, err
	}
	u.log.LogAttrs(context.Background(), slog.LevelDebug, "bkdf upgrade path",
		slog.Any("applied", applied),
		slog.Int("target_cost", targetCost),
		slog.Any("path", seq),
	)

	v := c.Last().Version
	rounds := make([]Round, len(seq))
	for i, cost := range seq {
		rounds[i] = Round{Version: v, Cost: cost}
	}
	return u.UpgradeData(c, rounds...)
}

// UpgradeData appends rounds to an already decoded chain and returns a new
// chain. c itself is left untouched.
func (u *Upgrader) UpgradeData(c *CompoundHashData, rounds ...Round) (*CompoundHashData, error) {
	if c.wiped {
		return nil, ErrWiped
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if len(rounds) == 0 {
		return nil, fmt.Errorf("%w: no rounds to append", ErrInvalidParameter)
	}
	for _, r := range rounds {
		if err := r.check(); err != nil {
			return nil, err
		}
	}
	total := len(c.rounds) + len(rounds)
	if total > MaxRounds {
		return nil, fmt.Errorf("%w: upgrade would produce %d", ErrTooManyConfigs, total)
	}

	prev := c.hash
	for i, r := range rounds {
		k := len(c.rounds) + i
		salt, err := roundSalt(c.salt, k, r, prev)
		if err != nil {
			return nil, err
		}
		out, err := stretchRound(u.obs, OpUpgrade, r.Version, r.Cost, salt, prev)
		clear(salt)
		if i > 0 {
			clear(prev)
		}
		if err != nil {
			return nil, err
		}
		prev = out
	}
	defer clear(prev)

	u.log.LogAttrs(context.Background(), slog.LevelDebug, "bkdf hash upgraded",
		slog.Int("rounds_added", len(rounds)),
		slog.Int("chain_length", total),
	)
	return NewCompoundHashData(slices.Concat(c.rounds, rounds), c.salt, prev)
}

// VerifyCompound checks password against a stored hash of either format by
// replaying the whole chain.
func (u *Upgrader) VerifyCompound(password, stored string) (bool, error) {
	return u.verifier.Verify(password, stored)
}

// CalcUpgradeSeq returns the costs of the fewest rounds, largest first,
// whose iterations added to those of applied sum to exactly 2^target.
// Each cost in [MinCost, MaxCost] is used at most once.
//
// Returns [ErrInvalidTarget] if applied already reaches 2^target, and
// [ErrInvalidParameter] for a cost or target out of range.
func CalcUpgradeSeq(applied []int, target int) ([]int, error) {
	if err := checkCost(target); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	var current uint64
	for _, c := range applied {
		if err := checkCost(c); err != nil {
			return nil, err
		}
		current += uint64(1) << uint(c)
	}
	goal := uint64(1) << uint(target)
	if current >= goal {
		return nil, fmt.Errorf("%w: %d iterations applied, target 2^%d = %d",
			ErrInvalidTarget, current, target, goal)
	}

	var seq []int
	for cost := MaxCost; cost >= MinCost; cost-- {
		step := uint64(1) << uint(cost)
		if current+step <= goal {
			seq = append(seq, cost)
			current += step
		}
	}
	return seq, nil
}
