package bkdf

import (
	"fmt"
	"math/bits"
)

// Format identifies which wire format a stored value uses.
type Format string

const (
	FormatSingle   Format = "single"
	FormatCompound Format = "compound"
)

// HashInfo carries metadata parsed from a stored value without verifying it.
// Useful for auditing and for deciding when to upgrade.
type HashInfo struct {
	Format Format
	Rounds []Round

	// Iterations is the sum of 2^cost over all rounds.
	Iterations uint64

	// EffectiveCost is floor(log2(Iterations)): the cost of a single round
	// that would do at most the same amount of work.
	EffectiveCost int
}

// Info decodes stored and reports its format and rounds.
func Info(stored string) (HashInfo, error) {
	c, err := ParseStored(stored)
	if err != nil {
		return HashInfo{}, err
	}
	defer c.Wipe()

	f := FormatSingle
	if IsCompound(stored) {
		f = FormatCompound
	}
	n := c.Iterations()
	return HashInfo{
		Format:        f,
		Rounds:        c.Rounds(),
		Iterations:    n,
		EffectiveCost: bits.Len64(n) - 1,
	}, nil
}

// NeedsUpgrade reports whether the cumulative work of stored is below
// 2^targetCost. When it returns true, [Upgrader.UpgradeTo] with the same
// target succeeds without the password.
func NeedsUpgrade(stored string, targetCost int) (bool, error) {
	if err := checkCost(targetCost); err != nil {
		return false, fmt.Errorf("target: %w", err)
	}
	info, err := Info(stored)
	if err != nil {
		return false, err
	}
	return info.Iterations < uint64(1)<<uint(targetCost), nil
}
