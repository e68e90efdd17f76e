package bkdf

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by BKDF operations.
//
// Use [errors.Is] for comparisons:
//
//	ok, err := verifier.Verify(password, stored)
//	if errors.Is(err, bkdf.ErrMalformedMessage) {
//	    // stored value is corrupt or truncated
//	}
var (
	// ErrInvalidParameter is returned when a caller passes an out-of-range
	// cost, an over-long password, a bad salt or output length, or an empty
	// round or output request list.
	ErrInvalidParameter = errors.New("bkdf: invalid parameter")

	// ErrUnsupportedVersion is returned when a version code is not part of
	// the registry, either in wire data or in a caller-supplied [Version].
	ErrUnsupportedVersion = errors.New("bkdf: unsupported version")

	// ErrMalformedMessage is returned when a binary or Base64 message has
	// the wrong length, trailing bytes, an empty round list or a wrong
	// format marker.
	ErrMalformedMessage = errors.New("bkdf: malformed message")

	// ErrTooManyConfigs is returned when a round list would exceed the 255
	// entries the compound format can represent. It wraps
	// [ErrMalformedMessage].
	ErrTooManyConfigs = fmt.Errorf("%w: more than %d rounds", ErrMalformedMessage, MaxRounds)

	// ErrInvalidTarget is returned by [Upgrader.UpgradeTo] and
	// [CalcUpgradeSeq] when the stored hash already meets or exceeds the
	// requested cost.
	ErrInvalidTarget = errors.New("bkdf: target cost already reached")

	// ErrWiped is returned when a value is used after its Wipe method was
	// called.
	ErrWiped = errors.New("bkdf: value has been wiped")
)
