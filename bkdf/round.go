package bkdf

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/hasbyte1/go-bkdf/internal/stretch"
)

// stretchRound runs one BKDF round: HKDF-Extract without salt over input,
// then the bcrypt stretch keyed with the resulting PRK. The output is
// truncated to the version's hash length.
func stretchRound(obs Observer, op string, v Version, cost int, salt, input []byte) ([]byte, error) {
	prk := hkdf.Extract(v.newHash(), input, nil)
	defer clear(prk)

	start := time.Now()
	out, err := stretch.Key(cost, salt, prk, v.hashLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	obs.ObserveStretch(op, v, cost, time.Since(start))
	return out, nil
}

// roundSalt derives the salt of round k >= 1 from the original salt:
//
//	HKDF-SHA512-Expand(original, BE32(k) || version || cost || prev, 16)
//
// version and cost are those of round k, prev is the output of round k-1.
func roundSalt(original []byte, k int, r Round, prev []byte) ([]byte, error) {
	info := make([]byte, 0, 6+len(prev))
	info = binary.BigEndian.AppendUint32(info, uint32(k))
	info = append(info, r.Version.code, byte(r.Cost))
	info = append(info, prev...)
	defer clear(info)

	salt := make([]byte, SaltLen)
	if _, err := io.ReadFull(hkdf.Expand(sha512.New, original, info), salt); err != nil {
		return nil, fmt.Errorf("bkdf: derive round salt: %w", err)
	}
	return salt, nil
}

// replay runs every round of a chain starting from input and returns the
// final output. Intermediate outputs are zeroed.
func replay(obs Observer, op string, rounds []Round, salt, input []byte) ([]byte, error) {
	var prev []byte
	cur := input
	for k, r := range rounds {
		s := salt
		if k > 0 {
			var err error
			if s, err = roundSalt(salt, k, r, prev); err != nil {
				clear(prev)
				return nil, err
			}
		}
		out, err := stretchRound(obs, op, r.Version, r.Cost, s, cur)
		if k > 0 {
			clear(s)
		}
		clear(prev)
		if err != nil {
			return nil, err
		}
		prev, cur = out, out
	}
	return prev, nil
}
