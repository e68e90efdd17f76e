// Package stretch implements the raw bcrypt key stretch used by BKDF.
//
// golang.org/x/crypto/bcrypt only exposes the Modular Crypt Format, generates
// its own salt and truncates the output to 23 bytes. BKDF needs the bare
// eksblowfish computation with a caller-supplied 16-byte salt and the full
// 24-byte output, so this package rebuilds it on top of
// golang.org/x/crypto/blowfish the same way x/crypto/bcrypt does internally.
package stretch

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/blowfish"
	"golang.org/x/crypto/bcrypt"
)

const (
	// SaltLen is the required salt length in bytes.
	SaltLen = 16

	// OutputLen is the length of the untruncated stretch output.
	OutputLen = 24

	// MaxKeyLen is the longest key eksblowfish consumes, including the
	// trailing NUL appended by [Key]. Longer keys are silently cut by the
	// key schedule, so they are rejected instead.
	MaxKeyLen = 72

	// MinCost and MaxCost bound the log2 iteration count.
	MinCost = bcrypt.MinCost
	MaxCost = bcrypt.MaxCost
)

var (
	ErrCost    = errors.New("stretch: cost out of range")
	ErrSalt    = errors.New("stretch: salt must be 16 bytes")
	ErrKey     = errors.New("stretch: key must be 1 to 71 bytes")
	ErrDestLen = errors.New("stretch: output length must be 1 to 24 bytes")
)

// magic is the bcrypt plaintext "OrpheanBeholderScryDoubt".
var magic = [OutputLen]byte{
	'O', 'r', 'p', 'h', 'e', 'a', 'n', 'B',
	'e', 'h', 'o', 'l', 'd', 'e', 'r', 'S',
	'c', 'r', 'y', 'D', 'o', 'u', 'b', 't',
}

// Key runs 2^cost rounds of the eksblowfish key schedule over key and salt
// and returns the first n bytes of the encrypted magic block.
//
// The result for n == 23 equals the hash portion of a standard bcrypt string
// produced from the same key, salt and cost.
func Key(cost int, salt, key []byte, n int) ([]byte, error) {
	if cost < MinCost || cost > MaxCost {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrCost, cost, MinCost, MaxCost)
	}
	if len(salt) != SaltLen {
		return nil, fmt.Errorf("%w: got %d", ErrSalt, len(salt))
	}
	if len(key) == 0 || len(key) >= MaxKeyLen {
		return nil, fmt.Errorf("%w: got %d", ErrKey, len(key))
	}
	if n < 1 || n > OutputLen {
		return nil, fmt.Errorf("%w: got %d", ErrDestLen, n)
	}

	c, err := setup(cost, salt, key)
	if err != nil {
		return nil, err
	}

	var block [OutputLen]byte
	copy(block[:], magic[:])
	for i := 0; i < OutputLen; i += 8 {
		for j := 0; j < 64; j++ {
			c.Encrypt(block[i:i+8], block[i:i+8])
		}
	}

	out := make([]byte, n)
	copy(out, block[:n])
	clear(block[:])
	return out, nil
}

// setup is the expensive part of bcrypt: a salted key schedule followed by
// 2^cost alternating re-keyings with the key and the salt.
func setup(cost int, salt, key []byte) (*blowfish.Cipher, error) {
	ckey := make([]byte, len(key)+1)
	copy(ckey, key)
	defer clear(ckey)

	c, err := blowfish.NewSaltedCipher(ckey, salt)
	if err != nil {
		return nil, fmt.Errorf("stretch: %w", err)
	}

	rounds := uint64(1) << uint(cost)
	for i := uint64(0); i < rounds; i++ {
		blowfish.ExpandKey(ckey, c)
		blowfish.ExpandKey(salt, c)
	}
	return c, nil
}
