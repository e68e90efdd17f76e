package bkdf

import (
	"fmt"
	"io"
	"slices"

	"golang.org/x/crypto/hkdf"
)

// kdfDomainTag is appended to every info string before expansion.
var kdfDomainTag = []byte("bkdf")

// maxOutputLen is the HKDF-SHA512 expansion limit of 255 hash blocks.
const maxOutputLen = 255 * 64

// OutputRequest asks [KDF.DeriveMulti] for Length bytes bound to Info.
type OutputRequest struct {
	Info   []byte
	Length int
}

// KDF derives keys from a password or other secret: one expensive stretch,
// then one HKDF-Expand per requested output.
//
// # Thread safety
//
// KDF is immutable after construction and safe for concurrent use.
type KDF struct {
	version Version
	obs     Observer
}

// KDFOptions configures a [KDF].
type KDFOptions struct {
	// Version selects the protocol variant. Default: [DefaultVersion].
	Version Version

	// Observer receives stretch timings. Default: none.
	Observer Observer
}

// NewKDF constructs a KDF. A zero Version selects [DefaultVersion].
func NewKDF(opts KDFOptions) (*KDF, error) {
	v := opts.Version
	if v == (Version{}) {
		v = DefaultVersion()
	}
	if err := v.check(); err != nil {
		return nil, err
	}
	return &KDF{version: v, obs: observerOrNop(opts.Observer)}, nil
}

// Derive returns length bytes of key material for info.
func (k *KDF) Derive(salt, ikm []byte, cost int, info []byte, length int) ([]byte, error) {
	out, err := k.DeriveMulti(salt, ikm, cost, []OutputRequest{{Info: info, Length: length}})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// DerivePassword is Derive with a UTF-8 password as input.
func (k *KDF) DerivePassword(salt []byte, password string, cost int, info []byte, length int) ([]byte, error) {
	b := []byte(password)
	defer clear(b)
	return k.Derive(salt, b, cost, info, length)
}

// DeriveMulti stretches ikm once and expands one output per request, in
// request order. Each output equals what Derive returns for the same
// request.
//
// Returns [ErrInvalidParameter] for an empty request list, a salt that is
// not [SaltLen] bytes, a bad cost, or a request length
// outside [1, 16320].
func (k *KDF) DeriveMulti(salt, ikm []byte, cost int, reqs []OutputRequest) ([][]byte, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no output requested", ErrInvalidParameter)
	}
	for i, r := range reqs {
		if r.Length < 1 || r.Length > maxOutputLen {
			return nil, fmt.Errorf("%w: request %d: length %d must be in [1, %d]",
				ErrInvalidParameter, i, r.Length, maxOutputLen)
		}
	}
	if err := checkCost(cost); err != nil {
		return nil, err
	}
	if err := checkSalt(salt); err != nil {
		return nil, err
	}

	prk, err := stretchRound(k.obs, OpDerive, k.version, cost, salt, ikm)
	if err != nil {
		return nil, err
	}
	defer clear(prk)

	outs := make([][]byte, len(reqs))
	for i, r := range reqs {
		info := slices.Concat(r.Info, kdfDomainTag)
		out := make([]byte, r.Length)
		if _, err := io.ReadFull(hkdf.Expand(k.version.newHash(), prk, info), out); err != nil {
			for _, o := range outs[:i] {
				clear(o)
			}
			return nil, fmt.Errorf("bkdf: expand request %d: %w", i, err)
		}
		outs[i] = out
	}
	return outs, nil
}
