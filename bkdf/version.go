package bkdf

import (
	"crypto/sha512"
	"fmt"
	"hash"
)

// binding selects the HKDF hash function a [Version] uses.
type binding uint8

const (
	bindingHMACSHA512 binding = iota + 1
)

// Version describes one protocol variant: its wire code, the number of
// stretch output bytes kept in the hash, and the HKDF hash binding.
//
// The zero Version is invalid. Versions are comparable with ==.
type Version struct {
	code    byte
	hashLen int
	kdf     binding
	name    string
}

var (
	// VersionHKDFHMAC512 keeps the 23 bytes a standard bcrypt string would.
	VersionHKDFHMAC512 = Version{code: 0x01, hashLen: 23, kdf: bindingHMACSHA512, name: "HKDF_HMAC512"}

	// VersionHKDFHMAC512Bcrypt24 keeps the full 24-byte stretch output.
	VersionHKDFHMAC512Bcrypt24 = Version{code: 0x02, hashLen: 24, kdf: bindingHMACSHA512, name: "HKDF_HMAC512_BCRYPT_24_BYTE"}
)

// registry is indexed by version code.
var registry = map[byte]Version{
	VersionHKDFHMAC512.code:         VersionHKDFHMAC512,
	VersionHKDFHMAC512Bcrypt24.code: VersionHKDFHMAC512Bcrypt24,
}

// VersionByCode returns the registered Version with the given wire code.
// Returns [ErrUnsupportedVersion] for unknown codes.
func VersionByCode(code byte) (Version, error) {
	v, ok := registry[code]
	if !ok {
		return Version{}, fmt.Errorf("%w: 0x%02x", ErrUnsupportedVersion, code)
	}
	return v, nil
}

// DefaultVersion returns the version used when none is configured.
func DefaultVersion() Version { return VersionHKDFHMAC512Bcrypt24 }

// Versions returns every registered version ordered by code.
func Versions() []Version {
	return []Version{VersionHKDFHMAC512, VersionHKDFHMAC512Bcrypt24}
}

// Code returns the single-byte wire identifier.
func (v Version) Code() byte { return v.code }

// HashLen returns the number of hash bytes stored for this version.
func (v Version) HashLen() int { return v.hashLen }

// String returns a stable human-readable name, or "unknown(0xNN)".
func (v Version) String() string {
	if v.name == "" {
		return fmt.Sprintf("unknown(0x%02x)", v.code)
	}
	return v.name
}

// check reports whether v is one of the registered versions.
func (v Version) check() error {
	if r, ok := registry[v.code]; !ok || r != v {
		return fmt.Errorf("%w: %s", ErrUnsupportedVersion, v)
	}
	return nil
}

func (v Version) newHash() func() hash.Hash {
	switch v.kdf {
	case bindingHMACSHA512:
		return sha512.New
	default:
		panic("bkdf: version without kdf binding: " + v.String())
	}
}
