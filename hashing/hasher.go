package hashing

import (
	"strings"

	"github.com/hasbyte1/go-bkdf/bkdf"
)

// DriverName identifies a hashing driver.
type DriverName string

const (
	// DriverBKDF selects the BKDF driver.
	DriverBKDF DriverName = "bkdf"
	// DriverBcrypt selects the bcrypt driver.
	DriverBcrypt DriverName = "bcrypt"
)

// Hasher is satisfied by every driver. Implementations must be safe for
// concurrent use.
type Hasher interface {
	// Make hashes password with a fresh random salt.
	Make(password string) (string, error)

	// Check reports whether password matches hash. Returns (false, nil) on
	// mismatch and (false, err) for a value the driver cannot decode.
	Check(password, hash string) (bool, error)

	// NeedsRehash reports whether hash is weaker than the driver's
	// configuration.
	NeedsRehash(hash string) (bool, error)

	// Info extracts parameters from hash without verifying it.
	Info(hash string) (HashInfo, error)

	// Driver returns the name the driver is registered under by default.
	Driver() DriverName
}

// Upgrader is implemented by drivers that can raise the cost of a stored
// value without the password.
type Upgrader interface {
	Upgrade(hash string) (string, error)
}

// HashInfo carries metadata parsed from a stored value.
//
// Params for bcrypt:
//   - "cost" → int
//
// Params for BKDF:
//   - "format"         → bkdf.Format
//   - "rounds"         → []bkdf.Round
//   - "iterations"     → uint64
//   - "effective_cost" → int
type HashInfo struct {
	Driver DriverName
	Params map[string]any
}

// DetectDriver reports which driver produced hash. bcrypt is recognised by
// its "$2a$", "$2b$" or "$2y$" prefix. A value is BKDF only if it decodes
// completely.
//
// The second return value is false when no driver recognises the value.
func DetectDriver(hash string) (DriverName, bool) {
	switch {
	case strings.HasPrefix(hash, "$2a$"),
		strings.HasPrefix(hash, "$2b$"),
		strings.HasPrefix(hash, "$2y$"):
		return DriverBcrypt, true
	case isBKDF(hash):
		return DriverBKDF, true
	default:
		return "", false
	}
}

func isBKDF(hash string) bool {
	_, err := bkdf.ParseStored(hash)
	return err == nil
}
