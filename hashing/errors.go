package hashing

import "errors"

// Sentinel errors returned by the registry and its drivers.
//
// Use [errors.Is] for comparisons:
//
//	ok, err := m.CheckWithDetect(password, stored)
//	if errors.Is(err, hashing.ErrInvalidHash) {
//	    // stored value is neither BKDF nor bcrypt
//	}
var (
	// ErrInvalidHash is returned when a stored value is not recognised by
	// any driver or cannot be decoded by the one that claims it.
	ErrInvalidHash = errors.New("hashing: invalid or unrecognised hash string")

	// ErrInvalidOption is returned by driver constructors for out-of-range
	// settings.
	ErrInvalidOption = errors.New("hashing: invalid option value")

	// ErrDriverNotFound is returned when the requested driver is not
	// registered.
	ErrDriverNotFound = errors.New("hashing: driver not found")

	// ErrEmptyDriverName is returned by [Manager.RegisterDriver] for "".
	ErrEmptyDriverName = errors.New("hashing: driver name must not be empty")

	// ErrNilHasher is returned by [Manager.RegisterDriver] for a nil driver.
	ErrNilHasher = errors.New("hashing: hasher must not be nil")

	// ErrAlgorithmMismatch is returned when a driver is handed a value
	// produced by a different algorithm.
	ErrAlgorithmMismatch = errors.New("hashing: hash was produced by a different algorithm")

	// ErrNotUpgradable is returned by [Manager.Upgrade] when the stored
	// value's driver cannot raise its cost without the password.
	ErrNotUpgradable = errors.New("hashing: hash cannot be upgraded without the password")
)
