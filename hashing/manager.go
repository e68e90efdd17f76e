package hashing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hasbyte1/go-bkdf/bkdf"
)

// Manager is a registry of named [Hasher] drivers with one default.
//
// # Thread safety
//
// All Manager methods are safe for concurrent use. Registration takes the
// write lock; dispatch takes the read lock only while resolving a driver.
type Manager struct {
	mu      sync.RWMutex
	drivers map[DriverName]Hasher
	def     DriverName
}

// NewManager creates an empty Manager whose default is defaultDriver.
// The default must be registered before Make or Check are called.
func NewManager(defaultDriver DriverName) *Manager {
	return &Manager{
		drivers: make(map[DriverName]Hasher),
		def:     defaultDriver,
	}
}

// NewDefaultManager registers a [BKDFHasher] built from cfg as the default
// and a [BcryptHasher] at cfg.Cost for existing bcrypt hashes.
func NewDefaultManager(cfg bkdf.Config) (*Manager, error) {
	b, err := NewBKDFHasher(BKDFOptions{Config: cfg})
	if err != nil {
		return nil, fmt.Errorf("hashing: default bkdf hasher: %w", err)
	}
	bc, err := NewBcryptHasher(BcryptOptions{Cost: b.Config().Cost})
	if err != nil {
		return nil, fmt.Errorf("hashing: default bcrypt hasher: %w", err)
	}

	m := NewManager(DriverBKDF)
	_ = m.RegisterDriver(DriverBKDF, b)
	_ = m.RegisterDriver(DriverBcrypt, bc)
	return m, nil
}

// RegisterDriver adds or replaces the driver registered under name.
func (m *Manager) RegisterDriver(name DriverName, h Hasher) error {
	if name == "" {
		return ErrEmptyDriverName
	}
	if h == nil {
		return ErrNilHasher
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[name] = h
	return nil
}

// Driver returns the driver registered under name.
func (m *Manager) Driver(name DriverName) (Hasher, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.drivers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDriverNotFound, name)
	}
	return h, nil
}

// SetDefaultDriver changes the default. name must already be registered.
func (m *Manager) SetDefaultDriver(name DriverName) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[name]; !ok {
		return fmt.Errorf("%w: %q is not registered", ErrDriverNotFound, name)
	}
	m.def = name
	return nil
}

// DefaultDriver returns the name of the default driver.
func (m *Manager) DefaultDriver() DriverName {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.def
}

// HasDriver reports whether name is registered.
func (m *Manager) HasDriver(name DriverName) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.drivers[name]
	return ok
}

// Make hashes password with the default driver.
func (m *Manager) Make(password string) (string, error) {
	h, err := m.resolveDefault()
	if err != nil {
		return "", err
	}
	return h.Make(password)
}

// Check verifies password with the default driver.
func (m *Manager) Check(password, hash string) (bool, error) {
	h, err := m.resolveDefault()
	if err != nil {
		return false, err
	}
	return h.Check(password, hash)
}

// CheckWithDetect verifies password with whichever driver produced hash.
//
// Returns [ErrInvalidHash] if no driver recognises hash and
// [ErrDriverNotFound] if the recognised driver is not registered.
func (m *Manager) CheckWithDetect(password, hash string) (bool, error) {
	h, err := m.resolveByHash(hash)
	if err != nil {
		return false, err
	}
	return h.Check(password, hash)
}

// NeedsRehash is true when hash came from a driver other than the default,
// or from the default driver with weaker parameters.
func (m *Manager) NeedsRehash(hash string) (bool, error) {
	detected, ok := DetectDriver(hash)
	if !ok {
		return false, ErrInvalidHash
	}
	if detected != m.DefaultDriver() {
		return true, nil
	}
	h, err := m.Driver(detected)
	if err != nil {
		return false, err
	}
	return h.NeedsRehash(hash)
}

// Upgrade raises the cost of hash without the password when its driver is
// the default and implements [Upgrader]. Otherwise it returns
// [ErrNotUpgradable] and the caller must wait for the next login.
func (m *Manager) Upgrade(hash string) (string, error) {
	detected, ok := DetectDriver(hash)
	if !ok {
		return "", ErrInvalidHash
	}
	if detected != m.DefaultDriver() {
		return "", fmt.Errorf("%w: %s hash, default is %s", ErrNotUpgradable, detected, m.DefaultDriver())
	}
	h, err := m.Driver(detected)
	if err != nil {
		return "", err
	}
	u, ok := h.(Upgrader)
	if !ok {
		return "", fmt.Errorf("%w: driver %s", ErrNotUpgradable, detected)
	}
	return u.Upgrade(hash)
}

// UpgradeBatch runs [Manager.Upgrade] over hashes with at most workers
// goroutines and returns the results in input order. Values that cannot be
// upgraded without the password are returned unchanged. Any other failure
// cancels the remaining work and is returned with the index of the value.
//
// workers <= 0 means one worker per value.
func (m *Manager) UpgradeBatch(ctx context.Context, hashes []string, workers int) ([]string, error) {
	out := make([]string, len(hashes))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, h := range hashes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			up, err := m.Upgrade(h)
			switch {
			case errors.Is(err, ErrNotUpgradable):
				out[i] = h
			case err != nil:
				return fmt.Errorf("hashing: upgrade %d: %w", i, err)
			default:
				out[i] = up
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Info extracts metadata with the default driver.
func (m *Manager) Info(hash string) (HashInfo, error) {
	h, err := m.resolveDefault()
	if err != nil {
		return HashInfo{}, err
	}
	return h.Info(hash)
}

// InfoWithDetect extracts metadata with whichever driver produced hash.
func (m *Manager) InfoWithDetect(hash string) (HashInfo, error) {
	h, err := m.resolveByHash(hash)
	if err != nil {
		return HashInfo{}, err
	}
	return h.Info(hash)
}

// ──────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────────────────────────────────

func (m *Manager) resolveDefault() (Hasher, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.drivers[m.def]
	if !ok {
		return nil, fmt.Errorf("%w: default driver %q has not been registered",
			ErrDriverNotFound, m.def)
	}
	return h, nil
}

func (m *Manager) resolveByHash(hash string) (Hasher, error) {
	name, ok := DetectDriver(hash)
	if !ok {
		return nil, ErrInvalidHash
	}
	return m.Driver(name)
}
