package hashing_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hasbyte1/go-bkdf/bkdf"
	"github.com/hasbyte1/go-bkdf/hashing"
)

// newTestManager registers BKDF (default) and bcrypt at the minimum cost.
func newTestManager(tb testing.TB) *hashing.Manager {
	tb.Helper()
	m, err := hashing.NewDefaultManager(testConfig(bkdf.MinCost))
	if err != nil {
		tb.Fatalf("NewDefaultManager: %v", err)
	}
	return m
}

func legacyBcrypt(tb testing.TB, password string, cost int) string {
	tb.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		tb.Fatalf("GenerateFromPassword: %v", err)
	}
	return string(b)
}

// ──────────────────────────────────────────────────────────────────────────────
// Registration
// ──────────────────────────────────────────────────────────────────────────────

func TestNewDefaultManager(t *testing.T) {
	m := newTestManager(t)
	if m.DefaultDriver() != hashing.DriverBKDF {
		t.Errorf("default driver = %q, want bkdf", m.DefaultDriver())
	}
	for _, d := range []hashing.DriverName{hashing.DriverBKDF, hashing.DriverBcrypt} {
		if !m.HasDriver(d) {
			t.Errorf("driver %q not registered", d)
		}
	}
}

func TestNewDefaultManager_InvalidConfig(t *testing.T) {
	_, err := hashing.NewDefaultManager(testConfig(40))
	if !errors.Is(err, hashing.ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
}

func TestManager_RegisterDriver_Invalid(t *testing.T) {
	m := hashing.NewManager(hashing.DriverBKDF)
	if err := m.RegisterDriver("", newTestBKDFHasher(t, bkdf.MinCost)); !errors.Is(err, hashing.ErrEmptyDriverName) {
		t.Errorf("expected ErrEmptyDriverName, got %v", err)
	}
	if err := m.RegisterDriver("custom", nil); !errors.Is(err, hashing.ErrNilHasher) {
		t.Errorf("expected ErrNilHasher, got %v", err)
	}
}

func TestManager_SetDefaultDriver(t *testing.T) {
	m := newTestManager(t)
	if err := m.SetDefaultDriver(hashing.DriverBcrypt); err != nil {
		t.Fatalf("SetDefaultDriver: %v", err)
	}
	if m.DefaultDriver() != hashing.DriverBcrypt {
		t.Fatalf("got %q", m.DefaultDriver())
	}
	if err := m.SetDefaultDriver("argon2id"); !errors.Is(err, hashing.ErrDriverNotFound) {
		t.Fatalf("expected ErrDriverNotFound, got %v", err)
	}
}

func TestManager_NoDefaultDriver(t *testing.T) {
	m := hashing.NewManager(hashing.DriverBKDF)
	if _, err := m.Make("pw"); !errors.Is(err, hashing.ErrDriverNotFound) {
		t.Errorf("Make: expected ErrDriverNotFound, got %v", err)
	}
	if _, err := m.Check("pw", bkdfSecretCost4); !errors.Is(err, hashing.ErrDriverNotFound) {
		t.Errorf("Check: expected ErrDriverNotFound, got %v", err)
	}
	if _, err := m.CheckWithDetect("pw", bkdfSecretCost4); !errors.Is(err, hashing.ErrDriverNotFound) {
		t.Errorf("CheckWithDetect: expected ErrDriverNotFound, got %v", err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Dispatch
// ──────────────────────────────────────────────────────────────────────────────

func TestManager_MakeCheck(t *testing.T) {
	m := newTestManager(t)
	hash, err := m.Make("pw")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if d, _ := hashing.DetectDriver(hash); d != hashing.DriverBKDF {
		t.Fatalf("Make used driver %q", d)
	}
	if ok, err := m.Check("pw", hash); err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if ok, _ := m.Check("wrong", hash); ok {
		t.Fatal("wrong password accepted")
	}
}

func TestManager_CheckWithDetect(t *testing.T) {
	m := newTestManager(t)
	cases := []struct {
		name string
		hash string
	}{
		{"bcrypt", legacyBcrypt(t, "secret", bcrypt.MinCost)},
		{"bkdf single", bkdfSecretCost4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := m.CheckWithDetect("secret", tc.hash)
			if err != nil || !ok {
				t.Fatalf("ok=%v err=%v", ok, err)
			}
		})
	}

	if _, err := m.CheckWithDetect("pw", "not-a-hash"); !errors.Is(err, hashing.ErrInvalidHash) {
		t.Errorf("expected ErrInvalidHash, got %v", err)
	}
}

func TestManager_InfoWithDetect(t *testing.T) {
	m := newTestManager(t)
	info, err := m.InfoWithDetect(legacyBcrypt(t, "pw", bcrypt.MinCost))
	if err != nil {
		t.Fatalf("InfoWithDetect: %v", err)
	}
	if info.Driver != hashing.DriverBcrypt {
		t.Errorf("driver = %q, want bcrypt", info.Driver)
	}
	if _, err := m.InfoWithDetect("garbage"); !errors.Is(err, hashing.ErrInvalidHash) {
		t.Errorf("expected ErrInvalidHash, got %v", err)
	}
	info, err = m.Info(bkdfSecretCost4)
	if err != nil || info.Driver != hashing.DriverBKDF {
		t.Errorf("Info: %+v %v", info, err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// NeedsRehash / Upgrade
// ──────────────────────────────────────────────────────────────────────────────

func TestManager_NeedsRehash(t *testing.T) {
	m, err := hashing.NewDefaultManager(testConfig(5))
	if err != nil {
		t.Fatalf("NewDefaultManager: %v", err)
	}
	fresh, _ := m.Make("pw")

	cases := []struct {
		name string
		hash string
		want bool
	}{
		{"bcrypt is another driver", legacyBcrypt(t, "pw", bcrypt.MinCost), true},
		{"bkdf below cost", bkdfSecretCost4, true},
		{"bkdf at cost", fresh, false},
	}
	for _, tc := range cases {
		got, err := m.NeedsRehash(tc.hash)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}

	if _, err := m.NeedsRehash("garbage"); !errors.Is(err, hashing.ErrInvalidHash) {
		t.Errorf("expected ErrInvalidHash, got %v", err)
	}
}

func TestManager_Upgrade(t *testing.T) {
	m, _ := hashing.NewDefaultManager(testConfig(6))

	up, err := m.Upgrade(bkdfSecretCost4)
	if err != nil {
		t.Fatalf("Upgrade: %v", err)
	}
	if need, _ := m.NeedsRehash(up); need {
		t.Fatal("upgraded hash still needs rehash")
	}
	if ok, err := m.Check("secret", up); err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}

	_, err = m.Upgrade(legacyBcrypt(t, "secret", bcrypt.MinCost))
	if !errors.Is(err, hashing.ErrNotUpgradable) {
		t.Fatalf("bcrypt: expected ErrNotUpgradable, got %v", err)
	}
}

func TestManager_UpgradeBatch(t *testing.T) {
	m, _ := hashing.NewDefaultManager(testConfig(6))
	legacy := legacyBcrypt(t, "secret", bcrypt.MinCost)
	fresh, _ := m.Make("other")
	in := []string{bkdfSecretCost4, legacy, fresh, bkdfSecretCost4}

	out, err := m.UpgradeBatch(context.Background(), in, 2)
	if err != nil {
		t.Fatalf("UpgradeBatch: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d results", len(out))
	}
	if out[1] != legacy {
		t.Error("bcrypt value should pass through unchanged")
	}
	if out[2] != fresh {
		t.Error("value at cost should pass through unchanged")
	}
	for _, i := range []int{0, 3} {
		if need, _ := m.NeedsRehash(out[i]); need {
			t.Errorf("result %d still needs rehash", i)
		}
		if ok, err := m.Check("secret", out[i]); err != nil || !ok {
			t.Errorf("result %d: ok=%v err=%v", i, ok, err)
		}
	}
}

func TestManager_UpgradeBatch_InvalidValue(t *testing.T) {
	m := newTestManager(t)
	_, err := m.UpgradeBatch(context.Background(), []string{bkdfSecretCost4, "garbage"}, 0)
	if !errors.Is(err, hashing.ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}

func TestManager_UpgradeBatch_Cancelled(t *testing.T) {
	m := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.UpgradeBatch(ctx, []string{bkdfSecretCost4}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// TestManager_Migration_BcryptToBKDF walks an account from a legacy bcrypt
// hash to BKDF, then raises the BKDF cost offline.
func TestManager_Migration_BcryptToBKDF(t *testing.T) {
	m := newTestManager(t)
	stored := legacyBcrypt(t, "user-password", bcrypt.MinCost)

	ok, err := m.CheckWithDetect("user-password", stored)
	if err != nil || !ok {
		t.Fatalf("legacy check: ok=%v err=%v", ok, err)
	}
	if needs, _ := m.NeedsRehash(stored); !needs {
		t.Fatal("expected NeedsRehash=true for bcrypt")
	}
	stored, err = m.Make("user-password")
	if err != nil {
		t.Fatalf("re-hash: %v", err)
	}
	if needs, _ := m.NeedsRehash(stored); needs {
		t.Fatal("fresh bkdf hash should not need rehash")
	}

	// Later the configured cost goes up; no password is needed.
	raised, _ := hashing.NewBKDFHasher(hashing.BKDFOptions{Config: testConfig(bkdf.MinCost + 2)})
	_ = m.RegisterDriver(hashing.DriverBKDF, raised)
	stored, err = m.Upgrade(stored)
	if err != nil {
		t.Fatalf("Upgrade: %v", err)
	}
	if ok, err := m.CheckWithDetect("user-password", stored); err != nil || !ok {
		t.Fatalf("after upgrade: ok=%v err=%v", ok, err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrency
// ──────────────────────────────────────────────────────────────────────────────

func TestManager_ConcurrentMakeCheck(t *testing.T) {
	m := newTestManager(t)
	const goroutines = 20
	var wg sync.WaitGroup
	wg.Add(goroutines)
	errs := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			hash, err := m.Make("concurrent-pw")
			if err != nil {
				errs <- err
				return
			}
			ok, err := m.CheckWithDetect("concurrent-pw", hash)
			if err != nil {
				errs <- err
				return
			}
			if !ok {
				errs <- errors.New("Check returned false for correct password")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestManager_ConcurrentRegisterAndRead(t *testing.T) {
	m := newTestManager(t)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			h, _ := hashing.NewBcryptHasher(hashing.BcryptOptions{Cost: bcrypt.MinCost})
			_ = m.RegisterDriver(hashing.DriverBcrypt, h)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			_, _ = m.Driver(hashing.DriverBcrypt)
		}
	}()

	wg.Wait()
}
