package bkdf

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config is the environment-facing configuration surface of the package.
type Config struct {
	// Version used for new hashes and derived keys.
	Version Version

	// Cost used for new hashes and as the upgrade target.
	Cost int

	// MaxVerifyCost bounds the work a stored value may demand on verify.
	// Zero disables the bound.
	MaxVerifyCost int
}

// DefaultConfig returns [DefaultVersion] at [DefaultCost] with no verify bound.
func DefaultConfig() Config {
	return Config{
		Version: DefaultVersion(),
		Cost:    DefaultCost,
	}
}

// FromEnv loads config from environment variables, starting from
// [DefaultConfig].
//
// Env surface:
//   - BKDF_VERSION          version code, 1 or 2
//   - BKDF_COST             work factor, 4..31
//   - BKDF_MAX_VERIFY_COST  0 (off) or 4..31
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if s, ok := os.LookupEnv("BKDF_VERSION"); ok {
		n, err := atoiRange(s, 0, 255)
		if err != nil {
			return Config{}, fmt.Errorf("BKDF_VERSION: %w", err)
		}
		v, err := VersionByCode(byte(n))
		if err != nil {
			return Config{}, fmt.Errorf("BKDF_VERSION: %w", err)
		}
		cfg.Version = v
	}

	if s, ok := os.LookupEnv("BKDF_COST"); ok {
		n, err := atoiRange(s, MinCost, MaxCost)
		if err != nil {
			return Config{}, fmt.Errorf("BKDF_COST: %w", err)
		}
		cfg.Cost = n
	}

	if s, ok := os.LookupEnv("BKDF_MAX_VERIFY_COST"); ok {
		n, err := atoiRange(s, 0, MaxCost)
		if err != nil {
			return Config{}, fmt.Errorf("BKDF_MAX_VERIFY_COST: %w", err)
		}
		cfg.MaxVerifyCost = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges and cross-field consistency.
func (c Config) Validate() error {
	if err := c.Version.check(); err != nil {
		return err
	}
	if err := checkCost(c.Cost); err != nil {
		return err
	}
	if c.MaxVerifyCost != 0 {
		if err := checkCost(c.MaxVerifyCost); err != nil {
			return fmt.Errorf("max verify cost: %w", err)
		}
		if c.MaxVerifyCost < c.Cost {
			return fmt.Errorf("%w: max verify cost %d is below cost %d",
				ErrInvalidParameter, c.MaxVerifyCost, c.Cost)
		}
	}
	return nil
}

// Hasher builds a [Hasher] for c.Version.
func (c Config) Hasher(obs Observer) (*Hasher, error) {
	return NewHasher(HasherOptions{Version: c.Version, Observer: obs})
}

// Verifier builds a [Verifier] bounded by c.MaxVerifyCost.
func (c Config) Verifier(obs Observer) (*Verifier, error) {
	return NewVerifier(VerifierOptions{MaxCost: c.MaxVerifyCost, Observer: obs})
}

// Upgrader builds an [Upgrader] bounded by c.MaxVerifyCost.
func (c Config) Upgrader(log *slog.Logger, obs Observer) (*Upgrader, error) {
	return NewUpgrader(UpgraderOptions{Logger: log, Observer: obs, MaxCost: c.MaxVerifyCost})
}

// KDF builds a [KDF] for c.Version.
func (c Config) KDF(obs Observer) (*KDF, error) {
	return NewKDF(KDFOptions{Version: c.Version, Observer: obs})
}

func atoiRange(s string, minVal, maxVal int) (int, error) {
	s = strings.TrimSpace(s)
	i64, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}
	i := int(i64)
	if i < minVal || i > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return i, nil
}
