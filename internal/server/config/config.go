// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
)

// Config holds runtime settings for the gophauth server. It is built once
// at startup and passed by pointer to the components that need it.
//
// Fields:
//   - HTTPAddr / GRPCAddr: bind addresses; an empty GRPCAddr disables gRPC.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing tokens (HS256).
//   - TokenValidity: lifetime of issued tokens.
//   - PasswordAlgorithm / BcryptCost: hashing of new passwords.
//   - StaticDir: optional directory served under "/static".
//   - LogLevel: debug, info, warn or error.
type Config struct {
	HTTPAddr          string
	GRPCAddr          string
	DatabaseDSN       string
	SecretKey         string
	TokenValidity     time.Duration
	PasswordAlgorithm string
	BcryptCost        int
	StaticDir         string
	LogLevel          string
}

// LoadDefaults populates Config with development defaults. There is no
// default secret: the server refuses to start without one.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":3000"
	c.GRPCAddr = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.TokenValidity = 24 * time.Hour
	c.PasswordAlgorithm = password.AlgorithmBcrypt
	c.BcryptCost = 10
	c.StaticDir = ""
	c.LogLevel = "info"
}

// Validate reports missing or unusable settings. Every failure wraps
// common.ErrConfig.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("%w: secret key is not set", common.ErrConfig)
	}
	if c.TokenValidity <= 0 {
		return fmt.Errorf("%w: token validity must be positive, got %s", common.ErrConfig, c.TokenValidity)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("%w: http address is not set", common.ErrConfig)
	}
	switch c.PasswordAlgorithm {
	case password.AlgorithmBcrypt, password.AlgorithmArgon2ID:
	default:
		return fmt.Errorf("%w: unsupported password algorithm %q", common.ErrConfig, c.PasswordAlgorithm)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line
// flags. args excludes the program name.
func LoadConfig(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrConfig, err)
	}
	if err := parseEnv(cfg, getenv); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrConfig, err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrConfig, err)
	}

	return cfg, nil
}
