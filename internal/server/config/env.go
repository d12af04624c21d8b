package config

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variables read by parseEnv.
const (
	EnvHTTPAddr          = "GOPHAUTH_HTTP_ADDR"
	EnvPort              = "PORT"
	EnvGRPCAddr          = "GOPHAUTH_GRPC_ADDR"
	EnvDatabaseDSN       = "DATABASE_DSN"
	EnvSecretKey         = "GOPHAUTH_SECRET"
	EnvTokenValidity     = "GOPHAUTH_TOKEN_TTL"
	EnvPasswordAlgorithm = "GOPHAUTH_PASSWORD_ALGORITHM"
	EnvBcryptCost        = "GOPHAUTH_BCRYPT_COST"
	EnvStaticDir         = "GOPHAUTH_STATIC_DIR"
	EnvLogLevel          = "GOPHAUTH_LOG_LEVEL"
)

// parseEnv overlays non-empty environment variables. PORT is honoured for
// platforms that only hand out a port; GOPHAUTH_HTTP_ADDR wins over it.
func parseEnv(config *Config, getenv func(string) string) error {
	if getenv == nil {
		return nil
	}

	if v := getenv(EnvPort); v != "" {
		config.HTTPAddr = ":" + v
	}
	if v := getenv(EnvHTTPAddr); v != "" {
		config.HTTPAddr = v
	}
	if v := getenv(EnvGRPCAddr); v != "" {
		config.GRPCAddr = v
	}
	if v := getenv(EnvDatabaseDSN); v != "" {
		config.DatabaseDSN = v
	}
	if v := getenv(EnvSecretKey); v != "" {
		config.SecretKey = v
	}
	if v := getenv(EnvTokenValidity); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTokenValidity, err)
		}
		config.TokenValidity = d
	}
	if v := getenv(EnvPasswordAlgorithm); v != "" {
		config.PasswordAlgorithm = v
	}
	if v := getenv(EnvBcryptCost); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBcryptCost, err)
		}
		config.BcryptCost = n
	}
	if v := getenv(EnvStaticDir); v != "" {
		config.StaticDir = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		config.LogLevel = v
	}

	return nil
}
