package goAuthClient

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable read by [LoadConfigFromEnv].
const EnvPrefix = "GOAUTH_CLIENT_"

// LoadConfigFromEnv starts from the defaults, loads the given dotenv files (or
// ./.env when none are given, ignoring its absence) and overlays every
// GOAUTH_CLIENT_* variable on top. The result is validated.
//
// Example:
//
//	GOAUTH_CLIENT_ENDPOINT_BASE_URL=https://app.example.com
//	GOAUTH_CLIENT_PERSIST_BACKEND=file
//	GOAUTH_CLIENT_PERSIST_PATH=/var/lib/app/session.json
//	GOAUTH_CLIENT_REFRESH_FAILURE_POLICY=transient
func LoadConfigFromEnv(files ...string) (Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	cfg := defaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
