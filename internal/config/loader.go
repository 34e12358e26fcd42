package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names that steer loading itself.
const (
	envPrefix  = "MC_"
	envConfig  = "MC_CONFIG"
	envEnvFile = "MC_ENV_FILE"
)

// listKeys are flat keys whose env values are comma separated lists.
var listKeys = map[string]bool{
	"workspace_files": true,
}

// Load builds a Config by layering defaults, optional dotenv file, optional
// YAML file and env vars. Order of precedence (low -> high):
//  1. defaults (New())
//  2. dotenv file if MC_ENV_FILE is set (only fills unset variables)
//  3. file (YAML) if MC_CONFIG is set
//  4. env (prefix MC_)
//
// The result is validated; tools that need only a subset of the settings
// use Read instead.
func Load(ctx context.Context) (*Config, error) {
	cfg, err := Read(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read layers the configuration sources like Load without validating.
func Read(_ context.Context) (*Config, error) {
	base := New()

	if path := os.Getenv(envEnvFile); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("%w: env file %s: %v", ErrLoadConfig, path, err)
		}
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// MC_STORE_URL -> store_url. Underscores are preserved to match koanf tags.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if key == "config" || key == "env_file" {
			return "", nil
		}
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	return &cfg, nil
}

// Validate checks invariants that must hold before the server starts.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.StoreURL == "":
		return fmt.Errorf("%w: store_url must not be empty", ErrInvalidConfig)
	case !c.AuthDisabled && (c.AuthUser == "" || c.AuthPassword == ""):
		return fmt.Errorf("%w: auth_user and auth_password are required unless auth_disabled", ErrInvalidConfig)
	case c.DefaultListLimit < 1:
		return fmt.Errorf("%w: default_list_limit must be positive", ErrInvalidConfig)
	case c.MaxListLimit < c.DefaultListLimit:
		return fmt.Errorf("%w: max_list_limit must be >= default_list_limit", ErrInvalidConfig)
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
