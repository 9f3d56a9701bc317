package cookieauth

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable LoadConfig reads,
// e.g. COOKIEAUTH_JWT_ACCESS_SECRET.
const EnvPrefix = "COOKIEAUTH_"

// LoadOptions tunes LoadConfig. The zero value reads the process environment
// and a .env file in the working directory.
type LoadOptions struct {
	// DotEnvFiles are loaded before the environment is parsed. Missing files are ignored.
	DotEnvFiles []string
	// Environment replaces the process environment when non-nil.
	Environment map[string]string
}

// LoadConfig layers DefaultConfig, the optional YAML file at path, dotenv
// files and the environment, then validates the result.
func LoadConfig(path string, opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if opts.Environment == nil {
		if err := godotenv.Load(opts.DotEnvFiles...); err != nil {
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) {
				return Config{}, fmt.Errorf("load .env file: %w", err)
			}
		}
	}

	envOpts := env.Options{Prefix: EnvPrefix}
	if opts.Environment != nil {
		envOpts.Environment = opts.Environment
	}
	if err := env.ParseWithOptions(&cfg, envOpts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
