package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix     = "EVALIFY_"
	ConfigPathEnv = "EVALIFY_CONFIG"
)

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New)
//  2. YAML file named by EVALIFY_CONFIG, if set
//  3. env vars with the EVALIFY_ prefix, e.g. EVALIFY_DB_DSN -> db_dsn
func Load() (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path := os.Getenv(ConfigPathEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}
	// EVALIFY_CONFIG names the file; it is not a setting.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
