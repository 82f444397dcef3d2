// Package config loads process configuration and builds the logger.
package config

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv   string `koanf:"app_env"`
	LogLevel string `koanf:"log_level"`

	DBDriver string `koanf:"db_driver"`
	DBDSN    string `koanf:"db_dsn"`

	// RedisAddr empty disables alert suppression claims and the read cache.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	// RedisKeyPrefix namespaces every key so several deployments can share
	// one Redis database.
	RedisKeyPrefix string `koanf:"redis_key_prefix"`

	GRPCPort              int    `koanf:"grpc_port"`
	GRPCReflectionEnabled bool   `koanf:"grpc_reflection_enabled"`
	HTTPAddr              string `koanf:"http_addr"`
	AuthToken             string `koanf:"auth_token"`

	BatchConcurrency int `koanf:"batch_concurrency"`
	// BatchInterval of zero disables the in-process scheduler.
	BatchInterval time.Duration `koanf:"batch_interval"`
	ReadTimeout   time.Duration `koanf:"read_timeout"`

	AIProvider     string        `koanf:"ai_provider"`
	AIAPIKey       string        `koanf:"ai_api_key"`
	AIModel        string        `koanf:"ai_model"`
	AIBaseURL      string        `koanf:"ai_base_url"`
	AITimeout      time.Duration `koanf:"ai_timeout"`
	BedrockRegion  string        `koanf:"bedrock_region"`
	PromptTemplate string        `koanf:"prompt_template"`

	ManagerRoles []string `koanf:"manager_roles"`
	HRRoles      []string `koanf:"hr_roles"`

	// AlertSuppressionWindow of zero sends a fresh alert on every run.
	AlertSuppressionWindow time.Duration `koanf:"alert_suppression_window"`
	ActionURLBase          string        `koanf:"action_url_base"`
	CacheTTL               time.Duration `koanf:"cache_ttl"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		AppEnv:           "development",
		LogLevel:         "info",
		DBDriver:         "sqlite3",
		DBDSN:            "./data/evalify.db",
		RedisKeyPrefix:   "evalify:",
		GRPCPort:         50051,
		HTTPAddr:         ":8080",
		BatchConcurrency: 4,
		ReadTimeout:      5 * time.Second,
		AIProvider:       "none",
		AITimeout:        20 * time.Second,
		BedrockRegion:    "us-east-1",
		ManagerRoles:     []string{"manager", "team_lead"},
		HRRoles:          []string{"hr", "hr_admin"},
		ActionURLBase:    "/retention",
		CacheTTL:         5 * time.Minute,
	}
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.DBDriver != "sqlite3" && c.DBDriver != "postgres":
		return fmt.Errorf("%w: unknown db_driver %q", ErrInvalidConfig, c.DBDriver)
	case c.DBDSN == "":
		return fmt.Errorf("%w: db_dsn must not be empty", ErrInvalidConfig)
	case c.HTTPAddr == "":
		return fmt.Errorf("%w: http_addr must not be empty", ErrInvalidConfig)
	case c.GRPCPort < 1 || c.GRPCPort > 65535:
		return fmt.Errorf("%w: grpc_port %d out of range", ErrInvalidConfig, c.GRPCPort)
	case c.BatchConcurrency <= 0:
		return fmt.Errorf("%w: batch_concurrency must be positive", ErrInvalidConfig)
	case c.BatchInterval < 0, c.AlertSuppressionWindow < 0, c.ReadTimeout < 0, c.AITimeout < 0, c.CacheTTL < 0:
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
	}
	return nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.AppEnv == "production" {
		zcfg = zap.NewProductionConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("%w: log_level: %v", ErrInvalidConfig, err)
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}
