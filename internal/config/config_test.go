package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/appsforbuild-cmyk/evalifyai-sub001/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should be valid with rule-only scoring", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.DBDriver, convey.ShouldEqual, "sqlite3")
			convey.So(cfg.AIProvider, convey.ShouldEqual, "none")
			convey.So(cfg.BatchConcurrency, convey.ShouldEqual, 4)
			convey.So(cfg.BatchInterval, convey.ShouldEqual, time.Duration(0))
			convey.So(cfg.AlertSuppressionWindow, convey.ShouldEqual, time.Duration(0))
			convey.So(cfg.ManagerRoles, convey.ShouldResemble, []string{"manager", "team_lead"})
			convey.So(cfg.HRRoles, convey.ShouldResemble, []string{"hr", "hr_admin"})
			convey.So(cfg.RedisKeyPrefix, convey.ShouldEqual, "evalify:")
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := map[string]func(*config.Config){
			"unknown driver":       func(c *config.Config) { c.DBDriver = "mysql" },
			"empty dsn":            func(c *config.Config) { c.DBDSN = "" },
			"empty http addr":      func(c *config.Config) { c.HTTPAddr = "" },
			"port out of range":    func(c *config.Config) { c.GRPCPort = 70000 },
			"zero concurrency":     func(c *config.Config) { c.BatchConcurrency = 0 },
			"negative interval":    func(c *config.Config) { c.BatchInterval = -time.Second },
			"negative suppression": func(c *config.Config) { c.AlertSuppressionWindow = -time.Minute },
			"bad log level":        func(c *config.Config) { c.LogLevel = "loud" },
		}

		for name, mutate := range cases {
			convey.Convey("When "+name, func() {
				cfg := config.New()
				mutate(cfg)

				convey.Convey("Then Validate returns ErrInvalidConfig", func() {
					convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}
	})
}

func TestConfigLoader_Env(t *testing.T) {
	t.Setenv("EVALIFY_CONFIG", "")
	t.Setenv("EVALIFY_DB_DRIVER", "postgres")
	t.Setenv("EVALIFY_DB_DSN", "postgres://localhost/evalify")
	t.Setenv("EVALIFY_BATCH_CONCURRENCY", "8")
	t.Setenv("EVALIFY_BATCH_INTERVAL", "24h")
	t.Setenv("EVALIFY_ALERT_SUPPRESSION_WINDOW", "168h")
	t.Setenv("EVALIFY_MANAGER_ROLES", "lead,director")
	t.Setenv("EVALIFY_GRPC_REFLECTION_ENABLED", "true")
	t.Setenv("EVALIFY_REDIS_KEY_PREFIX", "evalify-staging:")

	convey.Convey("Given environment overrides", t, func() {
		cfg, err := config.Load()

		convey.Convey("Then they replace the defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.DBDriver, convey.ShouldEqual, "postgres")
			convey.So(cfg.DBDSN, convey.ShouldEqual, "postgres://localhost/evalify")
			convey.So(cfg.BatchConcurrency, convey.ShouldEqual, 8)
			convey.So(cfg.BatchInterval, convey.ShouldEqual, 24*time.Hour)
			convey.So(cfg.AlertSuppressionWindow, convey.ShouldEqual, 168*time.Hour)
			convey.So(cfg.ManagerRoles, convey.ShouldResemble, []string{"lead", "director"})
			convey.So(cfg.GRPCReflectionEnabled, convey.ShouldBeTrue)
			convey.So(cfg.RedisKeyPrefix, convey.ShouldEqual, "evalify-staging:")
			convey.So(cfg.HTTPAddr, convey.ShouldEqual, ":8080")
		})
	})
}

func TestConfigLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evalify.yaml")
	yaml := []byte(`
app_env: production
log_level: warn
http_addr: ":9090"
ai_provider: anthropic
ai_timeout: 45s
hr_roles:
  - people_ops
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EVALIFY_CONFIG", path)
	t.Setenv("EVALIFY_HTTP_ADDR", ":7070")

	convey.Convey("Given a YAML file and an env override", t, func() {
		cfg, err := config.Load()

		convey.Convey("Then env wins over the file and the file wins over defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.AppEnv, convey.ShouldEqual, "production")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
			convey.So(cfg.HTTPAddr, convey.ShouldEqual, ":7070")
			convey.So(cfg.AIProvider, convey.ShouldEqual, "anthropic")
			convey.So(cfg.AITimeout, convey.ShouldEqual, 45*time.Second)
			convey.So(cfg.HRRoles, convey.ShouldResemble, []string{"people_ops"})
		})
	})
}

func TestConfigLoader_Errors(t *testing.T) {
	convey.Convey("Given a missing config file", t, func() {
		t.Setenv("EVALIFY_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

		_, err := config.Load()

		convey.So(err, convey.ShouldNotBeNil)
	})

	convey.Convey("Given an invalid env value", t, func() {
		t.Setenv("EVALIFY_CONFIG", "")
		t.Setenv("EVALIFY_BATCH_CONCURRENCY", "0")

		_, err := config.Load()

		convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
	})
}

func TestNewLogger(t *testing.T) {
	convey.Convey("Given a production config at warn level", t, func() {
		cfg := config.New()
		cfg.AppEnv = "production"
		cfg.LogLevel = "warn"

		logger, err := config.NewLogger(cfg)

		convey.So(err, convey.ShouldBeNil)
		convey.So(logger.Core().Enabled(-1), convey.ShouldBeFalse)
		convey.So(logger.Core().Enabled(1), convey.ShouldBeTrue)
	})
}
