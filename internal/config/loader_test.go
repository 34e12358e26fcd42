package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/mission-control/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		setRequiredEnv()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with required values only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":3000")
				convey.So(cfg.StoreURL, convey.ShouldEqual, "http://store.local/rest/v1")
				convey.So(cfg.AuthUser, convey.ShouldEqual, "ops")
				convey.So(cfg.DefaultListLimit, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MC_ADDR", ":8080")
			_ = os.Setenv("MC_MAX_LIST_LIMIT", "1000")
			_ = os.Setenv("MC_AUTH_DISABLED", "true")
			_ = os.Setenv("MC_WORKSPACE_FILES", "a.md, b.csv")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxListLimit, convey.ShouldEqual, 1000)
				convey.So(cfg.AuthDisabled, convey.ShouldBeTrue)
				convey.So(cfg.WorkspaceFiles, convey.ShouldResemble, []string{"a.md", "b.csv"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
revenue_months: 6
workspace_files:
  - ops.md
`
			tmpFile := createTempFile("mc-config-*.yaml", yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MC_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.RevenueMonths, convey.ShouldEqual, 6)
				convey.So(cfg.WorkspaceFiles, convey.ShouldResemble, []string{"ops.md"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempFile("mc-config-*.yaml", "addr: \":9090\"\nrevenue_months: 6\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MC_CONFIG", tmpFile)
			_ = os.Setenv("MC_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")    // Overridden by env
				convey.So(cfg.RevenueMonths, convey.ShouldEqual, 6) // From file
			})
		})

		convey.Convey("When loading config with a dotenv file", func() {
			_ = os.Unsetenv("MC_STORE_KEY")
			tmpFile := createTempFile("mc-*.env", "MC_STORE_KEY=from-dotenv\nMC_AUTH_USER=ignored\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MC_ENV_FILE", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then unset variables are filled and set ones win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.StoreKey, convey.ShouldEqual, "from-dotenv")
				convey.So(cfg.AuthUser, convey.ShouldEqual, "ops")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempFile("mc-config-*.yaml", `invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("MC_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent env file", func() {
			_ = os.Setenv("MC_ENV_FILE", "/non/existent/.env")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("MC_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When limits are inconsistent", func() {
			_ = os.Setenv("MC_DEFAULT_LIST_LIMIT", "50")
			_ = os.Setenv("MC_MAX_LIST_LIMIT", "10")

			_, err := config.Load(ctx)

			convey.Convey("Then it should reject them", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "max_list_limit")
			})
		})

		convey.Convey("When reading config for a tool without the server settings", func() {
			_ = os.Unsetenv("MC_STORE_URL")
			_ = os.Setenv("MC_DATABASE_URL", "postgres://localhost/mc")

			cfg, err := config.Read(ctx)

			convey.Convey("Then it skips validation", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DatabaseURL, convey.ShouldEqual, "postgres://localhost/mc")
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("MC_MAX_LIST_LIMIT", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func setRequiredEnv() {
	_ = os.Setenv("MC_STORE_URL", "http://store.local/rest/v1")
	_ = os.Setenv("MC_AUTH_USER", "ops")
	_ = os.Setenv("MC_AUTH_PASSWORD", "secret")
}

func clearConfigEnvVars() {
	envVars := []string{
		"MC_CONFIG",
		"MC_ENV_FILE",
		"MC_ADDR",
		"MC_STORE_URL",
		"MC_STORE_KEY",
		"MC_DATABASE_URL",
		"MC_AUTH_USER",
		"MC_AUTH_PASSWORD",
		"MC_AUTH_DISABLED",
		"MC_MAX_LIST_LIMIT",
		"MC_DEFAULT_LIST_LIMIT",
		"MC_WORKSPACE_FILES",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempFile(pattern, content string) string {
	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
