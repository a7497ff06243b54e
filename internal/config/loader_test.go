package config_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/okian/cpstats/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.ProfileTTL, convey.ShouldEqual, 20*time.Minute)
				convey.So(cfg.SubmissionCount, convey.ShouldEqual, 10_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CPSTATS_ADDR", ":8080")
			_ = os.Setenv("CPSTATS_PROFILE_TTL", "90s")
			_ = os.Setenv("CPSTATS_SUBMISSION_COUNT", "2000")
			_ = os.Setenv("CPSTATS_UPSTREAM_RPS", "2.5")
			_ = os.Setenv("CPSTATS_LLM_API_KEY", "sk-test")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ProfileTTL, convey.ShouldEqual, 90*time.Second)
				convey.So(cfg.SubmissionCount, convey.ShouldEqual, 2000)
				convey.So(cfg.UpstreamRPS, convey.ShouldEqual, 2.5)
				convey.So(cfg.LLMAPIKey, convey.ShouldEqual, "sk-test")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
profile_ttl: 45m
problemset_ttl: 6h
submission_count: 5000
log_format: json
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CPSTATS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ProfileTTL, convey.ShouldEqual, 45*time.Minute)
				convey.So(cfg.ProblemsetTTL, convey.ShouldEqual, 6*time.Hour)
				convey.So(cfg.SubmissionCount, convey.ShouldEqual, 5000)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})

			convey.Convey("Then missing fields should keep defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.StatsTTL, convey.ShouldEqual, time.Hour)
				convey.So(cfg.LeetCodeTTL, convey.ShouldEqual, 30*time.Minute)
			})
		})

		convey.Convey("When loading metrics settings from a YAML file", func() {
			tmpFile := createTempConfigFile(`
metrics_namespace: judgeboard
metrics_refresh: 30s
metrics_labels:
  env: staging
  region: eu
metrics_buckets: [1, 10, 100]
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CPSTATS_CONFIG", tmpFile)
			_ = os.Setenv("CPSTATS_METRICS_ENABLED", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the metrics options should be populated", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "judgeboard")
				convey.So(cfg.MetricsRefresh, convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"env": "staging", "region": "eu"})
				convey.So(cfg.MetricsBuckets, convey.ShouldResemble, []float64{1, 10, 100})
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
submission_count: 5000
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CPSTATS_CONFIG", tmpFile)
			_ = os.Setenv("CPSTATS_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")         // Overridden by env
				convey.So(cfg.SubmissionCount, convey.ShouldEqual, 5000) // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("CPSTATS_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("CPSTATS_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("CPSTATS_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unparsable duration", func() {
			_ = os.Setenv("CPSTATS_PROFILE_TTL", "soon")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("CPSTATS_SUBMISSION_COUNT", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"CPSTATS_CONFIG",
		"CPSTATS_ADDR",
		"CPSTATS_PROFILE_TTL",
		"CPSTATS_SUBMISSION_COUNT",
		"CPSTATS_UPSTREAM_RPS",
		"CPSTATS_LLM_API_KEY",
		"CPSTATS_METRICS_ENABLED",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "cpstats-config-*.yaml")
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
