package config_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/scoregest/internal/config"
	"github.com/dgallion1/scoregest/internal/sheet"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, "8090")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.MaxQueueSize, convey.ShouldEqual, 100)
				convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, int64(50<<20))
				convey.So(cfg.JobTTL, convey.ShouldEqual, time.Hour)
				convey.So(cfg.Template.Marker, convey.ShouldEqual, sheet.DefaultTemplate().Marker)
				convey.So(cfg.Template.Components.Tolerance, convey.ShouldEqual, 0.1)
				convey.So(cfg.Metrics.Namespace, convey.ShouldEqual, "scoregest")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SCOREGEST_PORT", "9000")
			_ = os.Setenv("SCOREGEST_WORKER_COUNT", "8")
			_ = os.Setenv("SCOREGEST_JOB_TTL", "30m")
			_ = os.Setenv("SCOREGEST_MAX_UPLOAD_BYTES", "1024")
			_ = os.Setenv("SCOREGEST_TEMPLATE__MARKER", "DETAILS PAR PATINEUR")
			_ = os.Setenv("SCOREGEST_METRICS__NAMESPACE", "skating")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, "9000")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 8)
				convey.So(cfg.JobTTL, convey.ShouldEqual, 30*time.Minute)
				convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, int64(1024))
				convey.So(cfg.Template.Marker, convey.ShouldEqual, "DETAILS PAR PATINEUR")
				convey.So(cfg.Metrics.Namespace, convey.ShouldEqual, "skating")
				convey.So(cfg.Template.Header.Labels, convey.ShouldResemble, sheet.DefaultTemplate().Header.Labels)
			})
		})

		convey.Convey("When loading config with a YAML file and env vars", func() {
			path := writeConfigFile(t, `
port: "9090"
max_queue_size: 10
output_dir: /tmp/scores
template:
  components:
    tolerance: 0.05
`)
			_ = os.Setenv("SCOREGEST_CONFIG", path)
			_ = os.Setenv("SCOREGEST_PORT", "8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins over the file and the file over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Port, convey.ShouldEqual, "8080")
				convey.So(cfg.MaxQueueSize, convey.ShouldEqual, 10)
				convey.So(cfg.OutputDir, convey.ShouldEqual, "/tmp/scores")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.Template.Components.Tolerance, convey.ShouldEqual, 0.05)
				convey.So(cfg.Template.Components.StartLabel, convey.ShouldEqual, "Program")
			})
		})

		convey.Convey("When loading config with invalid YAML", func() {
			_ = os.Setenv("SCOREGEST_CONFIG", writeConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("SCOREGEST_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a template label list is broken", func() {
			_ = os.Setenv("SCOREGEST_CONFIG", writeConfigFile(t, `
template:
  header:
    labels: [Rank, Name]
`))

			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "header needs 8 labels")
			})
		})

		convey.Convey("When the worker count is zero", func() {
			_ = os.Setenv("SCOREGEST_WORKER_COUNT", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "worker_count")
			})
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New()

		convey.So(cfg.Validate(), convey.ShouldBeNil)

		convey.Convey("The server needs an API key", func() {
			convey.So(cfg.ValidateServer(), convey.ShouldNotBeNil)
			cfg.APIKey = "secret"
			convey.So(cfg.ValidateServer(), convey.ShouldBeNil)
		})

		convey.Convey("A pathstore URL needs a key", func() {
			cfg.PathstoreURL = "http://localhost:8080"
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			cfg.PathstoreAPIKey = "k"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Parse buckets must be ascending", func() {
			cfg.Metrics.ParseBuckets = []float64{5, 1}
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("Unknown log levels are rejected", func() {
			cfg.LogLevel = "loud"
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})
	})
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, config.EnvPrefix) {
			_ = os.Unsetenv(key)
		}
	}
}
