package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"VGSALES_SERVER_PORT", "VGSALES_SERVER_READ_TIMEOUT",
	"VGSALES_SECURITY_ALLOWED_ORIGINS", "VGSALES_SECURITY_ENABLE_CORS",
	"VGSALES_LOGGING_LEVEL", "VGSALES_LOGGING_OUTPUT",
	"VGSALES_DATASET_SOURCE", "VGSALES_DATASET_FORMAT", "VGSALES_DATASET_MALFORMED_ROWS",
	"VGSALES_DATASET_DEFAULT_PLATFORMS", "VGSALES_DATASET_SAMPLE_SIZE",
	"VGSALES_METRICS_TRACING",
}

// clearConfigEnv unsets every variable the tests touch; t.Setenv restores them afterwards.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, envVar := range configEnvVars {
		t.Setenv(envVar, "")
		os.Unsetenv(envVar)
	}
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars or file",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 1048576, cfg.Server.MaxHeaderBytes)

				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, 100.0, cfg.Security.RateLimit.RPS)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)

				assert.Equal(t, "vgsales.csv", cfg.Dataset.Path)
				assert.Equal(t, "auto", cfg.Dataset.Format)
				assert.Equal(t, "skip", cfg.Dataset.MalformedRows)
				assert.Equal(t, []string{"PS2", "X360", "Wii"}, cfg.Dataset.DefaultPlatforms)
				assert.Equal(t, []string{"Action", "Sports", "Shooter"}, cfg.Dataset.DefaultGenres)
				assert.Equal(t, 10, cfg.Dataset.SampleSize)
				assert.Equal(t, 10, cfg.Dataset.TopGames)
				assert.Equal(t, 5, cfg.Dataset.TopPublishers)

				assert.True(t, cfg.Metrics.Enabled)
				assert.Equal(t, "none", cfg.Metrics.Tracing)
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"VGSALES_SERVER_PORT":               "9090",
				"VGSALES_SERVER_READ_TIMEOUT":       "5s",
				"VGSALES_DATASET_SOURCE":            "/data/vgsales.xlsx",
				"VGSALES_DATASET_MALFORMED_ROWS":    "fail",
				"VGSALES_DATASET_DEFAULT_PLATFORMS": "PS4,XOne",
				"VGSALES_LOGGING_LEVEL":             "debug",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "/data/vgsales.xlsx", cfg.Dataset.Path)
				assert.Equal(t, "fail", cfg.Dataset.MalformedRows)
				assert.Equal(t, []string{"PS4", "XOne"}, cfg.Dataset.DefaultPlatforms)
				assert.Equal(t, "debug", cfg.Logging.Level)
				// untouched fields keep defaults
				assert.Equal(t, []string{"Action", "Sports", "Shooter"}, cfg.Dataset.DefaultGenres)
			},
		},
		{
			name: "file overlays defaults",
			file: `
server:
  port: 7070
  write_timeout: 2m
dataset:
  path: sales.xlsx
  format: xlsx
  top_publishers: 3
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, 2*time.Minute, cfg.Server.WriteTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "sales.xlsx", cfg.Dataset.Path)
				assert.Equal(t, "xlsx", cfg.Dataset.Format)
				assert.Equal(t, 3, cfg.Dataset.TopPublishers)
				assert.Equal(t, 10, cfg.Dataset.TopGames)
			},
		},
		{
			name: "environment wins over file",
			env:  map[string]string{"VGSALES_SERVER_PORT": "6060"},
			file: "server:\n  port: 7070\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6060, cfg.Server.Port)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"VGSALES_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "unknown malformed row policy",
			env:     map[string]string{"VGSALES_DATASET_MALFORMED_ROWS": "ignore"},
			wantErr: true,
		},
		{
			name:    "unknown dataset format",
			env:     map[string]string{"VGSALES_DATASET_FORMAT": "json"},
			wantErr: true,
		},
		{
			name:    "non-positive sample size",
			env:     map[string]string{"VGSALES_DATASET_SAMPLE_SIZE": "0"},
			wantErr: true,
		},
		{
			name:    "unknown tracing exporter",
			env:     map[string]string{"VGSALES_METRICS_TRACING": "jaeger"},
			wantErr: true,
		},
		{
			name:    "unparsable env value",
			env:     map[string]string{"VGSALES_SERVER_PORT": "eighty"},
			wantErr: true,
		},
		{
			name:    "malformed file",
			file:    "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	clearConfigEnv(t)

	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
}

func TestValidate_CORSNeedsOrigins(t *testing.T) {
	cfg := Default()
	cfg.Security.AllowedOrigins = nil
	assert.Error(t, cfg.validate())

	cfg.Security.EnableCORS = false
	assert.NoError(t, cfg.validate())
}

func TestGetConfigFilePath_FromEnv(t *testing.T) {
	t.Setenv(EnvConfigFile, "/etc/vgsales/config.yaml")

	assert.Equal(t, "/etc/vgsales/config.yaml", getConfigFilePath())
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().validate())
}
