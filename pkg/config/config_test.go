package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/varnorm/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "varnorm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "1MB", cfg.Limits.MaxInputSize)
	assert.Equal(t, config.FormatText, cfg.Logging.Format)
	assert.True(t, cfg.Telemetry.Prometheus)

	size, err := cfg.Limits.MaxInputBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), size)

	level, err := cfg.Logging.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  port: 9000
  host: "127.0.0.1"
  static_dir: "./web"
  read_timeout: "5s"
limits:
  max_input_size: "64KiB"
logging:
  level: debug
  format: json
telemetry:
  otlp_endpoint: "localhost:4317"
  otlp_insecure: true
  sample_ratio: 0.5
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "./web", cfg.Server.StaticDir)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, config.FormatJSON, cfg.Logging.Format)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.OTLPInsecure)
	assert.InDelta(t, 0.5, cfg.Telemetry.SampleRatio, 1e-9)

	size, err := cfg.Limits.MaxInputBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(65536), size)

	level, err := cfg.Logging.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("VARNORM_SERVER_PORT", "9090")
	t.Setenv("VARNORM_LIMITS_MAX_INPUT_SIZE", "2MB")

	cfg, err := config.LoadConfig(writeConfig(t, "server:\n  port: 7000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "2MB", cfg.Limits.MaxInputSize)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "port zero", content: "server:\n  port: 0\n", wantErr: config.ErrInvalidPort},
		{name: "port too large", content: "server:\n  port: 70000\n", wantErr: config.ErrInvalidPort},
		{name: "bad size", content: "limits:\n  max_input_size: lots\n", wantErr: config.ErrInvalidInputSize},
		{name: "zero size", content: "limits:\n  max_input_size: 0B\n", wantErr: config.ErrInvalidInputSize},
		{name: "bad level", content: "logging:\n  level: loud\n", wantErr: config.ErrInvalidLogLevel},
		{name: "bad format", content: "logging:\n  format: xml\n", wantErr: config.ErrInvalidLogFormat},
		{name: "bad ratio", content: "telemetry:\n  sample_ratio: 2\n", wantErr: config.ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
