package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T, args []string) (*Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := NewConfig()
	cfg.AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	return cfg, cfg.LoadConfigWithFlagSet(fs)
}

func TestConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(t, []string{"--config", ""})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ListenPort)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 100, cfg.Session.MaxSessions)
	assert.Equal(t, 10*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, 2500*time.Millisecond, cfg.Dashboard.ActionTTL)
	assert.Equal(t, 3*time.Second, cfg.Telemetry.Period)
	assert.True(t, cfg.Telemetry.AutoTick)
	assert.Equal(t, 0.3, cfg.Telemetry.UploadRatio)
	assert.Empty(t, cfg.MQTT.Server)
}

func TestConfig_FileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dronevision.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen-port = 9000
cors-origins = ["http://localhost:8081"]

[session]
max-sessions = 5

[dashboard]
action-ttl = "1s"

[telemetry]
auto-tick = false
upload-ratio = 0.5

[mqtt]
server = "mqtt://broker:1883"
`), 0o600))

	cfg, err := loadConfig(t, []string{"--config", path, "--session.max-sessions", "7"})
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, 9000, cfg.ListenPort)
	assert.Equal(t, []string{"http://localhost:8081"}, cfg.CORSOrigins)
	assert.Equal(t, 7, cfg.Session.MaxSessions)
	assert.Equal(t, time.Second, cfg.Dashboard.ActionTTL)
	assert.False(t, cfg.Telemetry.AutoTick)
	assert.Equal(t, 0.5, cfg.Telemetry.UploadRatio)
	assert.Equal(t, "mqtt://broker:1883", cfg.MQTT.Server)

	sc := cfg.SessionConfig()
	assert.Equal(t, 7, sc.MaxSessions)
	assert.False(t, sc.AutoTick)
	assert.Equal(t, time.Second, sc.ActionTTL)
}

func TestConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	unknownKey := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknownKey, []byte("driver = \"piface\"\n"), 0o600))

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"missing explicit file", []string{"--config", filepath.Join(dir, "missing.toml")}, ErrConfigNotFound},
		{"bad port", []string{"--config", "", "--listen-port", "70000"}, ErrInvalidPort},
		{"bad ratio", []string{"--config", "", "--telemetry.upload-ratio", "2"}, ErrInvalidConfig},
		{"bad sessions", []string{"--config", "", "--session.max-sessions", "0"}, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(t, tt.args)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("unknown key", func(t *testing.T) {
		_, err := loadConfig(t, []string{"--config", unknownKey})
		assert.Error(t, err)
	})
}
