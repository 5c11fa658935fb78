package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larsks/dronevision/internal/api"
	"github.com/larsks/dronevision/internal/cli"
)

func parseArgs(args []string) (*cli.CommandArgs, error) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Usage = func() {}
	c := cli.NewBaseCLI(&bytes.Buffer{}, &bytes.Buffer{})
	return c.ParseArgsStandardWithFlagSet(args, func() cli.Configurable { return api.NewConfig() }, fs)
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantCommand string
		wantErr     bool
	}{
		{"no arguments starts server", []string{"--config", ""}, cli.CommandStart, false},
		{"version flag", []string{"--version"}, cli.CommandVersion, false},
		{"listen-port flag", []string{"--config", "", "--listen-port", "9090"}, cli.CommandStart, false},
		{"session limit flag", []string{"--config", "", "--session.max-sessions", "5"}, cli.CommandStart, false},
		{"non-existent config file", []string{"--config", "/nonexistent/dronevision.toml"}, "", true},
		{"invalid port", []string{"--config", "", "--listen-port=70000"}, "", true},
		{"invalid flag", []string{"--invalid-flag"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCommand, got.Command)
			assert.NotNil(t, got.Config)
		})
	}
}

func TestParseArgsWithConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "dronevision.toml")
	content := `listen-address = "192.168.1.100"
listen-port = 9090

[session]
max-sessions = 7

[telemetry]
auto-tick = false
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

	got, err := parseArgs([]string{"--config", configFile})
	require.NoError(t, err)

	cfg := got.Config.(*api.Config)
	assert.Equal(t, "192.168.1.100", cfg.ListenAddress)
	assert.Equal(t, 9090, cfg.ListenPort)
	assert.Equal(t, 7, cfg.Session.MaxSessions)
	assert.False(t, cfg.Telemetry.AutoTick)
}
