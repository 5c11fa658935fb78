package api

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"

	"github.com/larsks/dronevision/internal/config"
	"github.com/larsks/dronevision/internal/dashboard"
	"github.com/larsks/dronevision/internal/session"
	"github.com/larsks/dronevision/internal/telemetry"
)

type (
	SessionConfig struct {
		MaxSessions   int           `mapstructure:"max-sessions"`
		IdleTimeout   time.Duration `mapstructure:"idle-timeout"`
		SweepInterval time.Duration `mapstructure:"sweep-interval"`
	}

	DashboardConfig struct {
		ActionTTL time.Duration `mapstructure:"action-ttl"`
	}

	TelemetryConfig struct {
		Period      time.Duration `mapstructure:"period"`
		AutoTick    bool          `mapstructure:"auto-tick"`
		UploadRatio float64       `mapstructure:"upload-ratio"`
	}

	MQTTConfig struct {
		Server   string `mapstructure:"server"`
		ClientID string `mapstructure:"client-id"`
	}

	// Config holds the configuration for the API server.
	Config struct {
		ConfigFile    string          `mapstructure:"config"`
		ListenAddress string          `mapstructure:"listen-address"`
		ListenPort    int             `mapstructure:"listen-port"`
		CORSOrigins   []string        `mapstructure:"cors-origins"`
		Session       SessionConfig   `mapstructure:"session"`
		Dashboard     DashboardConfig `mapstructure:"dashboard"`
		Telemetry     TelemetryConfig `mapstructure:"telemetry"`
		MQTT          MQTTConfig      `mapstructure:"mqtt"`
	}
)

// DefaultConfigFile returns the config file used when --config is not given.
func DefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, "dronevision", "dronevision.toml")
}

// NewConfig creates a new Config instance with default values.
func NewConfig() *Config {
	return &Config{
		ListenAddress: "",
		ListenPort:    8080,
		CORSOrigins:   []string{"*"},
		Session: SessionConfig{
			MaxSessions:   session.DefaultMaxSessions,
			IdleTimeout:   session.DefaultIdleTimeout,
			SweepInterval: session.DefaultSweepInterval,
		},
		Dashboard: DashboardConfig{
			ActionTTL: dashboard.DefaultActionTTL,
		},
		Telemetry: TelemetryConfig{
			Period:      telemetry.DefaultPeriod,
			AutoTick:    true,
			UploadRatio: telemetry.DefaultUploadRatio,
		},
		MQTT: MQTTConfig{
			ClientID: "dronevision-api",
		},
	}
}

// AddFlags adds pflag flags for the configuration.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", DefaultConfigFile(), "Config file to use")
	fs.StringVar(&c.ListenAddress, "listen-address", c.ListenAddress, "Listen address for http server")
	fs.IntVar(&c.ListenPort, "listen-port", c.ListenPort, "Listen port for http server")
	fs.StringSliceVar(&c.CORSOrigins, "cors-origins", c.CORSOrigins, "Origins allowed to call the API")
	fs.IntVar(&c.Session.MaxSessions, "session.max-sessions", c.Session.MaxSessions, "Maximum number of open sessions")
	fs.DurationVar(&c.Session.IdleTimeout, "session.idle-timeout", c.Session.IdleTimeout, "Close sessions idle for longer than this (0 = never)")
	fs.DurationVar(&c.Session.SweepInterval, "session.sweep-interval", c.Session.SweepInterval, "How often to look for idle sessions")
	fs.DurationVar(&c.Dashboard.ActionTTL, "dashboard.action-ttl", c.Dashboard.ActionTTL, "How long an action acknowledgement stays visible")
	fs.DurationVar(&c.Telemetry.Period, "telemetry.period", c.Telemetry.Period, "Interval between telemetry entries")
	fs.BoolVar(&c.Telemetry.AutoTick, "telemetry.auto-tick", c.Telemetry.AutoTick, "Generate telemetry entries on the server")
	fs.Float64Var(&c.Telemetry.UploadRatio, "telemetry.upload-ratio", c.Telemetry.UploadRatio, "Share of telemetry entries reporting an upload")
	fs.StringVar(&c.MQTT.Server, "mqtt.server", c.MQTT.Server, "MQTT server URL (mqtt://host:port), empty to disable")
	fs.StringVar(&c.MQTT.ClientID, "mqtt.client-id", c.MQTT.ClientID, "MQTT client id")
}

// LoadConfig loads the configuration using the global flag set.
func (c *Config) LoadConfig() error {
	return c.LoadConfigWithFlagSet(pflag.CommandLine)
}

// LoadConfigWithFlagSet loads configuration with proper precedence: defaults
// < config file < explicit flags. A missing default config file is not an
// error; a missing explicit one is.
func (c *Config) LoadConfigWithFlagSet(fs *pflag.FlagSet) error {
	if c.ConfigFile == DefaultConfigFile() {
		if _, err := os.Stat(c.ConfigFile); os.IsNotExist(err) {
			c.ConfigFile = ""
		}
	} else if c.ConfigFile != "" {
		if _, err := os.Stat(c.ConfigFile); os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, c.ConfigFile)
		}
	}

	loader := config.NewConfigLoader()
	loader.SetConfigFile(c.ConfigFile)
	loader.SetStrictMode(true)

	defaults := NewConfig()
	loader.SetDefaults(map[string]any{
		"listen-address":         defaults.ListenAddress,
		"listen-port":            defaults.ListenPort,
		"cors-origins":           defaults.CORSOrigins,
		"session.max-sessions":   defaults.Session.MaxSessions,
		"session.idle-timeout":   defaults.Session.IdleTimeout,
		"session.sweep-interval": defaults.Session.SweepInterval,
		"dashboard.action-ttl":   defaults.Dashboard.ActionTTL,
		"telemetry.period":       defaults.Telemetry.Period,
		"telemetry.auto-tick":    defaults.Telemetry.AutoTick,
		"telemetry.upload-ratio": defaults.Telemetry.UploadRatio,
		"mqtt.server":            defaults.MQTT.Server,
		"mqtt.client-id":         defaults.MQTT.ClientID,
	})

	if err := loader.LoadConfigWithFlagSet(c, fs); err != nil {
		return err
	}

	return c.Validate()
}

// Validate checks the listen port and the session settings.
func (c *Config) Validate() error {
	if c.ListenPort < 0 || c.ListenPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.ListenPort)
	}
	if err := c.SessionConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// SessionConfig converts the configuration into session manager settings.
func (c *Config) SessionConfig() session.Config {
	return session.Config{
		MaxSessions:     c.Session.MaxSessions,
		IdleTimeout:     c.Session.IdleTimeout,
		SweepInterval:   c.Session.SweepInterval,
		ActionTTL:       c.Dashboard.ActionTTL,
		TelemetryPeriod: c.Telemetry.Period,
		AutoTick:        c.Telemetry.AutoTick,
		UploadRatio:     c.Telemetry.UploadRatio,
	}
}

// GetListenAddress implements httpserver.Config interface
func (c *Config) GetListenAddress() string {
	return c.ListenAddress
}

// GetListenPort implements httpserver.Config interface
func (c *Config) GetListenPort() int {
	return c.ListenPort
}
