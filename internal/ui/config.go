package ui

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"

	"github.com/larsks/dronevision/internal/config"
)

// Config holds the configuration for the UI server.
type Config struct {
	ListenAddress string `mapstructure:"listen-address"`
	ListenPort    int    `mapstructure:"listen-port"`
	ConfigFile    string `mapstructure:"config"`
	APIBaseURL    string `mapstructure:"api-base-url"`
}

// DefaultConfigFile returns the config file used when --config is not given.
func DefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, "dronevision", "ui.toml")
}

// NewConfig creates a new Config instance with default values.
func NewConfig() *Config {
	return &Config{
		ListenAddress: "",
		ListenPort:    8081,
		APIBaseURL:    "http://localhost:8080",
	}
}

// AddFlags adds pflag flags for the configuration.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", DefaultConfigFile(), "Config file to use")
	fs.StringVar(&c.ListenAddress, "listen-address", c.ListenAddress, "Listen address for UI server")
	fs.IntVar(&c.ListenPort, "listen-port", c.ListenPort, "Listen port for UI server")
	fs.StringVar(&c.APIBaseURL, "api-base-url", c.APIBaseURL, "Base URL for the API server")
}

// LoadConfig loads the configuration using the global flag set.
func (c *Config) LoadConfig() error {
	return c.LoadConfigWithFlagSet(pflag.CommandLine)
}

// LoadConfigWithFlagSet loads configuration with proper precedence: defaults
// < config file < explicit flags.
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
		"listen-address": defaults.ListenAddress,
		"listen-port":    defaults.ListenPort,
		"api-base-url":   defaults.APIBaseURL,
	})

	if err := loader.LoadConfigWithFlagSet(c, fs); err != nil {
		return err
	}

	return c.Validate()
}

// Validate checks the listen port and the API base URL.
func (c *Config) Validate() error {
	if c.ListenPort < 0 || c.ListenPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.ListenPort)
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAPIURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidAPIURL, c.APIBaseURL)
	}

	return nil
}
