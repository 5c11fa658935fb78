package dvctl

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"

	"github.com/larsks/dronevision/internal/config"
)

const defaultServerURL = "http://localhost:8080"

// Config holds the dvctl configuration
type Config struct {
	ServerURL  string `mapstructure:"server-url"`
	ConfigFile string `mapstructure:"config"`
}

func getDefaultServerURL() string {
	if url := os.Getenv("DRONEVISION_SERVER_URL"); url != "" {
		return url
	}

	return defaultServerURL
}

func getDefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, "dronevision", "dvctl.toml")
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		ServerURL: getDefaultServerURL(),
	}
}

// AddFlags adds command-line flags for all configuration options
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", getDefaultConfigFile(), "Config file to use")
	fs.StringVar(&c.ServerURL, "server-url", c.ServerURL, "API server URL")
}

// LoadConfigWithFlagSet loads configuration with proper precedence: defaults
// (including DRONEVISION_SERVER_URL) < config file < explicit flags.
func (c *Config) LoadConfigWithFlagSet(fs *pflag.FlagSet) error {
	if c.ConfigFile == getDefaultConfigFile() {
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
	loader.SetDefaults(map[string]any{
		"server-url": getDefaultServerURL(),
	})

	return loader.LoadConfigWithFlagSet(c, fs)
}
