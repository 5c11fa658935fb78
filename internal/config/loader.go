// Package config loads layered configuration: built-in defaults, then a
// config file, then command line flags the user set explicitly.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configurable represents a type that can be configured via flags and config files.
type Configurable interface {
	// AddFlags should add command-line flags to the provided FlagSet
	AddFlags(fs *pflag.FlagSet)
}

// ConfigLoader provides common configuration loading functionality.
type ConfigLoader struct {
	configFile   string
	defaults     map[string]any
	preserveFile bool
	strictMode   bool
}

// NewConfigLoader creates a new ConfigLoader instance.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{
		defaults:     make(map[string]any),
		preserveFile: true,
		strictMode:   false,
	}
}

// SetConfigFile sets the configuration file path.
func (cl *ConfigLoader) SetConfigFile(configFile string) {
	cl.configFile = configFile
}

// SetDefault sets a default value for a configuration key.
func (cl *ConfigLoader) SetDefault(key string, value any) {
	cl.defaults[key] = value
}

// SetDefaults sets multiple default values at once.
func (cl *ConfigLoader) SetDefaults(defaults map[string]any) {
	for key, value := range defaults {
		cl.defaults[key] = value
	}
}

// SetStrictMode enables or disables strict mode for configuration validation.
// In strict mode, unknown configuration fields will cause an error.
func (cl *ConfigLoader) SetStrictMode(strict bool) {
	cl.strictMode = strict
}

// LoadConfig loads configuration using the flags on pflag.CommandLine.
func (cl *ConfigLoader) LoadConfig(config any) error {
	return cl.LoadConfigWithFlagSet(config, pflag.CommandLine)
}

// LoadConfigWithFlagSet loads configuration with proper precedence:
// defaults < config file < flags explicitly set on fs. The config
// parameter must be a pointer to the configuration struct to populate.
func (cl *ConfigLoader) LoadConfigWithFlagSet(config any, fs *pflag.FlagSet) error {
	v := viper.New()

	for key, value := range cl.defaults {
		v.SetDefault(key, value)
	}

	if cl.configFile != "" {
		if err := cl.readConfigFile(v); err != nil {
			return err
		}
	}

	// Flag names are used as keys verbatim, so --session.max-sessions
	// lands on the "max-sessions" field of the "session" table.
	if fs != nil {
		fs.Visit(func(flag *pflag.Flag) {
			v.Set(flag.Name, flagValue(flag))
		})
	}

	if err := cl.decode(v, config); err != nil {
		return err
	}

	if cl.preserveFile && cl.configFile != "" {
		// Not every config struct has a ConfigFile field
		_ = cl.setConfigFileField(config, cl.configFile)
	}

	return nil
}

func (cl *ConfigLoader) readConfigFile(v *viper.Viper) error {
	content, err := os.ReadFile(cl.configFile)
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrConfigFileRead, cl.configFile, err)
	}

	configType := strings.TrimPrefix(filepath.Ext(cl.configFile), ".")
	if configType == "" {
		configType = "toml"
	}
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(expandEnv(content))); err != nil {
		return fmt.Errorf("%w %s: %v", ErrConfigFileRead, cl.configFile, err)
	}

	return nil
}

func (cl *ConfigLoader) decode(v *viper.Viper, config any) error {
	decoderConfig := mapstructure.DecoderConfig{
		Result:           config,
		ErrorUnused:      cl.strictMode,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}

	decoder, err := mapstructure.NewDecoder(&decoderConfig)
	if err != nil {
		return fmt.Errorf("%w: failed to create decoder: %v", ErrConfigUnmarshal, err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "has invalid keys:") {
			// Name the config file in "unused keys" errors
			if cl.configFile != "" {
				errStr = strings.Replace(errStr, "* ''", fmt.Sprintf("* '%s'", cl.configFile), 1)
			}
			return fmt.Errorf("%w: %w: %s", ErrConfigUnmarshal, ErrUnknownKeys, errStr)
		}
		return fmt.Errorf("%w: %s", ErrConfigUnmarshal, errStr)
	}

	return nil
}

// flagValue returns the typed value of a flag so viper does not have to
// parse the string representation.
func flagValue(flag *pflag.Flag) any {
	str := flag.Value.String()

	switch flag.Value.Type() {
	case "uint", "uint8", "uint16", "uint32", "uint64":
		if val, err := strconv.ParseUint(str, 10, 64); err == nil {
			return val
		}
	case "int", "int8", "int16", "int32", "int64":
		if val, err := strconv.ParseInt(str, 10, 64); err == nil {
			return val
		}
	case "bool":
		if val, err := strconv.ParseBool(str); err == nil {
			return val
		}
	case "float32", "float64":
		if val, err := strconv.ParseFloat(str, 64); err == nil {
			return val
		}
	case "stringSlice", "stringArray":
		// String() renders slices as "[a,b]"
		if sliceFlag, ok := flag.Value.(pflag.SliceValue); ok {
			return sliceFlag.GetSlice()
		}
	}

	return str
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnv replaces $VAR and ${VAR} with the value of the environment
// variable. References to unset variables are left untouched.
func expandEnv(content []byte) []byte {
	return envPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		groups := envPattern.FindSubmatch(match)
		name := string(groups[1])
		if name == "" {
			name = string(groups[2])
		}
		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		return match
	})
}

// setConfigFileField attempts to set a ConfigFile field on the config struct using reflection.
func (cl *ConfigLoader) setConfigFileField(config any, configFile string) error {
	v := reflect.ValueOf(config)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("%w: got %T", ErrConfigNotPointer, config)
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("%w: got %s", ErrConfigNotStruct, v.Kind())
	}

	field := v.FieldByName("ConfigFile")
	if !field.IsValid() {
		return nil
	}

	if !field.CanSet() {
		return fmt.Errorf("%w: ConfigFile", ErrConfigFieldNotSet)
	}

	if field.Kind() != reflect.String {
		return fmt.Errorf("%w: ConfigFile is %s", ErrConfigFieldNotString, field.Kind())
	}

	field.SetString(configFile)
	return nil
}
