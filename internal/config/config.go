// Package config provides configuration management for mcpbridge using Viper.
package config

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpbridge/internal/errors"
	"github.com/thoreinstein/mcpbridge/internal/paths"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "MCPBRIDGE"

// ConfigDirEnv overrides the directory searched for config.yaml.
const ConfigDirEnv = EnvPrefix + "_CONFIG_DIR"

// Keys understood by the application config.
const (
	KeyServersFile      = "servers_file"
	KeyPolicy           = "policy"
	KeyHandshakeTimeout = "handshake_timeout"
	KeyTerminateTimeout = "terminate_timeout"
)

// Defaults applied by Init.
const (
	DefaultPolicy           = "strict"
	DefaultHandshakeTimeout = 30 * time.Second
	DefaultTerminateTimeout = 5 * time.Second
)

// Config represents the top-level configuration structure.
type Config struct {
	// ServersFile is the server definitions file. Empty means discover.
	ServersFile string `mapstructure:"servers_file" yaml:"servers_file"`

	// Policy decides how a single server's startup failure is handled:
	// "strict" aborts initialization, "isolate" drops the server.
	Policy string `mapstructure:"policy" yaml:"policy"`

	// HandshakeTimeout bounds each server's initialize and tools/list
	// exchange. Zero disables the per-server deadline.
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" yaml:"handshake_timeout"`

	// TerminateTimeout is how long a server gets to exit after its stdin
	// is closed before it is killed.
	TerminateTimeout time.Duration `mapstructure:"terminate_timeout" yaml:"terminate_timeout"`
}

// Init resets Viper and installs the default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		viper.AddConfigPath(dir)
	}
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.AppConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault(KeyServersFile, "")
	viper.SetDefault(KeyPolicy, DefaultPolicy)
	viper.SetDefault(KeyHandshakeTimeout, DefaultHandshakeTimeout)
	viper.SetDefault(KeyTerminateTimeout, DefaultTerminateTimeout)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load falls back to defaults.
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), "validating config")
	}

	return &cfg, nil
}
