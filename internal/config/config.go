// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the application configuration shared by the client commands and
// the relay.
type Config struct {
	Language string        `mapstructure:"language" yaml:"language"`
	Debug    bool          `mapstructure:"debug" yaml:"debug"`
	Relay    RelayConfig   `mapstructure:"relay" yaml:"relay"`
	Timeouts TimeoutConfig `mapstructure:"timeouts" yaml:"timeouts"`
	Audit    AuditConfig   `mapstructure:"audit" yaml:"audit"`
}

// RelayConfig covers both sides of the relay: URL is what clients dial,
// the rest configures the server process.
type RelayConfig struct {
	URL            string        `mapstructure:"url" yaml:"url"`
	Listen         string        `mapstructure:"listen" yaml:"listen"`
	DB             string        `mapstructure:"db" yaml:"db"`
	DSN            string        `mapstructure:"dsn" yaml:"dsn"`
	SessionTTL     time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
	DrainInterval  time.Duration `mapstructure:"drain_interval" yaml:"drain_interval"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// TimeoutConfig bounds the two waiting states of the client lifecycle.
type TimeoutConfig struct {
	Provision time.Duration `mapstructure:"provision" yaml:"provision"`
	Connect   time.Duration `mapstructure:"connect" yaml:"connect"`
}

// AuditConfig controls the relay's audit trail.
type AuditConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		// System-wide configuration paths
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Gangway")
		default: // Linux, macOS, etc.
			configDir = "/etc/gangway"
		}
	} else {
		// User-specific configuration paths
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "gangway")
	}

	return filepath.Join(configDir, "gangway.yaml"), nil
}

// LoadConfig resolves configuration from defaults, the config file, the
// environment (GANGWAY_ prefix) and the command's flags, in ascending
// precedence, and unmarshals the result into T.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFilePath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("gangway")
	v.SetConfigType("yaml")

	// An explicit --config path has the highest precedence for file-based
	// configuration.
	if configFilePath != nil {
		v.SetConfigFile(*configFilePath)
	}

	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, anything else is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("gangway")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return c, err
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}

// WriteConfigFile persists c as YAML to the user or system config location.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the file may carry DSN credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}

	return nil
}
