// Package config loads and saves the on-disk terminal configuration: shell
// selection, environment overrides, the active color theme and font choice.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ShellConfig controls how the child shell process is launched.
type ShellConfig struct {
	Path          string            `toml:"path"`
	SourceRC      bool              `toml:"source_rc"`
	AdditionalEnv map[string]string `toml:"additional_env"`
}

// FontConfig controls the glyph atlas the display builds at startup.
type FontConfig struct {
	Path string  `toml:"path"`
	Size float64 `toml:"size"`
}

// Config holds the complete terminal configuration.
type Config struct {
	Shell ShellConfig `toml:"shell"`
	Font  FontConfig  `toml:"font"`
	Theme string      `toml:"theme"`
}

// DefaultConfig returns the configuration a terminal starts with when no
// config file exists yet.
func DefaultConfig() *Config {
	return &Config{
		Shell: ShellConfig{
			SourceRC:      true,
			AdditionalEnv: map[string]string{},
		},
		Font: FontConfig{
			Size: 14,
		},
		Theme: "raven-blue",
	}
}

// GetConfigPath returns the path to the config file, creating its parent
// directory if necessary.
func GetConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".termcore.toml"
	}
	configDir := filepath.Join(homeDir, ".config", "termcore")
	os.MkdirAll(configDir, 0755)
	return filepath.Join(configDir, "config.toml")
}

// Load reads the configuration from disk, returning DefaultConfig if no
// file exists yet.
func Load() (*Config, error) {
	configPath := GetConfigPath()
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to disk as TOML.
func (c *Config) Save() error {
	configPath := GetConfigPath()
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
