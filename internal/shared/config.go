package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Logging    LoggingConfig    `toml:"logging"`
	Database   DatabaseConfig   `toml:"database"`
	Processing ProcessingConfig `toml:"processing"`
	Report     ReportConfig     `toml:"report"`
}

// LoggingConfig controls logger verbosity and destination.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DatabaseConfig contains history database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ProcessingConfig contains defaults applied to processing commands.
type ProcessingConfig struct {
	Task   string `toml:"task"`
	Record bool   `toml:"record"`
}

// ReportConfig contains defaults for the dataset report command.
type ReportConfig struct {
	Directory string `toml:"directory"`
	Format    string `toml:"format"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// FindConfig loads configuration from the first existing candidate path:
// the explicit path when non-empty, ./motiontsv.toml, then
// $XDG_CONFIG_HOME/motiontsv/config.toml. Falls back to [DefaultConfig]
// when no file exists.
func FindConfig(explicit string) (*Config, error) {
	candidates := []string{}
	if explicit != "" {
		candidates = append(candidates, explicit)
	}
	candidates = append(candidates, "motiontsv.toml")
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "motiontsv", "config.toml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		} else if path == explicit {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, explicit)
		}
	}

	return DefaultConfig(), nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
