// Package config loads cryptshred settings from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix = "CRYPTSHRED_"

	// EnvConfigPath overrides the default config file location
	EnvConfigPath = envPrefix + "CONFIG"

	MinPasses     = 1
	MaxPasses     = 35
	DefaultPasses = 3
)

// Config holds the complete application configuration.
type Config struct {
	LogLevel  string        `yaml:"log_level" env:"CRYPTSHRED_LOG_LEVEL"`
	LogFormat string        `yaml:"log_format" env:"CRYPTSHRED_LOG_FORMAT"` // text or json
	Workers   int           `yaml:"workers" env:"CRYPTSHRED_WORKERS"`
	Exclude   []string      `yaml:"exclude" env:"CRYPTSHRED_EXCLUDE"` // Comma-separated doublestar globs
	Shred     ShredConfig   `yaml:"shred"`
	Detect    DetectConfig  `yaml:"detect"`
	Journal   JournalConfig `yaml:"journal"`
	Keyring   KeyringConfig `yaml:"keyring"`
}

// ShredConfig holds secure deletion settings.
type ShredConfig struct {
	Passes       int  `yaml:"passes" env:"CRYPTSHRED_SHRED_PASSES"`
	ChunkSize    int  `yaml:"chunk_size" env:"CRYPTSHRED_SHRED_CHUNK_SIZE"`
	CleanFolders bool `yaml:"clean_folders" env:"CRYPTSHRED_SHRED_CLEAN_FOLDERS"`
}

// DetectConfig controls how encrypted files are recognised.
type DetectConfig struct {
	RequireExtension bool `yaml:"require_extension" env:"CRYPTSHRED_DETECT_REQUIRE_EXTENSION"`
}

// JournalConfig holds the processing history settings.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled" env:"CRYPTSHRED_JOURNAL_ENABLED"`
	Path    string `yaml:"path" env:"CRYPTSHRED_JOURNAL_PATH"`
}

// KeyringConfig controls reading the password from the OS keyring.
type KeyringConfig struct {
	Enabled bool   `yaml:"enabled" env:"CRYPTSHRED_KEYRING_ENABLED"`
	Account string `yaml:"account" env:"CRYPTSHRED_KEYRING_ACCOUNT"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Workers:   1,
		Shred: ShredConfig{
			Passes:    DefaultPasses,
			ChunkSize: 8 * 1024,
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    filepath.Join(configDir(), "journal.db"),
		},
		Keyring: KeyringConfig{
			Account: "default",
		},
	}
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".cryptshred"
	}
	return filepath.Join(dir, "cryptshred")
}

// DefaultPath returns the config file location: $CRYPTSHRED_CONFIG, else
// cryptshred/config.yaml under the user config directory.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(configDir(), "config.yaml")
}

// LoadConfig loads configuration from a file and environment variables.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromEnv loads configuration values from environment variables.
func loadFromEnv(config *Config) error {
	if v := os.Getenv("CRYPTSHRED_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv("CRYPTSHRED_LOG_FORMAT"); v != "" {
		config.LogFormat = v
	}
	if v := os.Getenv("CRYPTSHRED_EXCLUDE"); v != "" {
		config.Exclude = splitList(v)
	}
	if v := os.Getenv("CRYPTSHRED_JOURNAL_PATH"); v != "" {
		config.Journal.Path = v
	}
	if v := os.Getenv("CRYPTSHRED_KEYRING_ACCOUNT"); v != "" {
		config.Keyring.Account = v
	}

	ints := map[string]*int{
		"CRYPTSHRED_WORKERS":          &config.Workers,
		"CRYPTSHRED_SHRED_PASSES":     &config.Shred.Passes,
		"CRYPTSHRED_SHRED_CHUNK_SIZE": &config.Shred.ChunkSize,
	}
	for name, dst := range ints {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %q is not a number", name, v)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"CRYPTSHRED_SHRED_CLEAN_FOLDERS":      &config.Shred.CleanFolders,
		"CRYPTSHRED_DETECT_REQUIRE_EXTENSION": &config.Detect.RequireExtension,
		"CRYPTSHRED_JOURNAL_ENABLED":          &config.Journal.Enabled,
		"CRYPTSHRED_KEYRING_ENABLED":          &config.Keyring.Enabled,
	}
	for name, dst := range bools {
		if v := os.Getenv(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %q is not a boolean", name, v)
			}
			*dst = b
		}
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that all settings are in range.
func (c *Config) Validate() error {
	if c.LogLevel != "" {
		validLevels := map[string]bool{
			"trace": true,
			"debug": true,
			"info":  true,
			"warn":  true,
			"error": true,
		}
		if !validLevels[c.LogLevel] {
			return fmt.Errorf("invalid log_level: %s (must be trace, debug, info, warn, or error)", c.LogLevel)
		}
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log_format: %s (must be text or json)", c.LogFormat)
	}

	if err := ValidatePasses(c.Shred.Passes); err != nil {
		return fmt.Errorf("shred.passes: %w", err)
	}

	if c.Shred.ChunkSize < 512 || c.Shred.ChunkSize > 16*1024*1024 {
		return fmt.Errorf("shred.chunk_size must be between 512 and 16777216 bytes")
	}

	if c.Workers < 1 || c.Workers > 64 {
		return fmt.Errorf("workers must be between 1 and 64")
	}

	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required when the journal is enabled")
	}

	return nil
}

// ValidatePasses checks an overwrite pass count
func ValidatePasses(n int) error {
	if n < MinPasses || n > MaxPasses {
		return fmt.Errorf("must be between %d and %d, got %d", MinPasses, MaxPasses, n)
	}
	return nil
}
