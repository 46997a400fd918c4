package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the compiler's tunable settings.
type Config struct {
	// Compile settings
	Compile struct {
		IgnoreAliases bool `toml:"ignore_aliases" yaml:"ignore_aliases"` // -U: don't expand aliases while compiling
		KeepGoing     bool `toml:"keep_going" yaml:"keep_going"`         // stored only: the compiler does not read it, and ParseList stops at the first failing event
		MapThreshold  int  `toml:"map_threshold" yaml:"map_threshold"`  // dump files at or above this size (bytes) are mmap'd instead of read
	} `toml:"compile" yaml:"compile"`

	// Dump-file settings
	Dump struct {
		PreferredByteOrder string `toml:"byte_order" yaml:"byte_order"` // "native", "little", or "big"
		ReuseExisting      bool   `toml:"reuse_existing" yaml:"reuse_existing"`
	} `toml:"dump" yaml:"dump"`

	// Pattern-table settings
	Patterns struct {
		LazyCompile bool `toml:"lazy_compile" yaml:"lazy_compile"` // defer pattern compilation to first executor touch
	} `toml:"patterns" yaml:"patterns"`

	// Diagnostics settings
	Diagnostics struct {
		ContextChars int  `toml:"context_chars" yaml:"context_chars"`
		Color        bool `toml:"color" yaml:"color"`
	} `toml:"diagnostics" yaml:"diagnostics"`
}

// isYAMLPath reports whether path's extension calls for YAML encoding
// rather than the default TOML. Either format round-trips the same
// Config, chosen by the file the caller points us at.
func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Compile.IgnoreAliases = true
	cfg.Compile.KeepGoing = true
	cfg.Compile.MapThreshold = 4096

	cfg.Dump.PreferredByteOrder = "native"
	cfg.Dump.ReuseExisting = false

	cfg.Patterns.LazyCompile = true

	cfg.Diagnostics.ContextChars = 20
	cfg.Diagnostics.Color = true

	return cfg
}

// GetConfigPath returns the platform-specific config file path
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\zcompile\config.toml
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "zcompile")

	case "darwin", "linux":
		// macOS/Linux: ~/.config/zcompile/config.toml
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to current directory
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "zcompile")

	default:
		// Unknown platform: use current directory
		return "config.toml"
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0750); err != nil {
		// If we can't create the directory, fall back to current directory
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if isYAMLPath(path) {
		data, err := os.ReadFile(path) // #nosec G304 -- user config file path
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		return cfg, nil
	}

	// Read and parse config file
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	if isYAMLPath(path) {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return enc.Close()
	}

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
