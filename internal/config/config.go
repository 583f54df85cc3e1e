package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the repository root when no config file is given
const DefaultFileName = ".exsync.yaml"

// Log formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Config represents the complete exsync configuration.
// Rule tables are compiled in and deliberately absent here.
type Config struct {
	Paths PathsConfig `yaml:"paths"`
	Log   LogConfig   `yaml:"log"`
}

// PathsConfig configures where the trees live
type PathsConfig struct {
	Root   string `yaml:"root"`
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.expandEnv()
	if err := cfg.expandHome(); err != nil {
		return nil, err
	}

	// Relative roots are relative to the config file, not the working directory
	if cfg.Paths.Root != "" && !filepath.IsAbs(cfg.Paths.Root) {
		cfg.Paths.Root = filepath.Join(filepath.Dir(path), cfg.Paths.Root)
	}
	if cfg.Paths.Root == "" {
		cfg.Paths.Root = filepath.Dir(path)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// expandEnv expands environment variables in all string fields
func (c *Config) expandEnv() {
	c.Paths.Root = os.ExpandEnv(c.Paths.Root)
	c.Paths.Source = os.ExpandEnv(c.Paths.Source)
	c.Paths.Target = os.ExpandEnv(c.Paths.Target)
	c.Log.File = os.ExpandEnv(c.Log.File)
}

// expandHome resolves a leading ~ in path fields
func (c *Config) expandHome() error {
	var err error
	if c.Paths.Root, err = homedir.Expand(c.Paths.Root); err != nil {
		return fmt.Errorf("failed to expand paths.root: %w", err)
	}
	if c.Log.File, err = homedir.Expand(c.Log.File); err != nil {
		return fmt.Errorf("failed to expand log.file: %w", err)
	}
	return nil
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Paths.Root == "" {
		c.Paths.Root = "."
	}
	if c.Paths.Source == "" {
		c.Paths.Source = "solutions"
	}
	if c.Paths.Target == "" {
		c.Paths.Target = "exercises"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = LogFormatText
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if c.Paths.Root == "" {
		return fmt.Errorf("paths.root is required")
	}

	// Source and target are single directory names below root
	for _, f := range []struct{ key, val string }{
		{"paths.source", c.Paths.Source},
		{"paths.target", c.Paths.Target},
	} {
		if f.val == "" {
			return fmt.Errorf("%s is required", f.key)
		}
		if f.val == "." || f.val == ".." || strings.ContainsAny(f.val, `/\`) {
			return fmt.Errorf("%s must be a plain directory name: %s", f.key, f.val)
		}
	}
	if c.Paths.Source == c.Paths.Target {
		return fmt.Errorf("paths.source and paths.target must differ: %s", c.Paths.Source)
	}

	validLevel := false
	for _, l := range logLevels {
		if c.Log.Level == l {
			validLevel = true
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log.level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	switch c.Log.Format {
	case LogFormatText, LogFormatJSON:
		// valid
	default:
		return fmt.Errorf("invalid log.format: %s (must be text or json)", c.Log.Format)
	}

	return nil
}

// SourceDir returns the path of the tree being mirrored
func (c *Config) SourceDir() string {
	return filepath.Join(c.Paths.Root, c.Paths.Source)
}

// TargetDir returns the path of the mirrored tree
func (c *Config) TargetDir() string {
	return filepath.Join(c.Paths.Root, c.Paths.Target)
}
