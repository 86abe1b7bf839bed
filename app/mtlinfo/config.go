package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config controls what mtlinfo reports. It is read from a TOML file; flags
// override individual fields.
type Config struct {
	// Format is the output format, text or toml.
	Format string `toml:"format"`

	// Devices limits the report to devices whose name contains one of these
	// strings, ignoring case. Empty reports every device.
	Devices []string `toml:"devices"`

	// Families lists the GPU families each device supports.
	Families bool `toml:"families"`

	// Limits reports threadgroup and memory limits.
	Limits bool `toml:"limits"`

	// Manifests are archive manifests to summarize alongside the devices.
	Manifests []string `toml:"manifests"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `toml:"log_level"`
}

// DefaultFiles are the config file names searched for in each of
// includePaths when no file is named explicitly.
var DefaultFiles = []string{"mtlinfo.toml"}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Format:   "text",
		Families: true,
		Limits:   true,
		LogLevel: "info",
	}
}

// includePaths returns the directories searched for DefaultFiles, in order.
func includePaths() []string {
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "mtlinfo"))
	}
	return paths
}

// LoadConfig reads path over the defaults. With an empty path the first of
// DefaultFiles found in includePaths is used, and a missing file is not an
// error. It returns the file actually read, if any.
func LoadConfig(path string) (*Config, string, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.load(path); err != nil {
			return nil, "", err
		}
		return cfg, path, cfg.Validate()
	}
	for _, dir := range includePaths() {
		for _, name := range DefaultFiles {
			p := filepath.Join(dir, name)
			err := cfg.load(p)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, "", err
			}
			return cfg, p, cfg.Validate()
		}
	}
	return cfg, "", cfg.Validate()
}

func (c *Config) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("%s:%d:%d: %w", path, row, col, err)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Validate checks the fields that have a fixed set of values.
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "toml":
	default:
		return fmt.Errorf("unknown output format %q", c.Format)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// Save writes the config as TOML.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
