// Package config loads framework settings from an optional file and the environment.
//
// Keys use dot notation ("magenta.random.seed"). Files may be YAML or TOML:
//
//	magenta:
//	  random:
//	    seed: 42
//	  log:
//	    level: debug
//
// Environment variables win over the file. A key maps to its upper-case,
// underscore separated name: magenta.random.seed -> MAGENTA_RANDOM_SEED.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Well-known keys.
const (
	KeyRandomSeed = "magenta.random.seed"
	KeyLogLevel   = "magenta.log.level"
	KeyLogFormat  = "magenta.log.format"
)

// ErrUnsupportedFormat is returned for files whose extension is not .yaml, .yml or .toml.
var ErrUnsupportedFormat = errors.New("config: unsupported file format")

// Config is a read-only view over file values and environment overrides.
type Config struct {
	path string
	data map[string]any
	env  func(string) (string, bool)
}

// Load reads path (may be empty for environment only) and returns the config.
func Load(path string) (*Config, error) {
	cfg := &Config{path: path, data: map[string]any{}, env: os.LookupEnv}
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	data, err := Parse(content, format)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.data = data
	return cfg, nil
}

// LoadFromEnv returns a config backed by the environment only.
func LoadFromEnv() *Config {
	return &Config{data: map[string]any{}, env: os.LookupEnv}
}

// FromMap returns a config over data with no environment lookups. Useful in tests.
func FromMap(data map[string]any) *Config {
	if data == nil {
		data = map[string]any{}
	}
	return &Config{data: data, env: func(string) (string, bool) { return "", false }}
}

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Parse decodes content in the given format into a nested map.
func Parse(content []byte, format Format) (map[string]any, error) {
	data := map[string]any{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(content, &data); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(content, &data); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// EnvName converts a key to its environment variable name.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Lookup returns the value of key as a string, preferring the environment.
//
// Its signature matches random.SeedResolver.Lookup.
func (c *Config) Lookup(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	if c.env != nil {
		if v, ok := c.env(EnvName(key)); ok {
			return v, true
		}
	}

	current := c.data
	parts := strings.Split(key, ".")
	for i, part := range parts {
		v, ok := current[part]
		if !ok {
			return "", false
		}
		if i == len(parts)-1 {
			if v == nil {
				return "", false
			}
			return fmt.Sprint(v), true
		}
		next, ok := v.(map[string]any)
		if !ok {
			return "", false
		}
		current = next
	}
	return "", false
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string { return c.path }

// LogLevel returns the configured level, defaulting to info on absence or bad input.
func (c *Config) LogLevel() zapcore.Level {
	raw, ok := c.Lookup(KeyLogLevel)
	if !ok {
		return zapcore.InfoLevel
	}
	level, err := zapcore.ParseLevel(strings.TrimSpace(raw))
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// Logger builds a zap logger: JSON when magenta.log.format is "json", console otherwise.
func (c *Config) Logger() (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if format, ok := c.Lookup(KeyLogFormat); ok && strings.EqualFold(strings.TrimSpace(format), "json") {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(c.LogLevel())

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("config: build logger: %w", err)
	}
	return logger, nil
}
