// Package config loads PoleZero settings from a YAML or TOML file.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/PoleZero/core/errors"
	"github.com/FocuswithJustin/PoleZero/internal/logging"
)

// Format represents the configuration file format.
type Format int

const (
	// FormatAuto detects the format from the file extension.
	FormatAuto Format = iota
	// FormatYAML represents YAML format.
	FormatYAML
	// FormatTOML represents TOML format.
	FormatTOML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "auto"
	}
}

// Duration is a time.Duration that reads "30s" style strings from YAML and TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler, used by both decoders.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// LogConfig configures internal/logging.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// CatalogConfig configures the SQLite catalog.
type CatalogConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// CacheConfig configures the parse cache.
type CacheConfig struct {
	TTL Duration `yaml:"ttl" toml:"ttl"`
}

// Config is the full PoleZero configuration.
type Config struct {
	Log     LogConfig     `yaml:"log" toml:"log"`
	Catalog CatalogConfig `yaml:"catalog" toml:"catalog"`
	Cache   CacheConfig   `yaml:"cache" toml:"cache"`
	Workers int           `yaml:"workers" toml:"workers"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "warn", Format: "text"},
		Catalog: CatalogConfig{Path: "polezero.db"},
		Cache:   CacheConfig{TTL: Duration(10 * time.Minute)},
		Workers: runtime.NumCPU(),
	}
}

// DefaultPath returns the per-user configuration file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "polezero.yaml"
	}
	return filepath.Join(dir, "polezero", "config.yaml")
}

func detectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return FormatAuto, errors.NewUnsupported("config format", filepath.Ext(path))
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error when optional is true.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.NewIO("read", path, err)
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}
	if err := Decode(data, format, cfg); err != nil {
		return nil, errors.NewParse("config", path, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode parses data in the given format into cfg, rejecting unknown keys.
func Decode(data []byte, format Format, cfg *Config) error {
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return err
		}
		return nil
	case FormatTOML:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown keys: %v", undecoded)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %s", format)
	}
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return &errors.ValidationError{Field: "log.level", Value: c.Log.Level, Message: err.Error()}
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return &errors.ValidationError{Field: "log.format", Value: c.Log.Format, Message: err.Error()}
	}
	if c.Workers < 1 {
		return &errors.ValidationError{Field: "workers", Value: fmt.Sprint(c.Workers), Message: "must be at least 1"}
	}
	if c.Cache.TTL < 0 {
		return &errors.ValidationError{Field: "cache.ttl", Message: "must not be negative"}
	}
	return nil
}
