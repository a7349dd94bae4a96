// Package config loads dupfind settings from defaults, an optional YAML or
// TOML file, and DUPFIND_* environment variables, and validates the merged
// result against an embedded CUE schema.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/dupfind/internal/detect"
	"github.com/roach88/dupfind/internal/scratch"
)

// EnvPrefix starts every environment variable read by ApplyEnv.
const EnvPrefix = "DUPFIND_"

// Config is the merged configuration.
type Config struct {
	Scratch  Scratch  `yaml:"scratch" toml:"scratch" json:"scratch"`
	Detector Detector `yaml:"detector" toml:"detector" json:"detector"`
	Input    Input    `yaml:"input" toml:"input" json:"input"`
	Log      Log      `yaml:"log" toml:"log" json:"log"`
}

// Scratch controls where scratch files live.
type Scratch struct {
	Dir    string `yaml:"dir" toml:"dir" json:"dir"`
	Prefix string `yaml:"prefix" toml:"prefix" json:"prefix"`
}

// Detector selects the detection algorithm and its seen-log.
type Detector struct {
	SeenLog        string `yaml:"seen_log" toml:"seen_log" json:"seen_log"`   // file | sqlite
	Algorithm      string `yaml:"algorithm" toml:"algorithm" json:"algorithm"` // disk | memory
	SQLiteCacheKiB int    `yaml:"sqlite_cache_kib" toml:"sqlite_cache_kib" json:"sqlite_cache_kib"`
}

// Input controls how tokens are read and typed.
type Input struct {
	Type      string `yaml:"type" toml:"type" json:"type"` // string | int
	Normalize bool   `yaml:"normalize" toml:"normalize" json:"normalize"`
	Fold      bool   `yaml:"fold" toml:"fold" json:"fold"`
}

// Log configures diagnostics.
type Log struct {
	Level  string `yaml:"level" toml:"level" json:"level"`
	Format string `yaml:"format" toml:"format" json:"format"` // console | json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scratch: Scratch{Prefix: scratch.DefaultPrefix},
		Detector: Detector{
			SeenLog:        "file",
			Algorithm:      "disk",
			SQLiteCacheKiB: detect.DefaultSQLiteCacheKiB,
		},
		Input: Input{Type: "string"},
		Log:   Log{Level: "warn", Format: "console"},
	}
}

// Load returns defaults overlaid with the file at path (if non-empty), then
// with the process environment, then with each override in order. The
// result is validated.
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML (.yaml, .yml) or TOML (.toml) file at path.
// Keys absent from the file keep their current values; unknown keys are
// rejected.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// A document without content decodes to io.EOF: no overrides.
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), c)
		if err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("parse config %s: unknown key %q", path, undecoded[0].String())
		}
	default:
		return fmt.Errorf("config %s: unsupported extension %q (want .yaml, .yml or .toml)", path, filepath.Ext(path))
	}
	return nil
}

// ApplyEnv overlays DUPFIND_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"SCRATCH_DIR", &c.Scratch.Dir},
		{"SCRATCH_PREFIX", &c.Scratch.Prefix},
		{"SEEN_LOG", &c.Detector.SeenLog},
		{"ALGORITHM", &c.Detector.Algorithm},
		{"INPUT_TYPE", &c.Input.Type},
		{"LOG_LEVEL", &c.Log.Level},
		{"LOG_FORMAT", &c.Log.Format},
	}
	for _, s := range strs {
		if v, ok := lookup(EnvPrefix + s.name); ok {
			*s.dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup(EnvPrefix + "SQLITE_CACHE_KIB"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %sSQLITE_CACHE_KIB: %w", EnvPrefix, err)
		}
		c.Detector.SQLiteCacheKiB = n
	}
	return nil
}
