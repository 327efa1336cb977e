// Package config loads glyphsym.toml / glyphsym.yaml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the glyphsym configuration.
type Config struct {
	Catalog Catalog `toml:"catalog" yaml:"catalog"`
	Writer  Writer  `toml:"writer" yaml:"writer"`
	Reader  Reader  `toml:"reader" yaml:"reader"`
	Log     Log     `toml:"log" yaml:"log"`

	// Dir is the directory containing the config file (set at load time).
	Dir string `toml:"-" yaml:"-"`
}

// Catalog configures where shared tables come from.
type Catalog struct {
	// Paths are catalog files or directories, relative to Dir.
	Paths       []string `toml:"paths" yaml:"paths"`
	CacheSize   int      `toml:"cache-size" yaml:"cache_size" default:"256"`
	Concurrency int      `toml:"concurrency" yaml:"concurrency" default:"8"`
}

// Writer holds writer builder defaults.
type Writer struct {
	StreamID            uint64 `toml:"stream-id" yaml:"stream_id"`
	StreamCopyOptimized bool   `toml:"stream-copy-optimized" yaml:"stream_copy_optimized"`
	CRC                 bool   `toml:"crc" yaml:"crc"`
	Compress            bool   `toml:"compress" yaml:"compress"`

	// Imports name catalog tables as "name" or "name:version".
	Imports []string `toml:"imports" yaml:"imports"`
}

// Reader holds stream reader limits.
type Reader struct {
	// MaxPayload caps a frame payload in bytes, before and after
	// decompression.
	MaxPayload int `toml:"max-payload" yaml:"max_payload" default:"67108864"`
}

// Log configures logging.
type Log struct {
	Level       string `toml:"level" yaml:"level" default:"info"`
	Development bool   `toml:"development" yaml:"development"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		panic(fmt.Sprintf("config: bad defaults: %v", err))
	}
	return c
}

// Load parses a TOML or YAML file, chosen by extension, over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}

	var c Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &c); err != nil {
			return nil, errors.Wrapf(err, "parse error in %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, errors.Wrapf(err, "parse error in %s", path)
		}
	default:
		return nil, errors.Errorf("unsupported config format %q", ext)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, errors.Wrapf(err, "applying defaults to %s", path)
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve path %s", path)
	}

	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return &c, nil
}

// Validate checks value ranges and import syntax.
func (c *Config) Validate() error {
	if c.Catalog.CacheSize < 0 {
		return errors.Errorf("catalog cache-size must not be negative, got %d", c.Catalog.CacheSize)
	}
	if c.Reader.MaxPayload < 1 {
		return errors.Errorf("reader max-payload must be positive, got %d", c.Reader.MaxPayload)
	}
	for _, imp := range c.Writer.Imports {
		if _, _, err := ParseImport(imp); err != nil {
			return err
		}
	}
	return nil
}

// CatalogPaths returns the catalog paths resolved against Dir.
func (c *Config) CatalogPaths() []string {
	paths := make([]string, len(c.Catalog.Paths))
	for i, p := range c.Catalog.Paths {
		if filepath.IsAbs(p) || c.Dir == "" {
			paths[i] = p
		} else {
			paths[i] = filepath.Join(c.Dir, p)
		}
	}
	return paths
}

// ParseImport splits "name" or "name:version". A missing version is 1.
func ParseImport(s string) (string, int, error) {
	name, ver, hasVer := strings.Cut(s, ":")
	if name == "" {
		return "", 0, errors.Errorf("import %q has no name", s)
	}
	if !hasVer {
		return name, 1, nil
	}
	v, err := strconv.Atoi(ver)
	if err != nil || v < 1 {
		return "", 0, errors.Errorf("import %q: version must be a positive int", s)
	}
	return name, v, nil
}
