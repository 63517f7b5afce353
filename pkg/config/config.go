// Package config loads betwixt settings from a TOML file.
//
// Every field has a default, so a file only needs the values it changes:
//
//	[solver]
//	steps = 250000
//	moves = ["window", "repair"]
//	timeout = "2m"
//
//	[generator]
//	strategy = "single_side_neighbor"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/betwixt/pkg/errors"
	"github.com/matzehuels/betwixt/pkg/generate"
	"github.com/matzehuels/betwixt/pkg/io"
	"github.com/matzehuels/betwixt/pkg/solver"
)

// FileName is the config file looked up in the working directory.
const FileName = "betwixt.toml"

// Backend names.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config is the complete configuration.
type Config struct {
	Solver    solver.Config   `toml:"solver"`
	Generator GeneratorConfig `toml:"generator"`
	Output    OutputConfig    `toml:"output"`
	Cache     CacheConfig     `toml:"cache"`
	Store     StoreConfig     `toml:"store"`
}

// GeneratorConfig controls instance generation.
type GeneratorConfig struct {
	Strategy   string  `toml:"strategy"`
	Ratio      float64 `toml:"ratio"`
	Seed       uint64  `toml:"seed"`
	MaxRetries int     `toml:"max_retries"`
}

// OutputConfig controls how orderings are written.
type OutputConfig struct {
	Format string `toml:"format"`
}

// CacheConfig selects the solution cache backend.
type CacheConfig struct {
	// Backend is "file", "redis" or "none".
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// StoreConfig selects where benchmark results are recorded.
type StoreConfig struct {
	// Backend is "sqlite", "mongo" or "none".
	Backend  string `toml:"backend"`
	Path     string `toml:"path"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Solver: solver.DefaultConfig(),
		Generator: GeneratorConfig{
			Strategy:   generate.Random.String(),
			Ratio:      generate.DefaultRatio,
			MaxRetries: generate.DefaultMaxRetries,
		},
		Output: OutputConfig{Format: string(io.DefaultFormat)},
		Cache:  CacheConfig{Backend: BackendFile},
		Store: StoreConfig{
			Backend:  BackendSQLite,
			Path:     "betwixt.db",
			Database: "betwixt",
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find loads path if set, otherwise FileName from dir if it exists,
// otherwise returns the defaults.
func Find(path, dir string) (Config, error) {
	if path != "" {
		return Load(path)
	}
	candidate := filepath.Join(dir, FileName)
	if _, err := os.Stat(candidate); err == nil {
		return Load(candidate)
	}
	return Default(), nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Solver.Validate(); err != nil {
		return err
	}
	if _, err := generate.ParseStrategy(c.Generator.Strategy); err != nil {
		return err
	}
	if c.Generator.Ratio <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "generator ratio must be positive, got %g", c.Generator.Ratio)
	}
	if c.Generator.MaxRetries < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "generator max_retries must be at least 1, got %d", c.Generator.MaxRetries)
	}
	if _, err := io.ParseFormat(c.Output.Format); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "output")
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis requires redis_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case BackendNone:
	case BackendSQLite:
		if c.Store.Path == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store backend sqlite requires path")
		}
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store backend mongo requires mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	return nil
}
