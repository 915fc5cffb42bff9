// Package config loads the flowgen configuration file.
//
// The file is TOML and every key is optional:
//
//	[layout]
//	edge_sep = 20
//	[layout.vertical]
//	node_sep = 100
//	rank_sep = 120
//	[layout.horizontal]
//	node_sep = 80
//	rank_sep = 150
//
//	[ai]
//	model = "gemini-2.5-flash"
//	api_key_env = "GEMINI_API_KEY"
//	timeout = "60s"
//
//	[cache]
//	backend = "redis"          # file, redis or none
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//
// [Resolve] picks the file: an explicit path, else
// $XDG_CONFIG_HOME/flowgen/config.toml, else ~/.config/flowgen/config.toml.
// A missing file yields [Default]. The file is read once at start-up.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowgen/pkg/ai"
	"github.com/matzehuels/flowgen/pkg/cache"
	ferrors "github.com/matzehuels/flowgen/pkg/errors"
	"github.com/matzehuels/flowgen/pkg/layout"
)

// AppName names the config and cache directories.
const AppName = "flowgen"

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Config is the whole configuration file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	AI     AIConfig     `toml:"ai"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig holds the layout engine spacing.
type LayoutConfig struct {
	Vertical   layout.Spacing `toml:"vertical"`
	Horizontal layout.Spacing `toml:"horizontal"`
	EdgeSep    float64        `toml:"edge_sep"`
	Sweeps     int            `toml:"sweeps"`
}

// AIConfig configures the diagram generator.
type AIConfig struct {
	Endpoint string `toml:"endpoint"`
	Model    string `toml:"model"`
	// APIKeyEnv names the environment variable holding the key. Empty
	// means try the usual names in order.
	APIKeyEnv string        `toml:"api_key_env"`
	Timeout   time.Duration `toml:"timeout"`
	Attempts  int           `toml:"attempts"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix"`
}

// ServerConfig configures `flowgen serve`.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	lo := layout.DefaultOptions()
	return Config{
		Layout: LayoutConfig{
			Vertical:   lo.Vertical,
			Horizontal: lo.Horizontal,
			EdgeSep:    lo.EdgeSep,
			Sweeps:     lo.Sweeps,
		},
		AI: AIConfig{
			Endpoint: ai.DefaultEndpoint,
			Model:    ai.DefaultModel,
			Timeout:  ai.DefaultTimeout,
			Attempts: ai.DefaultAttempts,
		},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
			Prefix:  AppName + ":",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
	}
}

// =============================================================================
// Loading
// =============================================================================

// Resolve returns the config file path. An explicit path wins; otherwise
// the XDG location is used whether or not the file exists.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Dir returns the flowgen config directory.
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Load reads the file at path on top of [Default]. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML on top of [Default] and validates the result.
// Unknown keys are rejected so that typos surface.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("parse config: unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks values a decoder cannot.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required for the redis backend")
	}
	for name, v := range map[string]float64{
		"layout.vertical.node_sep":   c.Layout.Vertical.NodeSep,
		"layout.vertical.rank_sep":   c.Layout.Vertical.RankSep,
		"layout.horizontal.node_sep": c.Layout.Horizontal.NodeSep,
		"layout.horizontal.rank_sep": c.Layout.Horizontal.RankSep,
		"layout.edge_sep":            c.Layout.EdgeSep,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if c.AI.Timeout < 0 {
		return fmt.Errorf("ai.timeout must not be negative")
	}
	if c.AI.Endpoint != "" {
		if err := ferrors.ValidateEndpoint(c.AI.Endpoint); err != nil {
			return fmt.Errorf("ai.endpoint: %s", ferrors.UserMessage(err))
		}
	}
	return nil
}

// =============================================================================
// Conversions
// =============================================================================

// LayoutOptions returns the engine options. Zero values fall back to the
// engine defaults.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{
		Vertical:   c.Layout.Vertical,
		Horizontal: c.Layout.Horizontal,
		EdgeSep:    c.Layout.EdgeSep,
		Sweeps:     c.Layout.Sweeps,
	}
}

// AIOptions returns the generator client config with the API key read from
// the environment.
func (c Config) AIOptions() ai.Config {
	key := ai.APIKeyFromEnv()
	if c.AI.APIKeyEnv != "" {
		key = strings.TrimSpace(os.Getenv(c.AI.APIKeyEnv))
	}
	return ai.Config{
		APIKey:   key,
		Model:    c.AI.Model,
		Endpoint: c.AI.Endpoint,
		Timeout:  c.AI.Timeout,
		Attempts: c.AI.Attempts,
	}
}

// CacheOptions returns the cache backend options. defaultDir is used when
// no directory is configured.
func (c Config) CacheOptions(defaultDir string) cache.Options {
	dir := c.Cache.Dir
	if dir == "" {
		dir = defaultDir
	}
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     dir,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			Prefix:   c.Cache.Prefix,
		},
	}
}

// CacheDir returns the default cache directory
// ($XDG_CACHE_HOME/flowgen or ~/.cache/flowgen).
func CacheDir() (string, error) {
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
