// Package config loads linearmesh.yaml configuration files.
//
// Values may reference environment variables as ${NAME}; they are expanded
// before parsing. Variables from .env files are loaded first with godotenv
// and never override variables already set in the environment.
//
// Precedence, lowest first: built-in defaults, options embedded in the
// input document, the config file, command-line flags or request bodies.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/linearmesh/pkg/cache"
	errs "github.com/matzehuels/linearmesh/pkg/errors"
	"github.com/matzehuels/linearmesh/pkg/mesh"
	"github.com/matzehuels/linearmesh/pkg/pipeline"
	"github.com/matzehuels/linearmesh/pkg/render/styles"
)

// FileName is the config file looked up in the working directory.
const FileName = "linearmesh.yaml"

// Config represents the application configuration.
type Config struct {
	Mesh   mesh.Overrides `yaml:"mesh"`
	Render RenderConfig   `yaml:"render"`
	Cache  CacheConfig    `yaml:"cache"`
	Server ServerConfig   `yaml:"server"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Formats     []string `yaml:"formats"`
	Style       string   `yaml:"style"`
	Scale       float64  `yaml:"scale"`
	Interactive bool     `yaml:"interactive"`
	Background  string   `yaml:"background"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend    string `yaml:"backend"`
	Dir        string `yaml:"dir"`
	URL        string `yaml:"url"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
	Prefix     string `yaml:"prefix"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Formats: []string{pipeline.FormatSVG},
			Style:   pipeline.DefaultStyle,
			Scale:   pipeline.DefaultScale,
		},
		Cache: CacheConfig{
			Backend: cache.BackendFile,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			MaxBodyBytes: 4 << 20,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := mesh.DefaultOptions().Merge(c.Mesh).Validate(); err != nil {
		return err
	}
	if err := c.Render.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidOptions, err, "render")
	}
	if err := c.Cache.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidOptions, err, "cache")
	}
	if err := c.Server.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidOptions, err, "server")
	}
	return nil
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Formats, validation.Each(validation.In(toAny(pipeline.Formats)...))),
		validation.Field(&c.Style, validation.In(toAny(styles.Names)...)),
		validation.Field(&c.Scale, validation.Min(0.0), validation.Max(16.0)),
	)
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.In(toAny(cache.Backends)...)),
		validation.Field(&c.URL, validation.When(
			c.Backend == cache.BackendRedis || c.Backend == cache.BackendMongo,
			validation.Required,
		)),
	)
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.WriteTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxBodyBytes, validation.Required, validation.Min(int64(1))),
	)
}

// CacheOptions converts the cache section for cache.Open.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:    c.Cache.Backend,
		Dir:        c.Cache.Dir,
		URL:        c.Cache.URL,
		Database:   c.Cache.Database,
		Collection: c.Cache.Collection,
	}
}

// Keyer returns the cache keyer, scoped when a prefix is configured.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Prefix)
}

// Apply fills unset render fields of opts from the config and layers the
// config's mesh overrides beneath the ones already in opts.
func (c *Config) Apply(opts *pipeline.Options) {
	opts.Overrides = c.Mesh.Merge(opts.Overrides)
	if len(opts.Formats) == 0 {
		opts.Formats = append([]string(nil), c.Render.Formats...)
	}
	if opts.Style == "" {
		opts.Style = c.Render.Style
	}
	if opts.Scale == 0 {
		opts.Scale = c.Render.Scale
	}
	if opts.Background == "" {
		opts.Background = c.Render.Background
	}
	opts.Interactive = opts.Interactive || c.Render.Interactive
}

// Load reads the config file at path over the defaults, expanding
// environment variables, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "failed to parse config file %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, or the discovered config file when path is
// empty. Without any file it returns the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if found := Discover(); found != "" {
		return Load(found)
	}
	return Default(), nil
}

// Discover returns the first existing config file among ./linearmesh.yaml
// and $XDG_CONFIG_HOME/linearmesh/config.yaml, or "".
func Discover() string {
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "linearmesh", "config.yaml"))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// LoadDotEnv loads variables from the given .env files (".env" when none
// are given). Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
