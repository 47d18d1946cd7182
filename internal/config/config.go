package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"btc-basis/internal/basis"
	"btc-basis/internal/model"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Server ServerConfig `yaml:"server"`
	Basis  BasisConfig  `yaml:"basis"`
	Cache  CacheConfig  `yaml:"cache"`
}

type ServerConfig struct {
	Port      string `yaml:"port"`
	Env       string `yaml:"env"` // "production" switches gin to release mode
	StaticDir string `yaml:"static_dir"`
	// MaxUploadMB caps multipart uploads.
	MaxUploadMB int64 `yaml:"max_upload_mb"`
}

type BasisConfig struct {
	// Method is the default when a request does not pick one.
	Method string `yaml:"method"`
	// Policy is "strict" (oversell aborts) or "lenient" (clamp and flag).
	Policy string `yaml:"policy"`
}

type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	TTL      time.Duration `yaml:"ttl"`
	RedisURL string        `yaml:"redis_url"`

	// enabledSet records that a loaded file named cache.enabled explicitly.
	enabledSet bool
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			StaticDir:   "./web/dist",
			MaxUploadMB: 10,
		},
		Basis: BasisConfig{
			Method: string(model.LIFO),
			Policy: string(basis.Strict),
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
	}
}

// Load reads path (if non-empty), fills defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		loaded, err := LoadUnchecked(path)
		if err != nil {
			return nil, err
		}
		c = Merge(c, loaded)
	}
	c.ApplyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads a config file as-is, without defaults or validation.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	// Only an explicit cache.enabled may turn the cache off in Merge.
	var probe struct {
		Cache map[string]any `yaml:"cache"`
	}
	if err := yaml.Unmarshal(raw, &probe); err == nil {
		_, c.Cache.enabledSet = probe.Cache["enabled"]
	}
	return &c, nil
}

// ApplyEnv overlays the environment variables the API has always honored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("API_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("API_ENV"); v != "" {
		c.Server.Env = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		c.Server.StaticDir = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv("BTCBASIS_POLICY"); v != "" {
		c.Basis.Policy = v
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.New("server.max_upload_mb must be > 0")
	}
	if _, err := c.Method(); err != nil {
		return fmt.Errorf("basis.method invalid: %w", err)
	}
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("basis.policy invalid: %w", err)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return errors.New("cache.ttl must be > 0 when the cache is enabled")
	}
	return nil
}

// Method returns the default lot-matching method.
func (c *Config) Method() (model.Method, error) {
	return model.ParseMethod(c.Basis.Method)
}

// Policy returns the oversell policy.
func (c *Config) Policy() (basis.Policy, error) {
	return basis.ParsePolicy(c.Basis.Policy)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Merge overlays non-zero fields from override onto base.
// cache.enabled=true always applies; false applies only when it came from a
// file that set it (LoadUnchecked), so a hand-built override leaves it alone.
func Merge(base, override *Config) *Config {
	out := *base
	if override == nil {
		return &out
	}
	if override.Server.Port != "" {
		out.Server.Port = override.Server.Port
	}
	if override.Server.Env != "" {
		out.Server.Env = override.Server.Env
	}
	if override.Server.StaticDir != "" {
		out.Server.StaticDir = override.Server.StaticDir
	}
	if override.Server.MaxUploadMB != 0 {
		out.Server.MaxUploadMB = override.Server.MaxUploadMB
	}
	if override.Basis.Method != "" {
		out.Basis.Method = override.Basis.Method
	}
	if override.Basis.Policy != "" {
		out.Basis.Policy = override.Basis.Policy
	}
	if override.Cache.Enabled || override.Cache.enabledSet {
		out.Cache.Enabled = override.Cache.Enabled
	}
	if override.Cache.TTL != 0 {
		out.Cache.TTL = override.Cache.TTL
	}
	if override.Cache.RedisURL != "" {
		out.Cache.RedisURL = override.Cache.RedisURL
	}
	return &out
}
