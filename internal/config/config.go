// Package config loads server configuration from an optional YAML file
// and QUIZKIT_-prefixed environment variables.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigFileName is the default config file name.
const ConfigFileName = "quizkit.yaml"

// EnvPrefix is the prefix for environment overrides, e.g.
// QUIZKIT_SERVER_ADDR or QUIZKIT_REDIS_ADDR.
const EnvPrefix = "QUIZKIT_"

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string `koanf:"addr"`
	// BaseURL is the public base for published funnel links.
	BaseURL string `koanf:"base_url"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend string `koanf:"backend"` // memory, redis
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Prefix   string `koanf:"prefix"`
}

// LeadsConfig controls protection of lead data at rest.
type LeadsConfig struct {
	// EncryptionKey is a base64-encoded 32-byte AES-256 key. When set,
	// lead contact fields are encrypted before storage.
	EncryptionKey string `koanf:"encryption_key"`
	// FallbackKeys are previous base64-encoded keys kept readable
	// during rotation.
	FallbackKeys []string `koanf:"fallback_keys"`
	// MaskAnswers lists regexp patterns; answers whose question id
	// matches are masked before storage.
	MaskAnswers []string `koanf:"mask_answers"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

// Config is the full server configuration.
type Config struct {
	Server ServerConfig `koanf:"server"`
	Store  StoreConfig  `koanf:"store"`
	Redis  RedisConfig  `koanf:"redis"`
	Leads  LeadsConfig  `koanf:"leads"`
	Log    LogConfig    `koanf:"log"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "quizkit:"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown store backend %q (want memory or redis)", c.Store.Backend)
	}
	if c.Leads.EncryptionKey != "" {
		if _, err := c.LeadEncryptionKeys(); err != nil {
			return err
		}
	}
	for _, p := range c.Leads.MaskAnswers {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid leads.mask_answers pattern %q: %w", p, err)
		}
	}
	return nil
}

// LeadEncryptionKeys decodes the configured encryption keys, active key
// first.
func (c *Config) LeadEncryptionKeys() ([][]byte, error) {
	decode := func(name, value string) ([]byte, error) {
		key, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("%s is not valid base64: %w", name, err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", name, len(key))
		}
		return key, nil
	}

	keys := make([][]byte, 0, 1+len(c.Leads.FallbackKeys))
	active, err := decode("leads.encryption_key", c.Leads.EncryptionKey)
	if err != nil {
		return nil, err
	}
	keys = append(keys, active)
	for i, fk := range c.Leads.FallbackKeys {
		key, err := decode(fmt.Sprintf("leads.fallback_keys[%d]", i), fk)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Load reads configuration from the given file path (or the default file
// when path is empty), then applies environment overrides and defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = ConfigFileName
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// QUIZKIT_SERVER_ADDR -> server.addr
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(
			strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
