package hxevent

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings read from HXEVENT_* environment variables.
type Config struct {
	// Key signs (or encrypts) callback URLs. Empty means a random key,
	// which invalidates every page on restart.
	Key          string `env:"HXEVENT_KEY"`
	Path         string `env:"HXEVENT_PATH" envDefault:"/_w/"`
	ResourcePath string `env:"HXEVENT_RESOURCE_PATH" envDefault:"/_w/res/"`
	MaxPages     int    `env:"HXEVENT_MAX_PAGES" envDefault:"256"`
	// EncryptCallbacks makes callback parameters opaque instead of signed.
	EncryptCallbacks bool `env:"HXEVENT_ENCRYPT_CALLBACKS"`

	Addr      string `env:"HXEVENT_ADDR" envDefault:":8080"`
	LogLevel  string `env:"HXEVENT_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"HXEVENT_LOG_FORMAT" envDefault:"console"`
}

// LoadConfig parses the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Options converts the registry related settings into Registry options.
func (c Config) Options() []Option {
	opts := []Option{
		WithPath(c.Path),
		WithResourcePath(c.ResourcePath),
		WithStore(NewMemoryStore(c.MaxPages)),
	}
	if c.EncryptCallbacks {
		opts = append(opts, WithEncryptedCallbacks())
	}
	return opts
}
