// Package config loads cinelens settings from a YAML file, CINELENS_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides: server.port is read from
// CINELENS_SERVER_PORT.
const EnvPrefix = "CINELENS"

// Config is a read-only view over a viper instance. A Config built from a
// nil viper returns zero values.
type Config struct {
	v *viper.Viper
}

// New wraps v.
func New(v *viper.Viper) *Config {
	return &Config{v: v}
}

// SetDefaults installs the default value of every known key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit.rps", 50)
	v.SetDefault("server.rate_limit.burst", 100)
	v.SetDefault("database.path", "cinelens.db")
	v.SetDefault("catalog.source", "embedded")
	v.SetDefault("catalog.file", "")
	v.SetDefault("catalog.watch", false)
	v.SetDefault("catalog.remote.base_url", "")
	v.SetDefault("catalog.remote.timeout", 15*time.Second)
	v.SetDefault("catalog.refresh_interval", time.Duration(0))
	v.SetDefault("library.persist_comparison", true)
	v.SetDefault("log.level", "info")
}

// Load reads the config file at path, if any, and layers environment
// overrides and defaults beneath it. An empty path searches ./cinelens.yaml
// and tolerates its absence.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	} else {
		v.SetConfigName("cinelens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return New(v), nil
}

func (c *Config) GetString(key string) string {
	if c == nil || c.v == nil {
		return ""
	}
	return c.v.GetString(key)
}

func (c *Config) GetInt(key string) int {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetInt(key)
}

func (c *Config) GetFloat64(key string) float64 {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetFloat64(key)
}

func (c *Config) GetBool(key string) bool {
	if c == nil || c.v == nil {
		return false
	}
	return c.v.GetBool(key)
}

func (c *Config) GetDuration(key string) time.Duration {
	if c == nil || c.v == nil {
		return 0
	}
	return c.v.GetDuration(key)
}

func (c *Config) IsSet(key string) bool {
	if c == nil || c.v == nil {
		return false
	}
	return c.v.IsSet(key)
}

// Sub returns the subtree at key. A missing subtree yields an empty Config,
// never nil.
func (c *Config) Sub(key string) *Config {
	if c == nil || c.v == nil {
		return New(nil)
	}
	return New(c.v.Sub(key))
}

// Unmarshal decodes the whole configuration into target using mapstructure
// tags.
func (c *Config) Unmarshal(target any) error {
	if c == nil || c.v == nil {
		return nil
	}
	return c.v.Unmarshal(target)
}

// Settings is the typed form of the configuration.
type Settings struct {
	Server struct {
		Host      string `mapstructure:"host"`
		Port      int    `mapstructure:"port" validate:"min=1,max=65535"`
		RateLimit struct {
			RPS   float64 `mapstructure:"rps" validate:"gte=0"`
			Burst int     `mapstructure:"burst" validate:"gte=0"`
		} `mapstructure:"rate_limit"`
	} `mapstructure:"server"`

	Database struct {
		Path string `mapstructure:"path" validate:"required"`
	} `mapstructure:"database"`

	Catalog struct {
		Source string `mapstructure:"source" validate:"oneof=embedded file remote"`
		File   string `mapstructure:"file" validate:"required_if=Source file"`
		Watch  bool   `mapstructure:"watch"`
		Remote struct {
			BaseURL string        `mapstructure:"base_url" validate:"omitempty,url"`
			Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
		} `mapstructure:"remote"`
		RefreshInterval time.Duration `mapstructure:"refresh_interval" validate:"gte=0"`
	} `mapstructure:"catalog"`

	Library struct {
		PersistComparison bool `mapstructure:"persist_comparison"`
	} `mapstructure:"library"`

	Log struct {
		Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	} `mapstructure:"log"`
}

// Addr returns host:port.
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Server.Host, s.Server.Port)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Settings decodes and validates the typed configuration.
func (c *Config) Settings() (*Settings, error) {
	var s Settings
	if err := c.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if s.Catalog.Source == "remote" && s.Catalog.Remote.BaseURL == "" {
		return nil, errors.New("invalid config: catalog.remote.base_url is required when catalog.source is remote")
	}
	return &s, nil
}
