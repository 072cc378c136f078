package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

type Config struct {
	Server struct {
		Port          string `toml:"port" validate:"required"`
		SecureCookies bool   `toml:"secure_cookies"`
		TrustProxy    bool   `toml:"trust_proxy"`
		EnableMetrics bool   `toml:"enable_metrics"`
	} `toml:"server"`

	Database struct {
		DSN string `toml:"dsn" validate:"required"`
	} `toml:"database"`

	Session struct {
		Secret     string `toml:"secret" validate:"required,min=16"`
		TTLHours   int    `toml:"ttl_hours" validate:"gte=1"`
		CookieName string `toml:"cookie_name"`
		RedisURL   string `toml:"redis_url"`
	} `toml:"session"`

	Auth struct {
		AccessCode string `toml:"access_code" validate:"required"`
	} `toml:"auth"`

	LoginLimit struct {
		MaxAttempts   int `toml:"max_attempts" validate:"gte=1"`
		WindowSeconds int `toml:"window_seconds" validate:"gte=1"`
	} `toml:"login_limit"`

	Pin struct {
		Pepper    string `toml:"pepper"`
		MinLength int    `toml:"min_length" validate:"gte=1"`
		MaxLength int    `toml:"max_length" validate:"gtefield=MinLength"`
	} `toml:"pin"`

	List struct {
		Limit int `toml:"limit" validate:"gte=1"`
	} `toml:"list"`
}

func defaultConfig() *Config {
	var c Config
	c.Server.Port = ":3000"
	c.Database.DSN = "evaluaciones.db"
	c.Session.TTLHours = 8
	c.LoginLimit.MaxAttempts = 20
	c.LoginLimit.WindowSeconds = 15 * 60
	c.Pin.MinLength = 4
	c.Pin.MaxLength = 12
	c.List.Limit = 200
	return &c
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLHours) * time.Hour
}

func (c *Config) LoginWindow() time.Duration {
	return time.Duration(c.LoginLimit.WindowSeconds) * time.Second
}

// LoadConfig reads the TOML file at path (skipped when path is empty),
// applies non-empty environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	config := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	applyEnv(config, os.LookupEnv)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger.Debug.Printf("Loaded config: port=%s dsn=%s redis=%t metrics=%t",
		config.Server.Port, config.Database.DSN, config.Session.RedisURL != "", config.Server.EnableMetrics)

	return config, nil
}

func applyEnv(c *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup("PORT"); ok && v != "" {
		if !strings.Contains(v, ":") {
			v = ":" + v
		}
		c.Server.Port = v
	}
	if v, ok := lookup("SESSION_SECRET"); ok && v != "" {
		c.Session.Secret = v
	}
	if v, ok := lookup("ACCESS_CODE_DOCENTE"); ok && v != "" {
		c.Auth.AccessCode = v
	}
	if v, ok := lookup("DATABASE_DSN"); ok && v != "" {
		c.Database.DSN = v
	}
	if v, ok := lookup("REDIS_URL"); ok && v != "" {
		c.Session.RedisURL = v
	}
	if v, ok := lookup("PIN_PEPPER"); ok && v != "" {
		c.Pin.Pepper = v
	}
}

var configValidator = validator.New()

func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
