// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token       string        `yaml:"token"`
	SendTimeout time.Duration `yaml:"send_timeout"` // per outbound send
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`

	OTPTTL          time.Duration `yaml:"otp_ttl"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
	RateLimitMax    int           `yaml:"rate_limit_max"`
	MaxAttempts     int           `yaml:"max_attempts"`

	// DebugLogOTP emits the plaintext OTP to the log. Dev/test only; the
	// code is never logged when this is false.
	DebugLogOTP bool `yaml:"debug_log_otp"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Bot.SendTimeout <= 0 {
		cfg.Bot.SendTimeout = 5 * time.Second
	}
	if cfg.Auth.AccessTokenTTL <= 0 {
		cfg.Auth.AccessTokenTTL = 30 * time.Minute
	}
	if cfg.Auth.RefreshTokenTTL <= 0 {
		cfg.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if cfg.Auth.OTPTTL <= 0 {
		cfg.Auth.OTPTTL = 5 * time.Minute
	}
	if cfg.Auth.RateLimitWindow <= 0 {
		cfg.Auth.RateLimitWindow = 15 * time.Minute
	}
	if cfg.Auth.RateLimitMax <= 0 {
		cfg.Auth.RateLimitMax = 3
	}
	if cfg.Auth.MaxAttempts <= 0 {
		cfg.Auth.MaxAttempts = 5
	}

	// Minimal validation. bot.token may be empty: outbound sends are then
	// no-ops (logged), which keeps local development usable.
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	// redis.url may be empty: the OTP store then runs on the in-process
	// fallback only.

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
