package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/iudanet/carekeeper/internal/logging"
	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/push"
	"github.com/iudanet/carekeeper/internal/reliability"
)

// minSecretLen минимальная длина секрета для подписи токенов
const minSecretLen = 32

// Redis параметры подключения. Пустой Addr - KV в памяти процесса.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Server конфигурация сервера синхронизации
type Server struct {
	RateLimits map[models.Tier]reliability.TierLimit `mapstructure:"rate_limits"`

	Addr      string `mapstructure:"addr"`
	DBPath    string `mapstructure:"db_path"`
	JWTSecret string `mapstructure:"jwt_secret"`

	Log   logging.Config `mapstructure:"log"`
	MQTT  push.Config    `mapstructure:"mqtt"`
	Redis Redis          `mapstructure:"redis"`

	TokenTTL        time.Duration `mapstructure:"token_ttl"`
	IdempotencyTTL  time.Duration `mapstructure:"idempotency_ttl"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// NewServerViper returns a viper instance preloaded with server defaults.
func NewServerViper() *viper.Viper {
	v := newViper()

	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "carekeeper.db")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", 30*24*time.Hour)
	v.SetDefault("idempotency_ttl", 24*time.Hour)
	v.SetDefault("shutdown_timeout", 10*time.Second)
	setLogDefaults(v)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "carekeeper-server")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.connect_timeout", "10s")

	return v
}

// LoadServer читает конфигурацию сервера. path может быть пустым.
// Лимиты для уровней, не указанных в rate_limits, берутся по умолчанию.
func LoadServer(v *viper.Viper, path string) (*Server, error) {
	if v == nil {
		v = NewServerViper()
	}
	var cfg Server
	if err := load(v, path, &cfg); err != nil {
		return nil, err
	}

	limits := reliability.DefaultTierLimits()
	for tier, l := range cfg.RateLimits {
		limits[tier] = l
	}
	cfg.RateLimits = limits

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the server configuration.
func (c *Server) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("addr is required")
	case c.DBPath == "":
		return errors.New("db_path is required")
	case len(c.JWTSecret) < minSecretLen:
		return fmt.Errorf("jwt_secret must be at least %d characters", minSecretLen)
	case c.TokenTTL <= 0:
		return errors.New("token_ttl must be positive")
	case c.IdempotencyTTL <= 0:
		return errors.New("idempotency_ttl must be positive")
	}
	for tier, l := range c.RateLimits {
		if !tier.Valid() {
			return fmt.Errorf("rate limit for unknown tier %q", tier)
		}
		if l.PerWindow <= 0 || l.Window <= 0 {
			return fmt.Errorf("rate limit for %s needs positive per_window and window", tier)
		}
		if l.Burst < 0 || (l.Burst > 0 && l.BurstWindow <= 0) {
			return fmt.Errorf("rate limit for %s has invalid burst", tier)
		}
	}
	return validateLog(c.Log)
}
