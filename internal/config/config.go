// Package config загружает конфигурацию клиента и сервера через viper:
// значения по умолчанию, необязательный файл и переменные окружения CAREKEEPER_*.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/iudanet/carekeeper/internal/logging"
)

// EnvPrefix префикс переменных окружения
const EnvPrefix = "CAREKEEPER"

// newViper создает viper с привязкой к окружению: ключ sync.user_id
// читается из CAREKEEPER_SYNC_USER_ID.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// load читает файл (если задан) и раскладывает значения в out
func load(v *viper.Viper, path string, out any) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

func setLogDefaults(v *viper.Viper) {
	def := logging.DefaultConfig()
	v.SetDefault("log.level", def.Level)
	v.SetDefault("log.format", def.Format)
	v.SetDefault("log.file", def.File)
	v.SetDefault("log.max_size_mb", def.MaxSizeMB)
	v.SetDefault("log.max_backups", def.MaxBackups)
	v.SetDefault("log.max_age_days", def.MaxAgeDays)
}

func validateLog(cfg logging.Config) error {
	if _, err := logging.ParseLevel(cfg.Level); err != nil {
		return err
	}
	switch strings.ToLower(cfg.Format) {
	case "", "text", "json":
		return nil
	default:
		return errors.New("log format must be text or json")
	}
}
