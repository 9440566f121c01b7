// Package logging собирает корневой slog логгер приложения.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config параметры логирования
type Config struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // text или json
	File       string `mapstructure:"file"`   // File пустой - писать в output
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DefaultConfig returns text logging at info level without a file.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "text",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 14,
	}
}

// ParseLevel разбирает уровень логирования без учета регистра
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New создает логгер. Если задан cfg.File, записи идут в файл с ротацией
// и возвращаемый io.Closer закрывает его; иначе используется output.
func New(cfg Config, output io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		w      = output
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		def := DefaultConfig()
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    positiveOr(cfg.MaxSizeMB, def.MaxSizeMB),
			MaxBackups: positiveOr(cfg.MaxBackups, def.MaxBackups),
			MaxAge:     positiveOr(cfg.MaxAgeDays, def.MaxAgeDays),
		}
		w, closer = rotating, rotating
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		_ = closer.Close()
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return slog.New(handler), closer, nil
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
