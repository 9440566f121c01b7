// Package kv содержит хранилище ключ-значение для повторной выдачи ответов
// на уже обработанные пакеты синхронизации.
package kv

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss ключ отсутствует или истек
var ErrMiss = errors.New("cache miss")

// Store хранилище ключ-значение с временем жизни записей
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore реализация Store поверх Redis
type RedisStore struct {
	c *redis.Client
}

// NewRedisStore оборачивает клиента Redis
func NewRedisStore(c *redis.Client) *RedisStore { return &RedisStore{c: c} }

// DialRedis создает клиента Redis и проверяет соединение
func DialRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return NewRedisStore(c), nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

// Close закрывает соединение
func (r *RedisStore) Close() error {
	return r.c.Close()
}

type memEntry struct {
	expiresAt time.Time
	value     []byte
}

// MemoryStore реализация Store в памяти процесса, для одного экземпляра сервера
type MemoryStore struct {
	now   func() time.Time
	items map[string]memEntry
	mu    sync.Mutex
}

// NewMemoryStore creates an in-memory store. now may be nil.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{now: now, items: make(map[string]memEntry)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		return nil, ErrMiss
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.items, key)
		return nil, ErrMiss
	}
	return append([]byte(nil), e.value...), nil
}

// Set сохраняет значение; ttl <= 0 означает без срока
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.items[key] = e
	return nil
}

// Sweep удаляет истекшие записи и возвращает их количество
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for k, e := range m.items {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.items, k)
			removed++
		}
	}
	return removed
}
