package storage

import (
	"context"

	"github.com/iudanet/carekeeper/internal/models"
)

// Record хранимая на сервере версия записи вместе с серверной последовательностью
type Record struct {
	Entity *models.SyncEntity
	Seq    int64 // Seq значение часов Лампорта на момент принятия записи
}

//go:generate moq -out entitystorage_mock.go . EntityStorage

// EntityStorage defines interface for server-side entity persistence
type EntityStorage interface {
	// GetEntity retrieves the stored version of an entity, tombstones included.
	// Returns ErrEntityNotFound if the user has no such entity.
	GetEntity(ctx context.Context, userID, id string) (*Record, error)

	// PutEntity creates or replaces the stored version of an entity
	PutEntity(ctx context.Context, rec *Record) error

	// ListSince returns entities of the given type (tombstones included)
	// accepted after since, ordered by Seq. Used for synchronization.
	ListSince(ctx context.Context, userID string, entityType models.EntityType, since int64) ([]*Record, error)

	// MaxSeq returns the highest stored sequence, 0 for an empty storage
	MaxSeq(ctx context.Context) (int64, error)
}
