package storage

import (
	"context"

	"github.com/iudanet/carekeeper/internal/models"
)

//go:generate moq -out entitystorage_mock.go . EntityStorage

// EntityStorage defines interface for storing sync entities on client
type EntityStorage interface {
	// LoadEntity retrieves an entity by ID
	// Returns ErrEntityNotFound if entity doesn't exist
	LoadEntity(ctx context.Context, id string) (*models.SyncEntity, error)

	// SaveEntity stores or replaces an entity
	SaveEntity(ctx context.Context, entity *models.SyncEntity) error

	// ListEntities returns all entities of the given type (including deleted ones)
	// An empty type returns every entity
	ListEntities(ctx context.Context, entityType models.EntityType) ([]*models.SyncEntity, error)

	// Hash computes the checksum the store uses for payloads
	Hash(payload models.Payload) (string, error)
}
