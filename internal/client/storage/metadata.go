package storage

import (
	"context"

	"github.com/iudanet/carekeeper/internal/models"
)

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing client sync metadata
type MetadataStorage interface {
	// SaveSyncToken saves the server sequence up to which entities of the type were fetched
	SaveSyncToken(ctx context.Context, entityType models.EntityType, token int64) error

	// GetSyncToken retrieves the last saved sync token
	// Returns 0 if no fetch has been performed yet
	GetSyncToken(ctx context.Context, entityType models.EntityType) (int64, error)

	// SaveSyncedVersion saves the entity version last confirmed by the server
	SaveSyncedVersion(ctx context.Context, entityID string, version int64) error

	// GetSyncedVersion retrieves the version last confirmed by the server
	// Returns 0 if the entity has never been synced
	GetSyncedVersion(ctx context.Context, entityID string) (int64, error)
}
