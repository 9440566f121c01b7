package storage

import (
	"context"

	"github.com/iudanet/carekeeper/internal/models"
)

// QueueStorage defines interface for persisting the offline queue
type QueueStorage interface {
	// SaveQueueItem stores or replaces a queued operation
	SaveQueueItem(ctx context.Context, item *models.QueueItem) error

	// DeleteQueueItem removes a queued operation
	// Deleting a missing item is not an error
	DeleteQueueItem(ctx context.Context, id string) error

	// LoadQueueItems returns all queued operations
	LoadQueueItems(ctx context.Context) ([]*models.QueueItem, error)

	// SaveDeadLetter stores an operation that exhausted its retries
	SaveDeadLetter(ctx context.Context, item *models.QueueItem) error

	// LoadDeadLetters returns all dead-lettered operations
	LoadDeadLetters(ctx context.Context) ([]*models.QueueItem, error)
}
