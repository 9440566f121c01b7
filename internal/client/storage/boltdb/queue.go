package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/carekeeper/internal/models"
)

// SaveQueueItem stores or replaces a queued operation
func (s *Storage) SaveQueueItem(ctx context.Context, item *models.QueueItem) error {
	return s.putSealed(bucketQueue, item)
}

// SaveDeadLetter stores an operation that exhausted its retries
func (s *Storage) SaveDeadLetter(ctx context.Context, item *models.QueueItem) error {
	return s.putSealed(bucketDeadLetters, item)
}

// DeleteQueueItem removes a queued operation
func (s *Storage) DeleteQueueItem(ctx context.Context, id string) error {
	db, _, err := s.handle(false)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketQueue).Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to delete queue item: %w", err)
		}
		return nil
	})
}

// LoadQueueItems returns all queued operations
func (s *Storage) LoadQueueItems(ctx context.Context) ([]*models.QueueItem, error) {
	return s.loadSealed(bucketQueue)
}

// LoadDeadLetters returns all dead-lettered operations
func (s *Storage) LoadDeadLetters(ctx context.Context) ([]*models.QueueItem, error) {
	return s.loadSealed(bucketDeadLetters)
}

func (s *Storage) putSealed(bucket []byte, item *models.QueueItem) error {
	db, key, err := s.handle(true)
	if err != nil {
		return err
	}
	if item == nil || item.ID() == "" {
		return fmt.Errorf("queue item operation id is required")
	}

	id := []byte(item.ID())
	sealed, err := sealJSON(item, key, id)
	if err != nil {
		return fmt.Errorf("failed to seal queue item: %w", err)
	}

	return db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucket).Put(id, sealed); err != nil {
			return fmt.Errorf("failed to save queue item: %w", err)
		}
		return nil
	})
}

func (s *Storage) loadSealed(bucket []byte) ([]*models.QueueItem, error) {
	db, key, err := s.handle(true)
	if err != nil {
		return nil, err
	}

	var items []*models.QueueItem

	err = db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(k, v []byte) error {
			var item models.QueueItem
			if err := openJSON(v, key, k, &item); err != nil {
				return fmt.Errorf("failed to open queue item %s: %w", k, err)
			}
			items = append(items, &item)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", bucket, err)
	}

	return items, nil
}
