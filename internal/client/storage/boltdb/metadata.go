package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/carekeeper/internal/models"
)

func syncTokenKey(entityType models.EntityType) []byte {
	return []byte("sync_token/" + string(entityType))
}

func syncedVersionKey(entityID string) []byte {
	return []byte("synced_version/" + entityID)
}

// SaveSyncToken saves the server sequence up to which entities of the type were fetched
func (s *Storage) SaveSyncToken(ctx context.Context, entityType models.EntityType, token int64) error {
	db, _, err := s.handle(false)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bbolt.Tx) error {
		// Конвертируем int64 в bytes
		tokenBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(tokenBytes, uint64(token))

		if err := tx.Bucket(bucketMetadata).Put(syncTokenKey(entityType), tokenBytes); err != nil {
			return fmt.Errorf("failed to save sync token: %w", err)
		}
		return nil
	})
}

// GetSyncToken retrieves the last saved sync token
// Returns 0 if no fetch has been performed yet
func (s *Storage) GetSyncToken(ctx context.Context, entityType models.EntityType) (int64, error) {
	db, _, err := s.handle(false)
	if err != nil {
		return 0, err
	}

	var token int64

	err = db.View(func(tx *bbolt.Tx) error {
		tokenBytes := tx.Bucket(bucketMetadata).Get(syncTokenKey(entityType))
		if tokenBytes == nil {
			// первая синхронизация
			return nil
		}
		if len(tokenBytes) != 8 {
			return fmt.Errorf("corrupted sync token for %s", entityType)
		}
		token = int64(binary.BigEndian.Uint64(tokenBytes))
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to get sync token: %w", err)
	}

	return token, nil
}

// SaveSyncedVersion saves the entity version last confirmed by the server.
// A lower version never replaces a higher one.
func (s *Storage) SaveSyncedVersion(ctx context.Context, entityID string, version int64) error {
	db, _, err := s.handle(false)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMetadata)
		key := syncedVersionKey(entityID)
		if cur := b.Get(key); len(cur) == 8 && int64(binary.BigEndian.Uint64(cur)) >= version {
			return nil
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(version))
		if err := b.Put(key, buf); err != nil {
			return fmt.Errorf("failed to save synced version: %w", err)
		}
		return nil
	})
}

// GetSyncedVersion retrieves the version last confirmed by the server
// Returns 0 if the entity has never been synced
func (s *Storage) GetSyncedVersion(ctx context.Context, entityID string) (int64, error) {
	db, _, err := s.handle(false)
	if err != nil {
		return 0, err
	}

	var version int64
	err = db.View(func(tx *bbolt.Tx) error {
		buf := tx.Bucket(bucketMetadata).Get(syncedVersionKey(entityID))
		if buf == nil {
			return nil
		}
		if len(buf) != 8 {
			return fmt.Errorf("corrupted synced version for %s", entityID)
		}
		version = int64(binary.BigEndian.Uint64(buf))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get synced version: %w", err)
	}
	return version, nil
}
