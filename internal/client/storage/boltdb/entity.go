package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/carekeeper/internal/client/storage"
	"github.com/iudanet/carekeeper/internal/crypto"
	"github.com/iudanet/carekeeper/internal/models"
)

// sealJSON сериализует v и шифрует результат; aad привязывает шифротекст к ключу записи
func sealJSON(v any, key, aad []byte) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal: %w", err)
	}
	return crypto.Seal(data, key, aad)
}

func openJSON(sealed, key, aad []byte, v any) error {
	data, err := crypto.Open(sealed, key, aad)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal: %w", err)
	}
	return nil
}

// SaveEntity stores or replaces an entity in BoltDB
func (s *Storage) SaveEntity(ctx context.Context, entity *models.SyncEntity) error {
	db, key, err := s.handle(true)
	if err != nil {
		return err
	}
	if entity == nil || entity.ID == "" {
		return fmt.Errorf("entity id is required")
	}

	id := []byte(entity.ID)
	sealed, err := sealJSON(entity, key, id)
	if err != nil {
		return fmt.Errorf("failed to seal entity: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketEntities).Put(id, sealed); err != nil {
			return fmt.Errorf("failed to save entity: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// LoadEntity retrieves an entity by ID
func (s *Storage) LoadEntity(ctx context.Context, id string) (*models.SyncEntity, error) {
	db, key, err := s.handle(true)
	if err != nil {
		return nil, err
	}

	var entity *models.SyncEntity

	err = db.View(func(tx *bbolt.Tx) error {
		sealed := tx.Bucket(bucketEntities).Get([]byte(id))
		if sealed == nil {
			return storage.ErrEntityNotFound
		}

		entity = &models.SyncEntity{}
		if err := openJSON(sealed, key, []byte(id), entity); err != nil {
			return fmt.Errorf("failed to open entity %s: %w", id, err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return entity, nil
}

// ListEntities returns all entities of the given type, including deleted ones
func (s *Storage) ListEntities(ctx context.Context, entityType models.EntityType) ([]*models.SyncEntity, error) {
	db, key, err := s.handle(true)
	if err != nil {
		return nil, err
	}

	var entities []*models.SyncEntity

	err = db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEntities).ForEach(func(k, v []byte) error {
			var entity models.SyncEntity
			if err := openJSON(v, key, k, &entity); err != nil {
				return fmt.Errorf("failed to open entity %s: %w", k, err)
			}

			// Фильтруем по типу
			if entityType == "" || entity.Type == entityType {
				entities = append(entities, &entity)
			}
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	return entities, nil
}

// Hash computes the payload checksum.
func (s *Storage) Hash(payload models.Payload) (string, error) {
	return crypto.Checksum(payload)
}
