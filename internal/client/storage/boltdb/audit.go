package boltdb

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/carekeeper/internal/client/storage"
)

// auditKey строит ключ entityID + 0x00 + seq (big endian), чтобы записи одной сущности
// лежали подряд в порядке добавления
func auditKey(entityID string, seq uint64) []byte {
	key := make([]byte, 0, len(entityID)+9)
	key = append(key, entityID...)
	key = append(key, 0x00)
	return binary.BigEndian.AppendUint64(key, seq)
}

// AppendAudit appends a record to the entity's audit log.
// Журнал не требует ключа хранилища: в нем нет данных записей.
func (s *Storage) AppendAudit(ctx context.Context, record storage.AuditRecord) error {
	db, _, err := s.handle(false)
	if err != nil {
		return err
	}
	if record.EntityID == "" {
		return fmt.Errorf("audit record entity id is required")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	return db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketAudit)
		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate audit sequence: %w", err)
		}
		if err := bucket.Put(auditKey(record.EntityID, seq), data); err != nil {
			return fmt.Errorf("failed to append audit record: %w", err)
		}
		return nil
	})
}

// GetAudit returns the audit log of an entity in append order
func (s *Storage) GetAudit(ctx context.Context, entityID string) ([]storage.AuditRecord, error) {
	db, _, err := s.handle(false)
	if err != nil {
		return nil, err
	}

	prefix := append([]byte(entityID), 0x00)
	var records []storage.AuditRecord

	err = db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketAudit).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec storage.AuditRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to unmarshal audit record: %w", err)
			}
			records = append(records, rec)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get audit: %w", err)
	}

	return records, nil
}
