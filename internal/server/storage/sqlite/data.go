package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/server/storage"
)

const entityColumns = `user_id, id, type, payload, checksum, device_id,
	       version, deleted, last_modified, seq`

// GetEntity retrieves the stored version of an entity, tombstones included
func (s *Storage) GetEntity(ctx context.Context, userID, id string) (*storage.Record, error) {
	query := `SELECT ` + entityColumns + `
		FROM entities
		WHERE user_id = ? AND id = ?`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return rec, nil
}

// PutEntity creates or replaces the stored version of an entity.
// Версионная проверка выполняется вызывающим кодом.
func (s *Storage) PutEntity(ctx context.Context, rec *storage.Record) error {
	if rec == nil || rec.Entity == nil {
		return errors.New("record with entity is required")
	}
	e := rec.Entity

	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO entities (` + entityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			type = excluded.type,
			payload = excluded.payload,
			checksum = excluded.checksum,
			device_id = excluded.device_id,
			version = excluded.version,
			deleted = excluded.deleted,
			last_modified = excluded.last_modified,
			seq = excluded.seq
	`

	_, err = s.db.ExecContext(ctx, query,
		e.UserID,
		e.ID,
		string(e.Type),
		string(payload),
		e.Checksum,
		e.DeviceID,
		e.Version,
		boolToInt(e.Deleted),
		e.LastModified.UnixNano(),
		rec.Seq,
	)
	if err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}

	return nil
}

// ListSince returns entities of entityType accepted after since, ordered by seq
func (s *Storage) ListSince(ctx context.Context, userID string, entityType models.EntityType, since int64) (out []*storage.Record, err error) {
	query := `SELECT ` + entityColumns + `
		FROM entities
		WHERE user_id = ? AND type = ? AND seq > ?
		ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, userID, string(entityType), since)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities since %d: %w", since, err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return out, nil
}

// MaxSeq returns the highest stored sequence
func (s *Storage) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM entities`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to get max seq: %w", err)
	}
	return seq, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord читает одну строку таблицы entities
func scanRecord(row scanner) (*storage.Record, error) {
	var (
		e            models.SyncEntity
		entityType   string
		payload      string
		deleted      int
		lastModified int64
		seq          int64
	)

	err := row.Scan(
		&e.UserID,
		&e.ID,
		&entityType,
		&payload,
		&e.Checksum,
		&e.DeviceID,
		&e.Version,
		&deleted,
		&lastModified,
		&seq,
	)
	if err != nil {
		return nil, err
	}

	if e.Type, err = models.ParseEntityType(entityType); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	e.Deleted = intToBool(deleted)
	e.LastModified = time.Unix(0, lastModified).UTC()

	return &storage.Record{Entity: &e, Seq: seq}, nil
}

// Helper functions for bool/int conversion
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}
