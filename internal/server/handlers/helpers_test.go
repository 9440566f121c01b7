package handlers

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/iudanet/carekeeper/internal/crypto"
	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/server/clock"
	"github.com/iudanet/carekeeper/internal/server/storage"
	"github.com/iudanet/carekeeper/pkg/api"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func withUser(ctx context.Context, userID, deviceID string) context.Context {
	return WithIdentity(ctx, &DeviceClaims{UserID: userID, DeviceID: deviceID, Tier: models.TierPremium})
}

func checkIn(id string, version int64, mood float64) *models.SyncEntity {
	payload := models.Payload{models.FieldMood: mood}
	return &models.SyncEntity{
		LastModified: testNow,
		Payload:      payload,
		ID:           id,
		Type:         models.EntityCheckIn,
		Checksum:     crypto.MustChecksum(payload),
		DeviceID:     "device-a",
		UserID:       "user-1",
		Version:      version,
	}
}

func uploadOp(id string, e *models.SyncEntity) api.Operation {
	return operation(id, models.OperationUpload, e)
}

func operation(id string, opType models.OperationType, e *models.SyncEntity) api.Operation {
	op := models.NewOperation(opType, e, models.PriorityNormal)
	op.ID = id
	return op.ToAPI()
}

// memStorage хранилище записей в памяти поверх EntityStorageMock
type memStorage struct {
	records map[string]*storage.Record
	mu      sync.Mutex
}

func newMemStorage() *memStorage {
	return &memStorage{records: make(map[string]*storage.Record)}
}

func (m *memStorage) key(userID, id string) string { return userID + "/" + id }

func (m *memStorage) put(rec *storage.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[m.key(rec.Entity.UserID, rec.Entity.ID)] = &storage.Record{Entity: rec.Entity.Clone(), Seq: rec.Seq}
}

func (m *memStorage) get(userID, id string) *storage.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[m.key(userID, id)]
}

func (m *memStorage) mock() *storage.EntityStorageMock {
	return &storage.EntityStorageMock{
		GetEntityFunc: func(ctx context.Context, userID, id string) (*storage.Record, error) {
			if rec := m.get(userID, id); rec != nil {
				return &storage.Record{Entity: rec.Entity.Clone(), Seq: rec.Seq}, nil
			}
			return nil, storage.ErrEntityNotFound
		},
		PutEntityFunc: func(ctx context.Context, rec *storage.Record) error {
			m.put(rec)
			return nil
		},
		ListSinceFunc: func(ctx context.Context, userID string, et models.EntityType, since int64) ([]*storage.Record, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			var out []*storage.Record
			for _, rec := range m.records {
				if rec.Entity.UserID == userID && rec.Entity.Type == et && rec.Seq > since {
					out = append(out, rec)
				}
			}
			sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
			return out, nil
		},
		MaxSeqFunc: func(ctx context.Context) (int64, error) {
			return 0, nil
		},
	}
}

func newTestSyncHandler(store storage.EntityStorage, notifier ChangeNotifier) (*SyncHandler, *clock.Lamport) {
	c := clock.NewWithNodeID("test")
	h := NewSyncHandler(setupTestLogger(), store, c, notifier)
	h.now = func() time.Time { return testNow }
	return h, c
}
