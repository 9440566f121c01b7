package sync

import (
	"context"
	"io"
	"log/slog"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/carekeeper/internal/client/api"
	"github.com/iudanet/carekeeper/internal/client/storage"
	"github.com/iudanet/carekeeper/internal/conflict"
	"github.com/iudanet/carekeeper/internal/crypto"
	"github.com/iudanet/carekeeper/internal/events"
	"github.com/iudanet/carekeeper/internal/guardian"
	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/reliability"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func entity(id string, et models.EntityType, version int64, payload models.Payload) *models.SyncEntity {
	return &models.SyncEntity{
		LastModified: testNow,
		Payload:      payload,
		ID:           id,
		Type:         et,
		Checksum:     crypto.MustChecksum(payload),
		DeviceID:     "device-a",
		UserID:       "user-1",
		Version:      version,
	}
}

func checkIn(id string, version int64, mood float64) *models.SyncEntity {
	return entity(id, models.EntityCheckIn, version, models.Payload{models.FieldMood: mood})
}

func crisisPlan(id string, version int64, contacts ...any) *models.SyncEntity {
	return entity(id, models.EntityCrisisPlan, version, models.Payload{models.FieldEmergencyContacts: contacts})
}

// memStore хранилище в памяти поверх сгенерированных моков
type memStore struct {
	entities map[string]*models.SyncEntity
	tokens   map[models.EntityType]int64
	synced   map[string]int64
	audit    []storage.AuditRecord
	mu       gosync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		entities: make(map[string]*models.SyncEntity),
		tokens:   make(map[models.EntityType]int64),
		synced:   make(map[string]int64),
	}
}

func (s *memStore) put(e *models.SyncEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[e.ID] = e.Clone()
}

// putSynced сохраняет запись как уже подтвержденную сервером
func (s *memStore) putSynced(e *models.SyncEntity) {
	s.put(e)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synced[e.ID] = e.Version
}

func (s *memStore) syncedVersion(id string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synced[id]
}

func (s *memStore) get(id string) *models.SyncEntity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entities[id].Clone()
}

func (s *memStore) auditRecords() []storage.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storage.AuditRecord(nil), s.audit...)
}

func (s *memStore) entityMock() *storage.EntityStorageMock {
	return &storage.EntityStorageMock{
		LoadEntityFunc: func(ctx context.Context, id string) (*models.SyncEntity, error) {
			if e := s.get(id); e != nil {
				return e, nil
			}
			return nil, storage.ErrEntityNotFound
		},
		SaveEntityFunc: func(ctx context.Context, e *models.SyncEntity) error {
			s.put(e)
			return nil
		},
		ListEntitiesFunc: func(ctx context.Context, et models.EntityType) ([]*models.SyncEntity, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []*models.SyncEntity
			for _, e := range s.entities {
				if et == "" || e.Type == et {
					out = append(out, e.Clone())
				}
			}
			return out, nil
		},
		HashFunc: func(p models.Payload) (string, error) {
			return crypto.Checksum(p)
		},
	}
}

func (s *memStore) auditMock() *storage.AuditStorageMock {
	return &storage.AuditStorageMock{
		AppendAuditFunc: func(ctx context.Context, rec storage.AuditRecord) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.audit = append(s.audit, rec)
			return nil
		},
		GetAuditFunc: func(ctx context.Context, entityID string) ([]storage.AuditRecord, error) {
			return nil, nil
		},
	}
}

func (s *memStore) metadataMock() *storage.MetadataStorageMock {
	return &storage.MetadataStorageMock{
		GetSyncTokenFunc: func(ctx context.Context, et models.EntityType) (int64, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.tokens[et], nil
		},
		SaveSyncTokenFunc: func(ctx context.Context, et models.EntityType, token int64) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.tokens[et] = token
			return nil
		},
		GetSyncedVersionFunc: func(ctx context.Context, id string) (int64, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			return s.synced[id], nil
		},
		SaveSyncedVersionFunc: func(ctx context.Context, id string, version int64) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.synced[id] = max(s.synced[id], version)
			return nil
		},
	}
}

// collector запоминает доставленные события
type collector struct {
	events []events.Event
	mu     gosync.Mutex
}

func (c *collector) Observe(_ context.Context, e events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) ofType(t events.Type) []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []events.Event
	for _, e := range c.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	orch      *Orchestrator
	transport *TransportMock
	store     *memStore
	queue     *reliability.Queue
	network   *reliability.NetworkAssessor
	bus       *events.Bus
	events    *collector
}

func newFixture(t *testing.T, transport *TransportMock, opts ...func(*Config, *Deps)) *fixture {
	t.Helper()

	logger := discardLogger()
	store := newMemStore()
	bus := events.NewBus(64, logger)
	entities := store.entityMock()

	cfg := DefaultConfig()
	cfg.UserID = "user-1"
	cfg.DeviceID = "device-a"
	cfg.Tier = models.TierPremium

	deps := Deps{
		Transport: transport,
		Entities:  entities,
		Audit:     store.auditMock(),
		Metadata:  store.metadataMock(),
		Queue:     reliability.NewQueue(reliability.DefaultQueueConfig(), nil, nil, logger),
		Network:   reliability.NewNetworkAssessor(nil, nil),
		Detector:  conflict.NewDetector(conflict.DefaultDetectorConfig(), nil, nil),
		Resolver:  conflict.NewResolver(nil, conflict.ResolverConfig{}, logger),
		Guardian:  guardian.New(entities, guardian.NewCache(guardian.DefaultCacheConfig(), nil), guardian.DefaultBudgets(), bus, logger),
		Bus:       bus,
	}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}

	orch, err := New(cfg, deps, logger)
	require.NoError(t, err)

	f := &fixture{
		orch:      orch,
		transport: transport,
		store:     store,
		queue:     deps.Queue,
		network:   deps.Network,
		bus:       bus,
		events:    &collector{},
	}
	bus.Subscribe(f.events)
	return f
}

// runBus запускает доставку событий без Start
func (f *fixture) runBus(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.bus.Run(context.Background())
	}()
	t.Cleanup(func() {
		f.bus.Close()
		<-done
	})
}

func (f *fixture) goOffline() {
	for range 3 {
		f.network.RecordFailure()
	}
}

func processedAll(seq int64) func(context.Context, []*models.Operation) (*api.SubmitResult, error) {
	return func(_ context.Context, ops []*models.Operation) (*api.SubmitResult, error) {
		res := &api.SubmitResult{Failed: map[string]error{}, Sequence: seq}
		for _, op := range ops {
			res.Processed = append(res.Processed, op.ID)
		}
		return res, nil
	}
}
