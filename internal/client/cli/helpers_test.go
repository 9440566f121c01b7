package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/carekeeper/internal/client/iocli"
	"github.com/iudanet/carekeeper/internal/client/storage"
	"github.com/iudanet/carekeeper/internal/crypto"
	"github.com/iudanet/carekeeper/internal/guardian"
	"github.com/iudanet/carekeeper/internal/models"
)

// output собирает все, что команда напечатала
type output struct {
	b  strings.Builder
	mu sync.Mutex
}

func (o *output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.b.String()
}

func (o *output) add(s string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.b.WriteString(s)
}

func (o *output) mock() *iocli.IOMock {
	return &iocli.IOMock{
		PrintlnFunc: func(a ...any) { o.add(fmt.Sprintln(a...)) },
		PrintfFunc:  func(format string, a ...any) { o.add(fmt.Sprintf(format, a...)) },
		WriteFunc: func(p []byte) (int, error) {
			o.add(string(p))
			return len(p), nil
		},
		ReadInputFunc:    func(string) (string, error) { return "", io.EOF },
		ReadPasswordFunc: func(string) (string, error) { return "", io.EOF },
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestCli создает Cli поверх моков; entities может быть nil
func newTestCli(svc *ServiceMock, entities storage.EntityStorage) (*Cli, *output) {
	out := &output{}
	if entities == nil {
		entities = &storage.EntityStorageMock{}
	}
	return New(out.mock(), svc, entities, guardian.DefaultBudgets(), "user-1", "device-a", discardLogger()), out
}

func crisisPlan(id string, version int64) *models.SyncEntity {
	payload := models.Payload{
		"title":                       "My plan",
		models.FieldEmergencyContacts: []any{map[string]any{"name": "Sam", "phone": "555-0100"}},
	}
	return &models.SyncEntity{
		LastModified: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Payload:      payload,
		ID:           id,
		Type:         models.EntityCrisisPlan,
		Checksum:     crypto.MustChecksum(payload),
		DeviceID:     "device-a",
		UserID:       "user-1",
		Version:      version,
	}
}

// entityStore хранилище с одной записью поверх EntityStorageMock
func entityStore(existing *models.SyncEntity) *storage.EntityStorageMock {
	return &storage.EntityStorageMock{
		LoadEntityFunc: func(ctx context.Context, id string) (*models.SyncEntity, error) {
			if existing != nil && existing.ID == id {
				return existing.Clone(), nil
			}
			return nil, storage.ErrEntityNotFound
		},
		HashFunc: func(p models.Payload) (string, error) {
			return crypto.Checksum(p)
		},
	}
}
