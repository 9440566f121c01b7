package reliability

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/carekeeper/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func upload(id string, priority models.Priority) *models.Operation {
	op := models.NewOperation(models.OperationUpload, &models.SyncEntity{
		ID:       "entity-" + id,
		Type:     models.EntityCheckIn,
		UserID:   "user-1",
		Checksum: "sum-" + id,
		Payload:  models.Payload{models.FieldMood: 5.0},
	}, priority)
	op.ID = id
	return op
}
