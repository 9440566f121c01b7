package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/carekeeper/internal/client/storage"
	clientsync "github.com/iudanet/carekeeper/internal/client/sync"
	"github.com/iudanet/carekeeper/internal/crypto"
	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/syncerr"
)

func writeSubmitFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entity.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func syncedService() *ServiceMock {
	return &ServiceMock{
		SubmitSyncFunc: func(_ context.Context, op *models.Operation, _ models.Priority) (*clientsync.Outcome, error) {
			return &clientsync.Outcome{OperationID: op.ID, Status: clientsync.StatusSynced, Sequence: 1}, nil
		},
	}
}

func TestCli_runSubmit(t *testing.T) {
	t.Run("new entity", func(t *testing.T) {
		svc := syncedService()
		c, out := newTestCli(svc, entityStore(nil))
		path := writeSubmitFile(t, `{"type": "check_in", "payload": {"mood": 6, "note": "ok"}}`)

		require.NoError(t, c.runSubmit(context.Background(), path, models.PriorityHigh))

		require.Len(t, svc.SubmitSyncCalls(), 1)
		call := svc.SubmitSyncCalls()[0]
		assert.Equal(t, models.PriorityHigh, call.Priority)

		op := call.Op
		assert.Equal(t, models.OperationUpload, op.Type)
		assert.Equal(t, models.PriorityHigh, op.Priority)
		require.NotNil(t, op.Entity)
		assert.NotEmpty(t, op.Entity.ID)
		assert.Equal(t, op.Entity.ID, op.EntityID)
		assert.Equal(t, models.EntityCheckIn, op.Entity.Type)
		assert.Equal(t, int64(1), op.Entity.Version)
		assert.Equal(t, "user-1", op.Entity.UserID)
		assert.Equal(t, "device-a", op.Entity.DeviceID)
		assert.Equal(t, crypto.MustChecksum(op.Entity.Payload), op.Entity.Checksum)

		got := out.String()
		assert.Contains(t, got, "Status:    synced")
		assert.Contains(t, got, "priority high")
	})

	t.Run("existing entity gets next version", func(t *testing.T) {
		svc := syncedService()
		c, _ := newTestCli(svc, entityStore(crisisPlan("cp-1", 4)))
		path := writeSubmitFile(t, `{"id": "cp-1", "type": "crisis_plan", "payload": {"title": "Updated"}}`)

		require.NoError(t, c.runSubmit(context.Background(), path, models.PriorityCrisis))

		op := svc.SubmitSyncCalls()[0].Op
		assert.Equal(t, "cp-1", op.Entity.ID)
		assert.Equal(t, int64(5), op.Entity.Version)
		assert.Equal(t, "Updated", op.Entity.Payload["title"])
	})

	t.Run("delete", func(t *testing.T) {
		svc := syncedService()
		c, _ := newTestCli(svc, entityStore(crisisPlan("cp-1", 2)))
		path := writeSubmitFile(t, `{"id": "cp-1", "type": "crisis_plan", "delete": true}`)

		require.NoError(t, c.runSubmit(context.Background(), path, models.PriorityNormal))

		op := svc.SubmitSyncCalls()[0].Op
		assert.Equal(t, models.OperationDelete, op.Type)
		assert.Nil(t, op.Entity)
		assert.Equal(t, "cp-1", op.EntityID)
		assert.Equal(t, models.EntityCrisisPlan, op.EntityType)
		assert.Equal(t, "user-1", op.UserID)
	})

	t.Run("resolution is reported", func(t *testing.T) {
		svc := &ServiceMock{
			SubmitSyncFunc: func(_ context.Context, op *models.Operation, _ models.Priority) (*clientsync.Outcome, error) {
				return &clientsync.Outcome{
					OperationID:  op.ID,
					Status:       clientsync.StatusReviewRequired,
					Deduplicated: true,
					Resolution: &models.ResolutionResult{
						StrategyUsed:       models.StrategyClinicalValidation,
						Confidence:         0.4,
						ResolutionRequired: true,
						Reason:             "risk level changed",
					},
				}, nil
			},
		}
		c, out := newTestCli(svc, entityStore(nil))
		path := writeSubmitFile(t, `{"type": "assessment", "payload": {"score": 12}}`)

		require.NoError(t, c.runSubmit(context.Background(), path, models.PriorityNormal))

		got := out.String()
		assert.Contains(t, got, "Status:    review_required")
		assert.Contains(t, got, "duplicate of a recent operation")
		assert.Contains(t, got, "Conflict resolved with clinical_validation (confidence 0.40)")
		assert.Contains(t, got, "Review required: risk level changed")
	})

	t.Run("rate limited", func(t *testing.T) {
		svc := &ServiceMock{
			SubmitSyncFunc: func(context.Context, *models.Operation, models.Priority) (*clientsync.Outcome, error) {
				return nil, syncerr.Exhausted("submit", 30*time.Second, "rate limit exceeded")
			},
		}
		c, _ := newTestCli(svc, entityStore(nil))
		path := writeSubmitFile(t, `{"type": "check_in", "payload": {"mood": 3}}`)

		err := c.runSubmit(context.Background(), path, models.PriorityNormal)
		require.Error(t, err)
		assert.Equal(t, syncerr.KindResourceExhaustion, syncerr.KindOf(err))
		assert.Contains(t, err.Error(), "retry after 30s")
	})

	invalid := []struct {
		name    string
		content string
		store   *storage.EntityStorageMock
		kind    syncerr.Kind
	}{
		{name: "invalid json", content: `{"type":`, store: entityStore(nil), kind: syncerr.KindValidation},
		{name: "unknown type", content: `{"type": "journal", "payload": {}}`, store: entityStore(nil), kind: syncerr.KindValidation},
		{name: "delete without id", content: `{"type": "check_in", "delete": true}`, store: entityStore(nil), kind: syncerr.KindValidation},
		{
			name:    "type mismatch",
			content: `{"id": "cp-1", "type": "check_in", "payload": {}}`,
			store:   entityStore(crisisPlan("cp-1", 1)),
			kind:    syncerr.KindValidation,
		},
		{
			name:    "storage failure",
			content: `{"id": "cp-1", "type": "crisis_plan", "payload": {}}`,
			store: &storage.EntityStorageMock{
				LoadEntityFunc: func(context.Context, string) (*models.SyncEntity, error) {
					return nil, errors.New("database is locked")
				},
			},
			kind: syncerr.KindUnknown,
		},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			svc := &ServiceMock{}
			c, _ := newTestCli(svc, tt.store)

			err := c.runSubmit(context.Background(), writeSubmitFile(t, tt.content), models.PriorityNormal)
			require.Error(t, err)
			assert.Equal(t, tt.kind, syncerr.KindOf(err))
			assert.Empty(t, svc.SubmitSyncCalls())
		})
	}

	t.Run("missing file", func(t *testing.T) {
		c, _ := newTestCli(&ServiceMock{}, entityStore(nil))
		err := c.runSubmit(context.Background(), filepath.Join(t.TempDir(), "absent.json"), models.PriorityNormal)
		assert.ErrorContains(t, err, "failed to read")
	})
}
