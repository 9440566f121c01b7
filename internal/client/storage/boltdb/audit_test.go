package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/carekeeper/internal/client/storage"
	"github.com/iudanet/carekeeper/internal/models"
)

func TestAudit_AppendAndGet(t *testing.T) {
	store, _ := createTestStorage(t)
	ctx := context.Background()

	res := models.ResolutionResult{
		ResolvedAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Resolved:     &models.SyncEntity{ID: "e1", Version: 4},
		ConflictID:   "c-1",
		EntityID:     "e1",
		StrategyUsed: models.StrategyIntelligentMerge,
		AuditTrail: []models.AuditStep{
			{Step: 1, Action: models.AuditConflictDetected},
			{Step: 2, Action: models.AuditStrategySelected},
		},
		Confidence: 0.9,
	}
	require.NoError(t, store.AppendAudit(ctx, storage.NewAuditRecord(res)))

	res.ConflictID = "c-2"
	res.ResolutionRequired = true
	require.NoError(t, store.AppendAudit(ctx, storage.NewAuditRecord(res)))

	// запись другой сущности с общим префиксом ID не должна попасть в выборку
	res.EntityID = "e10"
	res.ConflictID = "c-3"
	require.NoError(t, store.AppendAudit(ctx, storage.NewAuditRecord(res)))

	records, err := store.GetAudit(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c-1", records[0].ConflictID)
	assert.Equal(t, "c-2", records[1].ConflictID)
	assert.True(t, records[1].ResolutionRequired)
	assert.Equal(t, int64(4), records[0].ResolvedVersion)
	assert.Len(t, records[0].Steps, 2)

	records, err = store.GetAudit(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAudit_WorksWhileLocked(t *testing.T) {
	store, err := New(context.Background(), t.TempDir()+"/locked.db")
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	require.NoError(t, store.AppendAudit(context.Background(), storage.AuditRecord{EntityID: "e1", ConflictID: "c"}))
	assert.Error(t, store.AppendAudit(context.Background(), storage.AuditRecord{}))
}
