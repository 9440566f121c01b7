package conflict

import (
	"io"
	"log/slog"
	"time"

	"github.com/iudanet/carekeeper/internal/crypto"
	"github.com/iudanet/carekeeper/internal/models"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEntity(et models.EntityType, version int64, modified time.Time, payload models.Payload) *models.SyncEntity {
	return &models.SyncEntity{
		LastModified: modified,
		Payload:      payload,
		ID:           "3f1c2a9e-0000-4000-8000-000000000001",
		Type:         et,
		Checksum:     crypto.MustChecksum(payload),
		DeviceID:     "device-a",
		UserID:       "user-1",
		Version:      version,
	}
}

func newResolver() *Resolver {
	return NewResolver(DefaultPolicies(), ResolverConfig{Now: fixedNow}, discardLogger())
}

func conflictOf(t models.ConflictType, sev models.Severity, local, remote *models.SyncEntity) *models.SyncConflict {
	return &models.SyncConflict{
		DetectedAt: testNow,
		Local:      local,
		Remote:     remote,
		ID:         "c-1",
		EntityID:   local.ID,
		EntityType: local.Type,
		Type:       t,
		Severity:   sev,
		Device:     models.DeviceContext{DeviceID: "device-a", Online: true, NetworkQuality: 80},
	}
}
