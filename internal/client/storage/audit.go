package storage

import (
	"context"
	"time"

	"github.com/iudanet/carekeeper/internal/models"
)

//go:generate moq -out auditstorage_mock.go . AuditStorage

// AuditRecord запись журнала разрешения конфликта.
// Содержит только метаданные: данные записи в журнал не попадают.
type AuditRecord struct {
	ResolvedAt         time.Time          `json:"resolved_at"`
	ConflictID         string             `json:"conflict_id"`
	EntityID           string             `json:"entity_id"`
	Strategy           models.Strategy    `json:"strategy"`
	Reason             string             `json:"reason,omitempty"`
	Steps              []models.AuditStep `json:"steps"`
	DiscardedFields    []string           `json:"discarded_fields,omitempty"`
	Issues             []string           `json:"issues,omitempty"`
	Confidence         float64            `json:"confidence"`
	ResolvedVersion    int64              `json:"resolved_version"`
	ResolutionRequired bool               `json:"resolution_required"`
}

// NewAuditRecord builds an audit record from a resolution result.
func NewAuditRecord(res models.ResolutionResult) AuditRecord {
	rec := AuditRecord{
		ResolvedAt:         res.ResolvedAt,
		ConflictID:         res.ConflictID,
		EntityID:           res.EntityID,
		Strategy:           res.StrategyUsed,
		Reason:             res.Reason,
		Steps:              append([]models.AuditStep(nil), res.AuditTrail...),
		DiscardedFields:    append([]string(nil), res.DiscardedFields...),
		Issues:             append([]string(nil), res.Validation.Issues...),
		Confidence:         res.Confidence,
		ResolutionRequired: res.ResolutionRequired,
	}
	if res.Resolved != nil {
		rec.ResolvedVersion = res.Resolved.Version
	}
	return rec
}

// AuditStorage defines interface for the append-only resolution audit log
type AuditStorage interface {
	// AppendAudit appends a record to the entity's audit log
	AppendAudit(ctx context.Context, record AuditRecord) error

	// GetAudit returns the audit log of an entity in append order
	GetAudit(ctx context.Context, entityID string) ([]AuditRecord, error)
}
