package conflict

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iudanet/carekeeper/internal/crypto"
	"github.com/iudanet/carekeeper/internal/models"
)

// DefaultMergeConfidenceThreshold минимальная уверенность, при которой принимается слияние
const DefaultMergeConfidenceThreshold = 0.8

// ResolverConfig параметры резолвера
type ResolverConfig struct {
	Now                      func() time.Time
	Hash                     func(models.Payload) (string, error)
	MergeConfidenceThreshold float64
}

// Resolver разрешает конфликты согласно таблице политик.
// Resolve никогда не возвращает ошибку: сбои превращаются в результат manual_review.
type Resolver struct {
	policies  *PolicyTable
	logger    *slog.Logger
	now       func() time.Time
	hash      func(models.Payload) (string, error)
	threshold float64
}

// NewResolver creates a resolver over the given policy table.
func NewResolver(policies *PolicyTable, cfg ResolverConfig, logger *slog.Logger) *Resolver {
	r := &Resolver{
		policies:  policies,
		logger:    logger,
		now:       cfg.Now,
		hash:      cfg.Hash,
		threshold: cfg.MergeConfidenceThreshold,
	}
	if r.policies == nil {
		r.policies = DefaultPolicies()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.hash == nil {
		r.hash = func(p models.Payload) (string, error) { return crypto.Checksum(p) }
	}
	if r.threshold <= 0 {
		r.threshold = DefaultMergeConfidenceThreshold
	}
	return r
}

// auditTrail нумерованный журнал шагов разрешения
type auditTrail struct {
	now   func() time.Time
	steps []models.AuditStep
}

func (t *auditTrail) add(action models.AuditAction, detail string) {
	t.steps = append(t.steps, models.AuditStep{
		Step:      len(t.steps) + 1,
		Action:    action,
		Detail:    detail,
		Timestamp: t.now(),
	})
}

// SelectStrategy определяет стратегию для конфликта и причину выбора
func (r *Resolver) SelectStrategy(c *models.SyncConflict, rctx models.ResolutionContext) (models.Strategy, string) {
	policy := r.policies.For(c.EntityType)

	if rctx.CrisisMode || c.CrisisMode || c.Severity == models.SeverityEmergency {
		return policy.CrisisOverrideStrategy, fmt.Sprintf("crisis mode=%t, severity=%s", rctx.CrisisMode || c.CrisisMode, c.Severity)
	}

	strategy := policy.StrategyFor(c.Type)
	reason := fmt.Sprintf("policy for %s/%s", c.EntityType, c.Type)

	if policy.RequiresClinicalReview && c.HasClinicalContext() {
		return models.StrategyClinicalValidation, reason + ", clinical review required"
	}
	return strategy, reason
}

// Resolve разрешает конфликт и возвращает результат с журналом.
// Ошибки и паники при выполнении стратегии приводят к результату manual_review.
func (r *Resolver) Resolve(ctx context.Context, c *models.SyncConflict, rctx models.ResolutionContext) (result models.ResolutionResult) {
	trail := &auditTrail{now: r.now}
	trail.add(models.AuditConflictDetected, fmt.Sprintf("%s on %s (%s), severity %s", c.Type, c.EntityID, c.EntityType, c.Severity))

	defer func() {
		if rec := recover(); rec != nil {
			trail.add(models.AuditResolutionFailed, fmt.Sprintf("panic: %v", rec))
			result = r.manualReview(c, trail, fmt.Sprintf("strategy execution panicked: %v", rec))
		}
		r.logger.InfoContext(ctx, "Conflict resolved",
			"conflict_id", c.ID,
			"entity_id", c.EntityID,
			"strategy", result.StrategyUsed,
			"confidence", result.Confidence,
			"resolution_required", result.ResolutionRequired)
	}()

	if c.Local == nil || c.Remote == nil {
		trail.add(models.AuditResolutionFailed, "conflict is missing a version")
		return r.manualReview(c, trail, "conflict is missing a version")
	}

	strategy, why := r.SelectStrategy(c, rctx)
	trail.add(models.AuditStrategySelected, fmt.Sprintf("%s (%s)", strategy, why))

	var o outcome
	switch strategy {
	case models.StrategyLatestWins:
		o = latestWins(c, trail)
	case models.StrategyServerWins, models.StrategyClientWins, models.StrategyPaymentAuthoritative:
		o = fixedSide(c, trail, strategy)
	case models.StrategyClinicalValidation:
		o = clinicalValidation(c, trail)
	case models.StrategyIntelligentMerge:
		o = intelligentMerge(c, trail, r.threshold)
	case models.StrategyCrisisOverride:
		o = crisisOverride(c, trail)
	case models.StrategyManualReview:
		return r.manualReview(c, trail, "policy requested manual review")
	default:
		trail.add(models.AuditResolutionFailed, fmt.Sprintf("unknown strategy %q", strategy))
		return r.manualReview(c, trail, fmt.Sprintf("unknown strategy %q", strategy))
	}

	resolved, err := r.build(c, o.base, o.payload)
	if err != nil {
		trail.add(models.AuditResolutionFailed, err.Error())
		return r.manualReview(c, trail, err.Error())
	}

	validation := ValidateClinical(resolved)
	required := false
	if !validation.IsValid {
		// кризисный путь не блокируется валидатором, но результат помечается на ручную проверку
		if o.strategy != models.StrategyCrisisOverride {
			trail.add(models.AuditValidationRejected, strings.Join(validation.Issues, "; "))
			trail.add(models.AuditResolutionFailed, "resolved data rejected by clinical validator")
			return r.manualReview(c, trail, "resolved data rejected by clinical validator: "+strings.Join(validation.Issues, "; "))
		}
		required = true
		trail.add(models.AuditValidationRejected, strings.Join(validation.Issues, "; "))
	}
	trail.add(models.AuditResolutionValidated, fmt.Sprintf("valid=%t", validation.IsValid))

	return models.ResolutionResult{
		ResolvedAt:         r.now(),
		Resolved:           resolved,
		ConflictID:         c.ID,
		EntityID:           c.EntityID,
		Reason:             o.reason,
		StrategyUsed:       o.strategy,
		AuditTrail:         trail.steps,
		DiscardedFields:    o.discarded,
		Validation:         validation,
		Confidence:         o.confidence,
		ResolutionRequired: required,
	}
}

// build собирает итоговую запись: версия max+1, checksum пересчитывается
func (r *Resolver) build(c *models.SyncConflict, base *models.SyncEntity, payload models.Payload) (*models.SyncEntity, error) {
	sum, err := r.safeHash(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to hash resolved payload: %w", err)
	}

	deviceID := c.Device.DeviceID
	if deviceID == "" {
		deviceID = c.Local.DeviceID
	}

	return &models.SyncEntity{
		LastModified: r.now(),
		Payload:      payload,
		ID:           c.EntityID,
		Type:         c.Local.Type,
		Checksum:     sum,
		DeviceID:     deviceID,
		UserID:       c.Local.UserID,
		Version:      max(c.Local.Version, c.Remote.Version) + 1,
		Deleted:      base.Deleted,
	}, nil
}

// manualReview аварийный результат: локальные данные, ResolutionRequired=true.
// Журнал сохраняется полностью.
func (r *Resolver) manualReview(c *models.SyncConflict, trail *auditTrail, reason string) models.ResolutionResult {
	base := c.Local
	if base == nil {
		base = c.Remote
	}

	result := models.ResolutionResult{
		ResolvedAt:         r.now(),
		ConflictID:         c.ID,
		EntityID:           c.EntityID,
		Reason:             reason,
		StrategyUsed:       models.StrategyManualReview,
		ResolutionRequired: true,
	}

	if base != nil {
		resolved := base.Clone()
		var other int64
		if c.Remote != nil && c.Local != nil {
			other = c.Remote.Version
		}
		resolved.Version = max(base.Version, other) + 1
		resolved.LastModified = r.now()
		if sum, err := r.safeHash(resolved.Payload); err == nil {
			resolved.Checksum = sum
		}
		result.Resolved = resolved
		result.Validation = ValidateClinical(resolved)
	} else {
		result.Validation = ValidateClinical(nil)
	}

	trail.add(models.AuditSideSelected, "local: manual review fallback")
	result.AuditTrail = trail.steps
	r.logger.Warn("Conflict routed to manual review", "conflict_id", c.ID, "entity_id", c.EntityID, "reason", reason)
	return result
}

func (r *Resolver) safeHash(p models.Payload) (sum string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("hash panicked: %v", rec)
		}
	}()
	return r.hash(p)
}
