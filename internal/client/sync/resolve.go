package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/carekeeper/internal/client/storage"
	"github.com/iudanet/carekeeper/internal/conflict"
	"github.com/iudanet/carekeeper/internal/events"
	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/syncerr"
)

// Resolve разрешает конфликт, сохраняет журнал и результат, ставит
// разрешенную версию в очередь на отправку. Для одной записи одновременно
// выполняется только одно разрешение.
func (o *Orchestrator) Resolve(ctx context.Context, c *models.SyncConflict, rctx models.ResolutionContext) (models.ResolutionResult, error) {
	if c == nil || c.EntityID == "" {
		return models.ResolutionResult{}, syncerr.New(syncerr.KindValidation, "resolve", "conflict with entity id is required")
	}
	unlock, err := o.locks.Lock(ctx, c.EntityID)
	if err != nil {
		return models.ResolutionResult{}, fmt.Errorf("failed to lock entity: %w", err)
	}
	defer unlock()

	return o.resolve(ctx, c, rctx)
}

// handleConflict разрешает конфликт между локальной копией записи и версией сервера.
// Вызывается под блокировкой записи.
func (o *Orchestrator) handleConflict(ctx context.Context, op *models.Operation, remote *models.SyncEntity) (*Outcome, error) {
	local, err := o.entities.LoadEntity(ctx, remote.ID)
	switch {
	case errors.Is(err, storage.ErrEntityNotFound):
		local = op.Entity
	case err != nil:
		return nil, fmt.Errorf("failed to load local entity: %w", err)
	}
	if local == nil {
		// удаление записи, которой нет локально: принимаем серверную версию
		if err := o.saveRemote(ctx, remote); err != nil {
			return nil, err
		}
		return &Outcome{OperationID: op.ID, Status: StatusSynced}, nil
	}

	res, err := o.reconcile(ctx, local, remote, op.Priority)
	if err != nil {
		return nil, err
	}
	out := &Outcome{OperationID: op.ID, Status: StatusResolved, Resolution: res}
	switch {
	case res == nil:
		out.Status = StatusSynced
	case res.ResolutionRequired:
		out.Status = StatusReviewRequired
	}
	return out, nil
}

// reconcile обнаруживает конфликты между local и remote и разрешает самый серьезный из них.
// Если версии не расходятся, сохраняется remote и возвращается nil.
func (o *Orchestrator) reconcile(ctx context.Context, local, remote *models.SyncEntity, priority models.Priority) (*models.ResolutionResult, error) {
	conflicts, err := o.detector.Detect(local, remote, conflict.DetectionContext{
		Device:     o.deviceContext(),
		CrisisMode: priority == models.PriorityCrisis,
	})
	if err != nil {
		return nil, err
	}
	if len(conflicts) == 0 {
		return nil, o.saveRemote(ctx, remote)
	}

	for _, c := range conflicts {
		o.logger.Info("Conflict detected",
			"conflict_id", c.ID,
			"entity_id", c.EntityID,
			"type", c.Type,
			"severity", c.Severity,
			"field", c.Field)
		o.bus.Publish(events.ConflictDetected{At: o.now(), Conflict: c})
	}

	worst, _ := conflict.HighestSeverity(conflicts)
	res, err := o.resolve(ctx, &worst, o.resolutionContext(priority))
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// resolve выполняет разрешение. Журнал сохраняется до применения результата,
// поэтому он остается даже если сохранение записи не удалось.
func (o *Orchestrator) resolve(ctx context.Context, c *models.SyncConflict, rctx models.ResolutionContext) (models.ResolutionResult, error) {
	res := o.resolver.Resolve(ctx, c, rctx)

	persistCtx := context.WithoutCancel(ctx)
	if err := o.audit.AppendAudit(persistCtx, storage.NewAuditRecord(res)); err != nil {
		o.logger.Error("Failed to persist resolution audit",
			"conflict_id", res.ConflictID,
			"entity_id", res.EntityID,
			"error", err)
		return res, fmt.Errorf("failed to persist audit: %w", err)
	}

	if res.Resolved != nil {
		if err := o.entities.SaveEntity(persistCtx, res.Resolved); err != nil {
			return res, fmt.Errorf("failed to save resolved entity: %w", err)
		}
		o.guardian.Observe(res.Resolved)

		if res.StrategyUsed != models.StrategyManualReview {
			follow := models.NewOperation(models.OperationResolveConflict, res.Resolved, rctx.Priority)
			if c.Remote != nil {
				follow.BaseVersion = c.Remote.Version
				o.markSynced(ctx, c.Remote)
			}
			follow.Tier = rctx.SubscriptionTier
			if follow.UserID == "" {
				follow.UserID = o.cfg.UserID
			}
			if _, err := o.queue.Enqueue(persistCtx, follow); err != nil {
				o.logger.Warn("Failed to queue resolved entity", "entity_id", res.EntityID, "error", err)
			}
		}
	}

	level := o.logger.Info
	if res.ResolutionRequired {
		level = o.logger.Warn
	}
	level("Conflict resolved",
		"conflict_id", res.ConflictID,
		"entity_id", res.EntityID,
		"strategy", res.StrategyUsed,
		"confidence", res.Confidence,
		"resolution_required", res.ResolutionRequired,
		"reason", res.Reason)

	o.bus.Publish(events.ResolutionCompleted{At: o.now(), Result: res})
	return res, nil
}

func (o *Orchestrator) saveRemote(ctx context.Context, remote *models.SyncEntity) error {
	if err := o.entities.SaveEntity(ctx, remote); err != nil {
		return fmt.Errorf("failed to save remote entity: %w", err)
	}
	o.guardian.Observe(remote)
	o.markSynced(ctx, remote)
	return nil
}

// markSynced запоминает версию, подтвержденную сервером
func (o *Orchestrator) markSynced(ctx context.Context, e *models.SyncEntity) {
	if e == nil {
		return
	}
	if err := o.metadata.SaveSyncedVersion(context.WithoutCancel(ctx), e.ID, e.Version); err != nil {
		o.logger.Warn("Failed to save synced version", "entity_id", e.ID, "version", e.Version, "error", err)
	}
}

// syncedVersion версия записи, подтвержденная сервером; 0 - запись не синхронизировалась
func (o *Orchestrator) syncedVersion(ctx context.Context, entityID string) int64 {
	v, err := o.metadata.GetSyncedVersion(ctx, entityID)
	if err != nil {
		o.logger.Warn("Failed to read synced version", "entity_id", entityID, "error", err)
		return 0
	}
	return v
}
