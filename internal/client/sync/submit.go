package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/carekeeper/internal/client/storage"
	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/reliability"
	"github.com/iudanet/carekeeper/internal/syncerr"
	"github.com/iudanet/carekeeper/internal/validation"
)

// Status итог отправки операции
type Status string

// Итоги отправки
const (
	StatusSynced         Status = "synced"
	StatusQueued         Status = "queued"
	StatusResolved       Status = "resolved"
	StatusReviewRequired Status = "review_required"
)

// Outcome результат SubmitSync
type Outcome struct {
	Resolution   *models.ResolutionResult
	OperationID  string
	Status       Status
	Sequence     int64
	Deduplicated bool // результат взят из кэша дедупликации
}

// SubmitSync сохраняет изменение локально и отправляет операцию на сервер.
//
// Повтор той же операции в окне дедупликации возвращает прежний результат без отправки.
// Превышение лимита запросов ставит операцию в очередь с отсрочкой на окно лимита
// и возвращает ошибку ResourceExhaustion с рекомендуемым ожиданием;
// кризисные операции лимит не проверяют и после допуска не отменяются вызывающим.
// При отсутствии сети и повторяемых ошибках операция ставится в офлайн-очередь.
// Конфликт с серверной версией разрешается сразу.
func (o *Orchestrator) SubmitSync(ctx context.Context, op *models.Operation, priority models.Priority) (*Outcome, error) {
	if op == nil {
		return nil, syncerr.New(syncerr.KindValidation, "submit sync", "operation is required")
	}
	op = op.Clone()
	op.Priority = priority
	if op.UserID == "" {
		op.UserID = o.cfg.UserID
	}
	if op.Tier == "" {
		op.Tier = o.cfg.Tier
	}
	if err := validation.ValidateOperation(op); err != nil {
		return nil, err
	}

	if op.Type == models.OperationDownload {
		res, err := o.Pull(ctx, op.EntityType)
		if err != nil {
			return nil, err
		}
		return &Outcome{OperationID: op.ID, Status: StatusSynced, Sequence: res.Token}, nil
	}

	if op.BaseVersion == 0 {
		op.BaseVersion = o.syncedVersion(ctx, op.EntityID)
	}
	if err := o.applyLocal(ctx, op); err != nil {
		return nil, err
	}

	out, shared, err := o.dedup.Do(ctx, reliability.DedupKey(op), func(ctx context.Context) (*Outcome, error) {
		return o.admit(ctx, op)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		o.logger.Debug("Duplicate operation served from cache",
			"operation_id", op.ID,
			"original_operation_id", out.OperationID)
		dup := *out
		dup.Deduplicated = true
		return &dup, nil
	}
	return out, nil
}

// applyLocal применяет операцию к локальному хранилищу.
// Удаление превращается в tombstone с увеличенной версией.
func (o *Orchestrator) applyLocal(ctx context.Context, op *models.Operation) error {
	switch op.Type {
	case models.OperationUpload, models.OperationResolveConflict:
		if err := o.entities.SaveEntity(ctx, op.Entity); err != nil {
			return fmt.Errorf("failed to save entity locally: %w", err)
		}
		o.guardian.Observe(op.Entity)
	case models.OperationDelete:
		local, err := o.entities.LoadEntity(ctx, op.EntityID)
		if errors.Is(err, storage.ErrEntityNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load entity: %w", err)
		}
		if !local.Deleted {
			local.Deleted = true
			local.Version++
			local.LastModified = o.now()
			local.DeviceID = o.cfg.DeviceID
			if err := o.entities.SaveEntity(ctx, local); err != nil {
				return fmt.Errorf("failed to save tombstone: %w", err)
			}
			o.guardian.Observe(local)
		}
		op.Entity = local
	}
	return nil
}

func (o *Orchestrator) admit(ctx context.Context, op *models.Operation) (*Outcome, error) {
	crisis := op.Priority == models.PriorityCrisis

	if d := o.limiter.Allow(op.UserID, op.Tier, op.Priority); !d.Allowed {
		o.logger.Warn("Operation rate limited",
			"operation_id", op.ID,
			"user_id", op.UserID,
			"tier", op.Tier,
			"retry_after", d.RetryAfter)
		// локальная правка уже сохранена: отправим ее из очереди после окна лимита
		if _, err := o.queue.EnqueueAfter(context.WithoutCancel(ctx), op, d.RetryAfter); err != nil {
			return nil, err
		}
		return nil, syncerr.Exhausted("submit sync", d.RetryAfter, "rate limit exceeded for %s tier", op.Tier)
	}

	strategy := o.network.Strategy()
	timeout := strategy.Timeout
	if crisis {
		// кризисная операция после допуска ограничена только своим таймаутом
		timeout = o.cfg.CrisisTimeout
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
	} else {
		if err := o.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("failed to acquire sync slot: %w", err)
		}
		defer o.sem.Release(1)
	}

	unlock, err := o.locks.Lock(ctx, op.EntityID)
	if err != nil {
		return o.submitFailed(ctx, op, fmt.Errorf("failed to lock entity: %w", err))
	}
	defer unlock()

	if !o.network.Online() || (strategy.Defer && !crisis) {
		return o.enqueue(ctx, op, "network unavailable")
	}

	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	res, err := o.transport.Submit(sctx, []*models.Operation{op})
	if err != nil {
		return o.submitFailed(ctx, op, err)
	}
	if ferr, ok := res.Failed[op.ID]; ok {
		return o.submitFailed(ctx, op, ferr)
	}
	for _, c := range res.Conflicts {
		if c.OperationID == op.ID {
			return o.handleConflict(ctx, op, c.Remote)
		}
	}

	o.markSynced(ctx, op.Entity)
	o.logger.Debug("Operation synced", "operation_id", op.ID, "entity_id", op.EntityID, "sequence", res.Sequence)
	return &Outcome{OperationID: op.ID, Status: StatusSynced, Sequence: res.Sequence}, nil
}

// submitFailed ставит в очередь повторяемые ошибки и возвращает остальные
func (o *Orchestrator) submitFailed(ctx context.Context, op *models.Operation, err error) (*Outcome, error) {
	kind := syncerr.KindOf(err)
	if kind.Retryable() {
		return o.enqueue(ctx, op, err.Error())
	}
	if kind == syncerr.KindSecurity {
		o.logger.Error("Operation rejected by server",
			"operation_id", op.ID,
			"entity_id", op.EntityID,
			"kind", kind,
			"error", err)
	} else {
		o.logger.Warn("Operation failed",
			"operation_id", op.ID,
			"entity_id", op.EntityID,
			"kind", kind,
			"error", err)
	}
	return nil, err
}

func (o *Orchestrator) enqueue(ctx context.Context, op *models.Operation, reason string) (*Outcome, error) {
	// постановка в очередь не должна срываться из-за отмены вызывающего
	if _, err := o.queue.Enqueue(context.WithoutCancel(ctx), op); err != nil {
		return nil, err
	}
	o.logger.Info("Operation queued",
		"operation_id", op.ID,
		"entity_id", op.EntityID,
		"priority", op.Priority,
		"reason", reason)
	return &Outcome{OperationID: op.ID, Status: StatusQueued}, nil
}
