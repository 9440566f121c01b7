package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/carekeeper/internal/events"
	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/reliability"
	"github.com/iudanet/carekeeper/internal/syncerr"
)

// DrainResult итог отправки офлайн-очереди
type DrainResult struct {
	Sent         int
	Acked        int
	Retried      int
	DeadLettered int
	Conflicts    int
}

func (r *DrainResult) add(other DrainResult) {
	r.Sent += other.Sent
	r.Acked += other.Acked
	r.Retried += other.Retried
	r.DeadLettered += other.DeadLettered
	r.Conflicts += other.Conflicts
}

// Drain отправляет готовые элементы очереди пакетами размера, заданного стратегией сети.
// Без сети ничего не отправляется; при отложенной синхронизации уходят только кризисные операции.
// Одновременно выполняется не больше одного Drain.
func (o *Orchestrator) Drain(ctx context.Context) (DrainResult, error) {
	o.drainMu.Lock()
	defer o.drainMu.Unlock()

	var total DrainResult
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if !o.network.Online() {
			return total, nil
		}

		strategy := o.network.Strategy()
		minPriority := models.PriorityLow
		if strategy.Defer {
			minPriority = models.PriorityCrisis
		}
		batch := o.queue.NextBatchAtLeast(strategy.BatchSize, minPriority)
		if len(batch) == 0 {
			return total, nil
		}

		r := o.drainBatch(ctx, batch, strategy)
		total.add(r)
		if r.Acked == 0 {
			// ни одна операция не прошла: следующая попытка по расписанию
			return total, nil
		}
	}
}

func (o *Orchestrator) drainBatch(ctx context.Context, batch []*models.QueueItem, strategy reliability.SyncStrategy) DrainResult {
	res := DrainResult{Sent: len(batch)}

	ops := make([]*models.Operation, 0, len(batch))
	for _, item := range batch {
		ops = append(ops, item.Operation)
	}

	sctx, cancel := context.WithTimeout(ctx, strategy.Timeout)
	submitted, err := o.transport.Submit(sctx, ops)
	cancel()
	if err != nil {
		o.logger.Warn("Queue batch failed", "size", len(batch), "error", err)
		for _, item := range batch {
			o.failItem(ctx, item, err, &res)
		}
		return res
	}

	processed := make(map[string]bool, len(submitted.Processed))
	for _, id := range submitted.Processed {
		processed[id] = true
	}
	conflicts := make(map[string]*models.SyncEntity, len(submitted.Conflicts))
	for _, c := range submitted.Conflicts {
		conflicts[c.OperationID] = c.Remote
	}

	for _, item := range batch {
		id := item.ID()
		if processed[id] {
			o.ackItem(ctx, item, &res)
			o.markSynced(ctx, item.Operation.Entity)
			continue
		}
		if ferr, ok := submitted.Failed[id]; ok {
			o.failItem(ctx, item, ferr, &res)
			continue
		}
		if remote, ok := conflicts[id]; ok {
			o.ackItem(ctx, item, &res)
			res.Conflicts++
			if err := o.drainConflict(ctx, item.Operation, remote); err != nil {
				o.logger.Warn("Failed to resolve queued conflict", "operation_id", id, "error", err)
			}
			continue
		}
		o.failItem(ctx, item, syncerr.New(syncerr.KindTransient, "drain", "operation %s missing from response", id), &res)
	}
	return res
}

func (o *Orchestrator) drainConflict(ctx context.Context, op *models.Operation, remote *models.SyncEntity) error {
	unlock, err := o.locks.Lock(ctx, remote.ID)
	if err != nil {
		return fmt.Errorf("failed to lock entity: %w", err)
	}
	defer unlock()
	_, err = o.handleConflict(ctx, op, remote)
	return err
}

func (o *Orchestrator) ackItem(ctx context.Context, item *models.QueueItem, res *DrainResult) {
	if err := o.queue.Ack(ctx, item.ID()); err != nil {
		o.logger.Warn("Failed to ack queue item", "operation_id", item.ID(), "error", err)
	}
	res.Acked++
}

func (o *Orchestrator) failItem(ctx context.Context, item *models.QueueItem, cause error, res *DrainResult) {
	dead, err := o.queue.Fail(context.WithoutCancel(ctx), item.ID(), cause)
	if errors.Is(err, reliability.ErrItemNotInFlight) {
		o.logger.Warn("Failed to record queue failure", "operation_id", item.ID(), "error", err)
		return
	}
	if err != nil {
		o.logger.Error("Queue failure not persisted", "operation_id", item.ID(), "error", err)
	}
	if dead == nil {
		res.Retried++
		return
	}
	res.DeadLettered++
	o.bus.Publish(events.OperationDeadLettered{
		At:        o.now(),
		Operation: *dead.Operation,
		LastError: dead.LastError,
		Attempts:  dead.RetryCount,
	})
}
