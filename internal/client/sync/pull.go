package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/carekeeper/internal/client/storage"
	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/syncerr"
	"github.com/iudanet/carekeeper/internal/validation"
)

// PullResult итог получения изменений с сервера
type PullResult struct {
	Resolutions []models.ResolutionResult
	Token       int64
	Fetched     int
	Applied     int
	Skipped     int
	Conflicts   int
}

// Pull получает записи entityType, измененные после сохраненного токена.
// Новые записи и записи, опережающие локальную копию без неотправленных изменений,
// сохраняются как есть; остальные проходят обнаружение и разрешение конфликтов.
func (o *Orchestrator) Pull(ctx context.Context, entityType models.EntityType) (*PullResult, error) {
	const op = "pull"

	if !entityType.Valid() {
		return nil, syncerr.New(syncerr.KindValidation, op, "unknown entity type %q", entityType)
	}
	since, err := o.metadata.GetSyncToken(ctx, entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync token: %w", err)
	}

	fctx, cancel := context.WithTimeout(ctx, o.network.Strategy().Timeout)
	defer cancel()
	fetched, err := o.transport.Fetch(fctx, entityType, since)
	if err != nil {
		return nil, err
	}

	out := &PullResult{Fetched: len(fetched.Entities), Token: since}
	for _, remote := range fetched.Entities {
		if err := validation.ValidateEntity(remote); err != nil || remote.Type != entityType {
			o.logger.Warn("Skipping invalid remote entity", "entity_type", entityType, "error", err)
			out.Skipped++
			continue
		}
		if err := o.applyRemote(ctx, remote, out); err != nil {
			return out, err
		}
	}

	if fetched.Token > since {
		if err := o.metadata.SaveSyncToken(ctx, entityType, fetched.Token); err != nil {
			return out, fmt.Errorf("failed to save sync token: %w", err)
		}
		out.Token = fetched.Token
	}

	o.logger.Info("Pulled remote changes",
		"entity_type", entityType,
		"fetched", out.Fetched,
		"applied", out.Applied,
		"conflicts", out.Conflicts,
		"token", out.Token)
	return out, nil
}

func (o *Orchestrator) applyRemote(ctx context.Context, remote *models.SyncEntity, out *PullResult) error {
	unlock, err := o.locks.Lock(ctx, remote.ID)
	if err != nil {
		return fmt.Errorf("failed to lock entity: %w", err)
	}
	defer unlock()

	local, err := o.entities.LoadEntity(ctx, remote.ID)
	switch {
	case errors.Is(err, storage.ErrEntityNotFound):
		out.Applied++
		return o.saveRemote(ctx, remote)
	case err != nil:
		return fmt.Errorf("failed to load local entity: %w", err)
	}

	if local.ContentEqual(remote) {
		if remote.Version > local.Version {
			out.Applied++
			return o.saveRemote(ctx, remote)
		}
		return nil
	}
	if remote.Version > local.Version && !o.dirty(ctx, local) {
		out.Applied++
		return o.saveRemote(ctx, remote)
	}

	res, err := o.reconcile(ctx, local, remote, pullPriority(remote.Type))
	if err != nil {
		return err
	}
	if res != nil {
		out.Conflicts++
		out.Resolutions = append(out.Resolutions, *res)
	}
	return nil
}

// dirty сообщает, есть ли у локальной копии изменения, не подтвержденные сервером
func (o *Orchestrator) dirty(ctx context.Context, local *models.SyncEntity) bool {
	if o.queue.HasPending(local.ID) {
		return true
	}
	return o.syncedVersion(ctx, local.ID) < local.Version
}

// pullPriority приоритет разрешения конфликтов, найденных при получении изменений
func pullPriority(et models.EntityType) models.Priority {
	if et == models.EntityCrisisPlan {
		return models.PriorityHigh
	}
	return models.PriorityNormal
}
