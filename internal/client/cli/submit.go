package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/carekeeper/internal/client/storage"
	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/syncerr"
)

// submitFile формат файла команды submit
type submitFile struct {
	Payload models.Payload    `json:"payload"`
	ID      string            `json:"id"` // ID пустой - новая запись
	Type    models.EntityType `json:"type"`
	Delete  bool              `json:"delete"`
}

// runSubmit читает запись из JSON файла и отправляет ее с указанным приоритетом.
// Версия на единицу больше локальной копии.
func (c *Cli) runSubmit(ctx context.Context, path string, priority models.Priority) error {
	const op = "submit"

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	var in submitFile
	if err := json.Unmarshal(data, &in); err != nil {
		return syncerr.Wrap(syncerr.KindValidation, op, fmt.Errorf("invalid entity file: %w", err))
	}
	if !in.Type.Valid() {
		return syncerr.New(syncerr.KindValidation, op, "unknown entity type %q", in.Type)
	}
	if in.ID == "" {
		if in.Delete {
			return syncerr.New(syncerr.KindValidation, op, "delete requires an entity id")
		}
		in.ID = uuid.NewString()
	}

	var version int64 = 1
	local, err := c.entities.LoadEntity(ctx, in.ID)
	switch {
	case errors.Is(err, storage.ErrEntityNotFound):
	case err != nil:
		return fmt.Errorf("failed to load local entity: %w", err)
	default:
		if local.Type != in.Type {
			return syncerr.New(syncerr.KindValidation, op, "entity %s is a %s", in.ID, local.Type)
		}
		version = local.Version + 1
	}

	var operation *models.Operation
	if in.Delete {
		operation = models.NewOperation(models.OperationDelete, nil, priority)
		operation.EntityID = in.ID
		operation.EntityType = in.Type
		operation.UserID = c.userID
	} else {
		if in.Payload == nil {
			in.Payload = models.Payload{}
		}
		sum, err := c.entities.Hash(in.Payload)
		if err != nil {
			return syncerr.Wrap(syncerr.KindValidation, op, err)
		}
		operation = models.NewOperation(models.OperationUpload, &models.SyncEntity{
			LastModified: time.Now().UTC(),
			Payload:      in.Payload,
			ID:           in.ID,
			Type:         in.Type,
			Checksum:     sum,
			DeviceID:     c.deviceID,
			UserID:       c.userID,
			Version:      version,
		}, priority)
	}

	out, err := c.service.SubmitSync(ctx, operation, priority)
	if err != nil {
		if d := syncerr.RetryAfter(err); d > 0 {
			return fmt.Errorf("%w (retry after %s)", err, d.Round(time.Second))
		}
		return err
	}

	c.io.Printf("Entity:    %s (%s)\n", in.ID, in.Type)
	c.io.Printf("Operation: %s %s, priority %s\n", operation.ID, operation.Type, priority)
	c.io.Printf("Status:    %s\n", out.Status)
	if out.Deduplicated {
		c.io.Println("(duplicate of a recent operation, result reused)")
	}
	if out.Resolution != nil {
		c.io.Printf("Conflict resolved with %s (confidence %.2f)\n", out.Resolution.StrategyUsed, out.Resolution.Confidence)
		if out.Resolution.ResolutionRequired {
			c.io.Printf("⚠️  Review required: %s\n", out.Resolution.Reason)
		}
	}
	return nil
}
