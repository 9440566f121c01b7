package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/server/storage"
	"github.com/iudanet/carekeeper/internal/syncerr"
	"github.com/iudanet/carekeeper/internal/validation"
	"github.com/iudanet/carekeeper/pkg/api"
)

// MaxBatchSize максимальное количество операций в одном пакете
const MaxBatchSize = 500

// maxBodyBytes ограничение размера тела запроса
const maxBodyBytes = 8 << 20

// Sequencer выдает серверную последовательность для принятых записей
type Sequencer interface {
	Tick() int64
	Now() int64
}

//go:generate moq -out changenotifier_mock.go . ChangeNotifier

// ChangeNotifier уведомляет другие устройства пользователя об изменениях
type ChangeNotifier interface {
	NotifyChanged(userID string, entityTypes []models.EntityType, sequence int64) error
}

// SyncHandler handles synchronization requests
type SyncHandler struct {
	logger   *slog.Logger
	storage  storage.EntityStorage
	clock    Sequencer
	notifier ChangeNotifier
	now      func() time.Time
	// пакеты применяются по одному: проверка версии и запись атомарны
	writeMu sync.Mutex
}

// NewSyncHandler creates a new sync handler. notifier may be nil.
func NewSyncHandler(logger *slog.Logger, store storage.EntityStorage, clock Sequencer, notifier ChangeNotifier) *SyncHandler {
	return &SyncHandler{
		logger:   logger,
		storage:  store,
		clock:    clock,
		notifier: notifier,
		now:      time.Now,
	}
}

// verdict итог сравнения входящей версии с сохраненной
type verdict int

const (
	verdictAccept verdict = iota
	verdictNoop
	verdictConflict
)

// decide применяет правило версий: принимается только версия больше сохраненной,
// та же версия с тем же содержимым - повтор, все остальное - конфликт.
// Изменение, сделанное не от сохраненной версии, конфликтует, если ее записало
// другое устройство: цепочка правок одного устройства проходит без подтверждений.
func decide(stored, incoming *models.SyncEntity, baseVersion int64, deviceID string) verdict {
	switch {
	case stored == nil:
		return verdictAccept
	case incoming.Version == stored.Version && stored.ContentEqual(incoming):
		return verdictNoop
	case incoming.Version <= stored.Version:
		return verdictConflict
	case baseVersion != stored.Version && stored.DeviceID != deviceID:
		return verdictConflict
	default:
		return verdictAccept
	}
}

// HandleSubmit обрабатывает POST /api/v1/sync/submit
func (h *SyncHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, syncerr.KindValidation, "method not allowed")
		return
	}

	ctx := r.Context()
	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.Warn("Unauthorized sync attempt: no user_id in context")
		writeError(w, http.StatusUnauthorized, syncerr.KindSecurity, "unauthorized")
		return
	}
	deviceID, _ := GetDeviceID(ctx)

	var req api.SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode submit request", "error", err)
		writeError(w, http.StatusBadRequest, syncerr.KindValidation, "invalid request body")
		return
	}
	if len(req.Operations) > MaxBatchSize {
		writeError(w, http.StatusBadRequest, syncerr.KindValidation, "batch exceeds "+strconv.Itoa(MaxBatchSize)+" operations")
		return
	}
	if req.DeviceID != "" && deviceID != "" && req.DeviceID != deviceID {
		h.logger.Warn("Device id mismatch", "user_id", userID, "token_device", deviceID, "request_device", req.DeviceID)
		writeError(w, http.StatusForbidden, syncerr.KindSecurity, "device id does not match token")
		return
	}

	resp := api.SubmitResponse{
		Processed: []string{},
		Failed:    []api.FailedOperation{},
		Conflicts: []api.Conflict{},
	}
	var changed []models.EntityType

	h.writeMu.Lock()
	for _, apiOp := range req.Operations {
		res := h.apply(ctx, userID, deviceID, apiOp)
		switch {
		case res.err != nil:
			kind := syncerr.KindOf(res.err)
			h.logger.Warn("Operation rejected",
				"user_id", userID,
				"operation_id", apiOp.ID,
				"kind", kind,
				"error", res.err)
			resp.Failed = append(resp.Failed, api.FailedOperation{
				OperationID: apiOp.ID,
				Kind:        string(kind),
				Error:       res.err.Error(),
			})
		case res.conflict != nil:
			resp.Conflicts = append(resp.Conflicts, api.Conflict{OperationID: apiOp.ID, Remote: *res.conflict})
		default:
			resp.Processed = append(resp.Processed, apiOp.ID)
			if res.changed != "" && !slices.Contains(changed, res.changed) {
				changed = append(changed, res.changed)
			}
		}
	}
	resp.Sequence = h.clock.Now()
	h.writeMu.Unlock()

	if len(changed) > 0 && h.notifier != nil {
		if err := h.notifier.NotifyChanged(userID, changed, resp.Sequence); err != nil {
			h.logger.Warn("Change notification failed", "user_id", userID, "error", err)
		}
	}

	writeJSON(h.logger, w, http.StatusOK, resp)

	h.logger.Info("Submit completed",
		"user_id", userID,
		"device_id", deviceID,
		"operations", len(req.Operations),
		"processed", len(resp.Processed),
		"conflicts", len(resp.Conflicts),
		"failed", len(resp.Failed),
		"sequence", resp.Sequence)
}

// applyResult итог применения одной операции
type applyResult struct {
	err      error
	conflict *api.Entity
	changed  models.EntityType // тип записи, если запись изменилась
}

// apply применяет одну операцию; вызывается под writeMu
func (h *SyncHandler) apply(ctx context.Context, userID, deviceID string, apiOp api.Operation) applyResult {
	const op = "apply operation"

	o, err := models.OperationFromAPI(apiOp)
	if err != nil {
		return applyResult{err: syncerr.Wrap(syncerr.KindValidation, op, err)}
	}
	if o.Entity != nil {
		switch o.Entity.UserID {
		case "":
			o.Entity.UserID = userID
		case userID:
		default:
			return applyResult{err: syncerr.New(syncerr.KindSecurity, op, "entity %s belongs to another user", o.EntityID)}
		}
		if o.Entity.DeviceID == "" {
			o.Entity.DeviceID = deviceID
		}
	}
	if err := validation.ValidateOperation(o); err != nil {
		return applyResult{err: err}
	}

	stored, err := h.storage.GetEntity(ctx, userID, o.EntityID)
	switch {
	case errors.Is(err, storage.ErrEntityNotFound):
		stored = nil
	case err != nil:
		return applyResult{err: syncerr.Wrap(syncerr.KindTransient, op, err)}
	}

	var incoming *models.SyncEntity
	switch o.Type {
	case models.OperationUpload, models.OperationResolveConflict:
		incoming = o.Entity
	case models.OperationDelete:
		incoming, err = h.tombstone(o, stored, deviceID)
		if err != nil {
			return applyResult{err: err}
		}
		if incoming == nil {
			return applyResult{}
		}
	case models.OperationDownload:
		return applyResult{err: syncerr.New(syncerr.KindValidation, op, "download operations are served by fetch")}
	}

	var current *models.SyncEntity
	base := o.BaseVersion
	if stored != nil {
		current = stored.Entity
		if current.Type != incoming.Type {
			return applyResult{err: syncerr.New(syncerr.KindValidation, op, "entity %s is stored as %s", o.EntityID, current.Type)}
		}
		if o.Type == models.OperationDelete && o.Entity == nil {
			// tombstone построен от сохраненной версии
			base = current.Version
		}
	}

	switch decide(current, incoming, base, deviceID) {
	case verdictNoop:
		return applyResult{}
	case verdictConflict:
		remote := toAPIEntity(stored)
		h.logger.Debug("Version conflict",
			"entity_id", o.EntityID,
			"stored_version", current.Version,
			"incoming_version", incoming.Version,
			"base_version", base)
		return applyResult{conflict: &remote}
	}

	rec := &storage.Record{Entity: incoming, Seq: h.clock.Tick()}
	if err := h.storage.PutEntity(ctx, rec); err != nil {
		return applyResult{err: syncerr.Wrap(syncerr.KindTransient, op, err)}
	}
	h.logger.Debug("Entity accepted",
		"entity_id", incoming.ID,
		"version", incoming.Version,
		"deleted", incoming.Deleted,
		"seq", rec.Seq)
	return applyResult{changed: incoming.Type}
}

// tombstone строит удаленную версию записи. nil - удалять нечего.
func (h *SyncHandler) tombstone(o *models.Operation, stored *storage.Record, deviceID string) (*models.SyncEntity, error) {
	if o.Entity != nil {
		if o.Entity.ID != o.EntityID {
			return nil, syncerr.New(syncerr.KindValidation, "delete", "operation %s carries entity %s", o.ID, o.Entity.ID)
		}
		if err := validation.ValidateEntity(o.Entity); err != nil {
			return nil, err
		}
		t := o.Entity.Clone()
		t.Deleted = true
		return t, nil
	}
	if stored == nil || stored.Entity.Deleted {
		return nil, nil
	}
	t := stored.Entity.Clone()
	t.Deleted = true
	t.Version++
	t.LastModified = h.now().UTC()
	if deviceID != "" {
		t.DeviceID = deviceID
	}
	return t, nil
}

// HandleFetch обрабатывает GET /api/v1/sync/fetch?type=&since=
func (h *SyncHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, syncerr.KindValidation, "method not allowed")
		return
	}

	ctx := r.Context()
	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.Warn("Unauthorized fetch attempt: no user_id in context")
		writeError(w, http.StatusUnauthorized, syncerr.KindSecurity, "unauthorized")
		return
	}

	entityType, err := models.ParseEntityType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, syncerr.KindValidation, err.Error())
		return
	}

	var since int64
	if s := r.URL.Query().Get("since"); s != "" {
		since, err = strconv.ParseInt(s, 10, 64)
		if err != nil || since < 0 {
			h.logger.Warn("Invalid since parameter", "since", s, "error", err)
			writeError(w, http.StatusBadRequest, syncerr.KindValidation, "invalid 'since' parameter")
			return
		}
	}

	records, err := h.storage.ListSince(ctx, userID, entityType, since)
	if err != nil {
		h.logger.Error("Failed to list entities", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, syncerr.KindTransient, "internal server error")
		return
	}

	resp := api.FetchResponse{Entities: make([]api.Entity, 0, len(records)), Token: since}
	for _, rec := range records {
		resp.Entities = append(resp.Entities, toAPIEntity(rec))
		resp.Token = max(resp.Token, rec.Seq)
	}

	writeJSON(h.logger, w, http.StatusOK, resp)

	h.logger.Info("Fetch completed",
		"user_id", userID,
		"entity_type", entityType,
		"since", since,
		"returned", len(resp.Entities),
		"token", resp.Token)
}

func toAPIEntity(rec *storage.Record) api.Entity {
	e := rec.Entity.ToAPI()
	e.Seq = rec.Seq
	return e
}

func writeJSON(logger *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError пишет ответ с ошибкой и ее классом
func writeError(w http.ResponseWriter, status int, kind syncerr.Kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: msg, Kind: string(kind)})
}
