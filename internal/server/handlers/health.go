package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/carekeeper/pkg/api"
)

// MaxProbeBytes ограничение заполнения health-ответа
const MaxProbeBytes = 64 * 1024

// Pinger проверка доступности хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger *slog.Logger
	db     Pinger
	now    func() time.Time
}

// NewHealthHandler создает новый handler для health check. db may be nil.
func NewHealthHandler(logger *slog.Logger, db Pinger) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		db:     db,
		now:    time.Now,
	}
}

// Health обрабатывает GET /api/v1/health.
// Параметр probe_bytes добавляет заполнение для оценки пропускной способности клиентом.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthResponse{
		Status: "ok",
		Time:   h.now().UTC(),
	}

	if pb := r.URL.Query().Get("probe_bytes"); pb != "" {
		n, err := strconv.Atoi(pb)
		if err != nil || n < 0 {
			h.logger.Debug("Invalid probe_bytes", "value", pb)
			n = 0
		}
		resp.Padding = strings.Repeat("x", min(n, MaxProbeBytes))
	}

	status := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			h.logger.Error("Database health check failed", "error", err)
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(h.logger, w, status, resp)
}
