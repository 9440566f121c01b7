package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/carekeeper/pkg/api"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Health(t *testing.T) {
	healthy := pingFunc(func(context.Context) error { return nil })
	broken := pingFunc(func(context.Context) error { return errors.New("database is closed") })

	tests := []struct {
		db          Pinger
		name        string
		query       string
		wantStatus  int
		wantState   string
		wantPadding int
	}{
		{name: "no database", wantStatus: http.StatusOK, wantState: "ok"},
		{name: "healthy database", db: healthy, wantStatus: http.StatusOK, wantState: "ok"},
		{name: "probe padding", db: healthy, query: "?probe_bytes=1024", wantStatus: http.StatusOK, wantState: "ok", wantPadding: 1024},
		{name: "padding is bounded", query: "?probe_bytes=10000000", wantStatus: http.StatusOK, wantState: "ok", wantPadding: MaxProbeBytes},
		{name: "invalid padding ignored", query: "?probe_bytes=lots", wantStatus: http.StatusOK, wantState: "ok"},
		{name: "database down", db: broken, wantStatus: http.StatusServiceUnavailable, wantState: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(setupTestLogger(), tt.db)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/health"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.Health(w, req)

			resp := w.Result()
			defer func() {
				assert.NoError(t, resp.Body.Close())
			}()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var healthResp api.HealthResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&healthResp))
			assert.Equal(t, tt.wantState, healthResp.Status)
			assert.Len(t, healthResp.Padding, tt.wantPadding)
			assert.False(t, healthResp.Time.IsZero())
		})
	}
}
