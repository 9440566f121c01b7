package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/server/handlers"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testJWTConfig() handlers.JWTConfig {
	return handlers.JWTConfig{Secret: []byte("test-secret-key"), TokenTTL: 15 * time.Minute}
}

func withIdentity(r *http.Request, userID string, tier models.Tier) *http.Request {
	ctx := handlers.WithIdentity(r.Context(), &handlers.DeviceClaims{UserID: userID, DeviceID: "device-a", Tier: tier})
	return r.WithContext(ctx)
}

func okHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
