package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/carekeeper/internal/server/handlers"
	"github.com/iudanet/carekeeper/internal/server/kv"
	"github.com/iudanet/carekeeper/pkg/api"
)

// HeaderReplayed выставляется на ответах, взятых из хранилища
const HeaderReplayed = "Idempotent-Replayed"

// DefaultIdempotencyTTL время хранения ответов
const DefaultIdempotencyTTL = 24 * time.Hour

// storedResponse сохраненный ответ на пакет
type storedResponse struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
	Status      int    `json:"status"`
}

// captureWriter пишет ответ клиенту и одновременно запоминает его
type captureWriter struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.body.Write(b)
	return cw.ResponseWriter.Write(b)
}

// IdempotencyMiddleware повторно отдает успешный ответ на POST с уже виденным
// Idempotency-Key того же пользователя. Должен стоять после AuthMiddleware.
// Ошибки хранилища не мешают обработке запроса.
func IdempotencyMiddleware(store kv.Store, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idemKey := r.Header.Get(api.HeaderIdempotencyKey)
			userID, ok := handlers.GetUserID(r.Context())
			if r.Method != http.MethodPost || idemKey == "" || !ok {
				next.ServeHTTP(w, r)
				return
			}
			key := "idem:" + userID + ":" + r.URL.Path + ":" + idemKey

			raw, err := store.Get(r.Context(), key)
			switch {
			case err == nil:
				var resp storedResponse
				if jerr := json.Unmarshal(raw, &resp); jerr == nil {
					logger.Info("Replaying stored response", "user_id", userID, "path", r.URL.Path)
					if resp.ContentType != "" {
						w.Header().Set("Content-Type", resp.ContentType)
					}
					w.Header().Set(HeaderReplayed, "true")
					w.WriteHeader(resp.Status)
					_, _ = w.Write(resp.Body)
					return
				}
				logger.Warn("Corrupted stored response", "user_id", userID)
			case !errors.Is(err, kv.ErrMiss):
				logger.Warn("Idempotency store unavailable", "error", err)
			}

			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(cw, r)

			if cw.status < 200 || cw.status >= 300 {
				return
			}
			raw, err = json.Marshal(storedResponse{
				ContentType: cw.Header().Get("Content-Type"),
				Body:        cw.body.Bytes(),
				Status:      cw.status,
			})
			if err != nil {
				return
			}
			// запрос уже обработан: сохраняем даже если клиент отключился
			if err := store.Set(context.WithoutCancel(r.Context()), key, raw, ttl); err != nil {
				logger.Warn("Failed to store response", "user_id", userID, "error", err)
			}
		})
	}
}
