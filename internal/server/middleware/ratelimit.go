package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/reliability"
	"github.com/iudanet/carekeeper/internal/server/handlers"
	"github.com/iudanet/carekeeper/internal/syncerr"
	"github.com/iudanet/carekeeper/pkg/api"
)

// RateLimitMiddleware ограничивает частоту запросов по пользователю и уровню подписки.
// Должен стоять после AuthMiddleware; запросы без пользователя ограничиваются по IP
// с лимитом free. Пакеты с кризисным приоритетом не ограничиваются.
func RateLimitMiddleware(limiter *reliability.RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := handlers.GetUserID(r.Context())
			if !ok {
				key = "ip:" + getClientIP(r)
			}
			tier := handlers.GetTier(r.Context())
			priority := requestPriority(r)

			d := limiter.Allow(key, tier, priority)
			if !d.Allowed {
				logger.Warn("Rate limit exceeded",
					"key", key,
					"tier", tier,
					"method", r.Method,
					"path", r.URL.Path,
					"retry_after", d.RetryAfter,
				)

				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				writeError(w, http.StatusTooManyRequests, syncerr.KindResourceExhaustion, "rate limit exceeded, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requestPriority приоритет пакета из заголовка, по умолчанию normal
func requestPriority(r *http.Request) models.Priority {
	p, err := models.ParsePriority(r.Header.Get(api.HeaderPriority))
	if err != nil {
		return models.PriorityNormal
	}
	return p
}

// getClientIP извлекает IP адрес клиента из запроса
// Проверяет заголовки X-Forwarded-For и X-Real-IP для прокси
func getClientIP(r *http.Request) string {
	// Берем первый IP из списка (реальный клиент)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}
