package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/carekeeper/internal/server/handlers"
	"github.com/iudanet/carekeeper/internal/syncerr"
)

// AuthMiddleware создает middleware для проверки JWT устройства
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Missing Authorization header", "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, syncerr.KindSecurity, "missing token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				logger.Warn("Invalid Authorization header format")
				writeError(w, http.StatusUnauthorized, syncerr.KindSecurity, "invalid token format")
				return
			}

			claims, err := handlers.ValidateDeviceToken(jwtConfig, tokenString)
			if err != nil {
				logger.Warn("Invalid device token", "error", err)
				writeError(w, http.StatusUnauthorized, syncerr.KindSecurity, "invalid token")
				return
			}

			logger.Debug("Device authenticated",
				"user_id", claims.UserID,
				"device_id", claims.DeviceID,
				"tier", claims.Tier)

			next.ServeHTTP(w, r.WithContext(handlers.WithIdentity(r.Context(), claims)))
		})
	}
}
