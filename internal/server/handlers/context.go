package handlers

import (
	"context"

	"github.com/iudanet/carekeeper/internal/models"
)

// contextKey тип для ключей контекста
type contextKey string

const (
	// UserIDKey ключ для хранения user_id в контексте
	UserIDKey contextKey = "user_id"
	// DeviceIDKey ключ для хранения device_id в контексте
	DeviceIDKey contextKey = "device_id"
	// TierKey ключ для хранения уровня подписки в контексте
	TierKey contextKey = "tier"
)

// WithIdentity кладет данные устройства из токена в контекст
func WithIdentity(ctx context.Context, claims *DeviceClaims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, DeviceIDKey, claims.DeviceID)
	return context.WithValue(ctx, TierKey, claims.Tier)
}

// GetUserID извлекает user_id из контекста запроса
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// GetDeviceID извлекает device_id из контекста запроса
func GetDeviceID(ctx context.Context) (string, bool) {
	deviceID, ok := ctx.Value(DeviceIDKey).(string)
	return deviceID, ok
}

// GetTier извлекает уровень подписки; без токена - free
func GetTier(ctx context.Context) models.Tier {
	if tier, ok := ctx.Value(TierKey).(models.Tier); ok && tier != "" {
		return tier
	}
	return models.TierFree
}
