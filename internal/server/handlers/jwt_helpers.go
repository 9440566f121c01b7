package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/carekeeper/internal/models"
)

// DefaultIssuer издатель токенов устройств
const DefaultIssuer = "carekeeper"

// DeviceClaims представляет JWT claims устройства
type DeviceClaims struct {
	UserID   string      `json:"user_id"`
	DeviceID string      `json:"device_id"`
	Tier     models.Tier `json:"tier"`
	jwt.RegisteredClaims
}

// JWTConfig содержит конфигурацию для JWT
type JWTConfig struct {
	Issuer   string
	Secret   []byte
	TokenTTL time.Duration
}

// IssueDeviceToken создает JWT для устройства пользователя.
// Возвращает токен и время его истечения.
func IssueDeviceToken(cfg JWTConfig, userID, deviceID string, tier models.Tier) (string, time.Time, error) {
	if userID == "" || deviceID == "" {
		return "", time.Time{}, errors.New("user id and device id are required")
	}
	if len(cfg.Secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret is empty")
	}
	if tier == "" {
		tier = models.TierFree
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}

	now := time.Now()
	expiresAt := now.Add(cfg.TokenTTL)

	claims := DeviceClaims{
		UserID:   userID,
		DeviceID: deviceID,
		Tier:     tier,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateDeviceToken валидирует и парсит JWT устройства
func ValidateDeviceToken(cfg JWTConfig, tokenString string) (*DeviceClaims, error) {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}

	token, err := jwt.ParseWithClaims(tokenString, &DeviceClaims{}, func(token *jwt.Token) (any, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*DeviceClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" || claims.DeviceID == "" {
		return nil, errors.New("token has no device identity")
	}

	return claims, nil
}
