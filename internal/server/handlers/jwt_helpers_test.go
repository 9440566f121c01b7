package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/carekeeper/internal/models"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{Secret: []byte("test-secret-key-for-devices"), TokenTTL: time.Hour}
}

func TestIssueAndValidateDeviceToken(t *testing.T) {
	cfg := testJWTConfig()

	token, expiresAt, err := IssueDeviceToken(cfg, "user-1", "device-a", models.TierClinical)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := ValidateDeviceToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "device-a", claims.DeviceID)
	assert.Equal(t, models.TierClinical, claims.Tier)
	assert.Equal(t, DefaultIssuer, claims.Issuer)
}

func TestIssueDeviceToken_DefaultsToFreeTier(t *testing.T) {
	cfg := testJWTConfig()

	token, _, err := IssueDeviceToken(cfg, "user-1", "device-a", "")
	require.NoError(t, err)

	claims, err := ValidateDeviceToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, claims.Tier)
}

func TestIssueDeviceToken_Errors(t *testing.T) {
	tests := []struct {
		cfg      JWTConfig
		name     string
		userID   string
		deviceID string
	}{
		{name: "no user", cfg: testJWTConfig(), deviceID: "device-a"},
		{name: "no device", cfg: testJWTConfig(), userID: "user-1"},
		{name: "no secret", cfg: JWTConfig{TokenTTL: time.Hour}, userID: "user-1", deviceID: "device-a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := IssueDeviceToken(tt.cfg, tt.userID, tt.deviceID, models.TierFree)
			assert.Error(t, err)
		})
	}
}

func TestValidateDeviceToken_Rejects(t *testing.T) {
	cfg := testJWTConfig()

	expired, _, err := IssueDeviceToken(JWTConfig{Secret: cfg.Secret, TokenTTL: -time.Minute}, "user-1", "device-a", models.TierFree)
	require.NoError(t, err)

	otherSecret, _, err := IssueDeviceToken(JWTConfig{Secret: []byte("another-secret"), TokenTTL: time.Hour}, "user-1", "device-a", models.TierFree)
	require.NoError(t, err)

	otherIssuer, _, err := IssueDeviceToken(JWTConfig{Secret: cfg.Secret, TokenTTL: time.Hour, Issuer: "someone-else"}, "user-1", "device-a", models.TierFree)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, DeviceClaims{
		UserID:           "user-1",
		DeviceID:         "device-a",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: DefaultIssuer},
	}).SignedString(cfg.Secret)
	require.NoError(t, err)

	noDevice, err := jwt.NewWithClaims(jwt.SigningMethodHS256, DeviceClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    DefaultIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(cfg.Secret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "expired", token: expired},
		{name: "wrong secret", token: otherSecret},
		{name: "wrong issuer", token: otherIssuer},
		{name: "no expiry", token: noExpiry},
		{name: "no device identity", token: noDevice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateDeviceToken(cfg, tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}
