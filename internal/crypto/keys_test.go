package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSalt(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	assert.Len(t, salt, SaltSize, "salt должен быть %d bytes", SaltSize)

	other, err := GenerateSalt()
	require.NoError(t, err)
	assert.NotEqual(t, salt, other)
}

func TestDeriveVaultKey(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	tests := []struct {
		name       string
		passphrase string
		errMsg     string
		salt       []byte
		wantErr    bool
	}{
		{name: "valid", passphrase: "correct horse", salt: salt},
		{name: "empty passphrase", passphrase: "", salt: salt, wantErr: true, errMsg: "passphrase cannot be empty"},
		{name: "short salt", passphrase: "p", salt: salt[:8], wantErr: true, errMsg: "salt must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := DeriveVaultKey(tt.passphrase, tt.salt)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Len(t, key, Argon2KeyLen)

			// Детерминированность
			again, err := DeriveVaultKey(tt.passphrase, tt.salt)
			require.NoError(t, err)
			assert.Equal(t, key, again)
		})
	}
}

func TestDeriveVaultKeyFromBase64Salt(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	direct, err := DeriveVaultKey("pass", salt)
	require.NoError(t, err)

	fromB64, err := DeriveVaultKeyFromBase64Salt("pass", base64.StdEncoding.EncodeToString(salt))
	require.NoError(t, err)
	assert.Equal(t, direct, fromB64)

	_, err = DeriveVaultKeyFromBase64Salt("pass", "%%%")
	assert.Error(t, err)
}
