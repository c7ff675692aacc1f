package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "regular password", password: "password123"},
		{name: "special characters", password: "p@ssw0rd!#$%"},
		{name: "short password", password: "pw1"},
		{name: "unicode password", password: "пароль密碼"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, 4)
			require.NoError(t, err)
			require.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)

			assert.True(t, VerifyPassword(hash, tt.password))
			assert.False(t, VerifyPassword(hash, tt.password+"x"))
		})
	}
}

func TestHashPassword_FreshSaltPerCall(t *testing.T) {
	first, err := HashPassword("same-input", 4)
	require.NoError(t, err)
	second, err := HashPassword("same-input", 4)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, VerifyPassword(first, "same-input"))
	assert.True(t, VerifyPassword(second, "same-input"))
}

func TestHashPassword_OutOfRangeCostFallsBack(t *testing.T) {
	hash, err := HashPassword("secret", 99)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "secret"))
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{name: "empty hash", hash: ""},
		{name: "garbage hash", hash: "not-a-bcrypt-hash"},
		{name: "truncated hash", hash: "$2a$10$short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, VerifyPassword(tt.hash, "whatever"))
		})
	}
}
