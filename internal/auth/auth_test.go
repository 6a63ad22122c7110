package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/energy-forecaster/internal/auth"
)

func TestService_GenerateAndValidate(t *testing.T) {
	svc := auth.NewService("test-secret", time.Hour)

	token, err := svc.GenerateToken("u-1", "testuser")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "testuser", claims.Username)
}

func TestService_ValidateToken_Errors(t *testing.T) {
	valid := auth.NewService("test-secret", time.Hour)
	other, _ := auth.NewService("other-secret", time.Hour).GenerateToken("u", "x")
	expired, _ := auth.NewService("test-secret", -time.Hour).GenerateToken("u", "x")
	foreign, _ := auth.NewService("test-secret", time.Hour).WithIssuer("someone-else").GenerateToken("u", "x")

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "invalid-token", auth.ErrInvalidToken},
		{"wrong secret", other, auth.ErrInvalidToken},
		{"expired", expired, auth.ErrExpiredToken},
		{"wrong issuer", foreign, auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := valid.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := auth.HashPassword("mypassword123")
	require.NoError(t, err)

	assert.True(t, auth.CheckPassword("mypassword123", hash))
	assert.False(t, auth.CheckPassword("wrongpassword", hash))
}
