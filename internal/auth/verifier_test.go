package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio-service/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Basic abc123", ""},
		{"abc123", ""},
		{"", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/contacts", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, BearerToken(req), "header %q", tt.header)
	}
}

func TestSecretVerifier(t *testing.T) {
	ctx := context.Background()
	v := NewSecretVerifier("s3cret")

	assert.NoError(t, v.Verify(ctx, "s3cret"))
	assert.ErrorIs(t, v.Verify(ctx, "wrong"), ErrUnauthorized)
	assert.ErrorIs(t, v.Verify(ctx, ""), ErrUnauthorized)
	assert.ErrorIs(t, NewSecretVerifier("").Verify(ctx, ""), ErrUnauthorized)
}

func TestBcryptVerifier(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	v := NewBcryptVerifier(string(hash))

	assert.NoError(t, v.Verify(ctx, "s3cret"))
	assert.ErrorIs(t, v.Verify(ctx, "wrong"), ErrUnauthorized)
	assert.ErrorIs(t, v.Verify(ctx, ""), ErrUnauthorized)
}

func TestJWTVerifier(t *testing.T) {
	ctx := context.Background()
	v := NewJWTVerifier("signing-key")

	t.Run("issued token is accepted", func(t *testing.T) {
		token, err := v.Issue(time.Minute)
		require.NoError(t, err)
		assert.NoError(t, v.Verify(ctx, token))
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token, err := v.Issue(-time.Minute)
		require.NoError(t, err)
		assert.ErrorIs(t, v.Verify(ctx, token), ErrUnauthorized)
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		token, err := NewJWTVerifier("other-key").Issue(time.Minute)
		require.NoError(t, err)
		assert.ErrorIs(t, v.Verify(ctx, token), ErrUnauthorized)
	})

	t.Run("wrong subject is rejected", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "visitor",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("signing-key"))
		require.NoError(t, err)
		assert.ErrorIs(t, v.Verify(ctx, token), ErrUnauthorized)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		assert.ErrorIs(t, v.Verify(ctx, "not-a-token"), ErrUnauthorized)
	})
}

func TestNewFromConfig(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	v, err := NewFromConfig(config.AdminConfig{Mode: "secret", Secret: "s3cret"})
	require.NoError(t, err)
	assert.IsType(t, &SecretVerifier{}, v)

	v, err = NewFromConfig(config.AdminConfig{Mode: "bcrypt", SecretHash: string(hash)})
	require.NoError(t, err)
	assert.IsType(t, &BcryptVerifier{}, v)

	v, err = NewFromConfig(config.AdminConfig{Mode: "jwt", JWTSecret: "k"})
	require.NoError(t, err)
	assert.IsType(t, &JWTVerifier{}, v)

	_, err = NewFromConfig(config.AdminConfig{Mode: "bcrypt", SecretHash: "plain"})
	assert.Error(t, err)

	_, err = NewFromConfig(config.AdminConfig{Mode: "oauth"})
	assert.Error(t, err)
}
