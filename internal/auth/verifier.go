package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"portfolio-service/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrUnauthorized = errors.New("unauthorized")

// Verifier decides whether a presented credential grants admin access.
type Verifier interface {
	Verify(ctx context.Context, credential string) error
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// SecretVerifier compares the credential with a shared secret in constant time.
type SecretVerifier struct {
	secret []byte
}

func NewSecretVerifier(secret string) *SecretVerifier {
	return &SecretVerifier{secret: []byte(secret)}
}

func (v *SecretVerifier) Verify(_ context.Context, credential string) error {
	if credential == "" || len(v.secret) == 0 {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(credential), v.secret) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// BcryptVerifier checks the credential against a bcrypt hash of the secret,
// so the plain secret never sits in configuration.
type BcryptVerifier struct {
	hash []byte
}

func NewBcryptVerifier(hash string) *BcryptVerifier {
	return &BcryptVerifier{hash: []byte(hash)}
}

func (v *BcryptVerifier) Verify(_ context.Context, credential string) error {
	if credential == "" {
		return ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(credential)); err != nil {
		return ErrUnauthorized
	}
	return nil
}

const adminSubject = "admin"

// JWTVerifier accepts HS256 tokens with subject "admin" that have not expired.
type JWTVerifier struct {
	key []byte
}

func NewJWTVerifier(key string) *JWTVerifier {
	return &JWTVerifier{key: []byte(key)}
}

func (v *JWTVerifier) Verify(_ context.Context, credential string) error {
	if credential == "" {
		return ErrUnauthorized
	}

	token, err := jwt.ParseWithClaims(credential, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return v.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return ErrUnauthorized
	}
	return nil
}

// Issue signs an admin token valid for ttl.
func (v *JWTVerifier) Issue(ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.key)
}

// NewFromConfig builds the verifier selected by admin.mode.
func NewFromConfig(cfg config.AdminConfig) (Verifier, error) {
	switch cfg.Mode {
	case "", "secret":
		return NewSecretVerifier(cfg.Secret), nil
	case "bcrypt":
		if _, err := bcrypt.Cost([]byte(cfg.SecretHash)); err != nil {
			return nil, fmt.Errorf("invalid admin secret hash: %w", err)
		}
		return NewBcryptVerifier(cfg.SecretHash), nil
	case "jwt":
		return NewJWTVerifier(cfg.JWTSecret), nil
	default:
		return nil, fmt.Errorf("unknown admin verifier mode %q", cfg.Mode)
	}
}
