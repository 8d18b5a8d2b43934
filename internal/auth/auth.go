package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ivmarkin/veridoc/internal/core/domain"
)

// TokenManager signs and verifies HS256 access tokens carrying the user id
// as subject.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) Issue(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(m.ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify returns the user id from a valid token.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", domain.WrapError(domain.ErrUnauthorized, "verify token", fmt.Errorf("invalid token: %w", err))
	}
	if !parsed.Valid {
		return "", domain.WrapError(domain.ErrUnauthorized, "verify token", errors.New("invalid token"))
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", domain.WrapError(domain.ErrUnauthorized, "verify token", fmt.Errorf("token has no subject"))
	}
	return subject, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return domain.WrapError(domain.ErrUnauthorized, "check password", fmt.Errorf("password mismatch"))
	}
	return nil
}
