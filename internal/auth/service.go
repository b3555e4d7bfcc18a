// Package auth validates the bearer tokens the API accepts. Tokens are
// HS256 JWTs carrying the user id; issuing them for real sign-ins happens
// outside this service, IssueToken exists for operators and tests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shaygp/boxd/internal/models"
)

const DefaultTokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by a boxd token
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and validates tokens with one shared secret
type Service struct {
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewService(jwtSecret []byte) *Service {
	return &Service{jwtSecret: jwtSecret, ttl: DefaultTokenTTL, now: time.Now}
}

// IssueToken signs a token for user valid for ttl (DefaultTokenTTL when zero)
func (s *Service) IssueToken(user *models.User, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken checks signature and expiry and returns the claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
