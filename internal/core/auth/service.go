// internal/core/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserStore          = errors.New("error querying the user store")
	ErrInvalidToken       = errors.New("invalid or expired session")
	ErrMissingSecret      = errors.New("jwt secret is not configured")
)

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
	Validate(token string) (Claims, error)
}

// Claims are the session facts carried in the token.
type Claims struct {
	Username string
	Roles    []string
}

type service struct {
	users     UserSource
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewService(users UserSource, jwtSecret []byte, ttl time.Duration) (Service, error) {
	if len(jwtSecret) == 0 {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &service{users: users, jwtSecret: jwtSecret, ttl: ttl, now: time.Now}, nil
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	// 1. Find the user.
	user, err := s.users.FindUser(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUserStore, err)
	}

	// 2. Compare the password with the stored hash.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	// 3. Issue the session token.
	claims := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": user.Username,
		"roles":    user.Roles,
		"exp":      s.now().Add(s.ttl).Unix(),
	})
	token, err := claims.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

func (s *service) Validate(token string) (Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	username, _ := mc["username"].(string)
	if username == "" {
		return Claims{}, ErrInvalidToken
	}
	out := Claims{Username: username}
	if roles, ok := mc["roles"].([]any); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok {
				out.Roles = append(out.Roles, s)
			}
		}
	}
	return out, nil
}
