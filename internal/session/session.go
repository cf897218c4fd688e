// Package session issues and validates users' sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

//go:generate mockgen -destination=./mock/session.go -package=mock -source=session.go

// ErrNotFound is returned when session is expired or revoked.
var ErrNotFound = errors.New("session not found")

// ErrInvalidToken is returned when token can not be verified.
var ErrInvalidToken = errors.New("invalid token")

// Session ...
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// Store keeps active sessions.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Manager creates sessions and resolves tokens to them.
type Manager interface {
	Create(ctx context.Context, userID string) (string, *Session, error)
	Lookup(ctx context.Context, token string) (*Session, error)
	Revoke(ctx context.Context, token string) error
}

type manager struct {
	secret []byte
	ttl    time.Duration
	store  Store
	now    func() time.Time
}

// NewManager creates new instance of Manager.
func NewManager(secret []byte, ttl time.Duration, store Store) Manager {
	return manager{
		secret: secret,
		ttl:    ttl,
		store:  store,
		now:    time.Now,
	}
}

func (m manager) Create(ctx context.Context, userID string) (string, *Session, error) {
	now := m.now()

	s := Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        s.ID,
		Subject:   s.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := m.store.Save(ctx, &s); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}

	return token, &s, nil
}

func (m manager) Lookup(ctx context.Context, token string) (*Session, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}

	s, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if s.UserID != claims.Subject {
		return nil, ErrInvalidToken
	}

	return s, nil
}

func (m manager) Revoke(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		return err
	}

	if err := m.store.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (m manager) parse(token string) (*jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims

	if _, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
