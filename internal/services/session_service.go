package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agrihub/internal/models"
	"agrihub/internal/redis"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionStore persists login sessions and their flash messages. *redis.Client satisfies it.
type SessionStore interface {
	SetSession(ctx context.Context, sessionID string, data *redis.SessionData, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
	TouchSession(ctx context.Context, sessionID string, ttl time.Duration) error
	DeleteSession(ctx context.Context, sessionID string) error
	PushFlash(ctx context.Context, sessionID, message string, ttl time.Duration) error
	PopFlashes(ctx context.Context, sessionID string) ([]string, error)
}

// Session is a live login.
type Session struct {
	ID       string
	UserID   uint
	Username string
	Roles    []string
}

func (s *Session) Actor() Actor {
	return Actor{UserID: s.UserID, Username: s.Username, Roles: s.Roles}
}

// LoginResult carries the bearer token. ExpiresAt is when the session lapses if it is never used again.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type sessionClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

type SessionService interface {
	Login(ctx context.Context, user *models.User) (*LoginResult, error)
	Authenticate(ctx context.Context, token string) (*Session, error)
	Logout(ctx context.Context, sessionID string) error
	Flash(ctx context.Context, sessionID, message string) error
	PopFlashes(ctx context.Context, sessionID string) ([]string, error)
}

type sessionService struct {
	store    SessionStore
	secret   []byte
	ttl      time.Duration
	flashTTL time.Duration
}

func NewSessionService(store SessionStore, secret string, ttl, flashTTL time.Duration) SessionService {
	return &sessionService{
		store:    store,
		secret:   []byte(secret),
		ttl:      ttl,
		flashTTL: flashTTL,
	}
}

// Login opens a session for an already authenticated user and returns a token naming it.
func (s *sessionService) Login(ctx context.Context, user *models.User) (*LoginResult, error) {
	sessionID := uuid.NewString()
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	roles := make([]string, 0, len(user.Groups))
	for _, g := range user.Groups {
		roles = append(roles, g.Name)
	}

	data := &redis.SessionData{
		UserID:    user.ID,
		Username:  user.Username,
		Roles:     roles,
		CreatedAt: now,
	}
	if err := s.store.SetSession(ctx, sessionID, data, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	// No exp claim: the Redis session TTL decides expiry and slides on every request.
	claims := sessionClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       sessionID,
			Subject:  user.Username,
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   "agrihub",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate resolves a bearer token to its live session and extends the session's lifetime.
func (s *sessionService) Authenticate(ctx context.Context, token string) (*Session, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", ErrAuthorizationRequired)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("token has no session: %w", ErrAuthorizationRequired)
	}

	data, err := s.store.GetSession(ctx, claims.ID)
	if errors.Is(err, redis.ErrSessionNotFound) {
		return nil, fmt.Errorf("session expired: %w", ErrAuthorizationRequired)
	}
	if err != nil {
		return nil, err
	}
	if data.UserID != claims.UserID {
		return nil, fmt.Errorf("session does not match token: %w", ErrAuthorizationRequired)
	}

	if err := s.store.TouchSession(ctx, claims.ID, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	return &Session{
		ID:       claims.ID,
		UserID:   data.UserID,
		Username: data.Username,
		Roles:    data.Roles,
	}, nil
}

func (s *sessionService) Logout(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *sessionService) Flash(ctx context.Context, sessionID, message string) error {
	return s.store.PushFlash(ctx, sessionID, message, s.flashTTL)
}

func (s *sessionService) PopFlashes(ctx context.Context, sessionID string) ([]string, error) {
	messages, err := s.store.PopFlashes(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []string{}
	}
	return messages, nil
}
