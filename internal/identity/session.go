// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/jobjump/internal/cache"
	"github.com/ManuGH/jobjump/internal/domain"
)

// ErrNoSession is returned when a session id is unknown or expired.
var ErrNoSession = errors.New("identity: no session")

const sessionKeyPrefix = "session:"

// Session is the server-side record behind the session cookie.
type Session struct {
	ID          string      `json:"id"`
	User        domain.User `json:"user"`
	AccessToken string      `json:"access_token"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

// Caller returns the backend caller for this session.
func (s Session) Caller() domain.Caller {
	return domain.Caller{UserID: s.User.ID, Token: s.AccessToken}
}

// SessionStore keeps sessions in a cache backend.
type SessionStore struct {
	cache cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionStore creates a store with the given lifetime.
func NewSessionStore(c cache.Cache, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{cache: c, ttl: ttl, now: time.Now}
}

// TTL is the session lifetime.
func (s *SessionStore) TTL() time.Duration { return s.ttl }

// Create stores a new session for user.
func (s *SessionStore) Create(ctx context.Context, user domain.User, accessToken string) (Session, error) {
	now := s.now()
	sess := Session{
		ID:          rand.Text(),
		User:        user,
		AccessToken: accessToken,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	if err := cache.SetJSON(ctx, s.cache, sessionKeyPrefix+sess.ID, sess, s.ttl); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// Get loads a session.
func (s *SessionStore) Get(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, ErrNoSession
	}
	sess, ok, err := cache.GetJSON[Session](ctx, s.cache, sessionKeyPrefix+id)
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	if !ok || !s.now().Before(sess.ExpiresAt) {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// UpdateUser replaces the cached user, keeping the original expiry.
func (s *SessionStore) UpdateUser(ctx context.Context, id string, user domain.User) (Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	sess.User = user
	remaining := sess.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return Session{}, ErrNoSession
	}
	if err := cache.SetJSON(ctx, s.cache, sessionKeyPrefix+id, sess, remaining); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// Delete removes a session. Unknown ids are ignored.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.cache.Delete(ctx, sessionKeyPrefix+id)
}

// Ping checks the backing cache.
func (s *SessionStore) Ping(ctx context.Context) error { return s.cache.Ping(ctx) }
