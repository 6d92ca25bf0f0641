package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pubrepo-backend/pkg/cache"
)

// Session is the record behind one admin cookie.
type Session struct {
	ID        string    `json:"id"`
	AdminID   uuid.UUID `json:"admin_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the external session collaborator: create on login, get (with
// sliding expiry) on every gated request, destroy on logout.
type Store interface {
	Create(ctx context.Context, adminID uuid.UUID, email, role string) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Destroy(ctx context.Context, sessionID string) error
}

const keyPrefix = "session:"

type redisStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRedisStore backs sessions with the shared cache port. ttl is the
// sliding window (24h in production config).
func NewRedisStore(c cache.Cache, ttl time.Duration) Store {
	return &redisStore{cache: c, ttl: ttl}
}

func (s *redisStore) Create(ctx context.Context, adminID uuid.UUID, email, role string) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		AdminID:   adminID,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.cache.Set(ctx, keyPrefix+sess.ID, sess, s.ttl); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *redisStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	var sess Session
	found, err := s.cache.Get(ctx, keyPrefix+sessionID, &sess)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	// Sliding expiry: every authenticated request pushes the window out.
	_ = s.cache.Expire(ctx, keyPrefix+sessionID, s.ttl)

	return &sess, nil
}

func (s *redisStore) Destroy(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, keyPrefix+sessionID)
}
