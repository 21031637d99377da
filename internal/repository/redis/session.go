package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/formlab/formgen/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// SessionStore persists browser sessions in Redis. Sessions expire after
// the configured TTL; every save refreshes the expiry.
type SessionStore struct {
	client *Client
	ttl    time.Duration
}

// NewSessionStore creates a new session store
func NewSessionStore(client *Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionPrefix + id
}

// Create starts a new empty session with a fresh opaque id
func (s *SessionStore) Create(ctx context.Context) (*domain.Session, error) {
	session := &domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
	if err := s.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get retrieves a session by id; returns (nil, nil) for unknown or expired
// ids, matching the repositories' not-found convention
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.client.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Save writes a session and refreshes its TTL
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.rdb.Set(ctx, sessionKey(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes a session
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
