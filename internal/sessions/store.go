package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"legal-lens/internal/analysis"
	"legal-lens/internal/llm"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Session holds the credential a user entered for the lifetime of one
// interactive session. It is never persisted.
type Session struct {
	ID         string         `json:"sessionId"`
	Credential llm.Credential `json:"-"`
	Mode       analysis.Mode  `json:"mode"`
	CreatedAt  time.Time      `json:"createdAt"`
	ExpiresAt  time.Time      `json:"expiresAt"`
}

// Store keeps sessions in process memory with a fixed TTL.
type Store struct {
	items *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewStore constructs a Store. Expired entries are swept every ttl.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		items: cache.New(ttl, ttl),
		ttl:   ttl,
		now:   time.Now,
	}
}

// TTL returns the session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create opens a session for cred. The analysis mode is fixed here.
func (s *Store) Create(ctx context.Context, cred llm.Credential) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	cred = cred.Normalize()
	now := s.now().UTC()
	sess := Session{
		ID:         uuid.NewString(),
		Credential: cred,
		Mode:       analysis.ResolveMode(cred),
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}
	s.items.Set(sess.ID, sess, s.ttl)
	return sess, nil
}

// Get returns a live session.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	if id == "" {
		return Session{}, ErrNotFound
	}
	raw, ok := s.items.Get(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	sess, ok := raw.(Session)
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// Delete tears a session down. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.items.Delete(id)
	return nil
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	return s.items.ItemCount()
}
