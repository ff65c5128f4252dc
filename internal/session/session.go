package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	TTL    = 24 * time.Hour
	Cookie = "procurement_session"
)

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// Store keeps per-session state in Redis. Sessions are anonymous; the
// only thing a session carries is the id of the currently active
// compliance document.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func docKey(sessionID string) string {
	return "session:" + sessionID + ":compliance_doc"
}

// ActiveDocument returns the active compliance document id for a
// session, or "" when none is set.
func (s *Store) ActiveDocument(ctx context.Context, sessionID string) (string, error) {
	val, err := s.rdb.Get(ctx, docKey(sessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// SetActiveDocument makes docID the session's active compliance document.
func (s *Store) SetActiveDocument(ctx context.Context, sessionID, docID string) error {
	return s.rdb.Set(ctx, docKey(sessionID), docID, TTL).Err()
}

// ClearActiveDocument removes the session's active document pointer.
func (s *Store) ClearActiveDocument(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, docKey(sessionID)).Err()
}

// Pointer scopes the store to one session so the registry can read and
// clear the active document without knowing about sessions.
type Pointer struct {
	Store     *Store
	SessionID string
}

func (p Pointer) ActiveDocumentID(ctx context.Context) (string, error) {
	return p.Store.ActiveDocument(ctx, p.SessionID)
}

func (p Pointer) ClearActiveDocument(ctx context.Context, _ string) error {
	return p.Store.ClearActiveDocument(ctx, p.SessionID)
}
