package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// payload is the server-side session record. Clients only ever hold the
// opaque session id; this structure never leaves the store.
type payload struct {
	UserID string `json:"user_id"`
	Active bool   `json:"active"`
}

// Store keeps session state in Redis, keyed by an opaque identifier. Redis
// is the single source of truth: expiry is enforced by key TTL and logout
// deletes the record synchronously.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a session store writing records with the given TTL.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Create mints a new session for the user and returns its id. Concurrent
// logins for the same user produce independent sessions.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}

	data, err := json.Marshal(payload{UserID: userID, Active: true})
	if err != nil {
		return "", err
	}

	if err := s.rdb.Set(ctx, keyPrefix+id, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to write session: %w", err)
	}
	return id, nil
}

// Resolve looks up a session id and returns the owning user id. A missing,
// expired, inactive, or corrupt record resolves as no session; an error is
// returned only when Redis itself is unreachable.
func (s *Store) Resolve(ctx context.Context, id string) (string, bool, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session: %w", err)
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return "", false, nil
	}
	if !p.Active || p.UserID == "" {
		return "", false, nil
	}
	return p.UserID, true, nil
}

// Destroy removes a session. Destroying an absent session is not an error.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// newSessionID returns 32 random bytes as unpadded base64url, well above
// the 128-bit entropy floor for unguessable identifiers.
func newSessionID() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}
