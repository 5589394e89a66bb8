package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fieldstone/crm-system/internal/core/ports"
)

// SessionStore keeps Securia sessions in Redis so validity holds across
// server instances. Each session lives under its own TTL key; a per-user
// set indexes the session ids for refresh and invalidation. Expiry is
// enforced by Redis itself, so there is no sweep goroutine.
//
// Key layout:
//
//	securia:session:<id>  = userID   (TTL = session timeout)
//	securia:sessions:<userID> = SET of session ids (TTL = session timeout)
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(id string) string    { return "securia:session:" + id }
func userIndexKey(uid string) string { return "securia:sessions:" + uid }

// Create registers a new session and returns its id. The id embeds the
// user, a timestamp, and a random suffix.
func (s *SessionStore) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	id := fmt.Sprintf("%s:%d:%s", userID, time.Now().UnixNano(), hex.EncodeToString(suffix))

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(id), userID, ttl)
	pipe.SAdd(ctx, userIndexKey(userID), id)
	pipe.Expire(ctx, userIndexKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return id, nil
}

// HasValid reports whether the user holds at least one live session. Ids
// whose keys have expired are pruned from the index as they are found.
func (s *SessionStore) HasValid(ctx context.Context, userID string) (bool, error) {
	ids, err := s.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("load session index: %w", err)
	}

	valid := false
	for _, id := range ids {
		n, err := s.client.Exists(ctx, sessionKey(id)).Result()
		if err != nil {
			return false, fmt.Errorf("check session: %w", err)
		}
		if n > 0 {
			valid = true
			continue
		}
		_ = s.client.SRem(ctx, userIndexKey(userID), id).Err()
	}
	return valid, nil
}

// Refresh extends the TTL of all of the user's live sessions.
func (s *SessionStore) Refresh(ctx context.Context, userID string, ttl time.Duration) error {
	ids, err := s.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("load session index: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, id := range ids {
		pipe.Expire(ctx, sessionKey(id), ttl)
	}
	pipe.Expire(ctx, userIndexKey(userID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("refresh sessions: %w", err)
	}
	return nil
}

// InvalidateUser removes every session for the user.
func (s *SessionStore) InvalidateUser(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("load session index: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userIndexKey(userID))

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate sessions: %w", err)
	}
	return nil
}

var _ ports.SessionStore = (*SessionStore)(nil)
