package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the history/dialog-state contract the engine depends on.
type Store interface {
	Append(ctx context.Context, userID string, entry Entry) error
	History(ctx context.Context, userID string, limit int) ([]Entry, error)
	DialogState(ctx context.Context, userID string) (*DialogState, error)
	SetDialogState(ctx context.Context, userID string, state *DialogState) error
	Clear(ctx context.Context, userID string) error
}

// RedisStore keeps per-user history in a Redis list (newest first) and the
// dialog state in a single string key, both under the conversation TTL.
type RedisStore struct {
	client *redis.Client
	cfg    Config
}

// NewRedisStore creates a conversation store on the given client.
func NewRedisStore(client *redis.Client, cfg Config) *RedisStore {
	if cfg.MaxEntries <= 0 {
		cfg = DefaultConfig()
	}
	return &RedisStore{client: client, cfg: cfg}
}

func historyKey(userID string) string { return fmt.Sprintf("conversation:%s:history", userID) }
func stateKey(userID string) string   { return fmt.Sprintf("conversation:%s:state", userID) }

func (s *RedisStore) ttl() time.Duration {
	return time.Duration(s.cfg.TTLSeconds) * time.Second
}

// Append atomically prepends the entry, trims the list to the bound, and
// refreshes the conversation TTL. The MULTI/EXEC pipeline keeps two
// concurrent appends for the same user from interleaving.
func (s *RedisStore) Append(ctx context.Context, userID string, entry Entry) error {
	data, err := json.Marshal(sanitizeEntry(entry, s.cfg))
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}

	key := historyKey(userID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, string(data))
		pipe.LTrim(ctx, key, 0, int64(s.cfg.MaxEntries-1))
		pipe.Expire(ctx, key, s.ttl())
		pipe.Expire(ctx, stateKey(userID), s.ttl())
		return nil
	})
	if err != nil {
		return fmt.Errorf("appending to %s: %w", key, err)
	}
	return nil
}

// History returns the most recent limit entries, newest first. Entries that
// no longer deserialize are skipped rather than aborting the read.
func (s *RedisStore) History(ctx context.Context, userID string, limit int) ([]Entry, error) {
	key := historyKey(userID)
	vals, err := s.client.LRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	entries := make([]Entry, 0, len(vals))
	for _, v := range vals {
		var entry Entry
		if err := json.Unmarshal([]byte(v), &entry); err != nil {
			continue // skip malformed entries
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DialogState returns the user's current dialog state, or nil when none exists.
func (s *RedisStore) DialogState(ctx context.Context, userID string) (*DialogState, error) {
	val, err := s.client.Get(ctx, stateKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", stateKey(userID), err)
	}

	var state DialogState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("decoding dialog state: %w", err)
	}
	return &state, nil
}

// SetDialogState replaces the dialog state record and refreshes its TTL.
// The write is a full overwrite: concurrent updates race and the later one
// wins, which is the accepted trade-off for this record.
func (s *RedisStore) SetDialogState(ctx context.Context, userID string, state *DialogState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling dialog state: %w", err)
	}
	if err := s.client.Set(ctx, stateKey(userID), string(data), s.ttl()).Err(); err != nil {
		return fmt.Errorf("set %s: %w", stateKey(userID), err)
	}
	return nil
}

// Clear removes both the history and the dialog state for the user.
func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, historyKey(userID), stateKey(userID)).Err(); err != nil {
		return fmt.Errorf("clearing conversation for %s: %w", userID, err)
	}
	return nil
}
