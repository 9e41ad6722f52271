package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const stateTTL = 24 * time.Hour

type Storage struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an existing connection. A zero ttl uses the 24h default.
func New(client *redis.Client, ttl time.Duration) *Storage {
	if ttl == 0 {
		ttl = stateTTL
	}
	return &Storage{client: client, ttl: ttl}
}

func (s *Storage) SetUserDialogState(ctx context.Context, chatID int64, state *UserState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return s.client.Set(ctx, StateKey(chatID), data, s.ttl).Err()
}

func (s *Storage) GetUserDialogState(ctx context.Context, chatID int64) (*UserState, error) {
	data, err := s.client.Get(ctx, StateKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &UserState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}

	var state UserState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal failure: %w", err)
	}
	return &state, nil
}

func (s *Storage) DropUserDialogState(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, StateKey(chatID)).Err()
}

// StateKey is the Redis key holding the dialog state of a chat.
func StateKey(chatID int64) string {
	return fmt.Sprintf("state:%d", chatID)
}
