package state_manager

import (
	"context"
	"tintas-bot/internal/storage/redis"
)

type RedisStorage interface {
	GetUserDialogState(ctx context.Context, chatID int64) (*redis.UserState, error)
	SetUserDialogState(ctx context.Context, chatID int64, state *redis.UserState) error
	DropUserDialogState(ctx context.Context, chatID int64) error
}

var _ RedisStorage = (*redis.Storage)(nil)
