package state_manager

import (
	"context"
	"fmt"
	"tintas-bot/internal/storage/redis"
)

type UserDialogStateManager struct {
	redisStorage RedisStorage
}

func New(redisStorage RedisStorage) *UserDialogStateManager {
	return &UserDialogStateManager{redisStorage: redisStorage}
}

func (u *UserDialogStateManager) GetUserDialogState(ctx context.Context, chatID int64) (*redis.UserState, error) {
	state, err := u.redisStorage.GetUserDialogState(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("redisStorage.GetUserDialogState failed: %w", err)
	}
	return state, nil
}

func (u *UserDialogStateManager) setUserDialogState(ctx context.Context, chatID int64, state *redis.UserState) error {
	return u.redisStorage.SetUserDialogState(ctx, chatID, state)
}

// Update loads the state, applies fn and stores the result.
func (u *UserDialogStateManager) Update(ctx context.Context, chatID int64, fn func(*redis.UserState)) error {
	state, err := u.GetUserDialogState(ctx, chatID)
	if err != nil {
		return fmt.Errorf("GetUserDialogState failed: %w", err)
	}

	fn(state)

	return u.setUserDialogState(ctx, chatID, state)
}

func (u *UserDialogStateManager) SetStep(ctx context.Context, chatID int64, step string) error {
	return u.Update(ctx, chatID, func(s *redis.UserState) {
		s.Step = step
	})
}

func (u *UserDialogStateManager) SetConsent(ctx context.Context, chatID int64, username string, granted bool) error {
	return u.Update(ctx, chatID, func(s *redis.UserState) {
		if s.Userdata == nil {
			s.Userdata = &redis.UserData{}
		}
		s.Userdata.Username = username
		s.Userdata.ConsentGranted = granted
	})
}

// UpdatePaint applies fn to the paint draft, creating it when missing.
func (u *UserDialogStateManager) UpdatePaint(ctx context.Context, chatID int64, step string, fn func(*redis.Paint)) error {
	return u.Update(ctx, chatID, func(s *redis.UserState) {
		if s.Paint == nil {
			s.Paint = &redis.Paint{}
		}
		fn(s.Paint)
		s.Step = step
	})
}

// UpdateFloor applies fn to the floor draft, creating it when missing.
func (u *UserDialogStateManager) UpdateFloor(ctx context.Context, chatID int64, step string, fn func(*redis.Floor)) error {
	return u.Update(ctx, chatID, func(s *redis.UserState) {
		if s.Floor == nil {
			s.Floor = &redis.Floor{}
		}
		fn(s.Floor)
		s.Step = step
	})
}

// ResetDialogState drops any calculation in progress and moves to step,
// keeping the user data (consent) intact.
func (u *UserDialogStateManager) ResetDialogState(ctx context.Context, chatID int64, step string) error {
	prevState, err := u.GetUserDialogState(ctx, chatID)
	if err != nil {
		return fmt.Errorf("GetUserDialogState failed: %w", err)
	}

	return u.setUserDialogState(ctx, chatID, &redis.UserState{
		Step:     step,
		Userdata: prevState.Userdata,
	})
}

func (u *UserDialogStateManager) ClearState(ctx context.Context, chatID int64) error {
	return u.redisStorage.DropUserDialogState(ctx, chatID)
}
