package bot

import (
	"context"
	"time"
	"tintas-bot/internal/bot/state_manager"
	"tintas-bot/internal/storage"
	"tintas-bot/internal/storage/redis"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramAPI is the part of tgbotapi.BotAPI the bot talks to.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type StateManager interface {
	GetUserDialogState(ctx context.Context, chatID int64) (*redis.UserState, error)
	SetStep(ctx context.Context, chatID int64, step string) error
	SetConsent(ctx context.Context, chatID int64, username string, granted bool) error
	UpdatePaint(ctx context.Context, chatID int64, step string, fn func(*redis.Paint)) error
	UpdateFloor(ctx context.Context, chatID int64, step string, fn func(*redis.Floor)) error
	ResetDialogState(ctx context.Context, chatID int64, step string) error
	ClearState(ctx context.Context, chatID int64) error
}

type Storage interface {
	SaveCalculation(ctx context.Context, calc storage.Calculation) (string, error)
	RecordConsent(ctx context.Context, consent storage.Consent) error
	GetConsentStatus(ctx context.Context, userRef, consentType string) (bool, error)
	GetCalculationStatistics(ctx context.Context) (*storage.CalculationStatistics, error)
	ExportCalculationsToExcel(ctx context.Context, dir, name string, since time.Time) (string, error)
	CheckRateLimit(ctx context.Context, subject, action string, limit int64, window time.Duration) (bool, error)
	DeleteUserData(ctx context.Context, userRef string) (storage.UserDataDeletion, error)
}

var (
	_ TelegramAPI  = (*tgbotapi.BotAPI)(nil)
	_ StateManager = (*state_manager.UserDialogStateManager)(nil)
	_ Storage      = (*storage.PostgresStorage)(nil)
)
