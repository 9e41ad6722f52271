// Package bot is the Telegram front end of the paint and flooring calculators.
package bot

import (
	"context"
	"fmt"
	"strings"
	"tintas-bot/internal/calculators"
	"tintas-bot/internal/config"
	"tintas-bot/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Bot struct {
	api      TelegramAPI
	logger   *zap.Logger
	state    StateManager
	storage  Storage
	cfg      *config.Config
	floors   *calculators.FloorCalculator
	packages []calculators.PackageOption
	handlers map[string]func(context.Context, int64, string)
}

// NewAPI authorizes against Telegram with the configured token.
func NewAPI(cfg config.TelegramConfig, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	botAPI.Debug = cfg.Debug

	logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	return botAPI, nil
}

func New(
	api TelegramAPI,
	state StateManager,
	storage Storage,
	logger *zap.Logger,
	cfg *config.Config,
) *Bot {
	b := &Bot{
		api:      api,
		logger:   logger,
		state:    state,
		storage:  storage,
		cfg:      cfg,
		floors:   calculators.NewFloorCalculator(),
		packages: calculators.LiterPackages(cfg.Pricing.PackageSizes),
	}

	b.registerHandlers()
	return b
}

func (b *Bot) registerHandlers() {
	b.handlers = map[string]func(context.Context, int64, string){
		StepConsent:         b.handleConsent,
		StepMainMenu:        b.handleMainMenu,
		StepPaintDimensions: b.handlePaintDimensions,
		StepPaintOpenings:   b.handlePaintOpenings,
		StepPaintCoats:      b.handlePaintCoats,
		StepFloorType:       b.handleFloorType,
		StepFloorDimensions: b.handleFloorDimensions,
		StepFloorBox:        b.handleFloorBox,
	}
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			b.api.StopReceivingUpdates()
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.processMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	if msg.IsCommand() {
		username := ""
		if msg.From != nil {
			username = msg.From.UserName
		}
		b.handleCommand(ctx, chatID, username, msg.Command(), strings.Fields(msg.CommandArguments()))
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == btnCancel {
		b.handleCancel(ctx, chatID)
		return
	}

	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Erro ao processar a solicitação. Tente novamente.")
		return
	}

	if handler, exists := b.handlers[state.Step]; exists {
		handler(ctx, chatID, text)
	} else {
		b.handleDefault(ctx, chatID)
	}
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.String("text", msg.Text),
			zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string, keyboard any) {
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	b.sendMessage(msg)
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, "❌ "+text))
}

func userRef(chatID int64) string {
	return storage.TelegramUserRef(chatID)
}
