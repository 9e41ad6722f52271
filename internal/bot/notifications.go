package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// notifyConsent tells the admin channel that a user accepted data processing.
func (b *Bot) notifyConsent(chatID int64, username string) {
	if b.cfg.Admin.ChannelID == 0 {
		b.logger.Warn("Channel notifications disabled - no channel ID configured")
		return
	}

	who := fmt.Sprintf("chat %d", chatID)
	if username != "" {
		who = "@" + username
	}
	text := fmt.Sprintf("🔐 Usuário %s aceitou o tratamento de dados pessoais (LGPD).", who)

	if _, err := b.api.Send(tgbotapi.NewMessage(b.cfg.Admin.ChannelID, text)); err != nil {
		b.logger.Error("Failed to send consent notification to channel",
			zap.Int64("channel_id", b.cfg.Admin.ChannelID),
			zap.Error(err))
	}
}
