package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const consentText = `Olá! 👋 Eu calculo a quantidade de tinta e de piso para a sua obra.

🔐 Proteção de dados (LGPD)

Para funcionar, guardamos:
- o seu identificador no Telegram
- as medidas e os resultados dos cálculos

Os dados são usados apenas para os cálculos e para estatísticas internas.
Você pode apagar os seus dados a qualquer momento com /apagar.

Você concorda com o tratamento desses dados?`

const helpText = `Comandos disponíveis:
/start - Iniciar o atendimento
/cancel - Cancelar o cálculo atual
/help - Mostrar esta ajuda
/apagar - Apagar os seus dados e cálculos

Medidas são em metros; vírgula ou ponto servem como separador decimal.`

func (b *Bot) handleCommand(ctx context.Context, chatID int64, username, cmd string, args []string) {
	switch cmd {
	case "start":
		b.handleStart(ctx, chatID, username)
	case "help":
		b.handleHelp(chatID)
	case "cancel", "menu":
		b.handleCancel(ctx, chatID)
	case "apagar", "forget":
		b.handleDeleteData(ctx, chatID)
	case "stats", "export":
		b.handleAdminCommand(ctx, chatID, cmd, args)
	default:
		b.handleUnknownCommand(chatID)
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64, username string) {
	if b.hasConsent(ctx, chatID) {
		b.showMainMenu(ctx, chatID, "🏠 Menu principal\n\nEscolha uma opção:")
		return
	}

	// Remember the username for the consent notification.
	if err := b.state.SetConsent(ctx, chatID, username, false); err != nil {
		b.logger.Error("Failed to store username",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	b.sendText(chatID, consentText, b.createConsentKeyboard())

	if err := b.state.SetStep(ctx, chatID, StepConsent); err != nil {
		b.logger.Error("Failed to set consent state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// hasConsent checks the dialog state first and falls back to the consent log.
func (b *Bot) hasConsent(ctx context.Context, chatID int64) bool {
	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err == nil && state.Userdata != nil && state.Userdata.ConsentGranted {
		return true
	}

	granted, err := b.storage.GetConsentStatus(ctx, userRef(chatID), consentTypeLGPD)
	if err != nil {
		b.logger.Error("Failed to check consent",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return false
	}
	if !granted {
		return false
	}

	username := ""
	if state != nil && state.Userdata != nil {
		username = state.Userdata.Username
	}
	if err := b.state.SetConsent(ctx, chatID, username, true); err != nil {
		b.logger.Warn("Failed to cache consent in state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	return true
}

// showMainMenu drops any calculation in progress and shows the menu.
func (b *Bot) showMainMenu(ctx context.Context, chatID int64, text string) {
	if err := b.state.ResetDialogState(ctx, chatID, StepMainMenu); err != nil {
		b.logger.Error("Failed to reset dialog state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	b.sendText(chatID, text, b.createMainMenuKeyboard())
}

func (b *Bot) handleCancel(ctx context.Context, chatID int64) {
	if !b.hasConsent(ctx, chatID) {
		if err := b.state.ClearState(ctx, chatID); err != nil {
			b.logger.Error("Failed to clear state on cancel",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
		}
		b.sendText(chatID, "Ação cancelada. Envie /start para começar.", tgbotapi.NewRemoveKeyboard(true))
		return
	}

	b.showMainMenu(ctx, chatID, "Cálculo cancelado. Escolha uma opção:")
}

// handleDeleteData erases the user's calculations, consents and dialog state.
func (b *Bot) handleDeleteData(ctx context.Context, chatID int64) {
	deleted, err := b.storage.DeleteUserData(ctx, userRef(chatID))
	if err != nil {
		b.logger.Error("Failed to delete user data",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Não foi possível apagar os seus dados agora. Tente novamente mais tarde.")
		return
	}

	if err := b.state.ClearState(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear state after data deletion",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	text := fmt.Sprintf("🗑 Seus dados foram apagados (%d cálculos, %d registros de consentimento).\n\n"+
		"Envie /start se quiser usar o bot novamente.", deleted.Calculations, deleted.Consents)
	b.sendText(chatID, text, tgbotapi.NewRemoveKeyboard(true))
}

func (b *Bot) handleHelp(chatID int64) {
	b.sendText(chatID, helpText, nil)
}

func (b *Bot) handleDefault(ctx context.Context, chatID int64) {
	b.sendError(chatID, "Não entendi. Envie /start para começar.")
}

func (b *Bot) handleUnknownCommand(chatID int64) {
	b.sendError(chatID, "Comando desconhecido. Use /help para ver os comandos.")
}
