package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	defaultExportDays = 30
	maxExportDays     = 365
)

func (b *Bot) handleAdminCommand(ctx context.Context, chatID int64, cmd string, args []string) {
	if !b.cfg.IsAdmin(chatID) {
		b.handleUnknownCommand(chatID)
		return
	}

	switch cmd {
	case "stats":
		b.handleStats(ctx, chatID)
	case "export":
		days := defaultExportDays
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 || n > maxExportDays {
				b.sendError(chatID, fmt.Sprintf("Uso: /export [dias], de 1 a %d", maxExportDays))
				return
			}
			days = n
		}
		b.handleExport(ctx, chatID, days)
	default:
		b.sendError(chatID, "Comando de administrador desconhecido")
	}
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) {
	stats, err := b.storage.GetCalculationStatistics(ctx)
	if err != nil {
		b.logger.Error("Failed to get calculation statistics", zap.Error(err))
		b.sendError(chatID, "Erro ao obter as estatísticas")
		return
	}

	b.sendText(chatID, FormatStatistics(stats), nil)
}

func (b *Bot) handleExport(ctx context.Context, chatID int64, days int) {
	now := time.Now()
	since := now.AddDate(0, 0, -days)
	name := fmt.Sprintf("calculations_%s", now.Format("20060102_150405"))

	path, err := b.storage.ExportCalculationsToExcel(ctx, b.cfg.ReportsDir, name, since)
	if err != nil {
		b.logger.Error("Failed to export calculations", zap.Error(err))
		b.sendError(chatID, "Erro ao exportar os cálculos")
		return
	}

	msg := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	msg.Caption = fmt.Sprintf("📊 Cálculos dos últimos %d dias", days)

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send Excel file", zap.Error(err))
		b.sendError(chatID, "Erro ao enviar o arquivo exportado")
	}
}
