package bot

import (
	"tintas-bot/internal/calculators"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BOT KEYBOARDS

func (b *Bot) createConsentKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAccept),
			tgbotapi.NewKeyboardButton(btnDecline),
		),
	)
}

func (b *Bot) createMainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnPaint),
			tgbotapi.NewKeyboardButton(btnFloor),
		),
	)
}

func (b *Bot) createCancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

func (b *Bot) createOpeningsKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnNoOpenings),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

func (b *Bot) createCoatsKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("1"),
			tgbotapi.NewKeyboardButton("2"),
			tgbotapi.NewKeyboardButton("3"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

// createFloorTypeKeyboard lays the floor types out two per row.
func (b *Bot) createFloorTypeKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, t := range b.floors.Types() {
		row = append(row, tgbotapi.NewKeyboardButton(FloorTypeLabel(t)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)))

	return tgbotapi.NewReplyKeyboard(rows...)
}

var floorTypeLabels = map[calculators.FloorType]string{
	calculators.FloorCeramic:   "Cerâmico",
	calculators.FloorPorcelain: "Porcelanato",
	calculators.FloorLaminate:  "Laminado",
	calculators.FloorVinyl:     "Vinílico",
	calculators.FloorWood:      "Madeira",
	calculators.FloorStone:     "Pedra",
}

func FloorTypeLabel(t calculators.FloorType) string {
	if label, ok := floorTypeLabels[t]; ok {
		return label
	}
	return string(t)
}
