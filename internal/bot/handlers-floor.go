package bot

import (
	"context"
	"fmt"
	"tintas-bot/internal/calculators"
	"tintas-bot/internal/storage"
	"tintas-bot/internal/storage/redis"

	"go.uber.org/zap"
)

const (
	floorTypePrompt       = "Qual o tipo de piso?"
	floorDimensionsPrompt = "Informe a largura e o comprimento do ambiente em metros, separados por espaço.\nExemplo: 4 5,5"
	floorBoxPrompt        = "Quantos m² vêm em cada caixa? (está na embalagem, ex.: 2,2)"
)

func (b *Bot) handleFloorType(ctx context.Context, chatID int64, text string) {
	floorType, ok := ParseFloorType(text, b.floors.Types())
	if !ok {
		b.sendText(chatID, "Escolha um dos tipos de piso abaixo.", b.createFloorTypeKeyboard())
		return
	}

	value := string(floorType)
	if err := b.state.UpdateFloor(ctx, chatID, StepFloorDimensions, func(f *redis.Floor) {
		f.FloorType = &value
	}); err != nil {
		b.logger.Error("Failed to save floor type",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Erro ao salvar o tipo de piso.")
		return
	}

	b.sendText(chatID, fmt.Sprintf("%s selecionado.\n\n%s", FloorTypeLabel(floorType), floorDimensionsPrompt), b.createCancelKeyboard())
}

func (b *Bot) handleFloorDimensions(ctx context.Context, chatID int64, text string) {
	width, length, err := ParseFloorDimensions(text)
	if err != nil {
		b.sendError(chatID, "Medidas inválidas. "+floorDimensionsPrompt)
		return
	}

	if err := b.state.UpdateFloor(ctx, chatID, StepFloorBox, func(f *redis.Floor) {
		f.Width = &width
		f.Length = &length
	}); err != nil {
		b.logger.Error("Failed to save floor dimensions",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Erro ao salvar as medidas.")
		return
	}

	b.sendText(chatID, floorBoxPrompt, b.createCancelKeyboard())
}

func (b *Bot) handleFloorBox(ctx context.Context, chatID int64, text string) {
	boxCoverage, err := ParseBoxCoverage(text)
	if err != nil {
		b.sendError(chatID, "Valor inválido. "+floorBoxPrompt)
		return
	}

	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil || state.Floor == nil || state.Floor.FloorType == nil || state.Floor.Width == nil || state.Floor.Length == nil {
		b.logger.Warn("Incomplete floor state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.showMainMenu(ctx, chatID, "Os dados do cálculo se perderam. Vamos recomeçar:")
		return
	}

	if !b.allowCalculation(ctx, chatID) {
		b.showMainMenu(ctx, chatID, "Você atingiu o limite de cálculos por agora. Tente novamente mais tarde.")
		return
	}

	floor := state.Floor
	floor.BoxCoverage = &boxCoverage

	res, err := b.floors.Calculate(calculators.SurfaceSpec{
		Width:      *floor.Width,
		Height:     *floor.Length,
		PanelCount: 1,
	}, calculators.FloorType(*floor.FloorType), boxCoverage, b.cfg.Pricing.DefaultWaste)
	if err != nil {
		b.calculationFailed(ctx, chatID, err)
		return
	}

	b.recordCalculation(ctx, chatID, storage.Calculation{
		Kind:      storage.KindFloor,
		TotalArea: res.TotalArea,
		Required:  res.Required,
		Unit:      string(res.Unit),
		Summary:   fmt.Sprintf("%s × %s", calculators.FormatQuantity(res.Required), res.FloorType),
	}, floor)

	b.sendText(chatID, FormatFloorResult(res), nil)
	b.showMainMenu(ctx, chatID, "Deseja fazer outro cálculo?")
}
