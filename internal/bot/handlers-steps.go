package bot

import (
	"context"
	"encoding/json"
	"errors"
	"tintas-bot/internal/calculators"
	"tintas-bot/internal/storage"
	"tintas-bot/internal/storage/redis"

	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"
)

const (
	paintDimensionsPrompt = "Informe a largura e a altura da parede em metros e o número de paredes iguais, separados por espaço.\nExemplo: 4,5 2,8 4"
	openingsPrompt        = "Qual a área total de portas e janelas, em m²?\nSe não houver, toque em \"Sem aberturas\"."
	coatsPrompt           = "Quantas demãos? (1 a 3)"
)

func (b *Bot) handleConsent(ctx context.Context, chatID int64, text string) {
	var granted bool
	switch text {
	case btnAccept:
		granted = true
	case btnDecline:
		granted = false
	default:
		b.sendError(chatID, "Por favor, responda usando os botões abaixo.")
		return
	}

	username := ""
	if state, err := b.state.GetUserDialogState(ctx, chatID); err == nil && state.Userdata != nil {
		username = state.Userdata.Username
	}

	metadata, _ := json.Marshal(map[string]string{
		"channel":  "telegram",
		"username": username,
	})
	err := b.storage.RecordConsent(ctx, storage.Consent{
		UserRef:     userRef(chatID),
		ConsentType: consentTypeLGPD,
		Granted:     granted,
		Metadata:    types.JSONText(metadata),
	})
	if err != nil {
		b.logger.Error("Failed to record consent",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Não foi possível registrar sua resposta. Tente novamente.")
		return
	}

	if !granted {
		b.sendText(chatID, "Sem o seu consentimento não podemos fazer os cálculos. Se mudar de ideia, toque em \""+btnAccept+"\".", b.createConsentKeyboard())
		return
	}

	if err := b.state.SetConsent(ctx, chatID, username, true); err != nil {
		b.logger.Error("Failed to set consent in state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	b.notifyConsent(chatID, username)
	b.showMainMenu(ctx, chatID, "Obrigado! Escolha o que deseja calcular:")
}

func (b *Bot) handleMainMenu(ctx context.Context, chatID int64, text string) {
	switch text {
	case btnPaint:
		if err := b.state.UpdatePaint(ctx, chatID, StepPaintDimensions, func(p *redis.Paint) {
			*p = redis.Paint{}
		}); err != nil {
			b.logger.Error("Failed to start paint calculation",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
			b.sendError(chatID, "Erro ao iniciar o cálculo.")
			return
		}
		b.sendText(chatID, paintDimensionsPrompt, b.createCancelKeyboard())

	case btnFloor:
		if err := b.state.UpdateFloor(ctx, chatID, StepFloorType, func(f *redis.Floor) {
			*f = redis.Floor{}
		}); err != nil {
			b.logger.Error("Failed to start floor calculation",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
			b.sendError(chatID, "Erro ao iniciar o cálculo.")
			return
		}
		b.sendText(chatID, floorTypePrompt, b.createFloorTypeKeyboard())

	default:
		b.sendText(chatID, "Escolha uma opção do menu.", b.createMainMenuKeyboard())
	}
}

func (b *Bot) handlePaintDimensions(ctx context.Context, chatID int64, text string) {
	width, height, walls, err := ParsePaintDimensions(text)
	if err != nil {
		b.sendError(chatID, "Medidas inválidas. "+paintDimensionsPrompt)
		return
	}

	if err := b.state.UpdatePaint(ctx, chatID, StepPaintOpenings, func(p *redis.Paint) {
		p.Width = &width
		p.Height = &height
		p.Walls = &walls
	}); err != nil {
		b.logger.Error("Failed to save paint dimensions",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Erro ao salvar as medidas.")
		return
	}

	b.sendText(chatID, openingsPrompt, b.createOpeningsKeyboard())
}

func (b *Bot) handlePaintOpenings(ctx context.Context, chatID int64, text string) {
	openings, err := ParseOpenings(text)
	if err != nil {
		b.sendError(chatID, "Valor inválido. "+openingsPrompt)
		return
	}

	if err := b.state.UpdatePaint(ctx, chatID, StepPaintCoats, func(p *redis.Paint) {
		p.OpeningsArea = &openings
	}); err != nil {
		b.logger.Error("Failed to save openings",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Erro ao salvar as aberturas.")
		return
	}

	b.sendText(chatID, coatsPrompt, b.createCoatsKeyboard())
}

func (b *Bot) handlePaintCoats(ctx context.Context, chatID int64, text string) {
	coats, err := ParseCoats(text)
	if err != nil {
		b.sendError(chatID, "Número de demãos inválido. "+coatsPrompt)
		return
	}

	state, err := b.state.GetUserDialogState(ctx, chatID)
	if err != nil || state.Paint == nil || state.Paint.Width == nil || state.Paint.Height == nil || state.Paint.Walls == nil {
		b.logger.Warn("Incomplete paint state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.showMainMenu(ctx, chatID, "Os dados do cálculo se perderam. Vamos recomeçar:")
		return
	}

	if !b.allowCalculation(ctx, chatID) {
		b.showMainMenu(ctx, chatID, "Você atingiu o limite de cálculos por agora. Tente novamente mais tarde.")
		return
	}

	paint := state.Paint
	paint.Coats = &coats
	openings := 0.0
	if paint.OpeningsArea != nil {
		openings = *paint.OpeningsArea
	}

	surface := calculators.SurfaceSpec{
		Width:        *paint.Width,
		Height:       *paint.Height,
		PanelCount:   *paint.Walls,
		OpeningsArea: openings,
	}
	profile := calculators.MaterialProfile{
		CoverageRatePerCoat: b.cfg.Pricing.DefaultCoverage,
		Coats:               coats,
		WasteFraction:       b.cfg.Pricing.DefaultWaste,
		Unit:                calculators.UnitLiters,
	}

	res, err := calculators.ComputeWithPackaging(surface, profile, b.packages)
	if err != nil {
		b.calculationFailed(ctx, chatID, err)
		return
	}

	b.recordCalculation(ctx, chatID, storage.Calculation{
		Kind:      storage.KindPaint,
		TotalArea: res.TotalArea,
		Required:  res.Required,
		Unit:      string(res.Unit),
		Summary:   res.Packaging.Summary(),
	}, paint)

	b.sendText(chatID, FormatPaintResult(res, profile), nil)
	b.showMainMenu(ctx, chatID, "Deseja fazer outro cálculo?")
}

// allowCalculation applies the per-chat limit. Limiter errors let the calculation through.
func (b *Bot) allowCalculation(ctx context.Context, chatID int64) bool {
	if b.cfg.Telegram.RateLimit <= 0 {
		return true
	}

	exceeded, err := b.storage.CheckRateLimit(ctx, userRef(chatID), "calculate", b.cfg.Telegram.RateLimit, b.cfg.Telegram.RateWindow)
	if err != nil {
		b.logger.Warn("Rate limit check failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return true
	}
	return !exceeded
}

func (b *Bot) recordCalculation(ctx context.Context, chatID int64, calc storage.Calculation, params any) {
	calc.Source = storage.SourceTelegram
	calc.UserRef = userRef(chatID)
	if data, err := json.Marshal(params); err == nil {
		calc.Params = types.JSONText(data)
	}

	if _, err := b.storage.SaveCalculation(ctx, calc); err != nil {
		b.logger.Warn("Failed to log calculation",
			zap.Int64("chat_id", chatID),
			zap.String("kind", calc.Kind),
			zap.Error(err))
	}
}

func (b *Bot) calculationFailed(ctx context.Context, chatID int64, err error) {
	if errors.Is(err, calculators.ErrInvalidInput) {
		b.logger.Debug("Invalid calculation input",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	} else {
		b.logger.Error("Calculation failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	b.showMainMenu(ctx, chatID, "❌ Não foi possível calcular com esses dados. Vamos recomeçar:")
}
