package bot

import (
	"fmt"
	"math"
	"strings"
	"tintas-bot/internal/calculators"
	"tintas-bot/internal/storage"
)

// FormatNumber prints v with at most two decimals and a decimal comma.
func FormatNumber(v float64) string {
	return calculators.FormatQuantity(math.Round(v*100) / 100)
}

func FormatPercent(fraction float64) string {
	return FormatNumber(fraction*100) + "%"
}

func FormatPaintResult(res calculators.QuantityResult, profile calculators.MaterialProfile) string {
	var sb strings.Builder

	sb.WriteString("🎨 Resultado do cálculo de tinta\n\n")
	fmt.Fprintf(&sb, "📐 Área a pintar: %s m²\n", FormatNumber(res.TotalArea))
	fmt.Fprintf(&sb, "🖌 Demãos: %d (rendimento de %s m²/L por demão)\n",
		profile.Coats, FormatNumber(profile.CoverageRatePerCoat))
	fmt.Fprintf(&sb, "🪣 Tinta necessária: %s L (com %s de margem)\n",
		calculators.FormatQuantity(res.Required), FormatPercent(profile.WasteFraction))

	if res.Packaging != nil && res.Packaging.Packages > 0 {
		fmt.Fprintf(&sb, "\n🛒 Sugestão de compra: %s\n", res.Packaging.Summary())
		fmt.Fprintf(&sb, "Sobra estimada: %s L\n", calculators.FormatQuantity(res.Packaging.Leftover))
	} else if res.Required == 0 {
		sb.WriteString("\nAs aberturas cobrem toda a superfície, não é preciso comprar tinta.\n")
	}

	return sb.String()
}

func FormatFloorResult(res calculators.FloorResult) string {
	var sb strings.Builder

	sb.WriteString("🧱 Resultado do cálculo de piso\n\n")
	fmt.Fprintf(&sb, "Tipo: %s\n", FloorTypeLabel(res.FloorType))
	fmt.Fprintf(&sb, "📐 Área: %s m²\n", FormatNumber(res.TotalArea))
	fmt.Fprintf(&sb, "📦 Caixas necessárias: %s (com %s de perda)\n",
		calculators.FormatQuantity(res.Required), FormatPercent(res.WasteFraction))
	fmt.Fprintf(&sb, "Rejunte: %s kg\n", calculators.FormatQuantity(res.GroutKg))
	fmt.Fprintf(&sb, "Argamassa: %s kg\n", calculators.FormatQuantity(res.AdhesiveKg))

	return sb.String()
}

func FormatStatistics(stats *storage.CalculationStatistics) string {
	return fmt.Sprintf(
		"📊 Estatísticas de cálculos\n\n"+
			"📌 Total: %d\n"+
			"📅 Hoje: %d\n"+
			"📅 Últimos 7 dias: %d\n"+
			"📅 Últimos 30 dias: %d\n\n"+
			"🎨 Tinta: %d\n"+
			"🧱 Piso: %d\n"+
			"💰 Orçamentos: %d\n\n"+
			"Área total: %s m²\n"+
			"Litros calculados: %s L",
		stats.TotalCalculations,
		stats.TodayCalculations,
		stats.WeekCalculations,
		stats.MonthCalculations,
		stats.KindCounts[storage.KindPaint],
		stats.KindCounts[storage.KindFloor],
		stats.KindCounts[storage.KindQuote],
		FormatNumber(stats.TotalArea),
		FormatNumber(stats.TotalLiters),
	)
}
