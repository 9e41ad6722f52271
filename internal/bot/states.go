package bot

// Dialog steps stored in the user state.
const (
	StepConsent         = "consent"
	StepMainMenu        = "main_menu"
	StepPaintDimensions = "paint_dimensions"
	StepPaintOpenings   = "paint_openings"
	StepPaintCoats      = "paint_coats"
	StepFloorType       = "floor_type"
	StepFloorDimensions = "floor_dimensions"
	StepFloorBox        = "floor_box"
)

const consentTypeLGPD = "lgpd"

// Button labels.
const (
	btnAccept     = "✅ Aceito"
	btnDecline    = "❌ Não aceito"
	btnPaint      = "🎨 Calcular tinta"
	btnFloor      = "🧱 Calcular piso"
	btnCancel     = "❌ Cancelar"
	btnNoOpenings = "Sem aberturas"
)
