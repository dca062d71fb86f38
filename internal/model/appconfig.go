package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to materials that leave a value unset
	DefaultMargin          float64 `json:"default_margin"`
	DefaultPieceSpacing    float64 `json:"default_piece_spacing"`
	DefaultGrain           Grain   `json:"default_orientation"`
	DefaultWastePercentage float64 `json:"default_waste_percentage"`
	DefaultSheetWidth      float64 `json:"default_sheet_width"`
	DefaultSheetHeight     float64 `json:"default_sheet_height"`

	// Output preferences
	Unit          string  `json:"unit"`            // Label suffix for dimensions, e.g. "cm"
	ImageWidth    int     `json:"image_width"`     // Export raster width in pixels
	Locale        string  `json:"locale"`          // BCP 47 tag used for document numbers
	PricePerSheet float64 `json:"price_per_sheet"` // 0 disables cost estimates

	// G-code generation
	Machine MachineSettings `json:"machine"`

	RecentJobs []string `json:"recent_jobs"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultMargin:          defaults.Margin,
		DefaultPieceSpacing:    defaults.PieceSpacing,
		DefaultGrain:           defaults.Grain,
		DefaultWastePercentage: defaults.WastePercentage,
		DefaultSheetWidth:      defaults.SheetWidth,
		DefaultSheetHeight:     defaults.SheetHeight,
		Unit:                   "cm",
		ImageWidth:             2400,
		Locale:                 "en",
		PricePerSheet:          0,
		Machine:                DefaultMachineSettings(),
		RecentJobs:             []string{},
	}
}

// ConfigField marks PackConfig settings a job states explicitly. Zero is a
// meaningful margin, spacing or waste, so presence cannot be read from the
// value itself.
type ConfigField uint8

const (
	FieldMargin ConfigField = 1 << iota
	FieldPieceSpacing
	FieldGrain
	FieldWaste

	AllFields = FieldMargin | FieldPieceSpacing | FieldGrain | FieldWaste
)

// Has reports whether every flag in field is set.
func (f ConfigField) Has(field ConfigField) bool {
	return f&field == field
}

// ApplyToConfig fills the settings of cfg that explicit does not mark with
// the application defaults. A zero sheet size is always filled.
func (c AppConfig) ApplyToConfig(cfg *PackConfig, explicit ConfigField) {
	if cfg.SheetWidth == 0 {
		cfg.SheetWidth = c.DefaultSheetWidth
	}
	if cfg.SheetHeight == 0 {
		cfg.SheetHeight = c.DefaultSheetHeight
	}
	if !explicit.Has(FieldMargin) {
		cfg.Margin = c.DefaultMargin
	}
	if !explicit.Has(FieldPieceSpacing) {
		cfg.PieceSpacing = c.DefaultPieceSpacing
	}
	if !explicit.Has(FieldGrain) {
		cfg.Grain = c.DefaultGrain
	}
	if !explicit.Has(FieldWaste) {
		cfg.WastePercentage = c.DefaultWastePercentage
	}
}
