package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAppConfig(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultSettings()

	assert.Equal(t, defaults.SheetWidth, cfg.DefaultSheetWidth)
	assert.Equal(t, defaults.WastePercentage, cfg.DefaultWastePercentage)
	assert.Equal(t, GrainNone, cfg.DefaultGrain)
	assert.Equal(t, "cm", cfg.Unit)
	assert.Equal(t, 2400, cfg.ImageWidth)
	assert.NotNil(t, cfg.RecentJobs)
}

func TestAppConfig_ApplyToConfig(t *testing.T) {
	app := DefaultAppConfig()
	app.DefaultMargin = 1
	app.DefaultPieceSpacing = 0.3
	app.DefaultGrain = GrainHorizontal

	var cfg PackConfig
	app.ApplyToConfig(&cfg, 0)
	assert.Equal(t, 275.0, cfg.SheetWidth)
	assert.Equal(t, 185.0, cfg.SheetHeight)
	assert.Equal(t, 1.0, cfg.Margin)
	assert.Equal(t, 0.3, cfg.PieceSpacing)
	assert.Equal(t, GrainHorizontal, cfg.Grain)
	assert.Equal(t, 5.0, cfg.WastePercentage)
}

func TestAppConfig_ApplyToConfig_KeepsExplicitValues(t *testing.T) {
	app := DefaultAppConfig()
	app.DefaultMargin = 1

	cfg := PackConfig{SheetWidth: 50, SheetHeight: 40, PieceSpacing: 0.2}
	app.ApplyToConfig(&cfg, FieldPieceSpacing|FieldWaste)
	assert.Equal(t, 50.0, cfg.SheetWidth)
	assert.Equal(t, 1.0, cfg.Margin)
	assert.Equal(t, 0.2, cfg.PieceSpacing)
	assert.Equal(t, 0.0, cfg.WastePercentage)
}

func TestAppConfig_ApplyToConfig_ExplicitZeros(t *testing.T) {
	app := DefaultAppConfig()
	app.DefaultMargin = 1
	app.DefaultPieceSpacing = 0.3

	var cfg PackConfig
	app.ApplyToConfig(&cfg, AllFields)
	assert.Zero(t, cfg.Margin)
	assert.Zero(t, cfg.PieceSpacing)
	assert.Zero(t, cfg.WastePercentage)
	assert.Equal(t, GrainNone, cfg.Grain)
}

func TestConfigField_Has(t *testing.T) {
	f := FieldMargin | FieldWaste
	assert.True(t, f.Has(FieldMargin))
	assert.True(t, f.Has(FieldMargin|FieldWaste))
	assert.False(t, f.Has(FieldGrain))
	assert.True(t, AllFields.Has(f))
}
