package model

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is matched by every ValidationError.
var ErrInvalidConfig = errors.New("invalid packing configuration")

// ValidationError reports a configuration field that violates the optimizer's
// preconditions.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid config '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid config: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

func newValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks the preconditions the optimizer relies on. The optimizer
// does not re-validate: packing an invalid configuration is undefined, so
// callers run Validate first.
func (c PackConfig) Validate() error {
	if !(c.SheetWidth > 0) {
		return newValidationError("sheetW", "must be positive, got %v", c.SheetWidth)
	}
	if !(c.SheetHeight > 0) {
		return newValidationError("sheetH", "must be positive, got %v", c.SheetHeight)
	}
	if c.Margin < 0 {
		return newValidationError("margin", "must not be negative, got %v", c.Margin)
	}
	if 2*c.Margin >= c.SheetWidth || 2*c.Margin >= c.SheetHeight {
		return newValidationError("margin", "%v leaves no usable sheet interior", c.Margin)
	}
	if c.PieceSpacing < 0 {
		return newValidationError("pieceSpacing", "must not be negative, got %v", c.PieceSpacing)
	}
	if c.WastePercentage < 0 {
		return newValidationError("wastePercentage", "must not be negative, got %v", c.WastePercentage)
	}
	switch c.Grain {
	case GrainNone, GrainHorizontal, GrainVertical:
	default:
		return newValidationError("orientation", "unsupported value %d", int(c.Grain))
	}
	for i, p := range c.Items {
		if !(p.Width > 0) || !(p.Height > 0) {
			return newValidationError(fmt.Sprintf("items[%d]", i),
				"%q must have positive size, got %vx%v", p.Label(), p.Width, p.Height)
		}
	}
	return nil
}
