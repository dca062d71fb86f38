package model

import "fmt"

// MachineSettings configures G-code generation for a CNC router. Lengths are
// in millimetres; sheet coordinates are converted with UnitScale.
type MachineSettings struct {
	Profile      string  `json:"profile"`       // G-code dialect name
	UnitScale    float64 `json:"unit_scale"`    // Millimetres per sheet unit (10 for cm)
	ToolDiameter float64 `json:"tool_diameter"` // Cutter diameter mm
	FeedRate     float64 `json:"feed_rate"`     // Cutting feed rate mm/min
	PlungeRate   float64 `json:"plunge_rate"`   // Plunge feed rate mm/min
	SpindleSpeed int     `json:"spindle_speed"` // RPM
	SafeZ        float64 `json:"safe_z"`        // Safe retract height mm
	CutDepth     float64 `json:"cut_depth"`     // Total material thickness mm
	PassDepth    float64 `json:"pass_depth"`    // Depth per pass mm

	// Holding tabs keep pieces attached to the sheet on the final pass
	TabWidth    float64 `json:"tab_width"`     // mm
	TabHeight   float64 `json:"tab_height"`    // mm
	TabsPerSide int     `json:"tabs_per_side"` // 0 disables tabs
}

// DefaultMachineSettings returns settings for an 18 mm board cut with a
// 6 mm end mill, with sheet dimensions in centimetres.
func DefaultMachineSettings() MachineSettings {
	return MachineSettings{
		Profile:      "Generic",
		UnitScale:    10,
		ToolDiameter: 6.0,
		FeedRate:     1500.0,
		PlungeRate:   500.0,
		SpindleSpeed: 18000,
		SafeZ:        5.0,
		CutDepth:     18.0,
		PassDepth:    6.0,
		TabWidth:     8.0,
		TabHeight:    2.0,
		TabsPerSide:  0,
	}
}

// Validate checks the settings the toolpath generator divides by or loops on.
func (m MachineSettings) Validate() error {
	switch {
	case !(m.UnitScale > 0):
		return fmt.Errorf("machine unit scale must be positive, got %v", m.UnitScale)
	case m.ToolDiameter < 0:
		return fmt.Errorf("tool diameter must not be negative, got %v", m.ToolDiameter)
	case !(m.CutDepth > 0):
		return fmt.Errorf("cut depth must be positive, got %v", m.CutDepth)
	case !(m.PassDepth > 0):
		return fmt.Errorf("pass depth must be positive, got %v", m.PassDepth)
	case !(m.FeedRate > 0) || !(m.PlungeRate > 0):
		return fmt.Errorf("feed and plunge rates must be positive")
	case m.TabsPerSide < 0:
		return fmt.Errorf("tabs per side must not be negative, got %d", m.TabsPerSide)
	}
	return nil
}

// Passes returns the number of depth passes needed to cut through.
func (m MachineSettings) Passes() int {
	n := int(m.CutDepth / m.PassDepth)
	if float64(n)*m.PassDepth < m.CutDepth-1e-9 {
		n++
	}
	return n
}
