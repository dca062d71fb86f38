package model

// PurchaseEstimate holds the results of a sheet purchasing calculation.
type PurchaseEstimate struct {
	SheetsToBuy      int     `json:"sheets_to_buy"`     // Sheets actually opened by the plan
	FractionalSheets float64 `json:"fractional_sheets"` // Sheets' worth of material consumed
	Efficiency       float64 `json:"efficiency"`        // Fractional over integer sheets (0..1)
	PricePerSheet    float64 `json:"price_per_sheet"`   // Price used for estimation
	BilledCost       float64 `json:"billed_cost"`       // SheetsToBuy * PricePerSheet
	ConsumedCost     float64 `json:"consumed_cost"`     // FractionalSheets * PricePerSheet
	OversizeCount    int     `json:"oversize_count"`    // Pieces that did not fit a sheet
}

// CalculatePurchaseEstimate computes what a plan costs. The billed cost
// charges every opened sheet in full; the consumed cost charges only the
// material the pieces used, after waste-tolerance snapping.
func CalculatePurchaseEstimate(result Result, pricePerSheet float64) PurchaseEstimate {
	return PurchaseEstimate{
		SheetsToBuy:      result.TotalIntegerSheets,
		FractionalSheets: result.TotalFractionalSheets,
		Efficiency:       result.Efficiency(),
		PricePerSheet:    pricePerSheet,
		BilledCost:       float64(result.TotalIntegerSheets) * pricePerSheet,
		ConsumedCost:     result.TotalFractionalSheets * pricePerSheet,
		OversizeCount:    len(result.OversizedPieces),
	}
}
