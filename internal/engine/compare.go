package engine

import (
	"fmt"
	"sync"

	"github.com/piwi3910/cutplan/internal/model"
)

// ComparisonScenario defines a named configuration and policy to compare.
type ComparisonScenario struct {
	Name   string
	Config model.PackConfig
	Policy Policy
}

// ComparisonResult holds the utilization report and summary figures for a
// single scenario.
type ComparisonResult struct {
	Scenario         ComparisonScenario
	Result           model.Result
	SheetsUsed       int
	FractionalSheets float64
	Efficiency       float64
	OversizeCount    int
}

// CompareScenarios packs every scenario and returns the results in scenario
// order. Scenarios are packed concurrently.
func CompareScenarios(scenarios []ComparisonScenario, opts ...Option) []ComparisonResult {
	plans := make([]*Plan, len(scenarios))
	var wg sync.WaitGroup
	for i, sc := range scenarios {
		wg.Add(1)
		go func(i int, sc ComparisonScenario) {
			defer wg.Done()
			scenarioOpts := append(append([]Option(nil), opts...), WithPolicy(sc.Policy))
			plans[i] = New(sc.Config, scenarioOpts...)
		}(i, sc)
	}
	wg.Wait()

	results := make([]ComparisonResult, 0, len(scenarios))
	for i, scenario := range scenarios {
		result := plans[i].Calculate(CalculateOptions{})
		results = append(results, ComparisonResult{
			Scenario:         scenario,
			Result:           result,
			SheetsUsed:       result.TotalIntegerSheets,
			FractionalSheets: result.TotalFractionalSheets,
			Efficiency:       result.Efficiency(),
			OversizeCount:    len(result.OversizedPieces),
		})
	}

	return results
}

// BestScenario returns the index of the scenario using the fewest sheets,
// then the highest efficiency. Returns -1 for an empty list.
func BestScenario(results []ComparisonResult) int {
	best := -1
	for i, r := range results {
		if best < 0 ||
			r.SheetsUsed < results[best].SheetsUsed ||
			(r.SheetsUsed == results[best].SheetsUsed && r.Efficiency > results[best].Efficiency+eps) {
			best = i
		}
	}
	return best
}

// BuildDefaultScenarios generates what-if alternatives around the base
// configuration: the other sheet policy, free rotation, halved spacing and no
// margin.
func BuildDefaultScenarios(base model.PackConfig, basePolicy Policy) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:   "Current Settings",
			Config: base,
			Policy: basePolicy,
		},
	}

	// Scenario: Try the other policy
	altPolicy := PolicyBestFit
	if basePolicy == PolicyBestFit {
		altPolicy = PolicyFirstFit
	}
	scenarios = append(scenarios, ComparisonScenario{
		Name:   fmt.Sprintf("Policy %s", altPolicy),
		Config: base,
		Policy: altPolicy,
	})

	// Scenario: Ignore grain and allow rotation
	if base.Grain != model.GrainNone {
		free := base
		free.Grain = model.GrainNone
		scenarios = append(scenarios, ComparisonScenario{
			Name:   "Free Rotation",
			Config: free,
			Policy: basePolicy,
		})
	}

	// Scenario: Tighter spacing (simulate thinner blade)
	if base.PieceSpacing > 0 {
		tight := base
		tight.PieceSpacing = base.PieceSpacing * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:   fmt.Sprintf("Spacing %g (half)", tight.PieceSpacing),
			Config: tight,
			Policy: basePolicy,
		})
	}

	// Scenario: No margin
	if base.Margin > 0 {
		noMargin := base
		noMargin.Margin = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:   "No Margin",
			Config: noMargin,
			Policy: basePolicy,
		})
	}

	return scenarios
}
