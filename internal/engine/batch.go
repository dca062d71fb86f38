package engine

import (
	"sync"

	"github.com/piwi3910/cutplan/internal/model"
)

// PackAll packs independent configurations concurrently, one goroutine per
// configuration. Plans are returned in input order.
func PackAll(cfgs []model.PackConfig, opts ...Option) []*Plan {
	plans := make([]*Plan, len(cfgs))

	var wg sync.WaitGroup
	for i := range cfgs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			plans[i] = New(cfgs[i], opts...)
		}(i)
	}
	wg.Wait()

	return plans
}

// AverageEfficiency returns the material efficiency of a batch: summed
// fractional sheets over summed integer sheets, or 0 when no sheet was used.
func AverageEfficiency(results ...model.Result) float64 {
	var frac float64
	var total int
	for _, r := range results {
		frac += r.TotalFractionalSheets
		total += r.TotalIntegerSheets
	}
	if total == 0 {
		return 0
	}
	return frac / float64(total)
}
