package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/cutplan/internal/model"
)

func TestPackAll_MatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	cfgs := make([]model.PackConfig, 8)
	for i := range cfgs {
		cfgs[i] = randomConfig(rng)
	}

	plans := PackAll(cfgs)
	require.Len(t, plans, len(cfgs))
	for i, cfg := range cfgs {
		assert.Equal(t, New(cfg).Sheets(), plans[i].Sheets())
		assert.Equal(t, cfg, plans[i].Config())
	}
}

func TestPackAll_Empty(t *testing.T) {
	assert.Empty(t, PackAll(nil))
}

func TestAverageEfficiency(t *testing.T) {
	assert.Equal(t, 0.0, AverageEfficiency())

	a := model.Result{TotalFractionalSheets: 1.5, TotalIntegerSheets: 2}
	b := model.Result{TotalFractionalSheets: 0.75, TotalIntegerSheets: 1}
	assert.InDelta(t, 0.75, AverageEfficiency(a, b), 1e-12)
}
