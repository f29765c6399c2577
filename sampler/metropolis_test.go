package sampler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CraigKelly/nlmix/model"
	"github.com/CraigKelly/nlmix/rand"
)

// pinnedPrior pins mu at m, omega at omega0, and gamma2 near 1.0 so the
// random-effect step is the only thing moving. Huge inverse-gamma shape and
// rate parameters concentrate the draws at rate/shape.
func pinnedPrior(m float64, omega0 float64) *model.Prior {
	const pin = 1.0e8
	return &model.Prior{
		M:     []float64{m},
		V:     []float64{1.0e-12},
		Alpha: pin,
		Beta:  pin,
		OmegaDiag: &model.IGVector{
			Alpha: []float64{pin},
			Beta:  []float64{pin * omega0},
		},
	}
}

// constFamily predicts y = phi[0] at every point, the tractable linear toy
// model: with one unit and one observation the conditional posterior of phi
// is available in closed form.
func constFamily() model.Family {
	return model.Family{
		Name: "const",
		Dim:  1,
		Regression: func(phi []float64, t []float64) []float64 {
			y := make([]float64, len(t))
			for i := range y {
				y[i] = phi[0]
			}
			return y
		},
		Variance: model.UnitVariance,
	}
}

// TestMetropolisStationary runs the toy model where the target is known:
// prior N(1, 1) on phi (mu pinned at 1, omega pinned at 1), one observation
// y=2 with unit variance (gamma2 pinned at 1). The stationary distribution
// is the conjugate posterior N(1.5, 0.5); a chain whose acceptance rule
// deviates from min(1, ratio) lands somewhere else.
func TestMetropolisStationary(t *testing.T) {
	assert := assert.New(t)

	gen, err := rand.NewGenerator(23)
	assert.NoError(err)

	data, err := model.NewDataset([]model.Trajectory{
		{T: []float64{1.0}, Y: []float64{2.0}},
	})
	assert.NoError(err)

	start := &model.Start{
		Phi:    [][]float64{{1.0}},
		Mu:     []float64{1.0},
		Gamma2: 1.0,
	}

	g, err := NewGibbs(gen, data, constFamily(), pinnedPrior(1.0, 1.0), start, Config{
		Iterations: 20000,
		Omega:      OmegaDiag,
		PropPar:    1.0,
		PredUnit:   -1,
	})
	assert.NoError(err)

	tr, err := g.Run()
	assert.NoError(err)

	burn := 2000
	sum, sumSq := 0.0, 0.0
	cnt := 0.0
	for i := burn; i < tr.Len(); i++ {
		v := tr.Phi[i][0][0]
		sum += v
		sumSq += v * v
		cnt++
	}
	mean := sum / cnt
	variance := sumSq/cnt - mean*mean

	assert.InDelta(1.5, mean, 0.1, "Posterior mean off: got %f", mean)
	assert.InDelta(0.5, variance, 0.15, "Posterior variance off: got %f", variance)
}

// TestAcceptanceExtremes checks min(1, ratio) behavior at its two ends: a
// vanishing proposal step makes the ratio approach 1 (accept essentially
// always), and a huge step against a sharp likelihood is essentially always
// rejected.
func TestAcceptanceExtremes(t *testing.T) {
	assert := assert.New(t)

	n := 4
	runWith := func(propPar float64, noiseSd float64) float64 {
		gen, err := rand.NewGenerator(31)
		assert.NoError(err)
		data := expGrowthData(gen, n, noiseSd)

		iters := 300
		g, err := NewGibbs(gen, data, model.Paris2(), vagueDiagPrior(2), expGrowthStart(n), Config{
			Iterations:   iters,
			Omega:        OmegaDiag,
			PropPar:      propPar,
			PredUnit:     -1,
			AcceptWindow: iters,
		})
		assert.NoError(err)

		_, err = g.Run()
		assert.NoError(err)
		return g.AcceptanceRate()
	}

	assert.True(runWith(1.0e-9, 0.1) > 0.95, "Vanishing proposals should nearly always accept")
	assert.True(runWith(100.0, 0.05) < 0.5, "Wild proposals against sharp data should mostly reject")
}

// TestUndefinedRatioRejects forces the candidate likelihood into NaN: the
// regression function returns a valid prediction only at the starting value,
// so every proposed move has an undefined ratio and must be rejected.
func TestUndefinedRatioRejects(t *testing.T) {
	assert := assert.New(t)

	const safe = 0.7
	poisoned := model.Family{
		Name: "poisoned",
		Dim:  1,
		Regression: func(phi []float64, t []float64) []float64 {
			y := make([]float64, len(t))
			for i := range y {
				if phi[0] == safe {
					y[i] = 1.0
				} else {
					y[i] = math.NaN()
				}
			}
			return y
		},
		Variance: model.UnitVariance,
	}

	gen, err := rand.NewGenerator(37)
	assert.NoError(err)

	data, err := model.NewDataset([]model.Trajectory{
		{T: []float64{1, 2, 3}, Y: []float64{1, 1, 1}},
		{T: []float64{1, 2}, Y: []float64{1, 1}},
	})
	assert.NoError(err)

	start := &model.Start{
		Phi:    [][]float64{{safe}, {safe}},
		Mu:     []float64{safe},
		Gamma2: 1.0,
	}

	g, err := NewGibbs(gen, data, poisoned, vagueDiagPrior(1), start, Config{
		Iterations: 50,
		Omega:      OmegaDiag,
		PropPar:    0.5,
		PredUnit:   -1,
	})
	assert.NoError(err)

	tr, err := g.Run()
	assert.NoError(err)

	for i := 0; i < tr.Len(); i++ {
		assert.Equal(safe, tr.Phi[i][0][0], "Unit 0 moved at iteration %d", i)
		assert.Equal(safe, tr.Phi[i][1][0], "Unit 1 moved at iteration %d", i)
	}
	assert.Equal(0.0, g.AcceptanceRate())
}
