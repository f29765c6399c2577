package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFamilyByName(t *testing.T) {
	assert := assert.New(t)

	for name, dim := range map[string]int{
		"gompertz": 3,
		"logistic": 3,
		"richards": 4,
		"weibull":  4,
		"paris":    3,
		"paris2":   2,
	} {
		f, err := FamilyByName(name)
		assert.NoError(err)
		assert.Equal(name, f.Name)
		assert.Equal(dim, f.Dim)
		assert.NoError(f.Check(dim))
		assert.Error(f.Check(dim + 1))
	}

	_, err := FamilyByName("mystery")
	assert.Error(err)
}

func TestGompertzShape(t *testing.T) {
	assert := assert.New(t)

	f := Gompertz()
	tGrid := []float64{0, 1, 2, 5, 50}
	y := f.Regression([]float64{2.0, 1.5, 0.8}, tGrid)

	// Monotone increasing toward the asymptote A
	for i := 1; i < len(y); i++ {
		assert.True(y[i] > y[i-1], "Gompertz should increase: y[%d]=%f y[%d]=%f", i-1, y[i-1], i, y[i])
	}
	assert.InDelta(2.0, y[len(y)-1], 1e-6)
}

func TestRichardsReducesToLogistic(t *testing.T) {
	assert := assert.New(t)

	tGrid := []float64{0, 0.5, 1, 2, 4}
	lg := Logistic().Regression([]float64{3.0, 1.0, 2.0}, tGrid)
	rc := Richards().Regression([]float64{3.0, 1.0, 2.0, 1.0}, tGrid)

	for i := range tGrid {
		assert.InDelta(lg[i], rc[i], 1e-12)
	}
}

func TestParisLimitsToParis2(t *testing.T) {
	assert := assert.New(t)

	tGrid := []float64{0, 10, 100, 1000}
	p2 := Paris2().Regression([]float64{0.9, 1e-3}, tGrid)
	p := Paris().Regression([]float64{0.9, 1e-3, 2.0}, tGrid)

	for i := range tGrid {
		assert.InDelta(p2[i], p[i], 1e-9)
	}

	// Away from m=2 the closed form applies and grows
	p3 := Paris().Regression([]float64{0.9, 1e-3, 3.0}, tGrid)
	for i := 1; i < len(p3); i++ {
		assert.True(p3[i] > p3[i-1] || math.IsNaN(p3[i]))
	}
}

func TestVarianceShapes(t *testing.T) {
	assert := assert.New(t)

	tGrid := []float64{0.5, 1, 2}

	u := UnitVariance(tGrid)
	assert.Equal([]float64{1, 1, 1}, u)

	p := PowerVariance(2.0)(tGrid)
	assert.InDelta(0.25, p[0], 1e-12)
	assert.InDelta(1.0, p[1], 1e-12)
	assert.InDelta(4.0, p[2], 1e-12)
}
