package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatasetValidation(t *testing.T) {
	assert := assert.New(t)

	_, err := NewDataset(nil)
	assert.Error(err)

	_, err = NewDataset([]Trajectory{
		{T: []float64{1, 2}, Y: []float64{1}},
	})
	assert.Error(err)

	_, err = NewDataset([]Trajectory{
		{T: []float64{}, Y: []float64{}},
	})
	assert.Error(err)

	d, err := NewDataset([]Trajectory{
		{T: []float64{1, 2, 3}, Y: []float64{4, 5, 6}},
		{T: []float64{1, 2}, Y: []float64{7, 8}},
	})
	assert.NoError(err)
	assert.Equal(2, d.Len())
	assert.Equal(5, d.TotalObs())
}

func TestDatasetFromTable(t *testing.T) {
	assert := assert.New(t)

	tGrid := []float64{1, 2, 3}

	// Canonical orientation: one row per unit
	d, err := NewDatasetFromTable(tGrid, [][]float64{
		{10, 11, 12},
		{20, 21, 22},
	})
	assert.NoError(err)
	assert.Equal(2, d.Len())
	assert.Equal([]float64{1, 2, 3}, d.Units[1].T)
	assert.Equal([]float64{20, 21, 22}, d.Units[1].Y)

	// A transposed table is an error, never a guess
	_, err = NewDatasetFromTable(tGrid, [][]float64{
		{10, 20},
		{11, 21},
		{12, 22},
	})
	assert.Error(err)

	_, err = NewDatasetFromTable(nil, [][]float64{{1}})
	assert.Error(err)

	_, err = NewDatasetFromTable(tGrid, nil)
	assert.Error(err)
}

func TestDatasetFromTableCopies(t *testing.T) {
	assert := assert.New(t)

	tGrid := []float64{1, 2}
	rows := [][]float64{{5, 6}}
	d, err := NewDatasetFromTable(tGrid, rows)
	assert.NoError(err)

	rows[0][0] = 99
	tGrid[0] = 99
	assert.Equal(5.0, d.Units[0].Y[0])
	assert.Equal(1.0, d.Units[0].T[0])
}

func TestDatasetTruncate(t *testing.T) {
	assert := assert.New(t)

	d, err := NewDataset([]Trajectory{
		{T: []float64{1, 2, 3}, Y: []float64{4, 5, 6}},
		{T: []float64{1, 2, 3}, Y: []float64{7, 8, 9}},
	})
	assert.NoError(err)

	cut, err := d.Truncate(1, 2)
	assert.NoError(err)
	assert.Equal([]float64{7, 8}, cut.Units[1].Y)
	assert.Equal(3, len(cut.Units[0].Y), "Only the designated unit is truncated")
	assert.Equal(5, cut.TotalObs())

	// Original untouched
	assert.Equal(3, len(d.Units[1].Y))

	_, err = d.Truncate(-1, 1)
	assert.Error(err)
	_, err = d.Truncate(2, 1)
	assert.Error(err)
	_, err = d.Truncate(0, 0)
	assert.Error(err)
	_, err = d.Truncate(0, 4)
	assert.Error(err)
}
