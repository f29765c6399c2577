package model

import (
	"github.com/pkg/errors"
)

// Trajectory is a single observed unit: an ordered sequence of
// independent-variable points T and the paired observations Y. Units in one
// dataset may have different lengths.
type Trajectory struct {
	T []float64
	Y []float64
}

// Check returns an error if the trajectory is empty or T/Y are not paired.
func (tr Trajectory) Check() error {
	if len(tr.T) < 1 {
		return errors.Errorf("Trajectory has no observations")
	}
	if len(tr.T) != len(tr.Y) {
		return errors.Errorf("Trajectory has %d time points but %d observations", len(tr.T), len(tr.Y))
	}
	return nil
}

// Dataset is the ragged collection of trajectories the sampler works on.
// Rectangular input (all units sharing a single time grid) is normalized to
// this representation up front.
type Dataset struct {
	Units []Trajectory
}

// NewDataset creates a dataset from an already-ragged collection.
func NewDataset(units []Trajectory) (*Dataset, error) {
	d := &Dataset{Units: units}
	if err := d.Check(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewDatasetFromTable normalizes rectangular input: a single shared time grid
// t and one row of observations per unit, each row exactly len(t) long. We
// require this canonical orientation instead of guessing from dimension
// lengths, so a transposed table is an error rather than a silent
// misinterpretation.
func NewDatasetFromTable(t []float64, y [][]float64) (*Dataset, error) {
	if len(t) < 1 {
		return nil, errors.Errorf("Shared time grid is empty")
	}
	if len(y) < 1 {
		return nil, errors.Errorf("Observation table has no units")
	}

	units := make([]Trajectory, len(y))
	for j, row := range y {
		if len(row) != len(t) {
			return nil, errors.Errorf(
				"Observation row %d has %d entries but the time grid has %d: rows must be one unit each",
				j, len(row), len(t),
			)
		}
		tj := make([]float64, len(t))
		yj := make([]float64, len(t))
		copy(tj, t)
		copy(yj, row)
		units[j] = Trajectory{T: tj, Y: yj}
	}

	return NewDataset(units)
}

// Check returns an error if any trajectory in the dataset is invalid.
func (d *Dataset) Check() error {
	if len(d.Units) < 1 {
		return errors.Errorf("Dataset has no trajectories")
	}
	for j, u := range d.Units {
		if err := u.Check(); err != nil {
			return errors.Wrapf(err, "Dataset unit %d is invalid", j)
		}
	}
	return nil
}

// Len returns the number of units.
func (d *Dataset) Len() int {
	return len(d.Units)
}

// TotalObs returns the observation count pooled across all units.
func (d *Dataset) TotalObs() int {
	n := 0
	for _, u := range d.Units {
		n += len(u.T)
	}
	return n
}

// Truncate returns a copy of the dataset in which the designated unit keeps
// only its first cut points. The remaining points are reserved for held-out
// prediction and are never seen by the sampler. The receiver is not modified.
func (d *Dataset) Truncate(unit int, cut int) (*Dataset, error) {
	if unit < 0 || unit >= len(d.Units) {
		return nil, errors.Errorf("Truncation unit %d out of range (have %d units)", unit, len(d.Units))
	}
	nu := len(d.Units[unit].T)
	if cut < 1 || cut > nu {
		return nil, errors.Errorf("Truncation cut %d invalid for unit %d with %d observations", cut, unit, nu)
	}

	units := make([]Trajectory, len(d.Units))
	for j, u := range d.Units {
		keep := len(u.T)
		if j == unit {
			keep = cut
		}
		tj := make([]float64, keep)
		yj := make([]float64, keep)
		copy(tj, u.T[:keep])
		copy(yj, u.Y[:keep])
		units[j] = Trajectory{T: tj, Y: yj}
	}

	return NewDataset(units)
}
