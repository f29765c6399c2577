package model

import (
	"gonum.org/v1/gonum/mat"
)

// State is the full chain state at one iteration: random effects Phi (one
// row per unit), population mean Mu, the covariance in whichever
// representation the run uses (OmegaDiag or OmegaFull, never both), and the
// residual scale Gamma2. The driver owns the single mutable instance; trace
// entries are snapshots taken with Clone.
type State struct {
	Phi       [][]float64
	Mu        []float64
	OmegaDiag []float64
	OmegaFull *mat.SymDense
	Gamma2    float64
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	cp := &State{
		Phi:    make([][]float64, len(s.Phi)),
		Mu:     make([]float64, len(s.Mu)),
		Gamma2: s.Gamma2,
	}

	for j, row := range s.Phi {
		cp.Phi[j] = make([]float64, len(row))
		copy(cp.Phi[j], row)
	}
	copy(cp.Mu, s.Mu)

	if s.OmegaDiag != nil {
		cp.OmegaDiag = make([]float64, len(s.OmegaDiag))
		copy(cp.OmegaDiag, s.OmegaDiag)
	}
	if s.OmegaFull != nil {
		d := s.OmegaFull.SymmetricDim()
		cp.OmegaFull = mat.NewSymDense(d, nil)
		cp.OmegaFull.CopySym(s.OmegaFull)
	}

	return cp
}
