package model

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// IGVector holds per-component inverse-gamma hyperparameters for the
// diagonal covariance mode.
type IGVector struct {
	Alpha []float64
	Beta  []float64
}

// Prior collects every hyperparameter of the hierarchical model:
//
//   - Normal(M, diag(V)) on the population mean
//   - per-component InverseGamma(OmegaDiag) OR InverseWishart(OmegaFull, Rho)
//     on the random-effects covariance (exactly one must be set)
//   - InverseGamma(Alpha, Beta) on the residual-variance scale
//
// Rho is the inverse-Wishart prior degrees of freedom; zero means "use the
// random-effect dimension", the smallest proper choice.
type Prior struct {
	M         []float64
	V         []float64
	OmegaDiag *IGVector
	OmegaFull *mat.SymDense
	Rho       float64
	Alpha     float64
	Beta      float64
}

// Dim returns the random-effect dimension implied by the prior mean.
func (p *Prior) Dim() int {
	return len(p.M)
}

// Check validates the prior for dimension d and the given covariance mode.
// Mode/prior mismatch is a usage error and must be caught here, before any
// sampling happens.
func (p *Prior) Check(d int, diagonal bool) error {
	if len(p.M) != d {
		return errors.Errorf("Prior mean has dimension %d, expected %d", len(p.M), d)
	}
	if len(p.V) != d {
		return errors.Errorf("Prior mean variance has dimension %d, expected %d", len(p.V), d)
	}
	for k, v := range p.V {
		if v <= 0 {
			return errors.Errorf("Prior mean variance component %d is %f, must be positive", k, v)
		}
	}

	if p.Alpha <= 0 || p.Beta <= 0 {
		return errors.Errorf("Residual-scale prior requires positive alpha and beta, got (%f, %f)", p.Alpha, p.Beta)
	}

	if p.OmegaDiag != nil && p.OmegaFull != nil {
		return errors.Errorf("Both diagonal and full covariance priors supplied, exactly one is allowed")
	}

	if diagonal {
		if p.OmegaDiag == nil {
			return errors.Errorf("Diagonal covariance mode selected but no per-component prior supplied")
		}
		if len(p.OmegaDiag.Alpha) != d || len(p.OmegaDiag.Beta) != d {
			return errors.Errorf(
				"Diagonal covariance prior has %d/%d components, expected %d",
				len(p.OmegaDiag.Alpha), len(p.OmegaDiag.Beta), d,
			)
		}
		for k := 0; k < d; k++ {
			if p.OmegaDiag.Alpha[k] <= 0 || p.OmegaDiag.Beta[k] <= 0 {
				return errors.Errorf("Diagonal covariance prior component %d is not positive", k)
			}
		}
		return nil
	}

	if p.OmegaFull == nil {
		return errors.Errorf("Full covariance mode selected but no scale matrix supplied")
	}
	if r := p.OmegaFull.SymmetricDim(); r != d {
		return errors.Errorf("Covariance prior scale matrix is %dx%d, expected %dx%d", r, r, d, d)
	}
	if p.Rho < 0 {
		return errors.Errorf("Inverse-Wishart degrees of freedom %f may not be negative", p.Rho)
	}
	return nil
}

// Start is the chain's initial state: one random-effect row per unit, the
// population mean, and the residual scale. The dimension of Mu fixes the
// random-effect dimension for the entire run.
type Start struct {
	Phi    [][]float64
	Mu     []float64
	Gamma2 float64
}

// Check validates the starting state for n units.
func (s *Start) Check(n int) error {
	d := len(s.Mu)
	if d < 1 {
		return errors.Errorf("Starting mean is empty")
	}
	if len(s.Phi) != n {
		return errors.Errorf("Starting random effects have %d rows, expected one per unit (%d)", len(s.Phi), n)
	}
	for j, row := range s.Phi {
		if len(row) != d {
			return errors.Errorf("Starting random effect %d has dimension %d, expected %d", j, len(row), d)
		}
	}
	if s.Gamma2 <= 0 {
		return errors.Errorf("Starting residual scale %f must be positive", s.Gamma2)
	}
	return nil
}
