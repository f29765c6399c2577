package sampler

import (
	"github.com/pkg/errors"
)

// OmegaMode selects the random-effects covariance structure for a run. The
// mode is fixed at configuration time and must agree with the supplied prior.
type OmegaMode int

const (
	// OmegaDiag treats the covariance as d independent variances, each with
	// its own inverse-gamma prior.
	OmegaDiag OmegaMode = iota
	// OmegaFull treats the covariance as a dense positive-definite matrix
	// with an inverse-Wishart prior.
	OmegaFull
)

// DefaultAcceptWindow is the rolling window (in iterations) used for the
// Metropolis acceptance-rate readout.
const DefaultAcceptWindow = 100

// Config holds the per-run sampler options.
type Config struct {
	// Iterations is the fixed chain length.
	Iterations int
	// Omega selects the covariance structure (diagonal or full).
	Omega OmegaMode
	// PropPar scales the Metropolis proposal: the per-component proposal
	// standard deviation is |start.Mu| * PropPar, fixed for the whole run.
	PropPar float64
	// PredUnit is the index of the unit reserved for held-out prediction,
	// or -1 when no unit is held out.
	PredUnit int
	// Cut is the number of leading points of PredUnit used for fitting.
	// Ignored when PredUnit < 0.
	Cut int
	// AcceptWindow overrides DefaultAcceptWindow when positive.
	AcceptWindow int
	// Progress, when set, is called every AcceptWindow iterations with the
	// number of completed iterations and the rolling acceptance rate.
	Progress func(done int, acceptRate float64)
}

// Check returns an error for unusable configuration values.
func (c *Config) Check() error {
	if c.Iterations < 1 {
		return errors.Errorf("Iteration count %d must be positive", c.Iterations)
	}
	if c.Omega != OmegaDiag && c.Omega != OmegaFull {
		return errors.Errorf("Unknown covariance mode %d", c.Omega)
	}
	if c.PropPar <= 0 {
		return errors.Errorf("Proposal scale multiplier %f must be positive", c.PropPar)
	}
	if c.PredUnit >= 0 && c.Cut < 1 {
		return errors.Errorf("Held-out unit %d requires a positive cut, got %d", c.PredUnit, c.Cut)
	}
	return nil
}
