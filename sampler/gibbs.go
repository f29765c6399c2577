package sampler

import (
	"math"

	"github.com/pkg/errors"

	"github.com/CraigKelly/nlmix/buffer"
	"github.com/CraigKelly/nlmix/model"
	"github.com/CraigKelly/nlmix/rand"
)

// Gibbs is a single-chain Metropolis-within-Gibbs sampler for a nonlinear
// mixed-effects model: per-unit random effects phi_j with population prior
// Normal(mu, Omega), observations y_jk ~ Normal(f(phi_j, t_jk),
// gamma2*s2(t_jk)), and conjugate hyperpriors on mu, Omega, and gamma2.
//
// The chain is inherently sequential; a Gibbs value is not safe for
// concurrent use.
type Gibbs struct {
	gen    *rand.Generator
	data   *model.Dataset
	family model.Family
	prior  *model.Prior
	cfg    Config

	state    *model.State
	propSd   []float64   // proposal sd per component, fixed for the run
	s2       [][]float64 // variance shape s2(t_j) per unit, precomputed
	rho      float64     // inverse-Wishart prior df (full mode)
	gamShape float64     // gamma2 posterior shape, fixed for the run

	accWindow *buffer.CircularFloat
}

// NewGibbs validates every input and returns a sampler ready to run. All
// usage errors (dimension mismatches, covariance mode/prior disagreement,
// bad configuration, non-positive variance shape) are reported here, before
// any iteration happens.
func NewGibbs(
	gen *rand.Generator,
	data *model.Dataset,
	family model.Family,
	prior *model.Prior,
	start *model.Start,
	cfg Config,
) (*Gibbs, error) {
	if gen == nil {
		return nil, errors.New("No random generator supplied")
	}
	if data == nil {
		return nil, errors.New("No dataset supplied")
	}
	if prior == nil {
		return nil, errors.New("No prior supplied")
	}
	if start == nil {
		return nil, errors.New("No starting state supplied")
	}

	if err := cfg.Check(); err != nil {
		return nil, errors.Wrap(err, "Invalid sampler configuration")
	}
	if err := data.Check(); err != nil {
		return nil, errors.Wrap(err, "Invalid dataset")
	}

	// The starting mean fixes the random-effect dimension for the run.
	d := len(start.Mu)
	if err := start.Check(data.Len()); err != nil {
		return nil, errors.Wrap(err, "Invalid starting state")
	}
	if err := prior.Check(d, cfg.Omega == OmegaDiag); err != nil {
		return nil, errors.Wrap(err, "Invalid prior")
	}
	if err := family.Check(d); err != nil {
		return nil, errors.Wrap(err, "Invalid model family")
	}

	// Truncate the held-out unit before anything touches the data.
	if cfg.PredUnit >= 0 {
		var err error
		data, err = data.Truncate(cfg.PredUnit, cfg.Cut)
		if err != nil {
			return nil, errors.Wrap(err, "Could not truncate held-out unit")
		}
	}

	// Precompute the variance shape on the fitted points only.
	s2 := make([][]float64, data.Len())
	for j, u := range data.Units {
		s2[j] = family.Variance(u.T)
		if len(s2[j]) != len(u.T) {
			return nil, errors.Errorf("Variance function returned %d values for %d points (unit %d)", len(s2[j]), len(u.T), j)
		}
		for k, v := range s2[j] {
			if !(v > 0) {
				return nil, errors.Errorf("Variance shape is %f at unit %d point %d, must be strictly positive", v, j, k)
			}
		}
	}

	propSd := make([]float64, d)
	for k, m := range start.Mu {
		propSd[k] = math.Abs(m) * cfg.PropPar
	}

	rho := prior.Rho
	if cfg.Omega == OmegaFull && rho == 0 {
		rho = float64(d)
	}

	window := cfg.AcceptWindow
	if window < 1 {
		window = DefaultAcceptWindow
	}

	g := &Gibbs{
		gen:       gen,
		data:      data,
		family:    family,
		prior:     prior,
		cfg:       cfg,
		propSd:    propSd,
		s2:        s2,
		rho:       rho,
		gamShape:  prior.Alpha + float64(data.TotalObs())/2.0,
		accWindow: buffer.NewCircularFloat(window),
	}

	g.state = initialState(start, cfg.Omega, d)

	// Omega has no starting value in the input record; its full conditional
	// depends only on phi and mu, both supplied, so draw the initial Omega
	// from that conditional before the first iteration.
	if err := g.updateOmega(); err != nil {
		return nil, errors.Wrap(err, "Could not initialize covariance")
	}

	return g, nil
}

// initialState deep-copies the starting values into a chain state.
func initialState(start *model.Start, mode OmegaMode, d int) *model.State {
	st := &model.State{
		Phi:    make([][]float64, len(start.Phi)),
		Mu:     make([]float64, d),
		Gamma2: start.Gamma2,
	}
	for j, row := range start.Phi {
		st.Phi[j] = make([]float64, d)
		copy(st.Phi[j], row)
	}
	copy(st.Mu, start.Mu)

	if mode == OmegaDiag {
		st.OmegaDiag = make([]float64, d)
	}
	// OmegaFull is allocated by the first covariance update.

	return st
}

// Run executes exactly cfg.Iterations iterations of the fixed update order
// (random effects, mean, covariance, residual scale) and returns the full
// trace, one snapshot per iteration. Run consumes the chain; call it once.
func (g *Gibbs) Run() (*Trace, error) {
	tr := newTrace(g.cfg.Omega, g.cfg.Iterations)

	for i := 0; i < g.cfg.Iterations; i++ {
		acc := g.updatePhi()
		if err := g.updateMu(); err != nil {
			return nil, errors.Wrapf(err, "Mean update failed at iteration %d", i+1)
		}
		if err := g.updateOmega(); err != nil {
			return nil, errors.Wrapf(err, "Covariance update failed at iteration %d", i+1)
		}
		g.updateGamma2()

		g.accWindow.Add(acc)
		tr.append(g.state)

		if g.cfg.Progress != nil && (i+1)%g.accWindow.BufSize == 0 {
			g.cfg.Progress(i+1, g.accWindow.Mean())
		}
	}

	return tr, nil
}

// AcceptanceRate reports the mean Metropolis acceptance fraction over the
// rolling window (0 until the first iteration completes).
func (g *Gibbs) AcceptanceRate() float64 {
	return g.accWindow.Mean()
}

// Data exposes the dataset actually fitted (after any truncation), mainly so
// callers can report sizes.
func (g *Gibbs) Data() *model.Dataset {
	return g.data
}
