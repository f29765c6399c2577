package sampler

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/CraigKelly/nlmix/model"
)

// updatePhi performs one Metropolis sweep over all units: for each unit a
// d-dimensional candidate is proposed and accepted or rejected as one block.
// Uses the previous iteration's mu, Omega, and gamma2. Returns the fraction
// of units whose candidate was accepted.
func (g *Gibbs) updatePhi() float64 {
	d := len(g.state.Mu)

	// In full mode the random-effects prior density comes from one MVN built
	// per sweep. Construction only fails if Omega lost positive-definiteness,
	// which the covariance update rules out; if it somehow happens the prior
	// ratio is undefined and every candidate is rejected this sweep.
	var full *distmv.Normal
	if g.cfg.Omega == OmegaFull {
		if nd, ok := distmv.NewNormal(g.state.Mu, g.state.OmegaFull, nil); ok {
			full = nd
		}
	}

	cand := make([]float64, d)
	accepted := 0

	for j, u := range g.data.Units {
		cur := g.state.Phi[j]
		for k := 0; k < d; k++ {
			cand[k] = cur[k] + g.propSd[k]*g.gen.NormFloat64()
		}

		logr := g.priorLogRatio(full, cand, cur) + g.likLogRatio(j, u, cand, cur)

		// Accept with probability min(1, exp(logr)) on a single uniform
		// draw. An undefined ratio (NaN) fails the comparison and so always
		// rejects, which keeps the chain well defined when the regression
		// function wanders into a degenerate region.
		if g.gen.Float64() < math.Exp(logr) {
			copy(cur, cand)
			accepted++
		}
	}

	return float64(accepted) / float64(g.data.Len())
}

// priorLogRatio is log N(cand; mu, Omega) - log N(cur; mu, Omega).
func (g *Gibbs) priorLogRatio(full *distmv.Normal, cand, cur []float64) float64 {
	if g.cfg.Omega == OmegaFull {
		if full == nil {
			return math.NaN()
		}
		return full.LogProb(cand) - full.LogProb(cur)
	}

	ratio := 0.0
	for k, mu := range g.state.Mu {
		nd := distuv.Normal{Mu: mu, Sigma: math.Sqrt(g.state.OmegaDiag[k])}
		ratio += nd.LogProb(cand[k]) - nd.LogProb(cur[k])
	}
	return ratio
}

// likLogRatio is the pooled observation log-likelihood ratio for unit j at
// the candidate vs the current random effect.
func (g *Gibbs) likLogRatio(j int, u model.Trajectory, cand, cur []float64) float64 {
	yhatCand := g.family.Regression(cand, u.T)
	yhatCur := g.family.Regression(cur, u.T)

	ratio := 0.0
	for k, y := range u.Y {
		sd := math.Sqrt(g.state.Gamma2 * g.s2[j][k])
		ratio += distuv.Normal{Mu: yhatCand[k], Sigma: sd}.LogProb(y)
		ratio -= distuv.Normal{Mu: yhatCur[k], Sigma: sd}.LogProb(y)
	}
	return ratio
}

// updateMu draws the population mean from its conjugate Normal conditional:
// posterior precision diag(1/v) + n*Omega^-1, posterior mean the
// precision-weighted blend of the prior mean and the random-effect average.
// Uses the current iteration's phi.
func (g *Gibbs) updateMu() error {
	d := len(g.state.Mu)
	n := float64(g.data.Len())

	sumPhi := make([]float64, d)
	for _, row := range g.state.Phi {
		for k, v := range row {
			sumPhi[k] += v
		}
	}

	if g.cfg.Omega == OmegaDiag {
		// Everything separates componentwise.
		for k := 0; k < d; k++ {
			prec := 1.0/g.prior.V[k] + n/g.state.OmegaDiag[k]
			mean := (g.prior.M[k]/g.prior.V[k] + sumPhi[k]/g.state.OmegaDiag[k]) / prec
			nd := distuv.Normal{Mu: mean, Sigma: math.Sqrt(1.0 / prec), Src: g.gen}
			g.state.Mu[k] = nd.Rand()
		}
		return nil
	}

	var chol mat.Cholesky
	if !chol.Factorize(g.state.OmegaFull) {
		return errors.Errorf("Random-effects covariance is not positive definite")
	}
	oinv := mat.NewSymDense(d, nil)
	if err := chol.InverseTo(oinv); err != nil {
		return errors.Wrap(err, "Could not invert random-effects covariance")
	}

	prec := mat.NewSymDense(d, nil)
	for a := 0; a < d; a++ {
		for b := a; b < d; b++ {
			v := n * oinv.At(a, b)
			if a == b {
				v += 1.0 / g.prior.V[a]
			}
			prec.SetSym(a, b, v)
		}
	}

	b := mat.NewVecDense(d, nil)
	for a := 0; a < d; a++ {
		v := g.prior.M[a] / g.prior.V[a]
		for c := 0; c < d; c++ {
			v += oinv.At(a, c) * sumPhi[c]
		}
		b.SetVec(a, v)
	}

	var pchol mat.Cholesky
	if !pchol.Factorize(prec) {
		return errors.Errorf("Mean posterior precision is not positive definite")
	}

	var mean mat.VecDense
	if err := pchol.SolveVecTo(&mean, b); err != nil {
		return errors.Wrap(err, "Could not solve for the mean posterior center")
	}
	cov := mat.NewSymDense(d, nil)
	if err := pchol.InverseTo(cov); err != nil {
		return errors.Wrap(err, "Could not invert the mean posterior precision")
	}

	center := make([]float64, d)
	for a := 0; a < d; a++ {
		center[a] = mean.AtVec(a)
	}

	nd, ok := distmv.NewNormal(center, cov, g.gen)
	if !ok {
		return errors.Errorf("Mean posterior covariance is not positive definite")
	}
	nd.Rand(g.state.Mu)
	return nil
}

// updateOmega draws the random-effects covariance from its conditional:
// independent inverse-gamma draws per component in diagonal mode, or a
// single inverse-Wishart draw in full mode. Uses the current iteration's phi
// and mu.
func (g *Gibbs) updateOmega() error {
	d := len(g.state.Mu)
	n := float64(g.data.Len())

	if g.cfg.Omega == OmegaDiag {
		for k := 0; k < d; k++ {
			ss := 0.0
			for _, row := range g.state.Phi {
				dev := row[k] - g.state.Mu[k]
				ss += dev * dev
			}
			ig := distuv.InverseGamma{
				Alpha: g.prior.OmegaDiag.Alpha[k] + n/2.0,
				Beta:  g.prior.OmegaDiag.Beta[k] + ss/2.0,
				Src:   g.gen,
			}
			g.state.OmegaDiag[k] = ig.Rand()
		}
		return nil
	}

	// Posterior scale: prior R plus the random-effect scatter about mu.
	scale := mat.NewSymDense(d, nil)
	for a := 0; a < d; a++ {
		for b := a; b < d; b++ {
			v := g.prior.OmegaFull.At(a, b)
			for _, row := range g.state.Phi {
				v += (row[a] - g.state.Mu[a]) * (row[b] - g.state.Mu[b])
			}
			scale.SetSym(a, b, v)
		}
	}

	// Omega ~ InvWishart(rho+n, scale) drawn as the inverse of a Wishart
	// draw with the inverted scale.
	var chol mat.Cholesky
	if !chol.Factorize(scale) {
		return errors.Errorf("Covariance posterior scale is not positive definite")
	}
	sinv := mat.NewSymDense(d, nil)
	if err := chol.InverseTo(sinv); err != nil {
		return errors.Wrap(err, "Could not invert the covariance posterior scale")
	}

	w, ok := distmat.NewWishart(sinv, g.rho+n, g.gen)
	if !ok {
		return errors.Errorf("Could not construct Wishart with %f degrees of freedom", g.rho+n)
	}
	draw := mat.NewSymDense(d, nil)
	w.RandSymTo(draw)

	var dchol mat.Cholesky
	if !dchol.Factorize(draw) {
		return errors.Errorf("Wishart draw is not positive definite")
	}
	if g.state.OmegaFull == nil {
		g.state.OmegaFull = mat.NewSymDense(d, nil)
	}
	if err := dchol.InverseTo(g.state.OmegaFull); err != nil {
		return errors.Wrap(err, "Could not invert the Wishart draw")
	}
	return nil
}

// updateGamma2 draws the residual scale from its inverse-gamma conditional.
// The shape is fixed per run; the rate pools the variance-weighted squared
// residuals at the current iteration's phi.
func (g *Gibbs) updateGamma2() {
	ss := 0.0
	for j, u := range g.data.Units {
		yhat := g.family.Regression(g.state.Phi[j], u.T)
		for k, y := range u.Y {
			r := y - yhat[k]
			ss += r * r / g.s2[j][k]
		}
	}

	ig := distuv.InverseGamma{
		Alpha: g.gamShape,
		Beta:  g.prior.Beta + ss/2.0,
		Src:   g.gen,
	}
	g.state.Gamma2 = ig.Rand()
}
