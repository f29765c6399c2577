package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/CraigKelly/nlmix/model"
	"github.com/CraigKelly/nlmix/rand"
	"github.com/CraigKelly/nlmix/sampler"
)

// Vague hyperparameters used when the caller supplies no prior of their own:
// a flat normal on the mean and near-improper inverse-gamma tails.
const (
	defaultMeanVar = 1.0e6
	defaultIGPar   = 1.0e-3
)

// FitRun loads a trajectory table, builds a vague default prior around the
// supplied starting values, runs the sampler, and writes posterior summaries
// to stdout as TSV.
func FitRun(sp *startupParams) error {
	mu0, err := parseFloats(sp.startMu)
	if err != nil {
		return errors.Wrap(err, "Could not parse starting mean")
	}

	sp.out.Printf("Reading trajectory table from %s\n", sp.dataFile)
	t, y, err := model.ReadTableFile(sp.dataFile)
	if err != nil {
		return err
	}
	for i := range t {
		t[i] *= sp.tScale
	}
	for _, row := range y {
		for i := range row {
			row[i] *= sp.yScale
		}
	}

	data, err := model.NewDatasetFromTable(t, y)
	if err != nil {
		return err
	}
	sp.out.Printf("Table has %d units of %d observations\n", data.Len(), len(t))

	fam, err := model.FamilyByName(sp.familyName)
	if err != nil {
		return err
	}
	if sp.varPower != 0 {
		fam.Variance = model.PowerVariance(sp.varPower)
	}

	mode := sampler.OmegaDiag
	switch sp.omegaMode {
	case "diag":
	case "full":
		mode = sampler.OmegaFull
	default:
		return errors.Errorf("Unknown covariance mode %q (want diag or full)", sp.omegaMode)
	}

	prior := defaultPrior(mu0, mode)
	start := defaultStart(mu0, data.Len(), sp.startG2)

	gen, err := rand.NewGenerator(sp.randomSeed)
	if err != nil {
		return err
	}

	cfg := sampler.Config{
		Iterations: sp.iterations,
		Omega:      mode,
		PropPar:    sp.propPar,
		PredUnit:   sp.predUnit,
		Cut:        sp.cut,
	}
	if sp.verbose {
		cfg.Progress = func(done int, acc float64) {
			sp.out.Printf("iter %6d  accept %.3f\n", done, acc)
		}
	}

	gibbs, err := sampler.NewGibbs(gen, data, fam, prior, start, cfg)
	if err != nil {
		return err
	}

	began := time.Now()
	trace, err := gibbs.Run()
	if err != nil {
		return err
	}
	sp.out.Printf("Sampled %d iterations in %v (final accept %.3f)\n",
		trace.Len(), time.Since(began), gibbs.AcceptanceRate())

	return report(sp, trace)
}

// report prints post-burn-in posterior summaries and optionally dumps the
// mean/scale trace to a TSV file.
func report(sp *startupParams, trace *sampler.Trace) error {
	muMean, err := trace.MuMean(sp.burnIn)
	if err != nil {
		return err
	}
	g2Mean, err := trace.Gamma2Mean(sp.burnIn)
	if err != nil {
		return err
	}

	for k, m := range muMean {
		fmt.Printf("mu[%d]\t%g\n", k, m)
	}
	fmt.Printf("gamma2\t%g\n", g2Mean)

	if sp.predUnit >= 0 {
		phiMean, err := trace.PhiMean(sp.predUnit, sp.burnIn)
		if err != nil {
			return err
		}
		for k, p := range phiMean {
			fmt.Printf("phi[%d][%d]\t%g\n", sp.predUnit, k, p)
		}
	}

	if len(sp.traceFile) < 1 {
		return nil
	}

	f, err := os.Create(sp.traceFile)
	if err != nil {
		return errors.Wrapf(err, "Could not create trace file %s", sp.traceFile)
	}
	defer f.Close()

	for i := 0; i < trace.Len(); i++ {
		fmt.Fprintf(f, "%d", i+1)
		for _, m := range trace.Mu[i] {
			fmt.Fprintf(f, "\t%g", m)
		}
		fmt.Fprintf(f, "\t%g\n", trace.Gamma2[i])
	}
	sp.out.Printf("Wrote %d trace rows to %s\n", trace.Len(), sp.traceFile)

	return nil
}

// defaultPrior builds a vague prior centered on the starting mean.
func defaultPrior(mu0 []float64, mode sampler.OmegaMode) *model.Prior {
	d := len(mu0)

	p := &model.Prior{
		M:     append([]float64(nil), mu0...),
		V:     make([]float64, d),
		Alpha: defaultIGPar,
		Beta:  defaultIGPar,
	}
	for k := range p.V {
		p.V[k] = defaultMeanVar
	}

	if mode == sampler.OmegaDiag {
		ig := &model.IGVector{
			Alpha: make([]float64, d),
			Beta:  make([]float64, d),
		}
		for k := 0; k < d; k++ {
			ig.Alpha[k] = defaultIGPar
			ig.Beta[k] = defaultIGPar
		}
		p.OmegaDiag = ig
	} else {
		p.OmegaFull = identityScale(d)
	}

	return p
}

// identityScale is the vague inverse-Wishart scale: a small identity.
func identityScale(d int) *mat.SymDense {
	s := mat.NewSymDense(d, nil)
	for k := 0; k < d; k++ {
		s.SetSym(k, k, defaultIGPar)
	}
	return s
}

// defaultStart replicates the starting mean into every unit's random effect.
func defaultStart(mu0 []float64, n int, gamma2 float64) *model.Start {
	st := &model.Start{
		Phi:    make([][]float64, n),
		Mu:     append([]float64(nil), mu0...),
		Gamma2: gamma2,
	}
	for j := range st.Phi {
		st.Phi[j] = append([]float64(nil), mu0...)
	}
	return st
}

// parseFloats parses a comma-separated float list.
func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad float %q", p)
		}
		out = append(out, v)
	}
	if len(out) < 1 {
		return nil, errors.Errorf("Empty float list")
	}
	return out, nil
}
