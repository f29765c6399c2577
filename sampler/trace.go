package sampler

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/CraigKelly/nlmix/model"
)

// Trace is the full posterior sample: parallel histories of every state
// component, one entry per iteration in chain order. The whole history is
// kept in memory so burn-in discard and marginal summaries can be done after
// the fact.
type Trace struct {
	mode OmegaMode

	// Phi is indexed [iteration][unit][component].
	Phi [][][]float64
	// Mu is indexed [iteration][component].
	Mu [][]float64
	// OmegaDiag is indexed [iteration][component] (diagonal mode only).
	OmegaDiag [][]float64
	// OmegaFull holds one matrix per iteration (full mode only).
	OmegaFull []*mat.SymDense
	// Gamma2 holds one residual-scale draw per iteration.
	Gamma2 []float64
}

func newTrace(mode OmegaMode, iterations int) *Trace {
	tr := &Trace{
		mode:   mode,
		Phi:    make([][][]float64, 0, iterations),
		Mu:     make([][]float64, 0, iterations),
		Gamma2: make([]float64, 0, iterations),
	}
	if mode == OmegaDiag {
		tr.OmegaDiag = make([][]float64, 0, iterations)
	} else {
		tr.OmegaFull = make([]*mat.SymDense, 0, iterations)
	}
	return tr
}

// append snapshots the state. The clone is what makes the trace immutable
// against further chain updates.
func (tr *Trace) append(s *model.State) {
	cp := s.Clone()
	tr.Phi = append(tr.Phi, cp.Phi)
	tr.Mu = append(tr.Mu, cp.Mu)
	tr.Gamma2 = append(tr.Gamma2, cp.Gamma2)
	if tr.mode == OmegaDiag {
		tr.OmegaDiag = append(tr.OmegaDiag, cp.OmegaDiag)
	} else {
		tr.OmegaFull = append(tr.OmegaFull, cp.OmegaFull)
	}
}

// Len returns the number of recorded iterations.
func (tr *Trace) Len() int {
	return len(tr.Gamma2)
}

func (tr *Trace) checkBurn(burn int) error {
	if burn < 0 || burn >= tr.Len() {
		return errors.Errorf("Burn-in %d leaves no iterations out of %d", burn, tr.Len())
	}
	return nil
}

// MuMean returns the post-burn-in mean of the population-mean trace.
func (tr *Trace) MuMean(burn int) ([]float64, error) {
	if err := tr.checkBurn(burn); err != nil {
		return nil, err
	}

	d := len(tr.Mu[0])
	out := make([]float64, d)
	col := make([]float64, 0, tr.Len()-burn)
	for k := 0; k < d; k++ {
		col = col[:0]
		for i := burn; i < tr.Len(); i++ {
			col = append(col, tr.Mu[i][k])
		}
		out[k] = stat.Mean(col, nil)
	}
	return out, nil
}

// Gamma2Mean returns the post-burn-in mean of the residual-scale trace.
func (tr *Trace) Gamma2Mean(burn int) (float64, error) {
	if err := tr.checkBurn(burn); err != nil {
		return 0, err
	}
	return stat.Mean(tr.Gamma2[burn:], nil), nil
}

// PhiMean returns the post-burn-in mean random effect for one unit.
func (tr *Trace) PhiMean(unit int, burn int) ([]float64, error) {
	if err := tr.checkBurn(burn); err != nil {
		return nil, err
	}
	if unit < 0 || unit >= len(tr.Phi[0]) {
		return nil, errors.Errorf("Unit %d out of range (have %d units)", unit, len(tr.Phi[0]))
	}

	d := len(tr.Phi[0][unit])
	out := make([]float64, d)
	col := make([]float64, 0, tr.Len()-burn)
	for k := 0; k < d; k++ {
		col = col[:0]
		for i := burn; i < tr.Len(); i++ {
			col = append(col, tr.Phi[i][unit][k])
		}
		out[k] = stat.Mean(col, nil)
	}
	return out, nil
}
