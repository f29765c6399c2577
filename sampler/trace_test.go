package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CraigKelly/nlmix/model"
)

func stubTrace() *Trace {
	tr := newTrace(OmegaDiag, 4)
	for i := 0; i < 4; i++ {
		v := float64(i + 1)
		tr.append(&model.State{
			Phi:       [][]float64{{v, 2 * v}, {-v, 0}},
			Mu:        []float64{v, 10 + v},
			OmegaDiag: []float64{v},
			Gamma2:    v,
		})
	}
	return tr
}

func TestTraceMeans(t *testing.T) {
	assert := assert.New(t)

	tr := stubTrace()
	assert.Equal(4, tr.Len())

	mu, err := tr.MuMean(0)
	assert.NoError(err)
	assert.InDelta(2.5, mu[0], 1e-12)
	assert.InDelta(12.5, mu[1], 1e-12)

	mu, err = tr.MuMean(2)
	assert.NoError(err)
	assert.InDelta(3.5, mu[0], 1e-12)

	g2, err := tr.Gamma2Mean(1)
	assert.NoError(err)
	assert.InDelta(3.0, g2, 1e-12)

	phi, err := tr.PhiMean(0, 0)
	assert.NoError(err)
	assert.InDelta(2.5, phi[0], 1e-12)
	assert.InDelta(5.0, phi[1], 1e-12)

	phi, err = tr.PhiMean(1, 0)
	assert.NoError(err)
	assert.InDelta(-2.5, phi[0], 1e-12)
}

func TestTraceBadArgs(t *testing.T) {
	assert := assert.New(t)

	tr := stubTrace()

	_, err := tr.MuMean(4)
	assert.Error(err)
	_, err = tr.MuMean(-1)
	assert.Error(err)
	_, err = tr.Gamma2Mean(99)
	assert.Error(err)
	_, err = tr.PhiMean(0, 4)
	assert.Error(err)
	_, err = tr.PhiMean(2, 0)
	assert.Error(err)
	_, err = tr.PhiMean(-1, 0)
	assert.Error(err)
}

func TestTraceSnapshotsAreIsolated(t *testing.T) {
	assert := assert.New(t)

	st := &model.State{
		Phi:       [][]float64{{1}},
		Mu:        []float64{1},
		OmegaDiag: []float64{1},
		Gamma2:    1,
	}

	tr := newTrace(OmegaDiag, 2)
	tr.append(st)

	// Mutating the live state must not touch the recorded snapshot
	st.Phi[0][0] = 99
	st.Mu[0] = 99
	st.OmegaDiag[0] = 99
	st.Gamma2 = 99
	tr.append(st)

	assert.Equal(1.0, tr.Phi[0][0][0])
	assert.Equal(1.0, tr.Mu[0][0])
	assert.Equal(1.0, tr.OmegaDiag[0][0])
	assert.Equal(1.0, tr.Gamma2[0])
	assert.Equal(99.0, tr.Gamma2[1])
}
