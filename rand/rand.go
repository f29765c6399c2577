package rand

import (
	"github.com/seehuhn/mt19937"
	xrand "golang.org/x/exp/rand"
)

// A Generator is our single source of randomness, backed by a Mersenne
// twister. It implements golang.org/x/exp/rand.Source, so the gonum
// distribution types can draw from the exact same stream as our own
// Metropolis uniforms. One generator drives one chain.
type Generator struct {
	mt  *mt19937.MT19937
	rnd *xrand.Rand
}

// NewGenerator creates a new PRNG from the given seed.
func NewGenerator(seed int64) (*Generator, error) {
	g := &Generator{
		mt: mt19937.New(),
	}
	g.mt.Seed(seed)
	g.rnd = xrand.New(g)
	return g, nil
}

// Uint64 returns the next raw 64 bits from the twister (rand.Source).
func (g *Generator) Uint64() uint64 {
	return g.mt.Uint64()
}

// Seed re-seeds the underlying twister (rand.Source).
func (g *Generator) Seed(seed uint64) {
	g.mt.Seed(int64(seed))
}

// Float64 returns a uniform draw in [0, 1).
func (g *Generator) Float64() float64 {
	return g.rnd.Float64()
}

// NormFloat64 returns a standard normal draw.
func (g *Generator) NormFloat64() float64 {
	return g.rnd.NormFloat64()
}
