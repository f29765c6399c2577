package model

import (
	"math"

	"github.com/pkg/errors"
)

// RegressionFunc is a deterministic nonlinear model prediction: given a
// random-effect vector phi and time points t it returns the predicted
// response at every point. Implementations must be pure; they may return NaN
// for degenerate parameter values (the sampler rejects such candidates).
type RegressionFunc func(phi []float64, t []float64) []float64

// VarianceFunc is the deterministic relative-variance shape s2(t). Output
// must be strictly positive for every fitted time point.
type VarianceFunc func(t []float64) []float64

// Family bundles a named regression model with its parameter dimension and a
// default variance shape. The family is resolved once at configuration time;
// the sampler only ever sees the function pair.
type Family struct {
	Name       string
	Dim        int
	Regression RegressionFunc
	Variance   VarianceFunc
}

// UnitVariance is the homoskedastic shape: s2(t) = 1 everywhere.
func UnitVariance(t []float64) []float64 {
	s := make([]float64, len(t))
	for i := range s {
		s[i] = 1.0
	}
	return s
}

// PowerVariance returns the shape s2(t) = t^p. Only meaningful for strictly
// positive time grids; the sampler validates positivity before running.
func PowerVariance(p float64) VarianceFunc {
	return func(t []float64) []float64 {
		s := make([]float64, len(t))
		for i, ti := range t {
			s[i] = math.Pow(ti, p)
		}
		return s
	}
}

// Gompertz is the 3-parameter growth curve A*exp(-b*exp(-k*t)),
// phi = (A, b, k).
func Gompertz() Family {
	return Family{
		Name: "gompertz",
		Dim:  3,
		Regression: func(phi []float64, t []float64) []float64 {
			y := make([]float64, len(t))
			for i, ti := range t {
				y[i] = phi[0] * math.Exp(-phi[1]*math.Exp(-phi[2]*ti))
			}
			return y
		},
		Variance: UnitVariance,
	}
}

// Logistic is the 3-parameter curve A/(1+exp(b-k*t)), phi = (A, b, k).
func Logistic() Family {
	return Family{
		Name: "logistic",
		Dim:  3,
		Regression: func(phi []float64, t []float64) []float64 {
			y := make([]float64, len(t))
			for i, ti := range t {
				y[i] = phi[0] / (1.0 + math.Exp(phi[1]-phi[2]*ti))
			}
			return y
		},
		Variance: UnitVariance,
	}
}

// Richards generalizes the logistic with an asymmetry exponent:
// A/(1+exp(b-k*t))^(1/nu), phi = (A, b, k, nu).
func Richards() Family {
	return Family{
		Name: "richards",
		Dim:  4,
		Regression: func(phi []float64, t []float64) []float64 {
			y := make([]float64, len(t))
			for i, ti := range t {
				y[i] = phi[0] / math.Pow(1.0+math.Exp(phi[1]-phi[2]*ti), 1.0/phi[3])
			}
			return y
		},
		Variance: UnitVariance,
	}
}

// Weibull is the 4-parameter growth curve A - b*exp(-k*t^nu),
// phi = (A, b, k, nu).
func Weibull() Family {
	return Family{
		Name: "weibull",
		Dim:  4,
		Regression: func(phi []float64, t []float64) []float64 {
			y := make([]float64, len(t))
			for i, ti := range t {
				y[i] = phi[0] - phi[1]*math.Exp(-phi[2]*math.Pow(ti, phi[3]))
			}
			return y
		},
		Variance: UnitVariance,
	}
}

// parisExpTol is the half-width around m=2 where the integrated Paris law
// switches to its exponential limiting form.
const parisExpTol = 1e-9

// Paris is the integrated Paris crack-growth law with phi = (a0, C, m):
// crack length after t cycles starting from a0. For m=2 the integral
// degenerates to exponential growth, handled explicitly; parameter regions
// where the bracket goes negative yield NaN and are rejected by the sampler.
func Paris() Family {
	return Family{
		Name: "paris",
		Dim:  3,
		Regression: func(phi []float64, t []float64) []float64 {
			a0, c, m := phi[0], phi[1], phi[2]
			y := make([]float64, len(t))
			b := 1.0 - m/2.0
			for i, ti := range t {
				if math.Abs(b) < parisExpTol {
					y[i] = a0 * math.Exp(c*ti)
				} else {
					y[i] = math.Pow(math.Pow(a0, b)+b*c*ti, 1.0/b)
				}
			}
			return y
		},
		Variance: UnitVariance,
	}
}

// Paris2 is the Paris law with the exponent fixed at m=2, which reduces to
// exponential growth a0*exp(C*t), phi = (a0, C).
func Paris2() Family {
	return Family{
		Name: "paris2",
		Dim:  2,
		Regression: func(phi []float64, t []float64) []float64 {
			y := make([]float64, len(t))
			for i, ti := range t {
				y[i] = phi[0] * math.Exp(phi[1]*ti)
			}
			return y
		},
		Variance: UnitVariance,
	}
}

// FamilyByName resolves one of the supported model names. This is the only
// place a model is ever selected by string, and it happens at configuration
// time (the CLI boundary), never inside the sampling loop.
func FamilyByName(name string) (Family, error) {
	switch name {
	case "gompertz":
		return Gompertz(), nil
	case "logistic":
		return Logistic(), nil
	case "richards":
		return Richards(), nil
	case "weibull":
		return Weibull(), nil
	case "paris":
		return Paris(), nil
	case "paris2":
		return Paris2(), nil
	}
	return Family{}, errors.Errorf("Unknown model family %q", name)
}

// Check returns an error if the family is not usable for dimension d.
func (f Family) Check(d int) error {
	if f.Regression == nil {
		return errors.Errorf("Family %q has no regression function", f.Name)
	}
	if f.Variance == nil {
		return errors.Errorf("Family %q has no variance function", f.Name)
	}
	if f.Dim > 0 && f.Dim != d {
		return errors.Errorf("Family %q has dimension %d but starting mean has dimension %d", f.Name, f.Dim, d)
	}
	return nil
}
