// Package prior provides the log-prior collaborators the sampler consumes.
package prior

import (
	"gonum.org/v1/gonum/stat/distmv"
	"math"
)

// Func evaluates the log-probability of a candidate population histogram.
// Implementations must return -Inf for histograms with negative entries.
type Func func(hist []float64) float64

const simplexTol = 1e-9

// Dirichlet builds a log-density over the probability simplex with the given
// concentration vector. Out-of-simplex input (negative, non-finite, or not
// summing to one within tolerance) yields -Inf. A zero component is accepted
// only under a unit concentration, where its density term is identically one;
// zero components under any other concentration are treated as invalid.
func Dirichlet(alpha []float64) Func {
	dist := distmv.NewDirichlet(alpha, nil)
	return func(hist []float64) float64 {
		if len(hist) != len(alpha) {
			return math.Inf(-1)
		}
		sum := 0.0
		boundary := false
		for i, v := range hist {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return math.Inf(-1)
			}
			if v == 0 {
				if alpha[i] != 1 {
					return math.Inf(-1)
				}
				boundary = true
			}
			sum += v
		}
		if math.Abs(sum-1) > simplexTol {
			return math.Inf(-1)
		}
		x := hist
		if boundary {
			// substitute 1 for zero components so the (alpha-1)*log(x)
			// term stays exactly zero instead of 0*(-Inf)
			x = make([]float64, len(hist))
			copy(x, hist)
			for i := range x {
				if x[i] == 0 {
					x[i] = 1
				}
			}
		}
		return dist.LogProb(x)
	}
}

// Uniform is a flat Dirichlet prior over the ndim-simplex.
func Uniform(ndim int) Func {
	alpha := make([]float64, ndim)
	for i := range alpha {
		alpha[i] = 1
	}
	return Dirichlet(alpha)
}

// DirichletWithCounts builds the recommended concrete prior: concentration
// equal to a ones vector plus the observed reference bin counts.
func DirichletWithCounts(refCounts []float64) Func {
	alpha := make([]float64, len(refCounts))
	for i, c := range refCounts {
		alpha[i] = 1 + c
	}
	return Dirichlet(alpha)
}
