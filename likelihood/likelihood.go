// Package likelihood evaluates how well a candidate population histogram
// explains a set of per-object histograms. The log-likelihood of the
// population histogram is the sum over objects of the log of the object's
// overlap, the inner product of the object's histogram with the population
// histogram.
//
// The package is stateless; independent samplers may call it concurrently.
package likelihood

import (
	"github.com/jrleja/BayesianComputing/histogram"
	"gonum.org/v1/gonum/mat"
	"math"
)

// Perturbation describes a virtual pair move: evaluate as if hist[I] += Step
// and hist[J] -= Step, without materializing the modified histogram. The move
// preserves the simplex sum exactly.
type Perturbation struct {
	I    int
	J    int
	Step float64
}

// Evaluate returns the log-likelihood of hist against obs, along with the
// overlap vector the likelihood was computed from.
//
// When cached is the overlap vector of hist, passing it avoids the full
// Nobs x Ndim recomputation: with a Perturbation the cached vector is adjusted
// by Step*(obs[:,I]-obs[:,J]), which matches full recomputation on the
// perturbed histogram to floating-point tolerance.
//
// A histogram with a negative or non-finite entry (after applying the
// perturbation) yields -Inf and an all-zero overlap vector. A non-positive
// overlap entry has no finite log and is treated the same way, so the
// Metropolis step upstream rejects such states with certainty.
func Evaluate(
	hist histogram.Histogram,
	obs *histogram.ObservationSet,
	cached []float64,
	pert *Perturbation,
) (float64, []float64) {
	nobs := obs.Nobs()
	if !validUnder(hist, pert) {
		return math.Inf(-1), make([]float64, nobs)
	}

	overlap := make([]float64, nobs)
	if cached != nil {
		copy(overlap, cached)
	} else {
		ov := mat.NewVecDense(nobs, overlap)
		ov.MulVec(obs.Dense(), mat.NewVecDense(len(hist), hist))
	}
	if pert != nil {
		for k := range overlap {
			overlap[k] += pert.Step * (obs.At(k, pert.I) - obs.At(k, pert.J))
		}
	}

	logLike := 0.0
	for _, v := range overlap {
		if v <= 0 || math.IsNaN(v) {
			return math.Inf(-1), overlap
		}
		logLike += math.Log(v)
	}
	return logLike, overlap
}

func validUnder(hist histogram.Histogram, pert *Perturbation) bool {
	for i, v := range hist {
		if pert != nil {
			if i == pert.I {
				v += pert.Step
			}
			if i == pert.J {
				v -= pert.Step
			}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}
