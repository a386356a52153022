// Package shrinkage sharpens a single object's histogram using population
// samples from the sampler: each population sample re-weights the object's
// own histogram and contributes a handful of multinomial counts, and the
// summed counts form the sharpened per-object posterior.
package shrinkage

import (
	"github.com/jrleja/BayesianComputing/histogram"
	"errors"
	"fmt"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

const DefaultDraws = 10

// Sharpen re-weights obj by every population sample in trace. For each
// sample, the weights are the elementwise product of obj and the sample, and
// draws multinomial counts are drawn from them. Samples with no overlap with
// the object contribute nothing.
func Sharpen(
	obj histogram.Histogram,
	trace []histogram.Histogram,
	draws int,
	src rand.Source,
) (histogram.Histogram, error) {
	if len(obj) == 0 {
		return nil, errors.New("shrinkage needs a non-empty object histogram")
	}
	if len(trace) == 0 {
		return nil, errors.New("shrinkage needs a non-empty population trace")
	}
	if draws <= 0 {
		draws = DefaultDraws
	}

	counts := make(histogram.Histogram, len(obj))
	weights := make([]float64, len(obj))
	for n, sample := range trace {
		if len(sample) != len(obj) {
			return nil, fmt.Errorf(
				"population sample %d has %d bins, object has %d",
				n,
				len(sample),
				len(obj),
			)
		}
		total := 0.0
		for k := range weights {
			weights[k] = obj[k] * sample[k]
			total += weights[k]
		}
		if total <= 0 {
			continue
		}
		cat := distuv.NewCategorical(weights, src)
		for d := 0; d < draws; d++ {
			counts[int(cat.Rand())]++
		}
	}
	if err := counts.Normalize(); err != nil {
		return nil, errors.New("no population sample overlaps the object histogram")
	}
	return counts, nil
}
