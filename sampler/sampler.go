// Package sampler draws population-histogram samples consistent with a set of
// per-object histograms, using Metropolis-Hastings steps within a Gibbs sweep
// over random coordinate pairs of the probability simplex.
package sampler

import (
	"github.com/jrleja/BayesianComputing/histogram"
	"github.com/jrleja/BayesianComputing/likelihood"
	"github.com/jrleja/BayesianComputing/logger"
	"github.com/jrleja/BayesianComputing/prior"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	"math"
)

const (
	DefaultThinning       = 400
	DefaultMHStepsPerPair = 3

	// fraction of the distance to the nearest [0,1] boundary used for the
	// finite-difference probe step
	probeFraction = 1e-4
)

// Observer receives progress after each outer iteration. It has no effect on
// sampler state.
type Observer func(iteration, total int, logPosterior float64)

type RunParams struct {
	// Iterations is the number of samples to record.
	Iterations int
	// Prior evaluates the log-prior of a candidate histogram.
	Prior prior.Func
	// Initial overrides the starting histogram. When nil the sampler
	// continues from the last recorded sample, or, with an empty trace,
	// starts from the normalized sum of all observation histograms.
	Initial histogram.Histogram
	// Thinning is the number of pairwise sub-steps per recorded sample.
	// Zero or negative selects DefaultThinning.
	Thinning int
	// MHStepsPerPair is the number of Metropolis steps per drawn pair.
	// Zero or negative selects DefaultMHStepsPerPair.
	MHStepsPerPair int
	// Rand is the single source of randomness for the run.
	Rand *rand.Rand
	// Observer, when set, is called after each outer iteration.
	Observer Observer
}

// Sampler owns an immutable observation set and an append-only trace of
// (histogram, log-posterior) samples. A Sampler is not safe for concurrent
// use; independent Samplers share no state.
type Sampler struct {
	obs *histogram.ObservationSet

	pos     histogram.Histogram
	overlap []float64
	logPost float64

	samples  []histogram.Histogram
	logPosts []float64

	hbmLogger zerolog.Logger
}

func New(obs *histogram.ObservationSet) *Sampler {
	return &Sampler{
		obs:       obs,
		hbmLogger: logger.NewLogger("Sampler"),
	}
}

// Reset clears the recorded trace. It does not touch an in-progress run.
func (s *Sampler) Reset() {
	s.samples = nil
	s.logPosts = nil
}

// Results returns a snapshot of the trace as two parallel sequences.
func (s *Sampler) Results() ([]histogram.Histogram, []float64) {
	samples := make([]histogram.Histogram, len(s.samples))
	copy(samples, s.samples)
	logPosts := make([]float64, len(s.logPosts))
	copy(logPosts, s.logPosts)
	return samples, logPosts
}

// Run records p.Iterations samples, one per outer iteration. The run is
// deterministic given a fixed p.Rand seed and fixed inputs.
func (s *Sampler) Run(p RunParams) error {
	if p.Iterations <= 0 {
		return fmt.Errorf("sampler needs a positive iteration count, got %d", p.Iterations)
	}
	if p.Prior == nil {
		return errors.New("sampler needs a prior function")
	}
	if p.Rand == nil {
		return errors.New("sampler needs a random source")
	}
	thinning := p.Thinning
	if thinning <= 0 {
		thinning = DefaultThinning
	}
	mhSteps := p.MHStepsPerPair
	if mhSteps <= 0 {
		mhSteps = DefaultMHStepsPerPair
	}

	start, err := s.startingPoint(p.Initial)
	if err != nil {
		return err
	}
	s.pos = start
	logLike, overlap := likelihood.Evaluate(s.pos, s.obs, nil, nil)
	s.overlap = overlap
	s.logPost = logLike + p.Prior(s.pos)

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: p.Rand}
	expo := distuv.Exponential{Rate: 1, Src: p.Rand}

	for iter := 1; iter <= p.Iterations; iter++ {
		s.step(p.Prior, p.Rand, normal, expo, thinning, mhSteps)
		s.samples = append(s.samples, s.pos.Clone())
		s.logPosts = append(s.logPosts, s.logPost)
		s.hbmLogger.Debug().
			Int("iteration", iter).
			Int("total", p.Iterations).
			Float64("log_posterior", s.logPost).
			Msg("Recorded population sample")
		if p.Observer != nil {
			p.Observer(iter, p.Iterations, s.logPost)
		}
	}
	return nil
}

// startingPoint resolves the starting histogram: explicit initial first, then
// the last recorded sample, then the stacked mean of the observations.
func (s *Sampler) startingPoint(initial histogram.Histogram) (histogram.Histogram, error) {
	if initial != nil {
		if len(initial) != s.obs.Ndim() {
			return nil, fmt.Errorf(
				"initial histogram has %d bins, observations have %d",
				len(initial),
				s.obs.Ndim(),
			)
		}
		start := initial.Clone()
		if !start.Valid() {
			return nil, errors.New("initial histogram has a negative or non-finite entry")
		}
		if err := start.Normalize(); err != nil {
			return nil, err
		}
		return start, nil
	}
	if n := len(s.samples); n > 0 {
		return s.samples[n-1].Clone(), nil
	}
	return s.obs.StackedMean(), nil
}

// step runs one outer iteration: thinning random distinct pairs, each probed
// for a local gradient to scale the proposal, then mhSteps Metropolis moves.
func (s *Sampler) step(
	priorFn prior.Func,
	rnd *rand.Rand,
	normal distuv.Normal,
	expo distuv.Exponential,
	thinning, mhSteps int,
) {
	ndim := s.obs.Ndim()
	for t := 0; t < thinning; t++ {
		i := rnd.Intn(ndim)
		j := rnd.Intn(ndim - 1)
		if j >= i {
			j++
		}

		scale := probeFraction * boundaryDistance(s.pos[i], s.pos[j])
		grad := s.gradientEstimate(priorFn, i, j, scale)

		// aim the typical proposed log-posterior change at order one,
		// bounded so a flat gradient cannot blow the scale up
		var gscale float64
		if grad != 0 && !math.IsNaN(grad) {
			gscale = math.Min(1/math.Abs(grad), scale/probeFraction)
		} else {
			gscale = math.Abs(scale)
		}

		for m := 0; m < mhSteps; m++ {
			z := normal.Rand() * gscale
			logLike, overlap := likelihood.Evaluate(
				s.pos,
				s.obs,
				s.overlap,
				&likelihood.Perturbation{I: i, J: j, Step: z},
			)
			candidate := pairMove(s.pos, i, j, z)
			logPost := logLike + priorFn(candidate)
			if -expo.Rand() < logPost-s.logPost {
				s.pos = candidate
				s.overlap = overlap
				s.logPost = logPost
			}
		}
	}
}

// gradientEstimate is the central finite difference of the log-posterior
// along the pair direction, using the incremental likelihood path.
func (s *Sampler) gradientEstimate(priorFn prior.Func, i, j int, scale float64) float64 {
	half := scale / 2
	logLikePlus, _ := likelihood.Evaluate(
		s.pos, s.obs, s.overlap, &likelihood.Perturbation{I: i, J: j, Step: half})
	logLikeMinus, _ := likelihood.Evaluate(
		s.pos, s.obs, s.overlap, &likelihood.Perturbation{I: i, J: j, Step: -half})
	logPostPlus := logLikePlus + priorFn(pairMove(s.pos, i, j, half))
	logPostMinus := logLikeMinus + priorFn(pairMove(s.pos, i, j, -half))
	return (logPostPlus - logPostMinus) / scale
}

// pairMove returns a copy of h with h[i] += step and h[j] -= step, which
// preserves the simplex sum exactly.
func pairMove(h histogram.Histogram, i, j int, step float64) histogram.Histogram {
	out := h.Clone()
	out[i] += step
	out[j] -= step
	return out
}

// boundaryDistance is the distance of the closer of the two bin values to the
// nearer [0,1] boundary.
func boundaryDistance(a, b float64) float64 {
	m := math.Min(a, b)
	m = math.Min(m, 1-a)
	return math.Min(m, 1-b)
}
