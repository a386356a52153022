package pipeline

import (
	"github.com/jrleja/BayesianComputing/histogram"
	"github.com/jrleja/BayesianComputing/logger"
	"github.com/jrleja/BayesianComputing/prior"
	"github.com/jrleja/BayesianComputing/sampler"
	"github.com/jrleja/BayesianComputing/shrinkage"
	"github.com/jrleja/BayesianComputing/types"
	"github.com/jrleja/BayesianComputing/utils"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

type PopulationParams struct {
	Configurations []types.Configuration `json:"configurations"`
}

// FitResult is the per-configuration slice of the pipeline response.
type FitResult struct {
	Samples           int                   `json:"samples"`
	PosteriorMean     histogram.Histogram   `json:"posterior_mean"`
	FinalLogPosterior float64               `json:"final_log_posterior"`
	MinLogPosterior   float64               `json:"min_log_posterior"`
	MaxLogPosterior   float64               `json:"max_log_posterior"`
	SharpenedPDFs     []histogram.Histogram `json:"sharpened_pdfs"`
	Error             string                `json:"error,omitempty"`
}

// Population builds the estimation pipeline: per request, one hierarchical
// fit per configuration, each on a fresh sampler, followed by shrinkage of
// every object's histogram against the recorded trace.
func Population(params PopulationParams) (Pipeline, error) {
	hbmLogger := logger.NewLogger("Population pipeline")
	if len(params.Configurations) == 0 {
		return nil, errors.New("population pipeline needs at least one configuration")
	}
	for _, cfg := range params.Configurations {
		if err := cfg.Validate(); err != nil {
			hbmLogger.Err(err).
				Str("config", cfg.Name).
				Msg("Refusing to start pipeline with invalid configuration")
			return nil, err
		}
	}
	hbmLogger.Info().
		Interface("params", params).
		Msg("Starting population pipeline (see parameters in 'params' field)")

	return func(request Request) <-chan string {
		responseChan := make(chan string)
		pplnLog := hbmLogger.With().Str("tid", request.Tid).Logger()
		pplnLog.Info().Msg("Started population pipeline")

		go func() {
			defer close(responseChan)

			obs, err := parsePayload(request.Payload)
			if err != nil {
				pplnLog.Err(err).Msg("Failed to parse observation artifact")
				responseChan <- errorResponse(err, &pplnLog)
				return
			}

			response := make(map[string]FitResult, len(params.Configurations))
			for _, cfg := range params.Configurations {
				response[cfg.Name] = runFit(cfg, obs, &pplnLog)
			}

			b, err := json.Marshal(response)
			if err != nil {
				pplnLog.Err(err).Msg("Failed to marshal pipeline response")
				responseChan <- errorResponse(err, &pplnLog)
				return
			}
			pplnLog.Info().Msg("Finished population pipeline")
			responseChan <- string(b)
		}()
		return responseChan
	}, nil
}

func parsePayload(payload string) (*histogram.ObservationSet, error) {
	artifact, err := histogram.ParseArtifact([]byte(payload))
	if err != nil {
		return nil, err
	}
	return artifact.ObservationSet()
}

func runFit(cfg types.Configuration, obs *histogram.ObservationSet, pplnLog *zerolog.Logger) FitResult {
	var err error
	var result FitResult
	func() {
		defer utils.RecoverWithError(&err)
		result, err = fit(cfg, obs)
	}()
	if err != nil {
		pplnLog.Err(err).Str("config", cfg.Name).Msg("Fit failed")
		return FitResult{Error: err.Error()}
	}
	return result
}

func fit(cfg types.Configuration, obs *histogram.ObservationSet) (FitResult, error) {
	if cfg.Bins.N != obs.Ndim() {
		return FitResult{}, fmt.Errorf(
			"configuration %q expects %d bins, artifact has %d",
			cfg.Name,
			cfg.Bins.N,
			obs.Ndim(),
		)
	}

	priorFn := buildPrior(cfg, obs)

	// seed from the artifact itself when the configuration leaves it unset,
	// so repeated requests over the same table reproduce the same fit
	seed := cfg.Sampler.Seed
	if seed == 0 {
		seed = obs.HashCode()
	}
	rnd := rand.New(rand.NewSource(seed))

	smplr := sampler.New(obs)
	err := smplr.Run(sampler.RunParams{
		Iterations:     cfg.Sampler.Iterations,
		Prior:          priorFn,
		Thinning:       cfg.Sampler.Thinning,
		MHStepsPerPair: cfg.Sampler.MHStepsPerPair,
		Rand:           rnd,
	})
	if err != nil {
		return FitResult{}, err
	}
	samples, logPosts := smplr.Results()

	sharpened := make([]histogram.Histogram, obs.Nobs())
	for i := range sharpened {
		sharpened[i], err = shrinkage.Sharpen(obs.Row(i), samples, cfg.Shrinkage.Draws, rnd)
		if err != nil {
			return FitResult{}, fmt.Errorf("shrinkage of object %d: %w", i, err)
		}
	}

	return FitResult{
		Samples:           len(samples),
		PosteriorMean:     posteriorMean(samples),
		FinalLogPosterior: logPosts[len(logPosts)-1],
		MinLogPosterior:   floats.Min(logPosts),
		MaxLogPosterior:   floats.Max(logPosts),
		SharpenedPDFs:     sharpened,
	}, nil
}

func buildPrior(cfg types.Configuration, obs *histogram.ObservationSet) prior.Func {
	if cfg.Prior.UseReferenceCounts {
		return prior.DirichletWithCounts(obs.Counts())
	}
	if len(cfg.Prior.Alpha) > 0 {
		return prior.Dirichlet(cfg.Prior.Alpha)
	}
	return prior.Uniform(obs.Ndim())
}

func posteriorMean(samples []histogram.Histogram) histogram.Histogram {
	mean := make(histogram.Histogram, len(samples[0]))
	for _, sample := range samples {
		for k, v := range sample {
			mean[k] += v
		}
	}
	_ = mean.Normalize()
	return mean
}

func errorResponse(err error, pplnLog *zerolog.Logger) string {
	b, merr := json.Marshal(map[string]string{"error": err.Error()})
	if merr != nil {
		pplnLog.Err(merr).Msg("Failed to marshal error response")
		return `{"error":"internal error"}`
	}
	return string(b)
}
