package main

import (
	"github.com/jrleja/BayesianComputing/api"
	"github.com/jrleja/BayesianComputing/logger"
	"github.com/jrleja/BayesianComputing/pipeline"
	"github.com/jrleja/BayesianComputing/types"
	"github.com/jrleja/BayesianComputing/worker"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"net/http"
	"os"
	"time"
)

type Config struct {
	ConfigPath    string `envconfig:"HBM_CONFIG_PATH" required:"true"`
	RestAPIActive bool   `envconfig:"HBM_REST_API_ACTIVE" default:"false"`
	RestAPIPort   string `envconfig:"HBM_REST_API_PORT" default:"10000"`
}

const pipelineStartMaxRetries = 5

func main() {
	logger.SetupLogging()
	hbmLogger := logger.NewLogger("Main")
	fatalErrLogger := hbmLogger.Fatal().Caller()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}

	pipelineChannel := make(chan pipeline.Pipeline)
	go func() {
		for retry := 0; retry < pipelineStartMaxRetries; retry++ {
			cfgs, err := types.LoadConfigurations(config.ConfigPath)
			if err != nil {
				hbmLogger.Err(err).Msg("Failed to load configurations. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			hbmLogger.Info().Msgf("Loaded %d configurations", len(cfgs))
			hbmLogger.Info().Msg("Starting pipeline loading")

			ppln, err := pipeline.Population(pipeline.PopulationParams{Configurations: cfgs})
			if err != nil {
				hbmLogger.Err(err).Msg("Failed to start population pipeline. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			hbmLogger.Info().Msg("Pipeline loaded")
			pipelineChannel <- ppln
			return
		}
		fatalErrLogger.Msg("Could not start pipeline after 5 retries, exiting")
		os.Exit(1)
	}()

	// block until pipeline loads
	ppln := <-pipelineChannel

	if config.RestAPIActive {
		go func() {
			hbmLogger.Info().Msg("Starting API service")
			apiRequest := &api.Request{
				Pipeline: ppln,
			}
			http.HandleFunc("/", apiRequest.ProcessData)
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			hbmLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, nil)
			fatalErrLogger.Err(err).Msg("REST API stopped with error")
		}()
	}

	hbmLogger.Info().Msg("Start HBM Worker")
	for {
		rmqWorker, err := worker.New(ppln)
		if err != nil {
			hbmLogger.Fatal().Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		err = rmqWorker.StartWorker()
		if err != nil {
			hbmLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}
