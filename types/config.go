package types

import (
	"github.com/jrleja/BayesianComputing/histogram"
	"github.com/jrleja/BayesianComputing/logger"
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"sync"
)

const (
	// pipeline type
	PopulationPipeline = "population"
)

type SamplerParams struct {
	Iterations     int    `yaml:"iterations" json:"iterations"`
	Thinning       int    `yaml:"thinning" json:"thinning"`
	MHStepsPerPair int    `yaml:"mh_steps_per_pair" json:"mh_steps_per_pair"`
	Seed           uint64 `yaml:"seed" json:"seed"`
}

type PriorParams struct {
	Alpha              []float64 `yaml:"alpha" json:"alpha"`
	UseReferenceCounts bool      `yaml:"use_reference_counts" json:"use_reference_counts"`
}

type ShrinkageParams struct {
	Draws int `yaml:"draws" json:"draws"`
}

type Configuration struct {
	Name      string            `json:"name"`
	FilePath  string            `json:"file_path"`
	Pipeline  string            `yaml:"pipeline" json:"pipeline"`
	Bins      histogram.BinGrid `yaml:"bins" json:"bins"`
	Sampler   SamplerParams     `yaml:"sampler" json:"sampler"`
	Prior     PriorParams       `yaml:"prior" json:"prior"`
	Shrinkage ShrinkageParams   `yaml:"shrinkage" json:"shrinkage"`
}

func (cfg Configuration) Validate() error {
	if err := cfg.Bins.Validate(); err != nil {
		return err
	}
	if cfg.Sampler.Iterations <= 0 {
		return fmt.Errorf("configuration %q needs a positive iteration count", cfg.Name)
	}
	if cfg.Sampler.Thinning < 0 || cfg.Sampler.MHStepsPerPair < 0 {
		return fmt.Errorf("configuration %q has negative sampler parameters", cfg.Name)
	}
	if len(cfg.Prior.Alpha) > 0 {
		if cfg.Prior.UseReferenceCounts {
			return fmt.Errorf("configuration %q sets both alpha and use_reference_counts", cfg.Name)
		}
		if len(cfg.Prior.Alpha) != cfg.Bins.N {
			return fmt.Errorf(
				"configuration %q has %d alpha entries for %d bins",
				cfg.Name,
				len(cfg.Prior.Alpha),
				cfg.Bins.N,
			)
		}
		for _, a := range cfg.Prior.Alpha {
			if a <= 0 {
				return fmt.Errorf("configuration %q has a non-positive alpha entry", cfg.Name)
			}
		}
	}
	return nil
}

func LoadConfigurations(dirPath string) ([]Configuration, error) {
	hbmLogger := logger.NewLogger("LoadConfigurations")

	files, err := ioutil.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	configChan := make(chan Configuration, len(files))
	for _, f := range files {
		// Skip dirs and non-yaml files
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}

		wg.Add(1)
		go func(file os.FileInfo) {
			defer wg.Done()
			cfg := Configuration{
				Name:     strings.Split(file.Name(), ".yaml")[0],
				FilePath: path.Join(dirPath, file.Name()),
			}
			buf, err := ioutil.ReadFile(cfg.FilePath)
			if err != nil {
				hbmLogger.Err(err)
				return
			}
			if err := yaml.Unmarshal(buf, &cfg); err != nil {
				hbmLogger.Err(err)
				return
			}

			// check pipeline type
			if cfg.Pipeline != PopulationPipeline {
				hbmLogger.Err(errors.New("wrong pipeline type"))
				return
			}
			if err := cfg.Validate(); err != nil {
				hbmLogger.Err(err)
				return
			}

			configChan <- cfg
		}(f)
	}

	go func() {
		wg.Wait()
		close(configChan)
	}()

	configs := make([]Configuration, 0, len(configChan))
	for cfg := range configChan {
		configs = append(configs, cfg)
	}
	return configs, nil
}
