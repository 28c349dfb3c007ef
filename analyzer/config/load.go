/*
DESCRIPTION
  load.go provides loading of configuration variables from YAML files and
  from the environment. Both produce a map of variable names to values that
  is applied using Config.Update, so each source is parsed and validated in
  the same way.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "FISHFLOW_"

// LoadFile reads a YAML file whose top level keys are variable names, as
// given by the Key consts, and returns the values as strings suitable for
// Config.Update. Unknown keys are returned as-is and ignored by Update.
func LoadFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var raw map[string]interface{}
	err = yaml.Unmarshal(b, &raw)
	if err != nil {
		return nil, fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	vars := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v.(type) {
		case map[string]interface{}, []interface{}:
			return nil, fmt.Errorf("config variable %s must be a scalar", k)
		case nil:
			continue
		}
		vars[k] = fmt.Sprint(v)
	}
	return vars, nil
}

// environment mirrors the variables that may be set through the environment.
// Each is prefixed by EnvPrefix, e.g. FISHFLOW_FRAME_SKIP.
type environment struct {
	AngleSampleSize       string `env:"ANGLE_SAMPLE_SIZE"`
	DBPath                string `env:"DB_PATH"`
	FlowVisDir            string `env:"FLOW_VIS_DIR"`
	FrameSkip             string `env:"FRAME_SKIP"`
	FramesDir             string `env:"FRAMES_DIR"`
	HistogramBins         string `env:"HISTOGRAM_BINS"`
	LogLevel              string `env:"LOG_LEVEL"`
	LogPath               string `env:"LOG_PATH"`
	MotionFilter          string `env:"MOTION_FILTER"`
	PlotDPI               string `env:"PLOT_DPI"`
	ResultsDir            string `env:"RESULTS_DIR"`
	Seed                  string `env:"SEED"`
	SuddenChangeThreshold string `env:"SUDDEN_CHANGE_THRESHOLD"`
	Workers               string `env:"WORKERS"`
}

// LoadEnv reads configuration variables from the environment. Only variables
// that are set appear in the returned map.
func LoadEnv() (map[string]string, error) {
	var e environment
	err := env.ParseWithOptions(&e, env.Options{Prefix: EnvPrefix})
	if err != nil {
		return nil, fmt.Errorf("could not parse environment: %w", err)
	}

	vars := make(map[string]string)
	for k, v := range map[string]string{
		KeyAngleSampleSize:       e.AngleSampleSize,
		KeyDBPath:                e.DBPath,
		KeyFlowVisDir:            e.FlowVisDir,
		KeyFrameSkip:             e.FrameSkip,
		KeyFramesDir:             e.FramesDir,
		KeyHistogramBins:         e.HistogramBins,
		KeyLogging:               e.LogLevel,
		KeyLogPath:               e.LogPath,
		KeyMotionFilter:          e.MotionFilter,
		KeyPlotDPI:               e.PlotDPI,
		KeyResultsDir:            e.ResultsDir,
		KeySeed:                  e.Seed,
		KeySuddenChangeThreshold: e.SuddenChangeThreshold,
		KeyWorkers:               e.Workers,
	} {
		if v != "" {
			vars[k] = v
		}
	}
	return vars, nil
}

// Merge combines variable maps, with later maps taking precedence.
func Merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
