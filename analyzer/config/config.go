/*
DESCRIPTION
  config.go holds the Config struct used to parameterise a fish behaviour
  analysis, along with the methods for validating and updating it.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for the analyzer.
package config

import (
	"github.com/ausocean/utils/logging"
)

// The different motion filters that may be run over extracted frames.
const (
	FilterNoOp = iota
	FilterDiff
	FilterMOG
	FilterKNN
)

// Farneback flags understood by OpenCV.
const (
	FlowFlagsNone           = 0
	FlowFlagsUseInitialFlow = 4
	FlowFlagsGaussian       = 256
)

// FlowParams holds the parameters handed to OpenCV's Farneback dense optical
// flow implementation.
type FlowParams struct {
	PyrScale   float64 // Image scale (<1) to build pyramids for each image.
	Levels     int     // Number of pyramid layers including the initial image.
	WinSize    int     // Averaging window size.
	Iterations int     // Iterations at each pyramid level.
	PolyN      int     // Size of the pixel neighbourhood used for polynomial expansion.
	PolySigma  float64 // Standard deviation of the Gaussian used to smooth derivatives.
	Flags      int
}

// Config provides parameters relevant to an analysis. A new config must be
// validated before use; Validate fills in defaults for anything unset.
type Config struct {
	// FrameSkip means every FrameSkip'th frame of the video is extracted.
	FrameSkip uint

	FramesDir  string // Directory extracted frames are written to.
	FlowVisDir string // Directory flow visualisations are written to.
	ResultsDir string // Directory plots and exported results are written to.

	// Flow holds the Farneback parameters.
	Flow FlowParams

	// AngleSampleSize is the number of flow directions sampled per frame pair
	// for the direction histogram. Sampling keeps memory bounded for long
	// videos.
	AngleSampleSize uint

	// SuddenChangeThreshold is the frame to frame change in average speed,
	// in pixels/frame, above which a sudden change event is flagged.
	SuddenChangeThreshold float64

	PlotWidth     float64 // Plot width in inches.
	PlotHeight    float64 // Plot height in inches.
	PlotDPI       uint    // Plot resolution in dots per inch.
	HistogramBins uint    // Number of bins in the direction histogram.

	// Workers is the number of frame pairs that may have flow computed
	// concurrently.
	Workers uint

	// Seed seeds direction sampling so that repeated runs agree.
	Seed uint64

	// MotionFilter selects a background subtraction filter that flags frames
	// containing foreground motion. Valid values are defined by the Filter
	// enums above.
	MotionFilter uint8

	MotionThreshold float64 // Intensity value that is considered motion.
	MotionMinArea   float64 // Used to ignore small areas of motion (KNN & MOG only).
	MotionHistory   uint    // Length of filter's history (KNN & MOG only).
	MotionKernel    uint    // Size of kernel used for filling holes and removing noise (KNN & MOG only).

	// DBPath is the location of the SQLite run history. If empty, runs are
	// not recorded.
	DBPath string

	// LogPath is the location of the rotating log file.
	LogPath string

	// LogLevel is the logging verbosity level.
	// Valid values are defined by enums from the logger package: logging.Debug,
	// logging.Info, logging.Warning logging.Error, logging.Fatal.
	LogLevel int8

	// Logger holds an implementation of the Logger interface.
	// This must be set for the analyzer to work correctly.
	Logger logging.Logger
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

// ToMap returns the config as a map of variable names to string values, such
// that Update on a zero Config with the result reproduces c (excluding the
// Logger).
func (c *Config) ToMap() map[string]string {
	m := make(map[string]string, len(Variables))
	for _, v := range Variables {
		if v.Get != nil {
			m[v.Name] = v.Get(c)
		}
	}
	return m
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
