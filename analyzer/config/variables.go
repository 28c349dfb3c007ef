/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, a function for reading it back as a string, and finally, a
  validation function to check the validity of the corresponding field value
  in the Config.

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
	"runtime"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"
)

// Config map Keys.
const (
	KeyAngleSampleSize       = "AngleSampleSize"
	KeyDBPath                = "DBPath"
	KeyFlowFlags             = "FlowFlags"
	KeyFlowVisDir            = "FlowVisDir"
	KeyFrameSkip             = "FrameSkip"
	KeyFramesDir             = "FramesDir"
	KeyHistogramBins         = "HistogramBins"
	KeyIterations            = "Iterations"
	KeyLevels                = "Levels"
	KeyLogging               = "logging"
	KeyLogPath               = "LogPath"
	KeyMotionFilter          = "MotionFilter"
	KeyMotionHistory         = "MotionHistory"
	KeyMotionKernel          = "MotionKernel"
	KeyMotionMinArea         = "MotionMinArea"
	KeyMotionThreshold       = "MotionThreshold"
	KeyPlotDPI               = "PlotDPI"
	KeyPlotHeight            = "PlotHeight"
	KeyPlotWidth             = "PlotWidth"
	KeyPolyN                 = "PolyN"
	KeyPolySigma             = "PolySigma"
	KeyPyrScale              = "PyrScale"
	KeyResultsDir            = "ResultsDir"
	KeySeed                  = "Seed"
	KeySuddenChangeThreshold = "SuddenChangeThreshold"
	KeyWinSize               = "WinSize"
	KeyWorkers               = "Workers"
)

// Config map parameter types.
const (
	typeString = "string"
	typeInt    = "int"
	typeUint   = "uint"
	typeFloat  = "float"
)

// Default variable values.
const (
	defaultFrameSkip             = 1
	defaultFramesDir             = "frames"
	defaultFlowVisDir            = "flow_vis"
	defaultResultsDir            = "results"
	defaultAngleSampleSize       = 1000
	defaultSuddenChangeThreshold = 5.0
	defaultPlotWidth             = 10.0 // Inches.
	defaultPlotHeight            = 6.0  // Inches.
	defaultPlotDPI               = 300
	defaultHistogramBins         = 36
	defaultSeed                  = 1
	defaultLogPath               = "fish_behavior_analysis.log"

	// Farneback defaults.
	defaultPyrScale   = 0.5
	defaultLevels     = 3
	defaultWinSize    = 15
	defaultIterations = 3
	defaultPolyN      = 5
	defaultPolySigma  = 1.2
)

// DefaultFlowParams returns the Farneback parameters used when none are given.
func DefaultFlowParams() FlowParams {
	return FlowParams{
		PyrScale:   defaultPyrScale,
		Levels:     defaultLevels,
		WinSize:    defaultWinSize,
		Iterations: defaultIterations,
		PolyN:      defaultPolyN,
		PolySigma:  defaultPolySigma,
		Flags:      FlowFlagsNone,
	}
}

var filterEnums = map[string]uint8{
	"noop": FilterNoOp,
	"diff": FilterDiff,
	"mog":  FilterMOG,
	"knn":  FilterKNN,
}

var logEnums = map[string]int8{
	"debug":   logging.Debug,
	"info":    logging.Info,
	"warning": logging.Warning,
	"error":   logging.Error,
	"fatal":   logging.Fatal,
}

// Variables describes the variables that can be used to configure an analysis.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, a function for reading it, and a function for
// validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Get      func(*Config) string
	Validate func(*Config)
}{
	{
		Name:   KeyAngleSampleSize,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.AngleSampleSize = parseUint(KeyAngleSampleSize, v, c) },
		Get:    func(c *Config) string { return strconv.FormatUint(uint64(c.AngleSampleSize), 10) },
		Validate: func(c *Config) {
			c.AngleSampleSize = lessThanOrEqual(KeyAngleSampleSize, c.AngleSampleSize, 0, c, defaultAngleSampleSize)
		},
	},
	{
		Name:   KeyDBPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.DBPath = v },
		Get:    func(c *Config) string { return c.DBPath },
	},
	{
		Name:   KeyFlowFlags,
		Type:   "enum:0,4,256",
		Update: func(c *Config, v string) { c.Flow.Flags = parseInt(KeyFlowFlags, v, c) },
		Get:    func(c *Config) string { return strconv.Itoa(c.Flow.Flags) },
		Validate: func(c *Config) {
			switch c.Flow.Flags {
			case FlowFlagsNone, FlowFlagsUseInitialFlow, FlowFlagsGaussian, FlowFlagsUseInitialFlow | FlowFlagsGaussian:
			default:
				c.LogInvalidField(KeyFlowFlags, FlowFlagsNone)
				c.Flow.Flags = FlowFlagsNone
			}
		},
	},
	{
		Name:   KeyFlowVisDir,
		Type:   typeString,
		Update: func(c *Config, v string) { c.FlowVisDir = v },
		Get:    func(c *Config) string { return c.FlowVisDir },
		Validate: func(c *Config) {
			if c.FlowVisDir == "" {
				c.LogInvalidField(KeyFlowVisDir, defaultFlowVisDir)
				c.FlowVisDir = defaultFlowVisDir
			}
		},
	},
	{
		Name:   KeyFrameSkip,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FrameSkip = parseUint(KeyFrameSkip, v, c) },
		Get:    func(c *Config) string { return strconv.FormatUint(uint64(c.FrameSkip), 10) },
		Validate: func(c *Config) {
			c.FrameSkip = lessThanOrEqual(KeyFrameSkip, c.FrameSkip, 0, c, defaultFrameSkip)
		},
	},
	{
		Name:   KeyFramesDir,
		Type:   typeString,
		Update: func(c *Config, v string) { c.FramesDir = v },
		Get:    func(c *Config) string { return c.FramesDir },
		Validate: func(c *Config) {
			if c.FramesDir == "" {
				c.LogInvalidField(KeyFramesDir, defaultFramesDir)
				c.FramesDir = defaultFramesDir
			}
		},
	},
	{
		Name:   KeyHistogramBins,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.HistogramBins = parseUint(KeyHistogramBins, v, c) },
		Get:    func(c *Config) string { return strconv.FormatUint(uint64(c.HistogramBins), 10) },
		Validate: func(c *Config) {
			c.HistogramBins = lessThanOrEqual(KeyHistogramBins, c.HistogramBins, 0, c, defaultHistogramBins)
		},
	},
	{
		Name:   KeyIterations,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.Flow.Iterations = parseInt(KeyIterations, v, c) },
		Get:    func(c *Config) string { return strconv.Itoa(c.Flow.Iterations) },
		Validate: func(c *Config) {
			if c.Flow.Iterations <= 0 {
				c.LogInvalidField(KeyIterations, defaultIterations)
				c.Flow.Iterations = defaultIterations
			}
		},
	},
	{
		Name:   KeyLevels,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.Flow.Levels = parseInt(KeyLevels, v, c) },
		Get:    func(c *Config) string { return strconv.Itoa(c.Flow.Levels) },
		Validate: func(c *Config) {
			if c.Flow.Levels <= 0 {
				c.LogInvalidField(KeyLevels, defaultLevels)
				c.Flow.Levels = defaultLevels
			}
		},
	},
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			l, ok := logEnums[strings.ToLower(v)]
			if !ok {
				c.Logger.Warning("invalid logging param", "value", v)
				return
			}
			c.LogLevel = l
		},
		Get: func(c *Config) string {
			for k, l := range logEnums {
				if l == c.LogLevel {
					return strings.ToUpper(k[:1]) + k[1:]
				}
			}
			return ""
		},
	},
	{
		Name:   KeyLogPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.LogPath = v },
		Get:    func(c *Config) string { return c.LogPath },
		Validate: func(c *Config) {
			if c.LogPath == "" {
				c.LogInvalidField(KeyLogPath, defaultLogPath)
				c.LogPath = defaultLogPath
			}
		},
	},
	{
		Name:   KeyMotionFilter,
		Type:   "enum:NoOp,Diff,MOG,KNN",
		Update: func(c *Config, v string) { c.MotionFilter = parseEnum(KeyMotionFilter, v, filterEnums, c) },
		Get: func(c *Config) string {
			return [...]string{"NoOp", "Diff", "MOG", "KNN"}[c.MotionFilter%4]
		},
		Validate: func(c *Config) {
			if c.MotionFilter > FilterKNN {
				c.LogInvalidField(KeyMotionFilter, FilterNoOp)
				c.MotionFilter = FilterNoOp
			}
		},
	},
	{
		Name:   KeyMotionHistory,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MotionHistory = parseUint(KeyMotionHistory, v, c) },
		Get:    func(c *Config) string { return strconv.FormatUint(uint64(c.MotionHistory), 10) },
	},
	{
		Name:   KeyMotionKernel,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MotionKernel = parseUint(KeyMotionKernel, v, c) },
		Get:    func(c *Config) string { return strconv.FormatUint(uint64(c.MotionKernel), 10) },
	},
	{
		Name:   KeyMotionMinArea,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.MotionMinArea = parseFloat(KeyMotionMinArea, v, c) },
		Get:    func(c *Config) string { return formatFloat(c.MotionMinArea) },
	},
	{
		Name:   KeyMotionThreshold,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.MotionThreshold = parseFloat(KeyMotionThreshold, v, c) },
		Get:    func(c *Config) string { return formatFloat(c.MotionThreshold) },
	},
	{
		Name:   KeyPlotDPI,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.PlotDPI = parseUint(KeyPlotDPI, v, c) },
		Get:    func(c *Config) string { return strconv.FormatUint(uint64(c.PlotDPI), 10) },
		Validate: func(c *Config) {
			c.PlotDPI = lessThanOrEqual(KeyPlotDPI, c.PlotDPI, 0, c, defaultPlotDPI)
		},
	},
	{
		Name:   KeyPlotHeight,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.PlotHeight = parseFloat(KeyPlotHeight, v, c) },
		Get:    func(c *Config) string { return formatFloat(c.PlotHeight) },
		Validate: func(c *Config) {
			if c.PlotHeight <= 0 {
				c.LogInvalidField(KeyPlotHeight, defaultPlotHeight)
				c.PlotHeight = defaultPlotHeight
			}
		},
	},
	{
		Name:   KeyPlotWidth,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.PlotWidth = parseFloat(KeyPlotWidth, v, c) },
		Get:    func(c *Config) string { return formatFloat(c.PlotWidth) },
		Validate: func(c *Config) {
			if c.PlotWidth <= 0 {
				c.LogInvalidField(KeyPlotWidth, defaultPlotWidth)
				c.PlotWidth = defaultPlotWidth
			}
		},
	},
	{
		Name:   KeyPolyN,
		Type:   "enum:5,7",
		Update: func(c *Config, v string) { c.Flow.PolyN = parseInt(KeyPolyN, v, c) },
		Get:    func(c *Config) string { return strconv.Itoa(c.Flow.PolyN) },
		Validate: func(c *Config) {
			if c.Flow.PolyN != 5 && c.Flow.PolyN != 7 {
				c.LogInvalidField(KeyPolyN, defaultPolyN)
				c.Flow.PolyN = defaultPolyN
			}
		},
	},
	{
		Name:   KeyPolySigma,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.Flow.PolySigma = parseFloat(KeyPolySigma, v, c) },
		Get:    func(c *Config) string { return formatFloat(c.Flow.PolySigma) },
		Validate: func(c *Config) {
			if c.Flow.PolySigma <= 0 {
				c.LogInvalidField(KeyPolySigma, defaultPolySigma)
				c.Flow.PolySigma = defaultPolySigma
			}
		},
	},
	{
		Name:   KeyPyrScale,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.Flow.PyrScale = parseFloat(KeyPyrScale, v, c) },
		Get:    func(c *Config) string { return formatFloat(c.Flow.PyrScale) },
		Validate: func(c *Config) {
			if c.Flow.PyrScale <= 0 || c.Flow.PyrScale >= 1 {
				c.LogInvalidField(KeyPyrScale, defaultPyrScale)
				c.Flow.PyrScale = defaultPyrScale
			}
		},
	},
	{
		Name:   KeyResultsDir,
		Type:   typeString,
		Update: func(c *Config, v string) { c.ResultsDir = v },
		Get:    func(c *Config) string { return c.ResultsDir },
		Validate: func(c *Config) {
			if c.ResultsDir == "" {
				c.LogInvalidField(KeyResultsDir, defaultResultsDir)
				c.ResultsDir = defaultResultsDir
			}
		},
	},
	{
		Name: KeySeed,
		Type: typeUint,
		Update: func(c *Config, v string) {
			_v, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				c.Logger.Warning("invalid Seed param", "value", v)
			}
			c.Seed = _v
		},
		Get: func(c *Config) string { return strconv.FormatUint(c.Seed, 10) },
		Validate: func(c *Config) {
			if c.Seed == 0 {
				c.LogInvalidField(KeySeed, defaultSeed)
				c.Seed = defaultSeed
			}
		},
	},
	{
		Name: KeySuddenChangeThreshold,
		Type: typeFloat,
		Update: func(c *Config, v string) {
			c.SuddenChangeThreshold = parseFloat(KeySuddenChangeThreshold, v, c)
		},
		Get: func(c *Config) string { return formatFloat(c.SuddenChangeThreshold) },
		Validate: func(c *Config) {
			if c.SuddenChangeThreshold <= 0 {
				c.LogInvalidField(KeySuddenChangeThreshold, defaultSuddenChangeThreshold)
				c.SuddenChangeThreshold = defaultSuddenChangeThreshold
			}
		},
	},
	{
		Name:   KeyWinSize,
		Type:   typeInt,
		Update: func(c *Config, v string) { c.Flow.WinSize = parseInt(KeyWinSize, v, c) },
		Get:    func(c *Config) string { return strconv.Itoa(c.Flow.WinSize) },
		Validate: func(c *Config) {
			if c.Flow.WinSize <= 0 {
				c.LogInvalidField(KeyWinSize, defaultWinSize)
				c.Flow.WinSize = defaultWinSize
			}
		},
	},
	{
		Name:   KeyWorkers,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Workers = parseUint(KeyWorkers, v, c) },
		Get:    func(c *Config) string { return strconv.FormatUint(uint64(c.Workers), 10) },
		Validate: func(c *Config) {
			c.Workers = lessThanOrEqual(KeyWorkers, c.Workers, 0, c, uint(runtime.NumCPU()))
		},
	},
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected unsigned int for param %s", n), "value", v)
	}
	return uint(_v)
}

func parseInt(n, v string, c *Config) int {
	_v, err := strconv.Atoi(v)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected integer for param %s", n), "value", v)
	}
	return _v
}

func parseFloat(n, v string, c *Config) float64 {
	_v, err := strconv.ParseFloat(v, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected float for param %s", n), "value", v)
	}
	return _v
}

func parseEnum(n, v string, enums map[string]uint8, c *Config) uint8 {
	_v, ok := enums[strings.ToLower(v)]
	if !ok {
		c.Logger.Warning(fmt.Sprintf("invalid value for %s param", n), "value", v)
	}
	return _v
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func lessThanOrEqual(n string, v, cmp uint, c *Config, def uint) uint {
	if v <= cmp {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}
