/*
DESCRIPTION
  setup.go builds the analysis config from a config file, the environment
  and command line flags, and creates the logger.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/ausocean/utils/logging"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/fishflow/analyzer/config"
)

// Names of flags that override config variables.
const (
	flagConfig    = "config"
	flagVerbose   = "verbose"
	flagFrameSkip = "frame-skip"
	flagFramesDir = "frames-dir"
	flagFlowVis   = "flow-vis-dir"
	flagResults   = "results-dir"
	flagThreshold = "sudden-change-threshold"
	flagWorkers   = "workers"
	flagSeed      = "seed"
	flagMotion    = "motion-filter"
	flagDB        = "db"
	flagLogPath   = "log-path"
)

// flagKeys maps flags to the config variables they set.
var flagKeys = map[string]string{
	flagFrameSkip: config.KeyFrameSkip,
	flagFramesDir: config.KeyFramesDir,
	flagFlowVis:   config.KeyFlowVisDir,
	flagResults:   config.KeyResultsDir,
	flagThreshold: config.KeySuddenChangeThreshold,
	flagWorkers:   config.KeyWorkers,
	flagSeed:      config.KeySeed,
	flagMotion:    config.KeyMotionFilter,
	flagDB:        config.KeyDBPath,
	flagLogPath:   config.KeyLogPath,
}

// addConfigFlags adds the flags shared by every command that runs an
// analysis. Defaults shown are those applied by config validation.
func addConfigFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String(flagConfig, "", "YAML file of config variables")
	f.BoolP(flagVerbose, "v", false, "Enable verbose logging")
	f.Uint(flagFrameSkip, 1, "Extract every nth frame")
	f.String(flagFramesDir, "frames", "Directory to store extracted frames")
	f.String(flagFlowVis, "flow_vis", "Directory to store flow visualizations")
	f.String(flagResults, "results", "Directory to store analysis results")
	f.Float64(flagThreshold, 5.0, "Threshold for detecting sudden speed changes")
	f.Uint(flagWorkers, 0, "Frame pairs to process concurrently (default: number of CPUs)")
	f.Uint64(flagSeed, 1, "Seed for direction sampling")
	f.String(flagMotion, "NoOp", "Motion filter to flag active frames: NoOp, Diff, MOG or KNN")
	f.String(flagDB, "", "SQLite database to record runs in")
	f.String(flagLogPath, "", "Log file (default: fish_behavior_analysis.log)")
}

// loadVars returns config variables from, in increasing precedence, the
// config file, the environment and flags set on cmd.
func loadVars(cmd *cobra.Command) (map[string]string, error) {
	var file map[string]string
	path, _ := cmd.Flags().GetString(flagConfig)
	if path != "" {
		var err error
		file, err = config.LoadFile(path)
		if err != nil {
			return nil, err
		}
	}

	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}

	flags := make(map[string]string)
	for name, key := range flagKeys {
		if cmd.Flags().Changed(name) {
			flags[key] = cmd.Flags().Lookup(name).Value.String()
		}
	}
	if v, _ := cmd.Flags().GetBool(flagVerbose); v {
		flags[config.KeyLogging] = "Debug"
	}

	return config.Merge(file, env, flags), nil
}

// setup builds and validates the config for cmd and creates a logger writing
// to out and the rotating log file. The returned closer closes the log file
// and stops profiling.
func setup(cmd *cobra.Command, out io.Writer) (config.Config, io.Closer, error) {
	vars, err := loadVars(cmd)
	if err != nil {
		return config.Config{}, nil, err
	}

	// Resolve the log settings quietly first, then build the config again
	// with the real logger so that bad values are reported.
	pre := config.Config{Logger: logging.New(logging.Fatal, &bytes.Buffer{}, true)}
	pre.Update(vars)
	pre.Validate()

	fileLog := &lumberjack.Logger{
		Filename:   pre.LogPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(pre.LogLevel, io.MultiWriter(out, fileLog), logSuppress)

	c := config.Config{Logger: log}
	c.Update(vars)
	err = c.Validate()
	if err != nil {
		fileLog.Close()
		return config.Config{}, nil, fmt.Errorf("invalid config: %w", err)
	}
	log.Info("starting fishflow", "version", version)

	cl := closer{Logger: fileLog}
	if canProfile {
		stop, err := profile()
		if err != nil {
			log.Error(pkg+"could not start CPU profile", "error", err.Error())
		} else {
			cl.stopProfile = stop
			log.Info("profiling started")
		}
	}
	return c, cl, nil
}

type closer struct {
	*lumberjack.Logger
	stopProfile func()
}

func (c closer) Close() error {
	if c.stopProfile != nil {
		c.stopProfile()
	}
	return c.Logger.Close()
}

// profile starts a CPU profile written to profilePath.
func profile() (func(), error) {
	f, err := os.Create(profilePath)
	if err != nil {
		return nil, err
	}
	err = pprof.StartCPUProfile(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}
