/*
DESCRIPTION
  config_test.go provides testing for the Config struct methods (Validate,
  Update and ToMap) and for loading variables from files and the environment.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

type dumbLogger struct{}

func (dl *dumbLogger) Log(l int8, m string, a ...interface{})  {}
func (dl *dumbLogger) SetLevel(l int8)                         {}
func (dl *dumbLogger) Debug(msg string, args ...interface{})   {}
func (dl *dumbLogger) Info(msg string, args ...interface{})    {}
func (dl *dumbLogger) Warning(msg string, args ...interface{}) {}
func (dl *dumbLogger) Error(msg string, args ...interface{})   {}
func (dl *dumbLogger) Fatal(msg string, args ...interface{})   {}

func TestValidate(t *testing.T) {
	dl := &dumbLogger{}

	want := Config{
		Logger:                dl,
		FrameSkip:             defaultFrameSkip,
		FramesDir:             defaultFramesDir,
		FlowVisDir:            defaultFlowVisDir,
		ResultsDir:            defaultResultsDir,
		Flow:                  DefaultFlowParams(),
		AngleSampleSize:       defaultAngleSampleSize,
		SuddenChangeThreshold: defaultSuddenChangeThreshold,
		PlotWidth:             defaultPlotWidth,
		PlotHeight:            defaultPlotHeight,
		PlotDPI:               defaultPlotDPI,
		HistogramBins:         defaultHistogramBins,
		Workers:               uint(runtime.NumCPU()),
		Seed:                  defaultSeed,
		LogPath:               defaultLogPath,
	}

	got := Config{Logger: dl}
	err := (&got).Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if !cmp.Equal(got, want) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestValidateKeepsValidValues(t *testing.T) {
	dl := &dumbLogger{}
	c := Config{
		Logger:                dl,
		FrameSkip:             2,
		ResultsDir:            "custom_results",
		SuddenChangeThreshold: 0.5,
		Flow:                  FlowParams{PyrScale: 0.8, Levels: 5, WinSize: 21, Iterations: 10, PolyN: 7, PolySigma: 1.5, Flags: FlowFlagsGaussian},
	}
	err := c.Validate()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if c.FrameSkip != 2 {
		t.Errorf("unexpected FrameSkip, got: %d, want: 2", c.FrameSkip)
	}
	if c.ResultsDir != "custom_results" {
		t.Errorf("unexpected ResultsDir, got: %s, want: custom_results", c.ResultsDir)
	}
	if c.SuddenChangeThreshold != 0.5 {
		t.Errorf("unexpected SuddenChangeThreshold, got: %v, want: 0.5", c.SuddenChangeThreshold)
	}
	want := FlowParams{PyrScale: 0.8, Levels: 5, WinSize: 21, Iterations: 10, PolyN: 7, PolySigma: 1.5, Flags: FlowFlagsGaussian}
	if !cmp.Equal(c.Flow, want) {
		t.Errorf("flow params not equal\nwant: %v\ngot: %v", want, c.Flow)
	}
}

func TestValidateReplacesInvalidFlowParams(t *testing.T) {
	c := Config{
		Logger: &dumbLogger{},
		Flow:   FlowParams{PyrScale: 1.5, Levels: -1, WinSize: 0, Iterations: -3, PolyN: 6, PolySigma: -1, Flags: 3},
	}
	c.Validate()
	if !cmp.Equal(c.Flow, DefaultFlowParams()) {
		t.Errorf("flow params not defaulted\nwant: %v\ngot: %v", DefaultFlowParams(), c.Flow)
	}
}

func TestUpdate(t *testing.T) {
	updateMap := map[string]string{
		"AngleSampleSize":       "500",
		"DBPath":                "/var/lib/fishflow/runs.db",
		"FlowFlags":             "256",
		"FlowVisDir":            "/flowvis",
		"FrameSkip":             "2",
		"FramesDir":             "/frames",
		"HistogramBins":         "72",
		"Iterations":            "5",
		"Levels":                "4",
		"logging":               "Error",
		"LogPath":               "/var/log/fishflow.log",
		"MotionFilter":          "MOG",
		"MotionHistory":         "200",
		"MotionKernel":          "5",
		"MotionMinArea":         "30",
		"MotionThreshold":       "12.5",
		"PlotDPI":               "150",
		"PlotHeight":            "4",
		"PlotWidth":             "8",
		"PolyN":                 "7",
		"PolySigma":             "1.5",
		"PyrScale":              "0.6",
		"ResultsDir":            "/results",
		"Seed":                  "42",
		"SuddenChangeThreshold": "3.25",
		"WinSize":               "21",
		"Workers":               "3",
	}

	dl := &dumbLogger{}

	want := Config{
		Logger:                dl,
		AngleSampleSize:       500,
		DBPath:                "/var/lib/fishflow/runs.db",
		Flow:                  FlowParams{PyrScale: 0.6, Levels: 4, WinSize: 21, Iterations: 5, PolyN: 7, PolySigma: 1.5, Flags: FlowFlagsGaussian},
		FlowVisDir:            "/flowvis",
		FrameSkip:             2,
		FramesDir:             "/frames",
		HistogramBins:         72,
		LogLevel:              logging.Error,
		LogPath:               "/var/log/fishflow.log",
		MotionFilter:          FilterMOG,
		MotionHistory:         200,
		MotionKernel:          5,
		MotionMinArea:         30,
		MotionThreshold:       12.5,
		PlotDPI:               150,
		PlotHeight:            4,
		PlotWidth:             8,
		ResultsDir:            "/results",
		Seed:                  42,
		SuddenChangeThreshold: 3.25,
		Workers:               3,
	}

	got := Config{Logger: dl}
	got.Update(updateMap)
	if !cmp.Equal(want, got) {
		t.Errorf("configs not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestToMapRoundTrip(t *testing.T) {
	dl := &dumbLogger{}
	want := Config{Logger: dl, FrameSkip: 3, MotionFilter: FilterKNN, LogLevel: logging.Debug, DBPath: "runs.db"}
	want.Validate()

	got := Config{Logger: dl}
	got.Update(want.ToMap())
	if !cmp.Equal(want, got) {
		t.Errorf("configs not equal after round trip\nwant: %v\ngot: %v", want, got)
	}
}

func TestLoadFile(t *testing.T) {
	const data = `
FrameSkip: 2
ResultsDir: custom_results
SuddenChangeThreshold: 7.5
MotionFilter: MOG
DBPath:
`
	path := filepath.Join(t.TempDir(), "fishflow.yaml")
	err := os.WriteFile(path, []byte(data), 0644)
	if err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	want := map[string]string{
		KeyFrameSkip:             "2",
		KeyResultsDir:            "custom_results",
		KeySuddenChangeThreshold: "7.5",
		KeyMotionFilter:          "MOG",
	}
	if !cmp.Equal(got, want) {
		t.Errorf("vars not equal\nwant: %v\ngot: %v", want, got)
	}
}

func TestLoadFileRejectsNested(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fishflow.yaml")
	err := os.WriteFile(path, []byte("Flow:\n  Levels: 3\n"), 0644)
	if err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	_, err = LoadFile(path)
	if err == nil {
		t.Error("expected error for nested value")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"FRAME_SKIP", "3")
	t.Setenv(EnvPrefix+"RESULTS_DIR", "out")
	t.Setenv(EnvPrefix+"LOG_LEVEL", "Debug")

	got, err := LoadEnv()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	for k, v := range map[string]string{KeyFrameSkip: "3", KeyResultsDir: "out", KeyLogging: "Debug"} {
		if got[k] != v {
			t.Errorf("unexpected value for %s, got: %q, want: %q", k, got[k], v)
		}
	}
}

func TestMerge(t *testing.T) {
	got := Merge(
		map[string]string{KeyFrameSkip: "1", KeyResultsDir: "a"},
		map[string]string{KeyFrameSkip: "2"},
		nil,
		map[string]string{KeySeed: "9"},
	)
	want := map[string]string{KeyFrameSkip: "2", KeyResultsDir: "a", KeySeed: "9"}
	if !cmp.Equal(got, want) {
		t.Errorf("merged vars not equal\nwant: %v\ngot: %v", want, got)
	}
}
