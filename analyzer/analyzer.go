/*
DESCRIPTION
  analyzer.go provides the Analyzer, which runs a fish behaviour analysis of
  a video: frame extraction, optical flow, behaviour analysis, visualisation,
  export and recording.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package analyzer provides the Analyzer, which sequences the stages of a
// fish behaviour analysis of a video.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/google/uuid"

	"github.com/ausocean/fishflow/analyzer/config"
	"github.com/ausocean/fishflow/behavior"
	"github.com/ausocean/fishflow/export"
	"github.com/ausocean/fishflow/flow"
	"github.com/ausocean/fishflow/frames"
	"github.com/ausocean/fishflow/visual"
)

// ErrNoResults is returned by operations that need analysis results when
// AnalyzeBehavior has not yet been run.
var ErrNoResults = errors.New("no analysis results available, run AnalyzeBehavior first")

// Extractor extracts frames from a video.
type Extractor interface {
	Extract(ctx context.Context, force bool) (int, error)
}

// Processor computes optical flow between extracted frames.
type Processor interface {
	Process(ctx context.Context, opts flow.Options) (*flow.Series, error)
}

// Recorder records completed runs.
type Recorder interface {
	SaveRun(ctx context.Context, r *behavior.Results, resultsDir string) error
}

// RunOptions control RunFullAnalysis.
type RunOptions struct {
	ForceReextract bool // Extract frames even if they already exist.
	Preview        bool // Show the flow of each frame pair in a window.
	SavePlots      bool // Write figures and the HTML report.
	SaveResults    bool // Write flow visualisations and results files, and record the run.
}

// Analyzer runs the stages of an analysis of one video. Stages may be run
// individually or all at once with RunFullAnalysis.
type Analyzer struct {
	path string
	cfg  config.Config
	log  logging.Logger

	extractor Extractor
	processor Processor
	recorder  Recorder
	probe     func(path string) (frames.VideoInfo, error)

	runID   string
	started time.Time
	info    *frames.VideoInfo
	series  *flow.Series
	results *behavior.Results
}

// New returns an Analyzer for the video at path. The config is validated,
// filling in defaults. An error wrapping frames.ErrVideoNotFound is returned
// if the video does not exist.
func New(path string, c config.Config, options ...func(*Analyzer) error) (*Analyzer, error) {
	if c.Logger == nil {
		return nil, errors.New("config has no logger")
	}
	err := c.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store := frames.NewStore(c.FramesDir)
	ext, err := frames.NewExtractor(path, c, store)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		path:      path,
		cfg:       c,
		log:       c.Logger,
		extractor: ext,
		processor: flow.NewProcessor(c, store),
		probe:     frames.Probe,
		runID:     uuid.New().String(),
		started:   time.Now().UTC(),
	}
	for i, o := range options {
		err := o(a)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", i, err)
		}
	}
	a.log.Debug("analyzer created", "video", path, "runID", a.runID)
	return a, nil
}

// RunID returns the unique ID of this analysis run.
func (a *Analyzer) RunID() string { return a.runID }

// Config returns the validated config.
func (a *Analyzer) Config() config.Config { return a.cfg }

// Results returns the analysis results, or nil if AnalyzeBehavior has not
// been run.
func (a *Analyzer) Results() *behavior.Results { return a.results }

// ExtractFrames extracts frames from the video, reusing existing frames
// unless force is true. It returns the number of frames available.
func (a *Analyzer) ExtractFrames(ctx context.Context, force bool) (int, error) {
	n, err := a.extractor.Extract(ctx, force)
	if err != nil {
		return n, fmt.Errorf("could not extract frames: %w", err)
	}
	return n, nil
}

// ComputeFlow computes optical flow between consecutive frames and returns
// the number of frame pairs processed. The flow is kept for AnalyzeBehavior.
func (a *Analyzer) ComputeFlow(ctx context.Context, opts flow.Options) (int, error) {
	s, err := a.processor.Process(ctx, opts)
	if err != nil {
		return 0, fmt.Errorf("could not compute optical flow: %w", err)
	}
	a.series = s
	return len(s.Frames), nil
}

// AnalyzeBehavior derives speeds, directions, sudden changes and statistics
// from the flow. If ComputeFlow has not been run it is run without
// visualisation. flow.ErrNotEnoughFrames is returned if there are fewer than
// two frames.
func (a *Analyzer) AnalyzeBehavior(ctx context.Context) (*behavior.Results, error) {
	a.log.Info("analyzing fish behavior patterns")
	if a.series == nil {
		_, err := a.ComputeFlow(ctx, flow.Options{})
		if err != nil {
			return nil, err
		}
	}

	r, err := behavior.Analyse(a.series, behavior.Params{
		SuddenChangeThreshold: a.cfg.SuddenChangeThreshold,
		HistogramBins:         int(a.cfg.HistogramBins),
		SampleRate:            a.sampleRate(),
	})
	if err != nil {
		return nil, err
	}

	r.Metadata.RunID = a.runID
	r.Metadata.VideoPath = a.path
	r.Metadata.FrameSkip = a.cfg.FrameSkip
	r.Metadata.StartedAt = a.started
	r.Metadata.FPS = a.videoInfo().FPS
	r.Metadata.Config = a.cfg.ToMap()

	for _, e := range r.Events {
		a.log.Info("sudden change detected", "frame", e.Frame, "speedChange", e.SpeedChange)
	}
	a.log.Info("analysis complete", "framesAnalyzed", r.Metadata.FramesAnalyzed, "suddenChanges", len(r.Events))
	a.results = r
	return r, nil
}

// VisualizeResults writes the figures and HTML report into the results dir
// if save is true, and returns their paths keyed by the visual Key consts.
func (a *Analyzer) VisualizeResults(save bool) (map[string]string, error) {
	if a.results == nil {
		return nil, ErrNoResults
	}
	if !save {
		return map[string]string{}, nil
	}
	return visual.New(a.cfg).All(a.results)
}

// ExportResults writes the results files into the results dir and returns
// their paths keyed by the export Key consts.
func (a *Analyzer) ExportResults() (map[string]string, error) {
	if a.results == nil {
		return nil, ErrNoResults
	}
	e, err := export.New(a.cfg.ResultsDir, a.log)
	if err != nil {
		return nil, err
	}
	return e.All(a.results)
}

// RecordRun records the results with the configured Recorder, if any.
func (a *Analyzer) RecordRun(ctx context.Context) error {
	if a.results == nil {
		return ErrNoResults
	}
	if a.recorder == nil {
		return nil
	}
	err := a.recorder.SaveRun(ctx, a.results, a.cfg.ResultsDir)
	if err != nil {
		return fmt.Errorf("could not record run: %w", err)
	}
	a.log.Info("recorded run", "runID", a.runID)
	return nil
}

// RunFullAnalysis runs every stage of the analysis in order and returns the
// results.
func (a *Analyzer) RunFullAnalysis(ctx context.Context, opts RunOptions) (*behavior.Results, error) {
	a.log.Info("starting full fish behavior analysis", "video", a.path, "runID", a.runID)

	a.log.Info("step 1: extracting frames")
	n, err := a.ExtractFrames(ctx, opts.ForceReextract)
	if err != nil {
		return nil, err
	}
	a.log.Info("frame extraction complete", "frames", n)

	a.log.Info("step 2: computing optical flow")
	n, err = a.ComputeFlow(ctx, flow.Options{Preview: opts.Preview, SaveVis: opts.SaveResults})
	if err != nil {
		return nil, err
	}
	a.log.Info("optical flow computation complete", "flows", n)

	a.log.Info("step 3: analyzing behavior patterns")
	r, err := a.AnalyzeBehavior(ctx)
	if err != nil {
		return nil, err
	}

	a.log.Info("step 4: generating visualizations")
	plots, err := a.VisualizeResults(opts.SavePlots)
	if err != nil {
		return nil, err
	}
	for k, p := range plots {
		a.log.Debug("figure written", "figure", k, "path", p)
	}

	if opts.SaveResults {
		a.log.Info("step 5: exporting results")
		files, err := a.ExportResults()
		if err != nil {
			return nil, err
		}
		a.log.Info("results exported", "dir", a.cfg.ResultsDir, "files", len(files))

		err = a.RecordRun(ctx)
		if err != nil {
			return nil, err
		}
	}

	a.log.Info("full analysis complete", "summary", r.String())
	return r, nil
}

// videoInfo returns the probed video properties, probing once. Probe
// failures are logged and give zero values.
func (a *Analyzer) videoInfo() frames.VideoInfo {
	if a.info != nil {
		return *a.info
	}
	info, err := a.probe(a.path)
	if err != nil {
		a.log.Debug("could not probe video", "error", err.Error())
		info = frames.VideoInfo{Path: a.path}
	}
	a.info = &info
	return info
}

// sampleRate returns the number of frame pairs per second, or 0 if the frame
// rate is unknown.
func (a *Analyzer) sampleRate() float64 {
	fps := a.videoInfo().FPS
	if fps <= 0 || a.cfg.FrameSkip == 0 {
		return 0
	}
	return fps / float64(a.cfg.FrameSkip)
}
