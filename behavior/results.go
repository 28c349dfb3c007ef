/*
DESCRIPTION
  results.go provides the Results of a behaviour analysis and the routine
  that derives them from a flow series.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package behavior

import (
	"fmt"
	"time"

	"github.com/ausocean/fishflow/flow"
)

// Metadata describes an analysis run.
type Metadata struct {
	RunID              string            `json:"run_id"`
	VideoPath          string            `json:"video_path"`
	FrameSkip          uint              `json:"frame_skip"`
	FramesAnalyzed     int               `json:"frames_analyzed"`
	SuddenChangesCount int               `json:"sudden_changes_count"`
	StartedAt          time.Time         `json:"started_at"`
	FPS                float64           `json:"fps"`
	Config             map[string]string `json:"config,omitempty"`
}

// Results holds everything derived from the flow of a video.
type Results struct {
	Metadata  Metadata
	Frames    []flow.FrameStats
	Speeds    []float64
	Angles    []float64
	Events    []Event
	Heatmap   *flow.Heatmap
	Histogram Histogram
	Summary   Summary
}

// Params control the analysis of a flow series.
type Params struct {
	// SuddenChangeThreshold is the speed change, in pixels/frame, above
	// which an event is flagged.
	SuddenChangeThreshold float64

	// HistogramBins is the number of direction histogram bins.
	HistogramBins int

	// SampleRate is the number of frame pairs per second, or 0 if unknown.
	SampleRate float64
}

// Analyse derives speeds, directions, sudden change events and statistics
// from s. flow.ErrNotEnoughFrames is returned if s has no frame pairs. The
// returned Metadata has FramesAnalyzed and SuddenChangesCount set; the caller
// fills in the rest.
func Analyse(s *flow.Series, p Params) (*Results, error) {
	if s == nil || len(s.Frames) == 0 {
		return nil, flow.ErrNotEnoughFrames
	}

	r := &Results{
		Frames:  s.Frames,
		Speeds:  s.Speeds(),
		Angles:  s.Angles(),
		Heatmap: s.Heatmap,
	}
	r.Events = DetectSuddenChanges(r.Speeds, p.SuddenChangeThreshold)
	r.Histogram = DirectionHistogram(r.Angles, p.HistogramBins)
	r.Summary = Summarise(r.Speeds, r.Angles, r.Events)

	if len(r.Speeds) >= MinPeriodicitySamples {
		per, err := AnalysePeriodicity(r.Speeds, p.SampleRate)
		if err == nil {
			r.Summary.Periodicity = per
		}
	}

	r.Metadata.FramesAnalyzed = len(r.Speeds)
	r.Metadata.SuddenChangesCount = len(r.Events)
	return r, nil
}

// String returns a short description of the results for logging.
func (r *Results) String() string {
	return fmt.Sprintf("%d frames analysed, %d sudden changes, average speed %.2f pixels/frame",
		r.Metadata.FramesAnalyzed, len(r.Events), r.Summary.Speed.Mean)
}
