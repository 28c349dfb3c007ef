/*
DESCRIPTION
  options.go provides option functions that can be passed to New to replace
  the stages of an analysis, for example to record runs in a database or to
  substitute stages in tests.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package analyzer

import (
	"errors"

	"github.com/ausocean/fishflow/frames"
)

var errNilStage = errors.New("stage must not be nil")

// WithExtractor is an option that can be passed to New to replace the frame
// extractor.
func WithExtractor(e Extractor) func(*Analyzer) error {
	return func(a *Analyzer) error {
		if e == nil {
			return errNilStage
		}
		a.extractor = e
		return nil
	}
}

// WithProcessor is an option that can be passed to New to replace the
// optical flow processor.
func WithProcessor(p Processor) func(*Analyzer) error {
	return func(a *Analyzer) error {
		if p == nil {
			return errNilStage
		}
		a.processor = p
		return nil
	}
}

// WithRecorder is an option that can be passed to New so that completed runs
// are recorded, e.g. in a store.DB.
func WithRecorder(r Recorder) func(*Analyzer) error {
	return func(a *Analyzer) error {
		if r == nil {
			return errNilStage
		}
		a.recorder = r
		a.log.Debug("configured run recorder")
		return nil
	}
}

// WithProbe is an option that can be passed to New to replace the function
// used to read the video frame rate.
func WithProbe(p func(path string) (frames.VideoInfo, error)) func(*Analyzer) error {
	return func(a *Analyzer) error {
		if p == nil {
			return errNilStage
		}
		a.probe = p
		return nil
	}
}
