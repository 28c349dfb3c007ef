/*
DESCRIPTION
  processor.go provides the Processor, which computes optical flow for every
  pair of consecutive frames in a frames.Store.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/fishflow/analyzer/config"
	"github.com/ausocean/fishflow/filter"
	"github.com/ausocean/fishflow/frames"
)

// Options control the optional outputs of Process.
type Options struct {
	// Preview shows each flow visualisation in a window. Pressing q closes
	// the window; the remaining pairs are still processed.
	Preview bool

	// SaveVis writes each flow visualisation to the flow visualisation dir.
	SaveVis bool
}

// Processor computes dense optical flow between consecutive frames.
type Processor struct {
	cfg   config.Config
	store *frames.Store
	log   logging.Logger
}

// NewProcessor returns a new Processor reading frames from s. The config is
// expected to have been validated.
func NewProcessor(c config.Config, s *frames.Store) *Processor {
	return &Processor{cfg: c, store: s, log: c.Logger}
}

// VisPath returns the path of the flow visualisation for frame pair i.
func (p *Processor) VisPath(i int) string {
	return filepath.Join(p.cfg.FlowVisDir, fmt.Sprintf("flow_%05d.png", i))
}

// Process computes flow for each pair of consecutive frames and returns the
// statistics in frame order. ErrNotEnoughFrames is returned if the store holds
// fewer than two frames.
func (p *Processor) Process(ctx context.Context, opts Options) (*Series, error) {
	paths, err := p.store.List()
	if err != nil {
		return nil, err
	}
	if len(paths) < 2 {
		return nil, fmt.Errorf("%w: found %d in %s", ErrNotEnoughFrames, len(paths), p.store.Dir)
	}

	if opts.SaveVis {
		err = os.MkdirAll(p.cfg.FlowVisDir, 0755)
		if err != nil {
			return nil, fmt.Errorf("could not create flow visualisation dir: %w", err)
		}
	}

	p.log.Info("computing optical flow", "frames", len(paths), "workers", p.workers(opts), "motionFilter", filter.Name(p.cfg.MotionFilter))
	s, err := p.process(ctx, paths, opts)
	if err != nil {
		return nil, err
	}
	p.log.Info("computed optical flow", "pairs", len(s.Frames), "motionFrames", s.MotionFrames())
	return s, nil
}

// workers returns the number of pairs that may be processed concurrently.
// Previewing needs pairs in order, so is sequential.
func (p *Processor) workers(opts Options) int {
	if opts.Preview || p.cfg.Workers == 0 {
		return 1
	}
	return int(p.cfg.Workers)
}

// sampler returns the direction sampler for frame pair i.
func (p *Processor) sampler(i int) *Sampler {
	return NewSampler(int(p.cfg.AngleSampleSize), p.cfg.Seed, uint64(i))
}
