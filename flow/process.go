//go:build withcv
// +build withcv

/*
DESCRIPTION
  process.go provides the OpenCV backed flow computation. Frames are read in
  order, run through the motion filter if one is configured, and each pair is
  handed to a bounded pool of workers running Farneback optical flow.

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

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"github.com/ausocean/fishflow/filter"
)

const previewTitle = "Optical Flow"

// pair holds the grayscale frames of a frame pair. A pair owns its Mats.
type pair struct {
	index  int
	prev   gocv.Mat
	next   gocv.Mat
	motion bool
}

func (j *pair) close() {
	j.prev.Close()
	j.next.Close()
}

// preview displays flow visualisations until the user presses q.
type preview struct {
	win *gocv.Window
}

func (v *preview) show(img gocv.Mat) {
	if v.win == nil {
		return
	}
	v.win.IMShow(img)
	if v.win.WaitKey(1)&0xff == 'q' {
		v.win.Close()
		v.win = nil
	}
}

func (v *preview) close() {
	if v.win != nil {
		v.win.Close()
	}
}

func (p *Processor) process(ctx context.Context, paths []string, opts Options) (*Series, error) {
	alg, err := filter.NewAlgorithm(p.cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create motion filter: %w", err)
	}
	if alg != nil {
		defer alg.Close()
	}

	var pv *preview
	if opts.Preview {
		pv = &preview{win: gocv.NewWindow(previewTitle)}
		defer pv.close()
	}

	s := &Series{Frames: make([]FrameStats, len(paths)-1), Heatmap: &Heatmap{}}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers(opts))

	prev, _, err := p.load(paths[0], alg)
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(paths); i++ {
		if gctx.Err() != nil {
			break
		}

		next, motion, err := p.load(paths[i], alg)
		if err != nil {
			prev.Close()
			g.Wait()
			return nil, err
		}

		j := &pair{index: i, prev: prev, next: next, motion: motion}
		prev = next.Clone()

		if pv != nil {
			err = p.compute(j, s, opts.SaveVis, pv)
			if err != nil {
				prev.Close()
				return nil, err
			}
			continue
		}
		g.Go(func() error { return p.compute(j, s, opts.SaveVis, nil) })
	}
	prev.Close()

	err = g.Wait()
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return s, nil
}

// load reads a frame, runs the motion filter over it and returns it in
// grayscale.
func (p *Processor) load(path string, alg filter.MotionAlgorithm) (gocv.Mat, bool, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return gocv.Mat{}, false, fmt.Errorf("could not read frame: %s", path)
	}

	var motion bool
	if alg != nil {
		motion = alg.Detect(&img)
	}

	gray := gocv.NewMat()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	return gray, motion, nil
}

// compute computes the flow for a frame pair, stores its statistics in s and
// writes or shows its visualisation as required. Each pair writes a distinct
// element of s.Frames.
func (p *Processor) compute(j *pair, s *Series, saveVis bool, pv *preview) error {
	defer j.close()

	fl := gocv.NewMat()
	defer fl.Close()
	f := p.cfg.Flow
	gocv.CalcOpticalFlowFarneback(j.prev, j.next, &fl, f.PyrScale, f.Levels, f.WinSize, f.Iterations, f.PolyN, f.PolySigma, f.Flags)

	field, err := toField(fl)
	if err != nil {
		return fmt.Errorf("frame %d: %w", j.index, err)
	}
	stats, err := Summarise(j.index-1, field, p.sampler(j.index), s.Heatmap)
	if err != nil {
		return fmt.Errorf("frame %d: %w", j.index, err)
	}
	stats.Index = j.index
	stats.Motion = j.motion
	s.Frames[j.index-1] = stats
	p.log.Debug("computed frame flow", "frame", j.index, "meanSpeed", stats.MeanSpeed, "motion", stats.Motion)

	if !saveVis && pv == nil {
		return nil
	}

	vis := visualise(fl)
	defer vis.Close()
	if saveVis {
		path := p.VisPath(j.index)
		if !gocv.IMWrite(path, vis) {
			return fmt.Errorf("could not write flow visualisation: %s", path)
		}
	}
	if pv != nil {
		pv.show(vis)
	}
	return nil
}

// toField copies a two channel float flow Mat into a Field.
func toField(m gocv.Mat) (*Field, error) {
	data, err := m.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("could not access flow data: %w", err)
	}
	f := &Field{Cols: m.Cols(), Rows: m.Rows(), Data: make([]float32, len(data))}
	copy(f.Data, data)
	return f, nil
}

// visualise renders a flow Mat as a BGR image where hue is direction and
// value is magnitude normalised to the frame's maximum.
func visualise(fl gocv.Mat) gocv.Mat {
	chans := gocv.Split(fl)
	defer func() {
		for _, c := range chans {
			c.Close()
		}
	}()

	mag := gocv.NewMat()
	defer mag.Close()
	ang := gocv.NewMat()
	defer ang.Close()
	gocv.CartToPolar(chans[0], chans[1], &mag, &ang, true)

	// OpenCV 8 bit hue is in [0, 180).
	hue := gocv.NewMat()
	defer hue.Close()
	ang.ConvertToWithParams(&hue, gocv.MatTypeCV8U, 0.5, 0)

	sat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), fl.Rows(), fl.Cols(), gocv.MatTypeCV8U)
	defer sat.Close()

	norm := gocv.NewMat()
	defer norm.Close()
	gocv.Normalize(mag, &norm, 0, 255, gocv.NormMinMax)
	val := gocv.NewMat()
	defer val.Close()
	norm.ConvertTo(&val, gocv.MatTypeCV8U)

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.Merge([]gocv.Mat{hue, sat, val}, &hsv)

	bgr := gocv.NewMat()
	gocv.CvtColor(hsv, &bgr, gocv.ColorHSVToBGR)
	return bgr
}
