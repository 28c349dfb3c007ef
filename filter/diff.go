//go:build withcv
// +build withcv

/*
DESCRIPTION
  diff.go provides a motion algorithm that takes the absolute difference of
  each pixel between consecutive frames and flags motion when the mean
  difference exceeds a threshold.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ausocean/fishflow/analyzer/config"
)

const defaultDiffThreshold = 3

// Diff is a motion detection algorithm. It calculates the absolute
// difference for each pixel between two frames, then finds the mean.
// If the mean is above a given threshold, it is considered motion.
type Diff struct {
	debugging debugWindows
	thresh    float64
	prev      gocv.Mat
}

// NewDiff returns a new difference motion algorithm.
func NewDiff(c config.Config) *Diff {
	if c.MotionThreshold <= 0 {
		c.LogInvalidField(config.KeyMotionThreshold, defaultDiffThreshold)
		c.MotionThreshold = defaultDiffThreshold
	}

	return &Diff{
		thresh:    c.MotionThreshold,
		prev:      gocv.NewMat(),
		debugging: newWindows("DIFF"),
	}
}

// Close frees resources used by gocv. It has to be done manually,
// due to gocv using c-go.
func (d *Diff) Close() error {
	d.debugging.close()
	return d.prev.Close()
}

// Detect returns true if the mean absolute difference between img and the
// previous frame exceeds the threshold. The first frame is never motion.
func (d *Diff) Detect(img *gocv.Mat) bool {
	if d.prev.Empty() {
		d.prev.Close()
		d.prev = img.Clone()
		return false
	}

	imgDelta := gocv.NewMat()
	defer imgDelta.Close()

	gocv.AbsDiff(*img, d.prev, &imgDelta)
	if imgDelta.Channels() == 3 {
		gocv.CvtColor(imgDelta, &imgDelta, gocv.ColorBGRToGray)
	}
	mean := imgDelta.Mean().Val1

	d.prev.Close()
	d.prev = img.Clone()

	motion := mean > d.thresh
	d.debugging.show(*img, imgDelta, motion, nil, fmt.Sprintf("Mean: %f", mean), fmt.Sprintf("Threshold: %f", d.thresh))
	return motion
}
