//go:build withcv
// +build withcv

/*
DESCRIPTION
  background.go provides motion algorithms that model the background of a
  scene, using either a Mixture of Gaussians (MOG) or K-Nearest Neighbours
  (KNN), and report frames with large enough foreground regions.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/ausocean/fishflow/analyzer/config"
)

// backgroundModel is implemented by gocv's background subtractors.
type backgroundModel interface {
	Apply(src gocv.Mat, dst *gocv.Mat)
	Close() error
}

// modelDefaults are used for motion settings left unset in the config.
type modelDefaults struct {
	minArea   float64
	threshold float64
	history   uint
	kernel    uint
}

var (
	mogDefaults = modelDefaults{minArea: 25, threshold: 20, history: 500, kernel: 3}
	knnDefaults = modelDefaults{minArea: 25, threshold: 300, history: 300, kernel: 4}
)

// Background is a motion algorithm that subtracts a learned background
// model from each frame.
type Background struct {
	debugging debugWindows
	area      float64         // The minimum area that a contour can be found in.
	model     backgroundModel // Finds the difference between the current and background frame.
	knl       gocv.Mat        // Structuring element for morphology.
}

// NewMOG returns a Background using a Mixture of Gaussians model. The
// threshold is the squared Mahalanobis distance for a pixel to be considered
// background.
func NewMOG(c config.Config) *Background {
	c = withDefaults(c, mogDefaults)
	bs := gocv.NewBackgroundSubtractorMOG2WithParams(int(c.MotionHistory), c.MotionThreshold, false)
	return newBackground("MOG", c, &bs)
}

// NewKNN returns a Background using a K-Nearest Neighbours model. The
// threshold is the squared distance for a pixel to be considered close to a
// background sample.
func NewKNN(c config.Config) *Background {
	c = withDefaults(c, knnDefaults)
	bs := gocv.NewBackgroundSubtractorKNNWithParams(int(c.MotionHistory), c.MotionThreshold, false)
	return newBackground("KNN", c, &bs)
}

func newBackground(name string, c config.Config, m backgroundModel) *Background {
	k := int(c.MotionKernel)
	return &Background{
		area:      c.MotionMinArea,
		model:     m,
		knl:       gocv.GetStructuringElement(gocv.MorphRect, image.Pt(k, k)),
		debugging: newWindows(name),
	}
}

func withDefaults(c config.Config, d modelDefaults) config.Config {
	if c.MotionMinArea <= 0 {
		c.LogInvalidField(config.KeyMotionMinArea, d.minArea)
		c.MotionMinArea = d.minArea
	}
	if c.MotionThreshold <= 0 {
		c.LogInvalidField(config.KeyMotionThreshold, d.threshold)
		c.MotionThreshold = d.threshold
	}
	if c.MotionHistory == 0 {
		c.LogInvalidField(config.KeyMotionHistory, d.history)
		c.MotionHistory = d.history
	}
	if c.MotionKernel == 0 {
		c.LogInvalidField(config.KeyMotionKernel, d.kernel)
		c.MotionKernel = d.kernel
	}
	return c
}

// Close frees resources used by gocv. It has to be done manually,
// due to gocv using c-go.
func (b *Background) Close() error {
	b.model.Close()
	b.knl.Close()
	return b.debugging.close()
}

// Detect returns true if img contains a foreground region larger than the
// minimum area.
func (b *Background) Detect(img *gocv.Mat) bool {
	mask := gocv.NewMat()
	defer mask.Close()

	b.model.Apply(*img, &mask)
	found := contours(&mask, b.knl, b.area)

	b.debugging.show(*img, mask, len(found) > 0, &found)
	return len(found) > 0
}
