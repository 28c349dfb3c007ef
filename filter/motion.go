//go:build withcv
// +build withcv

/*
DESCRIPTION
  motion.go provides the MotionAlgorithm interface implemented by the motion
  filters and a constructor selecting one from a config.

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

// MotionAlgorithm is the interface the motion filters implement.
type MotionAlgorithm interface {
	// Detect returns true if img contains motion. Frames must be passed in
	// order as most algorithms keep a history.
	Detect(img *gocv.Mat) bool
	Close() error
}

// NewAlgorithm returns the motion algorithm selected by c.MotionFilter. A nil
// algorithm is returned for FilterNoOp.
func NewAlgorithm(c config.Config) (MotionAlgorithm, error) {
	switch c.MotionFilter {
	case config.FilterNoOp:
		return nil, nil
	case config.FilterDiff:
		return NewDiff(c), nil
	case config.FilterMOG:
		return NewMOG(c), nil
	case config.FilterKNN:
		return NewKNN(c), nil
	default:
		return nil, fmt.Errorf("unknown motion filter: %d", c.MotionFilter)
	}
}
