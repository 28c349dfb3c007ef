//go:build !debug && withcv
// +build !debug,withcv

/*
DESCRIPTION
  No-op debug windows used when the debug tag is absent.

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
)

type debugWindows struct{}

func (d *debugWindows) close() error { return nil }

func newWindows(name string) debugWindows { return debugWindows{} }

func (d *debugWindows) show(img, mask gocv.Mat, motion bool, contours *[][]image.Point, text ...string) {
}
