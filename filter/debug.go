//go:build debug && withcv
// +build debug,withcv

/*
DESCRIPTION
  Displays the frame and foreground mask seen by a motion filter when
  built with the debug tag.

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
	"image/color"

	"gocv.io/x/gocv"
)

// debugWindows is used for displaying debug information for the motion filters.
type debugWindows struct {
	windows []*gocv.Window
}

// close frees resources used by gocv.
func (d *debugWindows) close() error {
	for _, window := range d.windows {
		err := window.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// newWindows creates debugging windows for the motion filter.
func newWindows(name string) debugWindows {
	return debugWindows{
		windows: []*gocv.Window{
			gocv.NewWindow(name + ": Frame"),
			gocv.NewWindow(name + ": Motion Detection"),
		},
	}
}

// show displays the frame, annotated with contour bounds and text, alongside
// the mask the decision was made on.
func (d *debugWindows) show(img, mask gocv.Mat, motion bool, contours *[][]image.Point, text ...string) {
	var drkRed = color.RGBA{191, 0, 0, 0}
	var lhtRed = color.RGBA{191, 31, 31, 0}

	im := img.Clone()
	defer im.Close()

	if contours != nil {
		for _, c := range *contours {
			pv := gocv.NewPointVectorFromPoints(c)
			gocv.Rectangle(&im, gocv.BoundingRect(pv), lhtRed, 1)
			pv.Close()
		}
	}

	if motion {
		text = append(text, "Motion Detected")
	}
	for i, str := range text {
		gocv.PutText(&im, str, image.Pt(32, 32*(i+1)), gocv.FontHersheyPlain, 2.0, drkRed, 2)
	}

	d.windows[0].IMShow(im)
	d.windows[1].IMShow(mask)
	d.windows[0].WaitKey(1)
}
