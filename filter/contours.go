//go:build withcv
// +build withcv

/*
DESCRIPTION
  contours.go provides the foreground mask clean up and contour search shared
  by the background subtraction algorithms.

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

// foregroundThreshold is the mask value above which a pixel is foreground.
// Shadows are marked as 127 by the subtractors and are excluded.
const foregroundThreshold = 25

// contours thresholds the foreground mask, removes noise and fills holes
// using knl, then returns the external contours with an area greater than
// minArea. mask is modified in place.
func contours(mask *gocv.Mat, knl gocv.Mat, minArea float64) [][]image.Point {
	gocv.Threshold(*mask, mask, foregroundThreshold, 255, gocv.ThresholdBinary)

	// Remove noise.
	gocv.Erode(*mask, mask, knl)
	gocv.Dilate(*mask, mask, knl)

	// Fill small holes.
	gocv.Dilate(*mask, mask, knl)
	gocv.Erode(*mask, mask, knl)

	all := gocv.FindContours(*mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer all.Close()

	var found [][]image.Point
	for i := 0; i < all.Size(); i++ {
		if gocv.ContourArea(all.At(i)) > minArea {
			found = append(found, all.At(i).ToPoints())
		}
	}
	return found
}
