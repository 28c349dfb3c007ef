/*
DESCRIPTION
  histogram.go provides the histogram of swim directions.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package behavior

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Histogram counts directions, in degrees, in equal bins over [0, 360].
// Bin i covers [Edges[i], Edges[i+1]); the last bin also includes 360.
type Histogram struct {
	Edges  []float64 `json:"angle_bins"`
	Counts []int     `json:"counts"`
	Total  int       `json:"total_samples"`
}

// DirectionHistogram bins angles, given in radians, into bins equal bins of
// degrees. Angles are wrapped into [0, 360) degrees before binning.
func DirectionHistogram(angles []float64, bins int) Histogram {
	if bins <= 0 {
		bins = 1
	}
	edges := make([]float64, bins+1)
	floats.Span(edges, 0, 360)

	deg := make([]float64, len(angles))
	for i, a := range angles {
		deg[i] = wrapDegrees(degrees(a))
	}

	// The last edge is nudged up so that stat.Histogram, which uses half
	// open bins, includes values equal to 360.
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[bins] = 360 + 1e-9

	counts := make([]float64, bins)
	if len(deg) > 0 {
		sort.Float64s(deg)
		stat.Histogram(counts, dividers, deg, nil)
	}

	h := Histogram{Edges: edges, Counts: make([]int, bins), Total: len(angles)}
	for i, c := range counts {
		h.Counts[i] = int(c)
	}
	return h
}

// Centres returns the centre of each bin.
func (h Histogram) Centres() []float64 {
	if len(h.Edges) < 2 {
		return nil
	}
	c := make([]float64, len(h.Edges)-1)
	for i := range c {
		c[i] = (h.Edges[i] + h.Edges[i+1]) / 2
	}
	return c
}
