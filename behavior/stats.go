/*
DESCRIPTION
  stats.go provides summary statistics of swim speed and direction.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package behavior

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SpeedStats summarises average swim speed over all frame pairs, in
// pixels/frame.
type SpeedStats struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// DirectionStats summarises sampled flow directions.
type DirectionStats struct {
	TotalSamples int `json:"total_samples"`

	// MeanDirectionDeg is the arithmetic mean of the angles, in degrees.
	// It is kept for compatibility with earlier results; CircularMeanDeg
	// is the meaningful average of a direction.
	MeanDirectionDeg float64 `json:"mean_direction_deg"`

	// DirectionVariance is the population variance of the angles in
	// radians squared.
	DirectionVariance float64 `json:"direction_variance"`

	// CircularMeanDeg is the direction of the mean unit vector, in degrees
	// in [0, 360).
	CircularMeanDeg float64 `json:"circular_mean_deg"`
}

// EventStats summarises sudden change events.
type EventStats struct {
	SuddenChangesCount int     `json:"sudden_changes_count"`
	SuddenChangesRate  float64 `json:"sudden_changes_rate"`
}

// Summary holds the summary statistics of an analysis.
type Summary struct {
	Speed       SpeedStats     `json:"speed_statistics"`
	Direction   DirectionStats `json:"direction_statistics"`
	Events      EventStats     `json:"behavior_events"`
	Periodicity *Periodicity   `json:"periodicity,omitempty"`
}

// Summarise computes summary statistics of speeds, angles in radians, and
// events. Statistics of an empty input are zero.
func Summarise(speeds, angles []float64, events []Event) Summary {
	var s Summary
	if len(speeds) > 0 {
		mean, variance := stat.PopMeanVariance(speeds, nil)
		s.Speed = SpeedStats{
			Mean:   mean,
			Std:    math.Sqrt(variance),
			Min:    floats.Min(speeds),
			Max:    floats.Max(speeds),
			Median: Median(speeds),
		}
		s.Events.SuddenChangesRate = float64(len(events)) / float64(len(speeds))
	}
	s.Events.SuddenChangesCount = len(events)

	s.Direction.TotalSamples = len(angles)
	if len(angles) > 0 {
		mean, variance := stat.PopMeanVariance(angles, nil)
		s.Direction.MeanDirectionDeg = degrees(mean)
		s.Direction.DirectionVariance = variance
		s.Direction.CircularMeanDeg = CircularMean(angles)
	}
	return s
}

// Median returns the middle value of vals, or the mean of the two middle
// values when len(vals) is even. vals is not modified. The median of no
// values is 0.
func Median(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, vals)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// CircularMean returns the mean direction of angles in radians, as degrees in
// [0, 360). If the angles cancel out the result is 0.
func CircularMean(angles []float64) float64 {
	if len(angles) == 0 {
		return 0
	}
	r := stat.CircularMean(angles, nil)

	// The mean resultant length is near zero when the angles cancel out,
	// leaving the direction undefined.
	var x, y float64
	for _, a := range angles {
		x += math.Cos(a)
		y += math.Sin(a)
	}
	if math.Hypot(x, y) < 1e-12*float64(len(angles)) {
		return 0
	}
	return wrapDegrees(degrees(r))
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// wrapDegrees maps d into [0, 360).
func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}
