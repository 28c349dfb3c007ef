/*
DESCRIPTION
  flow.go provides the pure Go model of dense optical flow: flow fields,
  their conversion to polar form, and the per frame statistics derived from
  them.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package flow computes dense optical flow between consecutive extracted
// frames and summarises each flow field as swim speed and direction.
//
// Flow computation requires OpenCV and the withcv build tag. The statistics
// on flow fields are pure Go and available in all builds.
package flow

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNotEnoughFrames is returned when fewer than two frames are
	// available, so no flow can be computed.
	ErrNotEnoughFrames = errors.New("not enough frames for analysis")

	// ErrEmptyField is returned when summarising a field with no pixels.
	ErrEmptyField = errors.New("empty flow field")
)

// Field is a dense flow field. Data holds the x and y displacement of each
// pixel interleaved in row major order, i.e. Data[2*(r*Cols+c)] is dx and
// Data[2*(r*Cols+c)+1] is dy for the pixel at row r and column c.
type Field struct {
	Cols, Rows int
	Data       []float32
}

// At returns the displacement of the pixel at column c and row r.
func (f *Field) At(c, r int) (dx, dy float32) {
	i := 2 * (r*f.Cols + c)
	return f.Data[i], f.Data[i+1]
}

// Polar converts a displacement to a magnitude and an angle in radians in
// [0, 2π), measured counter clockwise from the positive x axis in image
// coordinates. A zero displacement has angle 0.
func Polar(dx, dy float64) (mag, angle float64) {
	mag = math.Hypot(dx, dy)
	angle = math.Atan2(dy, dx)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	if angle >= 2*math.Pi {
		angle = 0
	}
	return mag, angle
}

// FrameStats summarises the flow between frame Index-1 and frame Index.
type FrameStats struct {
	Index     int       `json:"frame_idx"`
	MeanSpeed float64   `json:"average_speed"`
	MaxSpeed  float64   `json:"max_speed"`
	Angles    []float64 `json:"-"`
	Motion    bool      `json:"motion"`
}

// Summarise computes the mean and max flow magnitude of f, samples flow
// directions using s and, if h is not nil, accumulates the magnitudes into h
// as field idx; see Heatmap.AddAt.
func Summarise(idx int, f *Field, s *Sampler, h *Heatmap) (FrameStats, error) {
	n := f.Cols * f.Rows
	if n == 0 {
		return FrameStats{}, ErrEmptyField
	}
	if len(f.Data) != 2*n {
		return FrameStats{}, fmt.Errorf("flow field has %d values, want %d for %dx%d", len(f.Data), 2*n, f.Cols, f.Rows)
	}

	mags := make([]float64, n)
	angles := make([]float64, n)
	for i := 0; i < n; i++ {
		mags[i], angles[i] = Polar(float64(f.Data[2*i]), float64(f.Data[2*i+1]))
	}

	if h != nil {
		err := h.AddAt(idx, f.Cols, f.Rows, mags)
		if err != nil {
			return FrameStats{}, err
		}
	}

	return FrameStats{
		MeanSpeed: stat.Mean(mags, nil),
		MaxSpeed:  floats.Max(mags),
		Angles:    s.Sample(angles),
	}, nil
}

// Series holds the statistics of every frame pair in order, and the heatmap
// of accumulated flow magnitude.
type Series struct {
	Frames  []FrameStats
	Heatmap *Heatmap
}

// Speeds returns the mean speed of each frame pair.
func (s *Series) Speeds() []float64 {
	speeds := make([]float64, len(s.Frames))
	for i, f := range s.Frames {
		speeds[i] = f.MeanSpeed
	}
	return speeds
}

// Angles returns the sampled directions of all frame pairs concatenated in
// frame order.
func (s *Series) Angles() []float64 {
	var n int
	for _, f := range s.Frames {
		n += len(f.Angles)
	}
	angles := make([]float64, 0, n)
	for _, f := range s.Frames {
		angles = append(angles, f.Angles...)
	}
	return angles
}

// MotionFrames returns the number of frames flagged by the motion filter.
func (s *Series) MotionFrames() int {
	var n int
	for _, f := range s.Frames {
		if f.Motion {
			n++
		}
	}
	return n
}
