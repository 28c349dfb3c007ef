/*
DESCRIPTION
  heatmap.go provides accumulation of flow magnitude per pixel over all frame
  pairs.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import (
	"fmt"
	"sync"
)

// Heatmap is the per pixel sum of flow magnitude. The zero value is ready to
// use and takes its dimensions from the first field added. It is safe for
// concurrent use.
type Heatmap struct {
	mu      sync.Mutex
	cols    int
	rows    int
	sum     []float64
	frames  int               // Fields summed.
	pending map[int][]float64 // Fields received ahead of their turn.
}

// NewHeatmap returns a heatmap of the given dimensions.
func NewHeatmap(cols, rows int) *Heatmap {
	return &Heatmap{cols: cols, rows: rows, sum: make([]float64, cols*rows)}
}

// Add accumulates row major magnitudes for a cols x rows field as the next
// field in sequence.
func (h *Heatmap) Add(cols, rows int, mags []float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.addAt(h.frames+len(h.pending), cols, rows, mags)
}

// AddAt accumulates row major magnitudes for a cols x rows field as field i,
// counting from 0. Fields are summed in index order, so the sums do not
// depend on the order concurrent callers arrive in. A field that arrives
// before its predecessors is held, and must not be modified by the caller,
// until they have been added.
func (h *Heatmap) AddAt(i, cols, rows int, mags []float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.addAt(i, cols, rows, mags)
}

func (h *Heatmap) addAt(i, cols, rows int, mags []float64) error {
	if len(mags) != cols*rows {
		return fmt.Errorf("heatmap got %d magnitudes for %dx%d", len(mags), cols, rows)
	}
	if h.sum == nil {
		h.cols, h.rows = cols, rows
		h.sum = make([]float64, cols*rows)
	}
	if cols != h.cols || rows != h.rows {
		return fmt.Errorf("heatmap is %dx%d, got field of %dx%d", h.cols, h.rows, cols, rows)
	}
	if _, held := h.pending[i]; held || i < h.frames {
		return fmt.Errorf("heatmap field %d already added", i)
	}

	if i > h.frames {
		if h.pending == nil {
			h.pending = make(map[int][]float64)
		}
		h.pending[i] = mags
		return nil
	}

	h.accumulate(mags)
	for {
		next, ok := h.pending[h.frames]
		if !ok {
			return nil
		}
		delete(h.pending, h.frames)
		h.accumulate(next)
	}
}

func (h *Heatmap) accumulate(mags []float64) {
	for i, m := range mags {
		h.sum[i] += m
	}
	h.frames++
}

// Dims returns the heatmap dimensions.
func (h *Heatmap) Dims() (cols, rows int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cols, h.rows
}

// At returns the accumulated magnitude at column c and row r.
func (h *Heatmap) At(c, r int) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sum[r*h.cols+c]
}

// Frames returns the number of fields summed, excluding any held waiting
// for their predecessors.
func (h *Heatmap) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Empty returns true if nothing has been accumulated.
func (h *Heatmap) Empty() bool { return h.Frames() == 0 }

// Max returns the largest accumulated magnitude.
func (h *Heatmap) Max() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	var max float64
	for _, v := range h.sum {
		if v > max {
			max = v
		}
	}
	return max
}

// Normalised returns the heatmap scaled to 0..255 between its minimum and
// maximum. A uniform heatmap gives all zeros.
func (h *Heatmap) Normalised() []uint8 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]uint8, len(h.sum))
	if len(h.sum) == 0 {
		return out
	}
	lo, hi := h.sum[0], h.sum[0]
	for _, v := range h.sum {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if hi == lo {
		return out
	}
	for i, v := range h.sum {
		out[i] = uint8((v-lo)/(hi-lo)*255 + 0.5)
	}
	return out
}
