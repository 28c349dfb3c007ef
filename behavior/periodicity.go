/*
DESCRIPTION
  periodicity.go provides spectral analysis of the swim speed series to find
  the dominant rhythm of swimming, such as a tail beat or a repeated
  feeding motion.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package behavior

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/stat"
)

// MinPeriodicitySamples is the fewest speeds Periodicity will analyse.
const MinPeriodicitySamples = 4

var (
	errTooShort = errors.New("too few samples for periodicity")
	errFlat     = errors.New("speed series has no variation")
)

// Periodicity describes the dominant frequency of a speed series.
type Periodicity struct {
	// SampleRate is the number of speed samples per second, or 0 if
	// unknown, in which case frequencies are per frame pair.
	SampleRate float64 `json:"sample_rate"`

	DominantFrequency float64 `json:"dominant_frequency"` // Hz, or cycles per pair.
	PeriodFrames      float64 `json:"period_frames"`      // Period in frame pairs.
	PeriodSeconds     float64 `json:"period_seconds,omitempty"`

	// PowerFraction is the share of non-DC spectral power in the dominant
	// bin. Values near 1 mean a strongly rhythmic series.
	PowerFraction float64 `json:"power_fraction"`
}

// AnalysePeriodicity finds the dominant non-DC frequency of speeds sampled at
// sampleRate samples per second. A Hann window is applied to the mean
// removed series before the FFT.
func AnalysePeriodicity(speeds []float64, sampleRate float64) (*Periodicity, error) {
	n := len(speeds)
	if n < MinPeriodicitySamples {
		return nil, fmt.Errorf("%w: got %d, need %d", errTooShort, n, MinPeriodicitySamples)
	}

	mean := stat.Mean(speeds, nil)
	x := make([]float64, n)
	for i, s := range speeds {
		x[i] = s - mean
	}
	window.Apply(x, window.Hann)

	spectrum := fft.FFTReal(x)

	var total, peak float64
	var k int
	for i := 1; i <= n/2; i++ {
		p := cmplx.Abs(spectrum[i])
		p *= p
		total += p
		if p > peak {
			peak, k = p, i
		}
	}
	if k == 0 || total == 0 {
		return nil, errFlat
	}

	rate := sampleRate
	if rate <= 0 {
		rate = 1
	}
	p := &Periodicity{
		SampleRate:        max(sampleRate, 0),
		DominantFrequency: float64(k) * rate / float64(n),
		PeriodFrames:      float64(n) / float64(k),
		PowerFraction:     peak / total,
	}
	if sampleRate > 0 {
		p.PeriodSeconds = 1 / p.DominantFrequency
	}
	return p, nil
}
