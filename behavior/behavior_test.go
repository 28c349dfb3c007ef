/*
DESCRIPTION
  behavior_test.go provides testing for sudden change detection, summary
  statistics, direction histograms and periodicity.

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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const tol = 1e-9

var approx = cmpopts.EquateApprox(0, tol)

func TestDetectSuddenChanges(t *testing.T) {
	tests := []struct {
		name      string
		speeds    []float64
		threshold float64
		want      []Event
	}{
		{
			name:      "empty",
			threshold: 5,
		},
		{
			name:      "single",
			speeds:    []float64{10},
			threshold: 5,
		},
		{
			name:      "jump",
			speeds:    []float64{1, 1.5, 8, 8.2, 1},
			threshold: 5,
			want: []Event{
				{Frame: 3, SpeedChange: 6.5, Description: SuddenChangeDescription},
				{Frame: 5, SpeedChange: 7.2, Description: SuddenChangeDescription},
			},
		},
		{
			name:      "equal to threshold is not a change",
			speeds:    []float64{0, 5, 0},
			threshold: 5,
		},
		{
			name:      "zero threshold flags any change",
			speeds:    []float64{1, 1, 1.25},
			threshold: 0,
			want:      []Event{{Frame: 3, SpeedChange: 0.25, Description: SuddenChangeDescription}},
		},
	}

	for _, test := range tests {
		got := DetectSuddenChanges(test.speeds, test.threshold)
		if !cmp.Equal(got, test.want, approx, cmpopts.EquateEmpty()) {
			t.Errorf("did not get expected events for test %q\ngot: %v\nwant: %v", test.name, got, test.want)
		}
	}
}

func TestSummarise(t *testing.T) {
	speeds := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	angles := []float64{0, math.Pi / 2}
	events := []Event{{Frame: 3}, {Frame: 7}}

	got := Summarise(speeds, angles, events)
	want := Summary{
		Speed: SpeedStats{Mean: 5, Std: 2, Min: 2, Max: 9, Median: 4.5},
		Direction: DirectionStats{
			TotalSamples:      2,
			MeanDirectionDeg:  45,
			DirectionVariance: math.Pi * math.Pi / 16,
			CircularMeanDeg:   45,
		},
		Events: EventStats{SuddenChangesCount: 2, SuddenChangesRate: 0.25},
	}
	if !cmp.Equal(got, want, approx) {
		t.Errorf("did not get expected summary\ngot: %+v\nwant: %+v", got, want)
	}
}

func TestSummariseEmpty(t *testing.T) {
	got := Summarise(nil, nil, nil)
	if !cmp.Equal(got, Summary{}) {
		t.Errorf("expected zero summary, got: %+v", got)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
	}{
		{in: nil, want: 0},
		{in: []float64{3}, want: 3},
		{in: []float64{3, 1, 2}, want: 2},
		{in: []float64{4, 1, 3, 2}, want: 2.5},
	}
	for i, test := range tests {
		in := append([]float64(nil), test.in...)
		got := Median(in)
		if got != test.want {
			t.Errorf("did not get expected median for test %d, got: %v, want: %v", i, got, test.want)
		}
		if !cmp.Equal(in, test.in) {
			t.Errorf("median modified its input for test %d", i)
		}
	}
}

func TestCircularMean(t *testing.T) {
	// Directions either side of 0 average to 0, where the arithmetic mean
	// would give 180.
	got := CircularMean([]float64{0.1, 2*math.Pi - 0.1})
	if math.Abs(got) > 1e-6 && math.Abs(got-360) > 1e-6 {
		t.Errorf("unexpected circular mean, got: %v, want: 0", got)
	}

	got = CircularMean([]float64{math.Pi, 3 * math.Pi / 2})
	if math.Abs(got-225) > 1e-6 {
		t.Errorf("unexpected circular mean, got: %v, want: 225", got)
	}

	if got := CircularMean([]float64{0, math.Pi}); got != 0 {
		t.Errorf("opposing directions should give 0, got: %v", got)
	}

	// South east of east is reported in [0, 360), not as a negative angle.
	got = CircularMean([]float64{11 * math.Pi / 6, 5 * math.Pi / 3, 2 * math.Pi})
	if math.Abs(got-330) > 1e-6 {
		t.Errorf("unexpected circular mean, got: %v, want: 330", got)
	}

	if got := CircularMean(nil); got != 0 {
		t.Errorf("no directions should give 0, got: %v", got)
	}
}

func TestDirectionHistogram(t *testing.T) {
	angles := []float64{
		0,
		math.Pi / 4,
		math.Pi / 2,
		math.Pi,
		3 * math.Pi / 2,
		2*math.Pi - 1e-6,
		-math.Pi / 2,
	}
	got := DirectionHistogram(angles, 4)
	want := Histogram{
		Edges:  []float64{0, 90, 180, 270, 360},
		Counts: []int{2, 1, 1, 3},
		Total:  7,
	}
	if !cmp.Equal(got, want, approx) {
		t.Errorf("did not get expected histogram\ngot: %+v\nwant: %+v", got, want)
	}

	if got, want := got.Centres(), []float64{45, 135, 225, 315}; !cmp.Equal(got, want, approx) {
		t.Errorf("unexpected centres\ngot: %v\nwant: %v", got, want)
	}
}

func TestDirectionHistogramDefaultBins(t *testing.T) {
	got := DirectionHistogram(nil, 36)
	if len(got.Edges) != 37 || len(got.Counts) != 36 || got.Total != 0 {
		t.Errorf("unexpected empty histogram shape: %d edges, %d counts, total %d", len(got.Edges), len(got.Counts), got.Total)
	}
	if got.Edges[1] != 10 || got.Edges[36] != 360 {
		t.Errorf("unexpected edges: %v", got.Edges)
	}
}

func TestAnalysePeriodicity(t *testing.T) {
	const (
		n    = 64
		k    = 8
		rate = 2.0
	)
	speeds := make([]float64, n)
	for i := range speeds {
		speeds[i] = 3 + math.Sin(2*math.Pi*k*float64(i)/n)
	}

	got, err := AnalysePeriodicity(speeds, rate)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if math.Abs(got.DominantFrequency-k*rate/n) > tol {
		t.Errorf("unexpected dominant frequency, got: %v, want: %v", got.DominantFrequency, k*rate/n)
	}
	if math.Abs(got.PeriodFrames-n/k) > tol {
		t.Errorf("unexpected period, got: %v, want: %v", got.PeriodFrames, n/k)
	}
	if math.Abs(got.PeriodSeconds-n/(k*rate)) > tol {
		t.Errorf("unexpected period seconds, got: %v, want: %v", got.PeriodSeconds, n/(k*rate))
	}
	if got.PowerFraction < 0.5 {
		t.Errorf("expected a dominant bin, got power fraction: %v", got.PowerFraction)
	}

	unknown, err := AnalysePeriodicity(speeds, 0)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if unknown.PeriodSeconds != 0 || math.Abs(unknown.DominantFrequency-float64(k)/n) > tol {
		t.Errorf("unexpected periodicity without sample rate: %+v", unknown)
	}
}

func TestAnalysePeriodicityErrors(t *testing.T) {
	_, err := AnalysePeriodicity([]float64{1, 2, 3}, 25)
	if err == nil {
		t.Error("expected error for short series")
	}
	_, err = AnalysePeriodicity([]float64{2, 2, 2, 2, 2}, 25)
	if err == nil {
		t.Error("expected error for flat series")
	}
}
