/*
DESCRIPTION
  visual_test.go provides testing for rendering figures and the HTML report.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package visual

import (
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/fishflow/analyzer/config"
	"github.com/ausocean/fishflow/behavior"
	"github.com/ausocean/fishflow/flow"
)

func newVisualizer(t *testing.T) *Visualizer {
	c := config.Config{
		Logger:     (*logging.TestLogger)(t),
		ResultsDir: filepath.Join(t.TempDir(), "results"),
		PlotWidth:  4,
		PlotHeight: 3,
		PlotDPI:    50,
	}
	c.Validate()
	return New(c)
}

func testResults(t *testing.T) *behavior.Results {
	h := &flow.Heatmap{}
	err := h.Add(4, 2, []float64{0, 1, 2, 3, 4, 5, 6, 7})
	if err != nil {
		t.Fatalf("could not add to heatmap: %v", err)
	}
	s := &flow.Series{
		Frames: []flow.FrameStats{
			{Index: 1, MeanSpeed: 0.5, Angles: []float64{0, 1, 2}},
			{Index: 2, MeanSpeed: 7, Angles: []float64{3, 4}},
			{Index: 3, MeanSpeed: 0.8, Angles: []float64{5}},
			{Index: 4, MeanSpeed: 1},
		},
		Heatmap: h,
	}
	r, err := behavior.Analyse(s, behavior.Params{SuddenChangeThreshold: 5, HistogramBins: 36})
	if err != nil {
		t.Fatalf("could not analyse series: %v", err)
	}
	r.Metadata.VideoPath = "fish.mp4"
	return r
}

// checkPNG checks that path is a PNG of the given pixel size.
func checkPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("could not open %s: %v", path, err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("could not decode %s: %v", path, err)
	}
	if cfg.Width != w || cfg.Height != h {
		t.Errorf("unexpected size for %s, got: %dx%d, want: %dx%d", filepath.Base(path), cfg.Width, cfg.Height, w, h)
	}
}

func TestAll(t *testing.T) {
	v := newVisualizer(t)
	files, err := v.All(testResults(t))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	for _, k := range []string{KeySpeedTimeline, KeyDirectionHistogram, KeyHeatmap, KeySuddenChanges, KeyReport} {
		if _, ok := files[k]; !ok {
			t.Errorf("missing %s in %v", k, files)
		}
	}

	checkPNG(t, files[KeySpeedTimeline], 200, 150)
	checkPNG(t, files[KeySuddenChanges], 200, 150)
	checkPNG(t, files[KeyDirectionHistogram], 200, 150)
	checkPNG(t, files[KeyHeatmap], 200, 100)

	b, err := os.ReadFile(files[KeyReport])
	if err != nil {
		t.Fatalf("could not read report: %v", err)
	}
	for _, want := range []string{"Fish Average Swim Speed Over Time", "Preferred Swim Directions", "fish.mp4"} {
		if !strings.Contains(string(b), want) {
			t.Errorf("report does not contain %q", want)
		}
	}
}

func TestAllSkipsEmptyFigures(t *testing.T) {
	v := newVisualizer(t)
	r := testResults(t)
	r.Heatmap = nil
	r.Histogram = behavior.Histogram{}

	files, err := v.All(r)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if _, ok := files[KeyHeatmap]; ok {
		t.Error("did not expect heatmap without data")
	}
	if _, ok := files[KeyDirectionHistogram]; ok {
		t.Error("did not expect histogram without data")
	}
	if _, ok := files[KeySpeedTimeline]; !ok {
		t.Error("expected speed timeline")
	}
}

func TestNoData(t *testing.T) {
	v := newVisualizer(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		err  error
	}{
		{"speed timeline", v.SpeedTimeline(nil, filepath.Join(dir, "a.png"))},
		{"sudden changes", v.SuddenChanges(nil, nil, filepath.Join(dir, "b.png"))},
		{"direction histogram", v.DirectionHistogram(behavior.Histogram{}, filepath.Join(dir, "c.png"))},
		{"heatmap", v.Heatmap(&flow.Heatmap{}, filepath.Join(dir, "d.png"))},
		{"report", v.Report(&behavior.Results{}, filepath.Join(dir, "e.html"))},
	}
	for _, test := range tests {
		if !errors.Is(test.err, ErrNoData) {
			t.Errorf("expected ErrNoData for %s, got: %v", test.name, test.err)
		}
	}
}

func TestSuddenChangesOutOfRange(t *testing.T) {
	v := newVisualizer(t)
	path := filepath.Join(t.TempDir(), "changes.png")
	events := []behavior.Event{{Frame: 1}, {Frame: 10}}
	err := v.SuddenChanges([]float64{1, 8, 1}, events, path)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	checkPNG(t, path, 200, 150)
}
