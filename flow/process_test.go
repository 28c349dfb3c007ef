//go:build withcv
// +build withcv

/*
DESCRIPTION
  process_test.go tests optical flow computation on synthetic frames of a
  moving square.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package flow

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
	"gocv.io/x/gocv"

	"github.com/ausocean/fishflow/analyzer/config"
	"github.com/ausocean/fishflow/frames"
)

const (
	testFrames = 6
	testWidth  = 128
	testHeight = 96
	testStep   = 4
)

// writeFrames writes frames of a bright square moving right by testStep
// pixels per frame, with one frame where it stays still.
func writeFrames(t *testing.T, s *frames.Store) {
	err := os.MkdirAll(s.Dir, 0755)
	if err != nil {
		t.Fatalf("could not create frames dir: %v", err)
	}
	x := 20
	for i := 0; i < testFrames; i++ {
		if i != 3 {
			x += testStep
		}
		m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(30, 30, 30, 0), testHeight, testWidth, gocv.MatTypeCV8UC3)
		gocv.Rectangle(&m, image.Rect(x, 30, x+24, 54), color.RGBA{220, 220, 220, 0}, -1)
		ok := gocv.IMWrite(s.Path(i), m)
		m.Close()
		if !ok {
			t.Fatalf("could not write frame %d", i)
		}
	}
}

func newTestProcessor(t *testing.T, workers uint) (*Processor, config.Config) {
	dir := t.TempDir()
	c := config.Config{
		Logger:     (*logging.TestLogger)(t),
		FramesDir:  filepath.Join(dir, "frames"),
		FlowVisDir: filepath.Join(dir, "flow_vis"),
		Workers:    workers,
	}
	c.Validate()
	s := frames.NewStore(c.FramesDir)
	writeFrames(t, s)
	return NewProcessor(c, s), c
}

func TestProcess(t *testing.T) {
	p, c := newTestProcessor(t, 3)

	s, err := p.Process(context.Background(), Options{SaveVis: true})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if len(s.Frames) != testFrames-1 {
		t.Fatalf("unexpected number of pairs, got: %d, want: %d", len(s.Frames), testFrames-1)
	}
	for i, f := range s.Frames {
		if f.Index != i+1 {
			t.Errorf("unexpected index for pair %d, got: %d, want: %d", i, f.Index, i+1)
		}
		if f.MaxSpeed < f.MeanSpeed {
			t.Errorf("max speed below mean speed for pair %d: %v < %v", i, f.MaxSpeed, f.MeanSpeed)
		}
		if len(f.Angles) == 0 || len(f.Angles) > int(c.AngleSampleSize) {
			t.Errorf("unexpected number of angles for pair %d: %d", i, len(f.Angles))
		}
		_, err := os.Stat(p.VisPath(f.Index))
		if err != nil {
			t.Errorf("missing visualisation for pair %d: %v", i, err)
		}
	}

	// Pair 3 is the frame where the square stayed still.
	if s.Frames[2].MeanSpeed >= s.Frames[0].MeanSpeed {
		t.Errorf("still pair should be slower than moving pair, got: %v >= %v", s.Frames[2].MeanSpeed, s.Frames[0].MeanSpeed)
	}

	if cols, rows := s.Heatmap.Dims(); cols != testWidth || rows != testHeight {
		t.Errorf("unexpected heatmap dims, got: %dx%d", cols, rows)
	}
	if s.Heatmap.Frames() != testFrames-1 {
		t.Errorf("unexpected heatmap frames, got: %d", s.Heatmap.Frames())
	}
}

func TestProcessDeterministic(t *testing.T) {
	p1, _ := newTestProcessor(t, 1)
	p4, _ := newTestProcessor(t, 4)

	s1, err := p1.Process(context.Background(), Options{})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	s4, err := p4.Process(context.Background(), Options{})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if !cmp.Equal(s1.Speeds(), s4.Speeds()) {
		t.Errorf("speeds depend on worker count\n1: %v\n4: %v", s1.Speeds(), s4.Speeds())
	}
	if !cmp.Equal(s1.Angles(), s4.Angles()) {
		t.Error("sampled angles depend on worker count")
	}
	if !cmp.Equal(s1.Heatmap.Normalised(), s4.Heatmap.Normalised()) || s1.Heatmap.Max() != s4.Heatmap.Max() {
		t.Error("heatmap depends on worker count")
	}
}

func TestProcessMotionFilter(t *testing.T) {
	dir := t.TempDir()
	c := config.Config{
		Logger:       (*logging.TestLogger)(t),
		FramesDir:    filepath.Join(dir, "frames"),
		MotionFilter: config.FilterDiff,
		// Low enough to flag the moving square, above zero for the still pair.
		MotionThreshold: 0.1,
	}
	c.Validate()
	s := frames.NewStore(c.FramesDir)
	writeFrames(t, s)

	series, err := NewProcessor(c, s).Process(context.Background(), Options{})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	for i, f := range series.Frames {
		want := f.Index != 3
		if f.Motion != want {
			t.Errorf("unexpected motion flag for pair %d, got: %v, want: %v", i, f.Motion, want)
		}
	}
}

func TestProcessCancelled(t *testing.T) {
	p, _ := newTestProcessor(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, Options{})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}
