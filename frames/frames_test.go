/*
DESCRIPTION
  frames_test.go provides testing for the frame Store and for the parts of
  the Extractor that do not need OpenCV.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frames

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ausocean/fishflow/analyzer/config"
	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, path string) {
	t.Helper()
	err := os.WriteFile(path, nil, 0644)
	if err != nil {
		t.Fatalf("could not create %s: %v", path, err)
	}
}

func TestStorePath(t *testing.T) {
	s := NewStore("frames")
	tests := []struct {
		i    int
		want string
	}{
		{0, filepath.Join("frames", "frame_00000.png")},
		{42, filepath.Join("frames", "frame_00042.png")},
		{123456, filepath.Join("frames", "frame_123456.png")},
	}
	for _, test := range tests {
		got := s.Path(test.i)
		if got != test.want {
			t.Errorf("unexpected path for %d, got: %s, want: %s", test.i, got, test.want)
		}
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	for _, i := range []int{2, 0, 1} {
		touch(t, s.Path(i))
	}
	touch(t, filepath.Join(dir, "notes.txt"))

	got, err := s.List()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	want := []string{s.Path(0), s.Path(1), s.Path(2)}
	if !cmp.Equal(got, want) {
		t.Errorf("unexpected frames\nwant: %v\ngot: %v", want, got)
	}
}

func TestStoreMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing"))
	if s.Exists() {
		t.Error("store with missing dir should not exist")
	}
	n, err := s.Count()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if n != 0 {
		t.Errorf("unexpected count, got: %d, want: 0", n)
	}
}

func TestStoreClear(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	for i := 0; i < 3; i++ {
		touch(t, s.Path(i))
	}
	touch(t, filepath.Join(dir, "keep.txt"))

	err := s.Clear()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if s.Exists() {
		t.Error("frames remain after clear")
	}
	_, err = os.Stat(filepath.Join(dir, "keep.txt"))
	if err != nil {
		t.Errorf("non-frame file removed: %v", err)
	}
}

func TestNewExtractorVideoNotFound(t *testing.T) {
	c := config.Config{Logger: (*logging.TestLogger)(t)}
	c.Validate()

	_, err := NewExtractor(filepath.Join(t.TempDir(), "nonexistent_video.mp4"), c, NewStore(t.TempDir()))
	if !errors.Is(err, ErrVideoNotFound) {
		t.Errorf("unexpected error, got: %v, want: %v", err, ErrVideoNotFound)
	}
}

func TestExtractReusesExistingFrames(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "test_video.mp4")
	touch(t, video)

	s := NewStore(filepath.Join(dir, "frames"))
	err := os.MkdirAll(s.Dir, 0755)
	if err != nil {
		t.Fatalf("could not create frames dir: %v", err)
	}
	for i := 0; i < 3; i++ {
		touch(t, s.Path(i))
	}

	c := config.Config{Logger: (*logging.TestLogger)(t), FrameSkip: 2}
	c.Validate()

	e, err := NewExtractor(video, c, s)
	if err != nil {
		t.Fatalf("could not create extractor: %v", err)
	}
	if e.skip != 2 {
		t.Errorf("unexpected skip, got: %d, want: 2", e.skip)
	}

	// The video is not a real video, so this only passes if it is never opened.
	n, err := e.Extract(context.Background(), false)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if n != 3 {
		t.Errorf("unexpected frame count, got: %d, want: 3", n)
	}
}
