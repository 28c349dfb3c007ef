/*
DESCRIPTION
  frames.go provides the Store, which manages a directory of frames extracted
  from a video, and the Extractor, which fills it.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package frames provides extraction of sampled frames from a video file into
// a directory of numbered PNG images, and access to those images.
package frames

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ausocean/fishflow/analyzer/config"
	"github.com/ausocean/utils/logging"
)

// Frame file naming.
const (
	framePrefix = "frame_"
	frameExt    = ".png"
)

var (
	// ErrVideoNotFound is returned when the input video does not exist.
	ErrVideoNotFound = errors.New("video file not found")

	// ErrNoOpenCV is returned by operations that need OpenCV when the
	// binary was built without the withcv tag.
	ErrNoOpenCV = errors.New("built without OpenCV support, rebuild with -tags withcv")
)

// VideoInfo describes the properties of a video file.
type VideoInfo struct {
	Path       string  `json:"path"`
	FPS        float64 `json:"fps"`
	FrameCount int     `json:"frame_count"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// Store is a directory of extracted frames named frame_00000.png,
// frame_00001.png and so on.
type Store struct {
	Dir string
}

// NewStore returns a new Store for the given directory. The directory is not
// created until frames are extracted into it.
func NewStore(dir string) *Store { return &Store{Dir: dir} }

// Path returns the path of the i'th frame.
func (s *Store) Path(i int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s%05d%s", framePrefix, i, frameExt))
}

// List returns the paths of all PNG images in the store in lexical order,
// which is frame order for files written by the Extractor. A missing
// directory is not an error and gives no frames.
func (s *Store) List() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.Dir, "*"+frameExt))
	if err != nil {
		return nil, fmt.Errorf("could not list frames: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Count returns the number of frames in the store.
func (s *Store) Count() (int, error) {
	paths, err := s.List()
	return len(paths), err
}

// Exists returns true if the store contains at least one frame.
func (s *Store) Exists() bool {
	n, err := s.Count()
	return err == nil && n > 0
}

// Clear removes all frames from the store, leaving the directory in place.
func (s *Store) Clear() error {
	paths, err := s.List()
	if err != nil {
		return err
	}
	for _, p := range paths {
		err = os.Remove(p)
		if err != nil {
			return fmt.Errorf("could not remove frame: %w", err)
		}
	}
	return nil
}

// Extractor reads a video file and writes every n'th frame into a Store.
type Extractor struct {
	path  string
	skip  int
	store *Store
	log   logging.Logger
}

// NewExtractor returns a new Extractor for the video at path. FrameSkip is
// taken from the config, which is expected to have been validated. An error
// wrapping ErrVideoNotFound is returned if the video does not exist.
func NewExtractor(path string, c config.Config, s *Store) (*Extractor, error) {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("could not stat video: %w", err)
	}

	skip := int(c.FrameSkip)
	if skip <= 0 {
		skip = 1
	}
	return &Extractor{path: path, skip: skip, store: s, log: c.Logger}, nil
}

// Path returns the path of the video being extracted.
func (e *Extractor) Path() string { return e.path }

// Store returns the store frames are extracted into.
func (e *Extractor) Store() *Store { return e.store }

// Extract extracts frames from the video into the store and returns the
// number of frames available. If frames already exist and force is false the
// video is not read and the existing count is returned. When forced, any
// existing frames are removed first so that stale frames from a previous run
// can not mix with the new ones.
func (e *Extractor) Extract(ctx context.Context, force bool) (int, error) {
	if !force && e.store.Exists() {
		n, err := e.store.Count()
		if err != nil {
			return 0, err
		}
		e.log.Info("frames already exist, skipping extraction", "dir", e.store.Dir, "frames", n)
		return n, nil
	}

	err := os.MkdirAll(e.store.Dir, 0755)
	if err != nil {
		return 0, fmt.Errorf("could not create frames dir: %w", err)
	}
	err = e.store.Clear()
	if err != nil {
		return 0, err
	}

	n, err := e.extract(ctx)
	if err != nil {
		return n, err
	}
	e.log.Info("extracted frames", "dir", e.store.Dir, "frames", n)
	return n, nil
}
