//go:build withcv
// +build withcv

/*
DESCRIPTION
  extract.go reads video files using GoCV, writing sampled frames to disk and
  probing video properties.

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
	"fmt"

	"gocv.io/x/gocv"
)

// extract reads every frame of the video and writes every skip'th frame to
// the store, numbered by the count of frames saved.
func (e *Extractor) extract(ctx context.Context) (int, error) {
	vc, err := gocv.VideoCaptureFile(e.path)
	if err != nil {
		return 0, fmt.Errorf("cannot open video %s: %w", e.path, err)
	}
	defer vc.Close()

	if !vc.IsOpened() {
		return 0, fmt.Errorf("cannot open video %s", e.path)
	}

	frame := gocv.NewMat()
	defer frame.Close()

	var idx, saved int
	for {
		select {
		case <-ctx.Done():
			return saved, ctx.Err()
		default:
		}

		if ok := vc.Read(&frame); !ok || frame.Empty() {
			break
		}

		if idx%e.skip == 0 {
			if ok := gocv.IMWrite(e.store.Path(saved), frame); !ok {
				return saved, fmt.Errorf("could not write frame %d", saved)
			}
			saved++
		}
		idx++
	}
	e.log.Debug("finished reading video", "read", idx, "saved", saved)
	return saved, nil
}

// Probe opens the video at path and returns its properties. No frames are
// decoded.
func Probe(path string) (VideoInfo, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return VideoInfo{Path: path}, fmt.Errorf("cannot open video %s: %w", path, err)
	}
	defer vc.Close()

	return VideoInfo{
		Path:       path,
		FPS:        vc.Get(gocv.VideoCaptureFPS),
		FrameCount: int(vc.Get(gocv.VideoCaptureFrameCount)),
		Width:      int(vc.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(vc.Get(gocv.VideoCaptureFrameHeight)),
	}, nil
}
