//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  Replaces video reading that uses the gocv package when building without
  OpenCV, e.g. on Circle-CI which does not have a copy of OpenCV installed.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package frames

import "context"

// extract returns ErrNoOpenCV.
func (e *Extractor) extract(ctx context.Context) (int, error) { return 0, ErrNoOpenCV }

// Probe returns ErrNoOpenCV.
func Probe(path string) (VideoInfo, error) { return VideoInfo{Path: path}, ErrNoOpenCV }
