//go:build !withcv
// +build !withcv

/*
DESCRIPTION
  Replaces the OpenCV backed flow computation when OpenCV is not available,
  e.g. on Circle-CI which does not have a copy of OpenCV installed.

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

	"github.com/ausocean/fishflow/frames"
)

// process returns frames.ErrNoOpenCV.
func (p *Processor) process(ctx context.Context, paths []string, opts Options) (*Series, error) {
	return nil, frames.ErrNoOpenCV
}
