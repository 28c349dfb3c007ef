/*
DESCRIPTION
  filter.go provides the package documentation and the names of the
  motion filters.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package filter provides motion detection algorithms that flag extracted
// frames containing foreground motion. A flagged frame is one in which a fish
// is likely to be moving, so the flags can be used to separate active from
// idle periods of a recording.
package filter

import (
	"fmt"

	"github.com/ausocean/fishflow/analyzer/config"
)

// Name returns a human readable name for a motion filter enum.
func Name(f uint8) string {
	switch f {
	case config.FilterNoOp:
		return "NoOp"
	case config.FilterDiff:
		return "Diff"
	case config.FilterMOG:
		return "MOG"
	case config.FilterKNN:
		return "KNN"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}
