/*
DESCRIPTION
  fishflow is a command line tool that analyses fish swimming behaviour in
  video using dense optical flow. It extracts frames, computes flow between
  consecutive frames, detects sudden changes in swim speed, and writes
  figures and CSV/JSON results.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Current software version.
const version = "v0.3.0"

// Logging configuration.
const (
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logSuppress  = true
)

// Misc constants.
const (
	profilePath = "fishflow.prof"
	pkg         = "fishflow: "
)

// This is set to true if the 'profile' build tag is provided on build.
var canProfile = false

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
