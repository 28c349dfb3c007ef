/*
DESCRIPTION
  watch.go provides a Watcher that runs a handler for each new video file
  that appears in a directory, once the file has stopped changing.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package watch runs an action for each video file dropped into a
// directory, e.g. recordings copied off a camera, and reports readiness to
// systemd when run as a service.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/coreos/go-systemd/daemon"
	"github.com/fsnotify/fsnotify"
)

// Default timings.
const (
	DefaultSettle = 2 * time.Second
	pollInterval  = 100 * time.Millisecond
)

// DefaultExts are the video file extensions watched when none are given.
var DefaultExts = []string{".mp4", ".avi", ".mov", ".mkv", ".h264"}

// Handler is called with the path of each settled file.
type Handler func(ctx context.Context, path string) error

// Watcher watches a directory for new files.
type Watcher struct {
	dir    string
	exts   map[string]bool
	handle Handler
	log    logging.Logger

	// Settle is how long a file must go without events before it is
	// handled. Files still being copied keep resetting it.
	Settle time.Duration

	pending map[string]time.Time
}

// New returns a Watcher calling h for files in dir with one of exts, matched
// case insensitively. If exts is empty DefaultExts are used.
func New(dir string, exts []string, h Handler, log logging.Logger) *Watcher {
	if len(exts) == 0 {
		exts = DefaultExts
	}
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		m[strings.ToLower(e)] = true
	}
	return &Watcher{
		dir:     dir,
		exts:    m,
		handle:  h,
		log:     log,
		Settle:  DefaultSettle,
		pending: make(map[string]time.Time),
	}
}

// Matches returns true if path has a watched extension.
func (w *Watcher) Matches(path string) bool {
	return w.exts[strings.ToLower(filepath.Ext(path))]
}

// Run watches until ctx is cancelled, which is not an error. Settled files
// are queued and handled one at a time by a worker, so events keep being
// read while a file is handled. Handler errors are logged and do not stop
// the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}
	defer fw.Close()

	err = fw.Add(w.dir)
	if err != nil {
		return fmt.Errorf("could not watch %s: %w", w.dir, err)
	}
	w.log.Info("watching for videos", "dir", w.dir, "settle", w.Settle.String())
	notify(w.log, daemon.SdNotifyReady)
	defer notify(w.log, daemon.SdNotifyStopping)

	work := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for path := range work {
			w.handlePath(ctx, path)
		}
	}()
	defer func() {
		close(work)
		<-done
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var queue []string
	for {
		// Sending is only enabled while something is queued.
		var send chan<- string
		var next string
		if len(queue) > 0 {
			send, next = work, queue[0]
		}

		select {
		case <-ctx.Done():
			if len(queue) > 0 {
				w.log.Warning("stopped with videos still queued", "queued", len(queue))
			}
			w.log.Info("stopped watching", "dir", w.dir)
			return nil

		case send <- next:
			queue = queue[1:]

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.event(event, time.Now())

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warning("watcher error", "error", err.Error())

		case now := <-ticker.C:
			for _, path := range w.settled(now) {
				w.log.Info("video queued", "path", path, "queued", len(queue)+1)
				queue = append(queue, path)
			}
		}
	}
}

// event records activity on a watched file.
func (w *Watcher) event(e fsnotify.Event, now time.Time) {
	if !w.Matches(e.Name) {
		return
	}
	switch {
	case e.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.pending[e.Name] = now
	case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		delete(w.pending, e.Name)
	}
}

// settled removes and returns, in lexical order, the files that have had no
// events for the settle period.
func (w *Watcher) settled(now time.Time) []string {
	var paths []string
	for path, last := range w.pending {
		if now.Sub(last) < w.Settle {
			continue
		}
		delete(w.pending, path)
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// handlePath runs the handler for path, logging any error.
func (w *Watcher) handlePath(ctx context.Context, path string) {
	w.log.Info("new video", "path", path)
	notify(w.log, "STATUS=analysing "+filepath.Base(path))
	err := w.handle(ctx, path)
	if err != nil {
		w.log.Error("could not handle video", "path", path, "error", err.Error())
	}
	notify(w.log, "STATUS=watching "+w.dir)
}

// notify sends state to systemd. Outside systemd it does nothing.
func notify(log logging.Logger, state string) {
	_, err := daemon.SdNotify(false, state)
	if err != nil {
		log.Debug("could not notify systemd", "state", state, "error", err.Error())
	}
}
