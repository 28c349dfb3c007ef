/*
DESCRIPTION
  commands.go defines the fishflow command tree: analyze (the default),
  watch, history and version.

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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/spf13/cobra"

	"github.com/ausocean/fishflow/analyzer"
	"github.com/ausocean/fishflow/analyzer/config"
	"github.com/ausocean/fishflow/frames"
	"github.com/ausocean/fishflow/store"
	"github.com/ausocean/fishflow/visual"
	"github.com/ausocean/fishflow/watch"
)

// runFlags are the analyze flags that control which stages produce output.
type runFlags struct {
	forceReextract bool
	visualizeFlow  bool
	noSaveResults  bool
	noShowPlots    bool
}

func (f *runFlags) add(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.BoolVar(&f.forceReextract, "force-reextract", false, "Force re-extraction of frames")
	fl.BoolVar(&f.visualizeFlow, "visualize-flow", false, "Show optical flow visualization during processing")
	fl.BoolVar(&f.noSaveResults, "no-save-results", false, "Don't save analysis results")
	fl.BoolVar(&f.noShowPlots, "no-show-plots", false, "Don't list generated plots")
}

func (f *runFlags) options() analyzer.RunOptions {
	return analyzer.RunOptions{
		ForceReextract: f.forceReextract,
		Preview:        f.visualizeFlow,
		SavePlots:      !f.noSaveResults || !f.noShowPlots,
		SaveResults:    !f.noSaveResults,
	}
}

func newRootCmd() *cobra.Command {
	var rf runFlags
	root := &cobra.Command{
		Use:   "fishflow VIDEO",
		Short: "Analyze fish behavior using optical flow",
		Long: `fishflow extracts frames from a video of fish, computes dense optical flow
between consecutive frames, and reports swim speed, direction and sudden
changes in movement.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], rf.options(), !rf.noShowPlots)
		},
	}
	addConfigFlags(root)
	rf.add(root)

	root.AddCommand(newAnalyzeCmd(), newWatchCmd(), newHistoryCmd(), newVersionCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	var rf runFlags
	cmd := &cobra.Command{
		Use:   "analyze VIDEO",
		Short: "Run a full analysis of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], rf.options(), !rf.noShowPlots)
		},
	}
	rf.add(cmd)
	return cmd
}

// runAnalyze runs a full analysis of the video at path and logs a summary.
// If showPlots is true the paths of any figures written are listed.
func runAnalyze(cmd *cobra.Command, path string, opts analyzer.RunOptions, showPlots bool) error {
	c, cl, err := setup(cmd, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer cl.Close()
	log := c.Logger

	_, err = os.Stat(path)
	if err != nil {
		log.Error("video file not found", "path", path)
		return fmt.Errorf("%w: %s", frames.ErrVideoNotFound, path)
	}

	ctx := cmd.Context()
	a, db, err := newAnalyzer(ctx, path, c)
	if err != nil {
		log.Error("could not create analyzer", "error", err.Error())
		return err
	}
	if db != nil {
		defer db.Close()
	}

	r, err := a.RunFullAnalysis(ctx, opts)
	if err != nil {
		log.Error("analysis failed", "error", err.Error())
		return err
	}

	log.Info("analysis summary",
		"framesAnalyzed", r.Metadata.FramesAnalyzed,
		"suddenChanges", len(r.Events),
		"averageSpeed", fmt.Sprintf("%.2f", r.Summary.Speed.Mean),
	)
	if showPlots && opts.SavePlots {
		listPlots(cmd.OutOrStdout(), c.ResultsDir)
	}
	log.Info("analysis completed successfully")
	return nil
}

// newAnalyzer returns an Analyzer for path, recording runs in the database at
// c.DBPath if set. The returned DB, if not nil, must be closed by the caller.
func newAnalyzer(ctx context.Context, path string, c config.Config) (*analyzer.Analyzer, *store.DB, error) {
	if c.DBPath == "" {
		a, err := analyzer.New(path, c)
		return a, nil, err
	}

	db, err := store.Open(ctx, c.DBPath)
	if err != nil {
		return nil, nil, err
	}
	a, err := analyzer.New(path, c, analyzer.WithRecorder(db))
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return a, db, nil
}

// listPlots writes the paths of the figures present in dir to w.
func listPlots(w io.Writer, dir string) {
	for _, name := range []string{
		visual.SpeedTimelineFile,
		visual.DirectionHistogramFile,
		visual.HeatmapFile,
		visual.SuddenChangesFile,
		visual.ReportFile,
	} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			fmt.Fprintln(w, p)
		}
	}
}

func newWatchCmd() *cobra.Command {
	var (
		exts   []string
		settle time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Analyze videos as they arrive in a directory",
		Long: `watch analyzes each new video written to DIR once it has stopped changing.
Frames and results for each video go into subdirectories named after it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cl, err := setup(cmd, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer cl.Close()

			var rec analyzer.Recorder
			if c.DBPath != "" {
				db, err := store.Open(cmd.Context(), c.DBPath)
				if err != nil {
					c.Logger.Error("could not open database", "error", err.Error())
					return err
				}
				defer db.Close()
				rec = db
			}

			w := watch.New(args[0], exts, videoHandler(c, rec), c.Logger)
			w.Settle = settle
			err = w.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringSliceVar(&exts, "ext", watch.DefaultExts, "Video file extensions to analyze")
	cmd.Flags().DurationVar(&settle, "settle", watch.DefaultSettle, "Time a file must be unchanged before analysis")
	return cmd
}

// watchOptions are used for each video analyzed by watch. Frames are always
// re-extracted, as an earlier video of the same name may have left frames in
// the video's frames dir.
var watchOptions = analyzer.RunOptions{ForceReextract: true, SavePlots: true, SaveResults: true}

// videoHandler returns a watch.Handler that runs a full analysis of each
// video with output in per-video subdirectories of those in c. Failed
// analyses are logged and do not stop the watcher.
func videoHandler(c config.Config, rec analyzer.Recorder) watch.Handler {
	return func(ctx context.Context, path string) error {
		vc := videoConfig(c, path)
		var opts []func(*analyzer.Analyzer) error
		if rec != nil {
			opts = append(opts, analyzer.WithRecorder(rec))
		}

		a, err := analyzer.New(path, vc, opts...)
		if err != nil {
			c.Logger.Error("could not create analyzer", "video", path, "error", err.Error())
			return nil
		}
		r, err := a.RunFullAnalysis(ctx, watchOptions)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Logger.Error("analysis failed", "video", path, "error", err.Error())
			return nil
		}
		c.Logger.Info("video analyzed", "video", path, "summary", r.String())
		return nil
	}
}

// videoConfig returns c with its frame and result dirs moved into
// subdirectories named after the video at path.
func videoConfig(c config.Config, path string) config.Config {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	c.FramesDir = filepath.Join(c.FramesDir, name)
	c.FlowVisDir = filepath.Join(c.FlowVisDir, name)
	c.ResultsDir = filepath.Join(c.ResultsDir, name)
	return c
}

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded analysis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cl, err := setup(cmd, io.Discard)
			if err != nil {
				return err
			}
			defer cl.Close()
			return printHistory(cmd.Context(), cmd.OutOrStdout(), c.DBPath, limit, c.Logger)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}

// printHistory writes a table of the most recent runs recorded in the
// database at path.
func printHistory(ctx context.Context, w io.Writer, path string, limit int, log logging.Logger) error {
	if path == "" {
		return errors.New("no database given, use --db or set DBPath")
	}
	db, err := store.Open(ctx, path)
	if err != nil {
		log.Error("could not open database", "error", err.Error())
		return err
	}
	defer db.Close()

	runs, err := db.Runs(ctx, limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tVIDEO\tFRAMES\tCHANGES\tMEAN SPEED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.2f\n",
			r.ID, r.StartedAt.Format(time.RFC3339), r.VideoPath, r.FramesAnalyzed, r.SuddenChanges, r.MeanSpeed)
	}
	return tw.Flush()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "fishflow "+version)
		},
	}
}
