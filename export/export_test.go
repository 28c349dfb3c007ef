/*
DESCRIPTION
  export_test.go provides testing for writing results files.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ausocean/fishflow/behavior"
	"github.com/ausocean/fishflow/flow"
)

func testResults() *behavior.Results {
	s := &flow.Series{
		Frames: []flow.FrameStats{
			{Index: 1, MeanSpeed: 0.5, MaxSpeed: 2, Angles: []float64{0, 1}},
			{Index: 2, MeanSpeed: 7.25, MaxSpeed: 12, Angles: []float64{2}, Motion: true},
			{Index: 3, MeanSpeed: 0.75, MaxSpeed: 3},
		},
	}
	r, err := behavior.Analyse(s, behavior.Params{SuddenChangeThreshold: 5, HistogramBins: 4})
	if err != nil {
		panic(err)
	}
	r.Metadata.RunID = "run-1"
	r.Metadata.VideoPath = "fish.mp4"
	r.Metadata.FrameSkip = 2
	r.Metadata.StartedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return r
}

func newExporter(t *testing.T) *Exporter {
	e, err := New(filepath.Join(t.TempDir(), "results"), (*logging.TestLogger)(t))
	require.NoError(t, err)
	return e
}

func TestSpeeds(t *testing.T) {
	e := newExporter(t)
	path, err := e.Speeds([]float64{0.5, 7.25, 0.75})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(e.Dir(), SpeedsFile), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "frame_idx,average_speed\n1,0.5\n2,7.25\n3,0.75\n", string(b))
}

func TestFrames(t *testing.T) {
	e := newExporter(t)
	path, err := e.Frames(testResults())
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "frame_idx,average_speed,max_speed,motion\n" +
		"1,0.5,2,false\n" +
		"2,7.25,12,true\n" +
		"3,0.75,3,false\n"
	require.Equal(t, want, string(b))
}

func TestSuddenChangesEmpty(t *testing.T) {
	e := newExporter(t)
	path, err := e.SuddenChanges(nil)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "[]\n", string(b))
}

func TestAll(t *testing.T) {
	e := newExporter(t)
	r := testResults()

	files, err := e.All(r)
	require.NoError(t, err)
	require.Len(t, files, 6)
	for _, k := range []string{KeySpeeds, KeyFrames, KeyDirections, KeyChanges, KeyMetadata, KeySummary} {
		require.FileExists(t, files[k])
	}

	var changes []map[string]interface{}
	readJSON(t, files[KeyChanges], &changes)
	require.Len(t, changes, 2)
	require.Equal(t, float64(2), changes[0]["frame"])
	require.Equal(t, float64(3), changes[1]["frame"])
	require.Equal(t, behavior.SuddenChangeDescription, changes[0]["description"])

	var hist map[string]interface{}
	readJSON(t, files[KeyDirections], &hist)
	require.Len(t, hist["angle_bins"], 5)
	require.Len(t, hist["counts"], 4)
	require.Equal(t, float64(3), hist["total_samples"])

	var meta map[string]interface{}
	readJSON(t, files[KeyMetadata], &meta)
	require.Equal(t, "fish.mp4", meta["video_path"])
	require.Equal(t, float64(2), meta["frame_skip"])
	require.Equal(t, float64(3), meta["frames_analyzed"])
	require.Equal(t, float64(2), meta["sudden_changes_count"])
	require.Equal(t, "run-1", meta["run_id"])

	var summary map[string]map[string]interface{}
	readJSON(t, files[KeySummary], &summary)
	require.InDelta(t, 8.5/3, summary["speed_statistics"]["mean"], 1e-9)
	require.Equal(t, 0.75, summary["speed_statistics"]["median"])
	require.Equal(t, float64(3), summary["direction_statistics"]["total_samples"])
	require.Equal(t, float64(2), summary["behavior_events"]["sudden_changes_count"])
	require.InDelta(t, 2.0/3, summary["behavior_events"]["sudden_changes_rate"], 1e-9)
}

func TestNewCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	_, err := New(dir, (*logging.TestLogger)(t))
	require.NoError(t, err)
	require.DirExists(t, dir)
}

func readJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}
