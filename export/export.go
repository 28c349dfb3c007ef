/*
DESCRIPTION
  export.go provides the Exporter, which writes analysis results to CSV and
  JSON files in a results directory.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package export writes the results of a fish behaviour analysis to CSV and
// JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/fishflow/behavior"
)

// Names of exported files.
const (
	SpeedsFile     = "average_speeds.csv"
	FramesFile     = "frame_statistics.csv"
	DirectionsFile = "direction_histogram.json"
	ChangesFile    = "sudden_changes.json"
	MetadataFile   = "analysis_metadata.json"
	SummaryFile    = "summary_statistics.json"
)

// Keys of the map returned by All.
const (
	KeySpeeds     = "speeds_csv"
	KeyFrames     = "frames_csv"
	KeyDirections = "directions_json"
	KeyChanges    = "changes_json"
	KeyMetadata   = "metadata_json"
	KeySummary    = "summary_json"
)

// Exporter writes results files into a directory.
type Exporter struct {
	dir string
	log logging.Logger
}

// New returns an Exporter writing to dir, creating it if needed.
func New(dir string, log logging.Logger) (*Exporter, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, errors.Wrap(err, "could not create results dir")
	}
	return &Exporter{dir: dir, log: log}, nil
}

// Dir returns the directory files are written to.
func (e *Exporter) Dir() string { return e.dir }

// Speeds writes the average speed of each frame pair with a 1 based frame
// index.
func (e *Exporter) Speeds(speeds []float64) (string, error) {
	rows := [][]string{{"frame_idx", "average_speed"}}
	for i, s := range speeds {
		rows = append(rows, []string{strconv.Itoa(i + 1), formatFloat(s)})
	}
	return e.writeCSV(SpeedsFile, rows)
}

// Frames writes the per frame pair statistics.
func (e *Exporter) Frames(r *behavior.Results) (string, error) {
	rows := [][]string{{"frame_idx", "average_speed", "max_speed", "motion"}}
	for _, f := range r.Frames {
		rows = append(rows, []string{
			strconv.Itoa(f.Index),
			formatFloat(f.MeanSpeed),
			formatFloat(f.MaxSpeed),
			strconv.FormatBool(f.Motion),
		})
	}
	return e.writeCSV(FramesFile, rows)
}

// Directions writes the direction histogram.
func (e *Exporter) Directions(h behavior.Histogram) (string, error) {
	return e.writeJSON(DirectionsFile, h)
}

// SuddenChanges writes the sudden change events. No events gives an empty
// array.
func (e *Exporter) SuddenChanges(events []behavior.Event) (string, error) {
	if events == nil {
		events = []behavior.Event{}
	}
	return e.writeJSON(ChangesFile, events)
}

// Metadata writes the run metadata.
func (e *Exporter) Metadata(m behavior.Metadata) (string, error) {
	return e.writeJSON(MetadataFile, m)
}

// Summary writes the summary statistics.
func (e *Exporter) Summary(s behavior.Summary) (string, error) {
	return e.writeJSON(SummaryFile, s)
}

// All writes every results file and returns their paths keyed by the Key
// consts.
func (e *Exporter) All(r *behavior.Results) (map[string]string, error) {
	files := make(map[string]string)
	for _, f := range []struct {
		key   string
		write func() (string, error)
	}{
		{KeySpeeds, func() (string, error) { return e.Speeds(r.Speeds) }},
		{KeyFrames, func() (string, error) { return e.Frames(r) }},
		{KeyDirections, func() (string, error) { return e.Directions(r.Histogram) }},
		{KeyChanges, func() (string, error) { return e.SuddenChanges(r.Events) }},
		{KeyMetadata, func() (string, error) { return e.Metadata(r.Metadata) }},
		{KeySummary, func() (string, error) { return e.Summary(r.Summary) }},
	} {
		path, err := f.write()
		if err != nil {
			return files, err
		}
		files[f.key] = path
	}
	e.log.Info("exported results", "dir", e.dir, "files", len(files))
	return files, nil
}

func (e *Exporter) writeCSV(name string, rows [][]string) (string, error) {
	path := filepath.Join(e.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "could not create %s", name)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	err = w.WriteAll(rows)
	if err != nil {
		return "", errors.Wrapf(err, "could not write %s", name)
	}
	err = f.Close()
	if err != nil {
		return "", errors.Wrapf(err, "could not close %s", name)
	}
	e.log.Debug("wrote csv", "path", path, "rows", len(rows)-1)
	return path, nil
}

func (e *Exporter) writeJSON(name string, v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.Wrapf(err, "could not encode %s", name)
	}
	path := filepath.Join(e.dir, name)
	err = os.WriteFile(path, append(b, '\n'), 0644)
	if err != nil {
		return "", errors.Wrapf(err, "could not write %s", name)
	}
	e.log.Debug("wrote json", "path", path)
	return path, nil
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
