/*
DESCRIPTION
  visual.go provides the Visualizer, which renders analysis results as PNG
  figures using gonum/plot.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package visual renders fish behaviour analysis results as figures and as
// an interactive HTML report.
package visual

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/ausocean/utils/logging"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ausocean/fishflow/analyzer/config"
	"github.com/ausocean/fishflow/behavior"
	"github.com/ausocean/fishflow/flow"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to plot")

// Names of the files written by All.
const (
	SpeedTimelineFile      = "speed_timeline.png"
	DirectionHistogramFile = "direction_histogram.png"
	HeatmapFile            = "movement_heatmap.png"
	SuddenChangesFile      = "sudden_changes.png"
	ReportFile             = "report.html"
)

// Keys of the map returned by All.
const (
	KeySpeedTimeline      = "speed_timeline"
	KeyDirectionHistogram = "direction_histogram"
	KeyHeatmap            = "movement_heatmap"
	KeySuddenChanges      = "sudden_changes"
	KeyReport             = "report"
)

var (
	speedColor     = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	histogramColor = color.RGBA{R: 128, G: 0, B: 128, A: 178}
	changeColor    = color.RGBA{R: 255, A: 255}
)

// Visualizer renders figures of a configured size and resolution.
type Visualizer struct {
	dir    string
	width  vg.Length
	height vg.Length
	dpi    int
	log    logging.Logger
}

// New returns a Visualizer writing into the results dir of c. The config is
// expected to have been validated.
func New(c config.Config) *Visualizer {
	return &Visualizer{
		dir:    c.ResultsDir,
		width:  vg.Length(c.PlotWidth) * vg.Inch,
		height: vg.Length(c.PlotHeight) * vg.Inch,
		dpi:    int(c.PlotDPI),
		log:    c.Logger,
	}
}

// All writes every figure and the HTML report into the results dir and
// returns their paths. Figures with no data are skipped with a warning.
func (v *Visualizer) All(r *behavior.Results) (map[string]string, error) {
	err := os.MkdirAll(v.dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("could not create results dir: %w", err)
	}

	files := make(map[string]string)
	for _, f := range []struct {
		key, name string
		render    func(path string) error
	}{
		{KeySpeedTimeline, SpeedTimelineFile, func(p string) error { return v.SpeedTimeline(r.Speeds, p) }},
		{KeyDirectionHistogram, DirectionHistogramFile, func(p string) error { return v.DirectionHistogram(r.Histogram, p) }},
		{KeyHeatmap, HeatmapFile, func(p string) error { return v.Heatmap(r.Heatmap, p) }},
		{KeySuddenChanges, SuddenChangesFile, func(p string) error { return v.SuddenChanges(r.Speeds, r.Events, p) }},
		{KeyReport, ReportFile, func(p string) error { return v.Report(r, p) }},
	} {
		path := filepath.Join(v.dir, f.name)
		err := f.render(path)
		if errors.Is(err, ErrNoData) {
			v.log.Warning("nothing to plot, skipping", "figure", f.key)
			continue
		}
		if err != nil {
			return files, fmt.Errorf("could not render %s: %w", f.key, err)
		}
		v.log.Info("saved figure", "figure", f.key, "path", path)
		files[f.key] = path
	}
	return files, nil
}

// SpeedTimeline plots average swim speed against frame.
func (v *Visualizer) SpeedTimeline(speeds []float64, path string) error {
	p, err := v.speedPlot(speeds, "Fish Average Swim Speed Over Time")
	if err != nil {
		return err
	}
	return v.save(p, v.width, v.height, path)
}

// SuddenChanges plots average swim speed with each sudden change marked by a
// dashed vertical line and a point. Events beyond the series are not drawn.
func (v *Visualizer) SuddenChanges(speeds []float64, events []behavior.Event, path string) error {
	p, err := v.speedPlot(speeds, "Fish Speed with Sudden Changes Highlighted")
	if err != nil {
		return err
	}

	lo, hi := speedRange(speeds)
	var pts plotter.XYs
	for _, e := range events {
		if e.Frame < 0 || e.Frame >= len(speeds) {
			continue
		}
		x := float64(e.Frame)
		l, err := plotter.NewLine(plotter.XYs{{X: x, Y: lo}, {X: x, Y: hi}})
		if err != nil {
			return fmt.Errorf("could not create change line: %w", err)
		}
		l.LineStyle.Color = changeColor
		l.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		p.Add(l)
		pts = append(pts, plotter.XY{X: x, Y: speeds[e.Frame]})
	}

	if len(pts) > 0 {
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("could not create change points: %w", err)
		}
		s.GlyphStyle.Color = changeColor
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(5)
		p.Add(s)
		p.Legend.Add("Sudden change", s)
	}
	return v.save(p, v.width, v.height, path)
}

// speedPlot returns a plot of speeds against frame with a grid and legend.
func (v *Visualizer) speedPlot(speeds []float64, title string) (*plot.Plot, error) {
	if len(speeds) == 0 {
		return nil, ErrNoData
	}

	pts := make(plotter.XYs, len(speeds))
	for i, s := range speeds {
		pts[i] = plotter.XY{X: float64(i), Y: s}
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("could not create speed line: %w", err)
	}
	l.LineStyle.Width = vg.Points(2)
	l.LineStyle.Color = speedColor

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Average speed (pixels/frame)"
	p.Add(plotter.NewGrid(), l)
	p.Legend.Add("Average swim speed", l)
	p.Legend.Top = true
	return p, nil
}

// DirectionHistogram plots the direction histogram with compass labels.
// Directions follow image coordinates, so 0 degrees is east.
func (v *Visualizer) DirectionHistogram(h behavior.Histogram, path string) error {
	if h.Total == 0 || len(h.Counts) == 0 || len(h.Edges) != len(h.Counts)+1 {
		return ErrNoData
	}

	hist := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(h.Counts)),
		Width:     h.Edges[1] - h.Edges[0],
		FillColor: histogramColor,
		LineStyle: plotter.DefaultLineStyle,
	}
	for i, c := range h.Counts {
		hist.Bins[i] = plotter.HistogramBin{Min: h.Edges[i], Max: h.Edges[i+1], Weight: float64(c)}
	}

	p := plot.New()
	p.Title.Text = "Preferred Swim Directions"
	p.X.Label.Text = "Direction (degrees)"
	p.Y.Label.Text = "Frequency"
	p.X.Min, p.X.Max = 0, 360
	p.X.Tick.Marker = plot.ConstantTicks([]plot.Tick{
		{Value: 0, Label: "E"},
		{Value: 90, Label: "N"},
		{Value: 180, Label: "W"},
		{Value: 270, Label: "S"},
		{Value: 360, Label: "E"},
	})
	p.Add(plotter.NewGrid(), hist)

	// Narrower than the speed plots, as the histogram has few bars.
	return v.save(p, v.height*4/3, v.height, path)
}

// Heatmap renders accumulated flow magnitude, normalised between its
// minimum and maximum, with a heat palette.
func (v *Visualizer) Heatmap(h *flow.Heatmap, path string) error {
	if h == nil || h.Empty() {
		return ErrNoData
	}
	cols, rows := h.Dims()
	norm := h.Normalised()

	colors := palette.Heat(256, 1).Colors()
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			img.Set(c, r, colors[norm[r*cols+c]])
		}
	}

	p := plot.New()
	p.Title.Text = "Movement Heatmap"
	p.HideAxes()
	p.Add(plotter.NewImage(img, 0, 0, float64(cols), float64(rows)))

	// Keep the aspect ratio of the frames.
	width := v.width
	height := width * vg.Length(rows) / vg.Length(cols)
	return v.save(p, width, height, path)
}

// save draws p onto a PNG canvas of the given size at the configured
// resolution and writes it to path.
func (v *Visualizer) save(p *plot.Plot, w, h vg.Length, path string) error {
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(v.dpi))
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create figure file: %w", err)
	}
	defer f.Close()

	_, err = vgimg.PngCanvas{Canvas: c}.WriteTo(f)
	if err != nil {
		return fmt.Errorf("could not write figure: %w", err)
	}
	return f.Close()
}

func speedRange(speeds []float64) (lo, hi float64) {
	lo, hi = speeds[0], speeds[0]
	for _, s := range speeds {
		lo = min(lo, s)
		hi = max(hi, s)
	}
	if lo == hi {
		hi = lo + 1
	}
	return lo, hi
}
