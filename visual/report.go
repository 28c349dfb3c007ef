/*
DESCRIPTION
  report.go provides an interactive HTML report of analysis results built
  with go-echarts.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package visual

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ausocean/fishflow/behavior"
)

// Report writes a single HTML page with the speed timeline, with sudden
// changes marked, and the direction histogram.
func (v *Visualizer) Report(r *behavior.Results, path string) error {
	if r == nil || len(r.Speeds) == 0 {
		return ErrNoData
	}

	page := components.NewPage()
	page.PageTitle = "Fish Behaviour Analysis"
	page.AddCharts(speedChart(r))
	if r.Histogram.Total > 0 {
		page.AddCharts(directionChart(r.Histogram))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create report file: %w", err)
	}
	defer f.Close()

	err = page.Render(f)
	if err != nil {
		return fmt.Errorf("could not render report: %w", err)
	}
	return f.Close()
}

func speedChart(r *behavior.Results) *charts.Line {
	changed := make(map[int]bool, len(r.Events))
	for _, e := range r.Events {
		changed[e.Frame] = true
	}

	x := make([]string, len(r.Speeds))
	speeds := make([]opts.LineData, len(r.Speeds))
	changes := make([]opts.LineData, len(r.Speeds))
	for i, s := range r.Speeds {
		x[i] = strconv.Itoa(i)
		speeds[i] = opts.LineData{Value: s}
		if changed[i] {
			changes[i] = opts.LineData{Value: s, Symbol: "circle", SymbolSize: 12}
		} else {
			changes[i] = opts.LineData{Value: "-"}
		}
	}

	subtitle := fmt.Sprintf("%s, %d frames, %d sudden changes", r.Metadata.VideoPath, r.Metadata.FramesAnalyzed, len(r.Events))
	if !r.Metadata.StartedAt.IsZero() {
		subtitle += ", " + r.Metadata.StartedAt.Format(time.RFC3339)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Fish Average Swim Speed Over Time", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Average speed (pixels/frame)", NameLocation: "middle", NameGap: 40}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	line.SetXAxis(x).
		AddSeries("Average swim speed", speeds).
		AddSeries("Sudden change", changes)
	return line
}

func directionChart(h behavior.Histogram) *charts.Bar {
	x := make([]string, len(h.Counts))
	y := make([]opts.BarData, len(h.Counts))
	for i, c := range h.Counts {
		x[i] = fmt.Sprintf("%.0f-%.0f", h.Edges[i], h.Edges[i+1])
		y[i] = opts.BarData{Value: c}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Preferred Swim Directions", Subtitle: "0 = E, 90 = N, 180 = W, 270 = S"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Direction (degrees)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Frequency"}),
	)
	bar.SetXAxis(x).AddSeries("directions", y)
	return bar
}
