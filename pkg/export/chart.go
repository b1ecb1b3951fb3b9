package export

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartRenderer draws the recap of a report as a standalone HTML bar chart.
type ChartRenderer struct{}

// NewChartRenderer constructs a chart renderer.
func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{}
}

// Render returns an HTML page embedding the chart.
func (r *ChartRenderer) Render(report Report) ([]byte, error) {
	labels := make([]string, 0, len(report.Recap))
	values := make([]opts.BarData, 0, len(report.Recap))
	for _, recap := range report.Recap {
		labels = append(labels, recap.Label)
		values = append(values, opts.BarData{Name: recap.Label, Value: recap.Count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: report.Title, Width: "900px", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: report.Title, Subtitle: report.Period}),
	)
	bar.SetXAxis(labels).AddSeries("Jumlah Arsip", values)

	buf := &bytes.Buffer{}
	if err := bar.Render(buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
