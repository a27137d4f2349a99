package metrics

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderChart writes an HTML page plotting the learning curve of the given
// batches: exploration rate and win rate on one chart, table size on another.
func RenderChart(w io.Writer, records []BatchRecord) error {
	batches := make([]string, 0, len(records))
	epsilon := make([]opts.LineData, 0, len(records))
	winRate := make([]opts.LineData, 0, len(records))
	size := make([]opts.LineData, 0, len(records))
	for _, r := range records {
		batches = append(batches, fmt.Sprintf("%d", r.Batch))
		epsilon = append(epsilon, opts.LineData{Value: r.Epsilon})
		winRate = append(winRate, opts.LineData{Value: r.WinRate})
		size = append(size, opts.LineData{Value: r.TableSize})
	}

	rates := charts.NewLine()
	rates.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Exploration and win rate"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
	)
	rates.SetXAxis(batches).
		AddSeries("epsilon", epsilon).
		AddSeries("win rate", winRate)

	entries := charts.NewLine()
	entries.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Value table entries"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
	)
	entries.SetXAxis(batches).AddSeries("entries", size)

	page := components.NewPage()
	page.AddCharts(rates, entries)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
