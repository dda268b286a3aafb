package chart

import (
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteSnapshot renders the current series as a standalone HTML line chart.
// The exported chart mirrors the terminal plot: same labels, same order,
// hex twins of the terminal palette.
func WriteSnapshot(w io.Writer, series []Series, labels []time.Time) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "motionpanel snapshot",
			Theme:     "dark",
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Motion stream values",
			Subtitle: "exported " + time.Now().UTC().Format(time.RFC3339),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	xs := make([]string, len(labels))
	for i, t := range labels {
		xs[i] = t.Format("15:04:05.000")
	}
	line.SetXAxis(xs)

	for _, s := range series {
		items := make([]opts.LineData, len(s.Data))
		for i, v := range s.Data {
			items[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Label, items,
			charts.WithLineStyleOpts(opts.LineStyle{Color: s.Hex}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Hex}),
		)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	return line.Render(w)
}
