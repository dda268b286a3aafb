// Package chart projects the panel's selection and histories into the
// ordered series collection the chart sinks consume.
package chart

import (
	plot "github.com/chriskim06/drawille-go"

	"motionpanel/store"
)

// Series is one plotted stream: a label, a palette colour, and the samples
// oldest-first.
type Series struct {
	Label string
	Color plot.Color
	Hex   string
	Data  []float64
}

// palette holds the terminal colours and their hex twins for the HTML
// export. Series colours are assigned by selection index, wrapping.
var palette = []struct {
	color plot.Color
	hex   string
}{
	{plot.DodgerBlue, "#1E90FF"},
	{plot.OrangeRed, "#FF4500"},
	{plot.SeaGreen, "#2E8B57"},
	{plot.Gold, "#FFD700"},
	{plot.Orchid, "#DA70D6"},
	{plot.Turquoise, "#40E0D0"},
	{plot.Tomato, "#FF6347"},
	{plot.CornflowerBlue, "#6495ED"},
}

// PaletteSize is the number of distinct series colours before wrapping.
const PaletteSize = 8

// HexFor returns the hex twin of the palette colour assigned to series
// position i.
func HexFor(i int) string {
	if i < 0 {
		i = 0
	}
	return palette[i%len(palette)].hex
}

// Reconcile rebuilds the series list from the panel. The result is a
// wholesale replacement: series order is selection order and the colour for
// a given position never depends on prior calls.
func Reconcile(p *store.Panel) []Series {
	names := p.Selection()
	out := make([]Series, len(names))
	for i, name := range names {
		c := palette[i%len(palette)]
		out[i] = Series{
			Label: name,
			Color: c.color,
			Hex:   c.hex,
			Data:  p.History(name),
		}
	}
	return out
}

// Fill pushes the series into the drawille canvas. Rows keep selection
// order so the canvas line colours line up with the series colours.
func Fill(canvas *plot.Canvas, series []Series) {
	data := make([][]float64, len(series))
	for i, s := range series {
		data[i] = s.Data
		if i < len(canvas.LineColors) {
			canvas.LineColors[i] = s.Color
		}
	}
	canvas.Fill(data)
}
