package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pairmass/internal/hist"
)

type PlotOptions struct {
	Height int
	Width  int
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Height: 10, Width: 80}
}

// PlotHistogram draws the bin contents of h with the range and entries in
// the caption.
func PlotHistogram(h *hist.Histogram, opts PlotOptions) string {
	data := h.Counts()
	if len(data) == 1 {
		// asciigraph needs two points to draw a line
		data = append(data, data[0])
	}

	caption := fmt.Sprintf("%s [%.3g, %.3g) entries %d", h.Title(), h.Low(), h.High(), h.Entries())
	return asciigraph.Plot(data,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption),
	)
}

// PlotSeries overlays several histograms with the same binning.
func PlotSeries(caption string, opts PlotOptions, hs ...*hist.Histogram) string {
	series := make([][]float64, len(hs))
	for i, h := range hs {
		series[i] = h.Counts()
	}
	colors := []asciigraph.AnsiColor{asciigraph.Green, asciigraph.Red, asciigraph.Cyan, asciigraph.Yellow}
	return asciigraph.PlotMany(series,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.SeriesColors(colors[:min(len(hs), len(colors))]...),
		asciigraph.Caption(caption),
	)
}
