package main

import (
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const histogramBins = 20

// writeLatencyPlot saves a histogram of per frame latencies in milliseconds.
func writeLatencyPlot(path string, latencies []time.Duration) error {
	if len(latencies) == 0 {
		return errors.New("no latencies to plot")
	}
	values := make(plotter.Values, len(latencies))
	for i, l := range latencies {
		values[i] = float64(l) / float64(time.Millisecond)
	}

	p := plot.New()
	p.Title.Text = "frame latency"
	p.X.Label.Text = "ms"
	p.Y.Label.Text = "frames"

	hist, err := plotter.NewHist(values, histogramBins)
	if err != nil {
		return err
	}
	p.Add(hist)
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
