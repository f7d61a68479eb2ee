package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/hybridsim/internal/dynamo"
)

const (
	defaultWidth  = 70
	defaultHeight = 12
)

// LossCurve plots a training loss history.
func LossCurve(losses []float64) string {
	if len(losses) < 2 {
		return Subtle.Render("(not enough iterations to plot)")
	}
	chart := asciigraph.Plot(losses,
		asciigraph.Height(defaultHeight),
		asciigraph.Width(defaultWidth),
		asciigraph.Caption("loss per iteration"))
	return GraphStyle.Render(chart)
}

// Component plots one state component of a trajectory over time.
func Component(sol *dynamo.Solution, component int, caption string) string {
	series := sol.Component(component)
	if len(series) < 2 {
		return Subtle.Render("(trajectory too short to plot)")
	}
	chart := asciigraph.Plot(series,
		asciigraph.Height(defaultHeight),
		asciigraph.Width(defaultWidth),
		asciigraph.Caption(caption))
	return GraphStyle.Render(chart)
}

// Overlay plots a model trajectory against the reference on one chart. The
// reference draws grey, the model green.
func Overlay(reference, model *dynamo.Solution, component int, caption string) string {
	ref := reference.Component(component)
	mod := model.Component(component)
	if len(ref) < 2 || len(mod) < 2 {
		return Subtle.Render("(trajectory too short to plot)")
	}
	chart := asciigraph.PlotMany([][]float64{ref, mod},
		asciigraph.Height(defaultHeight),
		asciigraph.Width(defaultWidth),
		asciigraph.SeriesColors(asciigraph.Gray, asciigraph.Green),
		asciigraph.Caption(caption))
	return GraphStyle.Render(chart)
}

// Ensemble plots one component across up to maxTraj trajectories of a batch.
func Ensemble(batch *dynamo.Batch, component, maxTraj int, caption string) string {
	n := batch.Len()
	if n == 0 {
		return Subtle.Render("(empty ensemble)")
	}
	if maxTraj > 0 && n > maxTraj {
		n = maxTraj
	}

	series := make([][]float64, 0, n)
	for i := 0; i < n; i++ {
		s := batch.Trajectories[i].Component(component)
		if len(s) >= 2 {
			series = append(series, s)
		}
	}
	if len(series) == 0 {
		return Subtle.Render("(trajectories too short to plot)")
	}

	chart := asciigraph.PlotMany(series,
		asciigraph.Height(defaultHeight),
		asciigraph.Width(defaultWidth),
		asciigraph.Caption(fmt.Sprintf("%s (%d trajectories)", caption, len(series))))
	return GraphStyle.Render(chart)
}
