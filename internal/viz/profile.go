// Package viz renders 1-D field profiles as terminal graphs.
package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"
)

const (
	defaultWidth  = 72
	defaultHeight = 16
)

// Profile renders y(x) with an axis caption. x is used only for the
// caption range; asciigraph plots against the index, which is faithful
// for the uniform grids the solver produces.
func Profile(x, y []float64, caption string) string {
	if len(y) == 0 {
		return ""
	}
	graph := asciigraph.Plot(y,
		asciigraph.Width(defaultWidth),
		asciigraph.Height(defaultHeight),
		asciigraph.Caption(caption),
	)

	var sb strings.Builder
	sb.WriteString(graph)
	if len(x) > 1 {
		sb.WriteString(fmt.Sprintf("\n  x: [%.4g, %.4g] (%d cells)\n", x[0], x[len(x)-1], len(x)))
	}
	return sb.String()
}

// Series renders several profiles stacked vertically.
func Series(x []float64, series map[string][]float64, order []string) string {
	var sb strings.Builder
	for _, name := range order {
		y, ok := series[name]
		if !ok {
			continue
		}
		sb.WriteString(Profile(x, y, name))
		sb.WriteString("\n")
	}
	return sb.String()
}
