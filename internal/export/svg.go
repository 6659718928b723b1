// Package export renders radial profiles as standalone SVG documents.
package export

import (
	"fmt"
	"os"
	"strings"
)

// ProfileSVG draws (x, y) as a polyline with 10% padding on each axis.
// Degenerate ranges are widened to keep the projection finite.
func ProfileSVG(x, y []float64, width, height int, strokeColor string) string {
	if len(x) < 2 || len(x) != len(y) {
		return ""
	}

	minX, maxX := x[0], x[0]
	minY, maxY := y[0], y[0]
	for i := range x {
		if x[i] < minX {
			minX = x[i]
		}
		if x[i] > maxX {
			maxX = x[i]
		}
		if y[i] < minY {
			minY = y[i]
		}
		if y[i] > maxY {
			maxY = y[i]
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := range x {
		px := (x[i] - minX) / rangeX * float64(width)
		py := float64(height) - (y[i]-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", px, py))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px, py))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// WriteProfiles writes current density and field profiles to one SVG
// file each, named <base>_j.svg and <base>_e.svg.
func WriteProfiles(base string, grid, j, e []float64) error {
	for _, out := range []struct {
		suffix string
		y      []float64
		color  string
	}{
		{"_j.svg", j, "#00ff00"},
		{"_e.svg", e, "#00c8ff"},
	} {
		svg := ProfileSVG(grid, out.y, 800, 400, out.color)
		if svg == "" {
			return fmt.Errorf("export: profile too short to render")
		}
		if err := os.WriteFile(base+out.suffix, []byte(svg), 0644); err != nil {
			return err
		}
	}
	return nil
}
