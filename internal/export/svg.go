// Package export renders stored trajectories and loss histories as SVG for
// reports and docs.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/hybridsim/internal/dynamo"
)

type point struct{ x, y float64 }

// SolutionSVG draws one state component against time as a polyline.
func SolutionSVG(sol *dynamo.Solution, component, width, height int, strokeColor string) string {
	series := sol.Component(component)
	points := make([]point, len(series))
	for i, v := range series {
		points[i] = point{sol.Times[i], v}
	}
	return polylineSVG(points, width, height, strokeColor)
}

// LossSVG draws a training loss history against iteration number.
func LossSVG(losses []float64, width, height int, strokeColor string) string {
	points := make([]point, len(losses))
	for i, v := range losses {
		points[i] = point{float64(i), v}
	}
	return polylineSVG(points, width, height, strokeColor)
}

// WriteSolutionSVG writes SolutionSVG output to a file.
func WriteSolutionSVG(path string, sol *dynamo.Solution, component, width, height int, strokeColor string) error {
	svg := SolutionSVG(sol, component, width, height, strokeColor)
	if svg == "" {
		return fmt.Errorf("export: trajectory too short to draw")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}

func polylineSVG(points []point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].x, points[0].x
	minY, maxY := points[0].y, points[0].y
	for _, p := range points {
		if p.x < minX {
			minX = p.x
		}
		if p.x > maxX {
			maxX = p.x
		}
		if p.y < minY {
			minY = p.y
		}
		if p.y > maxY {
			maxY = p.y
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

	for i, p := range points {
		x := (p.x - minX) / rangeX * float64(width)
		y := float64(height) - (p.y-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
