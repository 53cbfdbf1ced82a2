package export

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Path is one body's recorded trajectory in metres.
type Path struct {
	Name   string
	Color  string
	Radius float64
	Points []r2.Vec
}

// Paths splits recorded states into one path per body. Bodies inserted part
// way through a run get shorter paths.
func Paths(states [][]float64, names, colors []string) []Path {
	width := 0
	for _, s := range states {
		width = max(width, len(s)/4)
	}

	paths := make([]Path, width)
	for i := range paths {
		if i < len(names) {
			paths[i].Name = names[i]
		}
		if i < len(colors) {
			paths[i].Color = colors[i]
		}
	}
	for _, s := range states {
		for b := 0; b < len(s)/4; b++ {
			paths[b].Points = append(paths[b].Points, r2.Vec{X: s[4*b], Y: s[4*b+1]})
		}
	}
	return paths
}

// TrajectoriesToSVG draws every path as a polyline on a shared scale, with
// equal units on both axes, and a dot at each body's final position.
func TrajectoriesToSVG(paths []Path, width, height int) string {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range paths {
		for _, v := range p.Points {
			minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
			minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
		}
	}
	if math.IsInf(minX, 0) {
		return ""
	}

	// Add padding
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	span *= 1.2
	midX, midY := (minX+maxX)/2, (minY+maxY)/2
	px := float64(min(width, height))

	project := func(v r2.Vec) (float64, float64) {
		x := float64(width)/2 + (v.X-midX)/span*px
		y := float64(height)/2 - (v.Y-midY)/span*px
		return x, y
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, p := range paths {
		if len(p.Points) == 0 {
			continue
		}
		color := p.Color
		if color == "" {
			color = "#ffffff"
		}

		if len(p.Points) > 1 {
			sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1" stroke-opacity="0.7" d="M`, color))
			for i, v := range p.Points {
				x, y := project(v)
				if i == 0 {
					sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
				} else {
					sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
				}
			}
			sb.WriteString("\"/>\n")
		}

		x, y := project(p.Points[len(p.Points)-1])
		r := math.Max(1.5, p.Radius/2)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"><title>%s</title></circle>
`, x, y, r, color, escape(p.Name)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}
