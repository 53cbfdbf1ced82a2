package analysis

import (
	"math"
	"strings"
)

// Series extracts one component (0..3 for x, y, vx, vy) of a body from
// recorded states. Samples before the body existed are skipped.
func Series(states [][]float64, body, component int) []float64 {
	k := body*4 + component
	out := make([]float64, 0, len(states))
	for _, s := range states {
		if k < len(s) {
			out = append(out, s[k])
		}
	}
	return out
}

// PhasePortrait2D holds a set of points for an ASCII plot.
type PhasePortrait2D struct {
	Points []struct{ X, Y float64 }
}

// OrbitPortrait is the path of body relative to the primary.
func OrbitPortrait(states [][]float64, body int) *PhasePortrait2D {
	k := body * 4
	portrait := &PhasePortrait2D{
		Points: make([]struct{ X, Y float64 }, 0, len(states)),
	}
	for _, s := range states {
		if k+1 >= len(s) {
			continue
		}
		portrait.Points = append(portrait.Points, struct{ X, Y float64 }{
			X: s[k] - s[0],
			Y: s[k+1] - s[1],
		})
	}
	return portrait
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 {
		return ""
	}

	// equal scale on both axes so circles stay round
	span := 0.0
	for _, p := range portrait.Points {
		span = math.Max(span, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	if span == 0 {
		span = 1
	}
	span *= 1.1

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X + span) / (2 * span) * float64(width-1))
		row := height - 1 - int((p.Y+span)/(2*span)*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	cRow, cCol := (height-1)/2, (width-1)/2
	for row := 0; row < height; row++ {
		if canvas[row][cCol] == ' ' {
			canvas[row][cCol] = '│'
		}
	}
	for col := 0; col < width; col++ {
		if canvas[cRow][col] == ' ' {
			canvas[cRow][col] = '─'
		}
	}
	canvas[cRow][cCol] = '*'

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossings returns the interpolated times at which body crosses the
// primary's horizontal axis going upward.
func Crossings(times []float64, states [][]float64, body int) []float64 {
	k := body * 4
	var out []float64
	prevT, prevY, have := 0.0, 0.0, false

	for i, s := range states {
		if k+1 >= len(s) || i >= len(times) {
			have = false
			continue
		}
		y := s[k+1] - s[1]
		if have && prevY < 0 && y >= 0 {
			frac := -prevY / (y - prevY)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 0.5
			}
			out = append(out, prevT+frac*(times[i]-prevT))
		}
		prevT, prevY, have = times[i], y, true
	}
	return out
}

// CrossingPeriod is the mean interval between upward axis crossings, or 0
// with fewer than two crossings.
func CrossingPeriod(times []float64, states [][]float64, body int) float64 {
	c := Crossings(times, states, body)
	if len(c) < 2 {
		return 0
	}
	return (c[len(c)-1] - c[0]) / float64(len(c)-1)
}
