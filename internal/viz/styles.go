package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	GlassPanel    lipgloss.Style
	GradientTitle lipgloss.Style
	StatusRunning lipgloss.Style
	StatusPaused  lipgloss.Style
	StatusHalted  lipgloss.Style
	MetricValue   lipgloss.Style
	MetricLabel   lipgloss.Style
	KeyHint       lipgloss.Style
	HeaderStyle   lipgloss.Style
	GraphStyle    lipgloss.Style
)

func init() {
	applyTheme(CurrentTheme)
}

func applyTheme(t Theme) {
	GlassPanel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Muted).
		Padding(1, 2)

	GradientTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary)

	StatusRunning = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Success)

	StatusPaused = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Warning)

	StatusHalted = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Error)

	MetricValue = lipgloss.NewStyle().
		Foreground(t.Text).
		Bold(true)

	MetricLabel = lipgloss.NewStyle().
		Foreground(t.Muted).
		Width(10)

	KeyHint = lipgloss.NewStyle().
		Foreground(t.Muted).
		Italic(true)

	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(t.Muted)

	GraphStyle = lipgloss.NewStyle().Foreground(t.Accent)
}

// GradientText blends each character from start to end in Lab space.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	c1, err1 := colorful.Hex(string(start))
	c2, err2 := colorful.Hex(string(end))
	if err1 != nil || err2 != nil {
		return lipgloss.NewStyle().Foreground(start).Render(text)
	}

	var result strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		color := lipgloss.Color(c1.BlendLab(c2, t).Clamped().Hex())
		result.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(r)))
	}

	return result.String()
}

// Swatch is a block in the given hex colour.
func Swatch(hex string) string {
	if hex == "" {
		hex = string(CurrentTheme.Text)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("●")
}

func Separator(width int) string {
	return KeyHint.Render(strings.Repeat("─", width))
}
