package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spice-insights/internal/cli"
)

// Styles contains the styling used by report sections.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Subtle   lipgloss.Style
	Normal   lipgloss.Style

	Box           lipgloss.Style
	Score         lipgloss.Style
	Header        lipgloss.Style
	ProgressFill  lipgloss.Style
	ProgressEmpty lipgloss.Style
}

// NewStyles creates a new Styles instance with default styling.
func NewStyles() *Styles {
	s := &Styles{
		Title:    cli.TitleStyle,
		Subtitle: cli.SubtitleStyle,
		Success:  cli.SuccessStyle,
		Warning:  cli.WarningStyle,
		Error:    cli.ErrorStyle,
		Info:     cli.InfoStyle,
		Subtle:   cli.SubtleStyle,
		Normal:   lipgloss.NewStyle(),
	}

	s.Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(cli.SubtleColor).
		Padding(0, 1)

	s.Score = lipgloss.NewStyle().
		Bold(true).
		Foreground(cli.PrimaryColor)

	s.Header = cli.SubtleStyle.Bold(true)

	s.ProgressFill = lipgloss.NewStyle().
		Foreground(cli.SuccessColor)

	s.ProgressEmpty = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#333333"))

	return s
}

// WithWidth returns a copy with boxes limited to the terminal width.
func (s *Styles) WithWidth(width int) *Styles {
	out := *s
	if width > 0 && width < 100 {
		out.Box = s.Box.Width(width - 4)
	}
	return &out
}

// ForRatio picks a style for a 0..1 ratio where higher is better.
func (s *Styles) ForRatio(ratio float64) lipgloss.Style {
	switch {
	case ratio >= 0.8:
		return s.Success
	case ratio >= 0.5:
		return s.Warning
	default:
		return s.Error
	}
}

// RenderProgressBar draws a bar of width cells filled to progress (0..1).
func (s *Styles) RenderProgressBar(progress float64, width int) string {
	if width <= 0 {
		width = 30
	}

	filled := int(float64(width) * progress)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	return s.ProgressFill.Render(strings.Repeat("█", filled)) +
		s.ProgressEmpty.Render(strings.Repeat("░", width-filled))
}
