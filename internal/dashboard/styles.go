package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/dmontop/internal/ui"
)

// Dashboard color palette - electric synthwave
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F") // Deep void
	ColorSurfaceBg = lipgloss.Color("#12121A") // Dark surface
	ColorBorder    = lipgloss.Color("#2A2A4A") // Glass border (purple tint)

	ColorHealthy = lipgloss.Color("#39FF14") // Neon green
	ColorWarning = lipgloss.Color("#FFAA00") // Electric amber

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0") // Lavender gray
	ColorTextMuted     = lipgloss.Color("#6B6B8D") // Purple-gray

	ColorAccent = lipgloss.Color("#FF2E97") // Neon pink

	ColorGraph = lipgloss.Color("#00FFFF") // Neon cyan
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	// Panels draw their own border so the metric name can sit in the top edge.
	BorderStyle = lipgloss.NewStyle().
			Foreground(ColorBorder)

	MetricNameStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	LatestStyle = lipgloss.NewStyle().
			Foreground(ColorGraph)

	BarStyle = lipgloss.NewStyle().
			Foreground(ColorGraph)

	StatsStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	StreamLiveStyle = lipgloss.NewStyle().
			Foreground(ColorHealthy)

	StreamEndedStyle = lipgloss.NewStyle().
				Foreground(ColorWarning).
				Bold(true)
)

// Stream state glyphs
const (
	StreamLive  = ui.SymbolLive
	StreamEnded = ui.SymbolEnded
)

// WaitingSpinner is shown until the first sample arrives.
var WaitingSpinner = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 8,
}
