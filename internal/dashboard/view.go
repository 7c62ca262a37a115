package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	// defaultWidth is used until the first WindowSizeMsg arrives.
	defaultWidth = 100

	// chartShare is the percentage of the width given to the bar chart.
	chartShare = 80

	// minPanelWidth keeps borders and a few bars visible on tiny terminals.
	minPanelWidth = 8

	// Each panel box adds a top and a bottom border line.
	panelChrome = 2
)

// renderHeader renders the title bar with the entity tag and stream state.
func (m Model) renderHeader() string {
	title := TitleStyle.Render("dmontop")

	var state string
	switch {
	case m.ended:
		state = StreamEndedStyle.Render(StreamEnded + " stream ended")
	case m.driver.Accepted() == 0:
		state = LabelStyle.Render(m.spinner.View() + " waiting for samples")
	default:
		state = StreamLiveStyle.Render(StreamLive + " live")
	}

	info := LabelStyle.Render(fmt.Sprintf(" | %s | %d samples | every %v | ",
		m.driver.Tag(), m.driver.Accepted(), m.driver.interval))

	return HeaderStyle.Render(title + info + state)
}

// renderFooter renders the key hints.
func (m Model) renderFooter() string {
	return FooterStyle.Render(m.help.View(keys))
}

// layoutWidth returns the usable terminal width.
func (m Model) layoutWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

// panelRows returns the number of content rows per panel. Panels show one
// row per configured percentile, shrinking (down to one row) when the
// terminal is too short to fit every metric.
func (m Model) panelRows(percentiles int) int {
	rows := percentiles
	if rows < 1 {
		rows = 1
	}
	if m.height <= 0 {
		return rows
	}

	// Header and footer take one line each, plus the blank line after the header.
	avail := m.height - 3
	if m.showHelp {
		avail -= len(keys.FullHelp()[0])
	}
	perPanel := avail/len(m.driver.Catalog()) - panelChrome
	if perPanel < rows {
		rows = perPanel
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

// renderPanels renders every metric panel stacked vertically.
func (m Model) renderPanels(panels []Panel) string {
	width := m.layoutWidth()
	chartWidth := width * chartShare / 100
	if chartWidth < minPanelWidth {
		chartWidth = minPanelWidth
	}
	statsWidth := width - chartWidth
	if statsWidth < minPanelWidth {
		statsWidth = minPanelWidth
	}

	rows := 1
	if len(panels) > 0 {
		rows = m.panelRows(len(panels[0].Stats))
	}

	out := make([]string, 0, len(panels))
	for _, p := range panels {
		out = append(out, renderPanel(p, chartWidth, statsWidth, rows))
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

// renderPanel renders one metric: bar chart box on the left, stats box on the right.
func renderPanel(p Panel, chartWidth, statsWidth, rows int) string {
	chartLines := []string{sectionHeader(p.Metric.Name, p.Latest, chartWidth)}
	for _, bars := range RenderBarChart(p.Samples, chartWidth-4, rows) {
		chartLines = append(chartLines, sectionContentLine(BarStyle.Render(bars), chartWidth))
	}
	chartLines = append(chartLines, sectionFooter(chartWidth))

	statsLines := []string{sectionHeader("", "", statsWidth)}
	for i := 0; i < rows; i++ {
		text := ""
		if i < len(p.Stats) {
			text = truncateWithEllipsis(p.Stats[i], statsWidth-4)
		}
		statsLines = append(statsLines, sectionContentLine(StatsStyle.Render(text), statsWidth))
	}
	statsLines = append(statsLines, sectionFooter(statsWidth))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		strings.Join(chartLines, "\n"),
		strings.Join(statsLines, "\n"),
	)
}

// sectionHeader renders a box top edge with the title on the left and value on the right.
// Format: ╭─ Title ──────────────────────── Value ╮
func sectionHeader(title, value string, width int) string {
	if width < minPanelWidth {
		width = minPanelWidth
	}

	if title == "" && value == "" {
		return BorderStyle.Render("╭" + strings.Repeat("─", width-2) + "╮")
	}

	// Left: "╭─ " + title + " ", right: " " + value + " ╮"
	leftWidth := 3 + lipgloss.Width(title) + 1
	rightWidth := 1 + lipgloss.Width(value) + 2
	if value == "" {
		rightWidth = 1
	}

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}
	middle := strings.Repeat("─", fillWidth)

	if value == "" {
		return BorderStyle.Render("╭─ ") +
			MetricNameStyle.Render(title) +
			BorderStyle.Render(" "+middle+"╮")
	}

	return BorderStyle.Render("╭─ ") +
		MetricNameStyle.Render(title) +
		BorderStyle.Render(" "+middle+" ") +
		LatestStyle.Render(value) +
		BorderStyle.Render(" ╮")
}

// sectionFooter renders the bottom border of a box.
// Format: ╰────────────────────────────────────────────────────╯
func sectionFooter(width int) string {
	if width < 2 {
		width = 2
	}
	return BorderStyle.Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// sectionContentLine renders a content line with left and right borders, padded to width.
// Format: │ content                                              │
func sectionContentLine(content string, width int) string {
	if width < 4 {
		width = 4
	}

	innerWidth := width - 4
	padding := innerWidth - lipgloss.Width(content)
	if padding < 0 {
		padding = 0
	}

	return BorderStyle.Render("│") + " " + content + strings.Repeat(" ", padding) + " " + BorderStyle.Render("│")
}

// truncateWithEllipsis truncates a string to maxLen runes, adding ellipsis if needed.
func truncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 3 {
		return s
	}
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
