package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/dmontop/internal/logger"
)

// DefaultPoll is how often the model checks the source for new lines.
const DefaultPoll = 10 * time.Millisecond

// Model is the Bubble Tea model for the telemetry dashboard.
type Model struct {
	driver *Driver
	source LineSource
	poll   time.Duration
	log    logger.Logger

	help    help.Model
	spinner spinner.Model

	width    int
	height   int
	showHelp bool
	quitting bool
	ended    bool

	// body is the last rendered set of panels. It only changes when the
	// render gate opens, however often View is called.
	body string
}

// pollMsg drives one ingest-then-maybe-render iteration.
type pollMsg time.Time

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithPoll sets the poll cadence.
func WithPoll(d time.Duration) ModelOption {
	return func(m *Model) {
		if d > 0 {
			m.poll = d
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(log logger.Logger) ModelOption {
	return func(m *Model) { m.log = log }
}

// NewModel creates a dashboard reading lines from source.
func NewModel(driver *Driver, source LineSource, opts ...ModelOption) Model {
	sp := spinner.New()
	sp.Spinner = WaitingSpinner
	sp.Style = LabelStyle

	h := help.New()
	h.ShortSeparator = " | "

	m := Model{
		driver:  driver,
		source:  source,
		poll:    DefaultPoll,
		log:     logger.Noop(),
		help:    h,
		spinner: sp,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts polling and the waiting spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.pollCmd(), m.spinner.Tick)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
			m.help.ShowAll = m.showHelp
			m.body = m.renderPanels(m.driver.Panels())
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.body = m.renderPanels(m.driver.Panels())
		return m, nil

	case pollMsg:
		m.step(time.Time(msg))
		return m, m.pollCmd()

	case spinner.TickMsg:
		if !m.waiting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// step ingests what the source has ready, then renders if the gate is open.
// Ingestion always comes first so every sample lands in history whether or
// not this iteration draws.
func (m *Model) step(now time.Time) {
	m.driver.Drain(m.source)

	if !m.ended && m.source.Ended() {
		m.ended = true
		m.log.Info("telemetry stream ended after %d samples (%d lines skipped)",
			m.driver.Accepted(), m.driver.Rejected())
	}

	if m.driver.Due(now) {
		m.body = m.renderPanels(m.driver.Panels())
		m.driver.MarkRendered(now)
	}
}

// waiting reports whether no sample has arrived yet on a live stream.
func (m Model) waiting() bool {
	return m.driver.Accepted() == 0 && !m.ended
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderHeader() + "\n\n" + m.body + "\n" + m.renderFooter()
}

// pollCmd schedules the next iteration.
func (m Model) pollCmd() tea.Cmd {
	return tea.Tick(m.poll, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

// Quitting reports whether the user asked to quit.
func (m Model) Quitting() bool {
	return m.quitting
}

// Ended reports whether the source reached end of input.
func (m Model) Ended() bool {
	return m.ended
}
