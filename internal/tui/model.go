// Package tui provides an interactive terminal browser over insight results.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spice-insights/internal/cli"
	"github.com/Veraticus/spice-insights/internal/insight"
	"github.com/Veraticus/spice-insights/internal/report"
)

// Analyzer is the subset of the insight engine the browser displays.
type Analyzer interface {
	PatternInsights(ctx context.Context, accountID string) (insight.PatternInsights, error)
	DailyPatterns(ctx context.Context, accountID string) (insight.DailyPatterns, error)
	WeeklyPatterns(ctx context.Context, accountID string) (insight.WeeklyPatterns, error)
	MonthlyPatterns(ctx context.Context, accountID string) (insight.MonthlyPatterns, error)
	RecurringPayments(ctx context.Context, accountID string) ([]insight.RecurringSeries, error)
	Anomalies(ctx context.Context, accountID string) (insight.AnomalyReport, error)
	BudgetStatus(ctx context.Context, accountID string) ([]insight.BudgetStatus, error)
	HealthScore(ctx context.Context, accountID string) (insight.HealthScore, error)
	CategoryInsights(ctx context.Context, accountID string) ([]insight.CategoryInsight, error)
}

// Results serves previously stored analyses. Invalidate drops them so the
// next load recomputes.
type Results interface {
	GetRecurring(ctx context.Context, accountID string) ([]insight.RecurringSeries, error)
	Invalidate(ctx context.Context, accountID string) error
}

// Section is one tab of the browser.
type Section int

const (
	SectionInsights Section = iota
	SectionHealth
	SectionDaily
	SectionWeekly
	SectionMonthly
	SectionRecurring
	SectionAnomalies
	SectionBudgets
	SectionCategories
	sectionCount
)

var sectionNames = [...]string{
	SectionInsights:   "Insights",
	SectionHealth:     "Health",
	SectionDaily:      "Daily",
	SectionWeekly:     "Weekly",
	SectionMonthly:    "Monthly",
	SectionRecurring:  "Recurring",
	SectionAnomalies:  "Anomalies",
	SectionBudgets:    "Budgets",
	SectionCategories: "Categories",
}

func (s Section) String() string {
	if s < 0 || s >= sectionCount {
		return "Unknown"
	}
	return sectionNames[s]
}

const (
	defaultWidth  = 100
	defaultHeight = 30
	headerHeight  = 2 // tabs and a blank line
)

var (
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(cli.PrimaryColor).Underline(true).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Foreground(cli.SubtleColor).Padding(0, 1)
)

// Model holds the browser state.
type Model struct {
	ctx       context.Context
	analyzer  Analyzer
	results   Results
	formatter *report.Formatter
	content   map[Section]string
	errs      map[Section]error
	loading   map[Section]bool
	accountID string
	keymap    KeyMap
	help      help.Model
	spinner   spinner.Model
	viewport  viewport.Model
	section   Section
	width     int
	height    int
	quitting  bool
}

// New creates a browser for one account.
func New(ctx context.Context, analyzer Analyzer, accountID string) (Model, error) {
	if analyzer == nil {
		return Model{}, errors.New("analyzer is required")
	}
	if accountID == "" {
		return Model{}, errors.New("account ID is required")
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(cli.PrimaryColor)

	return Model{
		ctx:       ctx,
		analyzer:  analyzer,
		formatter: report.NewFormatter(),
		content:   make(map[Section]string),
		errs:      make(map[Section]error),
		loading:   map[Section]bool{SectionInsights: true},
		accountID: accountID,
		keymap:    DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		viewport:  viewport.New(defaultWidth, defaultHeight-headerHeight-1),
		section:   SectionInsights,
		width:     defaultWidth,
		height:    defaultHeight,
	}, nil
}

// WithResults serves the recurring section from stored results when
// available. Refreshing a section drops them.
func (m Model) WithResults(r Results) Model {
	m.results = r
	return m
}

// Init starts loading the first section.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(m.section))
}

// load renders a section in the background.
func (m Model) load(s Section) tea.Cmd {
	ctx, a, r, f, id := m.ctx, m.analyzer, m.results, m.formatter, m.accountID
	return func() tea.Msg {
		content, err := render(ctx, a, r, f, id, s)
		return sectionLoadedMsg{section: s, content: content, err: err}
	}
}

// reload drops stored results, then renders the section again.
func (m Model) reload(s Section) tea.Cmd {
	if m.results == nil {
		return m.load(s)
	}
	ctx, r, id, next := m.ctx, m.results, m.accountID, m.load(s)
	return func() tea.Msg {
		if err := r.Invalidate(ctx, id); err != nil {
			return sectionLoadedMsg{section: s, err: fmt.Errorf("refresh failed: %w", err)}
		}
		return next()
	}
}

func render(ctx context.Context, a Analyzer, r Results, f *report.Formatter, accountID string, s Section) (string, error) {
	if s == SectionRecurring && r != nil {
		if series, err := r.GetRecurring(ctx, accountID); err == nil {
			return f.FormatRecurring(series), nil
		}
	}

	switch s {
	case SectionInsights:
		r, err := a.PatternInsights(ctx, accountID)
		return f.FormatInsights(r), err
	case SectionHealth:
		r, err := a.HealthScore(ctx, accountID)
		return f.FormatHealth(r), err
	case SectionDaily:
		r, err := a.DailyPatterns(ctx, accountID)
		return f.FormatDaily(r), err
	case SectionWeekly:
		r, err := a.WeeklyPatterns(ctx, accountID)
		return f.FormatWeekly(r), err
	case SectionMonthly:
		r, err := a.MonthlyPatterns(ctx, accountID)
		return f.FormatMonthly(r), err
	case SectionRecurring:
		r, err := a.RecurringPayments(ctx, accountID)
		return f.FormatRecurring(r), err
	case SectionAnomalies:
		r, err := a.Anomalies(ctx, accountID)
		return f.FormatAnomalies(r), err
	case SectionBudgets:
		r, err := a.BudgetStatus(ctx, accountID)
		return f.FormatBudgets(r), err
	case SectionCategories:
		r, err := a.CategoryInsights(ctx, accountID)
		return f.FormatCategories(r), err
	default:
		return "", fmt.Errorf("unknown section %d", s)
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		case key.Matches(msg, m.keymap.NextSection):
			return m.switchTo((m.section + 1) % sectionCount)
		case key.Matches(msg, m.keymap.PrevSection):
			return m.switchTo((m.section + sectionCount - 1) % sectionCount)
		case key.Matches(msg, m.keymap.Refresh):
			if m.loading[m.section] {
				return m, nil
			}
			delete(m.content, m.section)
			delete(m.errs, m.section)
			m.loading[m.section] = true
			m.refreshViewport()
			return m, m.reload(m.section)
		case key.Matches(msg, m.keymap.Home):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keymap.End):
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.formatter = report.NewFormatter().WithWidth(msg.Width)
		m.resize()

	case sectionLoadedMsg:
		m.loading[msg.section] = false
		if msg.err != nil {
			m.errs[msg.section] = msg.err
		} else {
			m.content[msg.section] = msg.content
		}
		if msg.section == m.section {
			m.refreshViewport()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.loading[m.section] {
			m.refreshViewport()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// switchTo selects a section, loading it if it has no content yet.
func (m Model) switchTo(s Section) (tea.Model, tea.Cmd) {
	m.section = s
	var cmd tea.Cmd
	_, loaded := m.content[s]
	_, failed := m.errs[s]
	if !loaded && !failed && !m.loading[s] {
		m.loading[s] = true
		cmd = m.load(s)
	}
	m.refreshViewport()
	m.viewport.GotoTop()
	return m, cmd
}

func (m *Model) resize() {
	helpHeight := lipgloss.Height(m.help.View(m.keymap))
	m.viewport.Width = m.width
	m.viewport.Height = max(1, m.height-headerHeight-helpHeight)
	m.help.Width = m.width
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	switch {
	case m.errs[m.section] != nil:
		m.viewport.SetContent(cli.FormatError(m.errs[m.section].Error()))
	case m.content[m.section] != "":
		m.viewport.SetContent(m.content[m.section])
	default:
		m.viewport.SetContent(m.spinner.View() + " Loading " + m.section.String() + "...")
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		"",
		m.viewport.View(),
		m.help.View(m.keymap),
	)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, sectionCount)
	for s := Section(0); s < sectionCount; s++ {
		if s == m.section {
			tabs = append(tabs, activeTabStyle.Render(s.String()))
		} else {
			tabs = append(tabs, tabStyle.Render(s.String()))
		}
	}
	return cli.SpiceIcon + " " + strings.Join(tabs, "")
}

// Section returns the selected section.
func (m Model) Section() Section {
	return m.section
}

// Run starts the browser in the alternate screen and blocks until it exits.
// results may be nil.
func Run(ctx context.Context, analyzer Analyzer, results Results, accountID string) error {
	m, err := New(ctx, analyzer, accountID)
	if err != nil {
		return err
	}
	if results != nil {
		m = m.WithResults(results)
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("browser error: %w", err)
	}
	return nil
}
