// Package tui provides an interactive terminal viewer for the payee report.
package tui

import (
	"context"

	"github.com/Veraticus/payee-flow/internal/cli"
	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/Veraticus/payee-flow/internal/report"
	"github.com/Veraticus/payee-flow/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// sortCycle is the order CycleSort steps through.
var sortCycle = []model.SortKey{
	model.SortByDifference,
	model.SortByName,
	model.SortByIncome,
	model.SortByExpense,
}

// chromeHeight counts the lines around the table: title, caption, sort line,
// footer, status and help.
const chromeHeight = 9

// Model holds the viewer state.
type Model struct {
	ctx       context.Context
	source    Source
	lastError error
	theme     themes.Theme
	help      help.Model
	keymap    KeyMap
	status    string
	doc       report.Document
	config    Config
	table     table.Model
	sortKey   model.SortKey
	width     int
	height    int
	loading   bool
	quitting  bool
}

// newModel creates a model showing the source's current state.
func newModel(ctx context.Context, cfg Config) Model {
	t := table.New(
		table.WithColumns(columnsFor(cfg.Width)),
		table.WithFocused(true),
		table.WithHeight(max(1, cfg.Height-chromeHeight)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(cfg.Theme.Border).
		BorderBottom(true).
		Bold(true)
	s.Selected = cfg.Theme.Selected
	t.SetStyles(s)

	m := Model{
		ctx:     ctx,
		source:  cfg.Source,
		config:  cfg,
		theme:   cfg.Theme,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		table:   t,
		sortKey: cfg.SortKey,
		width:   cfg.Width,
		height:  cfg.Height,
	}
	m.rebuild()
	return m
}

// columnsFor sizes the payee column to whatever the amount columns leave.
func columnsFor(width int) []table.Column {
	const amountWidth = 14
	payeeWidth := max(20, width-3*amountWidth-8)
	return []table.Column{
		{Title: report.Columns[0], Width: payeeWidth},
		{Title: report.Columns[1], Width: amountWidth},
		{Title: report.Columns[2], Width: amountWidth},
		{Title: report.Columns[3], Width: amountWidth},
	}
}

// rebuild re-reads the document in the current sort order.
func (m *Model) rebuild() {
	if m.source == nil {
		return
	}
	m.doc = m.source.Document(m.sortKey, m.config.Title, m.config.ChartRef)

	rows := make([]table.Row, 0, len(m.doc.Rows))
	for _, r := range m.doc.Rows {
		rows = append(rows, table.Row{
			r.Payee,
			cli.FormatAmount(r.Income),
			cli.FormatAmount(r.Expense),
			cli.FormatAmount(r.Difference),
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleKeys(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(columnsFor(msg.Width))
		m.table.SetHeight(max(1, msg.Height-chromeHeight))
		return m, nil

	case reportRefreshedMsg:
		m.loading = false
		m.lastError = msg.err
		if msg.err == nil {
			m.rebuild()
			m.status = "Report refreshed"
		}
		return m, nil

	case statusMsg:
		m.status = msg.text
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleKeys processes application keys. Navigation keys fall through to the table.
func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return tea.Quit, true

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil, true

	case key.Matches(msg, m.keymap.Refresh):
		if m.loading || m.source == nil {
			return nil, true
		}
		m.loading = true
		m.status = "Refreshing..."
		return refreshReport(m.ctx, m.source, m.config), true
	}

	// The source is not safe for concurrent use, so re-sorting waits for a refresh to finish.
	if m.loading {
		return nil, false
	}

	next := m.sortKey
	switch {
	case key.Matches(msg, m.keymap.SortName):
		next = model.SortByName
	case key.Matches(msg, m.keymap.SortIncome):
		next = model.SortByIncome
	case key.Matches(msg, m.keymap.SortExpense):
		next = model.SortByExpense
	case key.Matches(msg, m.keymap.SortDifference):
		next = model.SortByDifference
	case key.Matches(msg, m.keymap.CycleSort):
		next = nextSortKey(m.sortKey)
	default:
		return nil, false
	}

	m.sortKey = next
	m.rebuild()
	return showStatus("Sorted by " + next.String()), true
}

func nextSortKey(current model.SortKey) model.SortKey {
	for i, k := range sortCycle {
		if k == current {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return sortCycle[0]
}

// SortKey returns the active sort order.
func (m Model) SortKey() model.SortKey {
	return m.sortKey
}

// Document returns the document currently on screen.
func (m Model) Document() report.Document {
	return m.doc
}
