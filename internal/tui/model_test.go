package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/payee-flow/internal/model"
	"github.com/Veraticus/payee-flow/internal/report"
	"github.com/Veraticus/payee-flow/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var january = model.DateRange{
	Start: testutil.Day(2024, 1, 1),
	End:   testutil.Day(2024, 1, 31),
	Title: "January",
}

func sampleLedger() *testutil.Ledger {
	return testutil.NewLedger().
		WithCurrency("USD", "1").
		WithAccount("chk", "USD").
		WithPayee("emp", "Employer").
		WithPayee("gro", "Grocer").
		WithPayee("lan", "Landlord").
		Deposit("t1", "chk", "emp", testutil.Day(2024, 1, 2), "3000").
		Withdrawal("t2", "chk", "gro", testutil.Day(2024, 1, 3), "120").
		Withdrawal("t3", "chk", "lan", testutil.Day(2024, 1, 4), "1000")
}

func newTestModel(t *testing.T, ledger *testutil.Ledger) Model {
	t.Helper()
	src := report.New(ledger, report.WithClock(func() time.Time { return testutil.Day(2024, 2, 1) }))
	require.NoError(t, src.Refresh(context.Background(), january, false))

	cfg := defaultConfig()
	for _, opt := range []Option{WithSource(src), WithWindow(january, false), WithTitle("Household", "")} {
		opt(&cfg)
	}
	return newModel(context.Background(), cfg)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func firstColumn(m Model) []string {
	rows := m.table.Rows()
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r[0]
	}
	return out
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func TestModel_InitialOrder(t *testing.T) {
	m := newTestModel(t, sampleLedger())

	assert.Equal(t, model.SortByDifference, m.SortKey())
	assert.Equal(t, []string{"Landlord", "Grocer", "Employer"}, firstColumn(m))
	assert.Equal(t, "Household", m.Document().Title)
}

func TestModel_SortKeys(t *testing.T) {
	tests := []struct {
		key  string
		want model.SortKey
		rows []string
	}{
		{key: "n", want: model.SortByName, rows: []string{"Employer", "Grocer", "Landlord"}},
		{key: "i", want: model.SortByIncome, rows: []string{"Grocer", "Landlord", "Employer"}},
		{key: "e", want: model.SortByExpense, rows: []string{"Landlord", "Grocer", "Employer"}},
		{key: "d", want: model.SortByDifference, rows: []string{"Landlord", "Grocer", "Employer"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := newTestModel(t, sampleLedger())

			m, cmd := update(t, m, runes(tt.key))
			require.NotNil(t, cmd)
			assert.Equal(t, tt.want, m.SortKey())
			assert.Equal(t, tt.rows, firstColumn(m))

			m, _ = update(t, m, cmd())
			assert.Contains(t, m.View(), "Sorted by "+tt.want.String())
		})
	}
}

func TestModel_CycleSort(t *testing.T) {
	m := newTestModel(t, sampleLedger())

	var seen []model.SortKey
	for range sortCycle {
		m, _ = update(t, m, runes("s"))
		seen = append(seen, m.SortKey())
	}

	assert.Equal(t, []model.SortKey{model.SortByName, model.SortByIncome, model.SortByExpense, model.SortByDifference}, seen)
}

func TestModel_Refresh(t *testing.T) {
	ledger := sampleLedger()
	m := newTestModel(t, ledger)

	ledger.WithPayee("caf", "Cafe").Withdrawal("t4", "chk", "caf", testutil.Day(2024, 1, 9), "5")

	m, cmd := update(t, m, runes("r"))
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	// Sorting is ignored while the refresh runs.
	m, _ = update(t, m, runes("n"))
	assert.Equal(t, model.SortByDifference, m.SortKey())

	m, _ = update(t, m, cmd())
	assert.False(t, m.loading)
	assert.Len(t, firstColumn(m), 4)
	assert.Contains(t, m.View(), "Report refreshed")
}

func TestModel_RefreshFailureKeepsRows(t *testing.T) {
	ledger := sampleLedger()
	m := newTestModel(t, ledger)

	ledger.FailOn(testutil.OpTransactions, errors.New("disk gone"))

	m, cmd := update(t, m, runes("r"))
	m, _ = update(t, m, cmd())

	assert.Error(t, m.lastError)
	assert.Len(t, firstColumn(m), 3)
	assert.Contains(t, m.View(), "disk gone")
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, sampleLedger())

	m, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModel_WindowResize(t *testing.T) {
	m := newTestModel(t, sampleLedger())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	cols := m.table.Columns()
	require.Len(t, cols, 4)
	assert.Equal(t, 120-3*14-8, cols[0].Width)
	assert.Equal(t, 40-chromeHeight-lipgloss.Height(m.table.HeadersView()), m.table.Height())
	assert.LessOrEqual(t, lipgloss.Height(m.View()), 40)
}

func TestNextSortKey(t *testing.T) {
	assert.Equal(t, model.SortByName, nextSortKey(model.SortByDifference))
	assert.Equal(t, model.SortByDifference, nextSortKey(model.SortByExpense))
	assert.Equal(t, model.SortByDifference, nextSortKey(model.SortKey(0)))
}

func TestRun_RequiresSource(t *testing.T) {
	assert.ErrorIs(t, Run(context.Background()), ErrNoSource)
}
