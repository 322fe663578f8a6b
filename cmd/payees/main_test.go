package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/payee-flow/internal/report"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cliEnv runs commands against a throwaway ledger and config file.
type cliEnv struct {
	t          *testing.T
	configFile string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := "database:\n  path: " + filepath.Join(dir, "ledger.db") + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o600))

	t.Setenv("PAYEES_DATABASE_PATH", "")
	viper.Reset()
	t.Cleanup(viper.Reset)

	return &cliEnv{t: t, configFile: configFile}
}

func (e *cliEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	viper.Reset()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", e.configFile}, args...))

	err := root.Execute()
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run("", args...)
	require.NoError(e.t, err, out)
	return out
}

func (e *cliEnv) report(args ...string) report.Document {
	e.t.Helper()
	out := e.mustRun(append([]string{"report", "payees", "--format", "json"}, args...)...)

	var doc report.Document
	require.NoError(e.t, json.Unmarshal([]byte(out), &doc), out)
	return doc
}

func (e *cliEnv) seed() {
	e.mustRun("currencies", "add", "USD", "--name", "US Dollar", "--rate", "1")
	e.mustRun("currencies", "add", "EUR", "--name", "Euro", "--rate", "1.10")
	e.mustRun("accounts", "add", "chk", "--name", "Checking", "--currency", "USD")
	e.mustRun("accounts", "add", "eur", "--name", "Euro Savings", "--currency", "EUR")
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun("version")
	assert.Contains(t, out, "payees version dev")
}

func TestLedgerCommands(t *testing.T) {
	env := newCLIEnv(t)
	env.seed()

	out := env.mustRun("currencies", "list")
	assert.Contains(t, out, "USD")
	assert.Contains(t, out, "1.1")

	out = env.mustRun("accounts", "list")
	assert.Contains(t, out, "Euro Savings")

	env.mustRun("payees", "add", "Landlord")
	out = env.mustRun("payees", "list")
	assert.Contains(t, out, "Landlord")

	out = env.mustRun("currencies", "set-rate", "eur", "1.2")
	assert.Contains(t, out, "1 EUR = 1.2 base")
}

func TestReportPayees(t *testing.T) {
	env := newCLIEnv(t)
	env.seed()

	env.mustRun("transactions", "add", "--id", "t1", "--account", "chk", "--payee", "ACME Corp", "--type", "deposit", "--amount", "2500", "--date", "2024-01-02")
	env.mustRun("transactions", "add", "--id", "t2", "--account", "chk", "--payee", "Landlord", "--type", "withdrawal", "--amount", "1000", "--date", "2024-01-03")
	env.mustRun("transactions", "add", "--id", "t3", "--account", "eur", "--payee", "Landlord", "--type", "withdrawal", "--amount", "100", "--date", "2024-01-04")
	env.mustRun("transactions", "add", "--id", "t4", "--account", "chk", "--payee", "Savings", "--type", "transfer", "--amount", "300", "--date", "2024-01-05")
	env.mustRun("transactions", "add", "--id", "t5", "--account", "chk", "--payee", "Landlord", "--type", "withdrawal", "--amount", "999", "--date", "2023-12-31")

	doc := env.report("--from", "2024-01-01", "--to", "2024-01-31", "--sort", "name", "--title", "January")

	assert.Equal(t, "January", doc.Title)
	assert.Equal(t, "From 2024-01-01 till 2024-01-31", doc.Caption)
	require.Len(t, doc.Rows, 2, "transfer and out-of-window rows are left out")
	assert.Equal(t, "ACME Corp", doc.Rows[0].Payee)
	assert.True(t, doc.Rows[0].Income.Equal(amount("2500")))
	assert.Equal(t, "Landlord", doc.Rows[1].Payee)
	assert.True(t, doc.Rows[1].Expense.Equal(amount("-1110")), "EUR converted at 1.10: %s", doc.Rows[1].Expense)
	assert.True(t, doc.Footer.Net.Equal(amount("1390")))
	require.Len(t, doc.Chart, 1)
	assert.Equal(t, "Landlord", doc.Chart[0].Label)

	table := env.mustRun("report", "payees", "--from", "2024-01-01", "--to", "2024-01-31")
	assert.Contains(t, table, "Total:")
	assert.Contains(t, table, "-1110.00")
}

func TestReportPayees_SplitsAndVoid(t *testing.T) {
	env := newCLIEnv(t)
	env.seed()

	env.mustRun("transactions", "add", "--id", "s1", "--account", "chk", "--payee", "Employer", "--type", "deposit",
		"--amount", "50", "--date", "2024-01-05", "--split", "30:salary", "--split=-5:fee")
	env.mustRun("transactions", "add", "--id", "v1", "--account", "chk", "--payee", "Grocer", "--type", "withdrawal",
		"--amount", "40", "--date", "2024-01-06")

	out, err := env.run("n\n", "transactions", "void", "v1")
	require.NoError(t, err)
	assert.Contains(t, out, "Left unchanged")

	doc := env.report("--from", "2024-01-01", "--to", "2024-01-31")
	require.Len(t, doc.Rows, 2)

	env.mustRun("transactions", "void", "v1", "--yes")

	doc = env.report("--from", "2024-01-01", "--to", "2024-01-31")
	require.Len(t, doc.Rows, 1)
	assert.Equal(t, "Employer", doc.Rows[0].Payee)
	assert.True(t, doc.Rows[0].Income.Equal(amount("30")))
	assert.True(t, doc.Rows[0].Expense.Equal(amount("-5")))

	list := env.mustRun("transactions", "list", "--from", "2024-01-01")
	assert.Contains(t, list, "(void)")
}

func TestReportPayees_MissingRateWarns(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("accounts", "add", "gbp", "--currency", "GBP")
	env.mustRun("transactions", "add", "--id", "g1", "--account", "gbp", "--payee", "Pub", "--type", "withdrawal",
		"--amount", "12", "--date", "2024-01-06")

	doc := env.report("--from", "2024-01-01", "--to", "2024-01-31")

	require.Len(t, doc.Rows, 1)
	assert.True(t, doc.Rows[0].Expense.Equal(amount("-12")), "rate falls back to 1")
	require.Len(t, doc.Warnings, 1)
	assert.Contains(t, doc.Warnings[0], "gbp")
}

func TestReportPayees_InvalidInput(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("", "report", "payees", "--period", "fortnight")
	assert.Error(t, err)

	_, err = env.run("", "report", "payees", "--format", "xml")
	assert.Error(t, err)

	_, err = env.run("", "transactions", "add", "--account", "chk", "--amount", "-5")
	assert.Error(t, err)
}

func TestImportOFX(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("currencies", "add", "USD", "--rate", "1")

	out := env.mustRun("import", "ofx", filepath.Join("testdata", "card.ofx"))
	assert.Contains(t, out, "Transactions imported: 2")

	out = env.mustRun("import", "ofx", filepath.Join("testdata", "*.ofx"))
	assert.Contains(t, out, "Duplicates skipped: 2")

	doc := env.report("--from", "2024-01-01", "--to", "2024-01-31")
	require.Len(t, doc.Rows, 2)
	assert.True(t, doc.Footer.Negative.Equal(amount("-60.99")))
	assert.Empty(t, doc.Warnings)
}

func TestImportOFX_NoFiles(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("", "import", "ofx", filepath.Join(t.TempDir(), "*.qfx"))
	assert.Error(t, err)
}

func TestImportSimpleFIN(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("currencies", "add", "USD", "--rate", "1")

	bridge := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"accounts": [{"id": "sf-1", "name": "Bridge Checking", "currency": "USD",
			"transactions": [
				{"id": "a", "posted": 1704456000, "amount": "-19.99", "description": "BOOKSHOP INC"},
				{"id": "b", "posted": 1704456000, "amount": "250.00", "description": "Refund Desk"}
			]}]}`))
	}))
	defer bridge.Close()
	t.Setenv("SIMPLEFIN_ACCESS_URL", bridge.URL)
	t.Setenv("SIMPLEFIN_TOKEN", "")

	out := env.mustRun("import", "simplefin", "--from", "2024-01-01", "--to", "2024-01-31")
	assert.Contains(t, out, "Imported: 2")

	doc := env.report("--from", "2024-01-01", "--to", "2024-01-31", "--sort", "name")
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, "Bookshop", doc.Rows[0].Payee)
	assert.True(t, doc.Rows[0].Expense.Equal(amount("-19.99")))
	assert.Equal(t, "Refund Desk", doc.Rows[1].Payee)
}
