package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/storage"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
<MEMO>Weekly groceries
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

type cliEnv struct {
	t      *testing.T
	dbPath string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return &cliEnv{t: t, dbPath: filepath.Join(t.TempDir(), "data", "pennywise.db")}
}

// run executes the root command with stdin as input and returns what it
// wrote to stdout and stderr.
func (e *cliEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	viper.Reset()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--db", e.dbPath, "--log-level", "error"}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run("", args...)
	require.NoError(e.t, err, out)
	return out
}

// store opens the database directly for assertions.
func (e *cliEnv) store() *storage.SQLiteStorage {
	e.t.Helper()
	store, err := storage.NewSQLiteStorage(e.dbPath)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = store.Close() })
	return store
}

func (e *cliEnv) transactions() []model.Transaction {
	e.t.Helper()
	txns, err := e.store().ListTransactions(context.Background(), model.TransactionFilter{})
	require.NoError(e.t, err)
	return txns
}

func TestVersionCommand(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun("version")
	assert.Contains(t, out, "pennywise "+version)
}

func TestMigrateCommand(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("migrate", "--status")
	assert.Contains(t, out, "Database Migration Status")
	assert.Contains(t, out, "Current version: 0")
	assert.Contains(t, out, "Migrations pending")

	out = env.mustRun("migrate")
	assert.Contains(t, out, "Database is at schema version")

	out = env.mustRun("migrate", "--status")
	assert.NotContains(t, out, "Migrations pending")
	assert.Contains(t, out, "categories")
	assert.FileExists(t, env.dbPath)
}

func TestAddListAndSummary(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("add", "--amount", "12.50", "--payee", "Corner Bakery", "--category", "Groceries", "--date", "2024-03-05")
	assert.Contains(t, out, "Added $12.50 on 2024-03-05")
	env.mustRun("add", "--amount", "2400", "--category", "salary", "--date", "2024-03-01")
	env.mustRun("add", "--amount", "7", "--payee", "Parking", "--date", "2024-03-09")
	env.mustRun("add", "--amount", "30", "--payee", "Old", "--category", "Groceries", "--date", "2024-02-20")

	out = env.mustRun("list", "--month", "2024-03")
	assert.Contains(t, out, "Corner Bakery")
	assert.Contains(t, out, "Parking")
	assert.Contains(t, out, "Uncategorized")
	assert.NotContains(t, out, "Old")
	assert.Contains(t, out, "3 transactions")

	out = env.mustRun("list", "--month", "2024-03", "--uncategorized")
	assert.Contains(t, out, "Parking")
	assert.NotContains(t, out, "Corner Bakery")

	out = env.mustRun("list", "--all", "--search", "bakery")
	assert.Contains(t, out, "Corner Bakery")
	assert.Contains(t, out, "1 transactions")

	out = env.mustRun("list", "--month", "2023-01")
	assert.Contains(t, out, "No transactions found.")

	out = env.mustRun("summary", "--month", "2024-03")
	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, "Spent:  $12.50")
	assert.Contains(t, out, "Earned: $2,400.00")
	assert.Contains(t, out, "Net:    $2,387.50")
	assert.Contains(t, out, "Uncategorized: $7.00")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "100.0%")
}

func TestAddValidation(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("", "add", "--amount", "abc", "--date", "2024-03-05")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "amount")

	_, err = env.run("", "add", "--amount", "5", "--date", "03/05/2024")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "date")

	_, err = env.run("", "add", "--amount", "5", "--category", "Nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.Empty(t, env.transactions())
}

func TestEditShowAndDelete(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("add", "--amount", "12.50", "--payee", "Corner Bakery", "--category", "Groceries", "--date", "2024-03-05")

	txns := env.transactions()
	require.Len(t, txns, 1)
	id := txns[0].ID

	out := env.mustRun("edit", id, "--amount", "15", "--payee", "Bakery", "--uncategorized")
	assert.Contains(t, out, "Updated")

	out = env.mustRun("show", id)
	assert.Contains(t, out, "$15.00")
	assert.Contains(t, out, "Bakery")
	assert.Contains(t, out, "Uncategorized")

	out = env.mustRun("edit", id)
	assert.Contains(t, out, "Nothing to change")

	_, err := env.run("", "edit", id, "--category", "Groceries", "--uncategorized")
	require.Error(t, err)

	_, err = env.run("", "edit", "missing", "--amount", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)

	out = env.mustRun("delete", id)
	assert.Contains(t, out, "Deleted")
	assert.Empty(t, env.transactions())

	_, err = env.run("", "show", id)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCategoriesCommands(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("categories", "list")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "income")

	out = env.mustRun("categories", "add", "Pets", "--icon", "paw")
	assert.Contains(t, out, `Created expense category "Pets"`)

	_, err := env.run("", "categories", "add", "Pets")
	require.Error(t, err)

	_, err = env.run("", "categories", "add", "Gifts", "--type", "other")
	require.Error(t, err)

	env.mustRun("add", "--amount", "40", "--category", "Pets", "--date", "2024-03-05")

	// Declining keeps the category.
	out, err = env.run("n\n", "categories", "delete", "Pets")
	require.NoError(t, err)
	assert.Contains(t, out, "Deletion cancelled.")

	out = env.mustRun("categories", "delete", "Pets", "--force")
	assert.Contains(t, out, `Deleted category "Pets"`)

	txns := env.transactions()
	require.Len(t, txns, 1)
	assert.Nil(t, txns[0].CategoryID)
}

func TestAccountsCommands(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("accounts", "list")
	assert.Contains(t, out, storage.DefaultAccountID)

	env.mustRun("accounts", "add", "Checking", "--type", "checking")
	accounts, err := env.store().GetAccounts(context.Background())
	require.NoError(t, err)
	var checkingID string
	for _, a := range accounts {
		if a.Name == "Checking" {
			checkingID = a.ID
		}
	}
	require.NotEmpty(t, checkingID)

	_, err = env.run("", "accounts", "add", "Broker", "--type", "brokerage")
	require.Error(t, err)

	env.mustRun("add", "--amount", "9", "--account", checkingID, "--date", "2024-03-05")
	out, err = env.run("y\n", "accounts", "delete", checkingID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted account")
	assert.Empty(t, env.transactions())
}

func TestBudgetsAndRulesCommands(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("budgets", "list")
	assert.Contains(t, out, "No budgets found.")

	out = env.mustRun("budgets", "add", "--category", "Groceries", "--amount", "400", "--month", "2024-03")
	assert.Contains(t, out, "$400.00")
	assert.Contains(t, out, "2024-03-01 to 2024-03-31")

	_, err := env.run("", "budgets", "add", "--category", "Groceries", "--amount", "400")
	require.Error(t, err)

	out = env.mustRun("budgets", "list")
	assert.Contains(t, out, "Groceries")

	budgets, err := env.store().GetBudgets(context.Background())
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	env.mustRun("budgets", "delete", budgets[0].ID)

	out = env.mustRun("rules", "add", "STARBUCKS", "--category", "Restaurants", "--priority", "5")
	assert.Contains(t, out, `"STARBUCKS"`)

	out = env.mustRun("rules", "list")
	assert.Contains(t, out, "STARBUCKS")
	assert.Contains(t, out, "Restaurants")

	rules, err := env.store().GetRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	env.mustRun("rules", "delete", rules[0].ID)

	out = env.mustRun("rules", "list")
	assert.Contains(t, out, "No rules found.")
}

func TestImportOFXCommand(t *testing.T) {
	env := newCLIEnv(t)
	file := filepath.Join(t.TempDir(), "bank.ofx")
	require.NoError(t, os.WriteFile(file, []byte(sampleOFX), 0o600))

	out := env.mustRun("import-ofx", "--dry-run", file)
	assert.Contains(t, out, "2 found, 0 duplicates")
	assert.Contains(t, out, "Dry run: 2 transactions would be imported")
	assert.Empty(t, env.transactions())

	out = env.mustRun("import-ofx", file)
	assert.Contains(t, out, "Imported 2 transactions")

	txns := env.transactions()
	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.Nil(t, txn.CategoryID)
		assert.Equal(t, storage.DefaultAccountID, txn.AccountID)
	}

	out = env.mustRun("import-ofx", filepath.Join(filepath.Dir(file), "*.ofx"))
	assert.Contains(t, out, "2 found, 2 duplicates")
	assert.Contains(t, out, "Nothing new to import.")
	assert.Len(t, env.transactions(), 2)

	// The import took an automatic checkpoint first.
	out = env.mustRun("checkpoint", "list")
	assert.Contains(t, out, "auto-import-")

	_, err := env.run("", "import-ofx", filepath.Join(t.TempDir(), "missing-*.ofx"))
	require.Error(t, err)

	_, err = env.run("", "import-ofx", "--account", "acc_nope", file)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCheckpointCommands(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("add", "--amount", "10", "--date", "2024-03-05")

	out := env.mustRun("checkpoint", "create", "--tag", "before", "--description", "one transaction")
	assert.Contains(t, out, "Created checkpoint before")
	assert.Contains(t, out, "one transaction")

	_, err := env.run("", "checkpoint", "create", "--tag", "before")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrCheckpointExists)

	env.mustRun("add", "--amount", "20", "--date", "2024-03-06")
	require.Len(t, env.transactions(), 2)

	out = env.mustRun("checkpoint", "list")
	assert.Contains(t, out, "before")
	assert.Contains(t, out, "manual")

	out, err = env.run("n\n", "checkpoint", "restore", "before")
	require.NoError(t, err)
	assert.Contains(t, out, "Restore cancelled.")
	require.Len(t, env.transactions(), 2)

	out = env.mustRun("checkpoint", "restore", "before", "--force")
	assert.Contains(t, out, "Restored from checkpoint before")
	assert.Len(t, env.transactions(), 1)

	out = env.mustRun("checkpoint", "delete", "before", "--force")
	assert.Contains(t, out, "Deleted checkpoint before")

	_, err = env.run("", "checkpoint", "delete", "before", "--force")
	assert.ErrorIs(t, err, storage.ErrCheckpointNotFound)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "0 B", formatFileSize(-1))
	assert.Equal(t, "512 B", formatFileSize(512))
	assert.Equal(t, "1.5 KiB", formatFileSize(1536))

	old := time.Date(2020, 1, 2, 3, 4, 0, 0, time.Local)
	assert.Equal(t, "2020-01-02 03:04", formatRelativeTime(old))
	assert.Contains(t, formatRelativeTime(time.Now().Add(-2*time.Hour)), "hours ago")

	assert.Equal(t, "-", optional(nil))
	assert.Equal(t, "x", optional(model.StringPtr("x")))
}

func TestDedupKey(t *testing.T) {
	a := model.NewTransaction{AccountID: "acc", Date: "2024-03-01", AmountCents: 100, Payee: model.StringPtr("Shop")}
	b := a
	b.Payee = model.StringPtr("Shop")
	assert.Equal(t, dedupKey(a), dedupKey(b))

	b.Payee = nil
	assert.NotEqual(t, dedupKey(a), dedupKey(b))
	empty := ""
	b.Payee = &empty
	c := b
	c.Payee = nil
	assert.NotEqual(t, dedupKey(b), dedupKey(c))
}

func TestMixedCurrencyTotals(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("add", "--amount", "12.50", "--category", "Groceries", "--date", "2024-03-05")
	env.mustRun("add", "--amount", "3", "--currency", "eur", "--category", "Groceries", "--date", "2024-03-06")

	out := env.mustRun("list", "--month", "2024-03")
	assert.Contains(t, out, "2 transactions, total €3.00 + $12.50")

	out = env.mustRun("summary", "--month", "2024-03")
	assert.Contains(t, out, "also has EUR transactions")

	out = env.mustRun("summary", "--month", "2024-02")
	assert.NotContains(t, out, "without conversion")
}

func TestFormatTotals(t *testing.T) {
	txns := []model.Transaction{
		{AmountCents: 1250, Currency: "USD"},
		{AmountCents: 300, Currency: "EUR"},
		{AmountCents: 50, Currency: "USD"},
	}
	assert.Equal(t, "€3.00 + $13.00", formatTotals(txns))
	assert.Equal(t, "$13.00", formatTotals(txns[2:]))
	assert.Equal(t, "", formatTotals(nil))

	assert.Equal(t, []string{"EUR"}, otherCurrencies(txns, "USD"))
	assert.Empty(t, otherCurrencies(txns[2:], "USD"))
}
