package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/testutil"
	"github.com/Veraticus/pennywise/internal/tui/components"
	"github.com/Veraticus/pennywise/internal/tui/state"
	"github.com/Veraticus/pennywise/internal/tui/viewmodel"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)
	march    = model.Month{Year: 2024, Month: time.March}
	april    = model.Month{Year: 2024, Month: time.April}
)

func newTestModel(t *testing.T, db *testutil.TestDB) Model {
	t.Helper()

	m, err := New(context.Background(),
		WithStore(db.Storage),
		WithClock(func() time.Time { return fixedNow }),
		WithSize(100, 40),
		WithNoticeTimeout(0),
	)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated, cmd
}

// loaded returns m after its first load of the selected month completes.
func loaded(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = update(t, m, m.loadHome(m.months.Month())())
	require.False(t, m.view.Loading)
	return m
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(context.Background())
	assert.Error(t, err)
}

func TestModel_StartsOnCurrentMonth(t *testing.T) {
	m := newTestModel(t, testutil.SetupTestDB(t))

	assert.Equal(t, march, m.months.Month())
	assert.True(t, m.view.Loading)
	assert.Contains(t, m.View(), "March 2024")
	assert.Contains(t, m.View(), "Loading...")
}

func TestModel_LoadsHome(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.MustCreateTransaction(testutil.Txn("2024-03-10", 4599, "cat_groceries", "Corner Market"))
	db.MustCreateTransaction(testutil.Txn("2024-03-12", 1000, "", ""))
	db.MustCreateTransaction(testutil.Txn("2024-04-01", 999, "cat_groceries", "Next Month"))

	m := loaded(t, newTestModel(t, db))

	assert.Equal(t, 2, m.list.Len())
	view := m.View()
	assert.Contains(t, view, "Total: $55.99")
	assert.Contains(t, view, "Transactions: 2")
	assert.Contains(t, view, "Corner Market")
	assert.Contains(t, view, "Uncategorized")
	assert.NotContains(t, view, "Next Month")
}

func TestModel_MonthSwitch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.MustCreateTransaction(testutil.Txn("2024-04-01", 999, "cat_groceries", "April Rent"))
	m := loaded(t, newTestModel(t, db))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Nil(t, cmd)
	assert.Equal(t, april, m.months.Month())

	changed := m.waitForMonth()()
	require.Equal(t, monthChangedMsg{month: april}, changed)

	m, cmd = update(t, m, changed)
	assert.NotNil(t, cmd)
	assert.True(t, m.view.Loading)
	assert.Contains(t, m.View(), "April 2024")

	// A March load finishing late must not overwrite April.
	m, _ = update(t, m, homeLoadedMsg{month: march, view: viewmodel.HomeView{Month: march, MonthLabel: "March 2024"}})
	assert.True(t, m.view.Loading)

	m = loaded(t, m)
	assert.Contains(t, m.View(), "April Rent")

	m, _ = update(t, m, runes("h"))
	assert.Equal(t, march, m.months.Month())
}

func TestModel_MonthChangedElsewhere(t *testing.T) {
	m := newTestModel(t, testutil.SetupTestDB(t))

	m.months.SetMonth(april)
	m.months.SetMonth(model.Month{Year: 2024, Month: time.May})

	msg := m.waitForMonth()()
	assert.Equal(t, monthChangedMsg{month: model.Month{Year: 2024, Month: time.May}}, msg)
}

func TestModel_AddTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	m := loaded(t, newTestModel(t, db))

	m, _ = update(t, m, runes("a"))
	require.Equal(t, StateAdd, m.State())
	assert.Contains(t, m.View(), "Add Transaction")

	m, cmd := update(t, m, components.AddFormSubmittedMsg{Form: viewmodel.AddForm{Amount: "12.3.4"}})
	assert.Nil(t, cmd)
	assert.Equal(t, StateAdd, m.State())
	assert.Contains(t, m.View(), viewmodel.MsgAmountFormat)

	m, cmd = update(t, m, components.AddFormSubmittedMsg{Form: viewmodel.AddForm{
		Amount:     "12.34",
		Payee:      "Bakery",
		CategoryID: "cat_groceries",
	}})
	require.NotNil(t, cmd)

	saved := cmd()
	require.IsType(t, transactionSavedMsg{}, saved)
	require.NoError(t, saved.(transactionSavedMsg).err)

	m, cmd = update(t, m, saved)
	assert.NotNil(t, cmd)
	assert.Equal(t, StateHome, m.State())
	assert.Contains(t, m.View(), "Transaction saved")

	txns, err := db.Storage.ListTransactionsByMonth(context.Background(), march)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, int64(1234), txns[0].AmountCents)
	assert.Equal(t, "2024-03-15", txns[0].Date)
	assert.Equal(t, "acc_cash", txns[0].AccountID)
	assert.Equal(t, "USD", txns[0].Currency)
}

func TestModel_AddCancel(t *testing.T) {
	m := loaded(t, newTestModel(t, testutil.SetupTestDB(t)))

	m, _ = update(t, m, runes("a"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.Equal(t, StateHome, m.State())
}

func TestModel_SaveFailureKeepsForm(t *testing.T) {
	m := loaded(t, newTestModel(t, testutil.SetupTestDB(t)))
	m, _ = update(t, m, runes("a"))

	failure := common.NewUserError("Could not save the transaction", errors.New("disk I/O error"))
	m, _ = update(t, m, transactionSavedMsg{err: failure})

	assert.Equal(t, StateAdd, m.State())
	assert.Contains(t, m.View(), "Could not save the transaction")
}

func TestModel_DeleteTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.MustCreateTransaction(testutil.Txn("2024-03-10", 4599, "cat_groceries", "Corner Market"))
	m := loaded(t, newTestModel(t, db))

	t.Run("declined", func(t *testing.T) {
		next, _ := update(t, m, runes("d"))
		require.Equal(t, StateConfirmDelete, next.State())
		assert.Contains(t, next.View(), "Delete Corner Market $45.99 on 2024-03-10? (y/n)")

		next, cmd := update(t, next, runes("n"))
		assert.Nil(t, cmd)
		assert.Equal(t, StateHome, next.State())
	})

	t.Run("confirmed", func(t *testing.T) {
		next, _ := update(t, m, runes("d"))
		next, cmd := update(t, next, runes("y"))
		require.NotNil(t, cmd)

		deleted := cmd()
		require.IsType(t, transactionDeletedMsg{}, deleted)
		next, _ = update(t, next, deleted)
		assert.Contains(t, next.View(), "Transaction deleted")

		next = loaded(t, next)
		assert.Equal(t, 0, next.list.Len())
	})
}

func TestModel_DeleteWithNothingSelected(t *testing.T) {
	m := loaded(t, newTestModel(t, testutil.SetupTestDB(t)))

	m, cmd := update(t, m, runes("d"))
	assert.Nil(t, cmd)
	assert.Equal(t, StateHome, m.State())
}

func TestModel_ErrorNotice(t *testing.T) {
	m := newTestModel(t, testutil.SetupTestDB(t))

	failure := common.NewUserError("Could not load March 2024", errors.New("database is locked"))
	m, _ = update(t, m, homeLoadedMsg{month: march, err: failure})

	assert.False(t, m.view.Loading)
	view := m.View()
	assert.Contains(t, view, "Could not load March 2024")
	assert.Contains(t, view, "esc to dismiss")
	assert.NotContains(t, view, "database is locked")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.notice.Visible())
}

func TestModel_NoticeExpiry(t *testing.T) {
	m := newTestModel(t, testutil.SetupTestDB(t))
	m, _ = update(t, m, transactionDeletedMsg{id: "x"})
	require.True(t, m.notice.Visible())

	m, _ = update(t, m, clearNoticeMsg{seq: m.notice.Seq - 1})
	assert.True(t, m.notice.Visible(), "an older timer leaves a newer notice alone")

	m, _ = update(t, m, clearNoticeMsg{seq: m.notice.Seq})
	assert.False(t, m.notice.Visible())
}

func TestModel_ClearNoticeAfter(t *testing.T) {
	m := newTestModel(t, testutil.SetupTestDB(t))
	assert.Nil(t, m.clearNoticeAfter(1))

	m.config.NoticeTimeout = time.Millisecond
	cmd := m.clearNoticeAfter(3)
	require.NotNil(t, cmd)
	assert.Equal(t, clearNoticeMsg{seq: 3}, cmd())
}

func TestModel_Help(t *testing.T) {
	m := newTestModel(t, testutil.SetupTestDB(t))

	m, _ = update(t, m, runes("?"))
	require.Equal(t, StateHelp, m.State())
	view := m.View()
	assert.Contains(t, view, "Keyboard shortcuts")
	assert.Contains(t, view, "add transaction")
	assert.Contains(t, view, "previous month")

	m, cmd := update(t, m, runes("q"))
	assert.Nil(t, cmd)
	assert.Equal(t, StateHome, m.State())
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, testutil.SetupTestDB(t))

	m, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModel_ForceQuitFromForm(t *testing.T) {
	m := newTestModel(t, testutil.SetupTestDB(t))
	m, _ = update(t, m, runes("a"))

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_WindowSize(t *testing.T) {
	m := newTestModel(t, testutil.SetupTestDB(t))

	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	assert.Nil(t, cmd)
	assert.Equal(t, 60, m.width)
	assert.Equal(t, 20, m.height)
}

func TestPublishMonth_KeepsLatest(t *testing.T) {
	ch := make(chan model.Month, 1)
	publishMonth(ch, march)
	publishMonth(ch, april)

	assert.Equal(t, april, <-ch)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected month %v", extra)
	default:
	}
}

func TestModel_CloseEndsMonthWait(t *testing.T) {
	db := testutil.SetupTestDB(t)
	months := state.NewMonthStore(march)

	m, err := New(context.Background(), WithStore(db.Storage), WithMonths(months))
	require.NoError(t, err)

	wait := m.waitForMonth()
	done := make(chan tea.Msg, 1)
	go func() { done <- wait() }()

	m.Close()
	select {
	case msg := <-done:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("waitForMonth still blocked after Close")
	}

	assert.NotPanics(t, func() {
		m.Close()
		months.SetMonth(april)
	})
	assert.Nil(t, m.waitForMonth()())
}

func TestMonthFeed_PublishAfterClose(t *testing.T) {
	feed := newMonthFeed()
	feed.publish(march)
	feed.close()

	assert.NotPanics(t, func() { feed.publish(april) })
	got, ok := <-feed.ch
	assert.True(t, ok)
	assert.Equal(t, march, got)
	_, ok = <-feed.ch
	assert.False(t, ok)
}
