package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	loadTimeout  = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// loadHome fetches the home screen for month.
func (m Model) loadHome(month model.Month) tea.Cmd {
	loader := m.loader
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, loadTimeout)
		defer cancel()

		view, err := loader.Load(ctx, month)
		if err != nil {
			slog.Error("Failed to load month", "month", month.String(), "error", err)
			err = common.NewUserError("Could not load "+month.Label(), err)
		}
		return homeLoadedMsg{month: month, view: view, err: err}
	}
}

// waitForMonth delivers the next change published by the month store.
func (m Model) waitForMonth() tea.Cmd {
	ch := m.monthCh
	return func() tea.Msg {
		month, ok := <-ch
		if !ok {
			return nil
		}
		return monthChangedMsg{month: month}
	}
}

// saveTransaction inserts txn.
func (m Model) saveTransaction(txn model.NewTransaction) tea.Cmd {
	store := m.store
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, writeTimeout)
		defer cancel()

		id, err := store.CreateTransaction(ctx, txn)
		if err != nil {
			slog.Error("Failed to save transaction", "error", err)
			err = common.NewUserError("Could not save the transaction", err)
		}
		return transactionSavedMsg{id: id, err: err}
	}
}

// deleteTransaction removes the transaction with id.
func (m Model) deleteTransaction(id string) tea.Cmd {
	store := m.store
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, writeTimeout)
		defer cancel()

		err := store.DeleteTransaction(ctx, id)
		if err != nil {
			slog.Error("Failed to delete transaction", "id", id, "error", err)
			err = common.NewUserError("Could not delete the transaction", err)
		}
		return transactionDeletedMsg{id: id, err: err}
	}
}

// clearNoticeAfter schedules the notice numbered seq to be hidden.
func (m Model) clearNoticeAfter(seq int) tea.Cmd {
	if m.config.NoticeTimeout <= 0 {
		return nil
	}
	return tea.Tick(m.config.NoticeTimeout, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}
