package tui

import (
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/tui/viewmodel"
)

// Data loading messages.
type homeLoadedMsg struct {
	err   error
	view  viewmodel.HomeView
	month model.Month
}

// monthChangedMsg is delivered when the shared month store changes.
type monthChangedMsg struct {
	month model.Month
}

// Write results.
type transactionSavedMsg struct {
	err error
	id  string
}

type transactionDeletedMsg struct {
	err error
	id  string
}

// clearNoticeMsg hides the notice with the matching sequence number.
type clearNoticeMsg struct {
	seq int
}
