package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Veraticus/pennywise/internal/common"
	"github.com/Veraticus/pennywise/internal/model"
	"github.com/Veraticus/pennywise/internal/service"
	"github.com/Veraticus/pennywise/internal/tui/components"
	"github.com/Veraticus/pennywise/internal/tui/state"
	"github.com/Veraticus/pennywise/internal/tui/themes"
	"github.com/Veraticus/pennywise/internal/tui/viewmodel"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// State represents the current state of the TUI.
type State int

const (
	StateHome State = iota
	StateAdd
	StateConfirmDelete
	StateHelp
)

// Notice texts.
const (
	noticeSaved   = "Transaction saved"
	noticeDeleted = "Transaction deleted"
)

// Model holds the main TUI state.
type Model struct {
	ctx           context.Context
	store         service.HomeStore
	loader        *viewmodel.HomeLoader
	months        *state.MonthStore
	monthCh       <-chan model.Month
	feed          *monthFeed
	unsubscribe   func()
	pendingDelete *model.Transaction
	theme         themes.Theme
	keymap        KeyMap
	help          help.Model
	list          components.TransactionListModel
	form          components.AddFormModel
	notice        components.Notice
	view          viewmodel.HomeView
	config        Config
	width         int
	height        int
	state         State
	quitting      bool
}

// New creates the home screen model. Call Close when done with it.
func New(ctx context.Context, opts ...Option) (Model, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Store == nil {
		return Model{}, fmt.Errorf("storage is required")
	}
	return newModel(ctx, cfg), nil
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Months == nil {
		cfg.Months = state.NewMonthStore(model.MonthOf(cfg.Now()))
	}

	feed := newMonthFeed()
	unsubscribe := cfg.Months.Subscribe(feed.publish)

	m := Model{
		ctx:         ctx,
		store:       cfg.Store,
		loader:      viewmodel.NewHomeLoader(cfg.Store),
		months:      cfg.Months,
		monthCh:     feed.ch,
		feed:        feed,
		unsubscribe: unsubscribe,
		theme:       cfg.Theme,
		keymap:      DefaultKeyMap(),
		help:        help.New(),
		list:        components.NewTransactionList(cfg.Theme),
		view:        viewmodel.LoadingView(cfg.Months.Month()),
		config:      cfg,
		width:       cfg.Width,
		height:      cfg.Height,
		state:       StateHome,
	}
	m.resize()
	return m
}

// publishMonth leaves month in ch, replacing a month nobody has read yet.
func publishMonth(ch chan model.Month, month model.Month) {
	for {
		select {
		case ch <- month:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Close stops listening to the month store and ends any pending wait for
// a month change. It is safe to call more than once.
func (m Model) Close() {
	m.unsubscribe()
	m.feed.close()
}

// monthFeed carries month store changes to the model. The store may still
// be running a callback when the subscription is removed, so publish and
// close share a lock.
type monthFeed struct {
	ch     chan model.Month
	mu     sync.Mutex
	closed bool
}

func newMonthFeed() *monthFeed {
	return &monthFeed{ch: make(chan model.Month, 1)}
}

func (f *monthFeed) publish(month model.Month) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	publishMonth(f.ch, month)
}

func (f *monthFeed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
}

// State returns the screen being shown.
func (m Model) State() State {
	return m.state
}

// Init starts loading the selected month.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadHome(m.months.Month()), m.waitForMonth())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case homeLoadedMsg:
		// A slower load for a month the user already left.
		if msg.month != m.months.Month() {
			return m, nil
		}
		if msg.err != nil {
			m.view.Loading = false
			return m, m.showNotice(components.NoticeError, common.UserMessage(msg.err))
		}
		m.view = msg.view
		m.list.SetTransactions(msg.view.Transactions)
		m.resize()
		return m, nil

	case monthChangedMsg:
		m.view = viewmodel.LoadingView(msg.month)
		m.list.SetTransactions(nil)
		return m, tea.Batch(m.loadHome(msg.month), m.waitForMonth())

	case components.AddFormSubmittedMsg:
		txn, errs := msg.Form.Validate(m.config.Now(), m.config.Defaults)
		m.form.SetErrors(errs)
		if !errs.Empty() {
			return m, nil
		}
		return m, m.saveTransaction(txn)

	case components.AddFormCancelledMsg:
		m.state = StateHome
		return m, nil

	case transactionSavedMsg:
		if msg.err != nil {
			return m, m.showNotice(components.NoticeError, common.UserMessage(msg.err))
		}
		m.state = StateHome
		return m, tea.Batch(
			m.showNotice(components.NoticeSuccess, noticeSaved),
			m.loadHome(m.months.Month()),
		)

	case transactionDeletedMsg:
		if msg.err != nil {
			return m, m.showNotice(components.NoticeError, common.UserMessage(msg.err))
		}
		return m, tea.Batch(
			m.showNotice(components.NoticeSuccess, noticeDeleted),
			m.loadHome(m.months.Month()),
		)

	case clearNoticeMsg:
		if msg.seq == m.notice.Seq {
			m.dismissNotice()
		}
		return m, nil
	}

	switch m.state {
	case StateAdd:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case StateHelp:
		return m.updateHelp(msg)
	default:
		return m.updateHome(msg)
	}
}

func (m Model) updateHome(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keymap.Help):
		m.state = StateHelp
		m.help.ShowAll = true
		return m, nil
	case key.Matches(keyMsg, m.keymap.PrevMonth):
		m.months.SetMonth(m.months.Month().Prev())
		return m, nil
	case key.Matches(keyMsg, m.keymap.NextMonth):
		m.months.SetMonth(m.months.Month().Next())
		return m, nil
	case key.Matches(keyMsg, m.keymap.Refresh):
		m.view.Loading = true
		return m, m.loadHome(m.months.Month())
	case key.Matches(keyMsg, m.keymap.Add):
		m.form = components.NewAddForm(m.theme, m.view.Categories, model.FormatDate(m.config.Now()))
		m.state = StateAdd
		return m, nil
	case key.Matches(keyMsg, m.keymap.Delete):
		txn, ok := m.list.Selected()
		if !ok {
			return m, nil
		}
		m.pendingDelete = &txn
		m.state = StateConfirmDelete
		return m, nil
	case key.Matches(keyMsg, m.keymap.Dismiss):
		m.dismissNotice()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	target := m.pendingDelete
	m.pendingDelete = nil
	m.state = StateHome
	if key.Matches(keyMsg, m.keymap.Confirm) && target != nil {
		return m, m.deleteTransaction(target.ID)
	}
	return m, nil
}

func (m Model) updateHelp(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.Matches(keyMsg, m.keymap.Help, m.keymap.Dismiss, m.keymap.Quit) {
		m.state = StateHome
		m.help.ShowAll = false
	}
	return m, nil
}

// showNotice replaces the notice and schedules it to clear.
func (m *Model) showNotice(kind components.NoticeKind, text string) tea.Cmd {
	m.notice = components.Notice{Text: text, Kind: kind, Seq: m.notice.Seq + 1}
	return m.clearNoticeAfter(m.notice.Seq)
}

func (m *Model) dismissNotice() {
	m.notice = components.Notice{Seq: m.notice.Seq}
}

// resize fits the transaction list into whatever the header, summary and
// breakdown leave.
func (m *Model) resize() {
	m.help.Width = m.width
	const chrome = 14
	used := chrome + len(m.view.Breakdown())
	m.list.SetSize(m.width-2, m.height-used)
}
