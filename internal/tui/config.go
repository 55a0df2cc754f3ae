package tui

import (
	"log/slog"
	"time"

	"github.com/Veraticus/pennywise/internal/service"
	"github.com/Veraticus/pennywise/internal/tui/state"
	"github.com/Veraticus/pennywise/internal/tui/themes"
	"github.com/Veraticus/pennywise/internal/tui/viewmodel"
)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Store    service.HomeStore
	Months   *state.MonthStore
	Now      func() time.Time
	Defaults viewmodel.Defaults
	// LogFile receives log output while the TUI owns the terminal.
	// Empty discards it.
	LogFile  string
	LogLevel slog.Level
	Width    int
	Height   int
	// NoticeTimeout is how long a notice stays up. Zero keeps notices
	// until they are dismissed.
	NoticeTimeout time.Duration
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:         themes.Default,
		Now:           time.Now,
		Width:         80,
		Height:        24,
		NoticeTimeout: 4 * time.Second,
		Defaults: viewmodel.Defaults{
			AccountID: "acc_cash",
			Currency:  "USD",
		},
	}
}

// WithStore sets the store the screens read and write.
func WithStore(store service.HomeStore) Option {
	return func(c *Config) {
		c.Store = store
	}
}

// WithMonths shares a month store with the TUI.
func WithMonths(months *state.MonthStore) Option {
	return func(c *Config) {
		c.Months = months
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithDefaults sets the account and currency for new transactions.
func WithDefaults(d viewmodel.Defaults) Option {
	return func(c *Config) {
		c.Defaults = d
	}
}

// WithClock replaces time.Now, which decides the starting month and the
// add form's default date.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

// WithLogging sends log output to file at level while the TUI runs.
func WithLogging(file string, level slog.Level) Option {
	return func(c *Config) {
		c.LogFile = file
		c.LogLevel = level
	}
}

// WithNoticeTimeout sets how long notices stay up.
func WithNoticeTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.NoticeTimeout = d
	}
}
