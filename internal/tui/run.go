package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/pennywise/internal/common"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the home screen until the user quits or ctx is canceled.
func Run(ctx context.Context, opts ...Option) error {
	m, err := New(ctx, opts...)
	if err != nil {
		return err
	}
	defer m.Close()

	// Anything written to stderr would corrupt the screen.
	previous := slog.Default()
	defer slog.SetDefault(previous)

	if m.config.LogFile != "" {
		f, logErr := tea.LogToFile(m.config.LogFile, "pennywise")
		if logErr != nil {
			return fmt.Errorf("failed to open log file: %w", logErr)
		}
		defer func() { _ = f.Close() }()
		slog.SetDefault(common.NewLogger(f, m.config.LogLevel, "json"))
	} else {
		slog.SetDefault(common.NewLogger(io.Discard, m.config.LogLevel, "console"))
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
