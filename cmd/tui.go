package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"packtrack/internal/shared"
	"packtrack/internal/ui"
)

// TUI launches the interactive terminal UI for tracklist reconciliation.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: catalog not configured", shared.ErrServiceUnavailable)
	}

	if err := r.ensureDatabase(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/packtrack-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.engine, r.series)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
