package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/phonos/internal/auth"
	"github.com/desertthunder/phonos/internal/shared"
	"github.com/desertthunder/phonos/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for playlist management and playback.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.flow.State() != auth.Authenticated {
		return fmt.Errorf("%w: run 'phonos auth login' first", shared.ErrNotAuthenticated)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/phonos-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.library, r.gateway, r.searcher, r.dispatcher, r.channel)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
