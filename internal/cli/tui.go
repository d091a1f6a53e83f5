package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// runTUI runs the full-screen interface until the user quits or ctx ends.
func runTUI(ctx context.Context, app *App, home ViewID) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newAppModel(ctx, app, home)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(appModel); ok {
		fm.close()
	} else {
		m.close()
	}

	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
