package tui

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/setupwizard/internal/device"
	"github.com/mark3labs/setupwizard/internal/logger"
)

// Run starts the wizard on the terminal and blocks until it exits. When
// watchPath is set, external edits to that device profile are fed into the
// running flow.
func Run(ctx context.Context, opts Options, watchPath string) (Outcome, error) {
	app := NewApp(ctx, opts)
	p := tea.NewProgram(app, tea.WithContext(ctx))

	if watchPath != "" {
		w, err := device.NewWatcher(watchPath, func() { p.Send(ProfileChangedMsg{}) })
		if err == nil {
			err = w.Start()
		}
		if err != nil {
			logger.Warn("tui: not watching %s: %v", watchPath, err)
		} else {
			defer func() { _ = w.Stop() }()
		}
	}

	if _, err := p.Run(); err != nil {
		if saveErr := app.Interrupted(); saveErr != nil {
			logger.Error("tui: saving flow state: %v", saveErr)
		}
		return app.Outcome(), fmt.Errorf("wizard stopped: %w", err)
	}
	return app.Outcome(), nil
}
