package cli

import (
	"context"
	"time"
)

// SharedState holds context shared across all views via pointer.
type SharedState struct {
	App *App

	// ctx bounds every subscription opened by the TUI.
	ctx context.Context

	// LastDuration is the most recent countdown length entered in the TUI.
	LastDuration time.Duration

	// Terminal dimensions
	Width  int
	Height int
}

// ContentHeight returns the available height for view content,
// accounting for header (2 lines: title + separator),
// status bar (2 lines: separator + hints), and command bar (1 line).
func (s *SharedState) ContentHeight() int {
	return max(s.Height-5, 1)
}

// ContentWidth is the terminal width with a floor for narrow or unknown sizes.
func (s *SharedState) ContentWidth() int {
	return max(s.Width, 40)
}

// countdownDefault is the duration used when a countdown starts without one.
func (s *SharedState) countdownDefault() time.Duration {
	if s.LastDuration > 0 {
		return s.LastDuration
	}
	return s.App.Config.DefaultCountdown
}
