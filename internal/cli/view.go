package cli

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewID identifies each type of view in the TUI.
type ViewID int

const (
	ViewDashboard ViewID = iota
	ViewCountdown
	ViewStopwatch
	ViewHistory
	ViewForm
)

// View is the interface that all TUI views must implement.
// It extends tea.Model with navigation and help metadata.
type View interface {
	tea.Model
	ID() ViewID
	ShortHelp() []key.Binding // key hints shown in the bottom bar
	Title() string            // breadcrumb segment for this view
}

// closer is implemented by views that hold subscriptions. The app model
// calls Close when the view leaves the stack.
type closer interface {
	Close()
}

func closeView(v View) {
	if c, ok := v.(closer); ok {
		c.Close()
	}
}
