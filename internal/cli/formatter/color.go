package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/timer"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)

	// StyleClock renders the large clock readout in timer views.
	StyleClock = lipgloss.NewStyle().Foreground(ColorFg).Bold(true).Padding(0, 2)
)

// StateBadge returns a colored indicator for a timer lifecycle phase.
func StateBadge(s timer.State) string {
	switch s {
	case timer.StateRunning:
		return StyleGreen.Render("● RUNNING")
	case timer.StatePaused:
		return StyleYellow.Render("‖ PAUSED")
	case timer.StateFinished:
		return StyleRed.Render("■ FINISHED")
	default:
		return StyleDim.Render("○ IDLE")
	}
}

// KindBadge returns a short colored label for a run kind.
func KindBadge(k domain.TimerKind) string {
	switch k {
	case domain.KindCountdown:
		return StyleBlue.Render("countdown")
	case domain.KindStopwatch:
		return StylePurple.Render("stopwatch")
	default:
		return StyleDim.Render(string(k))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
