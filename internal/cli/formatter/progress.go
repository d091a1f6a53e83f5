package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a bar like [████░░░░]  45%.
// Green above two thirds, yellow above one third, red below.
func RenderProgress(pct float64, width int) string {
	pct = clampUnit(pct)
	width = max(width, 2)

	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct < 0.33:
		style = StyleRed
	case pct < 0.66:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}

// RenderCountdownBar renders the fraction of a countdown that remains, with
// no brackets or percentage.
func RenderCountdownBar(remainingPct float64, width int) string {
	remainingPct = clampUnit(remainingPct)
	width = max(width, 2)
	filled := min(int(remainingPct*float64(width)+0.5), width)

	style := StyleBlue
	if remainingPct < 0.1 {
		style = StyleRed
	}
	return style.Render(strings.Repeat(filledBlock, filled)) +
		StyleDim.Render(strings.Repeat(emptyBlock, width-filled))
}

func clampUnit(v float64) float64 {
	return min(max(v, 0), 1)
}
