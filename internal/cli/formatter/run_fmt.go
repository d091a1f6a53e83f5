package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

// FormatRunTable renders history rows newest first, as returned by the store.
func FormatRunTable(runs []*domain.TimerRun, now time.Time) string {
	headers := []string{"ID", "KIND", "STARTED", "PLANNED", "ELAPSED", "RESULT", "MARKS"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		planned := Dim("--")
		if r.Kind == domain.KindCountdown {
			planned = domain.FormatClock(r.Planned, false)
		}
		marks := Dim("--")
		if n := len(r.Marks); n > 0 {
			marks = fmt.Sprintf("%d", n)
		}
		rows = append(rows, []string{
			TruncID(r.ID),
			KindBadge(r.Kind),
			HumanTimestampFrom(r.StartedAt, now),
			planned,
			elapsedText(r),
			Outcome(r),
			marks,
		})
	}
	return RenderTable(headers, rows)
}

// FormatRunDetail renders one run with its laps and splits.
func FormatRunDetail(r *domain.TimerRun) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", Dim("ID:      "), r.ID)
	fmt.Fprintf(&b, "%s  %s\n", Dim("Kind:    "), KindBadge(r.Kind))
	fmt.Fprintf(&b, "%s  %s\n", Dim("Started: "), r.StartedAt.Local().Format("Mon Jan 2 2006 15:04:05"))
	if r.Kind == domain.KindCountdown {
		fmt.Fprintf(&b, "%s  %s\n", Dim("Planned: "), domain.FormatClock(r.Planned, false))
	}
	fmt.Fprintf(&b, "%s  %s\n", Dim("Elapsed: "), elapsedText(r))
	fmt.Fprintf(&b, "%s  %s\n", Dim("Result:  "), Outcome(r))
	if r.Note != "" {
		fmt.Fprintf(&b, "%s  %s\n", Dim("Note:    "), r.Note)
	}
	if len(r.Marks) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatLapTable(r.Laps(), r.Splits()))
	}
	return b.String()
}

// FormatLapTable renders laps and splits side by side. Lap n and split n
// share a row; the shorter list leaves blank cells.
func FormatLapTable(laps, splits []time.Duration) string {
	if len(laps) == 0 && len(splits) == 0 {
		return Dim("No laps or splits yet.") + "\n"
	}
	rows := make([][]string, 0, max(len(laps), len(splits)))
	for i := 0; i < len(laps) || i < len(splits); i++ {
		row := []string{fmt.Sprintf("%d", i+1), "", ""}
		if i < len(laps) {
			row[1] = domain.FormatClock(laps[i], true)
		}
		if i < len(splits) {
			row[2] = domain.FormatClock(splits[i], true)
		}
		rows = append(rows, row)
	}
	return RenderTable([]string{"#", "LAP", "SPLIT"}, rows)
}

// FormatSummary renders per-kind totals for the last days days.
func FormatSummary(sums []domain.RunSummary, days int) string {
	if len(sums) == 0 {
		return Dim(fmt.Sprintf("No runs in the last %d days.", days)) + "\n"
	}
	headers := []string{"KIND", "RUNS", "FINISHED", "TOTAL TIME", "COMPLETION"}
	rows := make([][]string, 0, len(sums))
	for _, s := range sums {
		completion := Dim("--")
		if s.Kind == domain.KindCountdown && s.Runs > 0 {
			completion = RenderProgress(float64(s.Completed)/float64(s.Runs), 10)
		}
		rows = append(rows, []string{
			KindBadge(s.Kind),
			fmt.Sprintf("%d", s.Runs),
			fmt.Sprintf("%d", s.Completed),
			FormatSpan(s.Total),
			completion,
		})
	}
	return RenderTable(headers, rows)
}

func elapsedText(r *domain.TimerRun) string {
	return domain.FormatClock(r.Elapsed, r.Kind == domain.KindStopwatch)
}
