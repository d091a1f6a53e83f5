package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatLapTable_PairsLapsAndSplits(t *testing.T) {
	out := stripANSI(FormatLapTable(
		[]time.Duration{time.Second, 2500 * time.Millisecond},
		[]time.Duration{time.Second, 3500 * time.Millisecond, 4 * time.Second},
	))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 5, "header, rule and three rows")
	assert.Contains(t, lines[0], "LAP")
	assert.Contains(t, lines[2], "00:01.000")
	assert.Contains(t, lines[3], "00:02.500")
	assert.Contains(t, lines[3], "00:03.500")
	assert.Contains(t, lines[4], "00:04.000")
}

func TestFormatLapTable_Empty(t *testing.T) {
	assert.Contains(t, FormatLapTable(nil, nil), "No laps")
}

func TestFormatRunTable(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	runs := []*domain.TimerRun{
		{
			ID: "11111111-aaaa", Kind: domain.KindCountdown, StartedAt: now.Add(-time.Hour),
			Planned: 25 * time.Minute, Elapsed: 25 * time.Minute, Completed: true,
		},
		{
			ID: "22222222-bbbb", Kind: domain.KindStopwatch, StartedAt: now.Add(-2 * time.Hour),
			Elapsed: 61500 * time.Millisecond, Completed: true,
			Marks: domain.NewStopwatchMarks([]time.Duration{time.Second}, nil),
		},
	}

	out := stripANSI(FormatRunTable(runs, now))

	assert.Contains(t, out, "11111111")
	assert.NotContains(t, out, "aaaa")
	assert.Contains(t, out, "25:00")
	assert.Contains(t, out, "01:01.500")
	assert.Contains(t, out, "1 hour ago")
	assert.Contains(t, out, "finished")
}

func TestFormatRunDetail(t *testing.T) {
	run := &domain.TimerRun{
		ID: "33333333", Kind: domain.KindStopwatch, StartedAt: time.Now(),
		Elapsed: 3 * time.Second, Completed: true, Note: "intervals",
		Marks: domain.NewStopwatchMarks([]time.Duration{time.Second, 2 * time.Second}, []time.Duration{time.Second}),
	}

	out := stripANSI(FormatRunDetail(run))

	assert.Contains(t, out, "33333333")
	assert.Contains(t, out, "00:03.000")
	assert.Contains(t, out, "intervals")
	assert.Contains(t, out, "00:02.000")
	assert.NotContains(t, out, "Planned")
}

func TestFormatSummary(t *testing.T) {
	out := stripANSI(FormatSummary([]domain.RunSummary{
		{Kind: domain.KindCountdown, Runs: 4, Completed: 3, Total: 90 * time.Minute},
		{Kind: domain.KindStopwatch, Runs: 1, Completed: 1, Total: 45 * time.Second},
	}, 7))

	assert.Contains(t, out, "countdown")
	assert.Contains(t, out, "1h 30m")
	assert.Contains(t, out, "45s")
	assert.Contains(t, out, " 75%")

	assert.Contains(t, FormatSummary(nil, 7), "last 7 days")
}
