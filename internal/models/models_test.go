package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSessionStatus(t *testing.T) {
	tests := []struct {
		in   string
		want SessionStatus
	}{
		{"COMPLETED", StatusCompleted},
		{"completed", StatusCompleted},
		{" Completed ", StatusCompleted},
		{"FAILED", StatusFailed},
		{"failed", StatusFailed},
		{"REQUESTED", StatusRequested},
		{"", StatusRequested},
		{"in_progress", StatusRequested},
		{"some legacy value", StatusRequested},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSessionStatus(tt.in))
		})
	}
}

func TestSessionStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, StatusRequested.IsTerminal())
}

func TestDayAndMonthKeys(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	assert.NoError(t, err)

	// 23:30 local on March 9 is already March 10 in UTC; keys are UTC-based.
	local := time.Date(2026, 3, 9, 23, 30, 0, 0, loc)
	assert.Equal(t, "2026-03-10", DayKey(local))

	assert.Equal(t, "2026-03", MonthKey(2026, time.March))
	assert.Equal(t, "2026-12", MonthKey(2026, time.December))
}

func TestTruncateToDay(t *testing.T) {
	in := time.Date(2026, 3, 10, 17, 45, 12, 999, time.UTC)
	got := TruncateToDay(in)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, got, TruncateToDay(got))
}
