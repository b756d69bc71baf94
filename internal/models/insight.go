package models

import "time"

// Mood rating bounds (inclusive).
const (
	MoodMin = 1
	MoodMax = 5
)

// Insight is a user's free-text note and optional mood rating for a single
// calendar day. Identity is the (UserID, Date) pair: at most one row per user
// per day. Date carries day granularity only (normalized to midnight UTC).
//
// Synced is false while the local copy holds edits the remote has not
// acknowledged yet; it flips to true only after a successful push.
type Insight struct {
	ID        int64
	UserID    string
	Date      time.Time
	Notes     string
	Mood      *int
	UpdatedAt time.Time
	Synced    bool
}

// DayKey formats t as the YYYY-MM-DD cache/storage key used for day-keyed
// lookups.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// MonthKey formats a year/month pair as the YYYY-MM cache key.
func MonthKey(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// TruncateToDay normalizes t to midnight UTC, the canonical representation of
// a day-granularity date.
func TruncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
