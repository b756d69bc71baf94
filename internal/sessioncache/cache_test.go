package sessioncache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scott12355/MeditationApp-sub000/internal/models"
)

type fakeLoader struct {
	mu         sync.Mutex
	dateCalls  int
	monthCalls int

	byDate  map[string][]models.Session
	byMonth map[string][]models.Session
}

func (f *fakeLoader) GetForDate(ctx context.Context, userID string, date time.Time) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dateCalls++
	return f.byDate[models.DayKey(date)], nil
}

func (f *fakeLoader) GetForMonth(ctx context.Context, userID string, year int, month time.Month) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.monthCalls++
	return f.byMonth[models.MonthKey(year, month)], nil
}

func completed(id string, ts time.Time) models.Session {
	return models.Session{SessionID: id, UserID: "u1", Timestamp: ts, Status: models.StatusCompleted}
}

func TestForDate_CachesUntilCleared(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	loader := &fakeLoader{byDate: map[string][]models.Session{
		"2025-03-10": {completed("S1", day.Add(8 * time.Hour))},
	}}
	c := New(loader)
	ctx := context.Background()

	got, err := c.ForDate(ctx, "u1", day)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// second read is a cache hit
	_, err = c.ForDate(ctx, "u1", day)
	require.NoError(t, err)
	assert.Equal(t, 1, loader.dateCalls)

	// no TTL: still cached much later; only explicit clearing reloads
	c.ClearAll()
	_, err = c.ForDate(ctx, "u1", day)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.dateCalls)
}

func TestHasSessionOnDate_PopulatedByDatePath(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	empty := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	loader := &fakeLoader{byDate: map[string][]models.Session{
		"2025-03-10": {completed("S1", day.Add(8 * time.Hour))},
	}}
	c := New(loader)
	ctx := context.Background()

	// unknown day: false, and no load is triggered
	assert.False(t, c.HasSessionOnDate(day))
	assert.Equal(t, 0, loader.dateCalls)

	_, err := c.ForDate(ctx, "u1", day)
	require.NoError(t, err)
	_, err = c.ForDate(ctx, "u1", empty)
	require.NoError(t, err)

	assert.True(t, c.HasSessionOnDate(day))
	assert.False(t, c.HasSessionOnDate(empty))
}

func TestHasSessionOnDate_PopulatedByMonthPath(t *testing.T) {
	d1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)
	loader := &fakeLoader{byMonth: map[string][]models.Session{
		"2025-03": {completed("S1", d1), completed("S2", d2)},
	}}
	c := New(loader)

	_, err := c.ForMonth(context.Background(), "u1", 2025, time.March)
	require.NoError(t, err)

	assert.True(t, c.HasSessionOnDate(d1))
	assert.True(t, c.HasSessionOnDate(d2))
	assert.False(t, c.HasSessionOnDate(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)))
}

func TestClearMonth_DropsOnlyThatMonth(t *testing.T) {
	mar := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	apr := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	loader := &fakeLoader{
		byMonth: map[string][]models.Session{
			"2025-03": {completed("S1", mar)},
			"2025-04": {completed("S2", apr)},
		},
		byDate: map[string][]models.Session{
			"2025-03-10": {completed("S1", mar)},
		},
	}
	c := New(loader)
	ctx := context.Background()

	_, err := c.ForMonth(ctx, "u1", 2025, time.March)
	require.NoError(t, err)
	_, err = c.ForMonth(ctx, "u1", 2025, time.April)
	require.NoError(t, err)
	_, err = c.ForDate(ctx, "u1", mar)
	require.NoError(t, err)

	c.ClearMonth(2025, time.March)

	// March entries reload, April stays cached.
	assert.False(t, c.HasSessionOnDate(mar))
	assert.True(t, c.HasSessionOnDate(apr))

	_, err = c.ForMonth(ctx, "u1", 2025, time.April)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.monthCalls)

	_, err = c.ForMonth(ctx, "u1", 2025, time.March)
	require.NoError(t, err)
	assert.Equal(t, 3, loader.monthCalls)
}

func TestConcurrentReads(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	loader := &fakeLoader{byDate: map[string][]models.Session{
		"2025-03-10": {completed("S1", day.Add(8 * time.Hour))},
	}}
	c := New(loader)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ForDate(context.Background(), "u1", day)
			assert.NoError(t, err)
			c.HasSessionOnDate(day)
		}()
	}
	wg.Wait()
}
