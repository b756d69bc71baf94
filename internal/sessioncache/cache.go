// Package sessioncache provides a process-wide read cache for completed
// sessions, layered in front of the record store for read-heavy call sites
// such as calendar views.
//
// Unlike the record store's internal cache there is no TTL: entries live until
// explicitly cleared. The sync orchestrator clears this cache after every run
// that wrote updates, and logout clears it entirely.
package sessioncache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/scott12355/MeditationApp-sub000/internal/models"
)

// Loader is the read path behind the cache, satisfied by *store.Store.
type Loader interface {
	GetForDate(ctx context.Context, userID string, date time.Time) ([]models.Session, error)
	GetForMonth(ctx context.Context, userID string, year int, month time.Month) ([]models.Session, error)
}

// Cache is safe for concurrent use from UI reads and background sync; reads
// are lock-free (sync.Map).
type Cache struct {
	loader Loader

	days   sync.Map // YYYY-MM-DD -> []models.Session
	months sync.Map // YYYY-MM    -> []models.Session
	hasDay sync.Map // YYYY-MM-DD -> bool
}

func New(loader Loader) *Cache {
	return &Cache{loader: loader}
}

// ForDate returns the completed sessions for the day, consulting the cache
// first and delegating to the loader on miss.
func (c *Cache) ForDate(ctx context.Context, userID string, date time.Time) ([]models.Session, error) {
	key := models.DayKey(date)
	if v, ok := c.days.Load(key); ok {
		return v.([]models.Session), nil
	}

	result, err := c.loader.GetForDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	c.days.Store(key, result)
	c.hasDay.Store(key, len(result) > 0)
	return result, nil
}

// ForMonth returns the completed sessions for the month, consulting the cache
// first and delegating to the loader on miss. Populating a month also records
// which of its days have sessions, feeding HasSessionOnDate.
func (c *Cache) ForMonth(ctx context.Context, userID string, year int, month time.Month) ([]models.Session, error) {
	key := models.MonthKey(year, month)
	if v, ok := c.months.Load(key); ok {
		return v.([]models.Session), nil
	}

	result, err := c.loader.GetForMonth(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	c.months.Store(key, result)
	for _, s := range result {
		c.hasDay.Store(models.DayKey(s.Timestamp), true)
	}
	return result, nil
}

// HasSessionOnDate reports whether a completed session is known to exist on
// the given day. It is a best-effort hint derived from whichever read path
// populated the cache: unknown days read as false and no load is triggered.
func (c *Cache) HasSessionOnDate(date time.Time) bool {
	v, ok := c.hasDay.Load(models.DayKey(date))
	return ok && v.(bool)
}

// ClearMonth invalidates the month entry plus every day entry and day hint
// belonging to that month.
func (c *Cache) ClearMonth(year int, month time.Month) {
	monthKey := models.MonthKey(year, month)
	c.months.Delete(monthKey)

	prefix := monthKey + "-"
	deleteByPrefix(&c.days, prefix)
	deleteByPrefix(&c.hasDay, prefix)
}

// ClearAll invalidates everything.
func (c *Cache) ClearAll() {
	clearMap(&c.days)
	clearMap(&c.months)
	clearMap(&c.hasDay)
}

func deleteByPrefix(m *sync.Map, prefix string) {
	m.Range(func(k, _ any) bool {
		if strings.HasPrefix(k.(string), prefix) {
			m.Delete(k)
		}
		return true
	})
}

func clearMap(m *sync.Map) {
	m.Range(func(k, _ any) bool {
		m.Delete(k)
		return true
	})
}
