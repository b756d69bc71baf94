// Package store implements the record store: durable local storage for
// sessions and daily insights behind a read-through, time-boxed cache.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/scott12355/MeditationApp-sub000/internal/common"
	"github.com/scott12355/MeditationApp-sub000/internal/logging"
	"github.com/scott12355/MeditationApp-sub000/internal/models"
	"github.com/scott12355/MeditationApp-sub000/internal/repositories/insights"
	"github.com/scott12355/MeditationApp-sub000/internal/repositories/sessions"
)

// cacheSize bounds the number of month/day aggregates kept in memory. A year
// of day keys plus month keys fits comfortably.
const cacheSize = 512

// Store is the record store. Completed-session reads for a day or month are
// served from an in-process cache with TTL eviction; any write through the
// store drops the whole cache rather than tracking which keys a write touched
// (a single save can affect both the day and the month view, so coarse
// invalidation is the correct trade here).
type Store struct {
	db       *sql.DB
	sessions sessions.Repository
	insights insights.Repository
	cache    *expirable.LRU[string, []models.Session]
	log      logging.Logger
	now      func() time.Time
}

// New constructs a Store over db with the given cache TTL.
func New(db *sql.DB, ttl time.Duration, log logging.Logger) *Store {
	return &Store{
		db:       db,
		sessions: sessions.NewSQLiteRepository(db),
		insights: insights.NewSQLiteRepository(db),
		cache:    expirable.NewLRU[string, []models.Session](cacheSize, nil, ttl),
		log:      log,
		now:      time.Now,
	}
}

// GetForDate returns the user's COMPLETED sessions for the given calendar day,
// serving from cache when a fresh entry exists.
func (s *Store) GetForDate(ctx context.Context, userID string, date time.Time) ([]models.Session, error) {
	key := models.DayKey(date)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	result, err := s.sessions.GetCompletedForDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, result)
	return result, nil
}

// GetForMonth returns the user's COMPLETED sessions for the given calendar
// month, serving from cache when a fresh entry exists.
func (s *Store) GetForMonth(ctx context.Context, userID string, year int, month time.Month) ([]models.Session, error) {
	key := models.MonthKey(year, month)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	result, err := s.sessions.GetCompletedForMonth(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, result)
	return result, nil
}

// GetSessionsForUser returns every session owned by the user, bypassing the
// cache. Sync reconciliation needs the full uncached picture, including
// REQUESTED and FAILED rows.
func (s *Store) GetSessionsForUser(ctx context.Context, userID string) ([]models.Session, error) {
	return s.sessions.GetByUser(ctx, userID)
}

// Save inserts or updates the session (by surrogate key) and invalidates the
// entire cache.
func (s *Store) Save(ctx context.Context, session *models.Session) error {
	if err := s.sessions.Save(ctx, session); err != nil {
		return err
	}
	s.cache.Purge()
	return nil
}

// ClearAll deletes every session row (logout) and invalidates the cache.
func (s *Store) ClearAll(ctx context.Context) (int64, error) {
	count, err := s.sessions.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.cache.Purge()
	return count, nil
}

// GetInsight returns the insight for (user, day) or common.ErrNotFound.
func (s *Store) GetInsight(ctx context.Context, userID string, date time.Time) (*models.Insight, error) {
	return s.insights.Get(ctx, userID, date)
}

// SaveInsight validates the mood rating, stamps UpdatedAt, and upserts the
// insight by (user, date).
func (s *Store) SaveInsight(ctx context.Context, insight *models.Insight) error {
	if insight.Mood != nil && (*insight.Mood < models.MoodMin || *insight.Mood > models.MoodMax) {
		return fmt.Errorf("mood %d out of range [%d,%d]: %w",
			*insight.Mood, models.MoodMin, models.MoodMax, common.ErrValidation)
	}

	insight.UpdatedAt = s.now()
	if err := s.insights.Save(ctx, insight); err != nil {
		return err
	}
	s.cache.Purge()
	return nil
}

// GetUnsyncedInsights returns insights whose local edits the remote has not
// acknowledged.
func (s *Store) GetUnsyncedInsights(ctx context.Context) ([]models.Insight, error) {
	return s.insights.GetUnsynced(ctx)
}

// MarkInsightSynced flips the synced flag for the insight's (user, date) row.
func (s *Store) MarkInsightSynced(ctx context.Context, insight *models.Insight) error {
	return s.insights.MarkSynced(ctx, insight.UserID, insight.Date)
}

// ClearAllInsights deletes every insight row (logout).
func (s *Store) ClearAllInsights(ctx context.Context) (int64, error) {
	count, err := s.insights.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.cache.Purge()
	return count, nil
}

// InvalidateCache drops every cached aggregate. The sync orchestrator calls
// this once after a run's writes complete.
func (s *Store) InvalidateCache() {
	s.cache.Purge()
}
