package sessions

import (
	"context"
	"time"

	"github.com/scott12355/MeditationApp-sub000/internal/models"
)

// Repository describes persistence operations for Session rows in the local
// database. Implementations are backed by SQLite.
type Repository interface {
	// Save inserts the session when its surrogate key is unset (ID == 0) and
	// updates the existing row by surrogate key otherwise. On insert the
	// generated key is written back into session.ID.
	Save(ctx context.Context, session *models.Session) error

	// GetByUser returns every session owned by the user, regardless of status.
	GetByUser(ctx context.Context, userID string) ([]models.Session, error)

	// GetCompletedForDate returns COMPLETED sessions whose timestamp falls on
	// the given calendar day (UTC).
	GetCompletedForDate(ctx context.Context, userID string, day time.Time) ([]models.Session, error)

	// GetCompletedForMonth returns COMPLETED sessions whose timestamp falls in
	// the given calendar month (UTC).
	GetCompletedForMonth(ctx context.Context, userID string, year int, month time.Month) ([]models.Session, error)

	// DeleteAll removes every session row and returns the number deleted.
	DeleteAll(ctx context.Context) (int64, error)
}
