package insights

import (
	"context"
	"time"

	"github.com/scott12355/MeditationApp-sub000/internal/models"
)

// Repository describes persistence operations for daily insight rows.
// At most one row exists per (user, date); Save upserts on that pair.
type Repository interface {
	// Get returns the insight for the user and calendar day, or
	// common.ErrNotFound when none exists.
	Get(ctx context.Context, userID string, date time.Time) (*models.Insight, error)

	// Save upserts the insight by (user, date). The caller is responsible for
	// stamping UpdatedAt; the repository persists fields as given.
	Save(ctx context.Context, insight *models.Insight) error

	// GetUnsynced returns every insight with local edits not yet acknowledged
	// by the remote.
	GetUnsynced(ctx context.Context) ([]models.Insight, error)

	// MarkSynced flips the synced flag for the (user, date) row.
	MarkSynced(ctx context.Context, userID string, date time.Time) error

	// DeleteAll removes every insight row and returns the number deleted.
	DeleteAll(ctx context.Context) (int64, error)
}
