package insights

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/scott12355/MeditationApp-sub000/internal/common"
	"github.com/scott12355/MeditationApp-sub000/internal/dbx"
	"github.com/scott12355/MeditationApp-sub000/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, userID string, date time.Time) (*models.Insight, error) {
	query := `SELECT id, user_id, date, notes, mood, updated_at, synced
		FROM insights WHERE user_id=? AND date=?`

	row := r.db.QueryRowContext(ctx, query, userID, models.DayKey(date))

	item, err := scanInsight(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select insight: %w", err)
	}
	return item, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, insight *models.Insight) error {
	query := `INSERT INTO insights (user_id, date, notes, mood, updated_at, synced)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			notes = excluded.notes,
			mood = excluded.mood,
			updated_at = excluded.updated_at,
			synced = excluded.synced`

	_, err := r.db.ExecContext(ctx, query,
		insight.UserID, models.DayKey(insight.Date), insight.Notes, moodToValue(insight.Mood),
		insight.UpdatedAt.UnixMilli(), boolToInt(insight.Synced))
	if err != nil {
		return fmt.Errorf("failed to save insight: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetUnsynced(ctx context.Context) ([]models.Insight, error) {
	query := `SELECT id, user_id, date, notes, mood, updated_at, synced
		FROM insights WHERE synced=0 ORDER BY date`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select unsynced insights: %w", err)
	}
	defer rows.Close()

	var result []models.Insight
	for rows.Next() {
		item, err := scanInsight(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, userID string, date time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE insights SET synced=1 WHERE user_id=? AND date=?`,
		userID, models.DayKey(date))
	if err != nil {
		return fmt.Errorf("failed to mark insight synced: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM insights`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete insights: %w", err)
	}
	return res.RowsAffected()
}

func scanInsight(scan func(dest ...any) error) (*models.Insight, error) {
	var (
		item      models.Insight
		dateStr   string
		mood      sql.NullInt64
		updatedMS int64
		synced    int64
	)
	if err := scan(&item.ID, &item.UserID, &dateStr, &item.Notes, &mood, &updatedMS, &synced); err != nil {
		return nil, err
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse insight date %q: %w", dateStr, err)
	}

	item.Date = date
	if mood.Valid {
		v := int(mood.Int64)
		item.Mood = &v
	}
	item.UpdatedAt = time.UnixMilli(updatedMS).UTC()
	item.Synced = synced != 0
	return &item, nil
}

func moodToValue(m *int) any {
	if m == nil {
		return nil
	}
	return *m
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
