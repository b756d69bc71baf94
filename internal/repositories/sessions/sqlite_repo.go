package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/scott12355/MeditationApp-sub000/internal/dbx"
	"github.com/scott12355/MeditationApp-sub000/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sessionColumns = `id, session_id, user_id, timestamp, audio_path, status, error_message,
	local_audio_path, is_downloaded, downloaded_at, file_size_bytes`

func (r *SQLiteRepository) Save(ctx context.Context, session *models.Session) error {
	if session.ID == 0 {
		return r.insert(ctx, session)
	}
	return r.update(ctx, session)
}

func (r *SQLiteRepository) insert(ctx context.Context, s *models.Session) error {
	query := `INSERT INTO sessions
		(session_id, user_id, timestamp, audio_path, status, error_message,
		 local_audio_path, is_downloaded, downloaded_at, file_size_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		s.SessionID, s.UserID, s.Timestamp.UnixMilli(), s.AudioPath, string(s.Status), s.ErrorMessage,
		s.LocalAudioPath, boolToInt(s.IsDownloaded), timePtrToMilli(s.DownloadedAt), s.FileSizeBytes)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted session id: %w", err)
	}
	s.ID = id
	return nil
}

func (r *SQLiteRepository) update(ctx context.Context, s *models.Session) error {
	query := `UPDATE sessions SET
		session_id=?, user_id=?, timestamp=?, audio_path=?, status=?, error_message=?,
		local_audio_path=?, is_downloaded=?, downloaded_at=?, file_size_bytes=?
		WHERE id=?`

	res, err := r.db.ExecContext(ctx, query,
		s.SessionID, s.UserID, s.Timestamp.UnixMilli(), s.AudioPath, string(s.Status), s.ErrorMessage,
		s.LocalAudioPath, boolToInt(s.IsDownloaded), timePtrToMilli(s.DownloadedAt), s.FileSizeBytes,
		s.ID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected != 1 {
		return fmt.Errorf("wrong rows affected count: %d", rowsAffected)
	}
	return nil
}

func (r *SQLiteRepository) GetByUser(ctx context.Context, userID string) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE user_id=? ORDER BY timestamp`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *SQLiteRepository) GetCompletedForDate(ctx context.Context, userID string, day time.Time) ([]models.Session, error) {
	start := models.TruncateToDay(day)
	end := start.AddDate(0, 0, 1)
	return r.completedInRange(ctx, userID, start, end)
}

func (r *SQLiteRepository) GetCompletedForMonth(ctx context.Context, userID string, year int, month time.Month) ([]models.Session, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return r.completedInRange(ctx, userID, start, end)
}

func (r *SQLiteRepository) completedInRange(ctx context.Context, userID string, start, end time.Time) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions
		WHERE user_id=? AND status=? AND timestamp>=? AND timestamp<?
		ORDER BY timestamp`

	rows, err := r.db.QueryContext(ctx, query,
		userID, string(models.StatusCompleted), start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to select sessions: %w", err)
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return count, nil
}

func scanSessions(rows *sql.Rows) ([]models.Session, error) {
	var result []models.Session

	for rows.Next() {
		var (
			item         models.Session
			status       string
			timestampMS  int64
			isDownloaded int64
			downloadedAt sql.NullInt64
		)
		err := rows.Scan(&item.ID, &item.SessionID, &item.UserID, &timestampMS, &item.AudioPath,
			&status, &item.ErrorMessage, &item.LocalAudioPath, &isDownloaded, &downloadedAt,
			&item.FileSizeBytes)
		if err != nil {
			return nil, err
		}

		item.Timestamp = time.UnixMilli(timestampMS).UTC()
		item.Status = models.ParseSessionStatus(status)
		item.IsDownloaded = isDownloaded != 0
		if downloadedAt.Valid {
			t := time.UnixMilli(downloadedAt.Int64).UTC()
			item.DownloadedAt = &t
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func timePtrToMilli(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}
