package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/scott12355/MeditationApp-sub000/internal/models"
)

// syncSessions pulls the user's sessions from the remote and reconciles each
// one onto the local store. Returns the number of rows written.
func (o *Orchestrator) syncSessions(ctx context.Context, userID string) (int, error) {
	resp, err := o.client.Execute(ctx, getUserSessionsQuery, map[string]any{"userID": userID})
	if err != nil {
		return 0, err
	}

	remoteSessions, err := sessionsFromResponse(resp.Data["getUserSessions"])
	if err != nil {
		return 0, err
	}

	local, err := o.store.GetSessionsForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	byServerID := make(map[string]models.Session, len(local))
	for _, s := range local {
		byServerID[s.SessionID] = s
	}

	written := 0
	for _, incoming := range remoteSessions {
		if existing, ok := byServerID[incoming.SessionID]; ok {
			incoming.ID = existing.ID

			// Download bookkeeping is local-only and never sourced from
			// the remote.
			incoming.LocalAudioPath = existing.LocalAudioPath
			incoming.IsDownloaded = existing.IsDownloaded
			incoming.DownloadedAt = existing.DownloadedAt
			incoming.FileSizeBytes = existing.FileSizeBytes

			// A lagging read replica may still report REQUESTED after the
			// poller observed COMPLETED. A terminal success never regresses.
			if existing.Status == models.StatusCompleted && incoming.Status == models.StatusRequested {
				incoming.Status = models.StatusCompleted
			}
		}

		if err := o.store.Save(ctx, &incoming); err != nil {
			return written, fmt.Errorf("failed to save session %s: %w", incoming.SessionID, err)
		}
		written++
	}
	return written, nil
}

func sessionsFromResponse(node any) ([]models.Session, error) {
	if node == nil {
		return nil, nil
	}
	items, ok := node.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected session list shape %T", node)
	}

	out := make([]models.Session, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected session shape %T", item)
		}
		s, err := sessionFromMap(m)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func sessionFromMap(m map[string]any) (models.Session, error) {
	sessionID := stringField(m, "sessionID")
	if sessionID == "" {
		return models.Session{}, fmt.Errorf("session without sessionID")
	}

	ts, err := millisField(m, "timestamp")
	if err != nil {
		return models.Session{}, fmt.Errorf("session %s: %w", sessionID, err)
	}

	return models.Session{
		SessionID:    sessionID,
		UserID:       stringField(m, "userID"),
		Timestamp:    ts,
		AudioPath:    stringField(m, "audioPath"),
		Status:       models.ParseSessionStatus(stringField(m, "status")),
		ErrorMessage: stringField(m, "errorMessage"),
	}, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// millisField reads an epoch-millisecond timestamp. JSON numbers decode as
// float64; some backends serialize longs as strings, accept both.
func millisField(m map[string]any, key string) (time.Time, error) {
	switch v := m[key].(type) {
	case float64:
		return time.UnixMilli(int64(v)).UTC(), nil
	case string:
		var ms int64
		if _, err := fmt.Sscan(v, &ms); err != nil {
			return time.Time{}, fmt.Errorf("invalid %s %q", key, v)
		}
		return time.UnixMilli(ms).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("missing or invalid %s", key)
	}
}
