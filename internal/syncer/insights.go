package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/scott12355/MeditationApp-sub000/internal/common"
	"github.com/scott12355/MeditationApp-sub000/internal/models"
)

// syncInsights is bidirectional, push-then-pull: local unsynced edits go out
// first so the subsequent pull reflects them instead of clobbering them.
// Returns the number of local rows written by the pull.
func (o *Orchestrator) syncInsights(ctx context.Context, userID string) (int, error) {
	if err := o.pushInsights(ctx, userID); err != nil {
		return 0, err
	}
	return o.pullInsights(ctx, userID)
}

// pushInsights sends every unsynced local insight to the remote. A failed
// item is logged and skipped; one bad record must not strand the rest of the
// batch.
func (o *Orchestrator) pushInsights(ctx context.Context, userID string) error {
	unsynced, err := o.store.GetUnsyncedInsights(ctx)
	if err != nil {
		return err
	}

	for _, insight := range unsynced {
		if insight.UserID != userID {
			continue
		}

		variables := map[string]any{
			"userID": insight.UserID,
			"date":   insight.Date.UnixMilli(),
			"notes":  insight.Notes,
		}
		if insight.Mood != nil {
			variables["mood"] = *insight.Mood
		} else {
			variables["mood"] = nil
		}

		if _, err := o.client.Execute(ctx, upsertDailyInsightMutation, variables); err != nil {
			o.log.Warn(ctx, "failed to push insight",
				"user_id", insight.UserID, "date", models.DayKey(insight.Date), "error", err)
			continue
		}

		if err := o.store.MarkInsightSynced(ctx, &insight); err != nil {
			return fmt.Errorf("failed to mark insight synced: %w", err)
		}
	}
	return nil
}

// pullInsights fetches the user's remote insights and merges them into the
// local store. A remote row overwrites a local one only when the local copy
// is already synced or its last edit predates the freshness grace window; a
// fresh unsynced edit always wins over a pull that raced it.
func (o *Orchestrator) pullInsights(ctx context.Context, userID string) (int, error) {
	resp, err := o.client.Execute(ctx, getUserDailyInsightsQuery, map[string]any{"userID": userID})
	if err != nil {
		return 0, err
	}

	remoteInsights, err := insightsFromResponse(resp.Data["getUserDailyInsights"])
	if err != nil {
		return 0, err
	}

	written := 0
	for _, incoming := range remoteInsights {
		local, err := o.store.GetInsight(ctx, incoming.UserID, incoming.Date)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return written, err
		}

		if local != nil {
			age := o.now().Sub(local.UpdatedAt)
			if !local.Synced && age <= o.grace {
				continue
			}
			incoming.ID = local.ID
		}

		incoming.Synced = true
		if err := o.store.SaveInsight(ctx, &incoming); err != nil {
			return written, fmt.Errorf("failed to save insight for %s: %w", models.DayKey(incoming.Date), err)
		}
		written++
	}
	return written, nil
}

func insightsFromResponse(node any) ([]models.Insight, error) {
	if node == nil {
		return nil, nil
	}
	items, ok := node.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected insight list shape %T", node)
	}

	out := make([]models.Insight, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected insight shape %T", item)
		}
		ins, err := insightFromMap(m)
		if err != nil {
			return nil, err
		}
		out = append(out, ins)
	}
	return out, nil
}

func insightFromMap(m map[string]any) (models.Insight, error) {
	userID := stringField(m, "userID")
	if userID == "" {
		return models.Insight{}, fmt.Errorf("insight without userID")
	}

	date, err := millisField(m, "date")
	if err != nil {
		return models.Insight{}, err
	}

	insight := models.Insight{
		UserID: userID,
		Date:   models.TruncateToDay(date),
		Notes:  stringField(m, "notes"),
	}
	if v, ok := m["mood"].(float64); ok {
		mood := int(v)
		insight.Mood = &mood
	}
	return insight, nil
}
