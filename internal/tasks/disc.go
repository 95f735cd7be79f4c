package tasks

import (
	"context"
	"fmt"

	"packtrack/internal/match"
	"packtrack/internal/models"
	"packtrack/internal/shared"
)

// ApplyDiscAction marks or unmarks every track on one disc as irrelevant.
//
// The tracklist is refetched so the disc contents reflect the catalog at the
// time of the action. All flag writes happen in one transaction; a failure
// leaves every flag untouched. Returns the number of tracks affected.
func (e *ReconcileEngine) ApplyDiscAction(ctx context.Context, seriesID string, disc int, action models.DiscAction) (int, error) {
	var value bool
	switch action {
	case models.MarkIrrelevant:
		value = true
	case models.UnmarkIrrelevant:
		value = false
	default:
		return 0, fmt.Errorf("%w: unknown disc action %q", shared.ErrInvalidArgument, action)
	}

	series, err := e.series.Get(seriesID)
	if err != nil {
		return 0, err
	}

	tracks, err := e.fetchTracklist(ctx, nil, series)
	if err != nil {
		return 0, err
	}

	var keys []models.FlagUpdate
	for _, track := range tracks {
		trackDisc := track.DiscNumber
		if trackDisc == 0 {
			trackDisc = 1
		}
		if trackDisc != disc {
			continue
		}

		key := models.FlagUpdate{ExternalID: track.ExternalID}
		if key.ExternalID == "" {
			key.Title = match.NormalizeTitle(track.Title)
		}
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		return 0, fmt.Errorf("%w: disc %d has no tracks", shared.ErrNotFound, disc)
	}

	count, err := e.flags.SetIrrelevantBatch(seriesID, keys, value)
	if err != nil {
		return 0, fmt.Errorf("failed to flag disc %d: %w", disc, err)
	}

	e.logger.Info("disc action applied", "series", seriesID, "disc", disc, "action", action, "tracks", count)
	return count, nil
}
