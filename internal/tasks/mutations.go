package tasks

import (
	"context"
	"fmt"

	"packtrack/internal/match"
	"packtrack/internal/models"
	"packtrack/internal/shared"
)

// SetOverride stores a manual track-to-song link for a series. Raw titles
// are normalized before storage so lookups during reconciliation agree.
func (e *ReconcileEngine) SetOverride(ctx context.Context, seriesID string, req models.OverrideRequest) error {
	if _, err := e.series.Get(seriesID); err != nil {
		return err
	}

	if req.SongID == "" {
		return fmt.Errorf("%w: override requires a song", shared.ErrInvalidArgument)
	}
	if _, err := e.songs.Get(req.SongID); err != nil {
		return err
	}

	link := &models.OverrideLink{
		SeriesID:   seriesID,
		ExternalID: req.ExternalID,
		TitleClean: match.NormalizeTitle(req.TitleClean),
		SongID:     req.SongID,
	}

	if err := e.overrides.Set(link); err != nil {
		return err
	}

	e.logger.Info("override set", "series", seriesID, "external_id", link.ExternalID, "title", link.TitleClean, "song", link.SongID)
	return nil
}

// DeleteOverride removes a manual link. The next reconciliation falls back to
// automatic matching for the track.
func (e *ReconcileEngine) DeleteOverride(ctx context.Context, seriesID, externalID, titleClean string) error {
	if _, err := e.series.Get(seriesID); err != nil {
		return err
	}

	return e.overrides.Delete(seriesID, externalID, match.NormalizeTitle(titleClean))
}

// SetPreexistingFlags applies a batch of pre-existing flag updates.
func (e *ReconcileEngine) SetPreexistingFlags(ctx context.Context, seriesID string, updates []models.FlagUpdate) error {
	return e.setFlags(seriesID, updates, e.flags.SetPreexisting)
}

// SetIrrelevantFlags applies a batch of irrelevant flag updates.
func (e *ReconcileEngine) SetIrrelevantFlags(ctx context.Context, seriesID string, updates []models.FlagUpdate) error {
	return e.setFlags(seriesID, updates, e.flags.SetIrrelevant)
}

func (e *ReconcileEngine) setFlags(seriesID string, updates []models.FlagUpdate, set func(seriesID, externalID, titleClean string, value bool) error) error {
	if _, err := e.series.Get(seriesID); err != nil {
		return err
	}

	for _, update := range updates {
		titleClean := ""
		if update.ExternalID == "" {
			titleClean = match.NormalizeTitle(update.Title)
		}
		if err := set(seriesID, update.ExternalID, titleClean, update.Value); err != nil {
			return err
		}
	}

	return nil
}
