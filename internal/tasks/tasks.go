package tasks

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"packtrack/internal/match"
	"packtrack/internal/models"
	"packtrack/internal/repositories"
	"packtrack/internal/services"
	"packtrack/internal/shared"
)

// TracklistReconciler defines the reconciliation operations exposed to the
// CLI, HTTP, and TUI layers.
type TracklistReconciler interface {
	// Reconcile fetches the album tracklist for a series and matches every
	// track against locally tracked songs.
	Reconcile(ctx context.Context, progress chan<- ProgressUpdate, seriesID string) ([]models.TracklistItem, error)

	// ApplyDiscAction bulk-flags every track on one disc. Returns the number
	// of tracks affected.
	ApplyDiscAction(ctx context.Context, seriesID string, disc int, action models.DiscAction) (int, error)
}

// ReconcileEngine implements TracklistReconciler against the catalog, the
// release checker, and the repository layer.
type ReconcileEngine struct {
	catalog   services.CatalogService
	checker   services.ReleaseChecker
	series    *repositories.SeriesRepository
	songs     *repositories.SongRepository
	overrides *repositories.OverrideRepository
	flags     *repositories.FlagRepository
	logger    *log.Logger
	threshold float64
}

// NewReconcileEngine creates an engine. threshold falls back to
// match.DefaultThreshold when zero or negative; checker may be nil, in which
// case every track reports official=false.
func NewReconcileEngine(
	catalog services.CatalogService,
	checker services.ReleaseChecker,
	series *repositories.SeriesRepository,
	songs *repositories.SongRepository,
	overrides *repositories.OverrideRepository,
	flags *repositories.FlagRepository,
	logger *log.Logger,
	threshold float64,
) *ReconcileEngine {
	if threshold <= 0 {
		threshold = match.DefaultThreshold
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &ReconcileEngine{
		catalog:   catalog,
		checker:   checker,
		series:    series,
		songs:     songs,
		overrides: overrides,
		flags:     flags,
		logger:    logger,
		threshold: threshold,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ReconcileEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// resolveAlbum walks the query ladder and returns the first album hit.
// ErrNotFound results move to the next query; transport failures abort.
func (e *ReconcileEngine) resolveAlbum(ctx context.Context, progress chan<- ProgressUpdate, artist, album string) (*models.AlbumRef, error) {
	queries := services.AlbumQueries(artist, album)

	for i, query := range queries {
		e.sendProgress(progress, searchAlbumUpdate(i+1, len(queries), query))

		ref, err := e.catalog.SearchAlbum(ctx, query)
		if err == nil {
			return ref, nil
		}
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("%w: %s - %s", shared.ErrAlbumNotFound, artist, album)
}

// fetchTracklist resolves the series album and returns its external tracks.
func (e *ReconcileEngine) fetchTracklist(ctx context.Context, progress chan<- ProgressUpdate, series *models.Series) ([]models.ExternalTrack, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	ref, err := e.resolveAlbum(ctx, progress, series.Artist(), series.Album())
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, foundAlbumUpdate(ref))

	tracks, err := e.catalog.AlbumTracks(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tracklist: %w", err)
	}
	e.sendProgress(progress, fetchTracksUpdate(len(tracks)))

	return tracks, nil
}

// flagKey resolves the flag row for a track, preferring the external-ID key.
func flagKey(flags []models.TrackFlags, externalID, titleClean string) (preExisting, irrelevant bool) {
	var titleRow *models.TrackFlags

	for i := range flags {
		f := &flags[i]
		if externalID != "" && f.ExternalID == externalID {
			return f.PreExisting, f.Irrelevant
		}
		if f.ExternalID == "" && f.TitleClean == titleClean {
			titleRow = f
		}
	}

	if titleRow != nil {
		return titleRow.PreExisting, titleRow.Irrelevant
	}
	return false, false
}

// Reconcile fetches the series tracklist from the catalog and matches every
// track. The returned slice is sorted by disc, then track number (absent
// numbers last), then normalized title.
func (e *ReconcileEngine) Reconcile(ctx context.Context, progress chan<- ProgressUpdate, seriesID string) ([]models.TracklistItem, error) {
	series, err := e.series.Get(seriesID)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, fetchSeriesUpdate(series))

	tracks, err := e.fetchTracklist(ctx, progress, series)
	if err != nil {
		return nil, err
	}

	mc, flags, err := e.buildContext(series)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, buildIndexUpdate(len(mc.seriesTitles), len(mc.globalTitles)))

	items := make([]models.TracklistItem, 0, len(tracks))
	for i, track := range tracks {
		e.sendProgress(progress, matchTrackUpdate(i+1, len(tracks), track.Title))

		titleClean := match.NormalizeTitle(track.Title)
		song := matchTrack(track.ExternalID, titleClean, mc)

		disc := track.DiscNumber
		if disc == 0 {
			disc = 1
		}

		item := models.TracklistItem{
			ExternalID:  track.ExternalID,
			Title:       track.Title,
			TitleClean:  titleClean,
			Artist:      series.Artist(),
			TrackNumber: track.TrackNumber,
			DiscNumber:  disc,
		}

		if song != nil {
			item.InPack = true
			item.Status = song.Status()
			item.SongID = song.ID()
		}

		item.PreExisting, item.Irrelevant = flagKey(flags, track.ExternalID, titleClean)

		items = append(items, item)
	}

	for i := range items {
		e.sendProgress(progress, checkOfficialUpdate(i+1, len(items), items[i].Title))
		items[i].Official = e.checkOfficial(ctx, items[i].TitleClean, series.Artist())
	}

	sortTracklist(items)
	e.sendProgress(progress, sortTracksUpdate(len(items)))

	return items, nil
}

// buildContext loads the series songs, the same-artist pool, and the stored
// overrides, and assembles the match lookups plus the flag rows.
func (e *ReconcileEngine) buildContext(series *models.Series) (*matchContext, []models.TrackFlags, error) {
	seriesSongs, err := e.songs.InSeries(series.ID())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load series songs: %w", err)
	}

	allSongs, err := e.songs.List(map[string]any{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load songs: %w", err)
	}

	overrides, err := e.overrides.ListBySeries(series.ID())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load overrides: %w", err)
	}

	flags, err := e.flags.ListBySeries(series.ID())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load flags: %w", err)
	}

	songsByID := make(map[string]*models.Song, len(allSongs))
	for _, song := range allSongs {
		songsByID[song.ID()] = song
	}

	mc := buildMatchContext(series.Artist(), seriesSongs, allSongs, overrides, songsByID, e.threshold)
	return mc, flags, nil
}

// checkOfficial asks the release checker about one track. Checker failures
// degrade to false so an unavailable checker never aborts reconciliation.
func (e *ReconcileEngine) checkOfficial(ctx context.Context, title, artist string) bool {
	if e.checker == nil {
		return false
	}

	official, err := e.checker.IsOfficial(ctx, title, artist)
	if err != nil {
		e.logger.Warn("release check failed, treating as unofficial", "title", title, "error", err)
		return false
	}
	return official
}

// sortTracklist orders items by disc, then track number with 0 (absent)
// last, then normalized title.
func sortTracklist(items []models.TracklistItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]

		if a.DiscNumber != b.DiscNumber {
			return a.DiscNumber < b.DiscNumber
		}
		if a.TrackNumber != b.TrackNumber {
			if a.TrackNumber == 0 {
				return false
			}
			if b.TrackNumber == 0 {
				return true
			}
			return a.TrackNumber < b.TrackNumber
		}
		return a.TitleClean < b.TitleClean
	})
}
