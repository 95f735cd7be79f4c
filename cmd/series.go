package main

import (
	"context"
	"fmt"

	"packtrack/internal/models"
	"packtrack/internal/shared"

	"github.com/urfave/cli/v3"
)

// SeriesAdd starts tracking an album as a new series.
func (r *Runner) SeriesAdd(ctx context.Context, cmd *cli.Command) error {
	artist := cmd.String("artist")
	album := cmd.String("album")

	if err := r.ensureDatabase(); err != nil {
		return err
	}

	series := models.NewSeries(0, artist, album)
	if err := r.series.Create(series); err != nil {
		return err
	}

	r.logger.Info("series created", "id", series.ID(), "artist", artist, "album", album)

	if cmd.Bool("json") {
		return r.writeJSON(seriesRow(series), cmd.Bool("pretty"))
	}

	r.writePlain("✓ Tracking %s - %s\n", artist, album)
	r.writePlain("ID: %s\n", series.ID())
	return nil
}

// SeriesList lists tracked series, optionally filtered by artist.
func (r *Runner) SeriesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureDatabase(); err != nil {
		return err
	}

	criteria := map[string]any{}
	if artist := cmd.String("artist"); artist != "" {
		criteria["artist"] = artist
	}

	series, err := r.series.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		rows := make([]map[string]any, len(series))
		for i, s := range series {
			rows[i] = seriesRow(s)
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(series) == 0 {
		r.writePlain("No tracked series\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Tracked Series (%d)", len(series)))
	for i, s := range series {
		r.writePlain("%d. %s - %s\n", i+1, s.Artist(), s.Album())
		r.writePlain("   ID: %s\n", s.ID())
	}
	return nil
}

// SeriesRemove stops tracking a series and discards its overrides and flags.
func (r *Runner) SeriesRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: series id is required", shared.ErrInvalidArgument)
	}

	if err := r.ensureDatabase(); err != nil {
		return err
	}

	if err := r.series.Delete(id); err != nil {
		return err
	}

	r.logger.Info("series removed", "id", id)
	r.writePlain("✓ Series %s removed\n", id)
	return nil
}

// SongAdd records a locally tracked song, optionally assigned to a series.
func (r *Runner) SongAdd(ctx context.Context, cmd *cli.Command) error {
	title := cmd.String("title")
	artist := cmd.String("artist")
	seriesID := cmd.String("series")
	status := cmd.String("status")

	if err := r.ensureDatabase(); err != nil {
		return err
	}

	if seriesID != "" {
		if _, err := r.series.Get(seriesID); err != nil {
			return err
		}
	}

	song := models.NewSong(0, seriesID, title, artist, status)
	if err := r.songs.Create(song); err != nil {
		return err
	}

	r.logger.Info("song created", "id", song.ID(), "title", title)

	if cmd.Bool("json") {
		return r.writeJSON(songRow(song), cmd.Bool("pretty"))
	}

	r.writePlain("✓ Added %s - %s [%s]\n", song.Artist(), song.Title(), song.Status())
	r.writePlain("ID: %s\n", song.ID())
	return nil
}

// SongList lists tracked songs filtered by series, status, or artist.
func (r *Runner) SongList(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureDatabase(); err != nil {
		return err
	}

	criteria := map[string]any{}
	if seriesID := cmd.String("series"); seriesID != "" {
		criteria["series_id"] = seriesID
	}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}
	if artist := cmd.String("artist"); artist != "" {
		criteria["artist"] = artist
	}

	songs, err := r.songs.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		rows := make([]map[string]any, len(songs))
		for i, s := range songs {
			rows[i] = songRow(s)
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	if len(songs) == 0 {
		r.writePlain("No tracked songs\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Tracked Songs (%d)", len(songs)))
	for i, s := range songs {
		r.writePlain("%d. %s - %s [%s]\n", i+1, s.Artist(), s.Title(), s.Status())
		if s.SeriesID() != "" {
			r.writePlain("   series: %s\n", s.SeriesID())
		}
	}
	return nil
}

func seriesRow(s *models.Series) map[string]any {
	return map[string]any{
		"id":     s.ID(),
		"artist": s.Artist(),
		"album":  s.Album(),
	}
}

func songRow(s *models.Song) map[string]any {
	row := map[string]any{
		"id":     s.ID(),
		"title":  s.Title(),
		"artist": s.Artist(),
		"status": s.Status(),
	}
	if s.SeriesID() != "" {
		row["series_id"] = s.SeriesID()
	}
	return row
}
