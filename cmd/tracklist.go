package main

import (
	"context"
	"fmt"

	"packtrack/internal/formatter"
	"packtrack/internal/models"
	"packtrack/internal/shared"
	"packtrack/internal/tasks"

	"github.com/urfave/cli/v3"
)

// TracklistShow reconciles a series against the catalog and prints the result.
func (r *Runner) TracklistShow(ctx context.Context, cmd *cli.Command) error {
	seriesID := cmd.StringArg("id")
	if seriesID == "" {
		return fmt.Errorf("%w: series id is required", shared.ErrInvalidArgument)
	}

	if err := r.ensureDatabase(); err != nil {
		return err
	}

	series, items, err := r.reconcileSeries(ctx, seriesID, !cmd.Bool("json"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		data, err := formatter.ToTracklistJSON(&formatter.TracklistExport{Series: series, Items: items}, cmd.Bool("pretty"))
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", data)
	}

	r.writePlainln("")
	r.writePlainHeader(fmt.Sprintf("%s - %s", series.Artist(), series.Album()))

	matched := 0
	currentDisc := 0
	for _, item := range items {
		if item.DiscNumber != currentDisc {
			currentDisc = item.DiscNumber
			r.writePlain("\nDisc %d\n", currentDisc)
		}
		r.writePlain("  %s\n", tracklistLine(item))
		if item.InPack {
			matched++
		}
	}

	r.writePlain("\nTracks: %d  Matched: %d\n", len(items), matched)
	return nil
}

// TracklistExport reconciles a series and writes the tracklist to a file.
func (r *Runner) TracklistExport(ctx context.Context, cmd *cli.Command) error {
	seriesID := cmd.StringArg("id")
	if seriesID == "" {
		return fmt.Errorf("%w: series id is required", shared.ErrInvalidArgument)
	}
	format := cmd.String("format")
	base := cmd.String("output")

	if err := r.ensureDatabase(); err != nil {
		return err
	}

	series, items, err := r.reconcileSeries(ctx, seriesID, true)
	if err != nil {
		return err
	}

	export := &formatter.TracklistExport{Series: series, Items: items}

	var path string
	switch format {
	case "csv":
		path, err = formatter.WriteCSVExport(export, base)
	case "md", "markdown":
		path, err = formatter.WriteMarkdownExport(export, base)
	case "txt", "text":
		path, err = formatter.WriteTextExport(export, base)
	case "json":
		data, jerr := formatter.ToTracklistJSON(export, true)
		if jerr != nil {
			return jerr
		}
		return r.writePlain("%s\n", data)
	default:
		return fmt.Errorf("%w: unknown format %q (csv, md, txt, json)", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return err
	}

	r.logger.Info("tracklist exported", "series", seriesID, "path", path)
	r.writePlain("✓ Exported to %s\n", path)
	return nil
}

// DiscMark flags every track on a disc as irrelevant.
func (r *Runner) DiscMark(ctx context.Context, cmd *cli.Command) error {
	return r.applyDiscAction(ctx, cmd, models.MarkIrrelevant)
}

// DiscUnmark clears the irrelevant flag for every track on a disc.
func (r *Runner) DiscUnmark(ctx context.Context, cmd *cli.Command) error {
	return r.applyDiscAction(ctx, cmd, models.UnmarkIrrelevant)
}

func (r *Runner) applyDiscAction(ctx context.Context, cmd *cli.Command, action models.DiscAction) error {
	seriesID := cmd.StringArg("id")
	if seriesID == "" {
		return fmt.Errorf("%w: series id is required", shared.ErrInvalidArgument)
	}
	disc := cmd.Int("disc")

	if err := r.ensureDatabase(); err != nil {
		return err
	}

	updated, err := r.engine.ApplyDiscAction(ctx, seriesID, int(disc), action)
	if err != nil {
		return err
	}

	r.writePlain("✓ Updated %d tracks on disc %d\n", updated, disc)
	return nil
}

// reconcileSeries runs the engine with a progress printer attached when the
// output is human-readable.
func (r *Runner) reconcileSeries(ctx context.Context, seriesID string, showProgress bool) (*models.Series, []models.TracklistItem, error) {
	series, err := r.series.Get(seriesID)
	if err != nil {
		return nil, nil, err
	}

	var progressCh chan tasks.ProgressUpdate
	done := make(chan struct{})
	if showProgress {
		progressCh = make(chan tasks.ProgressUpdate, 50)
		go func() {
			defer close(done)
			for update := range progressCh {
				switch update.Phase {
				case tasks.SearchAlbum:
					r.writePlain("🔍 %s\n", update.Message)
				case tasks.FetchTracks:
					r.writePlain("📥 %s\n", update.Message)
				case tasks.MatchTracks:
					if update.Step == 1 {
						r.writePlain("🔗 Matching %d tracks...\n", update.Total)
					}
				case tasks.CheckOfficial:
					if update.Step == 1 {
						r.writePlain("📀 Checking release status...\n")
					}
				}
			}
		}()
	} else {
		close(done)
	}

	items, err := r.engine.Reconcile(ctx, progressCh, seriesID)
	if progressCh != nil {
		close(progressCh)
	}
	<-done

	if err != nil {
		return nil, nil, err
	}
	return series, items, nil
}

func tracklistLine(item models.TracklistItem) string {
	marker := "○"
	if item.InPack {
		marker = "●"
	}

	line := fmt.Sprintf("%s %2s. %s", marker, trackNumberLabel(item.TrackNumber), item.Title)
	if item.InPack {
		line += fmt.Sprintf(" [%s]", item.Status)
	}
	if item.Official {
		line += " (official)"
	}
	if item.PreExisting {
		line += " (pre-existing)"
	}
	if item.Irrelevant {
		line += " (irrelevant)"
	}
	return line
}

func trackNumberLabel(n int) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", n)
}
