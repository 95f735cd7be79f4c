package main

import (
	"context"
	"fmt"

	"packtrack/internal/models"
	"packtrack/internal/shared"

	"github.com/urfave/cli/v3"
)

// OverrideSet pins an external track to a tracked song, bypassing automatic
// matching on the next reconcile.
func (r *Runner) OverrideSet(ctx context.Context, cmd *cli.Command) error {
	seriesID := cmd.StringArg("id")
	if seriesID == "" {
		return fmt.Errorf("%w: series id is required", shared.ErrInvalidArgument)
	}

	req := models.OverrideRequest{
		ExternalID: cmd.String("external-id"),
		TitleClean: cmd.String("title"),
		SongID:     cmd.String("song"),
	}

	if err := r.ensureDatabase(); err != nil {
		return err
	}

	if err := r.engine.SetOverride(ctx, seriesID, req); err != nil {
		return err
	}

	r.writePlain("✓ Override set for %s\n", overrideKey(req.ExternalID, req.TitleClean))
	return nil
}

// OverrideRemove deletes a manual override so automatic matching applies again.
func (r *Runner) OverrideRemove(ctx context.Context, cmd *cli.Command) error {
	seriesID := cmd.StringArg("id")
	if seriesID == "" {
		return fmt.Errorf("%w: series id is required", shared.ErrInvalidArgument)
	}
	externalID := cmd.String("external-id")
	title := cmd.String("title")

	if err := r.ensureDatabase(); err != nil {
		return err
	}

	if err := r.engine.DeleteOverride(ctx, seriesID, externalID, title); err != nil {
		return err
	}

	r.writePlain("✓ Override removed for %s\n", overrideKey(externalID, title))
	return nil
}

// FlagPreexisting sets or clears the pre-existing flag on one track.
func (r *Runner) FlagPreexisting(ctx context.Context, cmd *cli.Command) error {
	return r.applyFlag(ctx, cmd, true)
}

// FlagIrrelevant sets or clears the irrelevant flag on one track.
func (r *Runner) FlagIrrelevant(ctx context.Context, cmd *cli.Command) error {
	return r.applyFlag(ctx, cmd, false)
}

func (r *Runner) applyFlag(ctx context.Context, cmd *cli.Command, preExisting bool) error {
	seriesID := cmd.StringArg("id")
	if seriesID == "" {
		return fmt.Errorf("%w: series id is required", shared.ErrInvalidArgument)
	}

	value := !cmd.Bool("clear")
	var updates []models.FlagUpdate
	for _, externalID := range cmd.StringSlice("external-id") {
		updates = append(updates, models.FlagUpdate{ExternalID: externalID, Value: value})
	}
	for _, title := range cmd.StringSlice("title") {
		updates = append(updates, models.FlagUpdate{Title: title, Value: value})
	}
	if len(updates) == 0 {
		return fmt.Errorf("%w: at least one --external-id or --title is required", shared.ErrInvalidArgument)
	}

	if err := r.ensureDatabase(); err != nil {
		return err
	}

	name := "irrelevant"
	apply := r.engine.SetIrrelevantFlags
	if preExisting {
		name = "pre-existing"
		apply = r.engine.SetPreexistingFlags
	}

	if err := apply(ctx, seriesID, updates); err != nil {
		return err
	}

	verb := "set"
	if !value {
		verb = "cleared"
	}
	r.writePlain("✓ %s flag %s for %d tracks\n", name, verb, len(updates))
	return nil
}

func overrideKey(externalID, title string) string {
	if externalID != "" {
		return externalID
	}
	return fmt.Sprintf("%q", title)
}
