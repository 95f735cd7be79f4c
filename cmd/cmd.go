// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a starter configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// seriesCommand handles tracked series operations.
func seriesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "series",
		Usage: "Manage tracked album series",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Start tracking an album",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "artist",
						Usage:    "Album artist",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "album",
						Usage:    "Album title",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SeriesAdd,
			},
			{
				Name:  "list",
				Usage: "List tracked series",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Filter by artist (substring match)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SeriesList,
			},
			{
				Name:    "rm",
				Aliases: []string{"remove"},
				Usage:   "Stop tracking a series and discard its overrides and flags",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.SeriesRemove,
			},
		},
	}
}

// songCommand handles tracked song operations.
func songCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "song",
		Usage: "Manage tracked songs",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Record a tracked song",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Song title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "artist",
						Usage:    "Song artist",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "series",
						Usage: "Series ID to assign the song to",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Song status (planned, recorded, released)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SongAdd,
			},
			{
				Name:  "list",
				Usage: "List tracked songs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "series",
						Usage: "Filter by series ID",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status",
					},
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Filter by artist (substring match)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.SongList,
			},
		},
	}
}

// tracklistCommand handles reconciliation views and exports.
func tracklistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tracklist",
		Aliases: []string{"tl"},
		Usage:   "Reconcile album tracklists against tracked songs",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Reconcile a series and print the tracklist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.TracklistShow,
			},
			{
				Name:  "export",
				Usage: "Reconcile a series and export the tracklist to a file",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format (csv, md, txt, json)",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Base output path (defaults to the series ID)",
					},
				},
				Action: r.TracklistExport,
			},
		},
	}
}

// overrideCommand handles manual match overrides.
func overrideCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "override",
		Usage: "Manage manual match overrides",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Pin an external track to a tracked song",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "external-id",
						Usage: "External track ID to pin",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Track title to pin (used when no external ID exists)",
					},
					&cli.StringFlag{
						Name:     "song",
						Usage:    "Tracked song ID",
						Required: true,
					},
				},
				Action: r.OverrideSet,
			},
			{
				Name:    "rm",
				Aliases: []string{"remove"},
				Usage:   "Remove a manual override",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "external-id",
						Usage: "External track ID",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Track title (used when no external ID exists)",
					},
				},
				Action: r.OverrideRemove,
			},
		},
	}
}

// flagCommand handles per-track pre-existing and irrelevant flags.
func flagCommand(r *Runner) *cli.Command {
	flagFlags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "external-id",
			Usage: "External track ID (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "title",
			Usage: "Track title, used when no external ID exists (repeatable)",
		},
		&cli.BoolFlag{
			Name:  "clear",
			Usage: "Clear the flag instead of setting it",
		},
	}

	return &cli.Command{
		Name:  "flag",
		Usage: "Flag tracks as pre-existing or irrelevant",
		Commands: []*cli.Command{
			{
				Name:  "preexisting",
				Usage: "Mark a track as pre-existing",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags:  flagFlags,
				Action: r.FlagPreexisting,
			},
			{
				Name:  "irrelevant",
				Usage: "Mark a track as irrelevant",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags:  flagFlags,
				Action: r.FlagIrrelevant,
			},
		},
	}
}

// discCommand handles bulk per-disc flag operations.
func discCommand(r *Runner) *cli.Command {
	discFlags := []cli.Flag{
		&cli.IntFlag{
			Name:     "disc",
			Usage:    "Disc number",
			Required: true,
		},
	}

	return &cli.Command{
		Name:  "disc",
		Usage: "Bulk-flag every track on a disc",
		Commands: []*cli.Command{
			{
				Name:  "mark",
				Usage: "Mark every track on a disc as irrelevant",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags:  discFlags,
				Action: r.DiscMark,
			},
			{
				Name:  "unmark",
				Usage: "Clear the irrelevant flag for every track on a disc",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags:  discFlags,
				Action: r.DiscUnmark,
			},
		},
	}
}

// serveCommand exposes the reconciliation HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the reconciliation HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (overrides config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to bind (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive reconciliation.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for tracklist reconciliation",
		Action:  r.TUI,
	}
}
