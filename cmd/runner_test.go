package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/urfave/cli/v3"

	"packtrack/internal/models"
	"packtrack/internal/services"
	"packtrack/internal/shared"
	tu "packtrack/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			catalog := &tu.MockCatalog{}
			checker := &tu.MockChecker{}

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Logger:  logger,
				Output:  output,
				Catalog: catalog,
				Checker: checker,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
			if runner.checker != checker {
				t.Error("expected checker to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with database wires repositories and engine", func(t *testing.T) {
			db := newTestDB(t)
			runner := NewRunner(RunnerOpts{DB: db})

			if runner.series == nil || runner.songs == nil || runner.overrides == nil || runner.flags == nil {
				t.Error("expected repositories to be wired")
			}
			if runner.engine == nil {
				t.Error("expected engine to be wired")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("series add and list", func(t *testing.T) {
		runner, output := newTestRunner(t, &tu.MockCatalog{}, nil)

		if err := runCLI(runner, "series", "add", "--artist", "Artist A", "--album", "First Album"); err != nil {
			t.Fatalf("series add failed: %v", err)
		}
		if !strings.Contains(output.String(), "Tracking Artist A - First Album") {
			t.Errorf("expected confirmation, got %q", output.String())
		}

		output.Reset()
		if err := runCLI(runner, "series", "list"); err != nil {
			t.Fatalf("series list failed: %v", err)
		}
		if !strings.Contains(output.String(), "Artist A - First Album") {
			t.Errorf("expected series in listing, got %q", output.String())
		}
	})

	t.Run("series rm requires id", func(t *testing.T) {
		runner, _ := newTestRunner(t, &tu.MockCatalog{}, nil)

		err := runCLI(runner, "series", "rm")
		if err == nil {
			t.Fatal("expected error for missing series id")
		}
	})

	t.Run("song add validates series", func(t *testing.T) {
		runner, _ := newTestRunner(t, &tu.MockCatalog{}, nil)

		err := runCLI(runner, "song", "add", "--title", "Song", "--artist", "Artist A", "--series", "missing")
		if err == nil {
			t.Fatal("expected error for unknown series")
		}
	})

	t.Run("song add and list with filter", func(t *testing.T) {
		runner, output := newTestRunner(t, &tu.MockCatalog{}, nil)

		if err := runCLI(runner, "song", "add", "--title", "Main Song", "--artist", "Artist A", "--status", "released"); err != nil {
			t.Fatalf("song add failed: %v", err)
		}

		output.Reset()
		if err := runCLI(runner, "song", "list", "--status", "released"); err != nil {
			t.Fatalf("song list failed: %v", err)
		}
		if !strings.Contains(output.String(), "Main Song") {
			t.Errorf("expected song in listing, got %q", output.String())
		}

		output.Reset()
		if err := runCLI(runner, "song", "list", "--status", "planned"); err != nil {
			t.Fatalf("song list failed: %v", err)
		}
		if !strings.Contains(output.String(), "No tracked songs") {
			t.Errorf("expected empty listing, got %q", output.String())
		}
	})

	t.Run("tracklist show reconciles against the catalog", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			Albums:      map[string]*models.AlbumRef{},
			Tracks:      map[string][]models.ExternalTrack{},
			NotFoundErr: shared.ErrNotFound,
		}
		runner, output := newTestRunner(t, catalog, &tu.MockChecker{Official: map[string]bool{"main song": true}})

		seriesID := addSeries(t, runner, output, "Artist A", "First Album")
		if err := runCLI(runner, "song", "add", "--title", "Main Song", "--artist", "Artist A", "--series", seriesID, "--status", "released"); err != nil {
			t.Fatalf("song add failed: %v", err)
		}

		registerAlbum(catalog, "Artist A", "First Album", []models.ExternalTrack{
			{ExternalID: "t1", Title: "Intro", TrackNumber: 1, DiscNumber: 1},
			{ExternalID: "t2", Title: "Main Song", TrackNumber: 2, DiscNumber: 1},
		})

		output.Reset()
		if err := runCLI(runner, "tracklist", "show", seriesID, "--json"); err != nil {
			t.Fatalf("tracklist show failed: %v", err)
		}

		var items []models.TracklistItem
		if err := json.Unmarshal(output.Bytes(), &items); err != nil {
			t.Fatalf("failed to parse tracklist JSON: %v\n%s", err, output.String())
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(items))
		}
		if items[0].Title != "Intro" || items[0].InPack {
			t.Errorf("expected Intro unmatched, got %+v", items[0])
		}
		if !items[1].InPack || !items[1].Official {
			t.Errorf("expected Main Song matched and official, got %+v", items[1])
		}
	})

	t.Run("tracklist show fails for unknown series", func(t *testing.T) {
		runner, _ := newTestRunner(t, &tu.MockCatalog{NotFoundErr: shared.ErrNotFound}, nil)

		err := runCLI(runner, "tracklist", "show", "missing")
		if err == nil {
			t.Fatal("expected error for unknown series")
		}
	})

	t.Run("override set then tracklist reflects pin", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			Albums:      map[string]*models.AlbumRef{},
			Tracks:      map[string][]models.ExternalTrack{},
			NotFoundErr: shared.ErrNotFound,
		}
		runner, output := newTestRunner(t, catalog, nil)

		seriesID := addSeries(t, runner, output, "Artist A", "First Album")
		songID := addSong(t, runner, output, seriesID, "Completely Different", "Artist A")

		registerAlbum(catalog, "Artist A", "First Album", []models.ExternalTrack{
			{ExternalID: "t1", Title: "Intro", TrackNumber: 1, DiscNumber: 1},
		})

		if err := runCLI(runner, "override", "set", seriesID, "--external-id", "t1", "--song", songID); err != nil {
			t.Fatalf("override set failed: %v", err)
		}

		items := showTracklist(t, runner, output, seriesID)
		if len(items) != 1 || !items[0].InPack || items[0].SongID != songID {
			t.Errorf("expected override to pin t1 to %s, got %+v", songID, items)
		}

		if err := runCLI(runner, "override", "rm", seriesID, "--external-id", "t1"); err != nil {
			t.Fatalf("override rm failed: %v", err)
		}

		items = showTracklist(t, runner, output, seriesID)
		if items[0].InPack {
			t.Errorf("expected unmatched track after override removal, got %+v", items[0])
		}
	})

	t.Run("flag and disc commands update tracklist state", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			Albums:      map[string]*models.AlbumRef{},
			Tracks:      map[string][]models.ExternalTrack{},
			NotFoundErr: shared.ErrNotFound,
		}
		runner, output := newTestRunner(t, catalog, nil)

		seriesID := addSeries(t, runner, output, "Artist A", "First Album")
		registerAlbum(catalog, "Artist A", "First Album", []models.ExternalTrack{
			{ExternalID: "t1", Title: "Intro", TrackNumber: 1, DiscNumber: 1},
			{ExternalID: "t2", Title: "Bonus", TrackNumber: 1, DiscNumber: 2},
			{ExternalID: "t3", Title: "Outro", TrackNumber: 2, DiscNumber: 2},
		})

		if err := runCLI(runner, "flag", "preexisting", seriesID, "--external-id", "t1"); err != nil {
			t.Fatalf("flag preexisting failed: %v", err)
		}

		output.Reset()
		if err := runCLI(runner, "disc", "mark", seriesID, "--disc", "2"); err != nil {
			t.Fatalf("disc mark failed: %v", err)
		}
		if !strings.Contains(output.String(), "Updated 2 tracks on disc 2") {
			t.Errorf("expected 2 updated tracks, got %q", output.String())
		}

		items := showTracklist(t, runner, output, seriesID)
		if !items[0].PreExisting {
			t.Errorf("expected t1 flagged pre-existing, got %+v", items[0])
		}
		if !items[1].Irrelevant || !items[2].Irrelevant {
			t.Errorf("expected disc 2 flagged irrelevant, got %+v", items[1:])
		}

		if err := runCLI(runner, "disc", "unmark", seriesID, "--disc", "2"); err != nil {
			t.Fatalf("disc unmark failed: %v", err)
		}
		items = showTracklist(t, runner, output, seriesID)
		if items[1].Irrelevant || items[2].Irrelevant {
			t.Errorf("expected disc 2 flags cleared, got %+v", items[1:])
		}
	})

	t.Run("tracklist export writes csv", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			Albums:      map[string]*models.AlbumRef{},
			Tracks:      map[string][]models.ExternalTrack{},
			NotFoundErr: shared.ErrNotFound,
		}
		runner, output := newTestRunner(t, catalog, nil)

		seriesID := addSeries(t, runner, output, "Artist A", "First Album")
		registerAlbum(catalog, "Artist A", "First Album", []models.ExternalTrack{
			{ExternalID: "t1", Title: "Intro", TrackNumber: 1, DiscNumber: 1},
		})

		base := t.TempDir() + "/export"
		if err := runCLI(runner, "tracklist", "export", seriesID, "--format", "csv", "--output", base); err != nil {
			t.Fatalf("tracklist export failed: %v", err)
		}

		data, err := os.ReadFile(base + "_tracklist.csv")
		if err != nil {
			t.Fatalf("expected export file: %v", err)
		}
		if !strings.Contains(string(data), "Intro") {
			t.Errorf("expected track in export, got %s", data)
		}
	})

	t.Run("tracklist export rejects unknown format", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			Albums:      map[string]*models.AlbumRef{},
			Tracks:      map[string][]models.ExternalTrack{},
			NotFoundErr: shared.ErrNotFound,
		}
		runner, output := newTestRunner(t, catalog, nil)

		seriesID := addSeries(t, runner, output, "Artist A", "First Album")
		registerAlbum(catalog, "Artist A", "First Album", []models.ExternalTrack{
			{ExternalID: "t1", Title: "Intro", TrackNumber: 1, DiscNumber: 1},
		})

		err := runCLI(runner, "tracklist", "export", seriesID, "--format", "xml")
		if err == nil {
			t.Fatal("expected error for unknown format")
		}
	})
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newTestRunner(t *testing.T, catalog services.CatalogService, checker services.ReleaseChecker) (*Runner, *bytes.Buffer) {
	t.Helper()

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Catalog: catalog,
		Checker: checker,
		DB:      newTestDB(t),
		Output:  output,
	})
	return runner, output
}

func runCLI(runner *Runner, args ...string) error {
	app := &cli.Command{
		Name:     "packtrack",
		Commands: runner.register(),
	}
	return app.Run(context.Background(), append([]string{"packtrack"}, args...))
}

func addSeries(t *testing.T, runner *Runner, output *bytes.Buffer, artist, album string) string {
	t.Helper()

	output.Reset()
	if err := runCLI(runner, "series", "add", "--artist", artist, "--album", album, "--json"); err != nil {
		t.Fatalf("series add failed: %v", err)
	}

	var row map[string]any
	if err := json.Unmarshal(output.Bytes(), &row); err != nil {
		t.Fatalf("failed to parse series JSON: %v\n%s", err, output.String())
	}
	output.Reset()

	id, _ := row["id"].(string)
	if id == "" {
		t.Fatal("expected series id in output")
	}
	return id
}

func addSong(t *testing.T, runner *Runner, output *bytes.Buffer, seriesID, title, artist string) string {
	t.Helper()

	output.Reset()
	if err := runCLI(runner, "song", "add", "--title", title, "--artist", artist, "--series", seriesID, "--json"); err != nil {
		t.Fatalf("song add failed: %v", err)
	}

	var row map[string]any
	if err := json.Unmarshal(output.Bytes(), &row); err != nil {
		t.Fatalf("failed to parse song JSON: %v\n%s", err, output.String())
	}
	output.Reset()

	id, _ := row["id"].(string)
	if id == "" {
		t.Fatal("expected song id in output")
	}
	return id
}

func registerAlbum(catalog *tu.MockCatalog, artist, album string, tracks []models.ExternalTrack) {
	ref := &models.AlbumRef{ID: "alb-" + album, Name: album, Artist: artist}
	catalog.Albums[services.AlbumQueries(artist, album)[0]] = ref
	catalog.Tracks[ref.ID] = tracks
}

func showTracklist(t *testing.T, runner *Runner, output *bytes.Buffer, seriesID string) []models.TracklistItem {
	t.Helper()

	output.Reset()
	if err := runCLI(runner, "tracklist", "show", seriesID, "--json"); err != nil {
		t.Fatalf("tracklist show failed: %v", err)
	}

	var items []models.TracklistItem
	if err := json.Unmarshal(output.Bytes(), &items); err != nil {
		t.Fatalf("failed to parse tracklist JSON: %v\n%s", err, output.String())
	}
	output.Reset()
	return items
}
