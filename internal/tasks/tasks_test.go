package tasks

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"packtrack/internal/models"
	"packtrack/internal/repositories"
	"packtrack/internal/services"
	"packtrack/internal/shared"
	tu "packtrack/internal/testing"
)

// testEnv bundles an engine with its backing stores and mock services.
type testEnv struct {
	db        *sql.DB
	engine    *ReconcileEngine
	catalog   *tu.MockCatalog
	checker   *tu.MockChecker
	series    *repositories.SeriesRepository
	songs     *repositories.SongRepository
	overrides *repositories.OverrideRepository
	flags     *repositories.FlagRepository
}

func setupEngine(t *testing.T) *testEnv {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	catalog := &tu.MockCatalog{
		Albums:      map[string]*models.AlbumRef{},
		Tracks:      map[string][]models.ExternalTrack{},
		NotFoundErr: shared.ErrNotFound,
	}
	checker := &tu.MockChecker{Official: map[string]bool{}}

	seriesRepo := repositories.NewSeriesRepository(db)
	songRepo := repositories.NewSongRepository(db)
	overrideRepo := repositories.NewOverrideRepository(db)
	flagRepo := repositories.NewFlagRepository(db)

	return &testEnv{
		db:        db,
		engine:    NewReconcileEngine(catalog, checker, seriesRepo, songRepo, overrideRepo, flagRepo, nil, 0),
		catalog:   catalog,
		checker:   checker,
		series:    seriesRepo,
		songs:     songRepo,
		overrides: overrideRepo,
		flags:     flagRepo,
	}
}

// seedSeries creates a series and registers its album on the mock catalog.
func (env *testEnv) seedSeries(t *testing.T, artist, album string, tracks []models.ExternalTrack) *models.Series {
	t.Helper()

	series := models.NewSeries(0, artist, album)
	if err := env.series.Create(series); err != nil {
		t.Fatalf("failed to create series: %v", err)
	}

	ref := &models.AlbumRef{ID: "alb-" + album, Name: album, Artist: artist}
	env.catalog.Albums[services.AlbumQueries(artist, album)[0]] = ref
	env.catalog.Tracks[ref.ID] = tracks

	return series
}

func (env *testEnv) addSong(t *testing.T, seriesID, title, artist, status string) *models.Song {
	t.Helper()

	song := models.NewSong(0, seriesID, title, artist, status)
	if err := env.songs.Create(song); err != nil {
		t.Fatalf("failed to create song: %v", err)
	}
	return song
}

func findItem(t *testing.T, items []models.TracklistItem, externalID string) *models.TracklistItem {
	t.Helper()
	for i := range items {
		if items[i].ExternalID == externalID {
			return &items[i]
		}
	}
	t.Fatalf("no item with external id %s", externalID)
	return nil
}

func TestReconcile(t *testing.T) {
	t.Run("two-track album", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", []models.ExternalTrack{
			{ExternalID: "t2", Title: "Main Song (Remastered)", DiscNumber: 1, TrackNumber: 2},
			{ExternalID: "t1", Title: "Intro", DiscNumber: 1, TrackNumber: 1},
		})
		song := env.addSong(t, series.ID(), "Main Song", "Artist A", "released")
		env.checker.Official["main song"] = true

		items, err := env.engine.Reconcile(context.Background(), nil, series.ID())
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}

		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}

		// Sorted by track number regardless of catalog order.
		if items[0].ExternalID != "t1" || items[1].ExternalID != "t2" {
			t.Errorf("unexpected order: %s, %s", items[0].ExternalID, items[1].ExternalID)
		}

		intro := findItem(t, items, "t1")
		if intro.InPack || intro.SongID != "" {
			t.Errorf("Intro should be unmatched: %+v", intro)
		}
		if intro.Official {
			t.Error("Intro should not be official")
		}

		main := findItem(t, items, "t2")
		if !main.InPack || main.SongID != song.ID() {
			t.Errorf("remastered title should match the tracked song: %+v", main)
		}
		if main.Status != "released" {
			t.Errorf("expected status from matched song, got %q", main.Status)
		}
		if !main.Official {
			t.Error("checker marked this track official")
		}
		if main.TitleClean != "main song" {
			t.Errorf("unexpected normalized title: %q", main.TitleClean)
		}

		// The checker sees normalized titles, in catalog order.
		if got := env.checker.Titles; len(got) != 2 || got[0] != "main song" || got[1] != "intro" {
			t.Errorf("checker should be queried with normalized titles, got %v", got)
		}
	})

	t.Run("missing series", func(t *testing.T) {
		env := setupEngine(t)

		_, err := env.engine.Reconcile(context.Background(), nil, "nope")
		if !errors.Is(err, shared.ErrSeriesNotFound) {
			t.Errorf("expected ErrSeriesNotFound, got %v", err)
		}
	})

	t.Run("query ladder falls back", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", nil)

		// Move the album to the third query variant only.
		queries := services.AlbumQueries("Artist A", "Album X")
		ref := env.catalog.Albums[queries[0]]
		delete(env.catalog.Albums, queries[0])
		env.catalog.Albums[queries[2]] = ref
		env.catalog.Tracks[ref.ID] = []models.ExternalTrack{
			{ExternalID: "t1", Title: "One", DiscNumber: 1, TrackNumber: 1},
		}

		items, err := env.engine.Reconcile(context.Background(), nil, series.ID())
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if len(items) != 1 {
			t.Errorf("expected 1 item, got %d", len(items))
		}
		if env.catalog.SearchCalls != 3 {
			t.Errorf("expected 3 search attempts, got %d", env.catalog.SearchCalls)
		}
	})

	t.Run("album missing on every query", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", nil)
		env.catalog.Albums = map[string]*models.AlbumRef{}

		_, err := env.engine.Reconcile(context.Background(), nil, series.ID())
		if !errors.Is(err, shared.ErrAlbumNotFound) {
			t.Errorf("expected ErrAlbumNotFound, got %v", err)
		}
	})

	t.Run("unreachable catalog aborts", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", nil)
		env.catalog.Err = shared.ErrUpstreamUnavailable

		_, err := env.engine.Reconcile(context.Background(), nil, series.ID())
		if !errors.Is(err, shared.ErrUpstreamUnavailable) {
			t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
		}
		if env.catalog.SearchCalls != 1 {
			t.Errorf("transport failure should not retry the ladder, got %d calls", env.catalog.SearchCalls)
		}
	})

	t.Run("checker failure degrades to unofficial", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", []models.ExternalTrack{
			{ExternalID: "t1", Title: "One", DiscNumber: 1, TrackNumber: 1},
			{ExternalID: "t2", Title: "Two", DiscNumber: 1, TrackNumber: 2},
		})
		env.checker.Err = shared.ErrUpstreamUnavailable

		items, err := env.engine.Reconcile(context.Background(), nil, series.ID())
		if err != nil {
			t.Fatalf("checker failure must not abort reconciliation: %v", err)
		}
		for _, item := range items {
			if item.Official {
				t.Errorf("expected official=false for %s", item.ExternalID)
			}
		}
		if env.checker.Calls != 2 {
			t.Errorf("expected a check per track, got %d", env.checker.Calls)
		}
	})

	t.Run("override beats automatic match", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", []models.ExternalTrack{
			{ExternalID: "t1", Title: "Main Song", DiscNumber: 1, TrackNumber: 1},
		})
		exact := env.addSong(t, series.ID(), "Main Song", "Artist A", "released")
		other := env.addSong(t, series.ID(), "Something Else", "Artist A", "planned")

		err := env.engine.SetOverride(context.Background(), series.ID(), models.OverrideRequest{
			ExternalID: "t1",
			SongID:     other.ID(),
		})
		if err != nil {
			t.Fatalf("failed to set override: %v", err)
		}

		items, err := env.engine.Reconcile(context.Background(), nil, series.ID())
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if items[0].SongID != other.ID() {
			t.Errorf("override should win over the exact match, got song %s", items[0].SongID)
		}

		// Removing the override restores the automatic match.
		if err := env.engine.DeleteOverride(context.Background(), series.ID(), "t1", ""); err != nil {
			t.Fatalf("failed to delete override: %v", err)
		}

		items, err = env.engine.Reconcile(context.Background(), nil, series.ID())
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if items[0].SongID != exact.ID() {
			t.Errorf("expected automatic match after override removal, got song %s", items[0].SongID)
		}
	})

	t.Run("title-keyed override", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", []models.ExternalTrack{
			{Title: "Obscure B-Side (Live)", DiscNumber: 1, TrackNumber: 1},
		})
		song := env.addSong(t, series.ID(), "Totally Different Name", "Artist A", "planned")

		err := env.engine.SetOverride(context.Background(), series.ID(), models.OverrideRequest{
			TitleClean: "Obscure B-Side (Live)",
			SongID:     song.ID(),
		})
		if err != nil {
			t.Fatalf("failed to set override: %v", err)
		}

		items, err := env.engine.Reconcile(context.Background(), nil, series.ID())
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if !items[0].InPack || items[0].SongID != song.ID() {
			t.Errorf("expected title-keyed override to match: %+v", items[0])
		}
	})

	t.Run("global same-artist match", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", []models.ExternalTrack{
			{ExternalID: "t1", Title: "Stray Song", DiscNumber: 1, TrackNumber: 1},
		})

		// Song tracked outside any series, credited with a featured guest.
		stray := env.addSong(t, "", "Stray Song", "Artist A feat. Guest", "demo")
		env.addSong(t, "", "Stray Song", "Unrelated Band", "demo")

		items, err := env.engine.Reconcile(context.Background(), nil, series.ID())
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if items[0].SongID != stray.ID() {
			t.Errorf("expected same-artist song to match, got %s", items[0].SongID)
		}
	})

	t.Run("global containment is one-directional", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A feat. Guest", "Album X", []models.ExternalTrack{
			{ExternalID: "t1", Title: "Stray Song", DiscNumber: 1, TrackNumber: 1},
		})

		// The candidate's artist must contain the series artist, not the
		// other way around.
		env.addSong(t, "", "Stray Song", "Artist A", "demo")

		items, err := env.engine.Reconcile(context.Background(), nil, series.ID())
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if items[0].InPack {
			t.Errorf("shorter artist credit must not match: %+v", items[0])
		}
	})

	t.Run("fuzzy match within series", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", []models.ExternalTrack{
			{ExternalID: "t1", Title: "The Longest Song Title Everx", DiscNumber: 1, TrackNumber: 1},
		})
		song := env.addSong(t, series.ID(), "The Longest Song Title Every", "Artist A", "planned")

		items, err := env.engine.Reconcile(context.Background(), nil, series.ID())
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if !items[0].InPack || items[0].SongID != song.ID() {
			t.Errorf("expected fuzzy match: %+v", items[0])
		}
	})

	t.Run("fuzzy tie resolves to lowest title", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", []models.ExternalTrack{
			{ExternalID: "t1", Title: "The Longest Song Title Everb", DiscNumber: 1, TrackNumber: 1},
		})

		// Both candidates clear the threshold at the same score; insertion
		// order must not decide the winner.
		env.addSong(t, series.ID(), "The Longest Song Title Everc", "Artist A", "planned")
		first := env.addSong(t, series.ID(), "The Longest Song Title Evera", "Artist A", "planned")

		items, err := env.engine.Reconcile(context.Background(), nil, series.ID())
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if items[0].SongID != first.ID() {
			t.Errorf("expected lexicographically first passing title to win, got %s", items[0].SongID)
		}
	})

	t.Run("flags resolved independently of matching", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", []models.ExternalTrack{
			{ExternalID: "t1", Title: "One", DiscNumber: 1, TrackNumber: 1},
			{Title: "Hidden Track", DiscNumber: 1, TrackNumber: 0},
		})

		err := env.engine.SetPreexistingFlags(context.Background(), series.ID(), []models.FlagUpdate{
			{ExternalID: "t1", Value: true},
		})
		if err != nil {
			t.Fatalf("failed to set pre-existing flags: %v", err)
		}
		err = env.engine.SetIrrelevantFlags(context.Background(), series.ID(), []models.FlagUpdate{
			{Title: "Hidden Track", Value: true},
		})
		if err != nil {
			t.Fatalf("failed to set irrelevant flags: %v", err)
		}

		items, err := env.engine.Reconcile(context.Background(), nil, series.ID())
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}

		one := findItem(t, items, "t1")
		if !one.PreExisting || one.Irrelevant {
			t.Errorf("unexpected flags for t1: %+v", one)
		}

		hidden := findItem(t, items, "")
		if !hidden.Irrelevant || hidden.PreExisting {
			t.Errorf("unexpected flags for hidden track: %+v", hidden)
		}
		if hidden.InPack {
			t.Error("flags must not imply a match")
		}
	})

	t.Run("progress updates emitted", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", []models.ExternalTrack{
			{ExternalID: "t1", Title: "One", DiscNumber: 1, TrackNumber: 1},
		})

		progress := make(chan ProgressUpdate, 64)
		if _, err := env.engine.Reconcile(context.Background(), progress, series.ID()); err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		close(progress)

		phases := map[Phase]bool{}
		for update := range progress {
			phases[update.Phase] = true
		}
		for _, phase := range []Phase{FetchSeries, SearchAlbum, FetchTracks, BuildIndex, MatchTracks, CheckOfficial, SortTracks} {
			if !phases[phase] {
				t.Errorf("expected a %s update", phase)
			}
		}
	})
}

func TestSortTracklist(t *testing.T) {
	items := []models.TracklistItem{
		{ExternalID: "d2", DiscNumber: 2, TrackNumber: 1, TitleClean: "a"},
		{ExternalID: "hidden", DiscNumber: 1, TrackNumber: 0, TitleClean: "z hidden"},
		{ExternalID: "b", DiscNumber: 1, TrackNumber: 2, TitleClean: "b"},
		{ExternalID: "a", DiscNumber: 1, TrackNumber: 1, TitleClean: "a"},
		{ExternalID: "hidden2", DiscNumber: 1, TrackNumber: 0, TitleClean: "a hidden"},
	}

	sortTracklist(items)

	want := []string{"a", "b", "hidden2", "hidden", "d2"}
	for i, id := range want {
		if items[i].ExternalID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, items[i].ExternalID)
		}
	}
}

func TestApplyDiscAction(t *testing.T) {
	tracks := []models.ExternalTrack{
		{ExternalID: "d1t1", Title: "One", DiscNumber: 1, TrackNumber: 1},
		{ExternalID: "d2t1", Title: "Bonus One", DiscNumber: 2, TrackNumber: 1},
		{ExternalID: "d2t2", Title: "Bonus Two", DiscNumber: 2, TrackNumber: 2},
	}

	t.Run("mark and unmark", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", tracks)

		count, err := env.engine.ApplyDiscAction(context.Background(), series.ID(), 2, models.MarkIrrelevant)
		if err != nil {
			t.Fatalf("disc action failed: %v", err)
		}
		if count != 2 {
			t.Errorf("expected 2 tracks flagged, got %d", count)
		}

		items, err := env.engine.Reconcile(context.Background(), nil, series.ID())
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if findItem(t, items, "d1t1").Irrelevant {
			t.Error("disc 1 should be untouched")
		}
		if !findItem(t, items, "d2t1").Irrelevant || !findItem(t, items, "d2t2").Irrelevant {
			t.Error("disc 2 should be irrelevant")
		}

		if _, err := env.engine.ApplyDiscAction(context.Background(), series.ID(), 2, models.UnmarkIrrelevant); err != nil {
			t.Fatalf("unmark failed: %v", err)
		}

		items, err = env.engine.Reconcile(context.Background(), nil, series.ID())
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if findItem(t, items, "d2t1").Irrelevant {
			t.Error("disc 2 should be unmarked")
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", tracks)

		_, err := env.engine.ApplyDiscAction(context.Background(), series.ID(), 1, models.DiscAction("explode"))
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("empty disc", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", tracks)

		_, err := env.engine.ApplyDiscAction(context.Background(), series.ID(), 9, models.MarkIrrelevant)
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("failed batch leaves flags untouched", func(t *testing.T) {
		env := setupEngine(t)
		series := env.seedSeries(t, "Artist A", "Album X", tracks)

		_, err := env.db.Exec(`
			CREATE TRIGGER reject_sentinel BEFORE INSERT ON tracklist_flags
			WHEN NEW.external_id = 'd2t2'
			BEGIN SELECT RAISE(ABORT, 'rejected'); END
		`)
		if err != nil {
			t.Fatalf("failed to create trigger: %v", err)
		}

		if _, err := env.engine.ApplyDiscAction(context.Background(), series.ID(), 2, models.MarkIrrelevant); err == nil {
			t.Fatal("expected disc action to fail")
		}

		flags, err := env.flags.ListBySeries(series.ID())
		if err != nil {
			t.Fatalf("failed to list flags: %v", err)
		}
		if len(flags) != 0 {
			t.Errorf("expected no flags after failed action, got %d", len(flags))
		}
	})
}

func TestSetOverrideValidation(t *testing.T) {
	env := setupEngine(t)
	series := env.seedSeries(t, "Artist A", "Album X", nil)

	t.Run("missing song", func(t *testing.T) {
		err := env.engine.SetOverride(context.Background(), series.ID(), models.OverrideRequest{
			ExternalID: "t1",
			SongID:     "nope",
		})
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("missing series", func(t *testing.T) {
		err := env.engine.SetOverride(context.Background(), "nope", models.OverrideRequest{
			ExternalID: "t1",
			SongID:     "whatever",
		})
		if !errors.Is(err, shared.ErrSeriesNotFound) {
			t.Errorf("expected ErrSeriesNotFound, got %v", err)
		}
	})

	t.Run("empty song id", func(t *testing.T) {
		err := env.engine.SetOverride(context.Background(), series.ID(), models.OverrideRequest{ExternalID: "t1"})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
