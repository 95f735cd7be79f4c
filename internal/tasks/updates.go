package tasks

import (
	"fmt"

	"packtrack/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSeries Phase = iota
	SearchAlbum
	FetchTracks
	BuildIndex
	MatchTracks
	CheckOfficial
	SortTracks
)

func (p Phase) String() string {
	switch p {
	case FetchSeries:
		return "fetch_series"
	case SearchAlbum:
		return "search_album"
	case FetchTracks:
		return "fetch_tracks"
	case BuildIndex:
		return "build_index"
	case MatchTracks:
		return "match_tracks"
	case CheckOfficial:
		return "check_official"
	case SortTracks:
		return "sort_tracks"
	default:
		return ""
	}
}

func fetchSeriesUpdate(series *models.Series) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSeries,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded series: %s - %s", series.Artist(), series.Album()),
		Data:    series,
	}
}

func searchAlbumUpdate(step, total int, query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchAlbum,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Searching catalog: %s", query),
	}
}

func foundAlbumUpdate(ref *models.AlbumRef) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchAlbum,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found album: %s (ID: %s)", ref.Name, ref.ID),
		Data:    ref,
	}
}

func fetchTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %d tracks", count),
	}
}

func buildIndexUpdate(seriesSongs, globalSongs int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildIndex,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Indexed %d series songs, %d same-artist songs", seriesSongs, globalSongs),
	}
}

func matchTrackUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, title),
	}
}

func checkOfficialUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckOfficial,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Checking release status: %s", step, total, title),
	}
}

func sortTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SortTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Sorted %d tracks", count),
	}
}
