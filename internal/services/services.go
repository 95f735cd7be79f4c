// package services defines interfaces for the external collaborators of the
// reconciliation engine: the streaming catalog and the official-release
// checker.
package services

import (
	"context"

	"packtrack/internal/models"
)

// CatalogService is the external streaming catalog: album search plus
// ordered tracklist retrieval.
type CatalogService interface {
	// SearchAlbum resolves a free-form query to an album reference.
	// Returns shared.ErrNotFound (wrapped) when the query yields nothing,
	// shared.ErrUpstreamUnavailable on transport failures.
	SearchAlbum(ctx context.Context, query string) (*models.AlbumRef, error)

	// AlbumTracks returns the album's tracks in catalog order.
	AlbumTracks(ctx context.Context, ref *models.AlbumRef) ([]models.ExternalTrack, error)

	// Name returns the provider name for logging.
	Name() string
}

// ReleaseChecker answers whether a (title, artist) pair is already an
// official release in a reference catalog. Errors are expected to be
// degraded to false by callers, never fatal.
type ReleaseChecker interface {
	IsOfficial(ctx context.Context, title, artist string) (bool, error)
}

// AlbumQueries builds the search query ladder for an artist+album pair, from
// most to least specific. The reconciler tries each in order and takes the
// first non-empty result.
func AlbumQueries(artist, album string) []string {
	return []string{
		`album:"` + album + `" artist:"` + artist + `"`,
		`album:"` + album + `"`,
		album + " " + artist,
		artist + " " + album,
	}
}
