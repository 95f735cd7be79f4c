// Spotify implementation of [CatalogService]
//
// Uses the client-credentials grant; album search and tracklist retrieval
// only touch public catalog data, so no user authorization is involved.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"packtrack/internal/models"
	"packtrack/internal/shared"
)

const (
	defaultCatalogBaseURL  = "https://api.spotify.com/v1"
	defaultCatalogTokenURL = "https://accounts.spotify.com/api/token"

	catalogRequestTimeout = 10 * time.Second
	catalogRequestsPerSec = 5
)

type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// spotifyAlbum represents an album object in search responses.
type spotifyAlbum struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []spotifyArtist `json:"artists"`
	Images  []spotifyImage  `json:"images"`
	URI     string          `json:"uri"`
}

// spotifyAlbumTrack represents a simplified track object in album tracklists.
type spotifyAlbumTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []spotifyArtist `json:"artists"`
	DiscNumber  int             `json:"disc_number"`
	TrackNumber int             `json:"track_number"`
	URI         string          `json:"uri"`
}

type albumSearchResponse struct {
	Albums struct {
		Items []spotifyAlbum `json:"items"`
		Total int            `json:"total"`
	} `json:"albums"`
}

type albumTracksResponse struct {
	Items []spotifyAlbumTrack `json:"items"`
	Total int                 `json:"total"`
	Next  *string             `json:"next"`
}

// SpotifyCatalog implements [CatalogService] against the Spotify Web API.
type SpotifyCatalog struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSpotifyCatalog creates a catalog client authenticated via the
// client-credentials flow. baseURL and tokenURL fall back to the public
// Spotify endpoints when empty.
func NewSpotifyCatalog(credentials map[string]string) (*SpotifyCatalog, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	baseURL := credentials["base_url"]
	if baseURL == "" {
		baseURL = defaultCatalogBaseURL
	}
	tokenURL := credentials["token_url"]
	if tokenURL == "" {
		tokenURL = defaultCatalogTokenURL
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}

	client := config.Client(context.Background())
	client.Timeout = catalogRequestTimeout

	return &SpotifyCatalog{
		baseURL:    baseURL,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(catalogRequestsPerSec), 1),
	}, nil
}

// Name returns the provider name.
func (s *SpotifyCatalog) Name() string { return "Spotify" }

func (s *SpotifyCatalog) doRequest(ctx context.Context, endpoint string, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrUpstreamUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return shared.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: catalog returned status %d", shared.ErrUpstreamUnavailable, resp.StatusCode)
		}
		return fmt.Errorf("%w: catalog returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SearchAlbum resolves a query to the first album hit.
//
// Calls GET /search?type=album&limit=1.
func (s *SpotifyCatalog) SearchAlbum(ctx context.Context, query string) (*models.AlbumRef, error) {
	endpoint := fmt.Sprintf("/search?q=%s&type=album&limit=1", url.QueryEscape(query))

	var searchResp albumSearchResponse
	if err := s.doRequest(ctx, endpoint, &searchResp); err != nil {
		return nil, err
	}

	if len(searchResp.Albums.Items) == 0 {
		return nil, fmt.Errorf("%w: no album for query %q", shared.ErrNotFound, query)
	}

	album := searchResp.Albums.Items[0]
	ref := &models.AlbumRef{ID: album.ID, Name: album.Name}
	if len(album.Artists) > 0 {
		ref.Artist = album.Artists[0].Name
	}

	return ref, nil
}

// AlbumTracks fetches the full tracklist for an album, following pagination.
//
// Calls GET /albums/{id}/tracks.
func (s *SpotifyCatalog) AlbumTracks(ctx context.Context, ref *models.AlbumRef) ([]models.ExternalTrack, error) {
	if ref == nil || ref.ID == "" {
		return nil, fmt.Errorf("%w: album reference required", shared.ErrInvalidArgument)
	}

	var tracks []models.ExternalTrack
	endpoint := fmt.Sprintf("/albums/%s/tracks?limit=50", url.PathEscape(ref.ID))

	for endpoint != "" {
		var page albumTracksResponse
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			tracks = append(tracks, models.ExternalTrack{
				ExternalID:  item.ID,
				Title:       item.Name,
				DiscNumber:  item.DiscNumber,
				TrackNumber: item.TrackNumber,
			})
		}

		endpoint = ""
		if page.Next != nil && *page.Next != "" {
			if next, err := trimBaseURL(s.baseURL, *page.Next); err == nil {
				endpoint = next
			}
		}
	}

	return tracks, nil
}

// trimBaseURL converts an absolute pagination URL into a path+query endpoint
// relative to the configured base URL.
func trimBaseURL(base, full string) (string, error) {
	if len(full) < len(base) || full[:len(base)] != base {
		return "", errors.New("pagination URL outside base URL")
	}
	return full[len(base):], nil
}
