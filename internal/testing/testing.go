// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"packtrack/internal/models"
)

// MockCatalog is a configurable test double for [services.CatalogService].
//
// Albums maps queries to references; Tracks maps album IDs to tracklists.
// Queries and albums without an entry report not-found via Err when set,
// otherwise a generic error.
type MockCatalog struct {
	Albums map[string]*models.AlbumRef
	Tracks map[string][]models.ExternalTrack

	// NotFoundErr is returned for missing queries/albums. Set this to the
	// shared sentinel so errors.Is checks behave like the real client.
	NotFoundErr error

	// Err, when set, fails every call. Simulates an unreachable catalog.
	Err error

	SearchCalls int
	TrackCalls  int
}

func (m *MockCatalog) Name() string { return "mock" }

func (m *MockCatalog) SearchAlbum(ctx context.Context, query string) (*models.AlbumRef, error) {
	m.SearchCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	if ref, ok := m.Albums[query]; ok {
		return ref, nil
	}
	if m.NotFoundErr != nil {
		return nil, m.NotFoundErr
	}
	return nil, errors.New("album not found")
}

func (m *MockCatalog) AlbumTracks(ctx context.Context, ref *models.AlbumRef) ([]models.ExternalTrack, error) {
	m.TrackCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	if ref != nil {
		if tracks, ok := m.Tracks[ref.ID]; ok {
			return tracks, nil
		}
	}
	if m.NotFoundErr != nil {
		return nil, m.NotFoundErr
	}
	return nil, errors.New("tracks not found")
}

// MockChecker is a test double for [services.ReleaseChecker]. Official lists
// known official titles; Err, when set, fails every call. Titles records the
// title of every lookup in call order.
type MockChecker struct {
	Official map[string]bool
	Err      error
	Calls    int
	Titles   []string
}

func (m *MockChecker) IsOfficial(ctx context.Context, title, artist string) (bool, error) {
	m.Calls++
	m.Titles = append(m.Titles, title)
	if m.Err != nil {
		return false, m.Err
	}
	return m.Official[title], nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
}
