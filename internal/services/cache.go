package services

import (
	"context"
	"sync"
	"time"

	"packtrack/internal/models"
)

// AlbumCache is a TTL cache for catalog lookups. Injected into
// [CachedCatalog] rather than held as package state so invalidation and test
// isolation stay explicit.
type AlbumCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	refs    map[string]cachedRef
	tracks  map[string]cachedTracks
	nowFunc func() time.Time
}

type cachedRef struct {
	ref     *models.AlbumRef
	expires time.Time
}

type cachedTracks struct {
	tracks  []models.ExternalTrack
	expires time.Time
}

// NewAlbumCache creates a cache whose entries expire after ttl.
func NewAlbumCache(ttl time.Duration) *AlbumCache {
	return &AlbumCache{
		ttl:     ttl,
		refs:    make(map[string]cachedRef),
		tracks:  make(map[string]cachedTracks),
		nowFunc: time.Now,
	}
}

func (c *AlbumCache) getRef(query string) (*models.AlbumRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.refs[query]
	if !ok || c.nowFunc().After(entry.expires) {
		return nil, false
	}
	return entry.ref, true
}

func (c *AlbumCache) putRef(query string, ref *models.AlbumRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refs[query] = cachedRef{ref: ref, expires: c.nowFunc().Add(c.ttl)}
}

func (c *AlbumCache) getTracks(albumID string) ([]models.ExternalTrack, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.tracks[albumID]
	if !ok || c.nowFunc().After(entry.expires) {
		return nil, false
	}
	return entry.tracks, true
}

func (c *AlbumCache) putTracks(albumID string, tracks []models.ExternalTrack) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracks[albumID] = cachedTracks{tracks: tracks, expires: c.nowFunc().Add(c.ttl)}
}

// Purge drops all cached entries.
func (c *AlbumCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refs = make(map[string]cachedRef)
	c.tracks = make(map[string]cachedTracks)
}

// CachedCatalog decorates a [CatalogService] with an [AlbumCache]. Expired
// entries fall through to the underlying catalog; errors are never cached.
type CachedCatalog struct {
	catalog CatalogService
	cache   *AlbumCache
}

// NewCachedCatalog wraps catalog with cache.
func NewCachedCatalog(catalog CatalogService, cache *AlbumCache) *CachedCatalog {
	return &CachedCatalog{catalog: catalog, cache: cache}
}

// Name returns the underlying provider name.
func (c *CachedCatalog) Name() string { return c.catalog.Name() }

// SearchAlbum returns a cached reference when fresh, otherwise queries the
// underlying catalog and caches the hit.
func (c *CachedCatalog) SearchAlbum(ctx context.Context, query string) (*models.AlbumRef, error) {
	if ref, ok := c.cache.getRef(query); ok {
		return ref, nil
	}

	ref, err := c.catalog.SearchAlbum(ctx, query)
	if err != nil {
		return nil, err
	}

	c.cache.putRef(query, ref)
	return ref, nil
}

// AlbumTracks returns cached tracks when fresh, otherwise fetches and caches.
func (c *CachedCatalog) AlbumTracks(ctx context.Context, ref *models.AlbumRef) ([]models.ExternalTrack, error) {
	if ref != nil {
		if tracks, ok := c.cache.getTracks(ref.ID); ok {
			return tracks, nil
		}
	}

	tracks, err := c.catalog.AlbumTracks(ctx, ref)
	if err != nil {
		return nil, err
	}

	if ref != nil {
		c.cache.putTracks(ref.ID, tracks)
	}
	return tracks, nil
}
