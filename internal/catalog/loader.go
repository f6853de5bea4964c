// Package catalog keeps the listing snapshot the search endpoint scans.
// Snapshots are replaced wholesale and never mutated, so readers share them
// without copying.
package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Marga-Ghale/backpackers-backend/internal/logger"
	"github.com/Marga-Ghale/backpackers-backend/internal/repository"
	"github.com/Marga-Ghale/backpackers-backend/internal/search"
)

const cacheKey = "catalog:snapshot"

// Cache is the subset of db.RedisDB the loader needs.
type Cache interface {
	SetCache(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetCache(ctx context.Context, key string, dest interface{}) error
}

type Loader struct {
	repo  repository.CatalogRepository
	cache Cache
	ttl   time.Duration

	mu       sync.RWMutex
	snapshot search.Catalog
	loadedAt time.Time
}

// NewLoader builds a loader. cache may be nil.
func NewLoader(repo repository.CatalogRepository, cache Cache, ttl time.Duration) *Loader {
	return &Loader{repo: repo, cache: cache, ttl: ttl}
}

// Snapshot returns the current catalog. Callers must not modify it.
func (l *Loader) Snapshot() search.Catalog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot
}

func (l *Loader) LoadedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loadedAt
}

// Refresh reloads from the repository and republishes to the cache. On a
// repository error the previous snapshot stays in place.
func (l *Loader) Refresh(ctx context.Context) error {
	fresh, err := l.repo.LoadCatalog(ctx)
	if err != nil {
		return err
	}

	if l.cache != nil {
		if err := l.cache.SetCache(ctx, cacheKey, fresh, l.ttl); err != nil {
			logger.Component("catalog").WithError(err).Warn("failed to cache catalog snapshot")
		}
	}

	l.swap(fresh)
	logger.Component("catalog").WithField("listings", len(fresh.Rentals)+len(fresh.Sightseeing)+len(fresh.Tours)).
		Debug("catalog refreshed")
	return nil
}

// Warm loads the first snapshot, preferring a cached copy so a restart does
// not have to wait on the database.
func (l *Loader) Warm(ctx context.Context) error {
	if l.cache != nil {
		var cached search.Catalog
		err := l.cache.GetCache(ctx, cacheKey, &cached)
		switch {
		case err == nil:
			l.swap(cached)
			logger.Component("catalog").Info("catalog warmed from cache")
			return nil
		case !errors.Is(err, redis.Nil):
			logger.Component("catalog").WithError(err).Warn("catalog cache read failed")
		}
	}
	return l.Refresh(ctx)
}

func (l *Loader) swap(c search.Catalog) {
	l.mu.Lock()
	l.snapshot = c
	l.loadedAt = time.Now()
	l.mu.Unlock()
}
