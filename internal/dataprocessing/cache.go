package dataprocessing

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"vgsales/pkg/contracts/domain"
)

// DatasetSource loads a dataset for a source identity.
type DatasetSource interface {
	Load(ctx context.Context, source string) (*domain.Dataset, error)
}

type cacheEntry struct {
	dataset *domain.Dataset
	err     error
}

// DatasetCache memoizes one load per source for the lifetime of the cache.
// Failed loads are memoized as well; nothing is reloaded until the process
// (and therefore the cache) is recreated. Concurrent first calls for the same
// source share a single load.
type DatasetCache struct {
	loader DatasetSource
	group  singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewDatasetCache creates an empty cache in front of loader.
func NewDatasetCache(loader DatasetSource) *DatasetCache {
	return &DatasetCache{
		loader:  loader,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the dataset for source, loading it on first access.
func (c *DatasetCache) Get(ctx context.Context, source string) (*domain.Dataset, error) {
	key := SourceKey(source)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return e.dataset, e.err
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		e, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return e, nil
		}

		ds, err := c.loader.Load(ctx, source)
		if ds == nil {
			ds = domain.EmptyDataset(source)
		}
		e = cacheEntry{dataset: ds, err: err}

		c.mu.Lock()
		c.entries[key] = e
		c.mu.Unlock()
		return e, nil
	})
	e = v.(cacheEntry)
	return e.dataset, e.err
}

// SourceKey normalizes a source path into its cache identity.
func SourceKey(source string) string {
	if abs, err := filepath.Abs(source); err == nil {
		return abs
	}
	return filepath.Clean(source)
}
