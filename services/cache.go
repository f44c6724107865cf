package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"airquality-dashboard/models"
	"airquality-dashboard/utils"
)

// LoadFunc produces a table for a path, typically Loader.LoadDerived.
type LoadFunc func(path string) (*models.Table, error)

type cacheEntry struct {
	modTime time.Time
	size    int64
	table   *models.Table
}

// TableCache memoizes loaded tables per path. An entry is reused while the
// file's modification time and size are unchanged. Failed loads are not
// cached. Safe for concurrent use.
type TableCache struct {
	mu      sync.Mutex
	load    LoadFunc
	stat    func(string) (os.FileInfo, error)
	logger  *utils.Logger
	entries map[string]cacheEntry
}

// NewTableCache creates an empty cache backed by load.
func NewTableCache(load LoadFunc, logger *utils.Logger) *TableCache {
	return &TableCache{
		load:    load,
		stat:    os.Stat,
		logger:  logger,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the table for path, loading it on first use or when the file
// changed since the cached load.
func (c *TableCache) Get(path string) (*models.Table, error) {
	info, err := c.stat(path)
	if err != nil {
		c.Invalidate(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("cache: stat %q: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[path]; ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		c.logger.Debug("[cache] Hit for %s (session %s)", path, e.table.SessionID)
		return e.table, nil
	}

	c.logger.Debug("[cache] Miss for %s, loading", path)
	t, err := c.load(path)
	if err != nil {
		delete(c.entries, path)
		return nil, err
	}
	c.entries[path] = cacheEntry{modTime: info.ModTime(), size: info.Size(), table: t}
	return t, nil
}

// Invalidate drops the cached table for path.
func (c *TableCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Len returns the number of cached tables.
func (c *TableCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
