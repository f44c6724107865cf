package services

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airquality-dashboard/models"
)

type countingLoader struct {
	mu    sync.Mutex
	calls int
	inner LoadFunc
}

func (c *countingLoader) load(path string) (*models.Table, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner(path)
}

func newCountingLoader() *countingLoader {
	return &countingLoader{inner: NewLoader(newTestLogger()).LoadDerived}
}

func TestCacheReusesTable(t *testing.T) {
	path := writeFixture(t, "guanyuan.csv", sampleCSV)
	loader := newCountingLoader()
	cache := NewTableCache(loader.load, newTestLogger())

	first, err := cache.Get(path)
	require.NoError(t, err)
	second, err := cache.Get(path)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, 1, cache.Len())
}

func TestCacheReloadsWhenFileChanges(t *testing.T) {
	path := writeFixture(t, "guanyuan.csv", sampleCSV)
	loader := newCountingLoader()
	cache := NewTableCache(loader.load, newTestLogger())

	first, err := cache.Get(path)
	require.NoError(t, err)

	extra := sampleCSV + "6,2014,1,15,8,90,110,12,12,300,72,-2,1025.2,-19.5,0,N,2,Guanyuan\n"
	require.NoError(t, os.WriteFile(path, []byte(extra), 0644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	second, err := cache.Get(path)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 6, second.Len())
	assert.Equal(t, 2, loader.calls)
}

func TestCacheInvalidate(t *testing.T) {
	path := writeFixture(t, "guanyuan.csv", sampleCSV)
	loader := newCountingLoader()
	cache := NewTableCache(loader.load, newTestLogger())

	_, err := cache.Get(path)
	require.NoError(t, err)
	cache.Invalidate(path)
	assert.Equal(t, 0, cache.Len())

	_, err = cache.Get(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	path := writeFixture(t, "broken.csv", "No,year,month,day,hour\n1,2013,13,1,0\n")
	loader := newCountingLoader()
	cache := NewTableCache(loader.load, newTestLogger())

	for i := 0; i < 2; i++ {
		_, err := cache.Get(path)
		assert.ErrorIs(t, err, ErrMalformedTimestamp)
	}
	assert.Equal(t, 2, loader.calls)
	assert.Equal(t, 0, cache.Len())
}

func TestCacheMissingFile(t *testing.T) {
	loader := &countingLoader{inner: func(string) (*models.Table, error) {
		return nil, errors.New("should not be called")
	}}
	cache := NewTableCache(loader.load, newTestLogger())

	_, err := cache.Get(filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.Equal(t, 0, loader.calls)
}

func TestCacheConcurrentGet(t *testing.T) {
	path := writeFixture(t, "guanyuan.csv", sampleCSV)
	loader := newCountingLoader()
	cache := NewTableCache(loader.load, newTestLogger())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(path)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, loader.calls)
}
