package diskkit

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// ============================================================================
// Cache Interface
// ============================================================================

// Cache defines the interface for cache backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value from the cache.
	Get(key string) (any, bool)

	// Set stores a value in the cache with the given TTL.
	// A TTL of 0 means no expiration.
	Set(key string, value any, ttl time.Duration)

	// Delete removes a value from the cache.
	Delete(key string)

	// Clear removes all values from the cache.
	Clear()
}

// cacheEntry represents a single cache entry with expiration.
type cacheEntry struct {
	value      any
	expiration time.Time
	hasExpiry  bool
}

// MemoryCache is a simple in-memory cache implementation.
// It is thread-safe and supports TTL-based expiration.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*cacheEntry),
	}
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if entry.hasExpiry && time.Now().After(entry.expiration) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

// Set stores a value in the cache.
func (c *MemoryCache) Set(key string, value any, ttl time.Duration) {
	entry := &cacheEntry{value: value}
	if ttl > 0 {
		entry.expiration = time.Now().Add(ttl)
		entry.hasExpiry = true
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes all values from the cache.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// ============================================================================
// CachedDisk Decorator
// ============================================================================

// CachedDisk wraps a Disk and caches read and listing results. Writes and
// deletes invalidate the affected entries. Intended for read-heavy access to
// slow backends; it provides no cross-process coherency.
type CachedDisk struct {
	disk  Disk
	cache Cache
	ttl   time.Duration
}

// CacheDiskOption configures a CachedDisk.
type CacheDiskOption func(*CachedDisk)

// WithCache sets the cache backend (default: a fresh MemoryCache).
func WithCache(cache Cache) CacheDiskOption {
	return func(c *CachedDisk) {
		c.cache = cache
	}
}

// WithCacheTTL sets the entry TTL (default: 1 minute; 0 means no expiry).
func WithCacheTTL(ttl time.Duration) CacheDiskOption {
	return func(c *CachedDisk) {
		c.ttl = ttl
	}
}

// NewCachedDisk creates a caching wrapper around a Disk.
func NewCachedDisk(disk Disk, opts ...CacheDiskOption) *CachedDisk {
	c := &CachedDisk{
		disk: disk,
		ttl:  time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NewMemoryCache()
	}
	return c
}

// Unwrap returns the underlying Disk.
func (c *CachedDisk) Unwrap() Disk {
	return c.disk
}

// Name delegates to the underlying disk.
func (c *CachedDisk) Name() string {
	return c.disk.Name()
}

func readKey(path string) string { return "read:" + CleanVirtual(path) }
func listKey(path string) string { return "list:" + CleanVirtual(path) }

// Read returns cached content when available.
func (c *CachedDisk) Read(ctx context.Context, path string) ([]byte, error) {
	if v, ok := c.cache.Get(readKey(path)); ok {
		if data, ok := v.([]byte); ok {
			return append([]byte(nil), data...), nil
		}
	}

	data, err := c.disk.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	c.cache.Set(readKey(path), append([]byte(nil), data...), c.ttl)
	return data, nil
}

// ReadStream serves cached content when available, falling back to the
// underlying disk.
func (c *CachedDisk) ReadStream(ctx context.Context, path string) (io.ReadCloser, error) {
	if v, ok := c.cache.Get(readKey(path)); ok {
		if data, ok := v.([]byte); ok {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	}
	return c.disk.ReadStream(ctx, path)
}

// List returns cached listings when available.
func (c *CachedDisk) List(ctx context.Context, path string) ([]Entry, error) {
	if v, ok := c.cache.Get(listKey(path)); ok {
		if entries, ok := v.([]Entry); ok {
			return append([]Entry(nil), entries...), nil
		}
	}

	entries, err := c.disk.List(ctx, path)
	if err != nil {
		return nil, err
	}
	c.cache.Set(listKey(path), append([]Entry(nil), entries...), c.ttl)
	return entries, nil
}

// Write passes through and invalidates the affected entries.
func (c *CachedDisk) Write(ctx context.Context, path string, content io.Reader, opts ...Option) error {
	if err := c.disk.Write(ctx, path, content, opts...); err != nil {
		return err
	}
	c.invalidate(path)
	return nil
}

// WriteStream passes through; the write completes asynchronously, so the
// whole cache is dropped on stream close rather than tracking the one path.
func (c *CachedDisk) WriteStream(ctx context.Context, path string, opts ...Option) (io.WriteCloser, error) {
	wc, err := c.disk.WriteStream(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	return &invalidatingWriter{WriteCloser: wc, disk: c, path: path}, nil
}

// Delete passes through and invalidates the affected entries.
func (c *CachedDisk) Delete(ctx context.Context, path string) error {
	if err := c.disk.Delete(ctx, path); err != nil {
		return err
	}
	c.invalidate(path)
	return nil
}

// invalidate drops the cached content for path and the listing of its parent
// directory.
func (c *CachedDisk) invalidate(path string) {
	c.cache.Delete(readKey(path))

	cleaned := CleanVirtual(path)
	parent := ""
	if i := lastSlash(cleaned); i >= 0 {
		parent = cleaned[:i]
	}
	c.cache.Delete(listKey(parent))
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

type invalidatingWriter struct {
	io.WriteCloser
	disk *CachedDisk
	path string
}

func (w *invalidatingWriter) Close() error {
	err := w.WriteCloser.Close()
	w.disk.invalidate(w.path)
	return err
}

// Ensure CachedDisk implements the disk contract
var _ Disk = (*CachedDisk)(nil)
