package excellent

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Cache defaults
const (
	DefaultCacheTTL              = 5 * time.Minute
	DefaultCacheMaxEntries       = 1000
	DefaultCacheNegativeCacheTTL = 30 * time.Second
)

// CachedStorage wraps any TemplateStorage with in-memory caching of Get.
// Cached translations are served until the TTL expires or a write through
// the cache invalidates them.
type CachedStorage struct {
	storage TemplateStorage
	config  CacheConfig

	mu     sync.Mutex
	cache  map[templateKey]*cacheEntry
	closed bool
	// generation is bumped on every invalidation; a fetch that overlaps one
	// is returned but not cached
	generation uint64
}

// CacheConfig configures the caching behavior.
type CacheConfig struct {
	// TTL is how long cached entries remain valid.
	// Default: 5 minutes.
	TTL time.Duration

	// MaxEntries is the maximum number of cached translations.
	// When exceeded, the least recently used entry is evicted.
	// Default: 1000.
	MaxEntries int

	// NegativeCacheTTL is how long to cache "not found" results.
	// Set to 0 to disable negative caching.
	NegativeCacheTTL time.Duration
}

// DefaultCacheConfig returns the default caching configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:              DefaultCacheTTL,
		MaxEntries:       DefaultCacheMaxEntries,
		NegativeCacheTTL: DefaultCacheNegativeCacheTTL,
	}
}

// CacheStats contains cache statistics.
type CacheStats struct {
	Entries         int
	ValidEntries    int
	NegativeEntries int
}

type cacheEntry struct {
	template   *StoredTemplate
	notFound   bool
	cachedAt   time.Time
	accessedAt time.Time
}

// NewCachedStorage wraps a storage with caching.
func NewCachedStorage(storage TemplateStorage, config CacheConfig) *CachedStorage {
	if config.TTL == 0 {
		config.TTL = DefaultCacheTTL
	}
	if config.MaxEntries == 0 {
		config.MaxEntries = DefaultCacheMaxEntries
	}

	return &CachedStorage{
		storage: storage,
		config:  config,
		cache:   make(map[templateKey]*cacheEntry),
	}
}

// Get retrieves the latest version of a translation, using the cache when possible.
func (s *CachedStorage) Get(ctx context.Context, name, language string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := templateKey{name: name, language: language}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, NewStorageClosedError()
	}
	if entry, ok := s.cache[key]; ok && s.isValid(entry) {
		entry.accessedAt = time.Now()
		tmpl, notFound := copyStoredTemplate(entry.template), entry.notFound
		s.mu.Unlock()

		if notFound {
			return nil, NewTemplateNotFoundError(name, language)
		}
		return tmpl, nil
	}
	generation := s.generation
	s.mu.Unlock()

	tmpl, err := s.storage.Get(ctx, name, language)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	stale := generation != s.generation

	if err != nil {
		if errors.Is(err, ErrTemplateNotFound) && s.config.NegativeCacheTTL > 0 && !stale {
			s.addEntry(key, nil, true)
		}
		return nil, err
	}

	if !stale {
		s.addEntry(key, tmpl, false)
	}
	return copyStoredTemplate(tmpl), nil
}

// Save stores a template and invalidates its cached translation.
func (s *CachedStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := s.storage.Save(ctx, tmpl); err != nil {
		return err
	}

	s.Invalidate(tmpl.Name, tmpl.Language)
	return nil
}

// Delete removes templates and invalidates the affected cache entries.
func (s *CachedStorage) Delete(ctx context.Context, name, language string) error {
	if err := s.storage.Delete(ctx, name, language); err != nil {
		return err
	}

	s.Invalidate(name, language)
	return nil
}

// List returns templates matching the query (bypasses cache).
func (s *CachedStorage) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
	return s.storage.List(ctx, query)
}

// Close closes the cache and underlying storage.
func (s *CachedStorage) Close() error {
	s.mu.Lock()
	s.closed = true
	s.cache = nil
	s.mu.Unlock()

	return s.storage.Close()
}

// Invalidate removes a translation from the cache, or every translation of
// name when language is empty.
func (s *CachedStorage) Invalidate(name, language string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	for key := range s.cache {
		if key.name == name && (language == "" || key.language == language) {
			delete(s.cache, key)
		}
	}
}

// InvalidateAll clears the entire cache.
func (s *CachedStorage) InvalidateAll() {
	s.mu.Lock()
	s.generation++
	s.cache = make(map[templateKey]*cacheEntry)
	s.mu.Unlock()
}

// Stats returns cache statistics.
func (s *CachedStorage) Stats() CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := CacheStats{Entries: len(s.cache)}
	for _, entry := range s.cache {
		if !s.isValid(entry) {
			continue
		}
		if entry.notFound {
			stats.NegativeEntries++
		} else {
			stats.ValidEntries++
		}
	}
	return stats
}

// isValid checks if a cache entry is still valid.
func (s *CachedStorage) isValid(entry *cacheEntry) bool {
	ttl := s.config.TTL
	if entry.notFound {
		ttl = s.config.NegativeCacheTTL
	}
	return time.Since(entry.cachedAt) < ttl
}

// addEntry adds an entry, evicting the least recently used one at capacity.
// Caller must hold the lock.
func (s *CachedStorage) addEntry(key templateKey, tmpl *StoredTemplate, notFound bool) {
	if _, exists := s.cache[key]; !exists && len(s.cache) >= s.config.MaxEntries {
		s.evictOldest()
	}

	now := time.Now()
	s.cache[key] = &cacheEntry{
		template:   copyStoredTemplate(tmpl),
		notFound:   notFound,
		cachedAt:   now,
		accessedAt: now,
	}
}

// evictOldest removes the least recently accessed entry.
// Caller must hold the lock.
func (s *CachedStorage) evictOldest() {
	var (
		oldestKey templateKey
		oldest    *cacheEntry
	)
	for key, entry := range s.cache {
		if oldest == nil || entry.accessedAt.Before(oldest.accessedAt) {
			oldestKey, oldest = key, entry
		}
	}
	if oldest != nil {
		delete(s.cache, oldestKey)
	}
}
