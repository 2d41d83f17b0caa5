package store

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyagen/radiodir/internal/cache"
	"github.com/voyagen/radiodir/internal/models"
)

// genreTTLFactor stretches the TTL for genre keys, which only change on import.
const genreTTLFactor = 5

// CachedStore wraps a Store with a Redis caching layer.
// Genre and station reads are served from cache when possible; every write
// invalidates the affected keys. Country reads, related-station candidate
// queries and the sitemap slug export always go to the inner store.
type CachedStore struct {
	inner Store
	cache *cache.Redis
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedStore creates a CachedStore that wraps inner with Redis caching.
// Station entries live for ttl; genre entries for genreTTLFactor*ttl.
func NewCachedStore(inner Store, c *cache.Redis, ttl time.Duration, log *zap.Logger) *CachedStore {
	return &CachedStore{inner: inner, cache: c, ttl: ttl, log: log.With(zap.String("pkg", "store.cached"))}
}

// cached serves key from Redis or loads it via load and stores the result.
func cached[T any](ctx context.Context, c *CachedStore, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if v, err := cache.Get[T](ctx, c.cache, key); err == nil {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	if err := cache.Set(ctx, c.cache, key, v, ttl); err != nil {
		c.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// --- cached read operations ---

// ListGenres is cached under genres:all for genreTTLFactor*ttl and dropped
// whenever a genre is created.
func (c *CachedStore) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return cached(ctx, c, cache.Key("genres", "all"), genreTTLFactor*c.ttl, func() ([]models.Genre, error) {
		return c.inner.ListGenres(ctx)
	})
}

// GetGenreBySlug is cached per slug like ListGenres. Misses are not cached.
func (c *CachedStore) GetGenreBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	return cached(ctx, c, cache.Key("genres", "slug", slug), genreTTLFactor*c.ttl, func() (*models.Genre, error) {
		return c.inner.GetGenreBySlug(ctx, slug)
	})
}

// stationListResult caches the ListStations tuple.
type stationListResult struct {
	Stations []models.Station `json:"stations"`
	Total    int              `json:"total"`
}

// ListStations caches the page and total per query for ttl. Any station
// write drops every stations:* key.
func (c *CachedStore) ListStations(ctx context.Context, q StationQuery) ([]models.Station, int, error) {
	key := cache.Key("stations", "list", queryHash(q))
	res, err := cached(ctx, c, key, c.ttl, func() (stationListResult, error) {
		stations, total, err := c.inner.ListStations(ctx, q)
		return stationListResult{Stations: stations, Total: total}, err
	})
	if err != nil {
		return nil, 0, err
	}
	return res.Stations, res.Total, nil
}

// GetStationBySlug is cached per slug for ttl. Misses are not cached.
func (c *CachedStore) GetStationBySlug(ctx context.Context, slug string) (*models.Station, error) {
	return cached(ctx, c, cache.Key("stations", "slug", slug), c.ttl, func() (*models.Station, error) {
		return c.inner.GetStationBySlug(ctx, slug)
	})
}

// SearchStations is cached per text and limit for ttl.
func (c *CachedStore) SearchStations(ctx context.Context, text string, limit int) ([]models.Station, error) {
	key := cache.Key("stations", "search", hash(struct {
		Text  string
		Limit int
	}{text, limit}))
	return cached(ctx, c, key, c.ttl, func() ([]models.Station, error) {
		return c.inner.SearchStations(ctx, text, limit)
	})
}

// ListGenreNamesByCountry is cached per country for genreTTLFactor*ttl and
// dropped with the other stations:* keys.
func (c *CachedStore) ListGenreNamesByCountry(ctx context.Context, countryID uuid.UUID) ([]string, error) {
	return cached(ctx, c, cache.Key("stations", "country-genres", countryID.String()), genreTTLFactor*c.ttl, func() ([]string, error) {
		return c.inner.ListGenreNamesByCountry(ctx, countryID)
	})
}

// --- write operations with cache invalidation ---

// CreateGenre writes through and invalidates every genres:* key.
func (c *CachedStore) CreateGenre(ctx context.Context, g *models.Genre) error {
	if err := c.inner.CreateGenre(ctx, g); err != nil {
		return err
	}
	c.invalidatePattern(ctx, cache.Key("genres", "*"))
	return nil
}

// CreateStation writes through and invalidates every stations:* key.
func (c *CachedStore) CreateStation(ctx context.Context, st *models.Station) error {
	if err := c.inner.CreateStation(ctx, st); err != nil {
		return err
	}
	c.invalidatePattern(ctx, cache.Key("stations", "*"))
	return nil
}

// DeleteAllStations writes through and invalidates every stations:* key.
func (c *CachedStore) DeleteAllStations(ctx context.Context) error {
	if err := c.inner.DeleteAllStations(ctx); err != nil {
		return err
	}
	c.invalidatePattern(ctx, cache.Key("stations", "*"))
	return nil
}

// --- passthrough (no caching) ---
//
// Countries, related-station candidates, the slug export and existence
// checks always read the inner store.

// Ping checks the inner store, then Redis.
func (c *CachedStore) Ping(ctx context.Context) error {
	if err := c.inner.Ping(ctx); err != nil {
		return err
	}
	return c.cache.Ping(ctx)
}

func (c *CachedStore) ListCountries(ctx context.Context) ([]models.Country, error) {
	return c.inner.ListCountries(ctx)
}

func (c *CachedStore) GetCountryByCode(ctx context.Context, code string) (*models.Country, error) {
	return c.inner.GetCountryByCode(ctx, code)
}

func (c *CachedStore) GetCountryByID(ctx context.Context, id uuid.UUID) (*models.Country, error) {
	return c.inner.GetCountryByID(ctx, id)
}

func (c *CachedStore) CreateCountry(ctx context.Context, country *models.Country) error {
	return c.inner.CreateCountry(ctx, country)
}

func (c *CachedStore) ListGenresByNames(ctx context.Context, names []string) ([]models.Genre, error) {
	return c.inner.ListGenresByNames(ctx, names)
}

func (c *CachedStore) ListStationsByCity(ctx context.Context, city, excludeSlug string, limit int) ([]models.Station, error) {
	return c.inner.ListStationsByCity(ctx, city, excludeSlug, limit)
}

func (c *CachedStore) ListStationsByGenres(ctx context.Context, genreIDs []uuid.UUID, excludeSlug string, limit int) ([]models.Station, error) {
	return c.inner.ListStationsByGenres(ctx, genreIDs, excludeSlug, limit)
}

func (c *CachedStore) ListStationSlugs(ctx context.Context) ([]models.StationSlug, error) {
	return c.inner.ListStationSlugs(ctx)
}

func (c *CachedStore) StationSlugExists(ctx context.Context, slug string) (bool, error) {
	return c.inner.StationSlugExists(ctx, slug)
}

func (c *CachedStore) CountStations(ctx context.Context) (int, error) {
	return c.inner.CountStations(ctx)
}

// --- helpers ---

// invalidatePattern deletes all keys matching the given glob patterns.
func (c *CachedStore) invalidatePattern(ctx context.Context, patterns ...string) {
	for _, p := range patterns {
		if err := cache.DelPattern(ctx, c.cache, p); err != nil {
			c.log.Warn("cache invalidation failed", zap.String("pattern", p), zap.Error(err))
		}
	}
}

// queryHash produces a short deterministic hash for a StationQuery so it
// can be used as part of a cache key. Fields are JSON encoded so no
// separator inside a value can make two queries share a key.
func queryHash(q StationQuery) string {
	return hash(q)
}

// hash returns the first 8 bytes of the SHA-256 of v's JSON encoding, in hex.
func hash(v any) string {
	// Only strings, ints and uuids are hashed here; encoding cannot fail.
	raw, _ := json.Marshal(v)
	h := sha256.Sum256(raw)
	return fmt.Sprintf("%x", h[:8])
}
