package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/voyagen/radiodir/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a unique constraint.
	ErrConflict = errors.New("conflict")
)

// Store defines persistence for countries, genres, stations and social links.
type Store interface {
	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// ListCountries returns all countries ordered by name.
	ListCountries(ctx context.Context) ([]models.Country, error)
	// GetCountryByCode returns the country with the exact (already normalized) code.
	GetCountryByCode(ctx context.Context, code string) (*models.Country, error)
	// GetCountryByID returns the country with the given id.
	GetCountryByID(ctx context.Context, id uuid.UUID) (*models.Country, error)
	// CreateCountry inserts c and fills in its id and timestamps.
	CreateCountry(ctx context.Context, c *models.Country) error

	// ListGenres returns all genres ordered by name.
	ListGenres(ctx context.Context) ([]models.Genre, error)
	// GetGenreBySlug returns the genre with the given slug.
	GetGenreBySlug(ctx context.Context, slug string) (*models.Genre, error)
	// ListGenresByNames returns the genres whose name is in names; unknown names are skipped.
	ListGenresByNames(ctx context.Context, names []string) ([]models.Genre, error)
	// CreateGenre inserts g and fills in its id and timestamp.
	CreateGenre(ctx context.Context, g *models.Genre) error

	// ListStations returns one page of hydrated active stations matching q and
	// the total number of matches before limit/offset.
	ListStations(ctx context.Context, q StationQuery) ([]models.Station, int, error)
	// GetStationBySlug returns the hydrated active station with the given slug.
	GetStationBySlug(ctx context.Context, slug string) (*models.Station, error)
	// SearchStations matches text against name or city of active stations.
	SearchStations(ctx context.Context, text string, limit int) ([]models.Station, error)
	// ListStationsByCity returns up to limit active stations in exactly city, excluding excludeSlug.
	ListStationsByCity(ctx context.Context, city, excludeSlug string, limit int) ([]models.Station, error)
	// ListStationsByGenres returns up to limit active stations tagged with any of genreIDs, excluding excludeSlug.
	ListStationsByGenres(ctx context.Context, genreIDs []uuid.UUID, excludeSlug string, limit int) ([]models.Station, error)
	// ListGenreNamesByCountry returns the distinct genre names used by active stations of a country, sorted.
	ListGenreNamesByCountry(ctx context.Context, countryID uuid.UUID) ([]string, error)
	// ListStationSlugs returns sitemap entries for every active station with a country.
	ListStationSlugs(ctx context.Context) ([]models.StationSlug, error)

	// StationSlugExists reports whether any station (active or not) owns slug.
	StationSlugExists(ctx context.Context, slug string) (bool, error)
	// CreateStation inserts st with its genre associations and social links.
	CreateStation(ctx context.Context, st *models.Station) error
	// CountStations returns the number of stations, active or not.
	CountStations(ctx context.Context) (int, error)
	// DeleteAllStations removes every social link, then every station.
	DeleteAllStations(ctx context.Context) error
}

// StationQuery holds filters for listing stations. Only active stations are
// ever returned.
type StationQuery struct {
	CountryID *uuid.UUID
	Genres    []string // ANY-match on exact genre name
	Search    string   // case-insensitive substring on name, description or city
	City      string   // case-insensitive substring on city
	Limit     int
	Offset    int
}
