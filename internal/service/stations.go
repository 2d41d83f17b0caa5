package service

import (
	"context"
	"math/rand/v2"

	"github.com/voyagen/radiodir/internal/models"
	"github.com/voyagen/radiodir/internal/store"
)

// StationFilter holds the listing parameters accepted by FindAll and
// FindByCountry. Zero Page and Limit select the defaults.
type StationFilter struct {
	Page   int
	Limit  int
	Genres []string // ANY-match on exact genre name
	Search string
	City   string
}

func (f StationFilter) withDefaults() StationFilter {
	if f.Page <= 0 {
		f.Page = models.DefaultPage
	}
	if f.Limit <= 0 {
		f.Limit = models.DefaultPageLimit
	}
	if f.Limit > models.MaxPageLimit {
		f.Limit = models.MaxPageLimit
	}
	return f
}

// Stations is the station catalog.
type Stations struct {
	store     store.Store
	countries *Countries
	intn      func(int) int
}

// NewStations returns a station catalog backed by s.
func NewStations(s store.Store, countries *Countries) *Stations {
	return &Stations{store: s, countries: countries, intn: rand.IntN}
}

// FindAll returns one page of active stations matching f.
func (s *Stations) FindAll(ctx context.Context, f StationFilter) (*models.StationPage, error) {
	return s.list(ctx, f, store.StationQuery{})
}

// FindByCountry is FindAll scoped to the country with code.
func (s *Stations) FindByCountry(ctx context.Context, code string, f StationFilter) (*models.StationPage, error) {
	country, err := s.countries.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, f, store.StationQuery{CountryID: &country.ID})
}

func (s *Stations) list(ctx context.Context, f StationFilter, q store.StationQuery) (*models.StationPage, error) {
	f = f.withDefaults()
	q.Genres = f.Genres
	q.Search = f.Search
	q.City = f.City
	q.Limit = f.Limit
	q.Offset = (f.Page - 1) * f.Limit

	stations, total, err := s.store.ListStations(ctx, q)
	if err != nil {
		return nil, err
	}
	if stations == nil {
		stations = []models.Station{}
	}
	return &models.StationPage{
		Data: stations,
		Meta: models.NewPageMeta(f.Page, f.Limit, total),
	}, nil
}

// FindBySlug returns the active station with slug.
func (s *Stations) FindBySlug(ctx context.Context, slug string) (*models.Station, error) {
	st, err := s.store.GetStationBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "station with slug %s", slug)
	}
	return st, nil
}

// Search matches q against station name or city. limit <= 0 selects
// models.DefaultSearchLimit.
func (s *Stations) Search(ctx context.Context, q string, limit int) ([]models.Station, error) {
	if limit <= 0 {
		limit = models.DefaultSearchLimit
	}
	limit = min(limit, models.MaxPageLimit)
	out, err := s.store.SearchStations(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Station{}
	}
	return out, nil
}

// GenresByCountry returns the sorted distinct genre names of the active
// stations of the country with code.
func (s *Stations) GenresByCountry(ctx context.Context, code string) ([]string, error) {
	country, err := s.countries.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	names, err := s.store.ListGenreNamesByCountry(ctx, country.ID)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// AllSlugs returns sitemap entries for every active station with a country.
func (s *Stations) AllSlugs(ctx context.Context) ([]models.StationSlug, error) {
	out, err := s.store.ListStationSlugs(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.StationSlug{}
	}
	return out, nil
}

// FindBySlugWithRelated returns the station with slug and up to
// models.RelatedStationsLimit related stations: a shuffled sample of stations
// in the same city, topped up from stations sharing a genre. The two tiers
// are not deduplicated against each other.
func (s *Stations) FindBySlugWithRelated(ctx context.Context, slug string) (*models.StationWithRelated, error) {
	st, err := s.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	related := []models.Station{}
	if st.City != nil && *st.City != "" {
		sameCity, err := s.store.ListStationsByCity(ctx, *st.City, st.Slug, models.RelatedCityCandidates)
		if err != nil {
			return nil, err
		}
		shuffle(sameCity, s.intn)
		related = append(related, sameCity[:min(len(sameCity), models.RelatedStationsLimit)]...)
	}

	need := models.RelatedStationsLimit - len(related)
	if need > 0 && len(st.Genres) > 0 {
		sameGenre, err := s.store.ListStationsByGenres(ctx, st.GenreIDs(), st.Slug, need*models.RelatedGenreFactor)
		if err != nil {
			return nil, err
		}
		shuffle(sameGenre, s.intn)
		related = append(related, sameGenre[:min(len(sameGenre), need)]...)
	}

	return &models.StationWithRelated{Station: st, RelatedStations: related}, nil
}
