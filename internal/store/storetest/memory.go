// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voyagen/radiodir/internal/models"
	"github.com/voyagen/radiodir/internal/store"
)

// Memory is an in-memory store.Store. Filtering, ordering and conflict
// behaviour follow the Postgres implementation.
type Memory struct {
	mu        sync.Mutex
	countries []models.Country
	genres    []models.Genre
	stations  []models.Station

	// BeforeCreateCountry and BeforeCreateGenre run before the insert, without
	// the lock held, so a test can create a competing row and force a conflict.
	BeforeCreateCountry func(c *models.Country)
	BeforeCreateGenre   func(g *models.Genre)
	// CreateStationErr, if set and returning non-nil, fails CreateStation.
	CreateStationErr func(st *models.Station) error

	// Now stamps created/updated times.
	Now func() time.Time
}

var _ store.Store = (*Memory)(nil)

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{Now: time.Now}
}

func (m *Memory) Ping(context.Context) error { return nil }

// --- countries ---

func (m *Memory) ListCountries(context.Context) ([]models.Country, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.countries)
	slices.SortStableFunc(out, func(a, b models.Country) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *Memory) GetCountryByCode(_ context.Context, code string) (*models.Country, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.countries {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("GetCountryByCode: %w", store.ErrNotFound)
}

func (m *Memory) GetCountryByID(_ context.Context, id uuid.UUID) (*models.Country, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c := m.countryByID(id); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("GetCountryByID: %w", store.ErrNotFound)
}

func (m *Memory) countryByID(id uuid.UUID) *models.Country {
	for _, c := range m.countries {
		if c.ID == id {
			return &c
		}
	}
	return nil
}

func (m *Memory) CreateCountry(_ context.Context, c *models.Country) error {
	if m.BeforeCreateCountry != nil {
		m.BeforeCreateCountry(c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.countries {
		if existing.Code == c.Code {
			return fmt.Errorf("CreateCountry: %w", store.ErrConflict)
		}
	}
	now := m.Now()
	c.ID = uuid.New()
	c.CreatedAt, c.UpdatedAt = &now, &now
	m.countries = append(m.countries, *c)
	return nil
}

// --- genres ---

func (m *Memory) ListGenres(context.Context) ([]models.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.genres)
	slices.SortStableFunc(out, func(a, b models.Genre) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *Memory) GetGenreBySlug(_ context.Context, slug string) (*models.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.genres {
		if g.Slug == slug {
			return &g, nil
		}
	}
	return nil, fmt.Errorf("GetGenreBySlug: %w", store.ErrNotFound)
}

func (m *Memory) ListGenresByNames(_ context.Context, names []string) ([]models.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Genre
	for _, g := range m.genres {
		if slices.Contains(names, g.Name) {
			out = append(out, g)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Genre) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *Memory) CreateGenre(_ context.Context, g *models.Genre) error {
	if m.BeforeCreateGenre != nil {
		m.BeforeCreateGenre(g)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.genres {
		if existing.Name == g.Name || existing.Slug == g.Slug {
			return fmt.Errorf("CreateGenre: %w", store.ErrConflict)
		}
	}
	now := m.Now()
	g.ID = uuid.New()
	g.CreatedAt = &now
	m.genres = append(m.genres, *g)
	return nil
}

// --- stations ---

// hydrated returns a copy of st with its current country attached.
func (m *Memory) hydrated(st models.Station) models.Station {
	st.Genres = slices.Clone(st.Genres)
	slices.SortStableFunc(st.Genres, func(a, b models.Genre) int { return cmp.Compare(a.Name, b.Name) })
	st.SocialLinks = slices.Clone(st.SocialLinks)
	if st.Genres == nil {
		st.Genres = []models.Genre{}
	}
	if st.SocialLinks == nil {
		st.SocialLinks = []models.SocialLink{}
	}
	st.Country = nil
	if st.CountryID != nil {
		st.Country = m.countryByID(*st.CountryID)
	}
	return st
}

// active returns hydrated active stations accepted by keep, in insertion order.
func (m *Memory) active(keep func(*models.Station) bool) []models.Station {
	var out []models.Station
	for _, st := range m.stations {
		if st.Active && keep(&st) {
			out = append(out, m.hydrated(st))
		}
	}
	return out
}

func byName(out []models.Station) {
	slices.SortStableFunc(out, func(a, b models.Station) int { return cmp.Compare(a.Name, b.Name) })
}

func containsFold(s *string, sub string) bool {
	return s != nil && strings.Contains(strings.ToLower(*s), strings.ToLower(sub))
}

func (m *Memory) ListStations(_ context.Context, q store.StationQuery) ([]models.Station, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matches := m.active(func(st *models.Station) bool {
		if q.CountryID != nil && (st.CountryID == nil || *st.CountryID != *q.CountryID) {
			return false
		}
		if len(q.Genres) > 0 && !slices.ContainsFunc(st.Genres, func(g models.Genre) bool {
			return slices.Contains(q.Genres, g.Name)
		}) {
			return false
		}
		if q.Search != "" && !containsFold(&st.Name, q.Search) &&
			!containsFold(st.Description, q.Search) && !containsFold(st.City, q.Search) {
			return false
		}
		if q.City != "" && !containsFold(st.City, q.City) {
			return false
		}
		return true
	})
	byName(matches)

	total := len(matches)
	start := min(q.Offset, total)
	end := min(start+q.Limit, total)
	return matches[start:end], total, nil
}

func (m *Memory) GetStationBySlug(_ context.Context, slug string) (*models.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := m.active(func(st *models.Station) bool { return st.Slug == slug })
	if len(found) == 0 {
		return nil, fmt.Errorf("GetStationBySlug: %w", store.ErrNotFound)
	}
	return &found[0], nil
}

func (m *Memory) SearchStations(_ context.Context, text string, limit int) ([]models.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.active(func(st *models.Station) bool {
		return containsFold(&st.Name, text) || containsFold(st.City, text)
	})
	byName(out)
	return out[:min(limit, len(out))], nil
}

func (m *Memory) ListStationsByCity(_ context.Context, city, excludeSlug string, limit int) ([]models.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.active(func(st *models.Station) bool {
		return st.Slug != excludeSlug && st.City != nil && *st.City == city
	})
	return out[:min(limit, len(out))], nil
}

func (m *Memory) ListStationsByGenres(_ context.Context, genreIDs []uuid.UUID, excludeSlug string, limit int) ([]models.Station, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.active(func(st *models.Station) bool {
		return st.Slug != excludeSlug && slices.ContainsFunc(st.Genres, func(g models.Genre) bool {
			return slices.Contains(genreIDs, g.ID)
		})
	})
	return out[:min(limit, len(out))], nil
}

func (m *Memory) ListGenreNamesByCountry(_ context.Context, countryID uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for _, st := range m.active(func(st *models.Station) bool {
		return st.CountryID != nil && *st.CountryID == countryID
	}) {
		for _, g := range st.Genres {
			if !slices.Contains(names, g.Name) {
				names = append(names, g.Name)
			}
		}
	}
	slices.Sort(names)
	return names, nil
}

func (m *Memory) ListStationSlugs(context.Context) ([]models.StationSlug, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	withCountry := m.active(func(st *models.Station) bool { return st.CountryID != nil })
	slices.SortStableFunc(withCountry, func(a, b models.Station) int {
		return cmp.Or(cmp.Compare(a.Country.Code, b.Country.Code), cmp.Compare(a.Name, b.Name))
	})
	out := make([]models.StationSlug, 0, len(withCountry))
	for _, st := range withCountry {
		out = append(out, models.StationSlug{Slug: st.Slug, CountryCode: st.Country.Code, UpdatedAt: st.UpdatedAt})
	}
	return out, nil
}

func (m *Memory) StationSlugExists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.ContainsFunc(m.stations, func(st models.Station) bool { return st.Slug == slug }), nil
}

func (m *Memory) CreateStation(_ context.Context, st *models.Station) error {
	if m.CreateStationErr != nil {
		if err := m.CreateStationErr(st); err != nil {
			return fmt.Errorf("CreateStation: %w", err)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if slices.ContainsFunc(m.stations, func(s models.Station) bool { return s.Slug == st.Slug }) {
		return fmt.Errorf("CreateStation: %w", store.ErrConflict)
	}
	if st.Country != nil && st.CountryID == nil {
		st.CountryID = &st.Country.ID
	}
	now := m.Now()
	st.ID = uuid.New()
	st.CreatedAt, st.UpdatedAt = now, now
	for i := range st.SocialLinks {
		if st.SocialLinks[i].ID == uuid.Nil {
			st.SocialLinks[i].ID = uuid.New()
		}
	}
	stored := *st
	stored.Genres = slices.Clone(st.Genres)
	stored.SocialLinks = slices.Clone(st.SocialLinks)
	stored.Country = nil
	m.stations = append(m.stations, stored)
	return nil
}

func (m *Memory) CountStations(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stations), nil
}

func (m *Memory) DeleteAllStations(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stations = nil
	return nil
}
