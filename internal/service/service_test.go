package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voyagen/radiodir/internal/models"
	"github.com/voyagen/radiodir/internal/store/storetest"
)

// fixture seeds a Memory store for catalog tests.
type fixture struct {
	t      *testing.T
	ctx    context.Context
	mem    *storetest.Memory
	genres map[string]models.Genre
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, ctx: context.Background(), mem: storetest.NewMemory(), genres: map[string]models.Genre{}}
}

func (f *fixture) country(code, name string) *models.Country {
	f.t.Helper()
	c := &models.Country{Code: code, Name: name, FlagURL: "/static/flags/" + code + ".jpg"}
	require.NoError(f.t, f.mem.CreateCountry(f.ctx, c))
	return c
}

func (f *fixture) genre(name string) models.Genre {
	f.t.Helper()
	if g, ok := f.genres[name]; ok {
		return g
	}
	g, err := NewGenres(f.mem).FindOrCreate(f.ctx, name)
	require.NoError(f.t, err)
	f.genres[name] = *g
	return *g
}

type stationOpt func(*models.Station)

func inCity(city string) stationOpt { return func(s *models.Station) { s.City = &city } }
func inCountry(c *models.Country) stationOpt {
	return func(s *models.Station) { s.CountryID = &c.ID }
}
func inactive() stationOpt { return func(s *models.Station) { s.Active = false } }
func describedAs(d string) stationOpt {
	return func(s *models.Station) { s.Description = &d }
}

func (f *fixture) withGenres(names ...string) stationOpt {
	return func(s *models.Station) {
		for _, n := range names {
			s.Genres = append(s.Genres, f.genre(n))
		}
	}
}

func (f *fixture) station(name, slug string, opts ...stationOpt) *models.Station {
	f.t.Helper()
	st := &models.Station{Name: name, Slug: slug, StreamURL: "http://stream/" + slug, Active: true}
	for _, o := range opts {
		o(st)
	}
	require.NoError(f.t, f.mem.CreateStation(f.ctx, st))
	return st
}

func slugsOf(stations []models.Station) []string {
	out := make([]string, 0, len(stations))
	for _, s := range stations {
		out = append(out, s.Slug)
	}
	return out
}
