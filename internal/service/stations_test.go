package service

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/radiodir/internal/models"
	"github.com/voyagen/radiodir/internal/store"
)

func newStations(f *fixture) *Stations {
	return NewStations(f.mem, NewCountries(f.mem))
}

func TestFindAllPagination(t *testing.T) {
	f := newFixture(t)
	for i := range 5 {
		f.station(fmt.Sprintf("Radio %c", 'E'-i), fmt.Sprintf("radio-%d", i))
	}
	f.station("Radio Z", "radio-off", inactive())
	svc := newStations(f)

	tests := []struct {
		page, limit int
		wantSlugs   []string
		wantMeta    models.PageMeta
	}{
		{1, 2, []string{"radio-4", "radio-3"}, models.PageMeta{Page: 1, Limit: 2, Total: 5, TotalPages: 3, HasNextPage: true}},
		{3, 2, []string{"radio-0"}, models.PageMeta{Page: 3, Limit: 2, Total: 5, TotalPages: 3, HasPrevPage: true}},
		{4, 2, []string{}, models.PageMeta{Page: 4, Limit: 2, Total: 5, TotalPages: 3, HasPrevPage: true}},
		{0, 0, []string{"radio-4", "radio-3", "radio-2", "radio-1", "radio-0"}, models.PageMeta{Page: 1, Limit: 50, Total: 5, TotalPages: 1}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page=%d,limit=%d", tt.page, tt.limit), func(t *testing.T) {
			page, err := svc.FindAll(f.ctx, StationFilter{Page: tt.page, Limit: tt.limit})
			require.NoError(t, err)
			assert.Equal(t, tt.wantSlugs, slugsOf(page.Data))
			assert.Equal(t, tt.wantMeta, page.Meta)
		})
	}
}

func TestFindAllTotalIndependentOfPaging(t *testing.T) {
	f := newFixture(t)
	for i := range 23 {
		f.station(fmt.Sprintf("Station %02d", i), fmt.Sprintf("s-%02d", i))
	}
	svc := newStations(f)

	for limit := 1; limit <= 25; limit += 4 {
		for page := 1; page <= 6; page++ {
			res, err := svc.FindAll(f.ctx, StationFilter{Page: page, Limit: limit})
			require.NoError(t, err)
			assert.LessOrEqual(t, len(res.Data), limit)
			assert.Equal(t, 23, res.Meta.Total)
			assert.Equal(t, page*limit < 23, res.Meta.HasNextPage)
			assert.Equal(t, page > 1, res.Meta.HasPrevPage)
		}
	}
}

func TestFindAllFilters(t *testing.T) {
	f := newFixture(t)
	f.station("Candela", "candela", inCity("Bogotá"), f.withGenres("Salsa"))
	f.station("Olímpica", "olimpica", inCity("Barranquilla"), f.withGenres("Pop", "Vallenato"))
	f.station("Tropicana", "tropicana", inCity("Medellín"), describedAs("Salsa y tropical"), f.withGenres("Tropical"))
	f.station("La X", "la-x", f.withGenres("Electrónica"))
	svc := newStations(f)

	tests := []struct {
		name   string
		filter StationFilter
		want   []string
	}{
		{"genres any", StationFilter{Genres: []string{"Salsa", "Pop"}}, []string{"candela", "olimpica"}},
		{"genre exact name", StationFilter{Genres: []string{"salsa"}}, []string{}},
		{"search name", StationFilter{Search: "CANDE"}, []string{"candela"}},
		{"search description", StationFilter{Search: "tropical"}, []string{"tropicana"}},
		{"search city", StationFilter{Search: "barran"}, []string{"olimpica"}},
		{"city substring", StationFilter{City: "bog"}, []string{"candela"}},
		{"combined", StationFilter{Genres: []string{"Tropical"}, City: "medellín"}, []string{"tropicana"}},
		{"no match", StationFilter{Search: "jazz"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.FindAll(f.ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, slugsOf(page.Data))
			assert.Equal(t, len(tt.want), page.Meta.Total)
		})
	}
}

func TestFindByCountry(t *testing.T) {
	f := newFixture(t)
	co := f.country("CO", "Colombia")
	ar := f.country("AR", "Argentina")
	f.station("Caracol", "caracol", inCountry(co))
	f.station("Mitre", "mitre", inCountry(ar))
	svc := newStations(f)

	page, err := svc.FindByCountry(f.ctx, "co", StationFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"caracol"}, slugsOf(page.Data))
	require.NotNil(t, page.Data[0].Country)
	assert.Equal(t, "CO", page.Data[0].Country.Code)

	_, err = svc.FindByCountry(f.ctx, "zz", StationFilter{})
	require.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "ZZ")
}

func TestFindBySlug(t *testing.T) {
	f := newFixture(t)
	f.station("Activa", "activa", f.withGenres("Pop"))
	f.station("Apagada", "apagada", inactive())
	svc := newStations(f)

	st, err := svc.FindBySlug(f.ctx, "activa")
	require.NoError(t, err)
	assert.Equal(t, "Activa", st.Name)
	assert.Len(t, st.Genres, 1)
	assert.NotNil(t, st.SocialLinks)

	for _, slug := range []string{"apagada", "nadie"} {
		_, err := svc.FindBySlug(f.ctx, slug)
		require.ErrorIs(t, err, store.ErrNotFound)
		assert.Contains(t, err.Error(), slug)
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	for i := range 25 {
		f.station(fmt.Sprintf("Radio Bogotá %02d", i), fmt.Sprintf("bog-%02d", i))
	}
	f.station("Caracol", "caracol", inCity("Bogotá"), describedAs("ignored"))
	f.station("Descrita", "descrita", describedAs("bogotá"))
	svc := newStations(f)

	got, err := svc.Search(f.ctx, "bogotá", 0)
	require.NoError(t, err)
	assert.Len(t, got, models.DefaultSearchLimit)
	assert.Equal(t, "caracol", got[0].Slug)
	assert.NotContains(t, slugsOf(got), "descrita")

	got, err = svc.Search(f.ctx, "CARACOL", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"caracol"}, slugsOf(got))

	got, err = svc.Search(f.ctx, "nothing", 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenresByCountry(t *testing.T) {
	f := newFixture(t)
	co := f.country("CO", "Colombia")
	f.country("PE", "Perú")
	f.station("A", "a", inCountry(co), f.withGenres("Salsa", "Pop"))
	f.station("B", "b", inCountry(co), f.withGenres("Pop", "Rock"))
	f.station("C", "c", inCountry(co), inactive(), f.withGenres("Jazz"))
	svc := newStations(f)

	names, err := svc.GenresByCountry(f.ctx, "CO")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pop", "Rock", "Salsa"}, names)

	names, err = svc.GenresByCountry(f.ctx, "pe")
	require.NoError(t, err)
	assert.Equal(t, []string{}, names)

	_, err = svc.GenresByCountry(f.ctx, "zz")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAllSlugs(t *testing.T) {
	f := newFixture(t)
	co := f.country("CO", "Colombia")
	ar := f.country("AR", "Argentina")
	f.station("Zeta", "zeta", inCountry(co))
	f.station("Alfa", "alfa", inCountry(co))
	f.station("Mitre", "mitre", inCountry(ar))
	f.station("Off", "off", inCountry(co), inactive())
	f.station("Nowhere", "nowhere")
	svc := newStations(f)

	got, err := svc.AllSlugs(f.ctx)
	require.NoError(t, err)
	var pairs []string
	for _, s := range got {
		pairs = append(pairs, s.CountryCode+"/"+s.Slug)
		assert.False(t, s.UpdatedAt.IsZero())
	}
	assert.Equal(t, []string{"AR/mitre", "CO/alfa", "CO/zeta"}, pairs)
}

func TestRelatedSameCity(t *testing.T) {
	f := newFixture(t)
	target := f.station("Target", "target", inCity("Bogotá"), f.withGenres("Pop"))
	var candidates []string
	for i := range 9 {
		slug := fmt.Sprintf("bog-%d", i)
		candidates = append(candidates, slug)
		f.station(fmt.Sprintf("Bog %d", i), slug, inCity("Bogotá"))
	}
	f.station("Other city", "medellin", inCity("Medellín"), f.withGenres("Pop"))
	f.station("Off", "off", inCity("Bogotá"), inactive())
	svc := newStations(f)

	orders := map[string]bool{}
	seen := map[string]bool{}
	for range 200 {
		res, err := svc.FindBySlugWithRelated(f.ctx, target.Slug)
		require.NoError(t, err)
		assert.Equal(t, "target", res.Station.Slug)
		require.Len(t, res.RelatedStations, models.RelatedStationsLimit)
		for _, st := range res.RelatedStations {
			require.NotNil(t, st.City)
			assert.Equal(t, "Bogotá", *st.City)
			assert.Contains(t, candidates, st.Slug)
			seen[st.Slug] = true
		}
		orders[strings.Join(slugsOf(res.RelatedStations), ",")] = true
	}
	assert.Greater(t, len(orders), 1, "related stations should be shuffled")
	assert.Len(t, seen, len(candidates), "every candidate should eventually be picked")
}

func TestRelatedNullCityFallsBackToGenres(t *testing.T) {
	f := newFixture(t)
	target := f.station("Target", "target", f.withGenres("Salsa", "Merengue"))
	f.station("Uno", "uno", f.withGenres("Salsa"))
	f.station("Dos", "dos", f.withGenres("Merengue", "Pop"))
	f.station("Tres", "tres", f.withGenres("Salsa", "Merengue"))
	f.station("Sin género", "sin-genero")
	f.station("Rock", "rock", f.withGenres("Rock"))
	svc := newStations(f)

	res, err := svc.FindBySlugWithRelated(f.ctx, target.Slug)
	require.NoError(t, err)
	got := slugsOf(res.RelatedStations)
	slices.Sort(got)
	assert.Equal(t, []string{"dos", "tres", "uno"}, got)
}

func TestRelatedTopsUpFromGenres(t *testing.T) {
	f := newFixture(t)
	target := f.station("Target", "target", inCity("Cali"), f.withGenres("Salsa"))
	f.station("Cali 1", "cali-1", inCity("Cali"))
	f.station("Cali 2", "cali-2", inCity("Cali"))
	for i := range 10 {
		f.station(fmt.Sprintf("Salsa %d", i), fmt.Sprintf("salsa-%d", i), f.withGenres("Salsa"))
	}
	svc := newStations(f)
	svc.intn = func(int) int { return 0 }

	res, err := svc.FindBySlugWithRelated(f.ctx, target.Slug)
	require.NoError(t, err)
	require.Len(t, res.RelatedStations, models.RelatedStationsLimit)

	got := slugsOf(res.RelatedStations)
	assert.ElementsMatch(t, []string{"cali-1", "cali-2"}, got[:2])
	for _, slug := range got[2:] {
		assert.True(t, strings.HasPrefix(slug, "salsa-"), slug)
	}
	assert.NotContains(t, got, "target")
}

func TestRelatedNoCityNoGenres(t *testing.T) {
	f := newFixture(t)
	f.station("Lonely", "lonely")
	f.station("Other", "other")
	svc := newStations(f)

	res, err := svc.FindBySlugWithRelated(f.ctx, "lonely")
	require.NoError(t, err)
	assert.NotNil(t, res.RelatedStations)
	assert.Empty(t, res.RelatedStations)

	_, err = svc.FindBySlugWithRelated(f.ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestShuffleIsUniform(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	counts := map[string]int{}
	const runs = 60000
	for range runs {
		s := []string{"a", "b", "c"}
		shuffle(s, r.IntN)
		counts[strings.Join(s, "")]++
	}
	require.Len(t, counts, 6)
	for perm, n := range counts {
		assert.InDelta(t, runs/6, n, runs/6*0.1, perm)
	}
}

func TestShuffleDeterministic(t *testing.T) {
	s := []int{1, 2, 3, 4}
	shuffle(s, func(int) int { return 0 })
	// i=3 swaps with 0, i=2 swaps with 0, i=1 swaps with 0.
	assert.Equal(t, []int{2, 3, 4, 1}, s)

	var empty []int
	shuffle(empty, func(int) int { panic("not called") })
}
