package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/voyagen/radiodir/internal/config"
	"github.com/voyagen/radiodir/internal/metrics"
	"github.com/voyagen/radiodir/internal/models"
)

const colombiaJSON = `[
  {
    "nombre": "La Mega",
    "url_stream": "https://stream.example/mega",
    "logo_local": "data\\logos\\colombia\\la_mega.png",
    "descripcion_original": "Éxitos en Bogotá",
    "generos": ["Pop", "Reggaeton"],
    "redes_sociales": ["https://www.instagram.com/lamega", "https://x.com/lamega", "https://lamega.example"],
    "ciudad": "Bogotá",
    "frecuencia": "90.9 FM",
    "contenido_enriquecido": true,
    "fecha_enriquecimiento": "2024-05-01T12:00:00"
  },
  {
    "nombre": "Tropicana",
    "slug": "tropicana-bogota",
    "url_stream": "https://stream.example/tropi",
    "logo_local": null,
    "descripcion": "Salsa",
    "generos": ["salsa", "POP"]
  },
  {
    "nombre": "Sin stream",
    "url_stream": ""
  }
]`

var testSources = []config.CountrySource{
	{Code: "CO", Name: "Colombia", Flag: "/static/flags/colombia.jpg", File: "emisoras_colombia.json"},
	{Code: "AR", Name: "Argentina", Flag: "/static/flags/argentina.jpg", File: "emisoras_argentinas.json"},
}

func writeSeed(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func newTestImporter(f *fixture, batch int) (*Importer, *observer.ObservedLogs, *metrics.Metrics) {
	core, logs := observer.New(zapcore.DebugLevel)
	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(f.t, err)
	return NewImporter(f.mem, zap.New(core), m, batch), logs, m
}

func TestImportRun(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	writeSeed(t, dir, "emisoras_colombia.json", colombiaJSON)
	im, logs, _ := newTestImporter(f, 2)

	sum, err := im.Run(f.ctx, dir, testSources)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Imported)
	require.Len(t, sum.Countries, 2)
	assert.Equal(t, CountryImport{Code: "CO", Name: "Colombia", Imported: 2, Failed: 1}, sum.Countries[0])
	assert.Equal(t, CountryImport{Code: "AR", Name: "Argentina", MissingFile: true}, sum.Countries[1])

	countries, err := NewCountries(f.mem).List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, countries, 2)

	mega, err := f.mem.GetStationBySlug(f.ctx, "la-mega")
	require.NoError(t, err)
	assert.True(t, mega.Active)
	assert.True(t, mega.Enriched)
	require.NotNil(t, mega.EnrichedAt)
	assert.Equal(t, "/static/logos/CO/la_mega.png", *mega.LogoURL)
	assert.Equal(t, "Éxitos en Bogotá", *mega.Description)
	assert.Equal(t, "Bogotá", *mega.City)
	assert.Nil(t, mega.Website)
	require.NotNil(t, mega.Country)
	assert.Equal(t, "CO", mega.Country.Code)
	require.Len(t, mega.SocialLinks, 3)
	assert.Equal(t, models.PlatformInstagram, *mega.SocialLinks[0].Platform)
	assert.Equal(t, models.PlatformTwitter, *mega.SocialLinks[1].Platform)
	assert.Nil(t, mega.SocialLinks[2].Platform)

	tropi, err := f.mem.GetStationBySlug(f.ctx, "tropicana-bogota")
	require.NoError(t, err)
	assert.Nil(t, tropi.LogoURL)
	assert.Equal(t, "Salsa", *tropi.Description)
	var genreNames []string
	for _, g := range tropi.Genres {
		genreNames = append(genreNames, g.Name)
	}
	// "POP" resolves to the "Pop" genre created for La Mega.
	assert.Equal(t, []string{"Pop", "salsa"}, genreNames)

	genres, err := NewGenres(f.mem).List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 3)

	failed := logs.FilterMessage("station import failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "Sin stream", failed[0].ContextMap()["station"])
	assert.Equal(t, 1, logs.FilterMessage("seed file not found").Len())
}

func TestImportIsIdempotent(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	writeSeed(t, dir, "emisoras_colombia.json", colombiaJSON)
	im, _, m := newTestImporter(f, 50)

	_, err := im.Run(f.ctx, dir, testSources[:1])
	require.NoError(t, err)
	before, err := f.mem.CountStations(f.ctx)
	require.NoError(t, err)

	sum, err := im.Run(f.ctx, dir, testSources[:1])
	require.NoError(t, err)
	after, err := f.mem.CountStations(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Zero(t, sum.Imported)
	assert.Equal(t, 2, sum.Countries[0].Skipped)
	assert.Equal(t, 1, sum.Countries[0].Failed)
	assert.Equal(t, 1, testutil.CollectAndCount(m, "radiodir_import_duration_seconds"))
}

func TestImportContinuesPastStoreErrors(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	writeSeed(t, dir, "emisoras_colombia.json", colombiaJSON)
	f.mem.CreateStationErr = func(st *models.Station) error {
		if st.Slug == "la-mega" {
			return errors.New("disk full")
		}
		return nil
	}
	im, logs, _ := newTestImporter(f, 1)

	sum, err := im.Run(f.ctx, dir, testSources[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Imported)
	assert.Equal(t, 2, sum.Countries[0].Failed)

	entries := logs.FilterField(zap.String("station", "La Mega")).All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "disk full")
}

func TestImportMalformedFileAborts(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	writeSeed(t, dir, "emisoras_colombia.json", `[{"nombre": "broken"`)
	im, _, _ := newTestImporter(f, 50)

	_, err := im.Run(f.ctx, dir, testSources)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CO")
}

func TestImportMistypedRecordIsCountedNotFatal(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	writeSeed(t, dir, "emisoras_colombia.json", `[
  {"nombre": "Buena", "url_stream": "https://stream.example/buena"},
  {"nombre": "Mala", "url_stream": "https://stream.example/mala", "fundacion": 1985}
]`)
	writeSeed(t, dir, "emisoras_argentinas.json", `[{"nombre": "Tango FM", "url_stream": "https://stream.example/tango"}]`)
	im, logs, m := newTestImporter(f, 50)

	sum, err := im.Run(f.ctx, dir, testSources)
	require.NoError(t, err)
	assert.Equal(t, CountryImport{Code: "CO", Name: "Colombia", Imported: 1, Failed: 1}, sum.Countries[0])
	assert.Equal(t, CountryImport{Code: "AR", Name: "Argentina", Imported: 1}, sum.Countries[1])

	_, err = f.mem.GetStationBySlug(f.ctx, "buena")
	require.NoError(t, err)
	_, err = f.mem.GetStationBySlug(f.ctx, "tango-fm")
	require.NoError(t, err)
	_, err = f.mem.GetStationBySlug(f.ctx, "mala")
	assert.Error(t, err)

	failed := logs.FilterMessage("station import failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "Mala", failed[0].ContextMap()["station"])
	// CO imported, CO failed, AR imported.
	assert.Equal(t, 3, testutil.CollectAndCount(m, "radiodir_import_stations_total"))
}

func TestImportCancelled(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	writeSeed(t, dir, "emisoras_colombia.json", colombiaJSON)
	im, _, _ := newTestImporter(f, 50)

	// Countries are created before the context is checked per record.
	ctx, cancel := context.WithCancel(f.ctx)
	cancel()
	_, err := im.Run(ctx, dir, testSources[:1])
	assert.Error(t, err)
}

func TestClearAll(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	writeSeed(t, dir, "emisoras_colombia.json", colombiaJSON)
	im, _, _ := newTestImporter(f, 50)

	_, err := im.Run(f.ctx, dir, testSources[:1])
	require.NoError(t, err)
	require.NoError(t, im.ClearAll(f.ctx))

	n, err := f.mem.CountStations(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	countries, err := NewCountries(f.mem).List(f.ctx)
	require.NoError(t, err)
	assert.Len(t, countries, 1)
}
