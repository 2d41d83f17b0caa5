package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/voyagen/radiodir/internal/config"
	"github.com/voyagen/radiodir/internal/metrics"
	"github.com/voyagen/radiodir/internal/models"
	"github.com/voyagen/radiodir/internal/seedfile"
	"github.com/voyagen/radiodir/internal/slug"
	"github.com/voyagen/radiodir/internal/store"
)

// CountryImport is the outcome of importing one country's seed file.
type CountryImport struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Imported    int    `json:"imported"`
	Skipped     int    `json:"skipped"`
	Failed      int    `json:"failed"`
	MissingFile bool   `json:"missingFile"`
}

// ImportSummary aggregates an import run.
type ImportSummary struct {
	Countries []CountryImport `json:"countries"`
	Imported  int             `json:"imported"`
	Duration  time.Duration   `json:"duration"`
}

// Importer loads per-country seed files into the store. Stations whose slug
// already exists are skipped, so re-running an import is safe.
type Importer struct {
	store     store.Store
	countries *Countries
	genres    *Genres
	log       *zap.Logger
	metrics   *metrics.Metrics
	batchSize int
}

// NewImporter returns an Importer writing to s. m may be nil. batchSize <= 0
// selects config.DefaultImportBatchSize.
func NewImporter(s store.Store, log *zap.Logger, m *metrics.Metrics, batchSize int) *Importer {
	if batchSize <= 0 {
		batchSize = config.DefaultImportBatchSize
	}
	return &Importer{
		store:     s,
		countries: NewCountries(s),
		genres:    NewGenres(s),
		log:       log.With(zap.String("pkg", "service.import")),
		metrics:   m,
		batchSize: batchSize,
	}
}

// Run creates every configured country, then imports each country's seed
// file from dir. A missing file is logged and counted as zero stations;
// a file that cannot be decoded aborts the run. Failures on single records
// are logged and counted without stopping the import.
func (im *Importer) Run(ctx context.Context, dir string, sources []config.CountrySource) (*ImportSummary, error) {
	start := time.Now()
	im.log.Info("import started", zap.String("dir", dir), zap.Int("countries", len(sources)))

	countries := make([]*models.Country, len(sources))
	for i, src := range sources {
		c, err := im.countries.FindOrCreate(ctx, src.Code, src.Name, src.Flag)
		if err != nil {
			return nil, fmt.Errorf("country %s: %w", src.Code, err)
		}
		countries[i] = c
	}
	im.log.Info("countries created or verified", zap.Int("count", len(countries)))

	summary := &ImportSummary{Countries: make([]CountryImport, 0, len(sources))}
	for i, src := range sources {
		res, err := im.importCountry(ctx, dir, src, countries[i])
		if err != nil {
			return summary, err
		}
		summary.Countries = append(summary.Countries, res)
		summary.Imported += res.Imported
		im.log.Info("country imported",
			zap.String("country", res.Code),
			zap.Int("imported", res.Imported),
			zap.Int("skipped", res.Skipped),
			zap.Int("failed", res.Failed),
		)
	}

	summary.Duration = time.Since(start)
	im.metrics.ObserveImport(summary.Duration)
	im.log.Info("import completed",
		zap.Int("imported", summary.Imported),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (im *Importer) importCountry(ctx context.Context, dir string, src config.CountrySource, country *models.Country) (CountryImport, error) {
	res := CountryImport{Code: country.Code, Name: country.Name}
	path := filepath.Join(dir, src.File)

	records, err := seedfile.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		im.log.Warn("seed file not found", zap.String("country", country.Code), zap.String("path", path))
		im.metrics.RecordMissingFile()
		res.MissingFile = true
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("country %s: %w", country.Code, err)
	}

	for i := 0; i < len(records); i += im.batchSize {
		end := min(i+im.batchSize, len(records))
		for j := i; j < end; j++ {
			// Allow graceful shutdown during long imports.
			if err := ctx.Err(); err != nil {
				return res, fmt.Errorf("import cancelled: %w", err)
			}
			rec := &records[j]
			outcome, err := im.importRecord(ctx, country, rec)
			if err != nil {
				im.log.Error("station import failed",
					zap.String("country", country.Code),
					zap.String("station", rec.Name),
					zap.Error(err),
				)
			}
			switch outcome {
			case metrics.OutcomeImported:
				res.Imported++
			case metrics.OutcomeSkipped:
				res.Skipped++
			default:
				res.Failed++
			}
			im.metrics.RecordStation(country.Code, outcome)
		}
		if end < len(records) {
			im.log.Debug("import progress",
				zap.String("country", country.Code),
				zap.Int("done", end),
				zap.Int("total", len(records)),
			)
		}
	}
	return res, nil
}

// importRecord creates one station and reports its outcome.
func (im *Importer) importRecord(ctx context.Context, country *models.Country, rec *seedfile.Record) (string, error) {
	if rec.Err != nil {
		return metrics.OutcomeFailed, rec.Err
	}
	if rec.Name == "" || rec.StreamURL == "" {
		return metrics.OutcomeFailed, errors.New("nombre and url_stream are required")
	}
	stationSlug := rec.StationSlug()
	if stationSlug == "" {
		return metrics.OutcomeFailed, fmt.Errorf("cannot derive a slug from %q", rec.Name)
	}

	exists, err := im.store.StationSlugExists(ctx, stationSlug)
	if err != nil {
		return metrics.OutcomeFailed, err
	}
	if exists {
		return metrics.OutcomeSkipped, nil
	}

	enrichedAt, err := rec.EnrichedAt()
	if err != nil {
		return metrics.OutcomeFailed, err
	}
	genres, err := im.genres.FindOrCreateMany(ctx, rec.Genres)
	if err != nil {
		return metrics.OutcomeFailed, err
	}

	st := &models.Station{
		Name:                rec.Name,
		Slug:                stationSlug,
		StreamURL:           rec.StreamURL,
		LogoURL:             rec.LogoURL(country.Code),
		Description:         rec.DescriptionOrOriginal(),
		ExtendedDescription: seedfile.Optional(rec.ExtendedDescription),
		City:                seedfile.Optional(rec.City),
		Frequency:           seedfile.Optional(rec.Frequency),
		Website:             seedfile.Optional(rec.Website),
		Slogan:              seedfile.Optional(rec.Slogan),
		Founded:             seedfile.Optional(rec.Founded),
		Enriched:            rec.Enriched,
		EnrichedAt:          enrichedAt,
		Active:              true,
		CountryID:           &country.ID,
		Genres:              genres,
		SocialLinks:         socialLinks(rec.SocialLinks),
	}
	if err := im.store.CreateStation(ctx, st); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return metrics.OutcomeSkipped, nil
		}
		return metrics.OutcomeFailed, err
	}
	return metrics.OutcomeImported, nil
}

func socialLinks(urls []string) []models.SocialLink {
	links := make([]models.SocialLink, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		links = append(links, models.SocialLink{URL: u, Platform: slug.DetectPlatform(u)})
	}
	return links
}

// ClearAll deletes every social link, then every station. Countries and
// genres are kept.
func (im *Importer) ClearAll(ctx context.Context) error {
	im.log.Warn("clearing all stations")
	if err := im.store.DeleteAllStations(ctx); err != nil {
		return fmt.Errorf("clear stations: %w", err)
	}
	im.log.Info("stations cleared")
	return nil
}
