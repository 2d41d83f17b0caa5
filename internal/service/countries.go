package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/voyagen/radiodir/internal/models"
	"github.com/voyagen/radiodir/internal/store"
)

// notFound replaces a store not-found error with a caller-facing message that
// still matches store.ErrNotFound.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %w", fmt.Sprintf(format, args...), store.ErrNotFound)
	}
	return err
}

// NormalizeCode uppercases and trims a country code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Countries is the country directory.
type Countries struct {
	store store.Store
}

// NewCountries returns a country directory backed by s.
func NewCountries(s store.Store) *Countries {
	return &Countries{store: s}
}

// List returns all countries ordered by name.
func (c *Countries) List(ctx context.Context) ([]models.Country, error) {
	list, err := c.store.ListCountries(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Country{}
	}
	return list, nil
}

// GetByCode looks a country up by code, case-insensitively.
func (c *Countries) GetByCode(ctx context.Context, code string) (*models.Country, error) {
	norm := NormalizeCode(code)
	country, err := c.store.GetCountryByCode(ctx, norm)
	if err != nil {
		return nil, notFound(err, "country with code %s", norm)
	}
	return country, nil
}

// GetByID looks a country up by id.
func (c *Countries) GetByID(ctx context.Context, id uuid.UUID) (*models.Country, error) {
	country, err := c.store.GetCountryByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "country with id %s", id)
	}
	return country, nil
}

// Create inserts a country. The code is stored uppercased.
func (c *Countries) Create(ctx context.Context, country *models.Country) error {
	country.Code = NormalizeCode(country.Code)
	if err := c.store.CreateCountry(ctx, country); err != nil {
		return fmt.Errorf("create country %s: %w", country.Code, err)
	}
	return nil
}

// CreateMany inserts countries in order and stops at the first failure.
func (c *Countries) CreateMany(ctx context.Context, countries []models.Country) ([]models.Country, error) {
	out := make([]models.Country, 0, len(countries))
	for i := range countries {
		country := countries[i]
		if err := c.Create(ctx, &country); err != nil {
			return out, err
		}
		out = append(out, country)
	}
	return out, nil
}

// FindOrCreate returns the country with code, creating it with name and flag
// when absent. A concurrent creator winning the insert is resolved by
// re-reading the row.
func (c *Countries) FindOrCreate(ctx context.Context, code, name, flag string) (*models.Country, error) {
	norm := NormalizeCode(code)
	existing, err := c.store.GetCountryByCode(ctx, norm)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	country := &models.Country{Code: norm, Name: name, FlagURL: flag}
	err = c.store.CreateCountry(ctx, country)
	if errors.Is(err, store.ErrConflict) {
		return c.store.GetCountryByCode(ctx, norm)
	}
	if err != nil {
		return nil, fmt.Errorf("create country %s: %w", norm, err)
	}
	return country, nil
}
