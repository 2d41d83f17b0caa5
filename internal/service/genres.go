package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/voyagen/radiodir/internal/models"
	"github.com/voyagen/radiodir/internal/slug"
	"github.com/voyagen/radiodir/internal/store"
)

// Genres is the genre directory.
type Genres struct {
	store store.Store
}

// NewGenres returns a genre directory backed by s.
func NewGenres(s store.Store) *Genres {
	return &Genres{store: s}
}

// List returns all genres ordered by name.
func (g *Genres) List(ctx context.Context) ([]models.Genre, error) {
	list, err := g.store.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Genre{}
	}
	return list, nil
}

// GetBySlug returns the genre with slug.
func (g *Genres) GetBySlug(ctx context.Context, s string) (*models.Genre, error) {
	genre, err := g.store.GetGenreBySlug(ctx, s)
	if err != nil {
		return nil, notFound(err, "genre with slug %s", s)
	}
	return genre, nil
}

// FindByNames returns the genres named in names. Unknown names are skipped.
func (g *Genres) FindByNames(ctx context.Context, names []string) ([]models.Genre, error) {
	if len(names) == 0 {
		return []models.Genre{}, nil
	}
	list, err := g.store.ListGenresByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Genre{}
	}
	return list, nil
}

// FindOrCreate returns the genre whose slug matches name's slug, creating it
// when absent. Names differing only in case or accents resolve to the same
// row. Losing an insert race to another writer returns the winner's row.
func (g *Genres) FindOrCreate(ctx context.Context, name string) (*models.Genre, error) {
	s := slug.Make(name)
	existing, err := g.store.GetGenreBySlug(ctx, s)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	genre := &models.Genre{Name: name, Slug: s}
	err = g.store.CreateGenre(ctx, genre)
	if errors.Is(err, store.ErrConflict) {
		return g.store.GetGenreBySlug(ctx, s)
	}
	if err != nil {
		return nil, fmt.Errorf("create genre %q: %w", name, err)
	}
	return genre, nil
}

// FindOrCreateMany resolves names one at a time, in order. Blank names are
// ignored and a name resolving to an already returned genre is not repeated.
func (g *Genres) FindOrCreateMany(ctx context.Context, names []string) ([]models.Genre, error) {
	out := make([]models.Genre, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		genre, err := g.FindOrCreate(ctx, name)
		if err != nil {
			return nil, err
		}
		if seen[genre.Slug] {
			continue
		}
		seen[genre.Slug] = true
		out = append(out, *genre)
	}
	return out, nil
}
