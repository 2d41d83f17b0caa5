package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/voyagen/radiodir/internal/models"
)

const genreColumns = `id, name, slug, created_at`

func scanGenre(row pgx.Row) (*models.Genre, error) {
	var g models.Genre
	if err := row.Scan(&g.ID, &g.Name, &g.Slug, &g.CreatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func (p *Postgres) queryGenres(ctx context.Context, op, sql string, args ...any) ([]models.Genre, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	var out []models.Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return out, nil
}

// ListGenres returns all genres ordered by name.
func (p *Postgres) ListGenres(ctx context.Context) ([]models.Genre, error) {
	return p.queryGenres(ctx, "ListGenres",
		`SELECT `+genreColumns+` FROM genres ORDER BY name ASC`)
}

// GetGenreBySlug returns the genre with the given slug.
func (p *Postgres) GetGenreBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	g, err := scanGenre(p.pool.QueryRow(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE slug = $1`, slug))
	if err != nil {
		return nil, mapErr("GetGenreBySlug", err)
	}
	return g, nil
}

// ListGenresByNames returns genres whose name is one of names.
func (p *Postgres) ListGenresByNames(ctx context.Context, names []string) ([]models.Genre, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return p.queryGenres(ctx, "ListGenresByNames",
		`SELECT `+genreColumns+` FROM genres WHERE name = ANY($1) ORDER BY name ASC`, names)
}

// CreateGenre inserts g. A duplicate name or slug yields ErrConflict.
func (p *Postgres) CreateGenre(ctx context.Context, g *models.Genre) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO genres (name, slug) VALUES ($1, $2) RETURNING id, created_at`,
		g.Name, g.Slug,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return mapErr("CreateGenre", err)
	}
	return nil
}
