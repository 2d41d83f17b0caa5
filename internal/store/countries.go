package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/voyagen/radiodir/internal/models"
)

const countryColumns = `id, code, name, flag_url, created_at, updated_at`

func scanCountry(row pgx.Row) (*models.Country, error) {
	var c models.Country
	if err := row.Scan(&c.ID, &c.Code, &c.Name, &c.FlagURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCountries returns all countries ordered by name.
func (p *Postgres) ListCountries(ctx context.Context) ([]models.Country, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+countryColumns+` FROM countries ORDER BY name ASC`)
	if err != nil {
		return nil, mapErr("ListCountries", err)
	}
	defer rows.Close()

	var out []models.Country
	for rows.Next() {
		c, err := scanCountry(rows)
		if err != nil {
			return nil, mapErr("ListCountries", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("ListCountries", err)
	}
	return out, nil
}

// GetCountryByCode returns the country with the given code.
func (p *Postgres) GetCountryByCode(ctx context.Context, code string) (*models.Country, error) {
	c, err := scanCountry(p.pool.QueryRow(ctx,
		`SELECT `+countryColumns+` FROM countries WHERE code = $1`, code))
	if err != nil {
		return nil, mapErr("GetCountryByCode", err)
	}
	return c, nil
}

// GetCountryByID returns the country with the given id.
func (p *Postgres) GetCountryByID(ctx context.Context, id uuid.UUID) (*models.Country, error) {
	c, err := scanCountry(p.pool.QueryRow(ctx,
		`SELECT `+countryColumns+` FROM countries WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("GetCountryByID", err)
	}
	return c, nil
}

// CreateCountry inserts c. A duplicate code yields ErrConflict.
func (p *Postgres) CreateCountry(ctx context.Context, c *models.Country) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO countries (code, name, flag_url)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		c.Code, c.Name, c.FlagURL,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return mapErr("CreateCountry", err)
	}
	return nil
}
