package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/voyagen/radiodir/internal/models"
)

// stationSelect reads a station row with its (nullable) country joined in.
const stationSelect = `SELECT s.id, s.name, s.slug, s.stream_url, s.logo_url, s.description,
	s.extended_description, s.city, s.frequency, s.website, s.slogan, s.founded,
	s.enriched, s.enriched_at, s.active, s.created_at, s.updated_at,
	c.id, c.code, c.name, c.flag_url, c.created_at, c.updated_at
	FROM stations s
	LEFT JOIN countries c ON c.id = s.country_id`

func scanStation(row pgx.Row) (*models.Station, error) {
	var (
		st       models.Station
		cID      pgtype.UUID
		cCode    *string
		cName    *string
		cFlag    *string
		cCreated *time.Time
		cUpdated *time.Time
	)
	err := row.Scan(
		&st.ID, &st.Name, &st.Slug, &st.StreamURL, &st.LogoURL, &st.Description,
		&st.ExtendedDescription, &st.City, &st.Frequency, &st.Website, &st.Slogan, &st.Founded,
		&st.Enriched, &st.EnrichedAt, &st.Active, &st.CreatedAt, &st.UpdatedAt,
		&cID, &cCode, &cName, &cFlag, &cCreated, &cUpdated,
	)
	if err != nil {
		return nil, err
	}
	if cID.Valid {
		id := uuid.UUID(cID.Bytes)
		st.CountryID = &id
		st.Country = &models.Country{
			ID:        id,
			Code:      deref(cCode),
			Name:      deref(cName),
			FlagURL:   deref(cFlag),
			CreatedAt: cCreated,
			UpdatedAt: cUpdated,
		}
	}
	st.Genres = []models.Genre{}
	st.SocialLinks = []models.SocialLink{}
	return &st, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// queryStations runs a station query and hydrates genres and social links.
func (p *Postgres) queryStations(ctx context.Context, op, sql string, args ...any) ([]models.Station, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	var out []models.Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, mapErr(op, err)
		}
		out = append(out, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	if err := p.hydrate(ctx, out); err != nil {
		return nil, mapErr(op, err)
	}
	return out, nil
}

// hydrate attaches genres (ordered by name) and social links to stations.
func (p *Postgres) hydrate(ctx context.Context, stations []models.Station) error {
	if len(stations) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(stations))
	index := make(map[uuid.UUID]int, len(stations))
	for i := range stations {
		ids[i] = stations[i].ID
		index[stations[i].ID] = i
	}

	rows, err := p.pool.Query(ctx,
		`SELECT sg.station_id, g.id, g.name, g.slug, g.created_at
		 FROM station_genres sg
		 JOIN genres g ON g.id = sg.genre_id
		 WHERE sg.station_id = ANY($1)
		 ORDER BY g.name ASC`, ids)
	if err != nil {
		return fmt.Errorf("genres: %w", err)
	}
	for rows.Next() {
		var sid uuid.UUID
		var g models.Genre
		if err := rows.Scan(&sid, &g.ID, &g.Name, &g.Slug, &g.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("scan genre: %w", err)
		}
		i := index[sid]
		stations[i].Genres = append(stations[i].Genres, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("genres: %w", err)
	}

	rows, err = p.pool.Query(ctx,
		`SELECT station_id, id, url, platform
		 FROM social_links
		 WHERE station_id = ANY($1)
		 ORDER BY station_id, position ASC`, ids)
	if err != nil {
		return fmt.Errorf("social links: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sid uuid.UUID
		var link models.SocialLink
		var platform *string
		if err := rows.Scan(&sid, &link.ID, &link.URL, &platform); err != nil {
			return fmt.Errorf("scan social link: %w", err)
		}
		if platform != nil {
			pl := models.Platform(*platform)
			link.Platform = &pl
		}
		i := index[sid]
		stations[i].SocialLinks = append(stations[i].SocialLinks, link)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("social links: %w", err)
	}
	return nil
}

// stationWhere builds the WHERE clause for q. Placeholders start at $1.
func stationWhere(q StationQuery) (string, []any) {
	conds := []string{"s.active = true"}
	var args []any
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.CountryID != nil {
		conds = append(conds, "s.country_id = "+next(*q.CountryID))
	}
	if len(q.Genres) > 0 {
		conds = append(conds, `EXISTS (SELECT 1 FROM station_genres sg
			JOIN genres g ON g.id = sg.genre_id
			WHERE sg.station_id = s.id AND g.name = ANY(`+next(q.Genres)+`))`)
	}
	if q.Search != "" {
		ph := next(likePattern(q.Search))
		conds = append(conds, "(s.name ILIKE "+ph+" OR s.description ILIKE "+ph+" OR s.city ILIKE "+ph+")")
	}
	if q.City != "" {
		conds = append(conds, "s.city ILIKE "+next(likePattern(q.City)))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListStations returns one page of stations matching q and the total match count.
func (p *Postgres) ListStations(ctx context.Context, q StationQuery) ([]models.Station, int, error) {
	where, args := stationWhere(q)

	var total int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stations s`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapErr("ListStations count", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	n := len(args)
	sql := stationSelect + where +
		fmt.Sprintf(" ORDER BY s.name ASC LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, q.Limit, q.Offset)

	stations, err := p.queryStations(ctx, "ListStations", sql, args...)
	if err != nil {
		return nil, 0, err
	}
	return stations, total, nil
}

// GetStationBySlug returns the active station with the given slug.
func (p *Postgres) GetStationBySlug(ctx context.Context, slug string) (*models.Station, error) {
	stations, err := p.queryStations(ctx, "GetStationBySlug",
		stationSelect+` WHERE s.slug = $1 AND s.active = true`, slug)
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("GetStationBySlug: %w", ErrNotFound)
	}
	return &stations[0], nil
}

// SearchStations matches text against name or city, ordered by name.
func (p *Postgres) SearchStations(ctx context.Context, text string, limit int) ([]models.Station, error) {
	return p.queryStations(ctx, "SearchStations",
		stationSelect+` WHERE s.active = true AND (s.name ILIKE $1 OR s.city ILIKE $1)
		 ORDER BY s.name ASC LIMIT $2`, likePattern(text), limit)
}

// ListStationsByCity returns up to limit active stations with exactly city.
func (p *Postgres) ListStationsByCity(ctx context.Context, city, excludeSlug string, limit int) ([]models.Station, error) {
	return p.queryStations(ctx, "ListStationsByCity",
		stationSelect+` WHERE s.active = true AND s.slug <> $1 AND s.city = $2 LIMIT $3`,
		excludeSlug, city, limit)
}

// ListStationsByGenres returns up to limit active stations sharing any of genreIDs.
func (p *Postgres) ListStationsByGenres(ctx context.Context, genreIDs []uuid.UUID, excludeSlug string, limit int) ([]models.Station, error) {
	if len(genreIDs) == 0 {
		return nil, nil
	}
	return p.queryStations(ctx, "ListStationsByGenres",
		stationSelect+` WHERE s.active = true AND s.slug <> $1
		 AND EXISTS (SELECT 1 FROM station_genres sg
		             WHERE sg.station_id = s.id AND sg.genre_id = ANY($2))
		 LIMIT $3`,
		excludeSlug, genreIDs, limit)
}

// ListGenreNamesByCountry returns distinct genre names of a country's active stations.
func (p *Postgres) ListGenreNamesByCountry(ctx context.Context, countryID uuid.UUID) ([]string, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT DISTINCT g.name
		 FROM stations s
		 JOIN station_genres sg ON sg.station_id = s.id
		 JOIN genres g ON g.id = sg.genre_id
		 WHERE s.country_id = $1 AND s.active = true`, countryID)
	if err != nil {
		return nil, mapErr("ListGenreNamesByCountry", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapErr("ListGenreNamesByCountry", err)
	}
	slices.Sort(names)
	return names, nil
}

// ListStationSlugs returns sitemap entries ordered by country code, then station name.
func (p *Postgres) ListStationSlugs(ctx context.Context) ([]models.StationSlug, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT s.slug, c.code, s.updated_at
		 FROM stations s
		 JOIN countries c ON c.id = s.country_id
		 WHERE s.active = true
		 ORDER BY c.code ASC, s.name ASC`)
	if err != nil {
		return nil, mapErr("ListStationSlugs", err)
	}
	slugs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StationSlug, error) {
		var e models.StationSlug
		err := row.Scan(&e.Slug, &e.CountryCode, &e.UpdatedAt)
		return e, err
	})
	if err != nil {
		return nil, mapErr("ListStationSlugs", err)
	}
	return slugs, nil
}

// StationSlugExists reports whether a station with slug exists.
func (p *Postgres) StationSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM stations WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, mapErr("StationSlugExists", err)
	}
	return exists, nil
}

// CreateStation inserts st, its genre associations and its social links in
// one transaction. st.Genres must already exist. A duplicate slug yields
// ErrConflict.
func (p *Postgres) CreateStation(ctx context.Context, st *models.Station) error {
	if st.Country != nil && st.CountryID == nil {
		st.CountryID = &st.Country.ID
	}
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO stations (name, slug, stream_url, logo_url, description,
			   extended_description, city, frequency, website, slogan, founded,
			   enriched, enriched_at, active, country_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			 RETURNING id, created_at, updated_at`,
			st.Name, st.Slug, st.StreamURL, st.LogoURL, st.Description,
			st.ExtendedDescription, st.City, st.Frequency, st.Website, st.Slogan, st.Founded,
			st.Enriched, st.EnrichedAt, st.Active, st.CountryID,
		).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, g := range st.Genres {
			batch.Queue(
				`INSERT INTO station_genres (station_id, genre_id) VALUES ($1, $2)
				 ON CONFLICT DO NOTHING`, st.ID, g.ID)
		}
		for i := range st.SocialLinks {
			link := &st.SocialLinks[i]
			if link.ID == uuid.Nil {
				link.ID = uuid.New()
			}
			var platform *string
			if link.Platform != nil {
				s := string(*link.Platform)
				platform = &s
			}
			batch.Queue(
				`INSERT INTO social_links (id, station_id, url, platform, position)
				 VALUES ($1, $2, $3, $4, $5)`, link.ID, st.ID, link.URL, platform, i)
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return mapErr("CreateStation", err)
	}
	return nil
}

// CountStations returns the number of stations.
func (p *Postgres) CountStations(ctx context.Context) (int, error) {
	var n int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stations`).Scan(&n); err != nil {
		return 0, mapErr("CountStations", err)
	}
	return n, nil
}

// DeleteAllStations deletes all social links, then all stations.
func (p *Postgres) DeleteAllStations(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM social_links`); err != nil {
		return mapErr("delete social_links", err)
	}
	if _, err := p.pool.Exec(ctx, `DELETE FROM stations`); err != nil {
		return mapErr("delete stations", err)
	}
	return nil
}
