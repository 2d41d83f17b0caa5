package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

// EnsurePgcrypto makes gen_random_uuid() available on servers older than
// PostgreSQL 13. A role without CREATE privilege passes as long as the
// extension already exists or the function is built in.
func EnsurePgcrypto(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	_, err = db.Exec("CREATE EXTENSION IF NOT EXISTS pgcrypto")
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "permission denied") {
		var available bool
		qErr := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'pgcrypto')
			     OR current_setting('server_version_num')::int >= 130000`).Scan(&available)
		if qErr != nil {
			return fmt.Errorf("check pgcrypto: %w (original: %w)", qErr, err)
		}
		if available {
			return nil
		}
		return fmt.Errorf("gen_random_uuid() is unavailable and the current database user cannot create pgcrypto; "+
			"ask your database admin to run: CREATE EXTENSION pgcrypto; (original: %w)", err)
	}

	return fmt.Errorf("create pgcrypto extension: %w", err)
}

// RunMigrations runs SQL migrations from the given directory (e.g. "file://migrations") against the DSN.
func RunMigrations(dsn string, migrationsPath string) error {
	m, err := migrate.New(migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("migrate.New: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate.Up: %w", err)
	}
	return nil
}
