package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed *.sql
var files embed.FS

// Up applies every embedded migration that is not yet recorded in the
// bookkeeping table, in filename order, one transaction per file.
func Up(db *sql.DB) error {
	if db == nil {
		return errors.New("db is required")
	}

	const ensure = `
CREATE TABLE IF NOT EXISTS public.schema_migrations_transport (
	filename text PRIMARY KEY,
	applied_at timestamptz NOT NULL DEFAULT now()
)
`
	if _, err := db.Exec(ensure); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}

	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return fmt.Errorf("list embedded migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		applied, err := isApplied(db, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := apply(db, name); err != nil {
			return err
		}
	}

	return nil
}

func apply(db *sql.DB, name string) error {
	sqlBytes, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx for %s: %w", name, err)
	}

	if _, err := tx.Exec(string(sqlBytes)); err != nil {
		_ = tx.Rollback()
		// Objects created out-of-band on an existing database are fine;
		// record the file and move on.
		if isDuplicateObjectError(err) {
			return markApplied(db, name)
		}
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	if _, err := tx.Exec(
		`INSERT INTO public.schema_migrations_transport (filename) VALUES ($1)`,
		name,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}

func isApplied(db *sql.DB, name string) (bool, error) {
	var exists bool
	if err := db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM public.schema_migrations_transport WHERE filename = $1)`,
		name,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return exists, nil
}

func markApplied(db *sql.DB, name string) error {
	_, err := db.Exec(
		`INSERT INTO public.schema_migrations_transport (filename) VALUES ($1) ON CONFLICT (filename) DO NOTHING`,
		name,
	)
	if err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	return nil
}

func isDuplicateObjectError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case "42P07", // duplicate_table
		"42710", // duplicate_object
		"42P06": // duplicate_schema
		return true
	default:
		return false
	}
}
