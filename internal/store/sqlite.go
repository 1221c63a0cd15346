package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/dataio/internal/core"
)

//go:embed migrations/sqlite/*.sql
var sqliteMigrations embed.FS

// SQLite stores records in a SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the catalog migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite store needs a database path", core.ErrConfiguration)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // single writer
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := runSQLiteMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// runSQLiteMigrations applies every embedded up migration.
// The migrator is not closed: closing it would close db.
func runSQLiteMigrations(db *sql.DB) error {
	src, err := iofs.New(sqliteMigrations, "migrations/sqlite")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("init migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// DB exposes the underlying handle, e.g. to create record tables.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// List queries the record table lazily, when the sequence is ranged over.
func (s *SQLite) List(ctx context.Context, recordType string) (core.Records, error) {
	query := "SELECT * FROM " + quoteIdent(recordType)
	return func(yield func(core.Record, error) bool) {
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			yield(nil, fmt.Errorf("query %s: %w", recordType, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanRecord(rows)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("iterate %s: %w", recordType, err))
		}
	}, nil
}

// Create inserts payload into the record type's table and returns the
// stored row.
func (s *SQLite) Create(ctx context.Context, recordType string, payload map[string]any) (core.Record, error) {
	query, args := buildInsert(recordType, payload, quoteIdent, func(int) string { return "?" })

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", recordType, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("insert %s: %w", recordType, err)
		}
		return nil, fmt.Errorf("insert %s: no row returned", recordType)
	}
	return scanRecord(rows)
}

func (s *SQLite) FieldsFor(ctx context.Context, recordType string) ([]core.FieldSpec, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, position, read_only FROM dataio_fields
		 WHERE record_type = ? ORDER BY position, name`, recordType)
	if err != nil {
		return nil, fmt.Errorf("query fields of %s: %w", recordType, err)
	}
	defer rows.Close()

	var fields []core.FieldSpec
	for rows.Next() {
		var f core.FieldSpec
		if err := rows.Scan(&f.Name, &f.Order, &f.ReadOnly); err != nil {
			return nil, fmt.Errorf("scan field of %s: %w", recordType, err)
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

func (s *SQLite) SetFields(ctx context.Context, recordType string, fields []core.FieldSpec) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM dataio_fields WHERE record_type = ?", recordType); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear fields of %s: %w", recordType, err)
	}
	for _, f := range fields {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO dataio_fields (record_type, name, position, read_only) VALUES (?, ?, ?, ?)",
			recordType, f.Name, f.Order, f.ReadOnly); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("store field %s.%s: %w", recordType, f.Name, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// scanRecord reads the current row into a MapRecord keyed by column name.
// TEXT columns come back from the driver as string, BLOBs as []byte.
func scanRecord(rows *sql.Rows) (core.MapRecord, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan row: %w", err)
	}

	rec := make(core.MapRecord, len(cols))
	for i, c := range cols {
		rec[c] = values[i]
	}
	return rec, nil
}
