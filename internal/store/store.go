// Package store implements core.RecordSource and core.FieldCatalog.
//
// Backends:
//
//	memory   - process-local maps, for tests and dry runs
//	sqlite   - a SQLite file through modernc.org/sqlite
//	postgres - a PostgreSQL database through pgxpool
//
// Records of a type live in a table named after the type. The field catalog
// lives in the dataio_fields table, one row per field:
//
//	record_type | name | position | read_only
//
// A YAML catalog file (see LoadCatalogFile) can stand in for the table.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/JonMunkholm/dataio/internal/core"
)

// Backend is a record store that also holds the field catalog.
type Backend interface {
	core.RecordSource
	core.FieldCatalog

	// SetFields replaces the catalog entries of recordType.
	SetFields(ctx context.Context, recordType string, fields []core.FieldSpec) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	Driver string
	DSN    string // File path for sqlite, connection URL for postgres

	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Open connects the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return OpenSQLite(ctx, opts.DSN)
	case DriverPostgres:
		return OpenPostgres(ctx, opts)
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", core.ErrConfiguration, opts.Driver)
	}
}

// quoteIdent quotes name as an SQL identifier for SQLite.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// insertColumns returns the payload keys in a stable order.
func insertColumns(payload map[string]any) []string {
	cols := make([]string, 0, len(payload))
	for k := range payload {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// buildInsert renders an INSERT ... RETURNING * for payload. quote quotes
// identifiers and placeholder renders the n-th (1-based) parameter.
func buildInsert(table string, payload map[string]any, quote func(string) string, placeholder func(int) string) (string, []any) {
	cols := insertColumns(payload)
	if len(cols) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING *", quote(table)), nil
	}

	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		names[i] = quote(c)
		marks[i] = placeholder(i + 1)
		args[i] = payload[c]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		quote(table), strings.Join(names, ", "), strings.Join(marks, ", "))
	return query, args
}
