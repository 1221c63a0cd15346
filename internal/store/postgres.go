package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/dataio/internal/core"
)

const createPostgresCatalog = `
CREATE TABLE IF NOT EXISTS dataio_fields (
    record_type TEXT    NOT NULL,
    name        TEXT    NOT NULL,
    position    INTEGER NOT NULL DEFAULT 0,
    read_only   BOOLEAN NOT NULL DEFAULT FALSE,
    PRIMARY KEY (record_type, name)
)`

// Postgres stores records in PostgreSQL through a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool to opts.DSN and makes sure the catalog
// table exists.
func OpenPostgres(ctx context.Context, opts Options) (*Postgres, error) {
	poolConfig, err := poolConfigFor(opts)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, createPostgresCatalog); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create catalog table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func poolConfigFor(opts Options) (*pgxpool.Config, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("%w: postgres store needs a connection URL", core.ErrConfiguration)
	}
	poolConfig, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: parse database URL: %w", core.ErrConfiguration, err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}
	return poolConfig, nil
}

func pgIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func pgPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// List queries the record table lazily, when the sequence is ranged over.
func (p *Postgres) List(ctx context.Context, recordType string) (core.Records, error) {
	query := "SELECT * FROM " + pgIdent(recordType)
	return func(yield func(core.Record, error) bool) {
		rows, err := p.pool.Query(ctx, query)
		if err != nil {
			yield(nil, fmt.Errorf("query %s: %w", recordType, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := valuesRecord(rows)
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

// Create inserts payload and returns the stored row.
//
// Cell values arrive as text. The simple protocol sends them as untyped
// literals so the server coerces them to each column's type.
func (p *Postgres) Create(ctx context.Context, recordType string, payload map[string]any) (core.Record, error) {
	query, args := buildInsert(recordType, payload, pgIdent, pgPlaceholder)
	args = append([]any{pgx.QueryExecModeSimpleProtocol}, args...)

	rows, err := p.pool.Query(ctx, query, args...)
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
	return valuesRecord(rows)
}

func (p *Postgres) FieldsFor(ctx context.Context, recordType string) ([]core.FieldSpec, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT name, position, read_only FROM dataio_fields
		 WHERE record_type = $1 ORDER BY position, name`, recordType)
	if err != nil {
		return nil, fmt.Errorf("query fields of %s: %w", recordType, err)
	}

	fields, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.FieldSpec, error) {
		var f core.FieldSpec
		err := row.Scan(&f.Name, &f.Order, &f.ReadOnly)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan fields of %s: %w", recordType, err)
	}
	return fields, nil
}

func (p *Postgres) SetFields(ctx context.Context, recordType string, fields []core.FieldSpec) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM dataio_fields WHERE record_type = $1", recordType); err != nil {
			return fmt.Errorf("clear fields of %s: %w", recordType, err)
		}

		batch := &pgx.Batch{}
		for _, f := range fields {
			batch.Queue(
				"INSERT INTO dataio_fields (record_type, name, position, read_only) VALUES ($1, $2, $3, $4)",
				recordType, f.Name, f.Order, f.ReadOnly,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func valuesRecord(rows pgx.Rows) (core.MapRecord, error) {
	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("read row: %w", err)
	}
	descs := rows.FieldDescriptions()
	rec := make(core.MapRecord, len(descs))
	for i, d := range descs {
		rec[d.Name] = values[i]
	}
	return rec, nil
}
