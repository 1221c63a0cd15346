package core

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
)

// Importer creates records from one import job's file.
type Importer interface {
	// Perform loads the file, creates one record per data row and returns
	// the number created.
	Perform(ctx context.Context) (int, error)
}

// ImportJobParams holds the inputs for NewImportJob.
type ImportJobParams struct {
	Label      string
	RecordType string
	Fields     []FieldSpec
	Source     string       // Path of the file to import
	Layout     Layout
	Store      RecordSource // Receives the created records
}

// ImportJob is a single import call.
type ImportJob struct {
	ID         string
	Label      string
	RecordType string
	Fields     []FieldSpec
	Source     string
	Layout     Layout
	Store      RecordSource
}

// NewImportJob validates params. The source path is required up front.
func NewImportJob(p ImportJobParams) (*ImportJob, error) {
	if len(p.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields defined for %s", ErrConfiguration, p.RecordType)
	}
	if p.Source == "" {
		return nil, fmt.Errorf("%w: import source is not set", ErrConfiguration)
	}
	if p.Store == nil {
		return nil, fmt.Errorf("%w: no record store for %s", ErrConfiguration, p.RecordType)
	}

	return &ImportJob{
		ID:         newJobID(),
		Label:      p.Label,
		RecordType: p.RecordType,
		Fields:     SortFields(p.Fields),
		Source:     p.Source,
		Layout:     p.Layout,
		Store:      p.Store,
	}, nil
}

// Begin checks the source and creates the import directories.
func (j *ImportJob) Begin() error {
	if j.Source == "" {
		return fmt.Errorf("%w: import source is not set", ErrConfiguration)
	}
	return EnsureDirs(j.Layout.Root(), j.Layout.ImportDir())
}

// ZipRow pairs header names with cells by position.
//
// Cells past the header are dropped. Headers past the last cell, and empty
// cells, map to nil. Blank header cells are skipped.
func ZipRow(header, cells []string) TabularRow {
	row := make(TabularRow, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		if i >= len(cells) || cells[i] == "" {
			row[name] = nil
			continue
		}
		row[name] = cells[i]
	}
	return row
}

// Zip turns raw data rows into tabular rows keyed by header. Header names
// that match no field are logged once with the nearest field name.
func (j *ImportJob) Zip(ctx context.Context, header []string, data iter.Seq2[[]string, error]) iter.Seq2[TabularRow, error] {
	for _, h := range UnmatchedHeaders(header, j.Fields) {
		slog.WarnContext(ctx, "import column matches no field",
			"job_id", j.ID,
			"record_type", j.RecordType,
			"column", h.Column,
			"closest", h.Closest,
		)
	}

	return func(yield func(TabularRow, error) bool) {
		for cells, err := range data {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(ZipRow(header, cells), nil) {
				return
			}
		}
	}
}

// BuildPayload picks the writable fields out of row. A field missing from
// the row is set to nil.
func BuildPayload(row TabularRow, fields []FieldSpec) map[string]any {
	payload := make(map[string]any, len(fields))
	for _, f := range fields {
		if !f.Writable() {
			continue
		}
		payload[f.Name] = row[f.Name]
	}
	return payload
}

// SaveRows creates one record per row and returns the number created.
//
// The first failure stops the import. Records created before it stay in the
// store, and the returned *RowError says how many there were.
func SaveRows(ctx context.Context, job *ImportJob, rows iter.Seq2[TabularRow, error]) (int, error) {
	created := 0
	rowNum := 0
	for row, err := range rows {
		if err != nil {
			return created, err
		}
		rowNum++

		payload := BuildPayload(row, job.Fields)
		if _, err := job.Store.Create(ctx, job.RecordType, payload); err != nil {
			return created, &RowError{Row: rowNum, Created: created, Err: err}
		}
		created++

		slog.DebugContext(ctx, "record created",
			"job_id", job.ID,
			"record_type", job.RecordType,
			"row", rowNum,
		)
	}
	return created, nil
}

// SliceRows adapts an in-memory table to the row sequence Zip expects.
func SliceRows(rows [][]string) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		for _, r := range rows {
			if !yield(r, nil) {
				return
			}
		}
	}
}
