package core

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"time"
)

// Exporter writes one export job to a file.
type Exporter interface {
	// Perform writes the header and every record, persists the file and
	// returns its path.
	Perform(ctx context.Context) (string, error)
}

// ExportJobParams holds the inputs for NewExportJob.
type ExportJobParams struct {
	Label      string       // Sheet title
	RecordType string       // Record type passed to the source
	Fields     []FieldSpec  // Columns; must not be empty
	Source     RecordSource // Supplies the records
	Layout     Layout
	Policy     CellPolicy
	Now        func() time.Time // Defaults to time.Now
	Suffix     SuffixFunc       // Defaults to RandomSuffix
}

// ExportJob is a single export call. It owns its record sequence and is
// consumed once by Perform.
type ExportJob struct {
	ID         string
	Label      string
	RecordType string
	Fields     []FieldSpec
	Layout     Layout
	Policy     CellPolicy

	records  Records
	now      func() time.Time
	suffix   SuffixFunc
	consumed bool
	written  int
}

// NewExportJob validates params and opens the record sequence.
// An empty field list fails with ErrConfiguration before the source or the
// filesystem is touched.
func NewExportJob(ctx context.Context, p ExportJobParams) (*ExportJob, error) {
	if len(p.Fields) == 0 {
		return nil, fmt.Errorf("%w: no fields defined for %s", ErrConfiguration, p.RecordType)
	}
	if p.Source == nil {
		return nil, fmt.Errorf("%w: no record source for %s", ErrConfiguration, p.RecordType)
	}

	records, err := p.Source.List(ctx, p.RecordType)
	if err != nil {
		return nil, fmt.Errorf("list %s records: %w", p.RecordType, err)
	}

	now := p.Now
	if now == nil {
		now = time.Now
	}

	return &ExportJob{
		ID:         newJobID(),
		Label:      p.Label,
		RecordType: p.RecordType,
		Fields:     SortFields(p.Fields),
		Layout:     p.Layout,
		Policy:     p.Policy,
		records:    records,
		now:        now,
		suffix:     p.Suffix,
	}, nil
}

// Header returns the header row: field names in column order.
func (j *ExportJob) Header() []string {
	return FieldNames(j.Fields)
}

// Rows yields one rendered row per record, in source order.
// The sequence can be ranged over once; a second pass yields an error.
func (j *ExportJob) Rows() iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		if j.consumed {
			yield(nil, fmt.Errorf("%w: export job %s already consumed", ErrConfiguration, j.ID))
			return
		}
		j.consumed = true

		for rec, err := range j.records {
			if err != nil {
				yield(nil, fmt.Errorf("read %s record: %w", j.RecordType, err))
				return
			}
			j.written++
			if !yield(BuildRow(rec, j.Fields, j.Policy), nil) {
				return
			}
		}
	}
}

// Written returns the number of record rows produced so far.
func (j *ExportJob) Written() int {
	return j.written
}

// Prepare creates the export directories.
func (j *ExportJob) Prepare() error {
	return EnsureDirs(j.Layout.Root(), j.Layout.ExportDir())
}

// Persist reserves a fresh export file with extension ext and passes it to
// write. The file is removed again if write fails.
func (j *ExportJob) Persist(ext string, write func(w io.Writer) error) (string, error) {
	f, err := ReserveExportFile(j.Layout.ExportDir(), ext, j.now(), j.suffix)
	if err != nil {
		return "", err
	}
	path := f.Name()

	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// BuildRow renders rec as cells in field order.
//
// Under CellsOmitEmpty a falsy value (absent, false, 0, empty collection)
// produces no cell at all, so the row is shorter than the header and later
// values sit under the wrong column. Under CellsKeepEmpty an absent value
// produces a blank cell and false or 0 are written as text.
func BuildRow(rec Record, fields []FieldSpec, policy CellPolicy) []string {
	row := make([]string, 0, len(fields))
	for _, f := range fields {
		v, _ := rec.Field(f.Name)
		cell, ok := CellString(v)
		if !ok || (policy != CellsKeepEmpty && falsy(v)) {
			if policy == CellsKeepEmpty {
				row = append(row, "")
			}
			continue
		}
		row = append(row, cell)
	}
	return row
}

// CollectRows drains the job's rows into a header-first table.
func (j *ExportJob) CollectRows() ([][]string, error) {
	table := [][]string{j.Header()}
	for row, err := range j.Rows() {
		if err != nil {
			return nil, err
		}
		table = append(table, row)
	}
	return table, nil
}
