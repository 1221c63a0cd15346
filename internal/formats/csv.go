package formats

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"

	"github.com/JonMunkholm/dataio/internal/core"
)

// CSVDriver reads and writes comma-separated files.
type CSVDriver struct{}

func (CSVDriver) Extension() string { return "csv" }

// CheckDependencies always succeeds; encoding/csv ships with Go.
func (CSVDriver) CheckDependencies() error { return nil }

func (CSVDriver) NewExporter(job *core.ExportJob) (core.Exporter, error) {
	return &csvExporter{job: job}, nil
}

func (CSVDriver) NewImporter(job *core.ImportJob) (core.Importer, error) {
	return &csvImporter{job: job}, nil
}

type csvExporter struct {
	job *core.ExportJob
}

func (e *csvExporter) Perform(ctx context.Context) (string, error) {
	if err := e.job.Prepare(); err != nil {
		return "", err
	}
	return e.job.Persist(CSVDriver{}.Extension(), e.write)
}

func (e *csvExporter) write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(e.job.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for row, err := range e.job.Rows() {
		if err != nil {
			return err
		}
		if blankRow(row) {
			if err := writeBlankRecord(w, cw); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
			continue
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// blankRow reports whether csv.Writer would emit row as an empty line,
// which csv.Reader skips.
func blankRow(row []string) bool {
	return len(row) == 0 || (len(row) == 1 && row[0] == "")
}

// writeBlankRecord writes a record holding one quoted empty field so the
// line is read back as a row.
func writeBlankRecord(w io.Writer, cw *csv.Writer) error {
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\"\"\n")
	return err
}

type csvImporter struct {
	job *core.ImportJob
}

func (i *csvImporter) Perform(ctx context.Context) (int, error) {
	if err := i.job.Begin(); err != nil {
		return 0, err
	}

	f, err := os.Open(i.job.Source)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", i.job.Source, err)
	}
	defer f.Close()

	in := NewInputReader(f)
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%w: %s has no header row", core.ErrParse, i.job.Source)
		}
		return 0, fmt.Errorf("%w: read header of %s: %w", core.ErrParse, i.job.Source, err)
	}

	data := i.job.Zip(ctx, header, csvRecords(r))
	created, err := core.SaveRows(ctx, i.job, data)

	slog.DebugContext(ctx, "csv source read",
		"job_id", i.job.ID,
		"bytes", in.BytesRead,
		"created", created,
	)
	return created, err
}

// csvRecords yields the remaining records of r. A malformed record stops
// the sequence with ErrParse.
func csvRecords(r *csv.Reader) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		for {
			rec, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("%w: %w", core.ErrParse, err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}
