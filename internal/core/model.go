package core

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/JonMunkholm/dataio/internal/logging"
	"github.com/JonMunkholm/dataio/internal/metrics"
)

// Default format lists for a Model that sets none.
var (
	DefaultExportFormats = []string{"excel", "csv"}
	DefaultImportFormats = []string{"excel", "csv"}
)

// Model exposes export and import for one record type.
//
// A nil Registry means DefaultRegistry and a nil Clock means time.Now.
// Nil format lists fall back to DefaultExportFormats and
// DefaultImportFormats. A zero Layout resolves relative to the working
// directory. A nil Limiter runs jobs without a concurrency bound.
type Model struct {
	Name     string       // Record type
	Source   RecordSource // Supplies and creates records
	Catalog  FieldCatalog
	Registry *Registry
	Layout   Layout

	ExportFormats []string
	ImportFormats []string

	Policy  CellPolicy
	Suffix  SuffixFunc
	Clock   func() time.Time
	Limiter *JobLimiter
}

// ExportData writes every record of the model's type to a new file in the
// given format and returns its path.
func (m *Model) ExportData(ctx context.Context, format string) (path string, err error) {
	if !slices.Contains(m.exportFormats(), format) {
		return "", fmt.Errorf("%w: export format %q not supported for %s", ErrConfiguration, format, m.Name)
	}

	fields, err := m.Fields(ctx)
	if err != nil {
		return "", err
	}

	driver, err := m.registry().Exporter(format)
	if err != nil {
		return "", err
	}

	release, err := m.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	job, err := NewExportJob(ctx, ExportJobParams{
		Label:      m.TableLabel(),
		RecordType: m.Name,
		Fields:     fields,
		Source:     m.Source,
		Layout:     m.Layout,
		Policy:     m.Policy,
		Now:        m.now,
		Suffix:     m.Suffix,
	})
	if err != nil {
		return "", err
	}

	exp, err := driver.NewExporter(job)
	if err != nil {
		return "", fmt.Errorf("create %s exporter: %w", format, err)
	}

	log := logging.WithFields(ctx, "job_id", job.ID, "record_type", m.Name, "format", format)
	log.Info("export started", "fields", len(fields))
	start := time.Now()
	defer func() {
		metrics.ObserveExport(format, m.Name, job.Written(), time.Since(start), err)
		if err != nil {
			log.Error("export failed", "error", err)
			return
		}
		log.Info("export finished", "path", path, "rows", job.Written(), "duration", time.Since(start))
	}()

	return exp.Perform(ctx)
}

// ImportData creates one record per data row of file and returns how many
// were created. file must be a filesystem path.
func (m *Model) ImportData(ctx context.Context, file any, format string) (created int, err error) {
	driver, err := m.importDriver(format)
	if err != nil {
		return 0, err
	}

	fields, err := m.Fields(ctx)
	if err != nil {
		return 0, err
	}

	path, err := importPath(file)
	if err != nil {
		return 0, err
	}

	release, err := m.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	job, err := NewImportJob(ImportJobParams{
		Label:      m.Name,
		RecordType: m.Name,
		Fields:     fields,
		Source:     path,
		Layout:     m.Layout,
		Store:      m.Source,
	})
	if err != nil {
		return 0, err
	}

	imp, err := driver.NewImporter(job)
	if err != nil {
		return 0, fmt.Errorf("create %s importer: %w", format, err)
	}

	log := logging.WithFields(ctx, "job_id", job.ID, "record_type", m.Name, "format", format)
	log.Info("import started", "source", path)
	start := time.Now()
	defer func() {
		metrics.ObserveImport(format, m.Name, created, time.Since(start), err)
		if err != nil {
			log.Error("import failed", "created", created, "error", err)
			return
		}
		log.Info("import finished", "created", created, "duration", time.Since(start))
	}()

	return imp.Perform(ctx)
}

// CheckImportFormat reports whether ImportData would accept format: it must
// be in the model's import set (ErrConfiguration) and active (ErrNotFound).
func (m *Model) CheckImportFormat(format string) error {
	_, err := m.importDriver(format)
	return err
}

func (m *Model) importDriver(format string) (ImporterDriver, error) {
	if !slices.Contains(m.importFormats(), format) {
		return nil, fmt.Errorf("%w: import format %q not supported for %s", ErrConfiguration, format, m.Name)
	}
	return m.registry().Importer(format)
}

// TableLabel returns "{Name}({YYYY-MM-DD})" with the current UTC date.
func (m *Model) TableLabel() string {
	return fmt.Sprintf("%s(%s)", m.Name, m.now().UTC().Format(time.DateOnly))
}

// Fields returns the model's fields in column order. An empty catalog is a
// configuration error.
func (m *Model) Fields(ctx context.Context) ([]FieldSpec, error) {
	if m.Catalog == nil {
		return nil, fmt.Errorf("%w: no field catalog for %s", ErrConfiguration, m.Name)
	}
	fields, err := m.Catalog.FieldsFor(ctx, m.Name)
	if err != nil {
		return nil, fmt.Errorf("load fields for %s: %w", m.Name, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields defined for %s", ErrConfiguration, m.Name)
	}
	return SortFields(fields), nil
}

// acquire takes a job slot when the model has a limiter.
func (m *Model) acquire(ctx context.Context) (func(), error) {
	if m.Limiter == nil {
		return func() {}, nil
	}
	if err := m.Limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("%s job slot: %w", m.Name, err)
	}
	return m.Limiter.Release, nil
}

func (m *Model) registry() *Registry {
	if m.Registry != nil {
		return m.Registry
	}
	return DefaultRegistry()
}

func (m *Model) exportFormats() []string {
	if m.ExportFormats != nil {
		return m.ExportFormats
	}
	return DefaultExportFormats
}

func (m *Model) importFormats() []string {
	if m.ImportFormats != nil {
		return m.ImportFormats
	}
	return DefaultImportFormats
}

func (m *Model) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now()
}

// importPath accepts only filesystem paths.
func importPath(file any) (string, error) {
	switch f := file.(type) {
	case string:
		return f, nil
	case io.Reader:
		return "", fmt.Errorf("%w: import from a stream", ErrNotImplemented)
	default:
		return "", fmt.Errorf("%w: import from %T", ErrNotImplemented, file)
	}
}
