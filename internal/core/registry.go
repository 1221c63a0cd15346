package core

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var (
	exporterDrivers = make(map[string]ExporterDriver)
	importerDrivers = make(map[string]ImporterDriver)
	driversMu       sync.RWMutex

	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DependencyChecker reports whether a driver's runtime dependencies are usable.
type DependencyChecker interface {
	// CheckDependencies returns nil when the driver can be used.
	CheckDependencies() error
}

// ExporterDriver creates exporters for one format.
type ExporterDriver interface {
	DependencyChecker
	Extension() string
	NewExporter(job *ExportJob) (Exporter, error)
}

// ImporterDriver creates importers for one format.
type ImporterDriver interface {
	DependencyChecker
	NewImporter(job *ImportJob) (Importer, error)
}

// RegisterExporter adds an exporter driver to the candidate set.
// Panics if a driver with the same name is already registered.
func RegisterExporter(name string, d ExporterDriver) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if d == nil {
		panic(fmt.Sprintf("nil exporter driver: %s", name))
	}
	if _, exists := exporterDrivers[name]; exists {
		panic(fmt.Sprintf("exporter already registered: %s", name))
	}
	exporterDrivers[name] = d
}

// RegisterImporter adds an importer driver to the candidate set.
// Panics if a driver with the same name is already registered.
func RegisterImporter(name string, d ImporterDriver) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if d == nil {
		panic(fmt.Sprintf("nil importer driver: %s", name))
	}
	if _, exists := importerDrivers[name]; exists {
		panic(fmt.Sprintf("importer already registered: %s", name))
	}
	importerDrivers[name] = d
}

// IsActive runs the driver's dependency check.
// With strict set, an inactive driver yields ErrMissingDependency instead
// of a plain false.
func IsActive(d DependencyChecker, strict bool) (bool, error) {
	if err := d.CheckDependencies(); err != nil {
		if strict {
			return false, fmt.Errorf("%w: %w", ErrMissingDependency, err)
		}
		return false, nil
	}
	return true, nil
}

// Registry is an immutable lookup from format name to active driver.
// Inactive formats are remembered only to answer strict lookups.
type Registry struct {
	exporters map[string]ExporterDriver
	importers map[string]ImporterDriver

	inactiveExporters map[string]error
	inactiveImporters map[string]error
}

// NewRegistry builds a registry from every registered driver, probing each
// one's dependencies exactly once.
func NewRegistry() *Registry {
	driversMu.RLock()
	exps := make(map[string]ExporterDriver, len(exporterDrivers))
	for name, d := range exporterDrivers {
		exps[name] = d
	}
	imps := make(map[string]ImporterDriver, len(importerDrivers))
	for name, d := range importerDrivers {
		imps[name] = d
	}
	driversMu.RUnlock()

	return BuildRegistry(exps, imps)
}

// BuildRegistry builds a registry from explicit driver sets.
func BuildRegistry(exporters map[string]ExporterDriver, importers map[string]ImporterDriver) *Registry {
	r := &Registry{
		exporters:         make(map[string]ExporterDriver),
		importers:         make(map[string]ImporterDriver),
		inactiveExporters: make(map[string]error),
		inactiveImporters: make(map[string]error),
	}

	for name, d := range exporters {
		if _, err := IsActive(d, true); err != nil {
			slog.Debug("exporter inactive", "format", name, "error", err)
			r.inactiveExporters[name] = err
			continue
		}
		r.exporters[name] = d
	}
	for name, d := range importers {
		if _, err := IsActive(d, true); err != nil {
			slog.Debug("importer inactive", "format", name, "error", err)
			r.inactiveImporters[name] = err
			continue
		}
		r.importers[name] = d
	}

	return r
}

// DefaultRegistry returns the process-wide registry, built on first use.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Exporter returns the active exporter driver for name.
func (r *Registry) Exporter(name string) (ExporterDriver, error) {
	d, ok := r.exporters[name]
	if !ok {
		return nil, fmt.Errorf("%w: no exporter named %q or it is inactive", ErrNotFound, name)
	}
	return d, nil
}

// Importer returns the active importer driver for name.
func (r *Registry) Importer(name string) (ImporterDriver, error) {
	d, ok := r.importers[name]
	if !ok {
		return nil, fmt.Errorf("%w: no importer named %q or it is inactive", ErrNotFound, name)
	}
	return d, nil
}

// RequireExporter is the strict form of Exporter: a registered but inactive
// format fails with ErrMissingDependency rather than ErrNotFound.
func (r *Registry) RequireExporter(name string) (ExporterDriver, error) {
	if err, ok := r.inactiveExporters[name]; ok {
		return nil, fmt.Errorf("exporter %q: %w", name, err)
	}
	return r.Exporter(name)
}

// RequireImporter is the strict form of Importer.
func (r *Registry) RequireImporter(name string) (ImporterDriver, error) {
	if err, ok := r.inactiveImporters[name]; ok {
		return nil, fmt.Errorf("importer %q: %w", name, err)
	}
	return r.Importer(name)
}

// ExporterNames returns the active export formats, sorted.
func (r *Registry) ExporterNames() []string {
	return sortedKeys(r.exporters)
}

// ImporterNames returns the active import formats, sorted.
func (r *Registry) ImporterNames() []string {
	return sortedKeys(r.importers)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
