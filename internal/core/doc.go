// Package core provides the import/export framework for spreadsheet data.
//
// This package is the heart of dataio, containing the format-independent
// logic for moving records between a record store and tabular files. It has
// no knowledge of any particular file format or storage engine; both are
// plugged in through interfaces.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Field Catalog: an ordered list of [FieldSpec] per record type that
//     decides which attributes become columns and in which order.
//   - Record Source: supplies records for export and creates records on import.
//   - Format Registry: maps a format name ("excel", "csv") to the active
//     [ExporterDriver] and [ImporterDriver] implementations.
//   - Jobs: [ExportJob] and [ImportJob] carry everything a single call needs
//     and are consumed exactly once.
//   - Model: the per record type facade exposing [Model.ExportData] and
//     [Model.ImportData].
//
// # Format Registry
//
// Drivers are registered at init time using [RegisterExporter] and
// [RegisterImporter]. The resolvable set is built once by [NewRegistry],
// which probes every driver's dependencies and drops inactive formats:
//
//	core.RegisterExporter("excel", excelExporter{})
//	core.RegisterImporter("excel", excelImporter{})
//
//	reg := core.DefaultRegistry()
//	drv, err := reg.Exporter("excel") // ErrNotFound if unknown or inactive
//
// # Row Mapping
//
// Export writes the field names as the header row, then one row per record
// built by [BuildRow]. Under the default [CellsOmitEmpty] policy an empty
// value is left out of the row entirely, so later cells shift left. Import
// zips every data row against the header with [ZipRow] and turns each row
// into a creation payload in [SaveRows]; the identity field and read-only
// fields are never written.
//
// # Error Handling
//
// Every failure wraps one of the sentinel errors ([ErrConfiguration],
// [ErrNotFound], [ErrMissingDependency], [ErrParse], [ErrNotImplemented]) or
// is a [*RowError] for a failed record creation. [MapError] turns any of them
// into a coded [UserMessage] for display.
package core
