package core

import (
	"context"
	"iter"
	"sort"
)

// IdentityField is the primary key attribute. It is never written on import;
// the record source assigns it.
const IdentityField = "id"

// FieldSpec defines one interchange column of a record type.
type FieldSpec struct {
	Name     string // Record attribute name, also the column header
	Order    int    // Column position (lower first)
	ReadOnly bool   // Excluded from import payloads
}

// Writable reports whether the field may be set from an imported row.
func (f FieldSpec) Writable() bool {
	return !f.ReadOnly && f.Name != IdentityField
}

// Record is a single record supplied by a RecordSource.
type Record interface {
	// Field returns the value stored under name and whether it exists.
	Field(name string) (any, bool)
}

// MapRecord is a Record backed by a map of attribute values.
type MapRecord map[string]any

// Field implements Record.
func (r MapRecord) Field(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

// Records is the lazy sequence returned by RecordSource.List.
// A non-nil error ends the sequence.
type Records = iter.Seq2[Record, error]

// RecordSource is the storage layer behind a record type.
// Satisfied by the memory, sqlite and postgres stores.
type RecordSource interface {
	// List returns every record of recordType in the source's own order.
	List(ctx context.Context, recordType string) (Records, error)

	// Create persists a new record built from payload and returns it.
	Create(ctx context.Context, recordType string, payload map[string]any) (Record, error)
}

// FieldCatalog supplies the interchange fields configured for a record type.
type FieldCatalog interface {
	FieldsFor(ctx context.Context, recordType string) ([]FieldSpec, error)
}

// TabularRow maps a column header to its raw cell value.
// Cells missing from the row, or empty, are nil.
type TabularRow map[string]any

// CellPolicy controls how empty record values are written on export.
type CellPolicy int

const (
	// CellsOmitEmpty leaves empty values out of the row. Later cells shift
	// left, so the row no longer lines up with the header.
	CellsOmitEmpty CellPolicy = iota

	// CellsKeepEmpty writes an explicit blank cell for empty values.
	CellsKeepEmpty
)

// String returns the policy name used in configuration.
func (p CellPolicy) String() string {
	switch p {
	case CellsKeepEmpty:
		return "keep"
	default:
		return "omit"
	}
}

// SortFields returns a copy of fields ordered by Order.
// Fields with equal Order keep their catalog order.
func SortFields(fields []FieldSpec) []FieldSpec {
	sorted := make([]FieldSpec, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// FieldNames returns the names of fields in order.
func FieldNames(fields []FieldSpec) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
