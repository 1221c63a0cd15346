package core

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers test with errors.Is; every returned error wraps
// one of these with context.
var (
	// ErrConfiguration: unsupported format name, empty field catalog,
	// unset import source.
	ErrConfiguration = errors.New("configuration error")

	// ErrNotFound: format unknown, or registered but inactive.
	ErrNotFound = errors.New("format not found")

	// ErrMissingDependency: a strict lookup hit a registered format whose
	// dependency check failed.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrParse: the tabular source has no readable header row.
	ErrParse = errors.New("parse error")

	// ErrNotImplemented: the import source kind is not supported.
	ErrNotImplemented = errors.New("not implemented")
)

// RowError reports a record creation failure during import.
// Records created from earlier rows stay persisted.
type RowError struct {
	Row     int   // 1-based data row (the header is row 0)
	Created int   // Records created before the failure
	Err     error // Error returned by the record source
}

func (e *RowError) Error() string {
	return fmt.Sprintf("create record from row %d (%d created before failure): %v", e.Row, e.Created, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
