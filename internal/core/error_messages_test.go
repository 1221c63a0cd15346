package core

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "unknown format",
			err:      fmt.Errorf("%w: no exporter named %q or it is inactive", ErrNotFound, "pdf"),
			wantCode: "FMT001",
		},
		{
			name:     "missing dependency wins over not found",
			err:      fmt.Errorf("%w: %w", ErrMissingDependency, ErrNotFound),
			wantCode: "FMT002",
		},
		{
			name:     "configuration",
			err:      fmt.Errorf("%w: no fields defined for note", ErrConfiguration),
			wantCode: "CFG001",
		},
		{
			name:     "parse",
			err:      fmt.Errorf("%w: no header row", ErrParse),
			wantCode: "PAR001",
		},
		{
			name:     "unsupported source",
			err:      ErrNotImplemented,
			wantCode: "IMP001",
		},
		{
			name:     "job slots busy",
			err:      fmt.Errorf("note job slot: %w", ErrTooManyJobs),
			wantCode: "JOB001",
		},
		{
			name:     "permission",
			err:      fmt.Errorf("create export file: %w", fs.ErrPermission),
			wantCode: "IO001",
		},
		{
			name:     "duplicate key inside row error",
			err:      &RowError{Row: 3, Err: errors.New("ERROR: duplicate key value violates unique constraint")},
			wantCode: "DB001",
		},
		{
			name:     "sqlite unknown column",
			err:      errors.New("table note has no such column: colour"),
			wantCode: "DB002",
		},
		{
			name:     "row error without known pattern",
			err:      &RowError{Row: 1, Err: errors.New("store refused")},
			wantCode: "IMP002",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random error"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError().Code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := fmt.Errorf("%w: no header row", ErrParse)
	got := FormatUserError(err)
	want := "The file could not be read as a table (Code: PAR001). Make sure the first row holds the column names"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"known sentinel", ErrNotFound, true},
		{"unknown", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	if NewUserError(nil) != nil {
		t.Fatal("NewUserError(nil) should return nil")
	}

	orig := fmt.Errorf("%w: pdf", ErrNotFound)
	ue := NewUserError(orig)
	if ue.User.Code != "FMT001" {
		t.Errorf("Code = %q, want FMT001", ue.User.Code)
	}
	if ue.Error() != "Unknown or inactive format" {
		t.Errorf("Error() = %q", ue.Error())
	}
	if !errors.Is(ue, ErrNotFound) {
		t.Error("UserError should unwrap to the technical error")
	}
}
