package core

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipRow(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		cells  []string
		want   TabularRow
	}{
		{
			name:   "full row",
			header: []string{"name", "number"},
			cells:  []string{"Alice", "5"},
			want:   TabularRow{"name": "Alice", "number": "5"},
		},
		{
			name:   "short row maps trailing headers to nil",
			header: []string{"name", "number"},
			cells:  []string{"Bob"},
			want:   TabularRow{"name": "Bob", "number": nil},
		},
		{
			name:   "extra cells dropped",
			header: []string{"name"},
			cells:  []string{"Carol", "extra"},
			want:   TabularRow{"name": "Carol"},
		},
		{
			name:   "empty cell is nil",
			header: []string{"name", "number"},
			cells:  []string{"", "7"},
			want:   TabularRow{"name": nil, "number": "7"},
		},
		{
			name:   "blank header skipped",
			header: []string{"name", "", "number"},
			cells:  []string{"Dan", "ignored", "1"},
			want:   TabularRow{"name": "Dan", "number": "1"},
		},
		{
			name:   "raw value kept",
			header: []string{"name"},
			cells:  []string{"  spaced  "},
			want:   TabularRow{"name": "  spaced  "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ZipRow(tt.header, tt.cells))
		})
	}
}

func TestBuildPayloadExcludesIdentityAndReadOnly(t *testing.T) {
	fields := []FieldSpec{
		{Name: "id"},
		{Name: "name", Order: 1},
		{Name: "created", Order: 2, ReadOnly: true},
		{Name: "number", Order: 3},
	}
	row := TabularRow{"id": "7", "name": "Alice", "created": "yesterday"}

	assert.Equal(t, map[string]any{"name": "Alice", "number": nil}, BuildPayload(row, fields))
}

func TestNewImportJobValidation(t *testing.T) {
	src := &fakeSource{}

	_, err := NewImportJob(ImportJobParams{RecordType: "note", Source: "f.csv", Store: src})
	require.ErrorIs(t, err, ErrConfiguration, "empty fields")

	_, err = NewImportJob(ImportJobParams{RecordType: "note", Fields: noteFields, Store: src})
	require.ErrorIs(t, err, ErrConfiguration, "missing source")

	_, err = NewImportJob(ImportJobParams{RecordType: "note", Fields: noteFields, Source: "f.csv"})
	require.ErrorIs(t, err, ErrConfiguration, "missing store")
}

func TestImportJobBegin(t *testing.T) {
	layout := DefaultLayout(t.TempDir())
	job, err := NewImportJob(ImportJobParams{
		RecordType: "note",
		Fields:     noteFields,
		Source:     "f.csv",
		Layout:     layout,
		Store:      &fakeSource{},
	})
	require.NoError(t, err)
	require.NoError(t, job.Begin())

	_, err = os.Stat(layout.ImportDir())
	require.NoError(t, err)

	job.Source = ""
	require.ErrorIs(t, job.Begin(), ErrConfiguration)
}

func newTestImportJob(t *testing.T, src *fakeSource) *ImportJob {
	t.Helper()
	job, err := NewImportJob(ImportJobParams{
		RecordType: "note",
		Fields:     noteFields,
		Source:     "f.csv",
		Layout:     DefaultLayout(t.TempDir()),
		Store:      src,
	})
	require.NoError(t, err)
	return job
}

func TestSaveRowsSparseExample(t *testing.T) {
	src := &fakeSource{}
	job := newTestImportJob(t, src)
	ctx := context.Background()

	header := []string{"name", "number"}
	rows := job.Zip(ctx, header, SliceRows([][]string{{"Alice", "5"}, {"Bob"}}))

	n, err := SaveRows(ctx, job, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []map[string]any{
		{"name": "Alice", "number": "5"},
		{"name": "Bob", "number": nil},
	}, src.created)
}

func TestSaveRowsStopsAtFirstFailure(t *testing.T) {
	src := &fakeSource{failOn: 3}
	job := newTestImportJob(t, src)
	ctx := context.Background()

	data := [][]string{{"a"}, {"b"}, {"c"}, {"d"}}
	n, err := SaveRows(ctx, job, job.Zip(ctx, []string{"name"}, SliceRows(data)))

	assert.Equal(t, 2, n)
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 3, rowErr.Row)
	assert.Equal(t, 2, rowErr.Created)
	assert.Len(t, src.created, 2, "earlier records stay created")
	assert.Equal(t, 3, src.calls, "no creation after the failure")
}

func TestSaveRowsPropagatesReadError(t *testing.T) {
	src := &fakeSource{}
	job := newTestImportJob(t, src)
	readErr := errors.New("truncated file")

	rows := func(yield func(TabularRow, error) bool) {
		if !yield(TabularRow{"name": "a"}, nil) {
			return
		}
		yield(nil, readErr)
	}

	n, err := SaveRows(context.Background(), job, rows)
	require.ErrorIs(t, err, readErr)
	assert.Equal(t, 1, n)
}

func TestSaveRowsHeaderOnly(t *testing.T) {
	src := &fakeSource{}
	job := newTestImportJob(t, src)
	ctx := context.Background()

	n, err := SaveRows(ctx, job, job.Zip(ctx, []string{"name", "number"}, SliceRows(nil)))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, src.calls)
}
