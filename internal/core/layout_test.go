package core

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutRoot(t *testing.T) {
	tests := []struct {
		name       string
		layout     Layout
		wantRoot   string
		wantExport string
		wantImport string
	}{
		{
			name:       "base dir with defaults",
			layout:     DefaultLayout("/srv/app"),
			wantRoot:   "/srv/app/django_dataio_media",
			wantExport: "/srv/app/django_dataio_media/django_dataio_exports",
			wantImport: "/srv/app/django_dataio_media/django_dataio_imports",
		},
		{
			name:       "media root wins",
			layout:     Layout{MediaRoot: "/media", BaseDir: "/srv/app"},
			wantRoot:   "/media",
			wantExport: "/media/django_dataio_exports",
			wantImport: "/media/django_dataio_imports",
		},
		{
			name:       "custom names",
			layout:     Layout{BaseDir: "/b", MediaDirName: "m", ExportDirName: "out", ImportDirName: "in"},
			wantRoot:   "/b/m",
			wantExport: "/b/m/out",
			wantImport: "/b/m/in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRoot, tt.layout.Root())
			assert.Equal(t, tt.wantExport, tt.layout.ExportDir())
			assert.Equal(t, tt.wantImport, tt.layout.ImportDir())
		})
	}
}

func TestEnsureDirsIdempotent(t *testing.T) {
	l := DefaultLayout(t.TempDir())

	require.NoError(t, EnsureDirs(l.Root(), l.ExportDir(), l.ImportDir()))
	require.NoError(t, EnsureDirs(l.Root(), l.ExportDir(), l.ImportDir()))

	for _, dir := range []string{l.Root(), l.ExportDir(), l.ImportDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestRandomSuffix(t *testing.T) {
	re := regexp.MustCompile(`^[A-Za-z0-9]{5}$`)
	for range 50 {
		assert.Regexp(t, re, RandomSuffix(SuffixLength))
	}
}

func TestExportFileNameUsesUTCDate(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2024, 1, 2, 3, 0, 0, 0, loc) // 2024-01-01 17:00 UTC

	assert.Equal(t, "2024-01-01__abcde.xlsx", ExportFileName(now, "abcde", "xlsx"))
}

func fixedSuffixes(suffixes ...string) SuffixFunc {
	i := 0
	return func(int) string {
		s := suffixes[i%len(suffixes)]
		i++
		return s
	}
}

func TestReserveExportFileRetriesOnCollision(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	first, err := ReserveExportFile(dir, "csv", now, fixedSuffixes("aaaaa"))
	require.NoError(t, err)
	_, err = first.WriteString("first")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := ReserveExportFile(dir, "csv", now, fixedSuffixes("aaaaa", "bbbbb"))
	require.NoError(t, err)
	require.NoError(t, second.Close())

	assert.Equal(t, filepath.Join(dir, "2024-05-06__aaaaa.csv"), first.Name())
	assert.Equal(t, filepath.Join(dir, "2024-05-06__bbbbb.csv"), second.Name())

	content, err := os.ReadFile(first.Name())
	require.NoError(t, err)
	assert.Equal(t, "first", string(content))
}

func TestReserveExportFileGivesUp(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	f, err := ReserveExportFile(dir, "csv", now, fixedSuffixes("same1"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = ReserveExportFile(dir, "csv", now, fixedSuffixes("same1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no free name")
}

func TestReserveExportFileMissingDir(t *testing.T) {
	_, err := ReserveExportFile(filepath.Join(t.TempDir(), "missing"), "csv", time.Now(), nil)
	require.ErrorIs(t, err, os.ErrNotExist)
}
