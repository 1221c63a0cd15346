package core

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"
)

// Default directory names beneath the data root. They match the layout
// existing deployments already have on disk.
const (
	DefaultMediaDirName  = "django_dataio_media"
	DefaultExportDirName = "django_dataio_exports"
	DefaultImportDirName = "django_dataio_imports"
)

// SuffixLength is the number of random characters in an export file name.
const SuffixLength = 5

// MaxReserveAttempts bounds how many suffixes ReserveExportFile tries
// before giving up.
var MaxReserveAttempts = 10

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Layout locates the export and import directories.
//
// The data root is MediaRoot when set, otherwise BaseDir/MediaDirName.
// Exports and imports each get their own directory beneath the root.
type Layout struct {
	MediaRoot     string
	BaseDir       string
	MediaDirName  string
	ExportDirName string
	ImportDirName string
}

// DefaultLayout returns a layout rooted at baseDir with the default names.
func DefaultLayout(baseDir string) Layout {
	return Layout{
		BaseDir:       baseDir,
		MediaDirName:  DefaultMediaDirName,
		ExportDirName: DefaultExportDirName,
		ImportDirName: DefaultImportDirName,
	}
}

// Root returns the data root directory.
func (l Layout) Root() string {
	if l.MediaRoot != "" {
		return l.MediaRoot
	}
	return filepath.Join(l.BaseDir, orDefault(l.MediaDirName, DefaultMediaDirName))
}

// ExportDir returns the directory export files are written to.
func (l Layout) ExportDir() string {
	return filepath.Join(l.Root(), orDefault(l.ExportDirName, DefaultExportDirName))
}

// ImportDir returns the directory reserved for import files.
func (l Layout) ImportDir() string {
	return filepath.Join(l.Root(), orDefault(l.ImportDirName, DefaultImportDirName))
}

// EnsureDirs creates every directory that does not exist yet.
// An existing directory is not an error, so concurrent callers may race.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SuffixFunc returns a random file-name suffix of length n.
type SuffixFunc func(n int) string

// RandomSuffix returns n random ASCII letters and digits.
func RandomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = suffixAlphabet[rand.IntN(len(suffixAlphabet))]
	}
	return string(b)
}

// ExportFileName returns "{YYYY-MM-DD}__{suffix}.{ext}" using the UTC date.
func ExportFileName(now time.Time, suffix, ext string) string {
	return fmt.Sprintf("%s__%s.%s", now.UTC().Format(time.DateOnly), suffix, ext)
}

// ReserveExportFile creates a new empty file in dir named by ExportFileName.
// The file is created exclusively: when the name is taken a fresh suffix is
// drawn, so two exports never write to the same file.
func ReserveExportFile(dir, ext string, now time.Time, suffix SuffixFunc) (*os.File, error) {
	if suffix == nil {
		suffix = RandomSuffix
	}
	for attempt := 0; attempt < MaxReserveAttempts; attempt++ {
		path := filepath.Join(dir, ExportFileName(now, suffix(SuffixLength), ext))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("create export file: %w", err)
		}
	}
	return nil, fmt.Errorf("create export file: no free name in %s after %d attempts", dir, MaxReserveAttempts)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
