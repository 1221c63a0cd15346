// Package formats provides the spreadsheet format drivers and registers
// them with core at init time.
//
// Import the package for its side effect:
//
//	import _ "github.com/JonMunkholm/dataio/internal/formats"
//
// Registered formats:
//
//	excel - .xlsx workbooks, first sheet only
//	csv   - comma-separated text, UTF-8 (a leading BOM is skipped)
package formats

import (
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/dataio/internal/core"
)

// Format names.
const (
	Excel = "excel"
	CSV   = "csv"
)

func init() {
	core.RegisterExporter(Excel, ExcelDriver{})
	core.RegisterImporter(Excel, ExcelDriver{})
	core.RegisterExporter(CSV, CSVDriver{})
	core.RegisterImporter(CSV, CSVDriver{})
}

// ForPath guesses the format of a file from its extension. Unknown
// extensions come back lowercased without the dot, so the caller reports
// them as unsupported.
func ForPath(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "xlsx", "xlsm":
		return Excel
	case "csv":
		return CSV
	default:
		return ext
	}
}
