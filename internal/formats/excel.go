package formats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/dataio/internal/core"
)

// maxSheetNameLen is Excel's limit on sheet titles, in characters.
const maxSheetNameLen = 31

// ExcelDriver reads and writes .xlsx workbooks through excelize.
type ExcelDriver struct{}

func (ExcelDriver) Extension() string { return "xlsx" }

// CheckDependencies builds and discards an empty workbook.
func (ExcelDriver) CheckDependencies() error {
	f := excelize.NewFile()
	if len(f.GetSheetList()) == 0 {
		return errors.New("excelize: new workbook has no sheet")
	}
	return f.Close()
}

func (ExcelDriver) NewExporter(job *core.ExportJob) (core.Exporter, error) {
	return &excelExporter{job: job}, nil
}

func (ExcelDriver) NewImporter(job *core.ImportJob) (core.Importer, error) {
	return &excelImporter{job: job}, nil
}

type excelExporter struct {
	job *core.ExportJob
}

// Perform writes one sheet titled with the job label.
func (e *excelExporter) Perform(ctx context.Context) (string, error) {
	if err := e.job.Prepare(); err != nil {
		return "", err
	}
	return e.job.Persist(ExcelDriver{}.Extension(), e.write)
}

func (e *excelExporter) write(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(e.job.Label)
	first := f.GetSheetName(0)
	if sheet != first {
		if err := f.SetSheetName(first, sheet); err != nil {
			return fmt.Errorf("name sheet %q: %w", sheet, err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open sheet writer: %w", err)
	}

	rowNum := 1
	if err := setRow(sw, rowNum, e.job.Header()); err != nil {
		return err
	}
	for row, err := range e.job.Rows() {
		if err != nil {
			return err
		}
		rowNum++
		if err := setRow(sw, rowNum, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	return f.Write(w)
}

func setRow(sw *excelize.StreamWriter, rowNum int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

type excelImporter struct {
	job *core.ImportJob
}

// Perform reads the first sheet of the workbook.
func (i *excelImporter) Perform(ctx context.Context) (int, error) {
	if err := i.job.Begin(); err != nil {
		return 0, err
	}

	rows, err := readFirstSheet(i.job.Source)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: %s has no header row", core.ErrParse, i.job.Source)
	}

	data := i.job.Zip(ctx, rows[0], core.SliceRows(rows[1:]))
	return core.SaveRows(ctx, i.job, data)
}

func readFirstSheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		return nil, fmt.Errorf("%w: open workbook %s: %w", core.ErrParse, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", core.ErrParse, path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %w", core.ErrParse, sheets[0], err)
	}
	return rows, nil
}

// SheetName makes label usable as an Excel sheet title: forbidden
// characters become '_', surrounding apostrophes are dropped and the result
// is cut to 31 characters. An empty result becomes "Sheet1".
func SheetName(label string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, label)
	name = strings.Trim(name, "'")

	if utf8.RuneCountInString(name) > maxSheetNameLen {
		name = string([]rune(name)[:maxSheetNameLen])
	}
	if name == "" {
		return "Sheet1"
	}
	return name
}
