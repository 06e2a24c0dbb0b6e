package export

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/aluiziolira/go-remuneracao/models"
)

// SheetName is the single worksheet written to the spreadsheet.
const SheetName = "Remuneracao"

// WriteSpreadsheet writes rows to an .xlsx workbook at path. The header row
// is bold and every column is as wide as its longest cell plus 2.
func WriteSpreadsheet(path string, rows []models.Row) error {
	if len(rows) == 0 {
		return ErrNothingToExport
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName(wb.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	widths := make([]int, len(models.RowColumns))
	header := make([]any, len(models.RowColumns))
	for i, name := range models.RowColumns {
		header[i] = name
		widths[i] = utf8.RuneCountInString(name)
	}
	if err := wb.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		values := row.Values()
		cells := make([]any, len(values))
		for col, value := range values {
			cells[col] = value
			if n := utf8.RuneCountInString(value); n > widths[col] {
				widths[col] = n
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(SheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	bold, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(models.RowColumns), 1)
	if err != nil {
		return err
	}
	if err := wb.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := wb.SetColWidth(SheetName, col, col, float64(width+2)); err != nil {
			return fmt.Errorf("set width of column %s: %w", col, err)
		}
	}

	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("save spreadsheet: %w", err)
	}
	return nil
}

// SpreadsheetWriter collects rows and writes the workbook on Close.
type SpreadsheetWriter struct {
	path string
	rows []models.Row
	mu   sync.Mutex
}

// NewSpreadsheetWriter returns a writer targeting path.
func NewSpreadsheetWriter(path string) *SpreadsheetWriter {
	return &SpreadsheetWriter{path: path}
}

// Write buffers rows.
func (sw *SpreadsheetWriter) Write(rows []models.Row) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.rows = append(sw.rows, rows...)
	return nil
}

// Close writes the workbook. With no rows it returns ErrNothingToExport.
func (sw *SpreadsheetWriter) Close() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return WriteSpreadsheet(sw.path, sw.rows)
}

// Path is the workbook location.
func (sw *SpreadsheetWriter) Path() string {
	return sw.path
}
