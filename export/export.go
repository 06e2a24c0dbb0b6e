// Package export writes normalized rows, raw records and outcome reports.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNothingToExport is returned when there is no data to write; no file is
// created in that case.
var ErrNothingToExport = errors.New("nothing to export")

// Report headers.
const (
	ErroredHeader = "CPFs com erro na consulta:"
	NoDataHeader  = "CPFs sem dados encontrados:"
)

// SpreadsheetName is the spreadsheet file name for period.
func SpreadsheetName(period string) string {
	return fmt.Sprintf("remuneracao_%s.xlsx", period)
}

// CSVName is the CSV file name for period.
func CSVName(period string) string {
	return fmt.Sprintf("remuneracao_%s.csv", period)
}

// ArchiveName is the raw JSON archive file name for period.
func ArchiveName(period string) string {
	return fmt.Sprintf("dados_brutos_%s.json", period)
}

// Report file names.
const (
	ErroredReportName = "cpfs_com_erro.txt"
	NoDataReportName  = "cpfs_sem_dados.txt"
)

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
