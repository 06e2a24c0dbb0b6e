package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aluiziolira/go-remuneracao/models"
)

// RowWriter receives normalized rows.
type RowWriter interface {
	Write(rows []models.Row) error
	Close() error
	Path() string
}

// CSVWriter writes rows to CSV.
type CSVWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates filename and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(models.RowColumns); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		path:   filename,
		file:   f,
		writer: writer,
	}, nil
}

// Write appends rows to the CSV output.
func (cw *CSVWriter) Write(rows []models.Row) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, row := range rows {
		if err := cw.writer.Write(row.Values()); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		cw.file.Close()
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Path is the CSV file location.
func (cw *CSVWriter) Path() string {
	return cw.path
}

// MultiWriter fans rows out to several writers.
type MultiWriter struct {
	writers []RowWriter
	mu      sync.Mutex
}

// Write writes rows to every writer, stopping at the first failure.
func (mw *MultiWriter) Write(rows []models.Row) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	for _, w := range mw.writers {
		if err := w.Write(rows); err != nil {
			return fmt.Errorf("write %s: %w", w.Path(), err)
		}
	}
	return nil
}

// Close closes every writer and joins their errors.
func (mw *MultiWriter) Close() error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	var errs []error
	for _, w := range mw.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", w.Path(), err))
		}
	}
	return errors.Join(errs...)
}

// Path lists the target paths separated by commas.
func (mw *MultiWriter) Path() string {
	out := ""
	for i, w := range mw.writers {
		if i > 0 {
			out += ", "
		}
		out += w.Path()
	}
	return out
}

// Writers returns the underlying writers.
func (mw *MultiWriter) Writers() []RowWriter {
	return mw.writers
}

// NewRowWriter opens the writer for format ("xlsx", "csv" or "both") with
// files named after period under dir.
func NewRowWriter(format, dir, period string) (*MultiWriter, error) {
	mw := &MultiWriter{}
	if format == "xlsx" || format == "both" {
		mw.writers = append(mw.writers, NewSpreadsheetWriter(filepath.Join(dir, SpreadsheetName(period))))
	}
	if format == "csv" || format == "both" {
		cw, err := NewCSVWriter(filepath.Join(dir, CSVName(period)))
		if err != nil {
			return nil, fmt.Errorf("failed to create CSV writer: %w", err)
		}
		mw.writers = append(mw.writers, cw)
	}
	if len(mw.writers) == 0 {
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return mw, nil
}
