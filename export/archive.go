package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aluiziolira/go-remuneracao/models"
)

// WriteRawArchive writes records as an indented UTF-8 JSON array at path.
// Non-ASCII text and HTML characters are written unescaped.
func WriteRawArchive(path string, records []models.RawRecord) error {
	if len(records) == 0 {
		return ErrNothingToExport
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		f.Close()
		return fmt.Errorf("encode json records: %w", err)
	}
	if err := buffer.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush json writer: %w", err)
	}
	return f.Close()
}
