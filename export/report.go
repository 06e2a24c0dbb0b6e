package export

import (
	"bufio"
	"fmt"
	"os"
)

// WriteReport writes header followed by one identifier per line. Nothing is
// written when ids is empty; written reports whether the file was created.
func WriteReport(path, header string, ids []string) (written bool, err error) {
	if len(ids) == 0 {
		return false, nil
	}
	if err := ensureDir(path); err != nil {
		return false, err
	}

	f, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			written, err = false, fmt.Errorf("close report: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, header)
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	if err := w.Flush(); err != nil {
		return false, fmt.Errorf("write report: %w", err)
	}
	return true, nil
}
