package parser

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// IdentifierLength is the digit count of a CPF.
const IdentifierLength = 11

// Rejection describes an input line that did not yield an identifier.
type Rejection struct {
	Line   int
	Text   string
	Reason string
}

// CleanIdentifier strips formatting from a CPF and checks its digit count.
func CleanIdentifier(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != IdentifierLength {
		return "", fmt.Errorf("expected %d digits, got %d", IdentifierLength, len(digits))
	}
	return digits, nil
}

// ReadIdentifiers parses one identifier per line. Blank lines and lines
// starting with "#" are ignored; malformed lines and repeats are logged and
// returned as rejections. dedupeSize bounds the memory used to detect repeats.
func ReadIdentifiers(r io.Reader, dedupeSize int) ([]string, []Rejection, error) {
	if dedupeSize <= 0 {
		dedupeSize = 1
	}
	seen, err := lru.New[string, struct{}](dedupeSize)
	if err != nil {
		return nil, nil, fmt.Errorf("create dedupe cache: %w", err)
	}

	var (
		ids      []string
		rejected []Rejection
	)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		id, err := CleanIdentifier(line)
		if err != nil {
			slog.Warn("invalid identifier", slog.Int("line", lineNo), slog.String("text", line), slog.String("reason", err.Error()))
			rejected = append(rejected, Rejection{Line: lineNo, Text: line, Reason: err.Error()})
			continue
		}
		if seen.Contains(id) {
			slog.Warn("duplicate identifier", slog.Int("line", lineNo), slog.String("cpf", id))
			rejected = append(rejected, Rejection{Line: lineNo, Text: line, Reason: "duplicate"})
			continue
		}
		seen.Add(id, struct{}{})
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return ids, rejected, fmt.Errorf("scan identifiers: %w", err)
	}
	return ids, rejected, nil
}

// ReadIdentifiersFile opens path and delegates to ReadIdentifiers.
func ReadIdentifiersFile(path string, dedupeSize int) ([]string, []Rejection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open identifiers file: %w", err)
	}
	defer f.Close()
	return ReadIdentifiers(f, dedupeSize)
}
