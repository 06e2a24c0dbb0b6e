package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// PromptPeriod asks for the lookup period on out and reads one line from in.
// A blank answer, or EOF before any input, yields def.
func PromptPeriod(in io.Reader, out io.Writer, def string) (string, error) {
	fmt.Fprintf(out, "Digite o mês/ano para consulta (AAAAMM) [%s]: ", def)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read period: %w", err)
	}

	period := strings.TrimSpace(line)
	if period == "" {
		period = def
	}
	if err := ValidatePeriod(period); err != nil {
		return "", err
	}
	return period, nil
}
