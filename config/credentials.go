package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// APIKeyEnv, when set, takes precedence over the key file.
const APIKeyEnv = "PORTAL_API_KEY"

// ErrEmptyAPIKey is returned when the credential source holds no key.
var ErrEmptyAPIKey = errors.New("api key is empty")

// LoadAPIKey returns the pre-shared key from the environment or from the
// single-line file at path.
func LoadAPIKey(path string) (string, error) {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		return key, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read api key file %q: %w", path, err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmptyAPIKey)
	}
	return key, nil
}
