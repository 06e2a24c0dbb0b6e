package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "invalid url format",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "unsupported scheme",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "ftp://example.test/remuneracao"
			},
			wantErr: "scheme",
		},
		{
			name: "bad period",
			mutate: func(cfg *Config) {
				cfg.Period = "2025-06"
			},
			wantErr: "period",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -1 * time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "negative retries",
			mutate: func(cfg *Config) {
				cfg.MaxRetries = -1
			},
			wantErr: "max retries",
		},
		{
			name: "rate limit wait above max",
			mutate: func(cfg *Config) {
				cfg.RateLimitWait = time.Minute
				cfg.RateLimitMax = time.Second
			},
			wantErr: "rate limit wait",
		},
		{
			name: "zero rate limit tries",
			mutate: func(cfg *Config) {
				cfg.RateLimitTries = 0
			},
			wantErr: "rate limit tries",
		},
		{
			name: "unknown format",
			mutate: func(cfg *Config) {
				cfg.OutputFormat = "parquet"
			},
			wantErr: "output format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestValidatePeriod(t *testing.T) {
	tests := []struct {
		period  string
		wantErr bool
	}{
		{period: "202506", wantErr: false},
		{period: "199912", wantErr: false},
		{period: "202513", wantErr: true},
		{period: "202500", wantErr: true},
		{period: "20256", wantErr: true},
		{period: "abcdef", wantErr: true},
		{period: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			err := ValidatePeriod(tt.period)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePeriod(%q) error = %v, wantErr %v", tt.period, err, tt.wantErr)
			}
		})
	}
}

func TestPromptPeriod(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "blank uses default", input: "\n", want: DefaultPeriod},
		{name: "eof uses default", input: "", want: DefaultPeriod},
		{name: "explicit", input: "  202401 \n", want: "202401"},
		{name: "no newline", input: "202312", want: "202312"},
		{name: "invalid", input: "junho\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			got, err := PromptPeriod(strings.NewReader(tt.input), &out, DefaultPeriod)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PromptPeriod error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("PromptPeriod = %q, want %q", got, tt.want)
			}
			if !strings.Contains(out.String(), "["+DefaultPeriod+"]") {
				t.Fatalf("prompt %q should show the default", out.String())
			}
		})
	}
}

func TestLoadAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	dir := t.TempDir()

	good := filepath.Join(dir, "chave_api.txt")
	if err := os.WriteFile(good, []byte("  abc123\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	key, err := LoadAPIKey(good)
	if err != nil {
		t.Fatalf("load key: %v", err)
	}
	if key != "abc123" {
		t.Fatalf("key = %q, want abc123", key)
	}

	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("\n \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAPIKey(empty); !errors.Is(err, ErrEmptyAPIKey) {
		t.Fatalf("expected ErrEmptyAPIKey, got %v", err)
	}

	if _, err := LoadAPIKey(filepath.Join(dir, "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadAPIKeyPrefersEnv(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")
	key, err := LoadAPIKey(filepath.Join(t.TempDir(), "missing.txt"))
	if err != nil {
		t.Fatalf("load key: %v", err)
	}
	if key != "from-env" {
		t.Fatalf("key = %q, want from-env", key)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"PERIOD", "202401")
	t.Setenv(EnvPrefix+"FORMAT", "BOTH")
	t.Setenv(EnvPrefix+"MAX_RETRIES", "5")
	t.Setenv(EnvPrefix+"INTERVAL", "1s")

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Period != "202401" || cfg.OutputFormat != "both" || cfg.MaxRetries != 5 || cfg.RequestInterval != time.Second {
		t.Fatalf("unexpected config after env: %+v", cfg)
	}
}

func TestApplyEnvInvalidInt(t *testing.T) {
	t.Setenv(EnvPrefix+"MAX_RETRIES", "three")
	if err := DefaultConfig().ApplyEnv(); err == nil || !strings.Contains(err.Error(), "MAX_RETRIES") {
		t.Fatalf("expected MAX_RETRIES error, got %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("REMUNERACAO_OUTPUT_DIR=out\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPrefix+"OUTPUT_DIR", "")
	os.Unsetenv(EnvPrefix + "OUTPUT_DIR")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if v, ok := EnvString("OUTPUT_DIR"); !ok || v != "out" {
		t.Fatalf("OUTPUT_DIR = %q (%v), want out", v, ok)
	}
}
