package config

import (
	"fmt"
	"net/url"
	"regexp"
	"time"
)

// DefaultPeriod is used when the operator leaves the period prompt blank.
const DefaultPeriod = "202506"

var periodPattern = regexp.MustCompile(`^\d{4}(0[1-9]|1[0-2])$`)

// Config holds run configuration.
type Config struct {
	BaseURL         string
	APIKeyFile      string
	IdentifiersFile string
	Period          string
	Timeout         time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	RequestInterval time.Duration
	RateLimitWait   time.Duration
	RateLimitMax    time.Duration
	RateLimitTries  int
	DedupeMaxSize   int
	OutputDir       string
	OutputFormat    string // xlsx, csv, or both
	UserAgent       string
	MetricsAddr     string
	Verbose         bool
}

// DefaultConfig returns the settings matching the public API quota.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "https://api.portaldatransparencia.gov.br/api-de-dados/servidores/remuneracao",
		APIKeyFile:      "chave_api.txt",
		IdentifiersFile: "cpf.txt",
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		RetryBackoff:    time.Second,
		RequestInterval: 670 * time.Millisecond,
		RateLimitWait:   5 * time.Second,
		RateLimitMax:    60 * time.Second,
		RateLimitTries:  10,
		DedupeMaxSize:   100000,
		OutputDir:       ".",
		OutputFormat:    "xlsx",
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		Verbose:         false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base URL scheme must be http or https")
	}

	if c.Period != "" {
		if err := ValidatePeriod(c.Period); err != nil {
			return err
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RequestInterval < 0 {
		return fmt.Errorf("request interval cannot be negative")
	}
	if c.RateLimitWait < 0 {
		return fmt.Errorf("rate limit wait cannot be negative")
	}
	if c.RateLimitMax > 0 && c.RateLimitWait > c.RateLimitMax {
		return fmt.Errorf("rate limit wait (%s) cannot exceed rate limit max (%s)", c.RateLimitWait, c.RateLimitMax)
	}
	if c.RateLimitTries <= 0 {
		return fmt.Errorf("rate limit tries must be positive")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output dir cannot be empty")
	}
	if c.OutputFormat != "xlsx" && c.OutputFormat != "csv" && c.OutputFormat != "both" {
		return fmt.Errorf("output format must be xlsx, csv, or both")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}

// ValidatePeriod checks the YYYYMM shape of a lookup period.
func ValidatePeriod(period string) error {
	if !periodPattern.MatchString(period) {
		return fmt.Errorf("period %q must be six digits in YYYYMM form", period)
	}
	return nil
}
