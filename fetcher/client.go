package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aluiziolira/go-remuneracao/config"
)

// APIKeyHeader carries the pre-shared portal credential.
const APIKeyHeader = "chave-api-dados"

// retryStatuses are answered by the transport with a bounded retry.
var retryStatuses = map[int]struct{}{
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

// NewClient builds the shared HTTP session: default headers, per-request
// timeout and up to cfg.MaxRetries retries for GET requests on transient
// statuses or network errors, waiting RetryBackoff·2^(n-1) before retry n.
// A response still failing after the last retry is returned as-is.
// onRetry, when set, runs once per retry issued.
func NewClient(cfg *config.Config, apiKey string, onRetry func(status int, err error)) *resty.Client {
	client := resty.New()
	client.SetLogger(restyLogger{})
	client.SetTimeout(cfg.Timeout)
	client.SetHeaders(map[string]string{
		"Accept":     "application/json",
		APIKeyHeader: apiKey,
		"User-Agent": cfg.UserAgent,
	})

	if cfg.MaxRetries > 0 {
		client.SetRetryCount(cfg.MaxRetries)
		client.SetRetryWaitTime(cfg.RetryBackoff)
		client.SetRetryMaxWaitTime(retryBackoff(cfg.RetryBackoff, cfg.MaxRetries))
		client.SetRetryAfter(func(_ *resty.Client, r *resty.Response) (time.Duration, error) {
			attempt := 1
			if r != nil && r.Request != nil {
				attempt = r.Request.Attempt
			}
			return retryBackoff(cfg.RetryBackoff, attempt), nil
		})
		client.AddRetryCondition(shouldRetry)
		client.AddRetryHook(func(r *resty.Response, err error) {
			status := 0
			if r != nil {
				status = r.StatusCode()
				// Hooks also fire after the final attempt, which is not a retry.
				if r.Request != nil && r.Request.Attempt > cfg.MaxRetries {
					return
				}
			}
			slog.Debug("retrying request", slog.Int("status", status), slog.Any("error", err))
			if onRetry != nil {
				onRetry(status, err)
			}
		})
	}

	return client
}

func shouldRetry(r *resty.Response, err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if r == nil || r.Request == nil {
		return err != nil
	}
	if r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	_, ok := retryStatuses[r.StatusCode()]
	return ok
}

// retryBackoff returns the wait before retry attempt (1-based).
func retryBackoff(base time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	if base <= 0 {
		base = time.Millisecond
	}
	return base * time.Duration(1<<(attempt-1))
}

// restyLogger routes resty's internal messages through slog.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...any) {
	slog.Debug("http client", slog.String("message", fmt.Sprintf(format, v...)))
}

func (restyLogger) Warnf(format string, v ...any) {
	slog.Debug("http client", slog.String("message", fmt.Sprintf(format, v...)))
}

func (restyLogger) Debugf(format string, v ...any) {
	slog.Debug("http client", slog.String("message", fmt.Sprintf(format, v...)))
}
