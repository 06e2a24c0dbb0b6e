package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/aluiziolira/go-remuneracao/config"
	"github.com/aluiziolira/go-remuneracao/models"
)

// Fetcher runs remuneration lookups for a batch of identifiers, one at a
// time, and classifies every identifier it attempts.
type Fetcher struct {
	cfg     *config.Config
	client  *resty.Client
	sleep   func(context.Context, time.Duration) error
	retries int
	Metrics *Metrics
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithTransport replaces the HTTP transport, mainly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		f.client.SetTransport(rt)
	}
}

// WithSleep replaces the wait used for pacing and rate-limit recovery.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(f *Fetcher) {
		f.sleep = sleep
	}
}

// New builds a fetcher bound to cfg.BaseURL using apiKey as credential.
func New(cfg *config.Config, apiKey string, opts ...Option) (*Fetcher, error) {
	if apiKey == "" {
		return nil, config.ErrEmptyAPIKey
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	f := &Fetcher{
		cfg:     cfg,
		sleep:   sleepContext,
		Metrics: NewMetrics(),
	}
	f.client = NewClient(cfg, apiKey, func(int, error) {
		f.retries++
		f.Metrics.IncRetries()
	})
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// lookupResult is what one request yielded for one identifier.
type lookupResult struct {
	status  int
	records []models.RawRecord
	err     error
}

// Run looks up every identifier for period in order. The returned result is
// never nil and holds everything accumulated so far; the error is non-nil
// when the run stopped before the end of ids (ErrForbidden or ctx.Err()).
func (f *Fetcher) Run(ctx context.Context, ids []string, period string) (*models.FetchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	result := &models.FetchResult{
		Period:       period,
		StartTime:    time.Now(),
		ErrorsByType: make(map[string]int),
	}
	retriesBefore := f.retries
	defer func() {
		result.RetryCount = f.retries - retriesBefore
		result.EndTime = time.Now()
	}()

	slog.Info("starting lookups", slog.Int("identifiers", len(ids)), slog.String("period", period))

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			result.Halted = true
			return result, err
		}

		slog.Info("processing identifier",
			slog.Int("index", i+1),
			slog.Int("total", len(ids)),
			slog.String("cpf", id),
		)
		result.Attempted++

		res, err := f.lookupWithRecovery(ctx, id, period, result)
		if err != nil {
			// Cancelled mid-wait: the identifier stays unclassified.
			result.Attempted--
			result.Halted = true
			return result, err
		}

		switch {
		case res.err == nil && len(res.records) > 0:
			result.Records = append(result.Records, res.records...)
			result.WithData = append(result.WithData, id)
			f.Metrics.AddRecords(len(res.records))
			f.Metrics.IncOutcome(string(models.OutcomeHasData))
			slog.Info("records found", slog.String("cpf", id), slog.Int("records", len(res.records)))
		case res.err == nil:
			result.NoData = append(result.NoData, id)
			f.Metrics.IncOutcome(string(models.OutcomeNoData))
			slog.Info("no records found", slog.String("cpf", id))
		default:
			category := errorTypeLabel(res.err)
			result.Errored = append(result.Errored, id)
			result.ErrorsByType[category]++
			f.Metrics.IncError(category)
			f.Metrics.IncOutcome(string(models.OutcomeErrored))

			var forbidden ErrForbidden
			if errors.As(res.err, &forbidden) {
				slog.Error("access denied, check the api key", slog.String("cpf", id), slog.Any("error", res.err))
				result.Halted = true
				return result, res.err
			}
			slog.Error("lookup failed",
				slog.String("cpf", id),
				slog.Int("status", res.status),
				slog.String("category", category),
				slog.Any("error", res.err),
			)
		}

		// Pacing governor, about 90 requests per minute.
		if err := f.sleep(ctx, f.cfg.RequestInterval); err != nil && i < len(ids)-1 {
			result.Halted = true
			return result, err
		}
	}

	return result, nil
}

// lookupWithRecovery issues the lookup and, while the API keeps answering
// 429, waits and re-issues it for the same identifier. Waits start at
// RateLimitWait and double up to RateLimitMax; after RateLimitTries waits
// the 429 is reported as ErrRateLimited. The returned error is only set
// when ctx ends during a request or a wait.
func (f *Fetcher) lookupWithRecovery(ctx context.Context, id, period string, result *models.FetchResult) (lookupResult, error) {
	wait := f.cfg.RateLimitWait
	for waits := 0; ; waits++ {
		res := f.lookup(ctx, id, period)
		result.RequestCount++
		if res.err != nil && ctx.Err() != nil {
			return lookupResult{}, ctx.Err()
		}
		if res.status != http.StatusTooManyRequests {
			return res, nil
		}
		if waits >= f.cfg.RateLimitTries {
			return res, nil
		}

		result.RateLimitWaits++
		f.Metrics.IncRateLimitWait()
		slog.Warn("rate limited, waiting before retrying",
			slog.String("cpf", id),
			slog.Duration("wait", wait),
			slog.Int("attempt", waits+1),
		)
		if err := f.sleep(ctx, wait); err != nil {
			return lookupResult{}, err
		}
		wait *= 2
		if f.cfg.RateLimitMax > 0 && wait > f.cfg.RateLimitMax {
			wait = f.cfg.RateLimitMax
		}
	}
}

// lookup performs one GET (including transport retries) and decodes it.
func (f *Fetcher) lookup(ctx context.Context, id, period string) lookupResult {
	start := time.Now()
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"cpf":    id,
			"mesAno": period,
			"pagina": "1",
		}).
		Get(f.cfg.BaseURL)
	f.Metrics.ObserveDuration(time.Since(start))

	if err != nil {
		f.Metrics.IncRequest(0)
		return lookupResult{err: classifyError(err, 0)}
	}

	status := resp.StatusCode()
	f.Metrics.IncRequest(status)
	if status != http.StatusOK {
		return lookupResult{status: status, err: classifyError(nil, status)}
	}

	records, err := decodeRecords(resp.Body())
	if err != nil {
		return lookupResult{status: status, err: ErrDecode{Err: err}}
	}
	for _, record := range records {
		record[models.QueryIdentifierKey] = id
		record[models.QueryPeriodKey] = period
	}
	return lookupResult{status: status, records: records}
}

// decodeRecords accepts a JSON array of objects, a single object, or an
// empty body. null and [] both mean no records.
func decodeRecords(body []byte) ([]models.RawRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	if body[0] == '{' {
		var record models.RawRecord
		if err := json.Unmarshal(body, &record); err != nil {
			return nil, err
		}
		if len(record) == 0 {
			return nil, nil
		}
		return []models.RawRecord{record}, nil
	}

	var records []models.RawRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, err
	}
	out := records[:0]
	for _, record := range records {
		if record != nil {
			out = append(out, record)
		}
	}
	return out, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
