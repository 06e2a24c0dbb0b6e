package fetcher

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
)

func TestRetryBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 0, want: time.Second},
		{attempt: 1, want: time.Second},
		{attempt: 2, want: 2 * time.Second},
		{attempt: 3, want: 4 * time.Second},
	}

	for _, tt := range tests {
		if got := retryBackoff(time.Second, tt.attempt); got != tt.want {
			t.Errorf("retryBackoff(1s, %d) = %s, want %s", tt.attempt, got, tt.want)
		}
	}
}

func TestShouldRetry(t *testing.T) {
	response := func(method string, status int) *resty.Response {
		return &resty.Response{
			Request:     &resty.Request{Method: method},
			RawResponse: &http.Response{StatusCode: status},
		}
	}

	tests := []struct {
		name string
		resp *resty.Response
		err  error
		want bool
	}{
		{name: "ok", resp: response(http.MethodGet, http.StatusOK), want: false},
		{name: "not found", resp: response(http.MethodGet, http.StatusNotFound), want: false},
		{name: "forbidden", resp: response(http.MethodGet, http.StatusForbidden), want: false},
		{name: "too many requests", resp: response(http.MethodGet, http.StatusTooManyRequests), want: true},
		{name: "internal error", resp: response(http.MethodGet, http.StatusInternalServerError), want: true},
		{name: "bad gateway", resp: response(http.MethodGet, http.StatusBadGateway), want: true},
		{name: "unavailable", resp: response(http.MethodGet, http.StatusServiceUnavailable), want: true},
		{name: "gateway timeout", resp: response(http.MethodGet, http.StatusGatewayTimeout), want: true},
		{name: "not implemented", resp: response(http.MethodGet, http.StatusNotImplemented), want: false},
		{name: "post not retried", resp: response(http.MethodPost, http.StatusServiceUnavailable), want: false},
		{name: "network error", resp: response(http.MethodGet, 0), err: errors.New("reset"), want: true},
		{name: "no response", err: errors.New("dial"), want: true},
		{name: "cancelled", resp: response(http.MethodGet, 0), err: context.Canceled, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldRetry(tt.resp, tt.err); got != tt.want {
				t.Fatalf("shouldRetry = %v, want %v", got, tt.want)
			}
		})
	}
}
