package fetcher

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		want   string
	}{
		{name: "deadline", err: fmt.Errorf("get: %w", context.DeadlineExceeded), want: "timeout"},
		{name: "net timeout", err: timeoutError{}, want: "timeout"},
		{name: "connection", err: errors.New("connection refused"), want: "connection"},
		{name: "bad request", status: 400, want: "bad_request"},
		{name: "forbidden", status: 403, want: "forbidden"},
		{name: "rate limited", status: 429, want: "rate_limited"},
		{name: "server", status: 503, want: "server"},
		{name: "not found", status: 404, want: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err, tt.status)
			if got == nil {
				t.Fatalf("classifyError returned nil")
			}
			if label := errorTypeLabel(got); label != tt.want {
				t.Fatalf("label = %q, want %q (%v)", label, tt.want, got)
			}
		})
	}
}

func TestClassifyErrorNil(t *testing.T) {
	if err := classifyError(nil, 0); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if label := errorTypeLabel(nil); label != "unknown" {
		t.Fatalf("label = %q, want unknown", label)
	}
}

func TestTypedErrorsUnwrap(t *testing.T) {
	cause := errors.New("cause")
	wrapped := fmt.Errorf("lookup: %w", ErrServer{Err: cause})

	var server ErrServer
	if !errors.As(wrapped, &server) {
		t.Fatalf("expected ErrServer in chain")
	}
	if !errors.Is(wrapped, cause) {
		t.Fatalf("expected cause in chain")
	}
	if got := server.Error(); got != "server: cause" {
		t.Fatalf("Error() = %q", got)
	}
}
