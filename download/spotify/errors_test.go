package spotify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/sv4u/spotigo"
)

func apiError(status int, headers map[string][]string) *spotigo.SpotifyError {
	return &spotigo.SpotifyError{HTTPStatus: status, Code: status, Message: "api error", Headers: headers}
}

func TestRateLimitError(t *testing.T) {
	original := errors.New("429")
	err := &RateLimitError{RetryAfter: 30, Original: original}

	if !strings.Contains(err.Error(), "30 seconds") {
		t.Errorf("Error() = %q, want retry-after seconds", err.Error())
	}
	if !errors.Is(err, original) {
		t.Error("RateLimitError should unwrap to original")
	}
}

func TestConnectionError(t *testing.T) {
	original := errors.New("dial tcp: connection refused")
	err := &ConnectionError{Reason: "network failure", Original: original}

	if !strings.Contains(err.Error(), "network failure") {
		t.Errorf("Error() = %q, want reason", err.Error())
	}
	if !errors.Is(err, original) {
		t.Error("ConnectionError should unwrap to original")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		want      string
		transient bool
	}{
		{name: "status 429", err: apiError(429, nil), want: "ratelimit"},
		{name: "status 401", err: apiError(401, nil), want: "connection"},
		{name: "status 403", err: apiError(403, nil), want: "connection"},
		{name: "status 500", err: apiError(500, nil), want: "connection", transient: true},
		{name: "status 503 wrapped", err: fmt.Errorf("get artist: %w", apiError(503, nil)), want: "connection", transient: true},
		{name: "oauth", err: fmt.Errorf("failed to get access token: %w", &spotigo.SpotifyOAuthError{ErrorType: "invalid_client"}), want: "connection"},
		{name: "net error", err: fmt.Errorf("request failed: %w", &net.OpError{Op: "dial", Err: errors.New("refused")}), want: "connection", transient: true},
		{name: "status 404", err: apiError(404, nil), want: "spotify"},
		{name: "status 400", err: apiError(400, nil), want: "spotify"},
		{name: "token in message", err: errors.New("unexpected token in JSON"), want: "spotify"},
		{name: "rate limit text", err: errors.New("rate limit mentioned in a description"), want: "spotify"},
		{name: "canceled", err: context.Canceled, want: "context"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			var (
				rl   *RateLimitError
				conn *ConnectionError
				sp   *SpotifyError
			)
			kind := "context"
			switch {
			case errors.As(got, &rl):
				kind = "ratelimit"
			case errors.As(got, &conn):
				kind = "connection"
				if conn.Transient != tt.transient {
					t.Errorf("Transient = %v, want %v", conn.Transient, tt.transient)
				}
			case errors.As(got, &sp):
				kind = "spotify"
			}
			if kind != tt.want {
				t.Errorf("classifyError(%v) kind = %s, want %s", tt.err, kind, tt.want)
			}
		})
	}
}

func TestClassifyError_StatusKept(t *testing.T) {
	var sp *SpotifyError
	if !errors.As(classifyError(apiError(404, nil)), &sp) {
		t.Fatal("expected SpotifyError")
	}
	if sp.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", sp.StatusCode)
	}
}

func TestClassifyError_RetryAfter(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string][]string
		want    int
	}{
		{"seconds", map[string][]string{"Retry-After": {"30"}}, 30},
		{"missing", nil, 0},
		{"garbage", map[string][]string{"Retry-After": {"soon"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rl *RateLimitError
			if !errors.As(classifyError(apiError(429, tt.headers)), &rl) {
				t.Fatal("expected RateLimitError")
			}
			if rl.RetryAfter != tt.want {
				t.Errorf("RetryAfter = %d, want %d", rl.RetryAfter, tt.want)
			}
		})
	}
}

func TestClassifyError_Nil(t *testing.T) {
	if err := classifyError(nil); err != nil {
		t.Errorf("classifyError(nil) = %v, want nil", err)
	}
}
