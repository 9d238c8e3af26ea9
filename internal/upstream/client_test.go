// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/gamescore/internal/config"
)

func testBreakerConfig() config.BreakerConfig {
	return config.BreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  3,
		FailureRatio: 0.5,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := newClient("test", 5*time.Second, testBreakerConfig(), http.Header{"X-Test": {"1"}})
	c.retryBaseDelay = time.Millisecond
	return c, srv
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("wrap: %w", ErrNotFound), "not_found"},
		{&StatusError{StatusCode: http.StatusNotFound}, "not_found"},
		{&StatusError{StatusCode: http.StatusBadGateway}, "transient"},
		{fmt.Errorf("x: %w", ErrMalformed), "malformed"},
		{fmt.Errorf("x: %w", ErrQuotaExhausted), "quota"},
		{context.Canceled, "canceled"},
		{errors.New("boom"), "transient"},
	}
	for _, tt := range tests {
		if got := Outcome(tt.err); got != tt.want {
			t.Errorf("Outcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}

	if IsRetryable(ErrNotFound) || IsRetryable(ErrMalformed) {
		t.Error("not-found and malformed answers are final")
	}
	if !IsRetryable(ErrTransient) || !IsRetryable(ErrQuotaExhausted) {
		t.Error("transient and quota errors are retryable")
	}
}

func TestClient_GetSendsHeaders(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "1" {
			t.Errorf("missing configured header")
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	body, err := c.get(context.Background(), "ping", srv.URL, nil)
	if err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
}

func TestClient_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusInternalServerError, ErrTransient},
		{http.StatusBadGateway, ErrTransient},
		{http.StatusForbidden, ErrTransient},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream says no", tt.status)
			})

			_, err := c.get(context.Background(), "detail", srv.URL, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("get() error = %v, want %v", err, tt.want)
			}
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("error should be a *StatusError, got %T", err)
			}
			if se.StatusCode != tt.status || !strings.Contains(se.Body, "upstream says no") {
				t.Errorf("StatusError = %+v", se)
			}
		})
	}
}

func TestClient_NetworkErrorIsTransient(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := c.get(context.Background(), "detail", srv.URL, nil)
	if !errors.Is(err, ErrTransient) {
		t.Errorf("get() on closed server = %v, want ErrTransient", err)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.get(ctx, "detail", srv.URL, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("get() with cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestClient_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	if _, err := c.get(context.Background(), "search", srv.URL, nil); err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestClient_PersistentRateLimitIsQuota(t *testing.T) {
	var calls atomic.Int32
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c.maxRetries = 2

	_, err := c.get(context.Background(), "search", srv.URL, nil)
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("get() error = %v, want ErrQuotaExhausted", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3 (1 + 2 retries)", got)
	}
}

func TestClient_LocalQuota(t *testing.T) {
	var calls atomic.Int32
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	})
	quota := DailyQuota(2)

	for i := 0; i < 2; i++ {
		if _, err := c.get(context.Background(), "search", srv.URL, quota); err != nil {
			t.Fatalf("call %d error = %v", i, err)
		}
	}
	_, err := c.get(context.Background(), "search", srv.URL, quota)
	if !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("third call = %v, want ErrQuotaExhausted", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, want 2", got)
	}
	if c.BreakerState() != "closed" {
		t.Errorf("quota rejections must not trip the breaker, state = %s", c.BreakerState())
	}
}

func TestDailyQuota_Disabled(t *testing.T) {
	if DailyQuota(0) != nil || DailyQuota(-1) != nil {
		t.Error("non-positive quota should disable the limiter")
	}
}

func TestClient_BreakerOpensOnTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for i := 0; i < 3; i++ {
		_, _ = c.get(context.Background(), "detail", srv.URL, nil)
	}
	if c.BreakerState() != "open" {
		t.Fatalf("breaker state = %s, want open", c.BreakerState())
	}

	_, err := c.get(context.Background(), "detail", srv.URL, nil)
	if !errors.Is(err, ErrTransient) || !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("rejected call = %v, want ErrTransient wrapping ErrOpenState", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3 (open breaker short-circuits)", got)
	}
}

func TestClient_BreakerIgnoresNotFound(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 10; i++ {
		if _, err := c.get(context.Background(), "detail", srv.URL, nil); !errors.Is(err, ErrNotFound) {
			t.Fatalf("call %d = %v, want ErrNotFound", i, err)
		}
	}
	if c.BreakerState() != "closed" {
		t.Errorf("not-found answers must not trip the breaker, state = %s", c.BreakerState())
	}
}

func TestGetJSON_Malformed(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	})

	_, err := getJSON[SearchHit](context.Background(), c, "detail", srv.URL, nil)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("getJSON() = %v, want ErrMalformed", err)
	}
}

func TestReadBodyForError(t *testing.T) {
	small := readBodyForError(strings.NewReader("oops"))
	if string(small) != "oops" {
		t.Errorf("readBodyForError(small) = %q", small)
	}

	big := readBodyForError(bytes.NewReader(bytes.Repeat([]byte("x"), maxErrorBodySize+100)))
	if !bytes.HasSuffix(big, []byte("... (truncated)")) {
		t.Error("large bodies should be truncated")
	}
	if len(big) > maxErrorBodySize+32 {
		t.Errorf("truncated body length = %d", len(big))
	}
}
