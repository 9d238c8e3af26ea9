// Gamescore - Game Review Aggregation and Caching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamescore

package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/gamescore/internal/config"
	"github.com/tomtom215/gamescore/internal/logging"
	"github.com/tomtom215/gamescore/internal/metrics"
)

// Provider names used in metrics, logs and breaker names.
const (
	ProviderReviews    = "reviews"
	ProviderStorefront = "storefront"
	ProviderGrids      = "grids"
)

// maxErrorBodySize limits the maximum amount of response body read for error reporting
const maxErrorBodySize = 64 * 1024 // 64KB

// defaultMaxRetries is the number of retries after HTTP 429 before giving up.
const defaultMaxRetries = 5

// readBodyForError reads the response body for error reporting (max 64KB)
// Returns the body content or a placeholder message if reading fails
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// DailyQuota returns a limiter that allows perDay requests per rolling day,
// all of which may be spent at once. perDay <= 0 returns nil, which
// disables the check.
func DailyQuota(perDay int) *rate.Limiter {
	if perDay <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(24*time.Hour/time.Duration(perDay)), perDay)
}

// client is the HTTP core shared by the provider clients: per-provider
// circuit breaker, optional per-endpoint quota, 429 backoff and JSON decoding.
type client struct {
	provider string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[[]byte]
	header   http.Header
	log      zerolog.Logger

	maxRetries     int
	retryBaseDelay time.Duration
}

func newClient(provider string, timeout time.Duration, bcfg config.BreakerConfig, header http.Header) *client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if header == nil {
		header = http.Header{}
	}
	c := &client{
		provider:       provider,
		http:           &http.Client{Timeout: timeout},
		header:         header,
		log:            logging.WithComponent("upstream").With().Str("provider", provider).Logger(),
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: time.Second,
	}
	c.breaker = newBreaker(provider+"-api", bcfg, c.log)
	return c
}

func newBreaker(name string, bcfg config.BreakerConfig, log zerolog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	// Initialize circuit breaker state metrics
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: bcfg.MaxRequests,
		Interval:    bcfg.Interval,
		Timeout:     bcfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bcfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= bcfg.FailureRatio
			if shouldTrip {
				log.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			return !countsAsFailure(err)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			log.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// BreakerState returns the breaker state as closed, half-open or open.
func (c *client) BreakerState() string {
	return stateToString(c.breaker.State())
}

// get performs a GET through the breaker and the quota limiter and returns
// the body of a 2xx response. The quota is only spent when the breaker
// lets the call through.
func (c *client) get(ctx context.Context, endpoint, reqURL string, quota *rate.Limiter) ([]byte, error) {
	start := time.Now()
	name := c.breaker.Name()

	body, err := c.breaker.Execute(func() ([]byte, error) {
		if quota != nil && !quota.Allow() {
			metrics.RecordQuotaRejection(c.provider, endpoint)
			return nil, fmt.Errorf("%s %s: local daily quota spent: %w", c.provider, endpoint, ErrQuotaExhausted)
		}
		return c.doRequestWithRateLimit(ctx, endpoint, reqURL)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(name, "rejected").Inc()
		c.log.Warn().Err(err).Str("endpoint", endpoint).Msg("[CIRCUIT BREAKER] Request rejected")
		err = fmt.Errorf("%s %s: %w: %w", c.provider, endpoint, ErrTransient, err)
	case countsAsFailure(err):
		metrics.CircuitBreakerRequests.WithLabelValues(name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(float64(c.breaker.Counts().ConsecutiveFailures))
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(name, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
	}

	outcome := Outcome(err)
	metrics.RecordUpstreamRequest(c.provider, endpoint, outcome, time.Since(start))

	switch outcome {
	case "ok", "not_found":
		c.log.Debug().Str("endpoint", endpoint).Str("outcome", outcome).Dur("duration", time.Since(start)).Msg("Upstream request")
	case "canceled":
	default:
		c.log.Warn().Str("endpoint", endpoint).Str("outcome", outcome).Str("error", logging.SanitizeURL(err.Error())).Msg("Upstream request failed")
	}

	return body, err
}

// doRequestWithRateLimit executes the request, retrying HTTP 429 with
// exponential backoff (base, 2*base, 4*base, ...) or the Retry-After delay.
func (c *client) doRequestWithRateLimit(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("%s %s: failed to create request: %w", c.provider, endpoint, err)
		}
		for k, v := range c.header {
			req.Header[k] = v
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%s %s: HTTP request failed: %w: %w", c.provider, endpoint, ErrTransient, err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return c.readResponse(resp, endpoint)
		}

		// Rate limited (HTTP 429) - close body and retry with backoff
		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			return nil, fmt.Errorf("%s %s: rate limit exceeded after %d retries (HTTP 429): %w", c.provider, endpoint, c.maxRetries, ErrQuotaExhausted)
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}
		metrics.RecordUpstreamRetry(c.provider)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *client) readResponse(resp *http.Response, endpoint string) ([]byte, error) {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Provider:   c.provider,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(readBodyForError(resp.Body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w: %w", c.provider, endpoint, ErrTransient, err)
	}
	return body, nil
}

// getJSON performs get and decodes the body into T.
func getJSON[T any](ctx context.Context, c *client, endpoint, reqURL string, quota *rate.Limiter) (T, error) {
	var out T
	body, err := c.get(ctx, endpoint, reqURL, quota)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("%s %s: decode: %w: %w", c.provider, endpoint, ErrMalformed, err)
	}
	return out, nil
}
