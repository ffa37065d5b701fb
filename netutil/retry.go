// Package netutil provides HTTP hardening used when pulling provider
// artifacts: transparent retries and download size caps.
package netutil

import (
	"net/http"
	"strconv"
	"time"
)

// RetryTransport wraps an http.RoundTripper with retry logic.
// It implements exponential backoff and respects Retry-After headers.
type RetryTransport struct {
	// Base is the underlying transport.
	// Default: http.DefaultTransport if nil.
	Base http.RoundTripper

	// OnRetry is called before each retry attempt with the attempt number
	// (1-based), the wait duration, and the status code that triggered the
	// retry (0 for transport errors).
	OnRetry func(attempt int, wait time.Duration, statusCode int)

	// MaxRetries is the maximum number of retry attempts.
	// Default: 3 if zero.
	MaxRetries int

	// InitialBackoff is the first backoff duration.
	// Default: 1s if zero.
	InitialBackoff time.Duration

	// MaxBackoff caps the backoff duration.
	// Default: 30s if zero.
	MaxBackoff time.Duration
}

// RoundTrip implements http.RoundTripper with retry logic.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	maxRetries := t.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	initial := t.InitialBackoff
	if initial == 0 {
		initial = time.Second
	}
	maxBackoff := t.MaxBackoff
	if maxBackoff == 0 {
		maxBackoff = 30 * time.Second
	}

	var lastErr error
	var lastResp *http.Response

	for attempt := 0; attempt <= maxRetries; attempt++ {
		// The body must be re-readable on retry.
		reqClone := req.Clone(req.Context())
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			reqClone.Body = body
		}

		resp, err := base.RoundTrip(reqClone)
		if err != nil {
			lastErr = err
			if attempt < maxRetries {
				wait := t.backoff(attempt, initial, maxBackoff, nil)
				if t.OnRetry != nil {
					t.OnRetry(attempt+1, wait, 0)
				}
				time.Sleep(wait)
				continue
			}
			return nil, lastErr
		}

		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		lastResp = resp
		lastErr = nil

		if attempt < maxRetries {
			wait := t.backoff(attempt, initial, maxBackoff, resp)
			if t.OnRetry != nil {
				t.OnRetry(attempt+1, wait, resp.StatusCode)
			}
			_ = resp.Body.Close()
			time.Sleep(wait)
		}
	}

	if lastResp != nil {
		return lastResp, nil
	}
	return nil, lastErr
}

// backoff determines the wait before the next attempt, honoring Retry-After
// when the server sent one.
func (t *RetryTransport) backoff(attempt int, initial, maxBackoff time.Duration, resp *http.Response) time.Duration {
	if resp != nil {
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil {
				return min(time.Duration(seconds)*time.Second, maxBackoff)
			}
			if at, err := http.ParseTime(retryAfter); err == nil {
				wait := time.Until(at)
				if wait < 0 {
					return initial
				}
				return min(wait, maxBackoff)
			}
		}
	}

	// Exponential: initial * 2^attempt.
	return min(initial*(1<<attempt), maxBackoff)
}

func retryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
