package netutil

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryTransportRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var retries int
	client := &http.Client{Transport: &RetryTransport{
		InitialBackoff: time.Millisecond,
		OnRetry: func(attempt int, wait time.Duration, statusCode int) {
			retries++
			assert.Equal(t, http.StatusServiceUnavailable, statusCode)
		},
	}}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, retries)
}

func TestRetryTransportDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := &http.Client{Transport: &RetryTransport{InitialBackoff: time.Millisecond}}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryTransportGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := &http.Client{Transport: &RetryTransport{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
	}}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestBackoffHonorsRetryAfterSeconds(t *testing.T) {
	tr := &RetryTransport{}
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"2"}}}

	wait := tr.backoff(0, time.Second, 30*time.Second, resp)
	assert.Equal(t, 2*time.Second, wait)
}

func TestBackoffIsExponentialAndCapped(t *testing.T) {
	tr := &RetryTransport{}

	assert.Equal(t, time.Second, tr.backoff(0, time.Second, 30*time.Second, nil))
	assert.Equal(t, 4*time.Second, tr.backoff(2, time.Second, 30*time.Second, nil))
	assert.Equal(t, 30*time.Second, tr.backoff(10, time.Second, 30*time.Second, nil))
}

func TestRetryableStatus(t *testing.T) {
	assert.True(t, retryableStatus(http.StatusTooManyRequests))
	assert.True(t, retryableStatus(http.StatusGatewayTimeout))
	assert.False(t, retryableStatus(http.StatusOK))
	assert.False(t, retryableStatus(http.StatusBadRequest))
}
