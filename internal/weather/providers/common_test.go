package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastClient(srv *httptest.Server) *resilientClient {
	return &resilientClient{
		client:  srv.Client(),
		backoff: BackoffConfig{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond},
		log:     quietLogger(),
	}
}

func getter(url string) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	body, err := fastClient(srv).fetch(context.Background(), newCircuitBreaker("test"), getter(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := fastClient(srv).fetch(context.Background(), newCircuitBreaker("test"), getter(srv.URL))
	require.Error(t, err)
	assert.ErrorIs(t, err, errRateLimited)
	assert.Equal(t, int32(4), calls.Load())
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Latitude must be in range of -90 to 90°."}`))
	}))
	defer srv.Close()

	cb := newCircuitBreaker("test")
	_, err := fastClient(srv).fetch(context.Background(), cb, getter(srv.URL))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.Code)
	assert.Contains(t, se.Reason, "Latitude")
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestFetchCircuitOpens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	rc := fastClient(srv)
	rc.backoff.MaxRetries = 0
	cb := newCircuitBreaker("test")

	for i := 0; i < 6; i++ {
		_, err := rc.fetch(context.Background(), cb, getter(srv.URL))
		require.ErrorIs(t, err, errServerError)
	}

	_, err := rc.fetch(context.Background(), cb, getter(srv.URL))
	assert.ErrorIs(t, err, errCircuitOpen)
}

func TestFetchHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rc := fastClient(srv)
	rc.backoff = BackoffConfig{MaxRetries: 10, InitialInterval: time.Second, MaxInterval: time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := rc.fetch(ctx, newCircuitBreaker("test"), getter(srv.URL))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestFetchConfigErrors(t *testing.T) {
	rc := &resilientClient{backoff: defaultBackoff, log: quietLogger()}
	_, err := rc.fetch(context.Background(), newCircuitBreaker("test"), getter("http://example.invalid"))
	assert.ErrorIs(t, err, errNoHTTPClient)

	rc = &resilientClient{client: http.DefaultClient, log: quietLogger()}
	_, err = rc.fetch(context.Background(), newCircuitBreaker("test"), getter("http://example.invalid"))
	assert.ErrorIs(t, err, errInvalidConfig)
}

func TestRetryDelay(t *testing.T) {
	rc := &resilientClient{backoff: BackoffConfig{MaxRetries: 5, InitialInterval: 100 * time.Millisecond, MaxInterval: 3 * time.Second}}

	assert.Equal(t, 100*time.Millisecond, rc.delay(0, errServerError))
	assert.Equal(t, 400*time.Millisecond, rc.delay(2, errServerError))
	assert.Equal(t, 3*time.Second, rc.delay(8, errServerError))
	assert.Equal(t, 2*time.Second, rc.delay(0, &retryAfterError{err: errRateLimited, after: 2 * time.Second}))
	assert.Equal(t, 3*time.Second, rc.delay(0, &retryAfterError{err: errRateLimited, after: time.Minute}))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))
	assert.Equal(t, 7*time.Second, parseRetryAfter("7"))
}
