package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var defaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// StatusError is a non-retryable upstream reply. Reason carries the
// "reason" field Open-Meteo puts in its error bodies.
type StatusError struct {
	Code   int
	Reason string
}

func (e *StatusError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unexpected status code %d: %s", e.Code, e.Reason)
	}
	return fmt.Sprintf("unexpected status code %d", e.Code)
}

// retryAfterError is a retryable failure that may carry a server-requested delay.
type retryAfterError struct {
	err   error
	after time.Duration
}

func (e *retryAfterError) Error() string { return e.err.Error() }
func (e *retryAfterError) Unwrap() error { return e.err }

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// Client errors say nothing about upstream health.
		IsSuccessful: func(err error) bool {
			var se *StatusError
			return err == nil || errors.As(err, &se)
		},
	})
}

// resilientClient performs GETs with rate limiting, retries, exponential
// backoff and a per-endpoint circuit breaker.
type resilientClient struct {
	client  *http.Client
	backoff BackoffConfig
	// limiter throttles outbound requests; nil disables throttling.
	limiter *rate.Limiter
	log     logrus.FieldLogger
}

// fetch returns the body of a 2xx response to the request built by build.
func (rc *resilientClient) fetch(
	ctx context.Context,
	cb *gobreaker.CircuitBreaker,
	build func(ctx context.Context) (*http.Request, error),
) ([]byte, error) {
	if rc.client == nil {
		return nil, errNoHTTPClient
	}
	if rc.backoff.MaxRetries < 0 || rc.backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if rc.limiter != nil {
			if err := rc.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait canceled: %w", err)
			}
		}

		req, err := build(ctx)
		if err != nil {
			return nil, err
		}

		result, err := cb.Execute(func() (interface{}, error) {
			return rc.once(req)
		})
		if err == nil {
			return result.([]byte), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %v", errCircuitOpen, cb.Name(), err)
		}

		var se *StatusError
		if errors.As(err, &se) {
			return nil, err
		}

		if attempt >= rc.backoff.MaxRetries {
			return nil, err
		}

		delay := rc.delay(attempt, err)
		rc.log.WithError(err).WithFields(logrus.Fields{
			"circuit": cb.Name(),
			"attempt": attempt + 1,
			"delay":   delay.String(),
		}).Debug("upstream request failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (rc *resilientClient) once(req *http.Request) ([]byte, error) {
	resp, err := rc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &retryAfterError{err: errRateLimited, after: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Reason: upstreamReason(raw)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (rc *resilientClient) delay(attempt int, err error) time.Duration {
	d := rc.backoff.InitialInterval << attempt
	if d <= 0 || (rc.backoff.MaxInterval > 0 && d > rc.backoff.MaxInterval) {
		d = rc.backoff.MaxInterval
	}

	var ra *retryAfterError
	if errors.As(err, &ra) && ra.after > d {
		d = ra.after
		if rc.backoff.MaxInterval > 0 && d > rc.backoff.MaxInterval {
			d = rc.backoff.MaxInterval
		}
	}
	return d
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func upstreamReason(raw []byte) string {
	var payload struct {
		Reason string `json:"reason"`
	}
	if json.Unmarshal(raw, &payload) != nil {
		return ""
	}
	return payload.Reason
}
