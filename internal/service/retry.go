package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultRetryInterval = 200 * time.Millisecond
	maxRetryInterval     = 2 * time.Second
	maxErrorBodyBytes    = 64 << 10
)

// StatusError is a non-200 answer from an upstream predictor. Message carries the
// upstream's own description when it sent one.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Retryable reports whether the upstream may succeed on a later attempt.
func (e *StatusError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// withRetry runs op until it succeeds, returns a backoff.Permanent error, ctx is done
// or retries extra attempts have been spent. The last error is returned unwrapped.
func withRetry(ctx context.Context, retries int, interval time.Duration, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = interval
	b.MaxInterval = maxRetryInterval
	b.MaxElapsedTime = 0

	var policy backoff.BackOff = b
	if retries >= 0 {
		policy = backoff.WithMaxRetries(b, uint64(retries))
	}

	return backoff.Retry(op, backoff.WithContext(policy, ctx))
}

// upstreamError reads an error body and turns it into a StatusError, permanent
// unless the status is worth retrying.
func upstreamError(resp *http.Response, source string) error {
	statusErr := &StatusError{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	var body map[string]interface{}
	if json.Unmarshal(data, &body) == nil {
		for _, key := range []string{"error", "detail", "message"} {
			if msg, ok := body[key].(string); ok && msg != "" {
				statusErr.Message = msg
				break
			}
		}
	}
	if statusErr.Message == "" {
		statusErr.Message = fmt.Sprintf("%s returned status %d", source, resp.StatusCode)
	}

	if statusErr.Retryable() {
		return statusErr
	}
	return backoff.Permanent(statusErr)
}

func newHTTPClient(timeoutSeconds int) *http.Client {
	return &http.Client{
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}
}
