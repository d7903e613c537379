// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"time"
)

const (
	defaultMaxAttempts = 5
	defaultBaseDelay   = 500 * time.Millisecond
)

// Policy describes how a remote call is retried: the attempt ceiling, the
// base duration for exponential backoff, and the predicate that decides
// whether a response status warrants another attempt. The zero value gets
// sensible defaults from Do.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the first backoff duration; it doubles each attempt.
	// Tests set this to a microsecond to avoid real sleeps.
	BaseDelay time.Duration

	// RetryStatus reports whether an HTTP status is transient. When nil,
	// 429 and all 5xx statuses are retried.
	RetryStatus func(code int) bool
}

// RetryableStatus is the default transient-status predicate: HTTP 429 and
// every 5xx status.
func RetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// RetryableErr reports whether a transport error is worth retrying.
// Timeouts are; a cancelled or expired context is not.
func RetryableErr(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Do executes req through client, retrying transient failures with
// exponential backoff per the policy. Non-transient responses (4xx other
// than 429) are returned as-is on the first attempt; the caller decides
// what they mean. On each retried response the body is drained and closed
// before sleeping. If the context is cancelled during a backoff wait the
// context error is returned. After exhausting attempts the last response
// or transport error is returned so the caller can inspect it.
func Do(ctx context.Context, client *http.Client, req *http.Request, p Policy) (*http.Response, error) {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	retryStatus := p.RetryStatus
	if retryStatus == nil {
		retryStatus = RetryableStatus
	}

	var resp *http.Response
	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * p.BaseDelay
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err = client.Do(req.Clone(ctx))
		if err != nil {
			if RetryableErr(err) {
				continue
			}
			return nil, err
		}

		if !retryStatus(resp.StatusCode) {
			return resp, nil
		}

		// Transient status. Drain and close before the next attempt;
		// keep the last response around for the caller.
		if attempt < p.MaxAttempts-1 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}
	return resp, err
}
