// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eutils is a client for the NCBI E-utilities API and the PMC
// article pages it points at. It owns the remote-call discipline for the
// whole pipeline: one shared minimum-interval throttle across every
// outbound call, bounded retry with exponential backoff on transient
// failures, and immediate surfacing of permanent ones.
package eutils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/figure-harvest/internal/httputil"
	"github.com/pdiddy/figure-harvest/pkg/types"
)

// Endpoint base URLs. Declared as vars so tests can substitute httptest
// servers.
var (
	esearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	efetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
	articleBase = "https://www.ncbi.nlm.nih.gov/pmc/articles/"
)

// retryBaseDelay seeds the exponential backoff between retry attempts.
// Tests override this to avoid real sleeps.
var retryBaseDelay = 500 * time.Millisecond

const (
	defaultDatabase     = "pmc"
	defaultCallInterval = 334 * time.Millisecond
	defaultPageSize     = 100
	defaultTimeout      = 30 * time.Second
	defaultUserAgent    = "figure-harvest/0.1"
	toolName            = "figure-harvest"

	// maxBodySize caps how much of a response body is read. PMC article
	// XML runs to a few MB; anything past this is not an article.
	maxBodySize = 64 << 20
)

// Throttle gates outbound calls to a minimum interval. *rate.Limiter
// satisfies it; tests substitute a zero-delay implementation.
type Throttle interface {
	Wait(ctx context.Context) error
}

// NewThrottle returns the production throttle: one call per interval,
// no burst, shared by every endpoint the client talks to.
func NewThrottle(interval time.Duration) Throttle {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Client talks to the E-utilities search/fetch endpoints and PMC article
// pages. All calls go through the same throttle and retry policy.
type Client struct {
	httpClient *http.Client
	throttle   Throttle
	retry      httputil.Policy
	cfg        types.EutilsConfig
}

// NewClient builds a Client from cfg. The throttle is the single gate
// every outbound call contends for; passing nil builds one from
// cfg.CallInterval.
func NewClient(cfg types.EutilsConfig, throttle Throttle) *Client {
	if cfg.Database == "" {
		cfg.Database = defaultDatabase
	}
	if cfg.CallInterval <= 0 {
		cfg.CallInterval = defaultCallInterval
	}
	if throttle == nil {
		throttle = NewThrottle(cfg.CallInterval)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		throttle:   throttle,
		retry:      httputil.Policy{MaxAttempts: cfg.MaxRetries, BaseDelay: retryBaseDelay},
		cfg:        cfg,
	}
}

// get performs one throttled, retried GET and returns the body. A
// transient failure that survives the retry ceiling comes back wrapped in
// TransientError; a permanent one (4xx other than 429) as a bare
// StatusError.
func (c *Client) get(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	if err := c.throttle.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.Do(ctx, c.httpClient, req, c.retry)
	if err != nil {
		if httputil.RetryableErr(err) {
			return nil, &TransientError{Cause: fmt.Errorf("%s: %w", endpoint, err)}
		}
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
		if httputil.RetryableStatus(resp.StatusCode) {
			return nil, &TransientError{Cause: statusErr}
		}
		return nil, statusErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransientError{Cause: fmt.Errorf("reading %s response: %w", endpoint, err)}
	}
	return body, nil
}
