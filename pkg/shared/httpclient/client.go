// YANFOE Core
// Copyright (c) 2026 The YANFOE Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of YANFOE Core.
//
// YANFOE Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// YANFOE Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with YANFOE Core.  If not, see <http://www.gnu.org/licenses/>.

// Package httpclient is the shared HTTP layer used by every scrape source:
// time-bounded requests, bounded retries for idempotent GETs, a per-host
// token bucket and a fixed user agent.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yanfoe/yanfoe-core/pkg/helpers/syncutil"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeoutSeconds is the default timeout for HTTP requests
	DefaultTimeoutSeconds = 30
	DefaultRetries        = 2
	DefaultUserAgent      = "YANFOE/1.0 (+https://github.com/yanfoe/yanfoe-core)"
	// DefaultMaxBodyBytes caps a single fetched document.
	DefaultMaxBodyBytes = 8 << 20
)

// ErrFetchFailed wraps every error returned by Fetch.
var ErrFetchFailed = errors.New("fetch failed")

// ErrBodyTooLarge is returned for bodies over MaxBodyBytes.
var ErrBodyTooLarge = errors.New("response body too large")

// Fetcher is the contract scrape sources depend on.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// StatusError is a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

func (*StatusError) Is(target error) bool {
	return target == ErrFetchFailed
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// DefaultTransport provides a configured transport with connection pooling and reasonable timeouts
var DefaultTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: 30 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
}

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	Transport         http.RoundTripper
	UserAgent         string
	Timeout           time.Duration
	Backoff           time.Duration
	MaxBodyBytes      int64
	RequestsPerSecond float64
	Retries           int
}

func DefaultOptions() Options {
	return Options{
		Timeout:      DefaultTimeoutSeconds * time.Second,
		Retries:      DefaultRetries,
		UserAgent:    DefaultUserAgent,
		Backoff:      500 * time.Millisecond,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Client implements Fetcher on top of net/http.
type Client struct {
	*http.Client
	limiters  *hostLimiters
	userAgent string
	backoff   time.Duration
	maxBody   int64
	retries   int
}

// NewClient creates a new HTTP client with the default options
func NewClient() *Client {
	return NewClientWithOptions(DefaultOptions())
}

// NewClientWithTimeout creates a new HTTP client with a custom timeout
func NewClientWithTimeout(timeout time.Duration) *Client {
	opts := DefaultOptions()
	opts.Timeout = timeout
	return NewClientWithOptions(opts)
}

func NewClientWithOptions(opts Options) *Client {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = def.MaxBodyBytes
	}
	if opts.Backoff < 0 {
		opts.Backoff = 0
	}
	if opts.Transport == nil {
		opts.Transport = DefaultTransport
	}

	return &Client{
		Client: &http.Client{
			Transport: opts.Transport,
			Timeout:   opts.Timeout,
		},
		limiters:  newHostLimiters(opts.RequestsPerSecond),
		userAgent: opts.UserAgent,
		backoff:   opts.Backoff,
		maxBody:   opts.MaxBodyBytes,
		retries:   opts.Retries,
	}
}

// Fetch GETs rawURL and returns the body of a 2xx response. Network errors,
// 429 and 5xx responses are retried up to the configured count; any other
// status fails at once with a *StatusError.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.backoff*time.Duration(attempt)); err != nil {
				break
			}
			log.Debug().Str("url", rawURL).Int("attempt", attempt+1).Msg("retrying fetch")
		}

		body, err := c.fetchOnce(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}

	return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, rawURL, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.do(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("error closing response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("error reading body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, &permanentError{err: fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, c.maxBody)}
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &permanentError{err: fmt.Errorf("invalid url: %w", err)}
	}

	if err := c.limiters.get(u.Host).Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, &permanentError{err: fmt.Errorf("error creating request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error getting url: %w", err)
	}
	if resp == nil {
		return nil, errors.New("received nil response")
	}
	return resp, nil
}

// permanentError marks failures a retry cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("backoff interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// hostLimiters hands out one token bucket per host.
type hostLimiters struct {
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	mu       syncutil.Mutex
	burst    int
}

func newHostLimiters(rps float64) *hostLimiters {
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = max(1, int(rps))
	}
	return &hostLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (h *hostLimiters) get(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(h.limit, h.burst)
		h.limiters[host] = l
	}
	return l
}

// DownloadFileArgs contains arguments for file download operations
type DownloadFileArgs struct {
	URL        string
	OutputPath string
	TempPath   string
}

// DownloadFile downloads a file from the given URL to the output path. It
// is used for artwork and is not retried.
func (c *Client) DownloadFile(ctx context.Context, args DownloadFileArgs) error {
	resp, err := c.do(ctx, args.URL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("error closing response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: args.URL, StatusCode: resp.StatusCode}
	}

	// Use temp path if provided, otherwise use output path directly
	outputPath := args.OutputPath
	if args.TempPath != "" {
		outputPath = args.TempPath
	}

	file, err := os.Create(outputPath) // #nosec G304 - outputPath is built by the caller
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	written, err := io.Copy(file, resp.Body)
	if err == nil && resp.ContentLength > 0 && written != resp.ContentLength {
		err = fmt.Errorf("download incomplete: expected %d bytes, got %d", resp.ContentLength, written)
	}
	if err != nil {
		if closeErr := file.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msgf("error closing file: %s", outputPath)
		}
		if removeErr := os.Remove(outputPath); removeErr != nil {
			log.Warn().Err(removeErr).Msgf("error removing partial download: %s", outputPath)
		}
		return fmt.Errorf("error downloading file: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("error closing file: %w", err)
	}

	if args.TempPath != "" && args.TempPath != args.OutputPath {
		if err := os.Rename(args.TempPath, args.OutputPath); err != nil {
			if removeErr := os.Remove(args.TempPath); removeErr != nil {
				log.Warn().Err(removeErr).Msgf("error removing temp file: %s", args.TempPath)
			}
			return fmt.Errorf("error renaming temp file: %w", err)
		}
	}

	return nil
}
