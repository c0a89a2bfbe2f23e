// Package fetch is the HTTP GET capability used by the downloader.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
	"git.home.luguber.info/inful/linklocal/internal/logfields"
	"git.home.luguber.info/inful/linklocal/internal/retry"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// ContentType returns the Content-Type header, or "".
func (r *Response) ContentType() string {
	if r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}

// Fetcher performs GET requests. Non-2xx responses are returned, not errors;
// an error always means no response was obtained.
type Fetcher interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (*Response, error)

func (f FetcherFunc) Get(ctx context.Context, url string) (*Response, error) { return f(ctx, url) }

// Options configures HTTPFetcher.
type Options struct {
	// Timeout bounds each attempt. Zero leaves the transport default.
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
	// RateLimit is requests per second across all calls. Zero disables limiting.
	RateLimit float64
	Burst     int
	Retry     retry.Policy
}

// HTTPFetcher is a Fetcher backed by net/http.
type HTTPFetcher struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
}

// NewHTTPFetcher builds a fetcher. The transport honors HTTP_PROXY,
// HTTPS_PROXY and NO_PROXY.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	f := &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts: opts,
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return f
}

// Get fetches url, retrying transport errors, 429 and 5xx according to the
// retry policy. The last response is returned when retries run out.
func (f *HTTPFetcher) Get(ctx context.Context, url string) (*Response, error) {
	attempts := f.opts.Retry.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := f.opts.Retry.Wait(ctx, attempt-1); err != nil {
				return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "download cancelled").WithContext("url", url).Build()
			}
		}
		resp, err := f.once(ctx, url)
		if err != nil {
			lastErr = err
			if !ferrors.IsRetryable(err) || attempt == attempts {
				return nil, err
			}
			slog.Debug("Retrying download after transport error", logfields.URL(url), logfields.Attempt(attempt), logfields.Error(err))
			continue
		}
		if retryableStatus(resp.StatusCode) && attempt < attempts {
			slog.Debug("Retrying download after status", logfields.URL(url), logfields.Status(resp.StatusCode), logfields.Attempt(attempt))
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

func (f *HTTPFetcher) once(ctx context.Context, url string) (*Response, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "rate limiter wait").WithContext("url", url).Build()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to create request").WithContext("url", url).Build()
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}
	for k, v := range f.opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "request failed").
			WithContext("url", url).
			Retryable().
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, fmt.Sprintf("reading body after status %d", resp.StatusCode)).
			WithContext("url", url).
			Retryable().
			Build()
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
