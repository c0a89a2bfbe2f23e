package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
	"git.home.luguber.info/inful/linklocal/internal/retry"
)

func fastPolicy(retries int) retry.Policy {
	return retry.NewPolicy(retry.ModeFixed, time.Millisecond, time.Millisecond, retries)
}

func TestHTTPFetcher_SendsHeadersAndReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "linklocal-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("PNGDATA"))
	}))
	defer server.Close()

	f := NewHTTPFetcher(Options{
		Timeout:   5 * time.Second,
		UserAgent: "linklocal-test",
		Headers:   map[string]string{"Authorization": "Bearer t"},
		Retry:     fastPolicy(0),
	})
	resp, err := f.Get(context.Background(), server.URL+"/a.png")
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "image/png", resp.ContentType())
	assert.Equal(t, []byte("PNGDATA"), resp.Body)
}

func TestHTTPFetcher_NotFoundIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	resp, err := NewHTTPFetcher(Options{Retry: fastPolicy(3)}).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, resp.OK())
	assert.Contains(t, string(resp.Body), "nope")
}

func TestHTTPFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	resp, err := NewHTTPFetcher(Options{Retry: fastPolicy(2)}).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPFetcher_ReturnsLastResponseWhenRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	resp, err := NewHTTPFetcher(Options{Retry: fastPolicy(1)}).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPFetcher_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewHTTPFetcher(Options{Retry: fastPolicy(1)}).Get(context.Background(), url)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryNetwork))
}

func TestHTTPFetcher_InvalidURL(t *testing.T) {
	_, err := NewHTTPFetcher(Options{}).Get(context.Background(), "http://[::1")
	require.Error(t, err)
	assert.False(t, ferrors.IsRetryable(err))
}

func TestHTTPFetcher_RateLimitHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	f := NewHTTPFetcher(Options{RateLimit: 0.001, Burst: 1})
	_, err := f.Get(context.Background(), server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = f.Get(ctx, server.URL)
	require.Error(t, err)
}

func TestFetcherFunc(t *testing.T) {
	f := FetcherFunc(func(_ context.Context, url string) (*Response, error) {
		return &Response{StatusCode: 200, Body: []byte(url)}, nil
	})
	resp, err := f.Get(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, "u", string(resp.Body))
	assert.Equal(t, "", resp.ContentType())
}
