package httpx

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getReq(url string) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func fastRetry(attempts int) RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func TestSnippet(t *testing.T) {
	testCases := []struct {
		input    string
		max      int
		expected string
	}{
		{"short text", 100, "short text"},
		{"", 100, ""},
		{"  trimmed  ", 100, "trimmed"},
		{"long text that should be truncated", 10, "long text ..."},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, snippet([]byte(tc.input), tc.max))
	}
}

func TestHTTPError(t *testing.T) {
	err := &HTTPError{Method: "GET", URL: "https://example.com", StatusCode: 404, Body: []byte("Not Found")}
	assert.Equal(t, "http error: GET https://example.com status=404 body=Not Found", err.Error())
}

func TestIsRetryableStatus(t *testing.T) {
	cfg := DefaultRetryConfig()
	for _, code := range []int{500, 502, 503, 429, 408} {
		assert.True(t, isRetryableStatus(code, cfg), "status %d", code)
	}
	for _, code := range []int{400, 401, 403, 404, 422} {
		assert.False(t, isRetryableStatus(code, cfg), "status %d", code)
	}

	cfg.Retry5xx = false
	assert.False(t, isRetryableStatus(500, cfg))
	assert.True(t, isRetryableStatus(429, cfg))
}

func TestIsRetryableNetErr(t *testing.T) {
	assert.False(t, isRetryableNetErr(context.Canceled))
	assert.True(t, isRetryableNetErr(context.DeadlineExceeded))
	assert.True(t, isRetryableNetErr(&timeoutError{}))
	assert.True(t, isRetryableNetErr(errors.New("connection reset by peer")))
	assert.True(t, isRetryableNetErr(errors.New("unexpected EOF")))
	assert.False(t, isRetryableNetErr(errors.New("some other error")))
}

func TestParseRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}

	resp.Header.Set("Retry-After", "30")
	assert.Equal(t, 30*time.Second, ParseRetryAfter(resp))

	resp.Header.Set("Retry-After", time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat))
	assert.Zero(t, ParseRetryAfter(resp))

	resp.Header.Set("Retry-After", "invalid")
	assert.Zero(t, ParseRetryAfter(resp))

	resp.Header.Del("Retry-After")
	assert.Zero(t, ParseRetryAfter(resp))
}

func TestRetryAttempts(t *testing.T) {
	assert.Equal(t, 1, RetryAttempts(0).MaxAttempts)
	assert.Equal(t, 1, RetryAttempts(1).MaxAttempts)
	assert.False(t, RetryAttempts(1).Retry5xx)

	cfg := RetryAttempts(3)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.True(t, cfg.Retry5xx)
	assert.Equal(t, DefaultRetryConfig().BaseDelay, cfg.BaseDelay)
}

func TestDoSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, body, err := Do(context.Background(), srv.Client(), getReq(srv.URL), NoRetry())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestDoNoRetryReturnsHTTPError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, _, err := Do(context.Background(), srv.Client(), getReq(srv.URL), NoRetry())
	var herr *HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusServiceUnavailable, herr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoRetriesRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	_, body, err := Do(context.Background(), srv.Client(), getReq(srv.URL), fastRetry(3))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoMaxAttemptsExceeded(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, _, err := Do(context.Background(), srv.Client(), getReq(srv.URL), fastRetry(2))
	var herr *HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, 500, herr.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDoBuildReqError(t *testing.T) {
	_, _, err := Do(context.Background(), http.DefaultClient, func(context.Context) (*http.Request, error) {
		return nil, errors.New("request build error")
	}, NoRetry())
	assert.ErrorContains(t, err, "request build error")
}

func TestDoDecodesBrotli(t *testing.T) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	_, _ = bw.Write([]byte(`{"records":[]}`))
	require.NoError(t, bw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	_, body, err := Do(context.Background(), srv.Client(), getReq(srv.URL), NoRetry())
	require.NoError(t, err)
	assert.JSONEq(t, `{"records":[]}`, string(body))
}

func TestDoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("bad") != "" {
			_, _ = w.Write([]byte(`{"name": invalid}`))
			return
		}
		_, _ = w.Write([]byte(`{"name":"test","value":123}`))
	}))
	defer srv.Close()

	var out struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}
	require.NoError(t, DoJSON(context.Background(), srv.Client(), getReq(srv.URL), &out, NoRetry()))
	assert.Equal(t, "test", out.Name)
	assert.Equal(t, 123, out.Value)

	require.NoError(t, DoJSON(context.Background(), srv.Client(), getReq(srv.URL), nil, NoRetry()))

	err := DoJSON(context.Background(), srv.Client(), getReq(srv.URL+"?bad=1"), &out, NoRetry())
	assert.ErrorContains(t, err, "json parse error")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestSleepBackoff(t *testing.T) {
	start := time.Now()
	require.NoError(t, sleepBackoff(context.Background(), 1, 5*time.Millisecond, 50*time.Millisecond, 0))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepBackoff(ctx, 1, time.Second, 2*time.Second, 0), context.Canceled)
}

type timeoutError struct{}

func (e *timeoutError) Error() string   { return "timeout error" }
func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }
