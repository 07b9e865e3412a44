package httpx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"canceled", fmt.Errorf("wrap: %w", context.Canceled), false},
		{"reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, true},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("no route")}, true},
		{"url timeout", &url.Error{Op: "Get", URL: "http://x", Err: timeoutErr{}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ShouldRetry(tc.err))
		})
	}
}

type flakyTransport struct {
	calls atomic.Int32
	fails int32
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	n := f.calls.Add(1)
	if n <= f.fails {
		return nil, &net.OpError{Op: "dial", Err: errors.New("refused")}
	}
	return http.DefaultTransport.RoundTrip(req)
}

func TestRetryTransportRecovers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	base := &flakyTransport{fails: 2}
	client := &http.Client{Transport: &retryTransport{base: base, maxRetries: 3, backoff: time.Millisecond}}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.EqualValues(t, 3, base.calls.Load())
}

func TestRetryTransportGivesUp(t *testing.T) {
	base := &flakyTransport{fails: 10}
	client := &http.Client{Transport: &retryTransport{base: base, maxRetries: 1, backoff: time.Millisecond}}

	_, err := client.Get("http://example.invalid")
	require.Error(t, err)
	require.EqualValues(t, 2, base.calls.Load())
}

func TestNewClientWithoutRetries(t *testing.T) {
	c := NewClient(Options{Timeout: time.Second})
	require.Equal(t, time.Second, c.Timeout)
	_, isRetry := c.Transport.(*retryTransport)
	require.False(t, isRetry)

	c = NewClient(TelegramOptions())
	_, isRetry = c.Transport.(*retryTransport)
	require.True(t, isRetry)
}
