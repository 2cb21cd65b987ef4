package relay

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDoRejectsMissingEndpoint(t *testing.T) {
	c := NewClient(testLogger())
	_, err := c.Do(context.Background(), Request{URL: "  "})
	require.Error(t, err)
	require.Equal(t, KindConfiguration, KindOf(err))
}

func TestDoForwardsJSONBodyOnce(t *testing.T) {
	var calls atomic.Int32
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(testLogger())
	result, err := c.Do(context.Background(), Request{
		URL:      srv.URL,
		JSONBody: map[string]string{"name": "Ada"},
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)
	require.True(t, result.Succeeded)
	require.Equal(t, http.StatusOK, result.StatusCode)
	require.True(t, result.Payload.Structured)
	require.Equal(t, "Ada", received["name"])
	require.Equal(t, int32(1), calls.Load())
}

func TestDoClassifiesNon2xxAsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c := NewClient(testLogger())
	result, err := c.Do(context.Background(), Request{URL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	require.False(t, result.Succeeded)
	require.Equal(t, http.StatusBadGateway, result.StatusCode)
	require.False(t, result.Payload.Structured)
}

func TestDoTimesOutAndAbortsCall(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(testLogger())
	start := time.Now()
	_, err := c.Do(context.Background(), Request{URL: srv.URL, Timeout: 50 * time.Millisecond})
	elapsed := time.Since(start)
	require.Error(t, err)
	require.Equal(t, KindTimeout, KindOf(err))
	require.Less(t, elapsed, 2*time.Second)
}

func TestDoClassifiesConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(testLogger())
	_, err := c.Do(context.Background(), Request{URL: srv.URL, Timeout: time.Second})
	require.Error(t, err)
	require.Equal(t, KindTransport, KindOf(err))
}

func TestDoDefaultsToPost(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(testLogger())
	_, err := c.Do(context.Background(), Request{URL: srv.URL})
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, method)
}

func TestKindOfUnclassifiedError(t *testing.T) {
	require.Equal(t, KindTransport, KindOf(io.ErrUnexpectedEOF))
}
