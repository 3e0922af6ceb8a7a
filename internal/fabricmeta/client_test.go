package fabricmeta

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestClient builds a client against the test server with retries sped up.
func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()

	c := NewClient(srv.URL, time.Second)
	c.retryDelay = time.Millisecond

	return c
}

// TestLatestLoader_PrefersStable verifies the first stable record wins over newer unstable ones.
func TestLatestLoader_PrefersStable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, loaderEndpoint, r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"version": "0.19.0-beta.2", "stable": false},
			{"version": "0.18.4", "stable": true},
			{"version": "0.18.3", "stable": true}
		]`))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv).LatestLoader(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0.18.4", got)
}

// TestLatestLoader_FirstWhenNothingStable falls back to the first record.
func TestLatestLoader_FirstWhenNothingStable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"version": "0.19.0-beta.2", "stable": false},
			{"version": "0.19.0-beta.1", "stable": false}
		]`))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv).LatestLoader(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0.19.0-beta.2", got)
}

// TestLatestLoader_EmptyList is an error, not a silent empty version.
func TestLatestLoader_EmptyList(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).LatestLoader(context.Background())
	require.ErrorIs(t, err, errNoVersions)
}

// TestLatestLoader_RetriesThenSucceeds verifies transient server errors are retried.
func TestLatestLoader_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		_, _ = w.Write([]byte(`[{"version": "0.18.4", "stable": true}]`))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv).LatestLoader(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0.18.4", got)
	require.Equal(t, 3, calls)
}

// TestLatestLoader_ExhaustsRetries surfaces the last error after all attempts fail.
func TestLatestLoader_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).LatestLoader(context.Background())
	require.ErrorIs(t, err, errBadHTTPStatus)
	require.Equal(t, retryMaxAttempts, calls)
}
