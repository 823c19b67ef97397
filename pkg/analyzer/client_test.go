package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(url string, timeout time.Duration, options map[string]any) *HTTPClient {
	return NewHTTPClient(map[Kind]Endpoint{
		KindSEO: {URL: url, Timeout: timeout, Options: options},
	})
}

func TestHTTPClient_RequestBody(t *testing.T) {
	startedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"score": 82}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second, map[string]any{"lightweight": true})
	outcome := client.Analyze(context.Background(), Request{
		TargetURL: "https://example.com",
		Kind:      KindSEO,
		StartedAt: startedAt,
	})

	require.False(t, outcome.Failed())
	require.Equal(t, "https://example.com", body["url"])
	require.Equal(t, "2025-06-01T12:00:00Z", body["scanStartedAt"])
	require.Equal(t, true, body["lightweight"], "endpoint options merged into the body")
}

func TestHTTPClient_PerRequestOptionsOverrideEndpointOptions(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second, map[string]any{"lightweight": true})
	_ = client.Analyze(context.Background(), Request{
		TargetURL: "https://example.com",
		Kind:      KindSEO,
		Options:   map[string]any{"lightweight": false},
	})

	require.Equal(t, false, body["lightweight"])
}

func TestHTTPClient_SuccessDecodesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"score": 82, "success": true}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second, nil)
	outcome := client.Analyze(context.Background(), Request{TargetURL: "https://example.com", Kind: KindSEO})

	require.False(t, outcome.Failed())
	require.Equal(t, 82.0, outcome.Raw["score"])
}

func TestHTTPClient_FailsClosedOnNon2xx(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusBadGateway} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"score": 82}`))
		}))

		client := newTestClient(server.URL, time.Second, nil)
		outcome := client.Analyze(context.Background(), Request{TargetURL: "https://example.com", Kind: KindSEO})
		server.Close()

		require.True(t, outcome.Failed(), "status %d", status)
		require.Contains(t, outcome.Err, "status")
		require.Nil(t, outcome.Raw)
	}
}

func TestHTTPClient_FailsClosedOnMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>definitely not json`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second, nil)
	outcome := client.Analyze(context.Background(), Request{TargetURL: "https://example.com", Kind: KindSEO})

	require.True(t, outcome.Failed())
	require.Contains(t, outcome.Err, "decode")
}

func TestHTTPClient_FailsClosedOnTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient(server.URL, 50*time.Millisecond, nil)

	start := time.Now()
	outcome := client.Analyze(context.Background(), Request{TargetURL: "https://example.com", Kind: KindSEO})

	require.True(t, outcome.Failed())
	require.Less(t, time.Since(start), 2*time.Second, "timeout must bound the call")
}

func TestHTTPClient_FailsClosedOnTransportError(t *testing.T) {
	// Nothing listens here.
	client := newTestClient("http://127.0.0.1:1", time.Second, nil)
	outcome := client.Analyze(context.Background(), Request{TargetURL: "https://example.com", Kind: KindSEO})

	require.True(t, outcome.Failed())
}

func TestHTTPClient_UnconfiguredKindFails(t *testing.T) {
	client := NewHTTPClient(nil)
	outcome := client.Analyze(context.Background(), Request{TargetURL: "https://example.com", Kind: KindFonts})

	require.True(t, outcome.Failed())
	require.Contains(t, outcome.Err, "no endpoint configured")
}

func TestHTTPClient_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	client := newTestClient(server.URL, 10*time.Second, nil)
	outcome := client.Analyze(ctx, Request{TargetURL: "https://example.com", Kind: KindSEO})

	require.True(t, outcome.Failed())
}

func TestOutcome_Union(t *testing.T) {
	success := Succeed(KindSEO, map[string]any{"score": 1.0})
	require.False(t, success.Failed())
	require.NotNil(t, success.Raw)

	failure := Fail(KindSEO, "boom")
	require.True(t, failure.Failed())
	require.Nil(t, failure.Raw)

	defaulted := Fail(KindSEO, "")
	require.Equal(t, "analyzer unavailable", defaulted.Err)
}
