package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxResponseBytes caps how much of an analyzer response is read.
// Analyzer payloads are small JSON documents; anything past this is
// treated as a malformed response.
const maxResponseBytes = 1 << 20

// defaultTimeout applies when an endpoint has no timeout configured.
const defaultTimeout = 10 * time.Second

// Client issues one analyzer call and reports the settled outcome.
// Implementations must not return errors through a second channel; every
// failure mode is folded into the Outcome.
type Client interface {
	Analyze(ctx context.Context, req Request) Outcome
}

// Endpoint configures how one analyzer kind is reached.
type Endpoint struct {
	// URL is the analyzer's scan endpoint (POST).
	URL string

	// Timeout bounds the whole call for this kind, independent of the
	// other kinds. Zero means defaultTimeout.
	Timeout time.Duration

	// Options are merged into every request body for this kind
	// (lightweight-mode flags and similar).
	Options map[string]any
}

// HTTPClient is the production Client: JSON POST per analyzer with an
// independent per-kind timeout. It fails closed: transport errors, non-2xx
// statuses, oversized bodies and malformed JSON all become Fail outcomes.
type HTTPClient struct {
	httpClient *http.Client
	endpoints  map[Kind]Endpoint
	logger     zerolog.Logger
}

// NewHTTPClient builds an HTTPClient for the given endpoints.
// Kinds without an endpoint entry fail immediately when analyzed.
func NewHTTPClient(endpoints map[Kind]Endpoint) *HTTPClient {
	return &HTTPClient{
		// Per-call deadlines come from context.WithTimeout; the
		// transport itself carries no global timeout.
		httpClient: &http.Client{},
		endpoints:  endpoints,
		logger:     log.With().Str("component", "analyzer").Logger(),
	}
}

// WithHTTPClient overrides the underlying http.Client (useful for tests).
func (c *HTTPClient) WithHTTPClient(hc *http.Client) *HTTPClient {
	c.httpClient = hc
	return c
}

// Analyze performs one analyzer call and always returns a settled Outcome.
func (c *HTTPClient) Analyze(ctx context.Context, req Request) Outcome {
	ep, ok := c.endpoints[req.Kind]
	if !ok || ep.URL == "" {
		return Fail(req.Kind, fmt.Sprintf("no endpoint configured for analyzer %q", req.Kind))
	}

	timeout := ep.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body := map[string]any{
		"url":           req.TargetURL,
		"scanStartedAt": req.StartedAt.UTC().Format(time.RFC3339),
	}
	for key, value := range ep.Options {
		body[key] = value
	}
	for key, value := range req.Options {
		body[key] = value
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Fail(req.Kind, fmt.Sprintf("encode request: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, ep.URL, bytes.NewReader(payload))
	if err != nil {
		return Fail(req.Kind, fmt.Sprintf("build request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().
			Str("kind", req.Kind.String()).
			Dur("elapsed", time.Since(started)).
			Err(err).
			Msg("Analyzer call failed")
		return Fail(req.Kind, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused, then fail
		// closed just like a transport error.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return Fail(req.Kind, fmt.Sprintf("analyzer returned status %d", resp.StatusCode))
	}

	raw := map[string]any{}
	decoder := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes))
	if err := decoder.Decode(&raw); err != nil {
		return Fail(req.Kind, fmt.Sprintf("decode response: %v", err))
	}

	c.logger.Debug().
		Str("kind", req.Kind.String()).
		Dur("elapsed", time.Since(started)).
		Msg("Analyzer call completed")

	return Succeed(req.Kind, raw)
}
