// Package analyzer defines the contract between the aggregation engine and
// the five external analyzer services.
//
// Each analyzer is an independent HTTP service accepting a JSON POST body
// and returning a JSON object whose score field location varies per kind.
// This package owns the request/outcome types and the HTTP client; it knows
// nothing about how payloads are scored (see pkg/normalize).
package analyzer

import "time"

// Request describes one analyzer invocation. It is created once per scan
// per analyzer kind and never mutated.
//
// StartedAt is the single shared scan timestamp: all five requests of one
// logical scan carry the same value so downstream consumers can correlate
// partial results.
type Request struct {
	TargetURL string
	Kind      Kind
	StartedAt time.Time

	// Options carries the kind-specific lightweight-mode flags
	// (e.g. skipping full Lighthouse audits). Keys are merged into the
	// JSON request body alongside url and scanStartedAt.
	Options map[string]any
}

// Outcome is the settled result of one analyzer call: either a raw payload
// or a failure reason, never both and never neither.
//
// A failed or timed-out analyzer is recorded here rather than raised to the
// caller; one analyzer's failure must not abort the scan.
type Outcome struct {
	Kind Kind           `json:"kind"`
	Raw  map[string]any `json:"raw,omitempty"`
	Err  string         `json:"error,omitempty"`
}

// Succeed builds a success outcome carrying the decoded payload.
func Succeed(kind Kind, raw map[string]any) Outcome {
	if raw == nil {
		raw = map[string]any{}
	}
	return Outcome{Kind: kind, Raw: raw}
}

// Fail builds a failure outcome. Network errors, non-2xx responses,
// timeouts and malformed JSON all funnel through here identically.
func Fail(kind Kind, reason string) Outcome {
	if reason == "" {
		reason = "analyzer unavailable"
	}
	return Outcome{Kind: kind, Err: reason}
}

// Failed reports whether the outcome is the failure arm of the union.
func (o Outcome) Failed() bool {
	return o.Err != ""
}
