package scan

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sitevitals/sitevitals/pkg/analyzer"
)

// Sentinel errors for parameter validation.
var (
	// ErrNoTarget is returned when no target URL was supplied.
	ErrNoTarget = errors.New("no target URL specified")

	// ErrInvalidTarget is returned when the target is not an absolute
	// http or https URL.
	ErrInvalidTarget = errors.New("target must be an absolute http(s) URL")
)

// Params defines the input required to initiate a scan run.
type Params struct {
	// TargetURL is the site to audit.
	TargetURL string

	// TopN bounds the ranked issue list; zero means DefaultTopIssues.
	TopN int

	// ScanID pins the scan identifier. Empty means a fresh UUID; the
	// HTTP API pre-creates the history record and pins the ID so it can
	// answer 202 before the scan runs.
	ScanID string
}

// Validate checks the parameters, returning a sentinel-wrapped error on
// the first problem found.
func (p Params) Validate() error {
	if p.TargetURL == "" {
		return ErrNoTarget
	}
	parsed, err := url.Parse(p.TargetURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidTarget, p.TargetURL)
	}
	return nil
}

// Result is the outcome of one scan run.
type Result struct {
	// RunID is the scan identifier used in storage and the API.
	RunID string `json:"run_id"`

	// Report is the aggregated scan report. Always non-nil for a
	// completed run, even when every analyzer failed.
	Report *Report `json:"report"`

	// Failures maps each failed analyzer kind to its reason, so the
	// caller can distinguish "no data" from a genuine zero score.
	Failures map[analyzer.Kind]string `json:"failures,omitempty"`

	// Status is the terminal scan status ("completed").
	Status string `json:"status"`
}

// ProgressSink receives progress notifications while a scan runs.
type ProgressSink interface {
	OnEvent(ProgressEvent)
}

// ProgressEvent describes one analyzer settling during a scan.
type ProgressEvent struct {
	Kind      analyzer.Kind
	Status    string
	Message   string
	Timestamp time.Time
}
