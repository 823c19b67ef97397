package scan

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sitevitals/sitevitals/pkg/analyzer"
	"github.com/sitevitals/sitevitals/pkg/storage"
)

// Service runs complete scans: validation, concurrent collection, report
// assembly and best-effort history persistence.
//
// A Service holds no per-scan state, so concurrent Run calls for different
// (or identical) targets are fully independent.
type Service struct {
	client       analyzer.Client
	storage      storage.Backend
	progressSink ProgressSink
	clock        func() time.Time
}

// NewService builds a Service over the given analyzer client.
func NewService(client analyzer.Client) *Service {
	return &Service{
		client: client,
		clock:  time.Now,
	}
}

// WithStorage attaches a history backend. The engine writes each completed
// scan to it once and never reads it back; reporting stays a pure function
// of the analyzer outcomes.
func (s *Service) WithStorage(backend storage.Backend) *Service {
	s.storage = backend
	return s
}

// WithProgressSink attaches a sink receiving one event per settled
// analyzer.
func (s *Service) WithProgressSink(sink ProgressSink) *Service {
	s.progressSink = sink
	return s
}

// WithClock overrides the time source (useful for tests).
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Run executes one scan end to end.
//
// The returned error covers parameter validation only. Once the fan-out
// starts, no analyzer failure is fatal: the worst case is a report whose
// every score is null and whose overall score is 0, which is still a
// well-formed, renderable result.
func (s *Service) Run(ctx context.Context, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	scanID := params.ScanID
	if scanID == "" {
		scanID = uuid.New().String()
	}
	startedAt := s.clock()

	logger := log.With().
		Str("component", "scan").
		Str("scan_id", scanID).
		Str("target", params.TargetURL).
		Logger()
	logger.Info().Msg("Starting scan")

	s.markRunning(ctx, scanID, params.TargetURL, startedAt)

	orchestrator := NewOrchestrator(s.client).WithSettleHook(s.emitSettle)
	outcomes := orchestrator.Collect(ctx, params.TargetURL, startedAt)

	duration := s.clock().Sub(startedAt)
	report := BuildReport(params.TargetURL, startedAt, duration, outcomes, params.TopN)

	failures := make(map[analyzer.Kind]string)
	for kind, outcome := range outcomes {
		if outcome.Failed() {
			failures[kind] = outcome.Err
		}
	}

	s.persistReport(ctx, scanID, report, duration)

	logger.Info().
		Int("overall_score", report.OverallScore).
		Int("issues", len(report.TopIssues)).
		Int("failed_analyzers", len(failures)).
		Msg("Scan completed")

	return &Result{
		RunID:    scanID,
		Report:   report,
		Failures: failures,
		Status:   storage.StatusCompleted.String(),
	}, nil
}

// markRunning creates (or promotes) the history record. Persistence is
// best effort: a storage failure downgrades to a warning, never aborts the
// scan.
func (s *Service) markRunning(ctx context.Context, scanID, target string, startedAt time.Time) {
	if s.storage == nil {
		return
	}

	record := &storage.ScanRecord{
		ID:        scanID,
		TargetURL: target,
		Status:    storage.StatusRunning,
		StartedAt: startedAt,
	}
	err := s.storage.Scans().Create(ctx, record)
	if err == nil {
		return
	}

	var existsErr *storage.AlreadyExistsError
	if errors.As(err, &existsErr) {
		// The API pre-creates pending records before submitting the
		// job; promote instead of recreating.
		status := storage.StatusRunning
		err = s.storage.Scans().Update(ctx, scanID, storage.ScanUpdates{Status: &status})
	}
	if err != nil {
		log.Warn().
			Str("component", "scan").
			Str("scan_id", scanID).
			Err(err).
			Msg("Failed to record scan start, continuing without persistence")
	}
}

func (s *Service) persistReport(ctx context.Context, scanID string, report *Report, duration time.Duration) {
	if s.storage == nil {
		return
	}

	payload, err := json.Marshal(report)
	if err == nil {
		err = s.storage.Scans().SaveReport(ctx, scanID, payload)
	}
	if err != nil {
		log.Warn().
			Str("component", "scan").
			Str("scan_id", scanID).
			Err(err).
			Msg("Failed to persist scan report")
	}

	status := storage.StatusCompleted
	completedAt := report.StartedAt.Add(duration)
	durationSec := int(duration.Seconds())
	overall := report.OverallScore
	issues := len(report.TopIssues)
	updates := storage.ScanUpdates{
		Status:       &status,
		CompletedAt:  &completedAt,
		Duration:     &durationSec,
		OverallScore: &overall,
		IssueCount:   &issues,
	}
	if err := s.storage.Scans().Update(ctx, scanID, updates); err != nil {
		log.Warn().
			Str("component", "scan").
			Str("scan_id", scanID).
			Err(err).
			Msg("Failed to update scan status in storage")
	}
}

func (s *Service) emitSettle(kind analyzer.Kind, outcome analyzer.Outcome) {
	if s.progressSink == nil {
		return
	}
	status := "completed"
	message := ""
	if outcome.Failed() {
		status = "failed"
		message = outcome.Err
	}
	s.progressSink.OnEvent(ProgressEvent{
		Kind:      kind,
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
	})
}
