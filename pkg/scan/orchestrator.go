// Package scan coordinates one website health scan: it fans out to the
// five analyzer services concurrently, waits for every call to settle, and
// folds the outcomes into a Report through the normalize and health
// packages.
package scan

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sitevitals/sitevitals/pkg/analyzer"
)

// Orchestrator fires all analyzer calls for one scan concurrently and
// collects the settled outcomes.
type Orchestrator struct {
	client analyzer.Client
	logger zerolog.Logger

	// onSettle, when set, is invoked once per analyzer as its call
	// settles. Called from the calling goroutine's siblings; the hook
	// must be safe for concurrent use.
	onSettle func(analyzer.Kind, analyzer.Outcome)
}

// NewOrchestrator builds an orchestrator over the given analyzer client.
func NewOrchestrator(client analyzer.Client) *Orchestrator {
	return &Orchestrator{
		client: client,
		logger: log.With().Str("component", "scan").Logger(),
	}
}

// WithSettleHook attaches a per-analyzer settle notification.
func (o *Orchestrator) WithSettleHook(hook func(analyzer.Kind, analyzer.Outcome)) *Orchestrator {
	o.onSettle = hook
	return o
}

// Collect issues one request per analyzer kind concurrently and waits for
// all of them to settle.
//
// The join never short-circuits: a failed or timed-out analyzer yields a
// failure outcome for its own slot without aborting the others, so every
// goroutine returns nil to the errgroup. Each call carries its own timeout
// inside the client; the only shared cancellation is the caller's ctx,
// which aborts in-flight requests if the scan is abandoned.
//
// Every request carries the same startedAt timestamp so partial results
// from one logical scan stay correlatable.
func (o *Orchestrator) Collect(ctx context.Context, target string, startedAt time.Time) map[analyzer.Kind]analyzer.Outcome {
	kinds := analyzer.AllKinds()

	// Pre-allocated slots keep results ordered without a shared map.
	slots := make([]analyzer.Outcome, len(kinds))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			outcome := o.analyzeOne(ctx, analyzer.Request{
				TargetURL: target,
				Kind:      kind,
				StartedAt: startedAt,
			})

			mu.Lock()
			slots[i] = outcome
			mu.Unlock()

			if o.onSettle != nil {
				o.onSettle(kind, outcome)
			}
			// Failures live in the outcome; returning nil keeps the
			// join waiting for every sibling.
			return nil
		})
	}
	_ = g.Wait()

	outcomes := make(map[analyzer.Kind]analyzer.Outcome, len(kinds))
	for i, kind := range kinds {
		outcomes[kind] = slots[i]
	}
	return outcomes
}

func (o *Orchestrator) analyzeOne(ctx context.Context, req analyzer.Request) analyzer.Outcome {
	select {
	case <-ctx.Done():
		return analyzer.Fail(req.Kind, ctx.Err().Error())
	default:
	}

	started := time.Now()
	outcome := o.client.Analyze(ctx, req)

	event := o.logger.Debug()
	if outcome.Failed() {
		event = o.logger.Warn().Str("reason", outcome.Err)
	}
	event.
		Str("kind", req.Kind.String()).
		Dur("elapsed", time.Since(started)).
		Bool("failed", outcome.Failed()).
		Msg("Analyzer settled")

	return outcome
}
