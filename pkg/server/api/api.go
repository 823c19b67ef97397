package api

import (
	"sync/atomic"

	"github.com/sitevitals/sitevitals/pkg/server/jobs"
	"github.com/sitevitals/sitevitals/pkg/storage"
)

// Deps holds dependencies for API handlers.
// This pattern enables dependency injection and easier testing.
type Deps struct {
	// Storage backend for scan history
	Storage storage.Backend

	// Jobs accepts background scan submissions
	Jobs JobSubmitter

	// Ready flag for the readiness check
	Ready *atomic.Bool
}

// JobSubmitter is the subset of the jobs manager the API needs.
// Defined here to ease mocking in handler tests.
type JobSubmitter interface {
	Submit(job jobs.Job) error
}
