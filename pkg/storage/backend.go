// Package storage provides the scan-history persistence layer.
//
// The engine treats history as an external collaborator: each completed
// scan is written once and never read back by the engine itself, keeping
// report assembly a pure function of the analyzer outcomes. The CLI
// history commands and the HTTP API are the readers.
//
// LocalBackend stores one directory per scan (metadata.json plus
// report.json) under the workspace root, guarded by file locks for
// concurrent access.
package storage

import "context"

// Backend is the storage abstraction.
//
// Thread-safety: all methods must be safe for concurrent use.
type Backend interface {
	// Initialize prepares the backend for use, creating the workspace
	// directory layout if needed.
	Initialize(ctx context.Context) error

	// Close releases resources held by the backend.
	Close() error

	// Scans returns the scan history store.
	Scans() ScanStore

	// Prune removes scans that violate the retention policy: scans
	// older than MaxAgeDays, and the oldest scans past MaxScans.
	// Individual deletion errors are collected in the result; Prune
	// keeps going past them.
	Prune(ctx context.Context, opts PruneOptions) (*PruneResult, error)
}

// ScanStore manages scan records and their report documents.
//
// Thread-safety: all methods must be safe for concurrent use.
type ScanStore interface {
	// List returns scan records matching the filter, newest first.
	// Returns an empty slice when nothing matches.
	List(ctx context.Context, filter Filter) ([]*ScanRecord, error)

	// Get retrieves one scan record.
	// Returns NotFoundError if the scan does not exist.
	Get(ctx context.Context, scanID string) (*ScanRecord, error)

	// Create creates a new scan record. The record needs at minimum an
	// ID and a target URL.
	// Returns AlreadyExistsError if the ID is taken.
	Create(ctx context.Context, record *ScanRecord) error

	// Update applies a partial update to an existing record. Only
	// non-nil fields are applied.
	// Returns NotFoundError if the scan does not exist.
	Update(ctx context.Context, scanID string, updates ScanUpdates) error

	// Delete removes a scan record and its report document.
	// Returns NotFoundError if the scan does not exist.
	Delete(ctx context.Context, scanID string) error

	// SaveReport stores the serialized scan report next to the record,
	// replacing any previous document.
	SaveReport(ctx context.Context, scanID string, report []byte) error

	// LoadReport reads back the serialized report.
	// Returns NotFoundError if no report was saved.
	LoadReport(ctx context.Context, scanID string) ([]byte, error)
}
