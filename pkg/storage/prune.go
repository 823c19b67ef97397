package storage

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"
)

// PruneOptions defines options for a retention pass.
type PruneOptions struct {
	// DryRun reports what would be deleted without deleting it.
	DryRun bool

	// Retention overrides the backend's configured retention policy.
	// Nil uses the backend's default.
	Retention *RetentionConfig
}

// PruneResult contains the results of a retention pass.
type PruneResult struct {
	// ScansDeleted is the number of scans deleted (or that would be,
	// for a dry run).
	ScansDeleted int

	// DeletedScanIDs lists the affected scan IDs.
	DeletedScanIDs []string

	// Errors contains any errors encountered during deletion.
	// Pruning continues even if individual deletions fail.
	Errors []error
}

// Prune removes scans that violate the retention policy: first everything
// older than MaxAgeDays, then the oldest scans past the MaxScans count.
func (b *LocalBackend) Prune(ctx context.Context, opts PruneOptions) (*PruneResult, error) {
	retention := b.cfg.Retention
	if opts.Retention != nil {
		retention = *opts.Retention
	}
	if !retention.IsEnabled() {
		return &PruneResult{}, nil
	}

	records, err := b.Scans().List(ctx, Filter{})
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}

	result := &PruneResult{
		DeletedScanIDs: make([]string, 0),
		Errors:         make([]error, 0),
	}
	if len(records) == 0 {
		return result, nil
	}

	// Oldest first.
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.Before(records[j].StartedAt)
	})

	toDelete := make([]string, 0)

	if retention.MaxAgeDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -retention.MaxAgeDays)
		for _, record := range records {
			if record.StartedAt.Before(cutoff) {
				toDelete = append(toDelete, record.ID)
			}
		}
	}

	if retention.MaxScans > 0 {
		remaining := make([]*ScanRecord, 0, len(records))
		for _, record := range records {
			if !slices.Contains(toDelete, record.ID) {
				remaining = append(remaining, record)
			}
		}
		if excess := len(remaining) - retention.MaxScans; excess > 0 {
			for i := 0; i < excess; i++ {
				toDelete = append(toDelete, remaining[i].ID)
			}
		}
	}

	for _, scanID := range toDelete {
		if opts.DryRun {
			result.DeletedScanIDs = append(result.DeletedScanIDs, scanID)
			result.ScansDeleted++
			continue
		}
		if err := b.Scans().Delete(ctx, scanID); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("delete scan %s: %w", scanID, err))
			continue
		}
		result.DeletedScanIDs = append(result.DeletedScanIDs, scanID)
		result.ScansDeleted++
	}

	return result, nil
}
