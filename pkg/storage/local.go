package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// LocalBackend implements Backend using file-based storage.
//
// Storage layout:
//
//	{workspace}/
//	  scans/
//	    {scan-id}/
//	      metadata.json
//	      report.json
//
// Thread-safety: metadata operations are protected by per-file locks so
// concurrent scans (CLI and server workers) can share one workspace.
type LocalBackend struct {
	cfg       *Config
	scanStore *LocalScanStore
	mu        sync.Mutex
	closed    bool
}

// NewLocalBackend creates a new file-based backend.
func NewLocalBackend(cfg *Config) (*LocalBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &LocalBackend{
		cfg: cfg,
		scanStore: &LocalScanStore{
			root: filepath.Join(cfg.WorkspaceRoot, "scans"),
		},
	}, nil
}

// Initialize prepares the backend for use.
func (b *LocalBackend) Initialize(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if err := os.MkdirAll(b.scanStore.root, 0o755); err != nil {
		return fmt.Errorf("create scans directory: %w", err)
	}
	return nil
}

// Close releases resources held by the backend.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Scans returns the scan history store.
func (b *LocalBackend) Scans() ScanStore {
	return b.scanStore
}

// LocalScanStore implements ScanStore on the local filesystem.
type LocalScanStore struct {
	root string
}

// List returns scan records matching the filter, newest first.
func (s *LocalScanStore) List(ctx context.Context, filter Filter) ([]*ScanRecord, error) {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return []*ScanRecord{}, nil
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read scans directory: %w", err)
	}

	records := make([]*ScanRecord, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		record, err := s.Get(ctx, entry.Name())
		if err != nil {
			// Skip scans with unreadable metadata.
			continue
		}
		if !matchesFilter(record, filter) {
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(records) {
			return []*ScanRecord{}, nil
		}
		records = records[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(records) {
		records = records[:filter.Limit]
	}

	return records, nil
}

func matchesFilter(record *ScanRecord, filter Filter) bool {
	if filter.Status != "" && record.Status.String() != filter.Status {
		return false
	}
	if filter.Target != "" && !strings.Contains(record.TargetURL, filter.Target) {
		return false
	}
	return true
}

// Get retrieves one scan record.
func (s *LocalScanStore) Get(ctx context.Context, scanID string) (*ScanRecord, error) {
	metadataPath := s.metadataPath(scanID)

	if _, err := os.Stat(metadataPath); os.IsNotExist(err) {
		return nil, NewNotFoundError("scan", scanID)
	}

	lock := flock.New(metadataPath + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("acquire read lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var record ScanRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &record, nil
}

// Create creates a new scan record.
func (s *LocalScanStore) Create(ctx context.Context, record *ScanRecord) error {
	if record.ID == "" {
		return NewInvalidInputError("scan ID", "must not be empty")
	}
	if record.TargetURL == "" {
		return NewInvalidInputError("target URL", "must not be empty")
	}

	scanDir := s.scanDir(record.ID)
	metadataPath := s.metadataPath(record.ID)

	if _, err := os.Stat(metadataPath); err == nil {
		return NewAlreadyExistsError("scan", record.ID)
	}
	if err := os.MkdirAll(scanDir, 0o755); err != nil {
		return fmt.Errorf("create scan directory: %w", err)
	}

	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}
	if record.Status == "" {
		record.Status = StatusPending
	}

	lock := flock.New(metadataPath + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire write lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	return s.writeMetadata(metadataPath, record)
}

// Update applies a partial update to an existing record.
func (s *LocalScanStore) Update(ctx context.Context, scanID string, updates ScanUpdates) error {
	metadataPath := s.metadataPath(scanID)

	if _, err := os.Stat(metadataPath); os.IsNotExist(err) {
		return NewNotFoundError("scan", scanID)
	}

	lock := flock.New(metadataPath + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire write lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(metadataPath)
	if err != nil {
		return fmt.Errorf("read metadata: %w", err)
	}
	var record ScanRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("parse metadata: %w", err)
	}

	if updates.Status != nil {
		record.Status = *updates.Status
	}
	if updates.CompletedAt != nil {
		record.CompletedAt = *updates.CompletedAt
	}
	if updates.Duration != nil {
		record.Duration = *updates.Duration
	}
	if updates.OverallScore != nil {
		record.OverallScore = *updates.OverallScore
	}
	if updates.IssueCount != nil {
		record.IssueCount = *updates.IssueCount
	}
	if updates.ErrorMessage != nil {
		record.ErrorMessage = *updates.ErrorMessage
	}
	record.UpdatedAt = time.Now()

	return s.writeMetadata(metadataPath, &record)
}

// Delete removes a scan record and its report document.
func (s *LocalScanStore) Delete(ctx context.Context, scanID string) error {
	scanDir := s.scanDir(scanID)

	if _, err := os.Stat(scanDir); os.IsNotExist(err) {
		return NewNotFoundError("scan", scanID)
	}
	if err := os.RemoveAll(scanDir); err != nil {
		return fmt.Errorf("delete scan directory: %w", err)
	}

	_ = os.Remove(s.metadataPath(scanID) + ".lock")
	return nil
}

// SaveReport stores the serialized report document for a scan.
func (s *LocalScanStore) SaveReport(ctx context.Context, scanID string, report []byte) error {
	scanDir := s.scanDir(scanID)
	if err := os.MkdirAll(scanDir, 0o755); err != nil {
		return fmt.Errorf("create scan directory: %w", err)
	}

	reportPath := s.reportPath(scanID)
	lock := flock.New(reportPath + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire write lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := os.WriteFile(reportPath, report, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// LoadReport reads back the serialized report document.
func (s *LocalScanStore) LoadReport(ctx context.Context, scanID string) ([]byte, error) {
	reportPath := s.reportPath(scanID)

	if _, err := os.Stat(reportPath); os.IsNotExist(err) {
		return nil, NewNotFoundError("report", scanID)
	}

	lock := flock.New(reportPath + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("acquire read lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return data, nil
}

func (s *LocalScanStore) writeMetadata(path string, record *ScanRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func (s *LocalScanStore) scanDir(scanID string) string {
	return filepath.Join(s.root, scanID)
}

func (s *LocalScanStore) metadataPath(scanID string) string {
	return filepath.Join(s.scanDir(scanID), "metadata.json")
}

func (s *LocalScanStore) reportPath(scanID string) string {
	return filepath.Join(s.scanDir(scanID), "report.json")
}
