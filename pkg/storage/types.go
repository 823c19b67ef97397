package storage

import "time"

// ScanRecord is the persisted metadata for one scan. The full report
// document is stored beside it (report.json) and retrieved separately so
// listings stay cheap.
type ScanRecord struct {
	// ID is the unique scan identifier (UUID v4).
	ID string `json:"id"`

	// TargetURL is the audited site.
	TargetURL string `json:"target_url"`

	// Status is the current state of the scan.
	Status ScanStatus `json:"status"`

	// StartedAt is when the scan was started (UTC). This is the shared
	// timestamp every analyzer request of the scan carried.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the scan finished (UTC). Zero while running.
	CompletedAt time.Time `json:"completed_at,omitzero"`

	// Duration is the scan duration in seconds, set on completion.
	Duration int `json:"duration_seconds,omitempty"`

	// OverallScore is the aggregated health score, set on completion.
	// A completed scan with no scorable data records 0 here; the report
	// document is what distinguishes "no data" from a genuine zero.
	OverallScore int `json:"overall_score"`

	// IssueCount is the number of ranked issues in the report.
	IssueCount int `json:"issue_count"`

	// ErrorMessage contains error details if the scan failed outright.
	ErrorMessage string `json:"error_message,omitempty"`

	// CreatedAt is when the record was first created (UTC).
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the record was last updated (UTC).
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter specifies criteria for listing scans.
type Filter struct {
	// Status filters by scan status (empty = all statuses).
	Status string

	// Target filters by target URL substring match (empty = all).
	Target string

	// Limit is the maximum number of results to return (0 = no limit).
	Limit int

	// Offset is the number of results to skip (for pagination).
	Offset int
}

// ScanUpdates specifies fields to update in a scan record.
//
// Pointers distinguish "not set" from a zero value; only non-nil fields
// are applied.
type ScanUpdates struct {
	Status       *ScanStatus `json:"status,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	Duration     *int        `json:"duration_seconds,omitempty"`
	OverallScore *int        `json:"overall_score,omitempty"`
	IssueCount   *int        `json:"issue_count,omitempty"`
	ErrorMessage *string     `json:"error_message,omitempty"`
}

// ScanStatus represents valid scan status values.
type ScanStatus string

// Valid scan statuses.
const (
	StatusPending   ScanStatus = "pending"
	StatusRunning   ScanStatus = "running"
	StatusCompleted ScanStatus = "completed"
	StatusFailed    ScanStatus = "failed"
)

// String returns the string representation of ScanStatus.
func (s ScanStatus) String() string {
	return string(s)
}

// IsValid checks if the ScanStatus is valid.
func (s ScanStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the status indicates the scan is finished.
func (s ScanStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
