// Copyright 2025 SiteVitals Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package output decouples business logic from presentation: scan code
// emits typed events to a stream, and subscribers (human formatter, JSON
// formatter, diagnostics) decide how to render them.
package output

import "time"

// contextKey is a type for context keys to avoid collisions
type contextKey string

// OutputKey is the context key for the Output interface
const OutputKey contextKey = "output"

// OutputEventType defines the type of output event.
type OutputEventType string

const (
	// EventInfo represents a general information message (always visible)
	EventInfo OutputEventType = "info"

	// EventError represents an error message
	EventError OutputEventType = "error"

	// EventWarning represents a warning message
	EventWarning OutputEventType = "warning"

	// EventTable represents tabular data output
	EventTable OutputEventType = "table"

	// EventProgress represents a progress update
	EventProgress OutputEventType = "progress"

	// EventDiag represents diagnostic information (only visible with -v/-vv)
	EventDiag OutputEventType = "diag"
)

// OutputLevel defines the verbosity level for diagnostic messages.
type OutputLevel int

const (
	// LevelNormal is the default level (always shown)
	LevelNormal OutputLevel = 0

	// LevelVerbose is shown with -v flag
	LevelVerbose OutputLevel = 1

	// LevelDebug is shown with -vv flag
	LevelDebug OutputLevel = 2
)

// OutputEvent represents a single output event emitted by business logic.
type OutputEvent struct {
	// Type identifies the event category (info, error, table, etc.)
	Type OutputEventType

	// Level specifies verbosity level (only used for EventDiag)
	Level OutputLevel

	// Message is the primary text content
	Message string

	// Data contains structured data (e.g., table headers/rows, progress values)
	Data any

	// Metadata holds additional key-value pairs for diagnostic events
	Metadata map[string]any

	// Timestamp records when the event was created
	Timestamp time.Time
}

// Output is the primary interface for business logic to emit output
// events without knowing about the underlying rendering format.
type Output interface {
	// Info emits a general information message (always visible).
	// Example: out.Info("Scanning https://example.com ...")
	Info(message string)

	// Error emits an error message.
	// Example: out.Error(fmt.Errorf("storage unavailable"))
	Error(err error)

	// Warning emits a warning message.
	// Example: out.Warning("security analyzer unavailable, score omitted")
	Warning(message string)

	// Table emits tabular data with headers and rows.
	// Example: out.Table([]string{"Area", "Score"}, [][]string{{"SEO", "82"}})
	Table(headers []string, rows [][]string)

	// Progress emits a progress update.
	// Example: out.Progress(3, 5, "performance analyzer settled")
	Progress(current, total int, message string)

	// Diag emits diagnostic information (only visible with -v/-vv).
	// Example: out.Diag(LevelVerbose, "analyzer settled", map[string]any{"kind": "seo"})
	Diag(level OutputLevel, message string, metadata map[string]any)
}
