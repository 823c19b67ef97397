// Copyright 2025 SiteVitals Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package output

import "time"

// DefaultOutput implements Output by stamping each call into an
// OutputEvent and emitting it on the stream.
type DefaultOutput struct {
	stream *OutputEventStream
}

// NewDefaultOutput creates a DefaultOutput emitting to the given stream.
func NewDefaultOutput(stream *OutputEventStream) *DefaultOutput {
	return &DefaultOutput{stream: stream}
}

func (o *DefaultOutput) emit(event OutputEvent) {
	event.Timestamp = time.Now()
	o.stream.Emit(event)
}

// Info emits a general information message (always visible).
func (o *DefaultOutput) Info(message string) {
	o.emit(OutputEvent{Type: EventInfo, Message: message})
}

// Error emits an error message.
func (o *DefaultOutput) Error(err error) {
	o.emit(OutputEvent{Type: EventError, Message: err.Error()})
}

// Warning emits a warning message.
func (o *DefaultOutput) Warning(message string) {
	o.emit(OutputEvent{Type: EventWarning, Message: message})
}

// Table emits tabular data with headers and rows.
func (o *DefaultOutput) Table(headers []string, rows [][]string) {
	o.emit(OutputEvent{
		Type: EventTable,
		Data: map[string]any{
			"headers": headers,
			"rows":    rows,
		},
	})
}

// Progress emits a progress update, typically one per settled analyzer.
func (o *DefaultOutput) Progress(current, total int, message string) {
	o.emit(OutputEvent{
		Type:    EventProgress,
		Message: message,
		Data: map[string]any{
			"current": current,
			"total":   total,
		},
	})
}

// Diag emits diagnostic information (only visible with -v/-vv).
func (o *DefaultOutput) Diag(level OutputLevel, message string, metadata map[string]any) {
	o.emit(OutputEvent{
		Type:     EventDiag,
		Level:    level,
		Message:  message,
		Metadata: metadata,
	})
}
