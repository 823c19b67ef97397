// Copyright 2025 SiteVitals Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package subscribers

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sitevitals/sitevitals/pkg/output"
)

// DiagnosticFormatter renders diagnostic events, gated by the verbosity
// the user requested (-v shows LevelVerbose, -vv also LevelDebug).
type DiagnosticFormatter struct {
	writer   io.Writer
	maxLevel output.OutputLevel
}

// NewDiagnosticFormatter creates a diagnostic subscriber showing events
// up to and including maxLevel.
func NewDiagnosticFormatter(writer io.Writer, maxLevel output.OutputLevel) *DiagnosticFormatter {
	return &DiagnosticFormatter{
		writer:   writer,
		maxLevel: maxLevel,
	}
}

// Name returns the subscriber identifier.
func (s *DiagnosticFormatter) Name() string {
	return "diagnostic-formatter"
}

// ShouldHandle accepts diagnostic events at or below the configured
// verbosity.
func (s *DiagnosticFormatter) ShouldHandle(event output.OutputEvent) bool {
	return event.Type == output.EventDiag && event.Level <= s.maxLevel
}

// Handle renders one diagnostic line with sorted key=value metadata.
func (s *DiagnosticFormatter) Handle(event output.OutputEvent) {
	line := event.Message
	if len(event.Metadata) > 0 {
		keys := make([]string, 0, len(event.Metadata))
		for k := range event.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, event.Metadata[k]))
		}
		line = line + " " + strings.Join(pairs, " ")
	}
	_, _ = fmt.Fprintf(s.writer, "[diag] %s\n", line)
}
