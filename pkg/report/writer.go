// Package report renders finished scan reports in the formats the CLI
// exposes: JSON for machines, YAML for configuration-minded readers and
// Markdown for documentation and sharing.
package report

import (
	"io"

	"github.com/sitevitals/sitevitals/pkg/scan"
)

// Writer renders one scan report to a destination.
type Writer interface {
	// Write renders the report. Returns the number of bytes written and
	// any error encountered.
	Write(report *scan.Report) (int, error)
}

// MultiWriter renders to several Writers in turn, for example terminal
// plus file. It stops on the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer fanning out to all given writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the report through every writer, returning the total
// bytes written.
func (m *MultiWriter) Write(report *scan.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
