package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/sitevitals/sitevitals/pkg/scan"
)

// JSONWriter renders reports as JSON for tool integration. The output is
// the report's canonical wire shape, the same document the server stores
// and serves.
type JSONWriter struct {
	baseWriter

	indent bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint enables two-space indented output.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// NewJSONWriter creates a JSONWriter writing to output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the report as one JSON document followed by a newline.
func (w *JSONWriter) Write(report *scan.Report) (int, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if w.indent {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(report); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
