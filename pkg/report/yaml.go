package report

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/sitevitals/sitevitals/pkg/scan"
)

// YAMLWriter renders reports as YAML. The report is round-tripped through
// its JSON encoding first so both formats share the same field names.
type YAMLWriter struct {
	baseWriter
}

// NewYAMLWriter creates a YAMLWriter writing to output.
func NewYAMLWriter(output io.Writer) *YAMLWriter {
	return &YAMLWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the report as one YAML document.
func (w *YAMLWriter) Write(report *scan.Report) (int, error) {
	wire, err := json.Marshal(report)
	if err != nil {
		return 0, err
	}
	var doc map[string]any
	if err := json.Unmarshal(wire, &doc); err != nil {
		return 0, err
	}
	payload, err := yaml.Marshal(doc)
	if err != nil {
		return 0, err
	}
	return w.output.Write(payload)
}
