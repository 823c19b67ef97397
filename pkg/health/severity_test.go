package health

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeverity_Ordering(t *testing.T) {
	require.Greater(t, SeverityCritical, SeverityWarning,
		"critical must sort ahead of warning")
}

func TestSeverity_String(t *testing.T) {
	require.Equal(t, "WARNING", SeverityWarning.String())
	require.Equal(t, "CRITICAL", SeverityCritical.String())
	require.Equal(t, "UNKNOWN", Severity(99).String())
}

func TestSeverity_JSONRoundTrip(t *testing.T) {
	for _, severity := range []Severity{SeverityWarning, SeverityCritical} {
		data, err := json.Marshal(severity)
		require.NoError(t, err)

		var decoded Severity
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.Equal(t, severity, decoded)
	}
}

func TestSeverity_MarshalsAsString(t *testing.T) {
	data, err := json.Marshal(SeverityCritical)
	require.NoError(t, err)
	require.JSONEq(t, `"CRITICAL"`, string(data))
}
