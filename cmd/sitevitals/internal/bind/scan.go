// Package bind centralizes the translation from cobra flags to service
// layer parameter structs, so commands stay thin and the mapping is
// testable in isolation.
package bind

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitevitals/sitevitals/pkg/scan"
)

// Output formats accepted by the scan command.
var scanOutputFormats = map[string]bool{
	"text":     true,
	"json":     true,
	"yaml":     true,
	"markdown": true,
}

// BindScanOptions extracts and validates scan command flags.
//
// Flags read:
//   - --top: number of ranked issues to include in the report
//   - --output: output format (text, json, yaml, markdown)
//
// The returned params are fully validated; an invalid target or an
// unknown output format is an error here, before any analyzer is called.
func BindScanOptions(cmd *cobra.Command, target string) (scan.Params, error) {
	top, _ := cmd.Flags().GetInt("top")
	format, _ := cmd.Flags().GetString("output")

	if !scanOutputFormats[format] {
		return scan.Params{}, fmt.Errorf("unknown output format %q (expected text, json, yaml or markdown)", format)
	}
	if top < 0 {
		return scan.Params{}, fmt.Errorf("--top must not be negative")
	}

	params := scan.Params{
		TargetURL: target,
		TopN:      top,
	}
	if err := params.Validate(); err != nil {
		return scan.Params{}, err
	}
	return params, nil
}
