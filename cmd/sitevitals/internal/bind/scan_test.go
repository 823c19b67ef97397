package bind

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/sitevitals/sitevitals/pkg/scan"
)

func newScanFlagCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "scan"}
	cmd.Flags().IntP("top", "n", 0, "")
	cmd.Flags().StringP("output", "o", "text", "")
	return cmd
}

func TestBindScanOptions_Defaults(t *testing.T) {
	cmd := newScanFlagCommand()

	params, err := BindScanOptions(cmd, "https://example.com")
	require.NoError(t, err)
	require.Equal(t, scan.Params{TargetURL: "https://example.com"}, params)
}

func TestBindScanOptions_Flags(t *testing.T) {
	cmd := newScanFlagCommand()
	require.NoError(t, cmd.Flags().Set("top", "5"))
	require.NoError(t, cmd.Flags().Set("output", "markdown"))

	params, err := BindScanOptions(cmd, "https://example.com")
	require.NoError(t, err)
	require.Equal(t, 5, params.TopN)
}

func TestBindScanOptions_OutputFormats(t *testing.T) {
	for _, format := range []string{"text", "json", "yaml", "markdown"} {
		cmd := newScanFlagCommand()
		require.NoError(t, cmd.Flags().Set("output", format))

		_, err := BindScanOptions(cmd, "https://example.com")
		require.NoError(t, err, "format %s", format)
	}
}

func TestBindScanOptions_UnknownFormat(t *testing.T) {
	cmd := newScanFlagCommand()
	require.NoError(t, cmd.Flags().Set("output", "xml"))

	_, err := BindScanOptions(cmd, "https://example.com")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown output format")
}

func TestBindScanOptions_NegativeTop(t *testing.T) {
	cmd := newScanFlagCommand()
	require.NoError(t, cmd.Flags().Set("top", "-1"))

	_, err := BindScanOptions(cmd, "https://example.com")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--top")
}

func TestBindScanOptions_InvalidTarget(t *testing.T) {
	cmd := newScanFlagCommand()

	_, err := BindScanOptions(cmd, "ftp://example.com")
	require.ErrorIs(t, err, scan.ErrInvalidTarget)

	_, err = BindScanOptions(cmd, "")
	require.ErrorIs(t, err, scan.ErrNoTarget)
}
