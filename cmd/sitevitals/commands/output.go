package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sitevitals/sitevitals/pkg/output"
	"github.com/sitevitals/sitevitals/pkg/output/subscribers"
)

// setupOutputPipeline builds the event stream and subscribers for one
// command invocation.
//
// Structured formats (json, yaml, markdown) render the report themselves
// at the end of the run, so the stream only carries diagnostics there;
// the human formatter would pollute the document on stdout.
func setupOutputPipeline(cmd *cobra.Command) output.Output {
	stream := output.NewOutputEventStream()

	format, _ := cmd.Flags().GetString("output")
	verbosityCount, _ := cmd.Flags().GetCount("verbosity")

	if format == "" || format == "text" {
		stream.Subscribe(subscribers.NewHumanFormatter(os.Stdout, os.Stderr, true))
	}

	if verbosityCount > 0 {
		maxLevel := output.LevelVerbose
		if verbosityCount > 1 {
			maxLevel = output.LevelDebug
		}
		stream.Subscribe(subscribers.NewDiagnosticFormatter(os.Stderr, maxLevel))
	}

	return output.NewDefaultOutput(stream)
}
