package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/dmontop/internal/errors"
)

// rootCmd runs the dashboard when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "dmontop",
	Short: "Live GPU activity dashboard for dcgmi dmon",
	Long: `dmontop streams "dcgmi dmon" samples for one GPU and draws a bar chart
plus percentile stats for every metric, refreshed at the sampling interval.

Samples can optionally be appended to a CSV log, and a Prometheus endpoint
can expose the dashboard's own counters.

Examples:
  dmontop
  dmontop -i 250 --entity-id 1
  dmontop -l '~/dmon-${HOST}-${DATE}.csv'
  dmontop --input capture.txt
  dcgmi dmon -e 1002,1003 -d 100 | dmontop --catalog activity --input -`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, runFlags)
	},
}

// Execute runs the root command and exits with the status for its error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, formatError(err))
		os.Exit(errors.ExitCode(err))
	}
}

// formatError renders err for the terminal, adding a hint for mistyped commands.
func formatError(err error) string {
	msg := err.Error()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	if isUnknownCommandError(err) {
		hint := "Run 'dmontop --help' to see available commands and flags."
		if name := extractUnknownCommand(err); name != "" {
			hint = fmt.Sprintf("'%s' is not a dmontop command. %s", name, hint)
		}
		msg += "\n" + hint + "\n"
	}
	return msg
}

// isUnknownCommandError reports whether cobra rejected the command line itself.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the quoted command name out of cobra's
// `unknown command "foo" for "dmontop"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
