package cli

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jbovet/oxidized-skills/internal/version"
)

var noColor bool

var rootCmd = &cobra.Command{
	Use:     "oxidized-skills",
	Short:   "Security auditing for AI agent skills",
	Version: version.Version,
	Long: `oxidized-skills audits agent skill directories for security issues:
prompt injection in documentation, dangerous shell patterns in scripts,
unpinned or untrusted package installs, leaked secrets, and invisible
unicode. Findings roll up into a pass/fail verdict suitable for CI.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Piped output gets plain text, so --output files and shell
		// redirects never carry ANSI escapes.
		if noColor || !term.IsTerminal(int(os.Stdout.Fd())) {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func Execute() error {
	return rootCmd.Execute()
}
