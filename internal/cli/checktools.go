package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jbovet/oxidized-skills/internal/scanner"
)

var (
	sectionTitle  = color.New(color.Bold, color.Underline)
	statusReady   = color.New(color.FgGreen, color.Bold)
	statusMissing = color.New(color.FgRed)
)

var checkToolsCmd = &cobra.Command{
	Use:   "check-tools",
	Short: "Check which external scanner tools are installed and available",
	Long: `Show every scanner with its availability. External scanners
(shellcheck, secrets, semgrep) need their backing tool on PATH; the
built-in scanners are always available.

  oxidized-skills check-tools`,
	Run: checkToolsCommand,
}

func init() {
	rootCmd.AddCommand(checkToolsCmd)
}

func checkToolsCommand(cmd *cobra.Command, args []string) {
	fmt.Println(sectionTitle.Sprint("Scanner Availability"))
	fmt.Println()

	for _, s := range scanner.All() {
		status := statusMissing.Sprint("NOT AVAILABLE")
		if s.IsAvailable() {
			status = statusReady.Sprint("READY")
		}
		fmt.Printf("  [%s] %-20s %s\n", status, s.Name(), s.Description())
	}

	fmt.Println()
	fmt.Println("Note: Core scanners (bash_patterns, prompt, package_install) require no external tools.")
}
