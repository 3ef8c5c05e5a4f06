package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbovet/oxidized-skills/internal/scanner"
)

var explainCmd = &cobra.Command{
	Use:   "explain <rule-id>",
	Short: "Show the full explanation and remediation for a specific rule",
	Long: `Look up a rule by its ID and print its scanner, severity,
description, and remediation.

Examples:
  oxidized-skills explain bash/CAT-A1
  oxidized-skills explain prompt/override-ignore`,
	Args: cobra.ExactArgs(1),
	RunE: explainCommand,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func explainCommand(cmd *cobra.Command, args []string) error {
	ruleID := args[0]

	for _, rule := range scanner.AllRules() {
		if rule.ID != ruleID {
			continue
		}
		fmt.Println(ruleBold.Sprint(rule.ID))
		fmt.Println()
		fmt.Printf("  Scanner:      %s\n", rule.Scanner)
		fmt.Printf("  Severity:     %s\n", rule.Severity)
		fmt.Printf("  Description:  %s\n", rule.Message)
		fmt.Printf("  Remediation:  %s\n", rule.Remediation)
		return nil
	}

	fmt.Fprintf(os.Stderr, "Unknown rule: %s\n", ruleID)
	fmt.Fprintln(os.Stderr, "Use 'oxidized-skills list-rules' to see all available rules.")
	os.Exit(2)
	return nil
}
