package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jbovet/oxidized-skills/internal/finding"
	"github.com/jbovet/oxidized-skills/internal/scanner"
)

var (
	ruleBold = color.New(color.Bold)
	sevError = color.New(color.FgRed, color.Bold)
	sevWarn  = color.New(color.FgYellow, color.Bold)
	sevInfo  = color.New(color.FgBlue)
)

var listRulesCmd = &cobra.Command{
	Use:   "list-rules",
	Short: "List every built-in rule with its severity and description",
	Run:   listRulesCommand,
}

func init() {
	rootCmd.AddCommand(listRulesCmd)
}

func listRulesCommand(cmd *cobra.Command, args []string) {
	rules := scanner.AllRules()

	fmt.Println(sectionTitle.Sprint("Built-in Rules"))
	fmt.Println()

	currentScanner := ""
	for _, rule := range rules {
		if rule.Scanner != currentScanner {
			if currentScanner != "" {
				fmt.Println()
			}
			fmt.Printf("  %s\n", ruleBold.Sprint(rule.Scanner))
			currentScanner = rule.Scanner
		}
		fmt.Printf("    [%s] %-30s %s\n", severityLabel(rule.Severity), rule.ID, rule.Message)
	}

	fmt.Println()
	fmt.Printf("  Total: %d rules\n", len(rules))
}

func severityLabel(sev finding.Severity) string {
	switch sev {
	case finding.SeverityError:
		return sevError.Sprint("ERROR")
	case finding.SeverityWarning:
		return sevWarn.Sprint(" WARN")
	case finding.SeverityInfo:
		return sevInfo.Sprint(" INFO")
	default:
		return string(sev)
	}
}
