package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/logger"
)

var (
	logLimit int

	iconFailed  = color.New(color.FgRed)
	iconWarning = color.New(color.FgYellow)
	iconPassed  = color.New(color.FgGreen)
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View recent entries from the audit trail",
	Long: `Print the most recent audits recorded in ~/.oxidized-skills/audit.jsonl.

Examples:
  oxidized-skills log             # last 20 audits
  oxidized-skills log --limit 5   # last 5 audits
  oxidized-skills log --limit 0   # everything`,
	RunE: logCommand,
}

func init() {
	logCmd.Flags().IntVar(&logLimit, "limit", 20, "Show at most N of the most recent entries (0 = all)")
	rootCmd.AddCommand(logCmd)
}

func logCommand(cmd *cobra.Command, args []string) error {
	trailPath, err := config.TrailPath()
	if err != nil {
		return fmt.Errorf("failed to locate audit trail: %w", err)
	}

	entries, err := logger.ReadEntries(trailPath)
	if err != nil {
		return fmt.Errorf("failed to read audit trail: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No audit trail entries found.")
		return nil
	}

	if logLimit > 0 && logLimit < len(entries) {
		entries = entries[len(entries)-logLimit:]
	}

	for _, e := range entries {
		fmt.Printf("%s %s %-22s %s (risk: %s)\n",
			statusIcon(e.Status), formatTimestamp(e.Timestamp), e.Skill,
			strings.ToUpper(e.Status), e.RiskLevel)
		fmt.Printf("     Findings: %d errors, %d warnings, %d info, %d suppressed\n",
			e.Errors, e.Warnings, e.Info, e.Suppressed)
		fmt.Printf("     Path: %s\n", e.Path)
		fmt.Println()
	}
	return nil
}

func statusIcon(status string) string {
	switch status {
	case "failed":
		return iconFailed.Sprint("✗")
	case "warning":
		return iconWarning.Sprint("⚠")
	case "passed":
		return iconPassed.Sprint("✓")
	default:
		return "?"
	}
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
