package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbovet/oxidized-skills/internal/audit"
	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/finding"
	"github.com/jbovet/oxidized-skills/internal/output"
)

var (
	auditAllFormat string
	auditAllStrict bool
	auditAllConfig string
)

var auditAllCmd = &cobra.Command{
	Use:   "audit-all <path>",
	Short: "Audit every skill directory inside a collection directory",
	Long: `Audit each immediate child directory of <path> that contains a
SKILL.md, print every report, and finish with a collection summary table
(pretty format only).

Exits 0 only when every skill passed.

Examples:
  oxidized-skills audit-all ~/.claude/skills
  oxidized-skills audit-all ./skills --strict`,
	Args: cobra.ExactArgs(1),
	RunE: auditAllCommand,
}

func init() {
	auditAllCmd.Flags().StringVarP(&auditAllFormat, "format", "f", "pretty", "Output format (pretty, json, or sarif)")
	auditAllCmd.Flags().BoolVar(&auditAllStrict, "strict", false, "Treat warnings as errors (exit code 1 on warnings)")
	auditAllCmd.Flags().StringVar(&auditAllConfig, "config", "", "Path to a custom configuration file")
	rootCmd.AddCommand(auditAllCmd)
}

func auditAllCommand(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, err := output.ParseFormat(auditAllFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if !fileExists(path) {
		fmt.Fprintf(os.Stderr, "Error: path does not exist: %s\n", path)
		os.Exit(2)
	}

	skillDirs := findSkillDirs(path)
	if len(skillDirs) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no skill directories found in '%s' (no subdirectory contains a SKILL.md)\n", path)
		os.Exit(2)
	}

	cfg, err := config.Load(auditAllConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if auditAllStrict {
		cfg.Strict.Enabled = true
	}

	reports := make([]finding.AuditReport, 0, len(skillDirs))
	for _, skillDir := range skillDirs {
		start := time.Now()
		report := audit.Run(cmd.Context(), skillDir, cfg)
		writeTrail(&report, skillDir, cfg.Strict.Enabled, time.Since(start))

		formatted, err := output.Render(&report, format)
		if err != nil {
			return err
		}
		fmt.Print(formatted)
		reports = append(reports, report)
	}

	if format == output.FormatPretty {
		fmt.Print(output.RenderCollectionSummary(path, reports))
	}

	for _, report := range reports {
		if !report.Passed {
			os.Exit(1)
		}
	}
	return nil
}
