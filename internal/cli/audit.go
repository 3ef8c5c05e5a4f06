package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbovet/oxidized-skills/internal/audit"
	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/output"
)

var (
	auditFormat string
	auditOutput string
	auditStrict bool
	auditConfig string
)

var auditCmd = &cobra.Command{
	Use:   "audit <path>",
	Short: "Audit a single skill directory for security issues",
	Long: `Run every enabled scanner against a skill directory and print the
combined report. The directory must contain a SKILL.md file.

Exit codes: 0 when the audit passed, 1 when it failed, 2 on usage or
configuration errors.

Examples:
  oxidized-skills audit ./my-skill
  oxidized-skills audit ./my-skill --format json --output report.json
  oxidized-skills audit ./my-skill --strict`,
	Args: cobra.ExactArgs(1),
	RunE: auditCommand,
}

func init() {
	auditCmd.Flags().StringVarP(&auditFormat, "format", "f", "pretty", "Output format (pretty, json, or sarif)")
	auditCmd.Flags().StringVarP(&auditOutput, "output", "o", "", "Write output to a file instead of stdout")
	auditCmd.Flags().BoolVar(&auditStrict, "strict", false, "Treat warnings as errors (exit code 1 on warnings)")
	auditCmd.Flags().StringVar(&auditConfig, "config", "", "Path to a custom configuration file")
	rootCmd.AddCommand(auditCmd)
}

func auditCommand(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, err := output.ParseFormat(auditFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if !fileExists(path) {
		fmt.Fprintf(os.Stderr, "Error: path does not exist: %s\n", path)
		os.Exit(2)
	}

	// Detect collection directories early to give a helpful error rather
	// than a confusing "SKILL.md not found" failure on every scanner.
	children := findSkillDirs(path)
	if !fileExists(filepath.Join(path, "SKILL.md")) && len(children) > 0 {
		fmt.Fprintf(os.Stderr, "Error: '%s' looks like a skills collection directory, not a single skill.\n", path)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "To audit all skills at once:")
		fmt.Fprintf(os.Stderr, "  oxidized-skills audit-all %s\n", path)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "To audit a specific skill:")
		for _, child := range children {
			fmt.Fprintf(os.Stderr, "  oxidized-skills audit %s\n", child)
		}
		os.Exit(2)
	}

	cfg, err := config.Load(auditConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if auditStrict {
		cfg.Strict.Enabled = true
	}

	start := time.Now()
	report := audit.Run(cmd.Context(), path, cfg)
	writeTrail(&report, path, cfg.Strict.Enabled, time.Since(start))

	formatted, err := output.Render(&report, format)
	if err != nil {
		return err
	}

	if auditOutput != "" {
		if err := os.WriteFile(auditOutput, []byte(formatted), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Output written to %s\n", auditOutput)
	} else {
		fmt.Print(formatted)
	}

	if !report.Passed {
		os.Exit(1)
	}
	return nil
}
