package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/finding"
)

// shellcheckItem is one entry of shellcheck's -f json output.
type shellcheckItem struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Level   string `json:"level"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Fix     *struct {
		Replacements []struct {
			Replacement string `json:"replacement"`
		} `json:"replacements"`
	} `json:"fix"`
}

// ShellCheckScanner lints shell scripts with the external shellcheck
// binary. Findings are tagged shellcheck/SC<code> from whatever the tool
// reports; the catalog below lists only representative examples.
type ShellCheckScanner struct{}

func (ShellCheckScanner) Name() string { return "shellcheck" }

func (ShellCheckScanner) Description() string {
	return "Shell script linting via shellcheck (external tool)"
}

func (ShellCheckScanner) IsAvailable() bool { return toolOnPath("shellcheck") }

func (s ShellCheckScanner) Scan(ctx context.Context, path string, cfg *config.Config) finding.ScanResult {
	start := time.Now()
	files := CollectFiles(path, "sh", "bash")
	if len(files) == 0 {
		return finding.ScanResult{
			ScannerName: s.Name(),
			DurationMs:  time.Since(start).Milliseconds(),
		}
	}

	var findings []finding.Finding
	var errorMsg string

	for _, file := range files {
		// shellcheck exits non-zero when it reports issues; only a failed
		// spawn counts as an error.
		out, err := exec.CommandContext(ctx, "shellcheck", "-f", "json", "--severity=style", file).Output()
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			errorMsg = fmt.Sprintf("Failed to run shellcheck: %v", err)
			continue
		}
		if strings.TrimSpace(string(out)) == "" {
			continue
		}

		var items []shellcheckItem
		if err := json.Unmarshal(out, &items); err != nil {
			errorMsg = fmt.Sprintf("Failed to parse shellcheck JSON: %v", err)
			continue
		}

		for _, item := range items {
			// Real shellcheck codes are >= 1000; zero means mangled JSON.
			if item.Code == 0 {
				continue
			}
			severity := finding.SeverityInfo
			switch item.Level {
			case "error":
				severity = finding.SeverityError
			case "warning", "":
				severity = finding.SeverityWarning
			}
			var snip string
			if item.Fix != nil && len(item.Fix.Replacements) > 0 {
				snip = item.Fix.Replacements[0].Replacement
			}
			message := item.Message
			if message == "" {
				message = "shellcheck finding"
			}
			findings = append(findings, finding.Finding{
				RuleID:      fmt.Sprintf("shellcheck/SC%d", item.Code),
				Message:     message,
				Severity:    severity,
				File:        file,
				Line:        item.Line,
				Column:      item.Column,
				Scanner:     s.Name(),
				Snippet:     snip,
				Remediation: fmt.Sprintf("See https://www.shellcheck.net/wiki/SC%d", item.Code),
			})
		}
	}

	return finding.ScanResult{
		ScannerName:  s.Name(),
		Findings:     findings,
		FilesScanned: len(files),
		Error:        errorMsg,
		DurationMs:   time.Since(start).Milliseconds(),
	}
}

// shellcheckRuleInfos lists a representative subset. ShellCheck defines
// hundreds of rules that evolve independently of this tool.
func shellcheckRuleInfos() []RuleInfo {
	return []RuleInfo{
		{
			ID:          "shellcheck/SC2086",
			Severity:    finding.SeverityInfo,
			Scanner:     "shellcheck",
			Message:     "Double quote to prevent globbing and word splitting",
			Remediation: "See https://www.shellcheck.net/wiki/SC2086",
		},
		{
			ID:          "shellcheck/SC2046",
			Severity:    finding.SeverityWarning,
			Scanner:     "shellcheck",
			Message:     "Quote this to prevent word splitting",
			Remediation: "See https://www.shellcheck.net/wiki/SC2046",
		},
		{
			ID:          "shellcheck/SC2006",
			Severity:    finding.SeverityWarning,
			Scanner:     "shellcheck",
			Message:     "Use $(...) instead of legacy backticks",
			Remediation: "See https://www.shellcheck.net/wiki/SC2006",
		},
		{
			ID:          "shellcheck/SC2039",
			Severity:    finding.SeverityWarning,
			Scanner:     "shellcheck",
			Message:     "In POSIX sh, something is undefined",
			Remediation: "See https://www.shellcheck.net/wiki/SC2039",
		},
		{
			ID:          "shellcheck/SC2059",
			Severity:    finding.SeverityInfo,
			Scanner:     "shellcheck",
			Message:     "Don't use variables in the printf format string",
			Remediation: "See https://www.shellcheck.net/wiki/SC2059",
		},
	}
}
