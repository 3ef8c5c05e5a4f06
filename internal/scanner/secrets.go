package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/finding"
	"github.com/jbovet/oxidized-skills/internal/redact"
)

// SecretsScanner detects leaked credentials with the external gitleaks
// binary, run in --no-git mode against the skill directory. Matched secret
// material is masked before it is stored in the finding snippet, so
// reports and the audit trail never carry the live credential.
type SecretsScanner struct{}

func (SecretsScanner) Name() string { return "secrets" }

func (SecretsScanner) Description() string {
	return "Secret scanning via gitleaks (external tool)"
}

func (SecretsScanner) IsAvailable() bool { return toolOnPath("gitleaks") }

func (s SecretsScanner) Scan(ctx context.Context, path string, cfg *config.Config) finding.ScanResult {
	start := time.Now()
	fail := func(msg string) finding.ScanResult {
		return finding.ScanResult{
			ScannerName: s.Name(),
			Error:       msg,
			DurationMs:  time.Since(start).Milliseconds(),
		}
	}

	report, err := os.CreateTemp("", "oxidized-skills-gitleaks-*.json")
	if err != nil {
		return fail(fmt.Sprintf("Failed to create temp file: %v", err))
	}
	reportPath := report.Name()
	report.Close()
	defer os.Remove(reportPath)

	cmd := exec.CommandContext(ctx, "gitleaks", "detect",
		"--source", path,
		"--no-git",
		"--report-format", "json",
		"--report-path", reportPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err = cmd.Run()

	// Exit 1 means leaks were found, which is the whole point. Anything
	// above 1 means gitleaks itself failed.
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fail(fmt.Sprintf("Failed to run gitleaks: %v", err))
		}
		if code := exitErr.ExitCode(); code > 1 {
			return fail(fmt.Sprintf("gitleaks error (exit %d): %s", code, strings.TrimSpace(stderr.String())))
		}
	}

	content, err := os.ReadFile(reportPath)
	if err != nil {
		return fail(fmt.Sprintf("Failed to read gitleaks report: %v", err))
	}

	// Field names vary in case across gitleaks versions, so decode
	// dynamically and probe both spellings.
	var items []map[string]any
	if err := json.Unmarshal(content, &items); err != nil {
		return finding.ScanResult{
			ScannerName:  s.Name(),
			FilesScanned: 1,
			Error:        fmt.Sprintf("Failed to parse gitleaks report: %v", err),
			DurationMs:   time.Since(start).Milliseconds(),
		}
	}

	var findings []finding.Finding
	for _, item := range items {
		rule := pickString(item, "RuleID", "ruleId")
		if rule == "" {
			rule = "unknown"
		}
		message := pickString(item, "Description", "description")
		if message == "" {
			message = "Secret detected"
		}
		var snip string
		if match := pickString(item, "Match", "match"); match != "" {
			snip = redact.Mask(match)
		}
		findings = append(findings, finding.Finding{
			RuleID:      "secrets/" + rule,
			Message:     message,
			Severity:    finding.SeverityError,
			File:        pickString(item, "File", "file"),
			Line:        pickInt(item, "StartLine", "startLine"),
			Scanner:     s.Name(),
			Snippet:     snip,
			Remediation: "Rotate the leaked secret immediately and remove it from the codebase",
		})
	}

	// Count distinct files in findings; a clean run still scanned the
	// directory as one unit.
	unique := map[string]bool{}
	for _, f := range findings {
		if f.File != "" {
			unique[f.File] = true
		}
	}
	filesScanned := len(unique)
	if filesScanned == 0 {
		filesScanned = 1
	}

	return finding.ScanResult{
		ScannerName:  s.Name(),
		Findings:     findings,
		FilesScanned: filesScanned,
		DurationMs:   time.Since(start).Milliseconds(),
	}
}

func pickString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok {
			return v
		}
	}
	return ""
}

func pickInt(m map[string]any, keys ...string) int {
	for _, k := range keys {
		if v, ok := m[k].(float64); ok {
			return int(v)
		}
	}
	return 0
}

// secretsRuleInfos lists common gitleaks rule IDs. The tool ships over a
// hundred rules; findings use whatever RuleID the report carries.
func secretsRuleInfos() []RuleInfo {
	return []RuleInfo{
		{
			ID:          "secrets/generic-api-key",
			Severity:    finding.SeverityError,
			Scanner:     "secrets",
			Message:     "Detected a Generic API Key",
			Remediation: "Rotate the leaked secret immediately and remove it from the codebase",
		},
		{
			ID:          "secrets/aws-access-key",
			Severity:    finding.SeverityError,
			Scanner:     "secrets",
			Message:     "Detected an AWS Access Key",
			Remediation: "Revoke the key immediately in AWS console",
		},
		{
			ID:          "secrets/github-pat",
			Severity:    finding.SeverityError,
			Scanner:     "secrets",
			Message:     "Detected a GitHub Personal Access Token",
			Remediation: "Revoke the token in GitHub settings",
		},
		{
			ID:          "secrets/private-key",
			Severity:    finding.SeverityError,
			Scanner:     "secrets",
			Message:     "Detected a Private Key (SSH, RSA, etc.)",
			Remediation: "Remove the key and rotate any credentials it protected",
		},
	}
}
