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

// semgrepTimeout caps how long a semgrep run may take. On hosts with
// restricted networks semgrep stalls trying to reach semgrep.dev for rule
// updates, and the audit should not hang with it.
const semgrepTimeout = 3 * time.Second

type semgrepOutput struct {
	Results []semgrepResult `json:"results"`
	Stats   struct {
		TotalFiles *int `json:"total_files"`
	} `json:"stats"`
}

type semgrepResult struct {
	CheckID string `json:"check_id"`
	Path    string `json:"path"`
	Start   struct {
		Line int `json:"line"`
		Col  int `json:"col"`
	} `json:"start"`
	Extra struct {
		Severity string `json:"severity"`
		Message  string `json:"message"`
		Lines    string `json:"lines"`
		Fix      string `json:"fix"`
		Metadata struct {
			Fix string `json:"fix"`
		} `json:"metadata"`
	} `json:"extra"`
}

// SemgrepScanner runs the external semgrep binary over the skill directory
// and maps its JSON results to findings. Findings are tagged
// semgrep/<check_id> from whatever the tool reports.
type SemgrepScanner struct{}

func (SemgrepScanner) Name() string { return "semgrep" }

func (SemgrepScanner) Description() string {
	return "Static analysis via semgrep (external tool)"
}

func (SemgrepScanner) IsAvailable() bool { return toolOnPath("semgrep") }

func (s SemgrepScanner) Scan(ctx context.Context, path string, cfg *config.Config) finding.ScanResult {
	start := time.Now()
	fail := func(msg string) finding.ScanResult {
		return finding.ScanResult{
			ScannerName: s.Name(),
			Error:       msg,
			DurationMs:  time.Since(start).Milliseconds(),
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, semgrepTimeout)
	defer cancel()

	// semgrep exits non-zero when findings are present; stdout still
	// carries the JSON document.
	out, err := exec.CommandContext(runCtx, "semgrep", "scan", "--json", "--quiet", path).Output()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return finding.ScanResult{
			ScannerName: s.Name(),
			Skipped:     true,
			SkipReason: fmt.Sprintf("semgrep timed out after %ds — likely blocked by network restrictions",
				int(semgrepTimeout.Seconds())),
			DurationMs: time.Since(start).Milliseconds(),
		}
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return fail(fmt.Sprintf("Failed to run semgrep: %v", err))
	}
	if strings.TrimSpace(string(out)) == "" {
		return finding.ScanResult{
			ScannerName: s.Name(),
			DurationMs:  time.Since(start).Milliseconds(),
		}
	}

	var doc semgrepOutput
	if err := json.Unmarshal(out, &doc); err != nil {
		return fail(fmt.Sprintf("Failed to parse semgrep JSON: %v", err))
	}

	var findings []finding.Finding
	for _, item := range doc.Results {
		checkID := item.CheckID
		if checkID == "" {
			checkID = "unknown"
		}
		severity := finding.SeverityInfo
		switch {
		case strings.EqualFold(item.Extra.Severity, "ERROR"):
			severity = finding.SeverityError
		case strings.EqualFold(item.Extra.Severity, "WARNING"), item.Extra.Severity == "":
			severity = finding.SeverityWarning
		}
		message := item.Extra.Message
		if message == "" {
			message = "semgrep finding"
		}
		remediation := item.Extra.Metadata.Fix
		if remediation == "" {
			remediation = item.Extra.Fix
		}
		findings = append(findings, finding.Finding{
			RuleID:      "semgrep/" + checkID,
			Message:     message,
			Severity:    severity,
			File:        item.Path,
			Line:        item.Start.Line,
			Column:      item.Start.Col,
			Scanner:     s.Name(),
			Snippet:     strings.TrimSpace(item.Extra.Lines),
			Remediation: remediation,
		})
	}

	filesScanned := 0
	if doc.Stats.TotalFiles != nil {
		filesScanned = *doc.Stats.TotalFiles
	} else {
		unique := map[string]bool{}
		for _, f := range findings {
			if f.File != "" {
				unique[f.File] = true
			}
		}
		filesScanned = len(unique)
	}

	return finding.ScanResult{
		ScannerName:  s.Name(),
		Findings:     findings,
		FilesScanned: filesScanned,
		DurationMs:   time.Since(start).Milliseconds(),
	}
}

// semgrepRuleInfos lists a few common check IDs. Semgrep ships thousands
// of community rules that evolve independently of this tool.
func semgrepRuleInfos() []RuleInfo {
	return []RuleInfo{
		{
			ID:          "semgrep/javascript.express.security.audit.xss.direct-response-write.direct-response-write",
			Severity:    finding.SeverityError,
			Scanner:     "semgrep",
			Message:     "Direct response write (XSS vulnerability)",
			Remediation: "Escape output or use a templating engine",
		},
		{
			ID:          "semgrep/python.lang.security.audit.dangerous-spawn-process.dangerous-spawn-process",
			Severity:    finding.SeverityError,
			Scanner:     "semgrep",
			Message:     "Dangerous process spawn (Command Injection)",
			Remediation: "Use subprocess with a list of arguments instead of shell=True",
		},
		{
			ID:          "semgrep/bash.curl.security.curl-pipe-bash.curl-pipe-bash",
			Severity:    finding.SeverityError,
			Scanner:     "semgrep",
			Message:     "Curl piped to bash",
			Remediation: "Download, verify, then execute",
		},
	}
}
