package scanner

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/finding"
)

// Category A: remote code execution. Category B: credential exfiltration.
// Category C: destructive operations. Category D: reverse shells.
// Category E: privilege escalation. Category G: unsafe variable expansion.
// Category H: outbound network calls, gated on the domain allowlist.
var bashRules = []Rule{
	{
		ID:          "bash/CAT-A1",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)\|\s*(bash|sh|zsh|fish|ksh)\b`),
		Message:     "Pipe to shell — potential remote code execution",
		Remediation: "Download to a temp file, verify checksum, then execute explicitly",
	},
	{
		ID:          "bash/CAT-A2",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile("(?i)\\beval\\s*[\"'`\\$\\(]"),
		Message:     "eval of dynamic content — arbitrary code execution risk",
		Remediation: "Avoid eval; use explicit function calls or case statements",
	},
	{
		ID:          "bash/CAT-A3",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)\bsource\s*<\s*\(\s*(curl|wget|fetch)`),
		Message:     "Source from URL — executes arbitrary remote shell code",
		Remediation: "Download to a file, review content, then source explicitly",
	},
	{
		ID:          "bash/CAT-A4",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)(curl|wget).+/tmp/.+&&\s*(bash|sh|exec)`),
		Message:     "Download to temp file then execute — two-step RCE vector",
		Remediation: "Use package manager or verified binary download with checksum",
	},
	{
		// The $ sigil is required so bare "HOME" substrings inside words
		// like HOSTNAME or REMOTE_HOME do not produce false positives.
		ID:          "bash/CAT-B1",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(\$\{?HOME\}?|~)/\.ssh/`),
		Message:     "Access to ~/.ssh/ — SSH key exfiltration risk",
		Remediation: "SSH keys should never be read by skill scripts",
	},
	{
		ID:          "bash/CAT-B2",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(\$\{?HOME\}?|~)/\.aws/`),
		Message:     "Access to ~/.aws/ — AWS credential exfiltration risk",
		Remediation: "AWS credentials should never be read by skill scripts",
	},
	{
		ID:          "bash/CAT-B3",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(\$\{?HOME\}?|~)/\.kube/config`),
		Message:     "Access to ~/.kube/config — Kubernetes credential exfiltration risk",
		Remediation: "Kubeconfig should never be read by skill scripts",
	},
	{
		// Matches both $VAR and ${VAR} forms of the POST body.
		ID:          "bash/CAT-B4",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)(curl|wget).+\-d\s+["']?\$`),
		Message:     "Environment variable sent as HTTP POST body — exfiltration risk",
		Remediation: "Never send environment variables to external endpoints",
	},
	{
		ID:          "bash/CAT-B5",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)\benv\b.+\|\s*(curl|wget|nc)`),
		Message:     "env output piped to network tool — full environment exfiltration",
		Remediation: "Never pipe env output to outbound network tools",
	},
	{
		ID:          "bash/CAT-C1",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)\brm\s+(-[rRfF]+\s+){0,3}(\$HOME|~/|/\s*$|\$\{HOME\})`),
		Message:     "rm -rf on home or root directory — potentially irreversible destruction",
		Remediation: "Scope rm operations to specific subdirectories with validated paths",
	},
	{
		ID:          "bash/CAT-C2",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)\bdd\s+if=/dev/(urandom|zero|random)\s+of=/dev/`),
		Message:     "dd disk wipe — overwrites storage device",
		Remediation: "dd to block devices should never appear in skill scripts",
	},
	{
		ID:          "bash/CAT-D1",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)\bnc\s+(-[a-z]+\s+)*-e\s+/bin/`),
		Message:     "Netcat reverse shell — opens interactive shell to remote host",
		Remediation: "Netcat with -e flag is a reverse shell. Remove immediately.",
	},
	{
		ID:          "bash/CAT-D2",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`bash\s+-i\s+>&\s*/dev/tcp/`),
		Message:     "Bash TCP reverse shell — /dev/tcp backdoor",
		Remediation: "Bash /dev/tcp redirection is a reverse shell. Remove immediately.",
	},
	{
		ID:          "bash/CAT-D3",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)python\S*\s+-c\s+.*socket.*connect`),
		Message:     "Python socket-based reverse shell pattern",
		Remediation: "Python socket connect pattern is a known reverse shell. Remove immediately.",
	},
	{
		ID:          "bash/CAT-E1",
		Severity:    finding.SeverityWarning,
		Pattern:     regexp.MustCompile(`(?i)\bsudo\s+(su|bash|sh)\b`),
		Message:     "sudo shell — unintended privilege escalation",
		Remediation: "Skills should not require root. Specify exact sudo commands if unavoidable.",
	},
	{
		ID:          "bash/CAT-E2",
		Severity:    finding.SeverityWarning,
		Pattern:     regexp.MustCompile(`\bchmod\s+[+u]s\b`),
		Message:     "SUID bit — persistent privilege escalation vector",
		Remediation: "Setting SUID bit on binaries is a privilege escalation risk",
	},
	{
		// [^/"{] eats one unsafe trailing character; the $ alternative also
		// catches a bare `rm -rf $TMPDIR` at end of line.
		ID:          "bash/CAT-G1",
		Severity:    finding.SeverityWarning,
		Pattern:     regexp.MustCompile(`(?i)\brm\s+-[rRfF]+\s+\$[a-zA-Z_][a-zA-Z0-9_]*(?:[^/"{]|$)`),
		Message:     "rm -rf with unquoted variable — empty variable may delete current directory",
		Remediation: `Quote the variable: rm -rf "$VARNAME" and validate it is non-empty first`,
	},
	{
		ID:          "bash/CAT-G2",
		Severity:    finding.SeverityWarning,
		Pattern:     regexp.MustCompile(`(?i)(bash|sh)\s+-c\s+["']?\$[a-zA-Z_]`),
		Message:     "Shell invoked with variable argument — command injection risk",
		Remediation: "Avoid bash -c with variable content. Use functions or explicit commands.",
	},
	{
		ID:          "bash/CAT-H1",
		Severity:    finding.SeverityInfo,
		Pattern:     regexp.MustCompile(`(?i)(curl|wget)\s+https?://`),
		Message:     "Outbound HTTP call detected — verify domain is in allowed list",
		Remediation: "Ensure domain is listed under allowlist.domains in oxidized-skills.yaml",
		Exempt: func(line string, cfg *config.Config) bool {
			return urlHostsExempt(line, cfg.Allowlist.Domains)
		},
	},
}

// BashPatternScanner detects dangerous shell constructs in .sh, .bash and
// .zsh files with pure regex matching. It needs no external tools and is
// always available.
type BashPatternScanner struct{}

func (BashPatternScanner) Name() string { return "bash_patterns" }

func (BashPatternScanner) Description() string {
	return "Dangerous bash pattern scanner (Categories A-H) — built-in rules"
}

func (BashPatternScanner) IsAvailable() bool { return true }

func (b BashPatternScanner) Scan(ctx context.Context, path string, cfg *config.Config) finding.ScanResult {
	start := time.Now()
	files := CollectFiles(path, "sh", "bash", "zsh")
	var findings []finding.Finding

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err == nil && !utf8.Valid(data) {
			err = fmt.Errorf("content is not valid UTF-8")
		}
		if err != nil {
			// Surface read failures as Info findings so the author knows
			// a file was not scanned.
			findings = append(findings, finding.Finding{
				RuleID:      "bash/read-error",
				Message:     fmt.Sprintf("Could not read file: %v", err),
				Severity:    finding.SeverityInfo,
				File:        file,
				Scanner:     b.Name(),
				Remediation: "Check file permissions and ensure the file is valid UTF-8",
			})
			continue
		}
		findings = append(findings, scanLines(b.Name(), file, string(data), bashRules, cfg, lineOptions{
			SkipComments:  true,
			InlineMarkers: true,
			Shell:         true,
		})...)
	}

	return finding.ScanResult{
		ScannerName:  b.Name(),
		Findings:     findings,
		FilesScanned: len(files),
		DurationMs:   time.Since(start).Milliseconds(),
	}
}

func bashRuleInfos() []RuleInfo {
	return ruleInfos("bash_patterns", bashRules)
}
