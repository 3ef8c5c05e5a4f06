package scanner

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/finding"
)

// promptRules covers instruction override, role manipulation, jailbreak
// keywords, data exfiltration, code injection, excessive permissions,
// system prompt extraction, delimiter injection, fictional framing, and
// priority override keywords.
var promptRules = []Rule{
	{
		ID:          "prompt/override-ignore",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above)\s+(instructions?|prompts?|rules?)`),
		Message:     "Prompt injection: instruction override — 'ignore previous instructions'",
		Remediation: "Remove instruction override language from skill description",
	},
	{
		ID:          "prompt/override-disregard",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above|your)\s+(instructions?|prompts?|rules?|guidelines?)`),
		Message:     "Prompt injection: instruction override — 'disregard previous instructions'",
		Remediation: "Remove instruction override language from skill description",
	},
	{
		ID:          "prompt/override-forget",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)forget\s+(everything|all|what)\s+(you|i)\s+(told|said|know)`),
		Message:     "Prompt injection: instruction override — 'forget everything'",
		Remediation: "Remove instruction override language from skill description",
	},
	{
		ID:          "prompt/role-escalation",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)you\s+are\s+(now\s+)?(a|an|the)\s+(root|admin|system|super)\s*(user|administrator)?`),
		Message:     "Prompt injection: role escalation — assigns admin/root identity",
		Remediation: "Remove role escalation language from skill description",
	},
	{
		ID:          "prompt/role-impersonation",
		Severity:    finding.SeverityWarning,
		Pattern:     regexp.MustCompile(`(?i)pretend\s+(to\s+be|you('re| are))\s+(a\s+)?(different|another|new)\s+(ai|assistant|system)`),
		Message:     "Prompt injection: role impersonation — 'pretend to be different AI'",
		Remediation: "Remove role impersonation language from skill description",
	},
	{
		ID:          "prompt/restrictions-bypass",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)act\s+as\s+(if\s+)?(you\s+)?(have\s+)?(no|without)\s+(restrictions?|limits?|rules?)`),
		Message:     "Prompt injection: restrictions bypass — 'act without restrictions'",
		Remediation: "Remove restrictions bypass language from skill description",
	},
	{
		ID:          "prompt/jailbreak-dan",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)(DAN|do\s+anything\s+now)\s+mode`),
		Message:     "Prompt injection: DAN (Do Anything Now) jailbreak attempt",
		Remediation: "Remove jailbreak keywords from skill description",
	},
	{
		ID:          "prompt/jailbreak-devmode",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)developer\s+mode\s+(enabled?|activate|on)`),
		Message:     "Prompt injection: developer mode activation attempt",
		Remediation: "Remove developer mode activation language from skill description",
	},
	{
		ID:          "prompt/jailbreak-bypass",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)bypass\s+(safety|security|content)\s+(filter|check|restriction)s?`),
		Message:     "Prompt injection: safety/security bypass attempt",
		Remediation: "Remove safety bypass language from skill description",
	},
	{
		ID:          "prompt/exfil-send",
		Severity:    finding.SeverityWarning,
		Pattern:     regexp.MustCompile(`(?i)(send|post|transmit|exfiltrate)\s+.{0,30}(to|via)\s+(http|https|webhook|url|endpoint)`),
		Message:     "Prompt injection: data exfiltration — send data to external endpoint",
		Remediation: "Remove data exfiltration instructions from skill description",
	},
	{
		ID:          "prompt/exfil-read",
		Severity:    finding.SeverityWarning,
		Pattern:     regexp.MustCompile(`(?i)(read|access|get|extract)\s+.{0,20}(password|secret|key|token|credential)s?`),
		Message:     "Prompt injection: credential access — read passwords/secrets/tokens",
		Remediation: "Remove credential access instructions from skill description",
	},
	{
		ID:          "prompt/inject-execute",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)execute\s+(any|arbitrary|untrusted)\s+(code|command|script)s?`),
		Message:     "Prompt injection: arbitrary code execution instruction",
		Remediation: "Remove arbitrary code execution instructions from skill description",
	},
	{
		ID:          "prompt/inject-unvalidated",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)run\s+.{0,20}without\s+(checking|validation|sanitiz)`),
		Message:     "Prompt injection: run without validation instruction",
		Remediation: "Remove unvalidated execution instructions from skill description",
	},
	{
		// Requires a filesystem-like target after delete/remove/rm, so
		// prose like "remove ... all" in ordinary text does not match.
		ID:          "prompt/perm-delete-all",
		Severity:    finding.SeverityWarning,
		Pattern:     regexp.MustCompile(`(?i)\b(delete|remove|rm)\s+(-[rfRF]{1,4}\s+)?(/|~/|\.\./|\*|all\b|everything\b)`),
		Message:     "Prompt injection: mass deletion instruction",
		Remediation: "Remove mass deletion instructions from skill description",
	},
	{
		ID:          "prompt/perm-sudo",
		Severity:    finding.SeverityWarning,
		Pattern:     regexp.MustCompile(`(?i)\bsudo\b|as\s+root|with\s+(elevated|admin)\s+priv`),
		Message:     "Prompt injection: privilege escalation instruction (sudo/root)",
		Remediation: "Remove privilege escalation instructions from skill description",
	},
	{
		ID:          "prompt/exfil-sysPrompt",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)(repeat|print|show|reveal|output|display)\s+(your\s+)?(system\s+prompt|initial\s+instructions?|prompt\s+template|base\s+instructions?)`),
		Message:     "Prompt injection: system prompt extraction attempt",
		Remediation: "Remove instructions that attempt to reveal the system prompt or base instructions",
	},
	{
		ID:          "prompt/inject-delimiter",
		Severity:    finding.SeverityError,
		Pattern:     regexp.MustCompile(`(?i)(</?(?:instructions?|system|prompt)>|\[/?INST\]|<\|im_start\|>|<\|im_end\|>|<\|endoftext\|>)`),
		Message:     "Prompt injection: model context delimiter — attempts to break instruction boundary",
		Remediation: "Remove model-specific delimiter tokens from skill description",
	},
	{
		ID:          "prompt/jailbreak-fiction",
		Severity:    finding.SeverityWarning,
		Pattern:     regexp.MustCompile(`(?i)(for\s+a\s+fictional\s+(story|scenario)|hypothetically\s+speaking|in\s+a\s+(simulation|hypothetical|fictional)\s+(scenario|world|context)|let('s|\s+us)\s+pretend|imagine\s+(you\s+are|that\s+you\b))`),
		Message:     "Prompt injection: fictional/hypothetical framing — common jailbreak technique",
		Remediation: "Remove fictional framing language that may be used to bypass content policies",
	},
	{
		ID:          "prompt/override-priority",
		Severity:    finding.SeverityWarning,
		Pattern:     regexp.MustCompile(`(?i)\b(OVERRIDE|NEW\s+TASK|SYSTEM\s+OVERRIDE):\s*`),
		Message:     "Prompt injection: priority override keyword — attempts to hijack AI attention",
		Remediation: "Remove priority override keywords (OVERRIDE:, NEW TASK:) from skill description",
	},
}

// benignStems are file names (case-insensitive, extension stripped) that
// hold legal or attribution boilerplate. They cannot instruct the model at
// runtime, and scanning them yields only false positives.
var benignStems = map[string]bool{
	"license":      true,
	"licence":      true,
	"changelog":    true,
	"notice":       true,
	"authors":      true,
	"contributors": true,
	"copying":      true,
	"patents":      true,
	"version":      true,
	"history":      true,
}

func isBenignFile(path string) bool {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return benignStems[strings.ToLower(stem)]
}

// PromptScanner detects prompt injection language in markdown, text and
// YAML files. Instruction text has no comment syntax, so every line is
// examined and inline suppression markers do not apply.
type PromptScanner struct{}

func (PromptScanner) Name() string { return "prompt" }

func (PromptScanner) Description() string {
	return "Prompt injection pattern scanner — built-in rules"
}

func (PromptScanner) IsAvailable() bool { return true }

func (p PromptScanner) Scan(ctx context.Context, path string, cfg *config.Config) finding.ScanResult {
	start := time.Now()
	files := CollectFiles(path, "md", "txt", "yaml", "yml")
	var findings []finding.Finding

	for _, file := range files {
		if isBenignFile(file) {
			continue
		}
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		findings = append(findings, scanLines(p.Name(), file, string(data), promptRules, cfg, lineOptions{})...)
	}

	return finding.ScanResult{
		ScannerName:  p.Name(),
		Findings:     findings,
		FilesScanned: len(files),
		DurationMs:   time.Since(start).Milliseconds(),
	}
}

func promptRuleInfos() []RuleInfo {
	return ruleInfos("prompt", promptRules)
}
