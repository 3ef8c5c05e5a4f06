// Package scanner implements the pluggable security scanners that audit a
// skill directory.
//
// Scanners fall into two categories: built-in ones that need no external
// tools (prompt, bash_patterns, package_install, frontmatter, unicode) and
// adapters around external tools on PATH (shellcheck, secrets via gitleaks,
// semgrep). Every scanner implements the Scanner interface; All returns
// the full roster in registration order.
package scanner

import (
	"context"

	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/finding"
)

// Scanner is a pluggable security scanner. Implementations must be safe
// for concurrent use: the audit runner executes scanners in parallel.
type Scanner interface {
	// Name returns the scanner's unique identifier (e.g. "prompt").
	Name() string
	// Description returns a short human-readable description.
	Description() string
	// IsAvailable reports whether the scanner's external dependencies are
	// installed. Built-in scanners always return true.
	IsAvailable() bool
	// Scan executes the scanner against the given skill directory.
	Scan(ctx context.Context, path string, cfg *config.Config) finding.ScanResult
}

// All returns every registered scanner. The slice order is the
// registration order, which the audit runner preserves when materializing
// results.
func All() []Scanner {
	return []Scanner{
		PromptScanner{},
		BashPatternScanner{},
		PackageInstallScanner{},
		FrontmatterScanner{},
		UnicodeScanner{},
		ShellCheckScanner{},
		SecretsScanner{},
		SemgrepScanner{},
	}
}

// RuleInfo describes a single audit rule for the list-rules and explain
// commands.
type RuleInfo struct {
	ID          string
	Severity    finding.Severity
	Scanner     string
	Message     string
	Remediation string
}

// AllRules aggregates rule metadata from every scanner.
func AllRules() []RuleInfo {
	var rules []RuleInfo
	rules = append(rules, bashRuleInfos()...)
	rules = append(rules, promptRuleInfos()...)
	rules = append(rules, packageRuleInfos()...)
	rules = append(rules, frontmatterRuleInfos()...)
	rules = append(rules, unicodeRuleInfos()...)
	rules = append(rules, shellcheckRuleInfos()...)
	rules = append(rules, secretsRuleInfos()...)
	rules = append(rules, semgrepRuleInfos()...)
	return rules
}
