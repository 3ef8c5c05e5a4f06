package scanner

import (
	"regexp"
	"strings"

	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/finding"
)

// Rule is one compiled line-level detection pattern. Rule tables are built
// once at package init and shared read-only by every scan.
type Rule struct {
	ID          string
	Severity    finding.Severity
	Pattern     *regexp.Regexp
	Message     string
	Remediation string
	// Exempt, when non-nil, discards a match on the given line. Used by
	// the allowlist-gated network rules, where a line whose hosts are all
	// trusted (or that carries no extractable host) produces no finding.
	Exempt func(line string, cfg *config.Config) bool
}

// lineOptions controls the universal pre-match suppressions applied by
// scanLines.
type lineOptions struct {
	// SkipComments skips lines whose first non-blank character is '#',
	// except interpreter directives ("#!").
	SkipComments bool
	// InlineMarkers skips lines ending in an inline suppression marker.
	InlineMarkers bool
	// Shell judges inline markers with the shell tokenizer, so a marker
	// embedded inside a word or string literal does not count.
	Shell bool
}

// reInlineSuppress recognizes the trailing inline suppression markers
// "# audit:ignore" and "# oxidized-skills:ignore", case-insensitive. The
// marker must end the line; a marker followed by other text (including a
// closing quote) is not a suppression.
var reInlineSuppress = regexp.MustCompile(`(?i)\s*#\s*(audit|oxidized-skills):ignore\s*$`)

// isSuppressedInline reports whether line ends with an inline suppression
// marker. With shell lexing enabled the marker must additionally be a
// genuine trailing comment token.
func isSuppressedInline(line string, shell bool) bool {
	if !reInlineSuppress.MatchString(line) {
		return false
	}
	if shell {
		return shellCommentSuppression(line)
	}
	return true
}

// scanLines applies every rule to every line of content, honoring the
// comment-skip and inline-suppression conventions. Multiple rules may fire
// on the same line; each match produces an independent finding.
func scanLines(scannerName, file, content string, rules []Rule, cfg *config.Config, opts lineOptions) []finding.Finding {
	var findings []finding.Finding

	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		lineNum := i + 1

		if opts.SkipComments {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, "#!") {
				continue
			}
		}
		if opts.InlineMarkers && isSuppressedInline(line, opts.Shell) {
			continue
		}

		for i := range rules {
			r := &rules[i]
			if !r.Pattern.MatchString(line) {
				continue
			}
			if r.Exempt != nil && r.Exempt(line, cfg) {
				continue
			}
			findings = append(findings, finding.Finding{
				RuleID:      r.ID,
				Message:     r.Message,
				Severity:    r.Severity,
				File:        file,
				Line:        lineNum,
				Scanner:     scannerName,
				Snippet:     snippet(line),
				Remediation: r.Remediation,
			})
		}
	}
	return findings
}

// snippetMaxChars caps the display length of snippets, counted in
// characters rather than bytes.
const snippetMaxChars = 120

// snippet trims line and truncates it for display. Truncation happens on a
// rune boundary so multi-byte text is never split mid-character.
func snippet(line string) string {
	s := strings.TrimSpace(line)
	runes := []rune(s)
	if len(runes) <= snippetMaxChars {
		return s
	}
	return string(runes[:snippetMaxChars-3]) + "..."
}

// ruleInfos converts a rule table to the catalog metadata shape.
func ruleInfos(scannerName string, rules []Rule) []RuleInfo {
	infos := make([]RuleInfo, 0, len(rules))
	for _, r := range rules {
		infos = append(infos, RuleInfo{
			ID:          r.ID,
			Severity:    r.Severity,
			Scanner:     scannerName,
			Message:     r.Message,
			Remediation: r.Remediation,
		})
	}
	return infos
}
