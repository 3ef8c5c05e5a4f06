package finding

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jbovet/oxidized-skills/internal/config"
)

// AuditStatus is the overall outcome of an audit.
type AuditStatus string

const (
	// StatusPassed means no active errors or warnings remain.
	StatusPassed AuditStatus = "passed"
	// StatusWarning means warnings are present but no errors, with strict
	// mode off.
	StatusWarning AuditStatus = "warning"
	// StatusFailed means errors are present, or warnings in strict mode.
	StatusFailed AuditStatus = "failed"
)

// RiskLevel is a coarse impact classification derived from the nature of
// the active findings, not just their count.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// criticalPrefixes are the rule families whose errors escalate the risk
// level to critical: remote code execution, reverse shells, and prompt
// injection.
var criticalPrefixes = []string{"bash/CAT-A", "bash/CAT-D", "prompt/"}

// AuditReport is the complete audit result for a single skill, built once
// by FromResults and immutable afterwards.
type AuditReport struct {
	AuditID string `json:"audit_id"`
	// Skill is the audited skill's name, derived from the directory name.
	Skill string `json:"skill"`
	// Version is the skill version from SKILL.md frontmatter, when present.
	Version        string      `json:"version,omitempty"`
	AuditTimestamp string      `json:"audit_timestamp"`
	Status         AuditStatus `json:"status"`
	RiskLevel      RiskLevel   `json:"risk_level"`
	// FilesScanned is the total across all scanners.
	FilesScanned   int          `json:"files_scanned"`
	ScannerResults []ScanResult `json:"scanner_results"`
	// Findings holds the active (non-suppressed) findings.
	Findings []Finding `json:"findings"`
	// Suppressed holds suppressed findings, kept for transparency.
	Suppressed []Finding `json:"suppressed"`
	// Passed mirrors Status == StatusPassed.
	Passed bool `json:"passed"`
}

// FromResults assembles an AuditReport from raw scanner results.
//
// Findings already marked suppressed by their producing scanner keep their
// own reason and bypass the suppression rules. Every other finding is
// checked against the suppression entries in declaration order; the first
// match wins.
func FromResults(skill string, results []ScanResult, suppressions []config.Suppression, strict bool) AuditReport {
	filesScanned := 0
	for _, r := range results {
		filesScanned += r.FilesScanned
	}

	var active, suppressed []Finding
	for _, r := range results {
		for _, f := range r.Findings {
			switch {
			case f.Suppressed:
				suppressed = append(suppressed, f)
			default:
				if s := findSuppression(&f, suppressions); s != nil {
					f.Suppressed = true
					f.SuppressionReason = s.Reason
					suppressed = append(suppressed, f)
				} else {
					active = append(active, f)
				}
			}
		}
	}

	status := computeStatus(active, strict)

	return AuditReport{
		AuditID:        uuid.NewString(),
		Skill:          skill,
		AuditTimestamp: time.Now().UTC().Format(time.RFC3339),
		Status:         status,
		RiskLevel:      computeRiskLevel(active),
		FilesScanned:   filesScanned,
		ScannerResults: results,
		Findings:       active,
		Suppressed:     suppressed,
		Passed:         status == StatusPassed,
	}
}

// CountBySeverity counts active errors, warnings, and info findings in a
// single pass over the findings list.
func (r *AuditReport) CountBySeverity() (errors, warnings, info int) {
	for _, f := range r.Findings {
		switch f.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		case SeverityInfo:
			info++
		}
	}
	return errors, warnings, info
}

func computeStatus(findings []Finding, strict bool) AuditStatus {
	hasErrors, hasWarnings := false, false
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			hasErrors = true
		case SeverityWarning:
			hasWarnings = true
		}
	}

	switch {
	case hasErrors:
		return StatusFailed
	case hasWarnings && strict:
		return StatusFailed
	case hasWarnings:
		return StatusWarning
	default:
		return StatusPassed
	}
}

func computeRiskLevel(findings []Finding) RiskLevel {
	hasCritical, hasErrors, hasWarnings := false, false, false
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			hasErrors = true
			for _, p := range criticalPrefixes {
				if strings.HasPrefix(f.RuleID, p) {
					hasCritical = true
					break
				}
			}
		case SeverityWarning:
			hasWarnings = true
		}
	}

	switch {
	case hasCritical:
		return RiskCritical
	case hasErrors:
		return RiskHigh
	case hasWarnings:
		return RiskMedium
	default:
		return RiskLow
	}
}

// findSuppression returns the first suppression entry matching the finding,
// or nil. Entries are evaluated in declaration order.
func findSuppression(f *Finding, suppressions []config.Suppression) *config.Suppression {
	for i := range suppressions {
		s := &suppressions[i]
		if s.Rule != f.RuleID {
			continue
		}
		// Path matching compares path components, never raw substrings:
		// a suppression for "test.sh" matches "/a/b/test.sh" but must not
		// match "/a/b/maltest.sh". A fileless finding is matched only by
		// an entry with an empty file field (the wildcard case).
		if f.File != "" {
			if !pathHasSuffix(f.File, s.File) {
				continue
			}
		} else if s.File != "" {
			continue
		}
		if s.Lines != "" && f.Line > 0 {
			start, end, ok := parseLineRange(s.Lines)
			if !ok || f.Line < start || f.Line > end {
				continue
			}
		}
		return s
	}
	return nil
}

// pathHasSuffix reports whether suffix matches path as a trailing run of
// whole path components. An empty suffix matches any path.
func pathHasSuffix(path, suffix string) bool {
	if suffix == "" {
		return true
	}
	have := strings.Split(filepath.ToSlash(path), "/")
	want := strings.Split(strings.TrimSuffix(filepath.ToSlash(suffix), "/"), "/")
	if len(want) > len(have) {
		return false
	}
	for i := 1; i <= len(want); i++ {
		if have[len(have)-i] != want[len(want)-i] {
			return false
		}
	}
	return true
}

// parseLineRange parses "N" as a one-line range and "A-B" as an inclusive
// range. Inverted or unparsable ranges report ok=false and therefore never
// match anything: a malformed suppression must fail closed, not act as a
// wildcard.
func parseLineRange(lines string) (start, end int, ok bool) {
	parts := strings.Split(lines, "-")
	switch len(parts) {
	case 1:
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, 0, false
		}
		return n, n, true
	case 2:
		a, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, 0, false
		}
		b, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, false
		}
		if a > b {
			return 0, 0, false
		}
		return a, b, true
	default:
		return 0, 0, false
	}
}
