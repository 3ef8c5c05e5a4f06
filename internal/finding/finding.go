// Package finding defines the core data types of the audit pipeline: the
// Finding produced by scanners, the per-scanner ScanResult, and the final
// AuditReport with its status and risk classification.
package finding

// Severity classifies how serious a finding is.
type Severity string

const (
	// SeverityError marks an issue that must be resolved before the skill
	// can be trusted.
	SeverityError Severity = "error"
	// SeverityWarning marks a potential issue that should be reviewed but
	// may be acceptable.
	SeverityWarning Severity = "warning"
	// SeverityInfo marks an observation that does not affect the audit
	// outcome.
	SeverityInfo Severity = "info"
)

// Finding is a single security issue detected by a scanner.
//
// Findings can be suppressed either by an inline marker ("# audit:ignore")
// or by an entry in a .oxidized-skills-ignore file. Suppressed findings are
// moved to AuditReport.Suppressed instead of AuditReport.Findings.
type Finding struct {
	// RuleID is the stable rule identifier, namespaced by family
	// (e.g. "bash/CAT-A1", "prompt/override-ignore").
	RuleID   string   `json:"rule_id"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	// File is the path to the source file. Empty when the finding is not
	// tied to a specific file.
	File string `json:"file,omitempty"`
	// Line is the 1-based line number. Zero when unknown.
	Line int `json:"line,omitempty"`
	// Column is the 1-based column number. Zero when unknown.
	Column int `json:"column,omitempty"`
	// Scanner names the detector that produced this finding.
	Scanner string `json:"scanner"`
	// Snippet shows the offending line, truncated for display.
	Snippet           string `json:"snippet,omitempty"`
	Suppressed        bool   `json:"suppressed"`
	SuppressionReason string `json:"suppression_reason,omitempty"`
	Remediation       string `json:"remediation,omitempty"`
}

// ScanResult is the aggregated output of one scanner run.
//
// Scanners that did not run (missing tool, disabled in config) are
// represented as skipped results so the report always accounts for the
// full scanner roster.
type ScanResult struct {
	ScannerName  string    `json:"scanner_name"`
	Findings     []Finding `json:"findings"`
	FilesScanned int       `json:"files_scanned"`
	Skipped      bool      `json:"skipped"`
	SkipReason   string    `json:"skip_reason,omitempty"`
	// Error holds a fatal scanner error. The scanner still contributes a
	// result; the error never aborts sibling scanners.
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Skipped returns a ScanResult for a scanner that did not run.
func Skipped(name, reason string) ScanResult {
	return ScanResult{
		ScannerName: name,
		Skipped:     true,
		SkipReason:  reason,
	}
}
