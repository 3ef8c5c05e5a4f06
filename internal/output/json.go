package output

import (
	"encoding/json"

	"github.com/jbovet/oxidized-skills/internal/finding"
)

type jsonSummary struct {
	Errors     int `json:"errors"`
	Warnings   int `json:"warnings"`
	Info       int `json:"info"`
	Suppressed int `json:"suppressed"`
}

type jsonOutput struct {
	Skill          string              `json:"skill"`
	Version        *string             `json:"version"`
	AuditTimestamp string              `json:"audit_timestamp"`
	Status         finding.AuditStatus `json:"status"`
	RiskLevel      finding.RiskLevel   `json:"risk_level"`
	Passed         bool                `json:"passed"`
	Summary        jsonSummary         `json:"summary"`
	Findings       []finding.Finding   `json:"findings"`
	Suppressed     []finding.Finding   `json:"suppressed"`
}

// renderJSON produces the pretty-printed JSON document: skill metadata, a
// severity summary, active findings, and suppressed findings.
func renderJSON(report *finding.AuditReport) (string, error) {
	errors, warnings, info := report.CountBySeverity()

	var version *string
	if report.Version != "" {
		version = &report.Version
	}

	out := jsonOutput{
		Skill:          report.Skill,
		Version:        version,
		AuditTimestamp: report.AuditTimestamp,
		Status:         report.Status,
		RiskLevel:      report.RiskLevel,
		Passed:         report.Passed,
		Summary: jsonSummary{
			Errors:     errors,
			Warnings:   warnings,
			Info:       info,
			Suppressed: len(report.Suppressed),
		},
		Findings:   report.Findings,
		Suppressed: report.Suppressed,
	}
	// Keep the arrays as [] rather than null for empty reports.
	if out.Findings == nil {
		out.Findings = []finding.Finding{}
	}
	if out.Suppressed == nil {
		out.Suppressed = []finding.Finding{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
