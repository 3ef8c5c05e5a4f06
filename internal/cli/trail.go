package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/finding"
	"github.com/jbovet/oxidized-skills/internal/logger"
)

// writeTrail appends a one-line summary of a completed audit run to the
// trail file. Trail problems go to stderr and never change the audit
// outcome or exit code.
func writeTrail(report *finding.AuditReport, path string, strict bool, elapsed time.Duration) {
	trailPath, err := config.TrailPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: audit trail disabled: %v\n", err)
		return
	}

	trail, err := logger.New(trailPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open audit trail: %v\n", err)
		return
	}
	defer trail.Close()

	errors, warnings, info := report.CountBySeverity()
	entry := logger.TrailEntry{
		Timestamp:    report.AuditTimestamp,
		AuditID:      report.AuditID,
		Skill:        report.Skill,
		Path:         path,
		Status:       string(report.Status),
		RiskLevel:    string(report.RiskLevel),
		Errors:       errors,
		Warnings:     warnings,
		Info:         info,
		Suppressed:   len(report.Suppressed),
		FilesScanned: report.FilesScanned,
		Strict:       strict,
		DurationMs:   elapsed.Milliseconds(),
	}
	if err := trail.Log(entry); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not write audit trail: %v\n", err)
	}
}
