package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/jbovet/oxidized-skills/internal/finding"
)

var (
	header    = color.New(color.Bold, color.BgBlue, color.FgWhite)
	section   = color.New(color.Bold, color.Underline)
	dim       = color.New(color.Faint)
	redBold   = color.New(color.FgRed, color.Bold)
	yelBold   = color.New(color.FgYellow, color.Bold)
	greenBold = color.New(color.FgGreen, color.Bold)
	blue      = color.New(color.FgBlue)
)

// renderPretty produces the terminal report: header, per-scanner status,
// active findings with locations and snippets, suppressed findings, and a
// one-line summary.
func renderPretty(report *finding.AuditReport) string {
	var out strings.Builder

	out.WriteString("\n" + header.Sprintf("  Skill Audit: %s  ", report.Skill) + "\n")
	out.WriteString(fmt.Sprintf("  Timestamp: %s\n\n", report.AuditTimestamp))

	out.WriteString(section.Sprint("Scanners") + "\n")
	for _, result := range report.ScannerResults {
		var icon, detail string
		if result.Skipped {
			icon = dim.Sprint("SKIP")
			reason := result.SkipReason
			if reason == "" {
				reason = "skipped"
			}
			detail = dim.Sprint(reason)
		} else {
			hasErr, hasWarn := false, false
			for _, f := range result.Findings {
				switch f.Severity {
				case finding.SeverityError:
					hasErr = true
				case finding.SeverityWarning:
					hasWarn = true
				}
			}
			switch {
			case hasErr:
				icon = redBold.Sprint("FAIL")
			case hasWarn:
				icon = yelBold.Sprint("WARN")
			default:
				icon = greenBold.Sprint("PASS")
			}
			detail = fmt.Sprintf("%d findings, %d files scanned", len(result.Findings), result.FilesScanned)
		}
		out.WriteString(fmt.Sprintf("  [%s] %-20s %s\n", icon, result.ScannerName, detail))
	}
	out.WriteString("\n")

	if len(report.Findings) > 0 {
		out.WriteString(section.Sprint("Findings") + "\n")
		for _, f := range report.Findings {
			var sev string
			switch f.Severity {
			case finding.SeverityError:
				sev = redBold.Sprint("ERROR")
			case finding.SeverityWarning:
				sev = yelBold.Sprint(" WARN")
			default:
				sev = blue.Sprint(" INFO")
			}

			out.WriteString(fmt.Sprintf("  [%s] %s %s\n", sev, dim.Sprintf("%-25s", f.RuleID), f.Message))
			if f.File != "" {
				location := f.File
				if f.Line > 0 {
					location = fmt.Sprintf("%s:%d", f.File, f.Line)
				}
				out.WriteString("         " + dim.Sprint(location) + "\n")
			}
			if f.Snippet != "" {
				out.WriteString("         > " + dim.Sprint(f.Snippet) + "\n")
			}
		}
		out.WriteString("\n")
	}

	if len(report.Suppressed) > 0 {
		out.WriteString(fmt.Sprintf("%s (%d suppressed)\n", section.Sprint("Suppressed"), len(report.Suppressed)))
		for _, f := range report.Suppressed {
			reason := f.SuppressionReason
			if reason == "" {
				reason = "no reason given"
			}
			out.WriteString(fmt.Sprintf("  [SKIP] %s %s\n", dim.Sprintf("%-25s", f.RuleID), dim.Sprint(reason)))
		}
		out.WriteString("\n")
	}

	var status string
	switch report.Status {
	case finding.StatusPassed:
		status = greenBold.Sprint("PASSED")
	case finding.StatusWarning:
		status = yelBold.Sprint("WARNING")
	default:
		status = redBold.Sprint("FAILED")
	}
	errors, warnings, info := report.CountBySeverity()
	out.WriteString(fmt.Sprintf("Result: %s  |  %d errors, %d warnings, %d info, %d suppressed\n",
		status, errors, warnings, info, len(report.Suppressed)))

	return out.String()
}
