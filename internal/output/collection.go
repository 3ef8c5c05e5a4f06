package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/jbovet/oxidized-skills/internal/finding"
)

var (
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
)

// RenderCollectionSummary produces the table printed after an audit-all run
// over a collection directory: one row per skill with its status icon and
// severity counts, plus a failed/warnings/passed total.
func RenderCollectionSummary(collectionPath string, reports []finding.AuditReport) string {
	var out strings.Builder
	separator := strings.Repeat("─", 54)

	out.WriteString("\n")
	out.WriteString(section.Sprintf("  Collection Summary: %s  (%d skills)", collectionPath, len(reports)))
	out.WriteString("\n")
	out.WriteString(dim.Sprint(separator) + "\n")

	var nFailed, nWarned, nPassed int
	for i := range reports {
		report := &reports[i]

		var icon, status string
		switch report.Status {
		case finding.StatusFailed:
			nFailed++
			icon = red.Sprint("✗")
			status = redBold.Sprint("FAILED ")
		case finding.StatusWarning:
			nWarned++
			icon = yellow.Sprint("⚠")
			status = yelBold.Sprint("WARNING")
		default:
			nPassed++
			icon = green.Sprint("✓")
			status = greenBold.Sprint("PASSED ")
		}

		errors, warnings, info := report.CountBySeverity()
		out.WriteString(fmt.Sprintf("  %s  %-22s %s  %de %dw %di\n",
			icon, report.Skill, status, errors, warnings, info))
	}

	out.WriteString(dim.Sprint(separator) + "\n")
	out.WriteString(fmt.Sprintf("  Total: %s  %s  %s\n",
		redBold.Sprintf("%d failed", nFailed),
		yelBold.Sprintf("%d warnings", nWarned),
		greenBold.Sprintf("%d passed", nPassed)))

	return out.String()
}
