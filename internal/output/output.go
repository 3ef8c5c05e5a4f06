// Package output renders audit reports in the three supported formats:
// colored text for terminals, JSON for scripting, and SARIF 2.1.0 for
// CI/CD integration.
package output

import (
	"fmt"

	"github.com/jbovet/oxidized-skills/internal/finding"
)

// Format selects an output renderer.
type Format string

const (
	// FormatPretty is human-readable colored text with summary sections.
	FormatPretty Format = "pretty"
	// FormatJSON is machine-readable JSON.
	FormatJSON Format = "json"
	// FormatSARIF is SARIF 2.1.0 for CI/CD tool integration.
	FormatSARIF Format = "sarif"
)

// ParseFormat validates a format name from the command line.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPretty, FormatJSON, FormatSARIF:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown format %q (expected pretty, json, or sarif)", s)
	}
}

// Render formats a report in the requested format.
func Render(report *finding.AuditReport, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(report)
	case FormatSARIF:
		return renderSARIF(report)
	default:
		return renderPretty(report), nil
	}
}
