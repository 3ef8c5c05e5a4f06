package scanner

import (
	"context"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/finding"
	uniscan "github.com/jbovet/oxidized-skills/internal/unicode"
)

// UnicodeScanner detects Unicode smuggling in instruction files and shell
// scripts: zero-width characters, bidirectional overrides, tag characters,
// raw controls, and Latin-lookalike homoglyphs. Inline suppression markers
// are deliberately not honored here, because these characters corrupt the
// very display a reviewer would use to vet the marker.
type UnicodeScanner struct{}

func (UnicodeScanner) Name() string { return "unicode" }

func (UnicodeScanner) Description() string {
	return "Unicode smuggling scanner — invisible, bidi and homoglyph characters"
}

func (UnicodeScanner) IsAvailable() bool { return true }

func (u UnicodeScanner) Scan(ctx context.Context, path string, cfg *config.Config) finding.ScanResult {
	start := time.Now()
	files := CollectFiles(path, "md", "txt", "yaml", "yml", "sh", "bash", "zsh")
	var findings []finding.Finding

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		if !utf8.Valid(data) {
			findings = append(findings, finding.Finding{
				RuleID:      "unicode/invalid-utf8",
				Message:     "File contains invalid UTF-8 byte sequences",
				Severity:    finding.SeverityError,
				File:        file,
				Scanner:     u.Name(),
				Remediation: "Re-save the file as valid UTF-8; binary content does not belong in skill files",
			})
			continue
		}

		for i, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSuffix(line, "\r")
			// One finding per category per line keeps a line stuffed
			// with invisible characters from flooding the report.
			seen := map[uniscan.Category]bool{}
			for _, t := range uniscan.InspectLine(line) {
				if seen[t.Category] {
					continue
				}
				seen[t.Category] = true

				severity := finding.SeverityWarning
				if t.Blocking {
					severity = finding.SeverityError
				}
				findings = append(findings, finding.Finding{
					RuleID:      "unicode/" + string(t.Category),
					Message:     t.Description,
					Severity:    severity,
					File:        file,
					Line:        i + 1,
					Column:      t.Column,
					Scanner:     u.Name(),
					Snippet:     snippet(line),
					Remediation: unicodeRemediation(t.Category),
				})
			}
		}
	}

	return finding.ScanResult{
		ScannerName:  u.Name(),
		Findings:     findings,
		FilesScanned: len(files),
		DurationMs:   time.Since(start).Milliseconds(),
	}
}

func unicodeRemediation(cat uniscan.Category) string {
	switch cat {
	case uniscan.CategoryZeroWidth:
		return "Remove invisible characters; re-type the line in a plain text editor"
	case uniscan.CategoryBidi:
		return "Remove Unicode directional formatting characters"
	case uniscan.CategoryTagChar:
		return "Remove tag characters (U+E0001..U+E007F)"
	case uniscan.CategoryControlChar:
		return "Remove raw control characters"
	case uniscan.CategoryHomoglyph:
		return "Replace lookalike characters with their Latin equivalents"
	default:
		return "Remove the flagged character"
	}
}

func unicodeRuleInfos() []RuleInfo {
	return []RuleInfo{
		{
			ID:          "unicode/invalid-utf8",
			Severity:    finding.SeverityError,
			Scanner:     "unicode",
			Message:     "File contains invalid UTF-8 byte sequences",
			Remediation: "Re-save the file as valid UTF-8; binary content does not belong in skill files",
		},
		{
			ID:          "unicode/zero-width",
			Severity:    finding.SeverityError,
			Scanner:     "unicode",
			Message:     "Zero-width character can hide content from display",
			Remediation: "Remove invisible characters; re-type the line in a plain text editor",
		},
		{
			ID:          "unicode/bidi-override",
			Severity:    finding.SeverityError,
			Scanner:     "unicode",
			Message:     "Bidirectional override can make displayed text differ from interpreted text",
			Remediation: "Remove Unicode directional formatting characters",
		},
		{
			ID:          "unicode/tag-char",
			Severity:    finding.SeverityError,
			Scanner:     "unicode",
			Message:     "Unicode tag character can smuggle hidden instructions",
			Remediation: "Remove tag characters (U+E0001..U+E007F)",
		},
		{
			ID:          "unicode/control-char",
			Severity:    finding.SeverityError,
			Scanner:     "unicode",
			Message:     "Control character should not appear in skill files",
			Remediation: "Remove raw control characters",
		},
		{
			ID:          "unicode/homoglyph",
			Severity:    finding.SeverityWarning,
			Scanner:     "unicode",
			Message:     "Non-Latin character visually confusable with Latin",
			Remediation: "Replace lookalike characters with their Latin equivalents",
		},
	}
}
