package output

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/jbovet/oxidized-skills/internal/finding"
	"github.com/jbovet/oxidized-skills/internal/version"
)

// Minimal SARIF 2.1.0 document model, covering the subset this tool
// emits.

type sarifLog struct {
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string     `json:"id"`
	ShortDescription sarifText  `json:"shortDescription"`
	Help             *sarifText `json:"help,omitempty"`
}

type sarifText struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Level     string          `json:"level"`
	Message   sarifText       `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

// renderSARIF emits a single-run SARIF 2.1.0 document. Suppressed
// findings are included alongside active ones so CI systems see the full
// picture; severity info maps to the SARIF "note" level.
func renderSARIF(report *finding.AuditReport) (string, error) {
	all := make([]finding.Finding, 0, len(report.Findings)+len(report.Suppressed))
	all = append(all, report.Findings...)
	all = append(all, report.Suppressed...)

	// One reporting descriptor per distinct rule, sorted by id for stable
	// output.
	ruleSample := map[string]finding.Finding{}
	for _, f := range all {
		if _, ok := ruleSample[f.RuleID]; !ok {
			ruleSample[f.RuleID] = f
		}
	}
	ruleIDs := make([]string, 0, len(ruleSample))
	for id := range ruleSample {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)

	ruleIndex := make(map[string]int, len(ruleIDs))
	rules := make([]sarifRule, 0, len(ruleIDs))
	for i, id := range ruleIDs {
		ruleIndex[id] = i
		f := ruleSample[id]
		rule := sarifRule{
			ID:               id,
			ShortDescription: sarifText{Text: f.Message},
		}
		if f.Remediation != "" {
			rule.Help = &sarifText{Text: f.Remediation}
		}
		rules = append(rules, rule)
	}

	results := make([]sarifResult, 0, len(all))
	for _, f := range all {
		level := "note"
		switch f.Severity {
		case finding.SeverityError:
			level = "error"
		case finding.SeverityWarning:
			level = "warning"
		}

		result := sarifResult{
			RuleID:    f.RuleID,
			RuleIndex: ruleIndex[f.RuleID],
			Level:     level,
			Message:   sarifText{Text: f.Message},
		}
		if f.File != "" {
			physical := sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{
					URI: strings.ReplaceAll(f.File, `\`, "/"),
				},
			}
			if f.Line > 0 {
				physical.Region = &sarifRegion{StartLine: f.Line}
			}
			result.Locations = []sarifLocation{{PhysicalLocation: physical}}
		}
		results = append(results, result)
	}

	doc := sarifLog{
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:    "oxidized-skills",
				Version: version.Version,
				Rules:   rules,
			}},
			Results: results,
		}},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
