package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/finding"
)

// vagueNameTerms are generic segments that by themselves make a skill name
// meaningless.
var vagueNameTerms = map[string]bool{
	"helper":    true,
	"utils":     true,
	"tools":     true,
	"data":      true,
	"files":     true,
	"documents": true,
}

// reFirstPerson catches first and second person voice in descriptions,
// which the skills authoring guide requires to be third person.
var reFirstPerson = regexp.MustCompile(`(?i)\b(I can|I will|I'll|I am|I'm|you can|you should|you will|you'll)\b`)

// reWindowsPath matches drive-letter and backslash-separated paths.
var reWindowsPath = regexp.MustCompile(`[a-zA-Z]:\\|[a-zA-Z0-9_][\\][a-zA-Z0-9_]`)

// reTimeSensitive matches date-conditional language like "before August
// 2025" or "as of 2024" that goes stale over time.
var reTimeSensitive = regexp.MustCompile(`(?i)\b(before|after|until|since|as of|by)\s+\w*\s*(january|february|march|april|may|june|july|august|september|october|november|december)?\s*\d{4}\b`)

// triggerPhrases signal that a description says when to invoke the skill,
// not just what it does. The agent picks between many skills on the
// description alone, so trigger context matters for discovery.
var triggerPhrases = []string{
	"use when",
	"when the user",
	"when working with",
	"when asked",
	"when you need",
	"trigger",
	"invoke when",
}

// fmField is a frontmatter value with the 1-indexed file line it came from.
type fmField struct {
	Value string
	Line  int
}

type frontmatter struct {
	Name         *fmField
	Description  *fmField
	AllowedTools []fmField
}

// parseFrontmatter extracts the name, description and allowed-tools fields
// from the leading YAML frontmatter block of content. It returns nil when
// the file does not open with a "---" delimiter or the block is not valid
// YAML. Node line numbers are shifted by one so they refer to lines of the
// whole file rather than the block.
func parseFrontmatter(content string) *frontmatter {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(strings.TrimSuffix(lines[0], "\r")) != "---" {
		return nil
	}
	end := len(lines)
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(strings.TrimSuffix(lines[i], "\r")) == "---" {
			end = i
			break
		}
	}
	block := strings.Join(lines[1:end], "\n")

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return nil
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil
	}

	fm := &frontmatter{}
	mapping := doc.Content[0]
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, val := mapping.Content[i], mapping.Content[i+1]
		switch key.Value {
		case "name":
			if v := strings.TrimSpace(val.Value); v != "" {
				fm.Name = &fmField{Value: v, Line: val.Line + 1}
			}
		case "description":
			if v := strings.TrimSpace(val.Value); v != "" {
				fm.Description = &fmField{Value: v, Line: val.Line + 1}
			}
		case "allowed-tools":
			switch val.Kind {
			case yaml.SequenceNode:
				for _, item := range val.Content {
					if v := strings.TrimSpace(item.Value); v != "" {
						fm.AllowedTools = append(fm.AllowedTools, fmField{Value: v, Line: item.Line + 1})
					}
				}
			case yaml.ScalarNode:
				if v := strings.TrimSpace(val.Value); v != "" {
					fm.AllowedTools = append(fm.AllowedTools, fmField{Value: v, Line: val.Line + 1})
				}
			}
		}
	}
	return fm
}

// hasAngleBrackets reports whether s contains XML/HTML angle brackets in
// literal or entity-encoded form.
func hasAngleBrackets(s string) bool {
	return strings.Contains(s, "<") || strings.Contains(s, ">") ||
		strings.Contains(s, "&lt;") || strings.Contains(s, "&gt;") ||
		strings.Contains(s, "&#")
}

// countLines counts lines the way a text editor displays them: a trailing
// newline does not start an extra empty line.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// firstMatchingLine returns the 1-indexed number of the first line of
// content matched by re, or 0 when nothing matches.
func firstMatchingLine(content string, re *regexp.Regexp) int {
	for i, line := range strings.Split(content, "\n") {
		if re.MatchString(strings.TrimSuffix(line, "\r")) {
			return i + 1
		}
	}
	return 0
}

// FrontmatterScanner validates SKILL.md and its YAML frontmatter: presence
// of the file, the name, description and allowed-tools fields, and body
// hygiene rules such as length, backslash paths, and stale date
// conditions.
type FrontmatterScanner struct{}

func (FrontmatterScanner) Name() string { return "frontmatter" }

func (FrontmatterScanner) Description() string {
	return "SKILL.md frontmatter and allowed-tools audit"
}

func (FrontmatterScanner) IsAvailable() bool { return true }

func (f FrontmatterScanner) Scan(ctx context.Context, path string, cfg *config.Config) finding.ScanResult {
	start := time.Now()
	skillMD := filepath.Join(path, "SKILL.md")
	var findings []finding.Finding

	emit := func(id string, severity finding.Severity, message, remediation, file string, line int) {
		findings = append(findings, finding.Finding{
			RuleID:      id,
			Message:     message,
			Severity:    severity,
			File:        file,
			Line:        line,
			Scanner:     f.Name(),
			Remediation: remediation,
		})
	}

	if _, err := os.Stat(skillMD); err != nil {
		emit("frontmatter/missing-skill-md", finding.SeverityError,
			"SKILL.md not found in skill root",
			"Create a SKILL.md file in the skill root with required frontmatter fields",
			skillMD, 0)
		return finding.ScanResult{
			ScannerName: f.Name(),
			Findings:    findings,
			DurationMs:  time.Since(start).Milliseconds(),
		}
	}

	readme := filepath.Join(path, "README.md")
	if _, err := os.Stat(readme); err == nil {
		emit("frontmatter/readme-in-skill", finding.SeverityWarning,
			"README.md found in skill folder — use the description field in SKILL.md instead",
			"Remove README.md and move documentation into the SKILL.md description field; README.md is not used by the agent runtime",
			readme, 0)
	}

	data, err := os.ReadFile(skillMD)
	if err != nil {
		return finding.ScanResult{
			ScannerName:  f.Name(),
			Findings:     findings,
			FilesScanned: 1,
			Error:        fmt.Sprintf("Failed to read SKILL.md: %v", err),
			DurationMs:   time.Since(start).Milliseconds(),
		}
	}
	content := string(data)

	fm := parseFrontmatter(content)
	if fm != nil {
		if fm.Name != nil {
			f.validateName(emit, fm.Name, skillMD)
		}
		for _, tool := range fm.AllowedTools {
			trimmed := strings.TrimSpace(tool.Value)
			if strings.EqualFold(trimmed, "bash") && !strings.Contains(trimmed, "(") {
				emit("frontmatter/bare-bash-tool", finding.SeverityWarning,
					"Unscoped 'Bash' in allowed-tools grants unrestricted shell access",
					"Scope Bash to specific commands: e.g., Bash(find,ls,cat,grep)",
					skillMD, tool.Line)
			}
		}
	}

	// Runs even without frontmatter, so a SKILL.md with no "---" block
	// still reports a missing description.
	var desc *fmField
	if fm != nil {
		desc = fm.Description
	}
	f.validateDescription(emit, desc, skillMD)

	if n := countLines(content); n > 500 {
		emit("frontmatter/skill-body-too-long", finding.SeverityWarning,
			fmt.Sprintf("SKILL.md is %d lines — maximum is 500", n),
			"Trim SKILL.md to 500 lines or fewer",
			skillMD, 0)
	}

	// Only the first occurrence is reported for the body sweeps, to keep
	// output concise.
	if line := firstMatchingLine(content, reWindowsPath); line > 0 {
		emit("frontmatter/windows-path", finding.SeverityWarning,
			"Windows-style backslash path in SKILL.md — use forward slashes",
			"Replace backslash paths with forward slashes (e.g. path/to/file)",
			skillMD, line)
	}
	if line := firstMatchingLine(content, reTimeSensitive); line > 0 {
		emit("frontmatter/time-sensitive-content", finding.SeverityWarning,
			"SKILL.md contains time-sensitive date condition — this will become stale",
			"Move dated content into an 'Old patterns' collapsible section instead",
			skillMD, line)
	}

	return finding.ScanResult{
		ScannerName:  f.Name(),
		Findings:     findings,
		FilesScanned: 1,
		DurationMs:   time.Since(start).Milliseconds(),
	}
}

type emitFunc func(id string, severity finding.Severity, message, remediation, file string, line int)

func (FrontmatterScanner) validateName(emit emitFunc, name *fmField, skillMD string) {
	val, line := name.Value, name.Line

	if hasAngleBrackets(val) {
		emit("frontmatter/xml-in-frontmatter", finding.SeverityError,
			"XML/HTML angle brackets in 'name' field — potential prompt injection vector",
			"Remove angle brackets from the name field",
			skillMD, line)
	}

	lower := strings.ToLower(val)
	if strings.Contains(lower, "claude") || strings.Contains(lower, "anthropic") {
		emit("frontmatter/name-reserved-word", finding.SeverityError,
			"Skill name contains reserved word 'claude' or 'anthropic'",
			"Choose a name that does not reference Claude or Anthropic brand names",
			skillMD, line)
	}

	if strings.ToLower(val) != val || strings.Contains(val, " ") || strings.Contains(val, "_") {
		emit("frontmatter/invalid-name-format", finding.SeverityWarning,
			"Skill name contains uppercase letters, spaces, or underscores — use lowercase-kebab-case",
			"Rename to lowercase-kebab-case (e.g. 'my-skill' not 'My_Skill')",
			skillMD, line)
	}

	if len(val) > 64 {
		emit("frontmatter/name-too-long", finding.SeverityWarning,
			fmt.Sprintf("Skill name is %d chars — maximum is 64", len(val)),
			"Shorten the skill name to 64 characters or fewer",
			skillMD, line)
	}

	for _, seg := range strings.Split(lower, "-") {
		if vagueNameTerms[seg] {
			emit("frontmatter/name-too-vague", finding.SeverityWarning,
				"Skill name uses a vague generic term — choose a descriptive name",
				"Rename to something specific (e.g. 'github-pr-creator' not 'tools')",
				skillMD, line)
			break
		}
	}
}

func (FrontmatterScanner) validateDescription(emit emitFunc, desc *fmField, skillMD string) {
	if desc == nil || strings.TrimSpace(desc.Value) == "" {
		line := 0
		if desc != nil {
			line = desc.Line
		}
		emit("frontmatter/description-missing", finding.SeverityWarning,
			"Skill description is missing or empty",
			"Add a meaningful description field to SKILL.md frontmatter",
			skillMD, line)
		return
	}
	val, line := desc.Value, desc.Line

	if hasAngleBrackets(val) {
		emit("frontmatter/xml-in-frontmatter", finding.SeverityError,
			"XML/HTML angle brackets in 'description' field — potential prompt injection vector",
			"Remove angle brackets from the description field",
			skillMD, line)
	}

	if len(val) > 1024 {
		emit("frontmatter/description-too-long", finding.SeverityWarning,
			fmt.Sprintf("Description is %d chars — maximum is 1024", len(val)),
			"Shorten the description to 1024 characters or fewer",
			skillMD, line)
	}

	if reFirstPerson.MatchString(val) {
		emit("frontmatter/description-not-third-person", finding.SeverityWarning,
			"Description uses first or second person — use third person (e.g. 'This skill...')",
			"Rewrite the description in third person",
			skillMD, line)
	}

	lower := strings.ToLower(val)
	hasTrigger := false
	for _, p := range triggerPhrases {
		if strings.Contains(lower, p) {
			hasTrigger = true
			break
		}
	}
	if !hasTrigger {
		emit("frontmatter/description-no-trigger", finding.SeverityInfo,
			"Description doesn't include 'when to use' context — add trigger phrases (e.g. 'Use when...')",
			"Append: 'Use when <specific trigger condition>.' to the description",
			skillMD, line)
	}
}

func frontmatterRuleInfos() []RuleInfo {
	return []RuleInfo{
		{
			ID:          "frontmatter/missing-skill-md",
			Severity:    finding.SeverityError,
			Scanner:     "frontmatter",
			Message:     "SKILL.md not found in skill root",
			Remediation: "Create a SKILL.md file in the skill root with required frontmatter fields",
		},
		{
			ID:          "frontmatter/readme-in-skill",
			Severity:    finding.SeverityWarning,
			Scanner:     "frontmatter",
			Message:     "README.md found in skill folder — use the description field instead",
			Remediation: "Remove README.md and move documentation into the SKILL.md description field",
		},
		{
			ID:          "frontmatter/xml-in-frontmatter",
			Severity:    finding.SeverityError,
			Scanner:     "frontmatter",
			Message:     "XML/HTML angle brackets in frontmatter field — potential prompt injection vector",
			Remediation: "Remove angle brackets from the name or description fields",
		},
		{
			ID:          "frontmatter/name-reserved-word",
			Severity:    finding.SeverityError,
			Scanner:     "frontmatter",
			Message:     "Skill name contains reserved word 'claude' or 'anthropic'",
			Remediation: "Choose a name that does not reference Claude or Anthropic brand names",
		},
		{
			ID:          "frontmatter/invalid-name-format",
			Severity:    finding.SeverityWarning,
			Scanner:     "frontmatter",
			Message:     "Skill name must be lowercase-kebab-case",
			Remediation: "Rename to lowercase-kebab-case (e.g. 'my-skill' not 'My_Skill')",
		},
		{
			ID:          "frontmatter/name-too-long",
			Severity:    finding.SeverityWarning,
			Scanner:     "frontmatter",
			Message:     "Skill name exceeds 64 characters",
			Remediation: "Shorten the skill name to 64 characters or fewer",
		},
		{
			ID:          "frontmatter/description-missing",
			Severity:    finding.SeverityWarning,
			Scanner:     "frontmatter",
			Message:     "Skill description is missing or empty",
			Remediation: "Add a meaningful description field to SKILL.md frontmatter",
		},
		{
			ID:          "frontmatter/description-too-long",
			Severity:    finding.SeverityWarning,
			Scanner:     "frontmatter",
			Message:     "Description exceeds 1024 characters",
			Remediation: "Shorten the description to 1024 characters or fewer",
		},
		{
			ID:          "frontmatter/bare-bash-tool",
			Severity:    finding.SeverityWarning,
			Scanner:     "frontmatter",
			Message:     "Unscoped 'Bash' in allowed-tools grants unrestricted shell access",
			Remediation: "Scope Bash to specific commands: e.g., Bash(find,ls,cat,grep)",
		},
		{
			ID:          "frontmatter/name-too-vague",
			Severity:    finding.SeverityWarning,
			Scanner:     "frontmatter",
			Message:     "Skill name uses a vague generic term",
			Remediation: "Choose a descriptive name (e.g. 'github-pr-creator' not 'tools')",
		},
		{
			ID:          "frontmatter/description-not-third-person",
			Severity:    finding.SeverityWarning,
			Scanner:     "frontmatter",
			Message:     "Description uses first or second person instead of third person",
			Remediation: "Rewrite the description in third person (e.g. 'This skill creates...')",
		},
		{
			ID:          "frontmatter/skill-body-too-long",
			Severity:    finding.SeverityWarning,
			Scanner:     "frontmatter",
			Message:     "SKILL.md exceeds 500 lines",
			Remediation: "Trim SKILL.md to 500 lines or fewer",
		},
		{
			ID:          "frontmatter/windows-path",
			Severity:    finding.SeverityWarning,
			Scanner:     "frontmatter",
			Message:     "Windows-style backslash path in SKILL.md — use forward slashes",
			Remediation: "Replace backslash paths with forward slashes (e.g. path/to/file)",
		},
		{
			ID:          "frontmatter/description-no-trigger",
			Severity:    finding.SeverityInfo,
			Scanner:     "frontmatter",
			Message:     "Description doesn't include 'when to use' context",
			Remediation: "Append 'Use when <specific trigger condition>.' to the description",
		},
		{
			ID:          "frontmatter/time-sensitive-content",
			Severity:    finding.SeverityWarning,
			Scanner:     "frontmatter",
			Message:     "SKILL.md contains a time-sensitive date condition that will become stale",
			Remediation: "Move dated content into an 'Old patterns' collapsible section",
		},
	}
}
