package scanner

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/finding"
)

const goodSkillHeader = "---\n" +
	"name: pdf-extractor\n" +
	"description: Extracts text from PDF files. Use when the user asks for PDF text extraction.\n" +
	"---\n"

func scanFrontmatter(t *testing.T, content string) finding.ScanResult {
	t.Helper()
	dir := t.TempDir()
	writeSkillFile(t, dir, "SKILL.md", content)
	return FrontmatterScanner{}.Scan(context.Background(), dir, config.Default())
}

func TestFrontmatterScanner_ValidSkillPasses(t *testing.T) {
	result := scanFrontmatter(t, goodSkillHeader+"\n# PDF Extractor\n")

	if len(result.Findings) != 0 {
		t.Errorf("expected no findings, got %v", ruleIDs(result.Findings))
	}
	if result.FilesScanned != 1 {
		t.Errorf("expected 1 file scanned, got %d", result.FilesScanned)
	}
}

func TestFrontmatterScanner_MissingSkillMD(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "other.md", "not the manifest")

	result := FrontmatterScanner{}.Scan(context.Background(), dir, config.Default())

	f := findByRule(result.Findings, "frontmatter/missing-skill-md")
	if f == nil {
		t.Fatalf("expected frontmatter/missing-skill-md, got %v", ruleIDs(result.Findings))
	}
	if f.Severity != finding.SeverityError {
		t.Errorf("expected error severity, got %s", f.Severity)
	}
	if len(result.Findings) != 1 {
		t.Errorf("missing SKILL.md should be the only finding, got %v", ruleIDs(result.Findings))
	}
	if result.FilesScanned != 0 {
		t.Errorf("expected 0 files scanned, got %d", result.FilesScanned)
	}
}

func TestFrontmatterScanner_ReadmeWarning(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "SKILL.md", goodSkillHeader)
	writeSkillFile(t, dir, "README.md", "# docs")

	result := FrontmatterScanner{}.Scan(context.Background(), dir, config.Default())

	f := findByRule(result.Findings, "frontmatter/readme-in-skill")
	if f == nil {
		t.Fatalf("expected frontmatter/readme-in-skill, got %v", ruleIDs(result.Findings))
	}
	if !strings.HasSuffix(f.File, "README.md") {
		t.Errorf("finding should point at README.md, got %s", f.File)
	}
}

func TestFrontmatterScanner_NameValidation(t *testing.T) {
	tests := []struct {
		name string
		rule string
		sev  finding.Severity
	}{
		{"<script>alert</script>", "frontmatter/xml-in-frontmatter", finding.SeverityError},
		{"claude-pdf", "frontmatter/name-reserved-word", finding.SeverityError},
		{"anthropic-tools", "frontmatter/name-reserved-word", finding.SeverityError},
		{"My_Skill", "frontmatter/invalid-name-format", finding.SeverityWarning},
		{"skill name", "frontmatter/invalid-name-format", finding.SeverityWarning},
		{strings.Repeat("a", 70), "frontmatter/name-too-long", finding.SeverityWarning},
		{"helper", "frontmatter/name-too-vague", finding.SeverityWarning},
		{"pdf-utils", "frontmatter/name-too-vague", finding.SeverityWarning},
	}

	for _, tt := range tests {
		content := fmt.Sprintf("---\nname: %s\ndescription: Extracts text. Use when asked.\n---\n", tt.name)
		result := scanFrontmatter(t, content)

		f := findByRule(result.Findings, tt.rule)
		if f == nil {
			t.Errorf("name %q: expected %s, got %v", tt.name, tt.rule, ruleIDs(result.Findings))
			continue
		}
		if f.Severity != tt.sev {
			t.Errorf("%s: expected %s severity, got %s", tt.rule, tt.sev, f.Severity)
		}
	}
}

func TestFrontmatterScanner_NameLengthInMessage(t *testing.T) {
	content := fmt.Sprintf("---\nname: %s\ndescription: Extracts text. Use when asked.\n---\n", strings.Repeat("a", 70))
	result := scanFrontmatter(t, content)

	f := findByRule(result.Findings, "frontmatter/name-too-long")
	if f == nil {
		t.Fatalf("expected frontmatter/name-too-long, got %v", ruleIDs(result.Findings))
	}
	if !strings.Contains(f.Message, "70 chars") {
		t.Errorf("message should report the actual length, got %q", f.Message)
	}
}

func TestFrontmatterScanner_FieldLineNumbers(t *testing.T) {
	content := "---\n" + // line 1
		"name: Bad Name\n" + // line 2
		"description: I can extract text. Use when asked.\n" + // line 3
		"---\n"
	result := scanFrontmatter(t, content)

	name := findByRule(result.Findings, "frontmatter/invalid-name-format")
	if name == nil {
		t.Fatalf("expected frontmatter/invalid-name-format, got %v", ruleIDs(result.Findings))
	}
	if name.Line != 2 {
		t.Errorf("name finding: expected line 2, got %d", name.Line)
	}

	desc := findByRule(result.Findings, "frontmatter/description-not-third-person")
	if desc == nil {
		t.Fatalf("expected frontmatter/description-not-third-person, got %v", ruleIDs(result.Findings))
	}
	if desc.Line != 3 {
		t.Errorf("description finding: expected line 3, got %d", desc.Line)
	}
}

func TestFrontmatterScanner_DescriptionMissing(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no frontmatter block", "# Just a heading\n"},
		{"frontmatter without description", "---\nname: pdf-extractor\n---\n"},
	}

	for _, tt := range tests {
		result := scanFrontmatter(t, tt.content)
		f := findByRule(result.Findings, "frontmatter/description-missing")
		if f == nil {
			t.Errorf("%s: expected frontmatter/description-missing, got %v", tt.name, ruleIDs(result.Findings))
			continue
		}
		if f.Severity != finding.SeverityWarning {
			t.Errorf("%s: expected warning severity, got %s", tt.name, f.Severity)
		}
	}
}

func TestFrontmatterScanner_DescriptionQuality(t *testing.T) {
	tests := []struct {
		desc string
		rule string
		sev  finding.Severity
	}{
		{"I can extract text from PDFs. Use when needed.", "frontmatter/description-not-third-person", finding.SeverityWarning},
		{"Extracts text from PDF files.", "frontmatter/description-no-trigger", finding.SeverityInfo},
		{strings.Repeat("a", 1100), "frontmatter/description-too-long", finding.SeverityWarning},
		{"Renders <b>bold</b> text. Use when asked.", "frontmatter/xml-in-frontmatter", finding.SeverityError},
	}

	for _, tt := range tests {
		content := fmt.Sprintf("---\nname: pdf-extractor\ndescription: %s\n---\n", tt.desc)
		result := scanFrontmatter(t, content)

		f := findByRule(result.Findings, tt.rule)
		if f == nil {
			t.Errorf("description %.40q: expected %s, got %v", tt.desc, tt.rule, ruleIDs(result.Findings))
			continue
		}
		if f.Severity != tt.sev {
			t.Errorf("%s: expected %s severity, got %s", tt.rule, tt.sev, f.Severity)
		}
	}
}

func TestFrontmatterScanner_BareBashTool(t *testing.T) {
	content := "---\n" + // line 1
		"name: pdf-extractor\n" + // line 2
		"description: Extracts text. Use when asked.\n" + // line 3
		"allowed-tools:\n" + // line 4
		"  - Read\n" + // line 5
		"  - Bash\n" + // line 6
		"---\n"
	result := scanFrontmatter(t, content)

	f := findByRule(result.Findings, "frontmatter/bare-bash-tool")
	if f == nil {
		t.Fatalf("expected frontmatter/bare-bash-tool, got %v", ruleIDs(result.Findings))
	}
	if f.Line != 6 {
		t.Errorf("expected line 6, got %d", f.Line)
	}
}

func TestFrontmatterScanner_ScopedBashAllowed(t *testing.T) {
	content := "---\nname: pdf-extractor\ndescription: Extracts text. Use when asked.\n" +
		"allowed-tools:\n  - Bash(find,ls,cat)\n---\n"
	result := scanFrontmatter(t, content)

	if hasRule(result.Findings, "frontmatter/bare-bash-tool") {
		t.Errorf("scoped Bash(...) must not warn, got %v", ruleIDs(result.Findings))
	}
}

func TestFrontmatterScanner_BareBashScalarForm(t *testing.T) {
	content := "---\nname: pdf-extractor\ndescription: Extracts text. Use when asked.\n" +
		"allowed-tools: Bash\n---\n"
	result := scanFrontmatter(t, content)

	if !hasRule(result.Findings, "frontmatter/bare-bash-tool") {
		t.Errorf("expected frontmatter/bare-bash-tool for scalar form, got %v", ruleIDs(result.Findings))
	}
}

func TestFrontmatterScanner_BodyTooLong(t *testing.T) {
	content := goodSkillHeader + strings.Repeat("line\n", 500)
	result := scanFrontmatter(t, content)

	f := findByRule(result.Findings, "frontmatter/skill-body-too-long")
	if f == nil {
		t.Fatalf("expected frontmatter/skill-body-too-long, got %v", ruleIDs(result.Findings))
	}
	if !strings.Contains(f.Message, "504 lines") {
		t.Errorf("message should report the actual line count, got %q", f.Message)
	}
}

func TestFrontmatterScanner_BodyAtLimitPasses(t *testing.T) {
	content := goodSkillHeader + strings.Repeat("line\n", 496)
	result := scanFrontmatter(t, content)

	if hasRule(result.Findings, "frontmatter/skill-body-too-long") {
		t.Errorf("500 lines exactly must pass, got %v", ruleIDs(result.Findings))
	}
}

func TestFrontmatterScanner_WindowsPath(t *testing.T) {
	content := goodSkillHeader + "\nSee C:\\Tools\\bin for the binaries.\n"
	result := scanFrontmatter(t, content)

	f := findByRule(result.Findings, "frontmatter/windows-path")
	if f == nil {
		t.Fatalf("expected frontmatter/windows-path, got %v", ruleIDs(result.Findings))
	}
	if f.Line != 6 {
		t.Errorf("expected line 6, got %d", f.Line)
	}
}

func TestFrontmatterScanner_TimeSensitiveContent(t *testing.T) {
	content := goodSkillHeader + "\nThis endpoint works until January 2025.\n"
	result := scanFrontmatter(t, content)

	f := findByRule(result.Findings, "frontmatter/time-sensitive-content")
	if f == nil {
		t.Fatalf("expected frontmatter/time-sensitive-content, got %v", ruleIDs(result.Findings))
	}
	if f.Line != 6 {
		t.Errorf("expected line 6, got %d", f.Line)
	}
}

func TestFrontmatterScanner_MalformedFrontmatter(t *testing.T) {
	result := scanFrontmatter(t, "---\nname: [unclosed\n---\nbody\n")

	if !hasRule(result.Findings, "frontmatter/description-missing") {
		t.Errorf("malformed frontmatter should still report a missing description, got %v", ruleIDs(result.Findings))
	}
	if len(result.Findings) != 1 {
		t.Errorf("expected only the missing-description finding, got %v", ruleIDs(result.Findings))
	}
}
