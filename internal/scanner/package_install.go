package scanner

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/finding"
)

var (
	reNpmInstall = regexp.MustCompile(`(?i)\bnpm\s+(install|i|add)\b`)
	reBunAdd     = regexp.MustCompile(`(?i)\bbun\s+(add|install)\b`)
	rePipInstall = regexp.MustCompile(`(?i)\bpip3?\s+install\b`)
	reLatest     = regexp.MustCompile(`@latest\b`)

	// Both `--registry <url>` and `--registry=<url>` count as explicit.
	reHasRegistry = regexp.MustCompile(`(?i)--registry[=\s]`)
	reHasIndexURL = regexp.MustCompile(`(?i)(--index-url\s|-i\s)`)
	reRegistryURL = regexp.MustCompile(`(?i)--registry[=\s](https?://\S+)`)
)

// PackageInstallScanner flags package installation commands in shell
// scripts that can introduce supply-chain risk: installs without an
// explicit registry, unpinned @latest versions, and registry URLs outside
// the allowlist.
type PackageInstallScanner struct{}

func (PackageInstallScanner) Name() string { return "package_install" }

func (PackageInstallScanner) Description() string {
	return "Package install audit — detects unregistered/unpinned installs"
}

func (PackageInstallScanner) IsAvailable() bool { return true }

func (p PackageInstallScanner) Scan(ctx context.Context, path string, cfg *config.Config) finding.ScanResult {
	start := time.Now()
	files := CollectFiles(path, "sh", "bash", "zsh")
	var findings []finding.Finding

	emit := func(id, message, remediation, file string, lineNum int, line string) {
		findings = append(findings, finding.Finding{
			RuleID:      id,
			Message:     message,
			Severity:    finding.SeverityWarning,
			File:        file,
			Line:        lineNum,
			Scanner:     p.Name(),
			Snippet:     snippet(line),
			Remediation: remediation,
		})
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}

		for i, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSuffix(line, "\r")
			lineNum := i + 1

			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, "#!") {
				continue
			}
			if isSuppressedInline(line, true) {
				continue
			}

			if reNpmInstall.MatchString(line) && !reHasRegistry.MatchString(line) {
				emit("pkg/F1-npm",
					"npm install without --registry — may pull from unexpected source",
					"Specify --registry explicitly: npm install --registry https://registry.npmjs.org",
					file, lineNum, line)
			}
			if reBunAdd.MatchString(line) && !reHasRegistry.MatchString(line) {
				emit("pkg/F1-bun",
					"bun add without --registry — may pull from unexpected source",
					"Specify --registry explicitly",
					file, lineNum, line)
			}
			if rePipInstall.MatchString(line) && !reHasIndexURL.MatchString(line) {
				emit("pkg/F1-pip",
					"pip install without --index-url — may pull from unexpected source",
					"Specify --index-url explicitly: pip install --index-url https://pypi.org/simple/",
					file, lineNum, line)
			}
			if reLatest.MatchString(line) {
				emit("pkg/F2-unpinned",
					"@latest install — unpinned, supply chain risk on future runs",
					"Pin to an exact version: @1.2.3",
					file, lineNum, line)
			}

			if m := reRegistryURL.FindStringSubmatch(line); m != nil {
				url := m[1]
				// Compare hosts only, so a path segment like
				// https://evil.com/registry.npmjs.org/ cannot spoof an
				// allowlisted entry.
				hosts := extractHosts(url)
				allowed := len(hosts) > 0 && hostAllowed(hosts[0], cfg.Allowlist.Registries)
				if !allowed {
					emit("pkg/F3-registry",
						fmt.Sprintf("Registry URL not in allowlist: %s", url),
						"Add registry to allowlist.registries in oxidized-skills.yaml or use an approved registry",
						file, lineNum, line)
				}
			}
		}
	}

	return finding.ScanResult{
		ScannerName:  p.Name(),
		Findings:     findings,
		FilesScanned: len(files),
		DurationMs:   time.Since(start).Milliseconds(),
	}
}

func packageRuleInfos() []RuleInfo {
	return []RuleInfo{
		{
			ID:          "pkg/F1-npm",
			Severity:    finding.SeverityWarning,
			Scanner:     "package_install",
			Message:     "npm install without --registry — may pull from unexpected source",
			Remediation: "Specify --registry explicitly: npm install --registry https://registry.npmjs.org",
		},
		{
			ID:          "pkg/F1-bun",
			Severity:    finding.SeverityWarning,
			Scanner:     "package_install",
			Message:     "bun add without --registry — may pull from unexpected source",
			Remediation: "Specify --registry explicitly",
		},
		{
			ID:          "pkg/F1-pip",
			Severity:    finding.SeverityWarning,
			Scanner:     "package_install",
			Message:     "pip install without --index-url — may pull from unexpected source",
			Remediation: "Specify --index-url explicitly: pip install --index-url https://pypi.org/simple/",
		},
		{
			ID:          "pkg/F2-unpinned",
			Severity:    finding.SeverityWarning,
			Scanner:     "package_install",
			Message:     "@latest install — unpinned, supply chain risk on future runs",
			Remediation: "Pin to an exact version: @1.2.3",
		},
		{
			ID:          "pkg/F3-registry",
			Severity:    finding.SeverityWarning,
			Scanner:     "package_install",
			Message:     "Registry URL not in allowlist",
			Remediation: "Add registry to allowlist.registries in oxidized-skills.yaml or use an approved registry",
		},
	}
}
