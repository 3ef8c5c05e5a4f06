// Package audit orchestrates a full security audit of a skill directory:
// it fans out to every registered scanner, collects their results, applies
// the suppression policy, and assembles the final report.
package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fatih/color"

	"github.com/jbovet/oxidized-skills/internal/config"
	"github.com/jbovet/oxidized-skills/internal/finding"
	"github.com/jbovet/oxidized-skills/internal/scanner"
)

// Run executes all registered scanners against the skill directory at
// path and returns the assembled report.
//
// Scanners run concurrently; the results slice preserves registration
// order regardless of completion order. Scanners disabled in the config
// and scanners whose external tool is missing still appear in the report,
// marked skipped with a distinct reason.
func Run(ctx context.Context, path string, cfg *config.Config) finding.AuditReport {
	all := scanner.All()

	nActive := 0
	for _, s := range all {
		if cfg.IsScannerEnabled(s.Name()) {
			nActive++
		}
	}
	progress(nActive, len(all)-nActive)

	results := make([]finding.ScanResult, len(all))
	var wg sync.WaitGroup
	for i, s := range all {
		i, s := i, s // per-iteration copies for the goroutine (go directive < 1.22)
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch {
			case !cfg.IsScannerEnabled(s.Name()):
				results[i] = finding.Skipped(s.Name(), "disabled in config")
			case !s.IsAvailable():
				results[i] = finding.Skipped(s.Name(), s.Name()+" not found on PATH")
			default:
				results[i] = s.Scan(ctx, path, cfg)
			}
		}()
	}
	wg.Wait()

	suppressions := config.LoadSuppressions(path)
	return finding.FromResults(SkillName(path), results, suppressions, cfg.Strict.Enabled)
}

// progress writes the scanner count header to stderr, dimmed, so it never
// pollutes --format json or sarif output on stdout.
func progress(active, disabled int) {
	plural := "s"
	if active == 1 {
		plural = ""
	}
	dim := color.New(color.Faint)
	if disabled > 0 {
		dim.Fprintln(color.Error, fmt.Sprintf("Running %d scanner%s… (%d disabled)", active, plural, disabled))
	} else {
		dim.Fprintln(color.Error, fmt.Sprintf("Running %d scanner%s…", active, plural))
	}
}

// SkillName derives the skill name from its directory path: the last path
// component, or "unknown" when the path has none.
func SkillName(path string) string {
	base := filepath.Base(filepath.Clean(path))
	switch base {
	case "/", ".", "..", "":
		return "unknown"
	}
	return base
}
