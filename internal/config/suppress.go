package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Suppression silences a specific audit finding. Entries live in a
// .oxidized-skills-ignore file at the root of a skill directory:
//
//	suppress:
//	  - rule: bash/CAT-H1
//	    file: scripts/setup.sh
//	    lines: 10-20
//	    reason: Downloads only from the pinned internal mirror
//	    ticket: SEC-1234
//
// A suppression matches a finding when rule equals the finding's rule id,
// file matches the finding's path as a component suffix (empty string acts
// as a wildcard), and lines (when set) contains the finding's line.
type Suppression struct {
	Rule string `yaml:"rule"`
	File string `yaml:"file"`
	// Lines is a single line ("15") or an inclusive range ("10-20").
	Lines  string `yaml:"lines,omitempty"`
	Reason string `yaml:"reason"`
	Ticket string `yaml:"ticket,omitempty"`
}

type suppressionFile struct {
	Suppress []Suppression `yaml:"suppress"`
}

// LoadSuppressions reads the .oxidized-skills-ignore file inside skillPath.
// A missing or unreadable file yields an empty list; a file that fails to
// parse yields an empty list with a warning on stderr. The suppression
// policy fails open at the file level, while individual entries with bad
// line ranges fail closed at match time.
func LoadSuppressions(skillPath string) []Suppression {
	ignorePath := filepath.Join(skillPath, DefaultIgnoreFile)
	data, err := os.ReadFile(ignorePath)
	if err != nil {
		return nil
	}

	var sf suppressionFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to parse %s: %v\n", DefaultIgnoreFile, err)
		return nil
	}
	return sf.Suppress
}
