package cli

import (
	"os"
	"path/filepath"
)

// findSkillDirs returns the immediate child directories of path that contain
// a SKILL.md, sorted by name (os.ReadDir returns entries sorted).
func findSkillDirs(path string) []string {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(path, entry.Name())
		if fileExists(filepath.Join(dir, "SKILL.md")) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
