package scanner

import (
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
)

// CollectFiles walks the tree under root and returns every regular file
// whose extension (case-insensitive, without the dot) appears in exts.
// Version-control internals are skipped; walk errors on individual entries
// are ignored so one unreadable directory never aborts a scan.
func CollectFiles(root string, exts ...string) []string {
	var files []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		for _, e := range exts {
			if ext == e {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	return files
}

// toolOnPath reports whether an executable named tool exists on PATH.
// External scanners use this for their availability check.
func toolOnPath(tool string) bool {
	_, err := exec.LookPath(tool)
	return err == nil
}
