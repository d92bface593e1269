package blankscan

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover walks root and returns every file whose lowercased extension is in
// exts, sorted lexicographically. Unreadable directories are skipped.
// exts entries must be lowercase with a leading dot.
func Discover(root string, exts []string) ([]string, error) {
	allow := make(map[string]bool, len(exts))
	for _, e := range exts {
		allow[e] = true
	}
	return discover(root, allow, slog.LevelDebug)
}

// discover logs each subdirectory it enters at dirLevel; root is left to the caller.
func discover(root string, allow map[string]bool, dirLevel slog.Level) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			slog.Debug("blankscan: skip unreadable", "path", path, "error", err.Error())
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root {
				slog.Log(context.Background(), dirLevel, "blankscan: entering directory", "path", path)
			}
			return nil
		}
		if allow[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// unit is one independently scanned slice of the source tree.
type unit struct {
	dir       string
	recursive bool
}

// partition splits root into one unit per immediate subdirectory plus, when
// root itself holds files, one unit for those files (listed non-recursively).
func partition(root string) ([]unit, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var units []unit
	hasFiles := false
	for _, e := range entries {
		if e.IsDir() {
			units = append(units, unit{dir: filepath.Join(root, e.Name()), recursive: true})
			continue
		}
		hasFiles = true
	}
	if hasFiles {
		units = append(units, unit{dir: root})
	}
	return units, nil
}

// listFiles returns the allowed files directly inside dir, sorted.
func listFiles(dir string, allow map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if allow[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// files enumerates the candidate files of u.
func (u unit) files(allow map[string]bool, dirLevel slog.Level) ([]string, error) {
	if u.recursive {
		return discover(u.dir, allow, dirLevel)
	}
	return listFiles(u.dir, allow)
}
