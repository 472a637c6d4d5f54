package unextract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Mode selects the directories that are searched for extracted archive contents.
type Mode uint8

const (
	// ModeFile searches the archive's own directory, for archives extracted in place.
	ModeFile Mode = 1 << iota
	// ModeDir searches the directory named after the archive's stem, for archives extracted into a folder.
	ModeDir
)

// roots expands the mode into the ordered list of directories to search, relative to the archive's location.
func (m Mode) roots(archivePath string) ([]string, error) {
	if m == 0 || m&^(ModeFile|ModeDir) != 0 {
		return nil, fmt.Errorf("invalid mode: %d", m)
	}

	parent := filepath.Dir(archivePath)

	var roots []string
	if m&ModeFile != 0 {
		roots = append(roots, parent)
	}
	if m&ModeDir != 0 {
		stem, _ := StemAndExt(archivePath)
		roots = append(roots, filepath.Join(parent, stem))
	}

	return roots, nil
}

// Plan returns the paths that may be safely deleted because they were extracted from the archive: for each
// search root selected by mode, an entry matches when a regular file with the entry's normalized name exists
// under that root and its size equals the entry's uncompressed size exactly. The result is sorted.
//
// Files that cannot be inspected are left out of the plan rather than failing it.
func Plan(entries []CentralDirectoryEntry, archivePath string, mode Mode) ([]string, error) {
	roots, err := mode.roots(archivePath)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, root := range roots {
		for _, e := range entries {
			path := filepath.Join(root, NormalizeName(e.Name))

			fi, err := os.Stat(path)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
			if fi.Size() == int64(e.UncompressedSize) {
				paths = append(paths, path)
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// NormalizeName converts a stored entry name into a relative path safe to join under a search root: path
// separators are converted to the platform's and parent or current directory segments are stripped, e.g.
// "../A/../A/./B.txt" becomes "A/A/B.txt".
func NormalizeName(name string) string {
	if runtime.GOOS == "windows" {
		name = strings.ReplaceAll(name, "/", `\`)
		name = strings.ReplaceAll(name, `..\`, "")
		return strings.ReplaceAll(name, `.\`, "")
	}

	name = strings.ReplaceAll(name, `\`, "/")
	name = strings.ReplaceAll(name, "../", "")
	return strings.ReplaceAll(name, "./", "")
}

// EmptyAncestors returns the existing ancestor directories of the given paths, deepest first so that children
// are removed before their parents. The walk stops at (and excludes) the stop directory.
//
// Emptiness is not checked here; callers probe with IsEmptyDir right before removal since each removal may
// empty the next directory up.
func EmptyAncestors(paths []string, stop string) []string {
	seen := make(map[string]bool)
	for _, path := range paths {
		for dir := filepath.Dir(path); !seen[dir] && dir != stop; dir = filepath.Dir(dir) {
			if dir == filepath.Dir(dir) {
				// reached a filesystem root.
				break
			}
			if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
				seen[dir] = true
			}
		}
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}

	sortByDepth(dirs)
	return dirs
}

// sortByDepth orders paths by descending separator count, ties broken lexicographically.
func sortByDepth(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		di := strings.Count(paths[i], string(filepath.Separator))
		dj := strings.Count(paths[j], string(filepath.Separator))
		if di != dj {
			return di > dj
		}
		return paths[i] < paths[j]
	})
}
