package unextract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Remove deletes the named file or directory. Directories must be empty.
func Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf(`remove "%s" error: %w`, path, err)
	}
	return nil
}

// IsEmptyDir reports whether the named directory holds no entries.
func IsEmptyDir(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf(`open directory "%s" error: %w`, path, err)
	}
	defer f.Close()

	switch _, err = f.Readdirnames(1); err {
	case io.EOF:
		return true, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf(`read directory "%s" error: %w`, path, err)
	}
}

// StemAndExt is a variant of filepath.Ext that allows extended extensions to be detected while also returning
// the stem.
//
// For example, `filepath.Ext("file.tar.gz")` would return ".gz", but `StemAndExt("file.tar.gz")` would return
// ".tar.gz" for the extension, "file" for the stem. The stem names the directory that ModeDir searches for
// extracted contents, so "file.tar.gz" maps to "file", not "file.tar".
//
// StemAndExt will only accept file extensions of 5 characters or less, so if there is no `.` in the last 6
// characters, the returned ext will be empty string unlike filepath.Ext which will keep searching until the
// last path separator or `.` is found.
func StemAndExt(path string) (stem, ext string) {
	n := len(path) - 1
	for i, j := n, max(0, n-6); i >= j; i-- {
		switch path[i] {
		case '\\', '/':
			stem = path[i+1:]
			return
		case '.':
			ext = path[i:] + ext
			path = path[:i]
			n = len(path)
			i, j = n, max(0, n-6)
			continue
		}
	}

	stem = filepath.Base(path)
	return
}
