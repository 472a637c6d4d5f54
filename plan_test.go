package unextract

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("expectations use forward-slash separators")
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "parent and current directory segments are stripped",
			in:   "../A/../A/./B.txt",
			want: "A/A/B.txt",
		},
		{
			name: "backslash separators are converted",
			in:   `dir\sub\file.txt`,
			want: "dir/sub/file.txt",
		},
		{
			name: "plain name is unchanged",
			in:   "file.txt",
			want: "file.txt",
		},
		{
			name: "nested name is unchanged",
			in:   "a/b/c.txt",
			want: "a/b/c.txt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestModeRoots(t *testing.T) {
	archivePath := filepath.Join("path", "to", "archive.zip")
	parent := filepath.Join("path", "to")

	tests := []struct {
		name    string
		mode    Mode
		want    []string
		wantErr bool
	}{
		{
			name: "files only",
			mode: ModeFile,
			want: []string{parent},
		},
		{
			name: "directory only",
			mode: ModeDir,
			want: []string{filepath.Join(parent, "archive")},
		},
		{
			name: "both",
			mode: ModeFile | ModeDir,
			want: []string{parent, filepath.Join(parent, "archive")},
		},
		{
			name:    "zero mode",
			mode:    0,
			wantErr: true,
		},
		{
			name:    "unknown bits",
			mode:    4,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.mode.roots(archivePath)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlan(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "archive.zip")

	write := func(path, content string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0666))
	}
	write(filepath.Join(dir, "a.txt"), "abc")
	write(filepath.Join(dir, "archive", "b.txt"), "hello")
	write(filepath.Join(dir, "wrong-size.txt"), "xx")

	entries := []CentralDirectoryEntry{
		{Name: "a.txt", UncompressedSize: 3},
		{Name: "b.txt", UncompressedSize: 5},
		{Name: "wrong-size.txt", UncompressedSize: 3},
		{Name: "missing.txt", UncompressedSize: 9},
	}

	t.Run("both roots", func(t *testing.T) {
		got, err := Plan(entries, archivePath, ModeFile|ModeDir)
		require.NoError(t, err)

		assert.Equal(t, []string{
			filepath.Join(dir, "a.txt"),
			filepath.Join(dir, "archive", "b.txt"),
		}, got)
	})

	t.Run("files only", func(t *testing.T) {
		got, err := Plan(entries, archivePath, ModeFile)
		require.NoError(t, err)

		assert.Equal(t, []string{filepath.Join(dir, "a.txt")}, got)
	})

	t.Run("directories are never planned", func(t *testing.T) {
		got, err := Plan([]CentralDirectoryEntry{{Name: "archive", UncompressedSize: 0}}, archivePath, ModeFile)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, err := Plan(entries, archivePath, 0)
		assert.Error(t, err)
	})
}

func TestEmptyAncestors(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "e"), 0755))

	paths := []string{
		filepath.Join(root, "a", "b", "c.txt"),
		filepath.Join(root, "a", "e", "d.txt"),
		filepath.Join(root, "top.txt"),
	}

	got := EmptyAncestors(paths, root)

	// deepest first so children are removed before their parents; the stop directory itself is excluded.
	assert.Equal(t, []string{
		filepath.Join(root, "a", "b"),
		filepath.Join(root, "a", "e"),
		filepath.Join(root, "a"),
	}, got)
}
