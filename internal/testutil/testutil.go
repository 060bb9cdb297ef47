package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

// MemFS creates an in-memory filesystem for testing.
func MemFS() afero.Fs {
	return afero.NewMemMapFs()
}

// WriteFile writes content to a file in the given filesystem.
func WriteFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// ReadFile reads content from a file in the given filesystem.
func ReadFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

// FileExists checks if a file exists in the filesystem.
func FileExists(fs afero.Fs, path string) bool {
	exists, _ := afero.Exists(fs, path)
	return exists
}

// DirExists checks if a directory exists in the filesystem.
func DirExists(fs afero.Fs, path string) bool {
	exists, _ := afero.DirExists(fs, path)
	return exists
}

// CreateFileTree creates multiple files from a map of path -> content.
// Paths are slash separated and relative to root.
func CreateFileTree(t *testing.T, fs afero.Fs, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, fs, filepath.Join(root, filepath.FromSlash(name)), content)
	}
}

// MkdirAll creates directories relative to root.
func MkdirAll(t *testing.T, fs afero.Fs, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		path := filepath.Join(root, filepath.FromSlash(d))
		if err := fs.MkdirAll(path, 0755); err != nil {
			t.Fatalf("MkdirAll(%s) error: %v", path, err)
		}
	}
}

// NewProject builds an in-memory project rooted at /project with a package.json
// manifest plus the given files, and returns the filesystem and root.
func NewProject(t *testing.T, files map[string]string) (afero.Fs, string) {
	t.Helper()
	fs := MemFS()
	root := filepath.FromSlash("/project")
	WriteFile(t, fs, filepath.Join(root, "package.json"), `{"name": "fixture"}`)
	CreateFileTree(t, fs, root, files)
	return fs, root
}

// ListFiles returns all files under root, relative and slash separated, sorted.
func ListFiles(t *testing.T, fs afero.Fs, root string) []string {
	t.Helper()
	var files []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk(%s) error: %v", root, err)
	}
	sort.Strings(files)
	return files
}
