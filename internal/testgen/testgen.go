// Package testgen builds on-disk fixtures for tests: library trees with book
// files, metadata sidecars, and plugin directories.
package testgen

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// BookOptions configures a generated book file.
type BookOptions struct {
	Size     int       // bytes of filler content
	Modified time.Time // defaults to the time of creation
}

// LibraryDir creates a temporary library root that is removed when the test
// completes.
func LibraryDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// SeriesDir creates a series directory under root holding one empty book file
// per name. It returns the directory followed by the book paths in the order
// given.
func SeriesDir(t *testing.T, root, name string, books ...string) (string, []string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create series directory %s: %v", dir, err)
	}
	paths := make([]string, 0, len(books))
	for _, b := range books {
		paths = append(paths, BookFile(t, dir, b, BookOptions{}))
	}
	return dir, paths
}

// BookFile writes a book file of opts.Size bytes and sets its modification
// time.
func BookFile(t *testing.T, dir, name string, opts BookOptions) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, make([]byte, opts.Size), 0600); err != nil {
		t.Fatalf("failed to write book %s: %v", path, err)
	}
	if !opts.Modified.IsZero() {
		if err := os.Chtimes(path, opts.Modified, opts.Modified); err != nil {
			t.Fatalf("failed to set mtime of %s: %v", path, err)
		}
	}
	return path
}

// Sidecar writes content as the metadata sidecar of the book at bookPath.
func Sidecar(t *testing.T, bookPath, content string) string {
	t.Helper()
	path := bookPath + ".metadata.json"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write sidecar %s: %v", path, err)
	}
	return path
}

// Manifest returns a minimal valid plugin manifest.
func Manifest(id, version string) string {
	return fmt.Sprintf(`{"manifestVersion": 1, "id": %q, "name": %q, "version": %q}`, id, id, version)
}

// Plugin writes a plugin directory named dir under root.
func Plugin(t *testing.T, root, dir, manifest, mainJS string) string {
	t.Helper()
	path := filepath.Join(root, dir)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("failed to create plugin directory %s: %v", path, err)
	}
	for name, content := range map[string]string{"manifest.json": manifest, "main.js": mainJS} {
		if err := os.WriteFile(filepath.Join(path, name), []byte(content), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return path
}
