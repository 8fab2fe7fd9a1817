package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/koshgraph/builder/cache"
)

// CreateTestCache opens a render cache in a temporary directory that is
// closed when the test ends.
func CreateTestCache(t *testing.T) *cache.Manager {
	t.Helper()
	m, err := cache.Open(t.TempDir(), time.Second)
	if err != nil {
		t.Fatalf("Failed to open cache: %v", err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// WriteFiles writes files, keyed by path, into fs.
func WriteFiles(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for path, content := range files {
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", filepath.Dir(path), err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
}

// ProjectConfig is the kosh.yaml written by WriteProject.
const ProjectConfig = `base_url: https://example.com
taxonomies:
  - name: tags
build:
  cache_dir: .kosh-cache
  workers: 2
`

// ProjectFiles is a small content tree: a home page, a paginated posts
// section with two linked posts and a draft.
var ProjectFiles = map[string]string{
	"content/_index.md":       "---\ntitle: Home\n---\nWelcome.\n",
	"content/posts/_index.md": "---\ntitle: Posts\nsort_by: date\npaginate_by: 1\n---\n",
	"content/posts/first.md":  "---\ntitle: First\ndate: 2024-01-02\ntaxonomies:\n  tags: [go]\n---\nSee [the second post](second.md).\n",
	"content/posts/second.md": "---\ntitle: Second\ndate: 2024-01-01\ntaxonomies:\n  tags: [go, web]\n---\nBack to [the first post](@/posts/first.md).\n",
	"content/posts/draft.md":  "---\ntitle: Draft\ndate: 2024-01-03\ndraft: true\n---\nNot yet.\n",
}

// WriteProject writes kosh.yaml and ProjectFiles into a temporary directory
// and returns the path of kosh.yaml.
func WriteProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{"kosh.yaml": ProjectConfig}
	for rel, content := range ProjectFiles {
		files[rel] = content
	}
	abs := make(map[string]string, len(files))
	for rel, content := range files {
		abs[filepath.Join(dir, rel)] = content
	}
	WriteFiles(t, afero.NewOsFs(), abs)
	return filepath.Join(dir, "kosh.yaml")
}

// AssertFileExists checks if a file exists in the filesystem
func AssertFileExists(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	exists, err := afero.Exists(fs, path)
	if err != nil {
		t.Fatalf("Error checking file existence: %v", err)
	}
	if !exists {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	exists, err := afero.Exists(fs, path)
	if err != nil {
		t.Fatalf("Error checking file existence: %v", err)
	}
	if exists {
		t.Errorf("Expected file to not exist: %s", path)
	}
}
