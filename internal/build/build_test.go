package build

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Kush-Singh-26/koshgraph/builder/site"
	"github.com/Kush-Singh-26/koshgraph/builder/testutil"
	"github.com/Kush-Singh-26/koshgraph/builder/utils"
	"github.com/Kush-Singh-26/koshgraph/internal/project"
)

func openProject(t *testing.T, cfgPath string) *project.Project {
	t.Helper()
	p, err := project.Open(project.Options{ConfigPath: cfgPath}, nil)
	require.NoError(t, err)
	return p
}

func TestRun(t *testing.T) {
	cfgPath := testutil.WriteProject(t)
	p := openProject(t, cfgPath)

	var out bytes.Buffer
	s, err := Run(context.Background(), p, Options{Stdout: &out})
	require.NoError(t, err)
	require.Contains(t, out.String(), "📊 Built 2 sections and 2 pages")
	require.Contains(t, out.String(), "📝 Manifest written to")

	data, err := os.ReadFile(filepath.Join(p.Dir, DefaultManifest))
	require.NoError(t, err)
	var m site.Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	require.Equal(t, "https://example.com", m.BaseURL)
	require.Len(t, m.Pages, 2)
	require.Len(t, m.Sections, 2)
	require.Contains(t, m.URLs, "https://example.com/posts/page/2/")
	require.Contains(t, m.Redirects, site.Redirect{From: "/posts/page/1/", To: "https://example.com/posts/"})

	var first string
	for _, pv := range m.Pages {
		if pv.RelativePath == "posts/first.md" {
			first = pv.Content
		}
	}
	require.Contains(t, first, `href="https://example.com/posts/second/"`)

	require.EqualValues(t, 0, s.Metrics().CacheHits.Load())
	testutil.AssertFileExists(t, p.Fs, filepath.Join(p.Dir, ".kosh-cache", "render.db"))

	// an unchanged tree renders from cache
	s, err = Run(context.Background(), openProject(t, cfgPath), Options{Stdout: &out})
	require.NoError(t, err)
	require.EqualValues(t, 4, s.Metrics().CacheHits.Load())
}

func TestRun_CustomOutput(t *testing.T) {
	p := openProject(t, testutil.WriteProject(t))

	_, err := Run(context.Background(), p, Options{Output: "dist/site.json", Stdout: &bytes.Buffer{}})
	require.NoError(t, err)
	testutil.AssertFileExists(t, p.Fs, filepath.Join(p.Dir, "dist", "site.json"))
	testutil.AssertFileNotExists(t, p.Fs, filepath.Join(p.Dir, DefaultManifest))
}

func TestRun_FatalBrokenLink(t *testing.T) {
	cfgPath := testutil.WriteProject(t)
	dir := filepath.Dir(cfgPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(testutil.ProjectConfig+"markdown:\n  broken_links: error\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content", "posts", "broken.md"),
		[]byte("---\ntitle: Broken\ndate: 2024-02-01\n---\n[gone](gone.md)\n"), 0644))

	var out bytes.Buffer
	_, err := Run(context.Background(), openProject(t, cfgPath), Options{Stdout: &out})
	require.ErrorIs(t, err, ErrFailed)
	require.Contains(t, out.String(), "❌")
	require.Contains(t, out.String(), "gone.md")
	_, statErr := os.Stat(filepath.Join(dir, DefaultManifest))
	require.True(t, os.IsNotExist(statErr), "a failed build writes no manifest")
}

func TestRun_MalformedFrontMatter(t *testing.T) {
	cfgPath := testutil.WriteProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(cfgPath), "content", "bad.md"),
		[]byte("---\ntitle: [unclosed\n---\nbody\n"), 0644))

	var out bytes.Buffer
	_, err := Run(context.Background(), openProject(t, cfgPath), Options{Stdout: &out})
	require.ErrorIs(t, err, ErrFailed)
	require.Contains(t, out.String(), "bad.md")
}

func TestRun_Locked(t *testing.T) {
	p := openProject(t, testutil.WriteProject(t))

	lock, err := utils.AcquireBuildLock(filepath.Join(p.Dir, "public"))
	require.NoError(t, err)

	_, err = Run(context.Background(), p, Options{Stdout: &bytes.Buffer{}})
	require.ErrorIs(t, err, utils.ErrLocked)

	require.NoError(t, lock.Release())
	_, err = Run(context.Background(), p, Options{Stdout: &bytes.Buffer{}})
	require.NoError(t, err)
	testutil.AssertFileNotExists(t, p.Fs, filepath.Join(p.Dir, "public", utils.LockFileName))
}
