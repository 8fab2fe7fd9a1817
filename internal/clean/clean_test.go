package clean

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Kush-Singh-26/koshgraph/builder/testutil"
	"github.com/Kush-Singh-26/koshgraph/internal/build"
	"github.com/Kush-Singh-26/koshgraph/internal/project"
)

func builtProject(t *testing.T) *project.Project {
	t.Helper()
	p, err := project.Open(project.Options{ConfigPath: testutil.WriteProject(t)}, nil)
	require.NoError(t, err)
	_, err = build.Run(context.Background(), p, build.Options{Stdout: &bytes.Buffer{}})
	require.NoError(t, err)
	return p
}

func TestRun(t *testing.T) {
	p := builtProject(t)
	manifest := filepath.Join(p.Dir, build.DefaultManifest)
	cacheDir := filepath.Join(p.Dir, ".kosh-cache")
	testutil.AssertFileExists(t, p.Fs, manifest)
	testutil.AssertFileExists(t, p.Fs, cacheDir)

	var out bytes.Buffer
	require.NoError(t, Run(p, Options{Manifest: build.DefaultManifest, Stdout: &out}))
	testutil.AssertFileNotExists(t, p.Fs, manifest)
	testutil.AssertFileNotExists(t, p.Fs, cacheDir)
	require.Contains(t, out.String(), "🧹 Clean finished")

	// nothing left to remove
	require.NoError(t, Run(p, Options{Manifest: build.DefaultManifest, Stdout: &bytes.Buffer{}}))
}

func TestRun_KeepCache(t *testing.T) {
	p := builtProject(t)

	require.NoError(t, Run(p, Options{Manifest: build.DefaultManifest, KeepCache: true, Stdout: &bytes.Buffer{}}))
	testutil.AssertFileNotExists(t, p.Fs, filepath.Join(p.Dir, build.DefaultManifest))
	testutil.AssertFileExists(t, p.Fs, filepath.Join(p.Dir, ".kosh-cache", "render.db"))
}
