// Package clean removes build artifacts: the render cache and the manifest.
package clean

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Kush-Singh-26/koshgraph/internal/project"
)

type Options struct {
	Manifest  string // path of the manifest, relative to the project
	KeepCache bool
	Stdout    io.Writer
}

// Run deletes what a build produced. Missing artifacts are not an error.
func Run(p *project.Project, opts Options) error {
	start := time.Now()
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	var failed []error
	if opts.Manifest != "" {
		target := p.Path(opts.Manifest)
		if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
			failed = append(failed, fmt.Errorf("remove manifest: %w", err))
		} else if err == nil {
			_, _ = fmt.Fprintf(out, "🧹 Removed %s\n", target)
		}
	}

	if !opts.KeepCache && p.Config.Build.CacheDir != "" {
		if err := removeDir(out, p.Path(p.Config.Build.CacheDir)); err != nil {
			failed = append(failed, err)
		}
	}

	if len(failed) > 0 {
		return errors.Join(failed...)
	}
	_, _ = fmt.Fprintf(out, "🧹 Clean finished in %v.\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// removeDir moves absPath aside, then deletes it.
func removeDir(out io.Writer, absPath string) error {
	if _, err := os.Stat(absPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	tempPath := filepath.Join(filepath.Dir(absPath),
		fmt.Sprintf("%s_deleting_%d", filepath.Base(absPath), time.Now().UnixNano()))

	_, _ = fmt.Fprintf(out, "🧹 Removing '%s'...\n", absPath)
	if err := os.Rename(absPath, tempPath); err != nil {
		tempPath = absPath
	}
	if err := os.RemoveAll(tempPath); err != nil {
		return fmt.Errorf("remove %s: %w", absPath, err)
	}
	return nil
}
