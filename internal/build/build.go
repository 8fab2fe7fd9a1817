// Package build runs a full site build and writes its manifest.
package build

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/Kush-Singh-26/koshgraph/builder/errs"
	"github.com/Kush-Singh-26/koshgraph/builder/logfields"
	"github.com/Kush-Singh-26/koshgraph/builder/metrics"
	"github.com/Kush-Singh-26/koshgraph/builder/site"
	"github.com/Kush-Singh-26/koshgraph/builder/utils"
	"github.com/Kush-Singh-26/koshgraph/internal/project"
)

// DefaultManifest is where the manifest goes when no output path is given.
const DefaultManifest = "public/manifest.json"

// ErrFailed is returned when the build report holds fatal errors.
var ErrFailed = errors.New("build failed")

type Options struct {
	Output string    // manifest path, relative to the project
	Stdout io.Writer
}

// Run builds the project and writes the manifest atomically. The manifest
// is only replaced by a successful build, and the output directory stays
// locked until Run returns.
func Run(ctx context.Context, p *project.Project, opts Options) (*site.Site, error) {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	if opts.Output == "" {
		opts.Output = DefaultManifest
	}
	target := p.Path(opts.Output)

	lock, err := utils.AcquireBuildLock(filepath.Dir(target))
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Release() }()

	docs, err := p.Documents(ctx)
	if err != nil {
		if errors.Is(err, project.ErrConfig) {
			return nil, err
		}
		report := errs.NewReport()
		report.Add(err)
		PrintReport(out, report)
		return nil, fmt.Errorf("%w: %w", ErrFailed, err)
	}

	cm, err := p.OpenCache()
	if err != nil {
		p.Logger.Warn("Render cache unavailable, building without it", logfields.Error(err))
	}
	if cm != nil {
		defer func() { _ = cm.Close() }()
	}

	m := metrics.NewBuildMetrics()
	siteOpts := []site.Option{site.WithLogger(p.Logger), site.WithMetrics(m)}
	if cm != nil {
		siteOpts = append(siteOpts, site.WithCache(cm))
	}
	s := site.New(p.Config, siteOpts...)

	report := s.Build(ctx, p.ContentRoot, docs)
	PrintReport(out, report)
	if report.HasFatal() {
		return s, fmt.Errorf("%w: %w", ErrFailed, report.Err())
	}

	manifest, err := s.Manifest()
	if err != nil {
		return s, err
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return s, fmt.Errorf("encode manifest: %w", err)
	}

	if err := atomic.WriteFile(target, bytes.NewReader(data)); err != nil {
		return s, fmt.Errorf("write manifest: %w", err)
	}

	_, _ = fmt.Fprint(out, m.String())
	_, _ = fmt.Fprintf(out, "📝 Manifest written to %s\n", target)
	return s, nil
}

// PrintReport lists every collected error, fatal ones first.
func PrintReport(w io.Writer, report *errs.Report) {
	for _, e := range report.Fatal() {
		_, _ = fmt.Fprintf(w, "❌ %v\n", e)
	}
	for _, e := range report.Errors() {
		switch {
		case e.Fatal():
		case e.Severity == errs.SeverityWarning:
			_, _ = fmt.Fprintf(w, "⚠️  %v\n", e)
		default:
			_, _ = fmt.Fprintf(w, "⚠️  skipped: %v\n", e)
		}
	}
}
