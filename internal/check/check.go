// Package check builds a site without writing output and reports every
// broken link, conflict and malformed document.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Kush-Singh-26/koshgraph/builder/errs"
	"github.com/Kush-Singh-26/koshgraph/builder/site"
	"github.com/Kush-Singh-26/koshgraph/internal/build"
	"github.com/Kush-Singh-26/koshgraph/internal/project"
)

// ErrProblems is returned when the check found fatal errors, or any
// error at all in strict mode.
var ErrProblems = errors.New("check found problems")

type Options struct {
	Strict bool // warnings fail the check too
	Stdout io.Writer
}

// Run checks the project. The render cache is not used.
func Run(ctx context.Context, p *project.Project, opts Options) (*errs.Report, error) {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	report := errs.NewReport()
	docs, err := p.Documents(ctx)
	if err != nil {
		if errors.Is(err, project.ErrConfig) {
			return nil, err
		}
		report.Add(err)
	}

	var s *site.Site
	if !report.HasFatal() {
		s = site.New(p.Config, site.WithLogger(p.Logger))
		for _, e := range s.Build(ctx, p.ContentRoot, docs).Errors() {
			report.Add(e)
		}
	}

	build.PrintReport(out, report)
	if report.HasFatal() || (opts.Strict && report.Len() > 0) {
		return report, fmt.Errorf("%w: %d errors", ErrProblems, report.Len())
	}

	lib := s.Library()
	_, _ = fmt.Fprintf(out, "✅ %d sections, %d pages and %d permalinks checked (%d warnings)\n",
		lib.NumSections(), lib.NumPages(), s.PermalinkTable().Len(), len(report.Warnings()))
	return report, nil
}
