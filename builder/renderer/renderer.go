// Package renderer runs the two render phases: permalinks for the whole
// library first, then markdown bodies record by record.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/Kush-Singh-26/koshgraph/builder/cache"
	"github.com/Kush-Singh-26/koshgraph/builder/config"
	"github.com/Kush-Singh-26/koshgraph/builder/errs"
	"github.com/Kush-Singh-26/koshgraph/builder/library"
	"github.com/Kush-Singh-26/koshgraph/builder/logfields"
	"github.com/Kush-Singh-26/koshgraph/builder/metrics"
	"github.com/Kush-Singh-26/koshgraph/builder/models"
	"github.com/Kush-Singh-26/koshgraph/builder/parser"
	"github.com/Kush-Singh-26/koshgraph/builder/utils"
)

// ContinueReadingAnchor replaces the continue-reading marker in the full body.
const ContinueReadingAnchor = `<a id="continue-reading" name="continue-reading"></a>`

// renderVersion is part of every cache key; bump it when output changes.
const renderVersion = "2"

type Options struct {
	Logger  *slog.Logger
	Cache   *cache.Manager
	Metrics *metrics.BuildMetrics
}

type Renderer struct {
	lib     *library.Library
	cfg     *config.Config
	table   *PermalinkTable
	md      goldmark.Markdown
	logger  *slog.Logger
	cache   *cache.Manager
	metrics *metrics.BuildMetrics
	markers map[string]*regexp.Regexp
}

// job is the read-only input of one record render.
type job struct {
	rel       string
	permalink string
	raw       string
	anchors   models.AnchorPolicy
	marker    string

	section models.SectionKey
	page    models.PageKey
}

type output struct {
	content string
	summary string
	toc     []models.Header
	words   int
	broken  []string
}

func New(lib *library.Library, cfg *config.Config, table *PermalinkTable, opts Options) *Renderer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewBuildMetrics()
	}
	return &Renderer{
		lib:   lib,
		cfg:   cfg,
		table: table,
		md: parser.New(parser.Options{
			HighlightStyle: cfg.Markdown.HighlightStyle,
			Resolver:       table,
		}),
		logger:  logger,
		cache:   opts.Cache,
		metrics: m,
		markers: make(map[string]*regexp.Regexp),
	}
}

// Render is the second render phase over every record of lib.
func Render(ctx context.Context, lib *library.Library, cfg *config.Config, table *PermalinkTable, opts Options) *errs.Report {
	return New(lib, cfg, table, opts).Render(ctx)
}

// Render converts every record body in parallel. Records are independent;
// each worker writes only the record it was handed. Failures are collected
// per document in the returned report.
func (r *Renderer) Render(ctx context.Context) *errs.Report {
	report := errs.NewReport()
	jobs := r.jobs()

	pool := utils.NewWorkerPool(ctx, r.cfg.Build.Workers, func(ctx context.Context, j job) {
		out, err := r.renderJob(j)
		if err != nil {
			r.metrics.Failures.Add(1)
			report.Add(err)
			if be, ok := errs.As(err); ok && !be.Fatal() {
				r.logger.Warn("Skipping document", logfields.Path(j.rel), logfields.Error(err))
			}
			return
		}
		for _, target := range out.broken {
			r.metrics.BrokenLinks.Add(1)
			report.Add(errs.BrokenReference(j.rel, target, r.cfg.BrokenLinksFatal()))
			r.logger.Warn("Broken internal link", logfields.Path(j.rel), logfields.Target(target))
		}
		r.apply(j, out)
		r.metrics.Rendered.Add(1)
	})

	r.logger.Debug("Rendering documents", logfields.Count(len(jobs)), slog.Int("workers", pool.Workers()))
	if err := pool.Run(jobs); err != nil {
		report.Add(errs.Wrap(err, errs.CategoryInternal, errs.SeverityFatal, "", "render cancelled"))
	}
	return report
}

// jobs snapshots every record before the pool starts.
func (r *Renderer) jobs() []job {
	jobs := make([]job, 0, r.lib.NumSections()+r.lib.NumPages())
	for k, s := range r.lib.Sections() {
		j := job{
			rel:       s.File.RelPath,
			permalink: s.Permalink,
			raw:       s.RawContent,
			anchors:   r.anchorPolicy(&s.Meta),
			marker:    r.markerText(&s.Meta),
			section:   k,
		}
		r.compileMarker(j.marker)
		jobs = append(jobs, j)
	}
	for k, p := range r.lib.Pages() {
		var meta *models.SectionMeta
		if parent, ok := p.Parent(); ok {
			meta = &r.lib.Section(parent).Meta
		}
		j := job{
			rel:       p.File.RelPath,
			permalink: p.Permalink,
			raw:       p.RawContent,
			anchors:   r.anchorPolicy(meta),
			marker:    r.markerText(meta),
			page:      k,
		}
		r.compileMarker(j.marker)
		jobs = append(jobs, j)
	}
	return jobs
}

func (r *Renderer) anchorPolicy(meta *models.SectionMeta) models.AnchorPolicy {
	if meta != nil && meta.InsertAnchorLinks != "" {
		return meta.InsertAnchorLinks
	}
	return r.cfg.InsertAnchorLinks
}

func (r *Renderer) markerText(meta *models.SectionMeta) string {
	if meta != nil && meta.ContinueReadingText != "" {
		return meta.ContinueReadingText
	}
	return r.cfg.ContinueReadingText
}

func (r *Renderer) compileMarker(text string) {
	if _, ok := r.markers[text]; !ok {
		r.markers[text] = MarkerRegexp(text)
	}
}

// MarkerRegexp matches the continue-reading marker "<!-- text -->".
func MarkerRegexp(text string) *regexp.Regexp {
	return regexp.MustCompile(`<!--\s*` + regexp.QuoteMeta(strings.TrimSpace(text)) + `\s*-->`)
}

func (r *Renderer) cacheKey(j job) string {
	return cache.RenderKey(renderVersion, j.rel, j.permalink, j.raw, string(j.anchors), j.marker,
		r.cfg.Markdown.HighlightStyle, r.table.Digest())
}

func (r *Renderer) renderJob(j job) (output, error) {
	var key string
	if r.cache != nil {
		key = r.cacheKey(j)
		entry, err := r.cache.GetRender(key)
		if err != nil {
			r.logger.Warn("Render cache read failed", logfields.Path(j.rel), logfields.Error(err))
		}
		if entry != nil {
			r.metrics.IncrementCacheHit()
			return output{
				content: entry.Content,
				summary: entry.Summary,
				toc:     entry.Toc,
				words:   entry.WordCount,
				broken:  entry.BrokenLinks,
			}, nil
		}
		r.metrics.IncrementCacheMiss()
	}

	out, err := r.convert(j)
	if err != nil {
		return output{}, err
	}

	if r.cache != nil {
		err := r.cache.PutRender(key, &cache.RenderEntry{
			Content:     out.content,
			Summary:     out.summary,
			Toc:         out.toc,
			WordCount:   out.words,
			BrokenLinks: out.broken,
		})
		if err != nil {
			r.logger.Warn("Render cache write failed", logfields.Path(j.rel), logfields.Error(err))
		}
	}
	return out, nil
}

func (r *Renderer) convert(j job) (output, error) {
	doc := parser.Document{RelPath: j.rel, Permalink: j.permalink, Anchors: j.anchors}
	body, prose := j.raw, j.raw

	loc := r.markers[j.marker].FindStringIndex(j.raw)
	if loc != nil {
		body = j.raw[:loc[0]] + ContinueReadingAnchor + j.raw[loc[1]:]
		prose = j.raw[:loc[0]] + " " + j.raw[loc[1]:]
	}

	res, err := parser.Convert(r.md, []byte(body), doc)
	if err != nil {
		var me *parser.MarkupError
		if errors.As(err, &me) {
			return output{}, errs.MalformedMarkup(j.rel, me.Error(), !r.cfg.Build.AllowPartialBuild).
				WithContext("line", strconv.Itoa(me.Line))
		}
		return output{}, errs.InternalError(fmt.Sprintf("render %s", j.rel), err)
	}

	var summary string
	if loc != nil {
		// the head may cut a construct the full body closes
		head, err := parser.Convert(r.md, []byte(j.raw[:loc[0]]), doc)
		var me *parser.MarkupError
		if err != nil && !errors.As(err, &me) {
			return output{}, errs.InternalError(fmt.Sprintf("render summary of %s", j.rel), err)
		}
		summary = head.HTML
	}

	return output{
		content: res.HTML,
		summary: summary,
		toc:     res.Toc,
		words:   len(strings.Fields(prose)),
		broken:  res.BrokenLinks,
	}, nil
}

// ReadingTime estimates minutes of reading, never less than one.
func ReadingTime(words, wordsPerMinute int) int {
	if wordsPerMinute < 1 {
		wordsPerMinute = 200
	}
	return max(1, (words+wordsPerMinute-1)/wordsPerMinute)
}

func (r *Renderer) apply(j job, out output) {
	minutes := ReadingTime(out.words, r.cfg.Build.WordsPerMinute)
	if j.section.Valid() {
		s := r.lib.Section(j.section)
		s.Content, s.Summary, s.Toc = out.content, out.summary, out.toc
		s.WordCount, s.ReadingTime = out.words, minutes
		return
	}
	p := r.lib.Page(j.page)
	p.Content, p.Summary, p.Toc = out.content, out.summary, out.toc
	p.WordCount, p.ReadingTime = out.words, minutes
}
