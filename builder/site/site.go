// Package site runs the whole-graph passes of a build in order: ingest,
// graph population, permalinks, taxonomies and pagination, then rendering.
package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Kush-Singh-26/koshgraph/builder/cache"
	"github.com/Kush-Singh-26/koshgraph/builder/config"
	"github.com/Kush-Singh-26/koshgraph/builder/errs"
	"github.com/Kush-Singh-26/koshgraph/builder/graph"
	"github.com/Kush-Singh-26/koshgraph/builder/library"
	"github.com/Kush-Singh-26/koshgraph/builder/logfields"
	"github.com/Kush-Singh-26/koshgraph/builder/metrics"
	"github.com/Kush-Singh-26/koshgraph/builder/models"
	"github.com/Kush-Singh-26/koshgraph/builder/pagination"
	"github.com/Kush-Singh-26/koshgraph/builder/renderer"
	"github.com/Kush-Singh-26/koshgraph/builder/taxonomy"
)

var (
	ErrNotLoaded  = errors.New("site: content not loaded")
	ErrNotIndexed = errors.New("site: taxonomies not indexed")
)

// Site holds one build. A Site is single use; rebuilding means a new Site.
type Site struct {
	cfg     *config.Config
	logger  *slog.Logger
	cache   *cache.Manager
	metrics *metrics.BuildMetrics

	lib        *library.Library
	table      *renderer.PermalinkTable
	taxonomies []*taxonomy.Taxonomy
	paginators map[models.SectionKey]*pagination.Paginator
	indexed    bool
}

func New(cfg *config.Config, opts ...Option) *Site {
	s := &Site{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = metrics.NewBuildMetrics()
	}
	return s
}

func (s *Site) Config() *config.Config                   { return s.cfg }
func (s *Site) Library() *library.Library                { return s.lib }
func (s *Site) PermalinkTable() *renderer.PermalinkTable { return s.table }
func (s *Site) Metrics() *metrics.BuildMetrics           { return s.metrics }
func (s *Site) Taxonomies() []*taxonomy.Taxonomy         { return s.taxonomies }

// Taxonomy returns the indexed kind called name.
func (s *Site) Taxonomy(name string) (*taxonomy.Taxonomy, bool) {
	for _, t := range s.taxonomies {
		if t.Kind.Name == name {
			return t, true
		}
	}
	return nil, false
}

// SectionPaginator returns the pagers of a section with paginate_by set.
func (s *Site) SectionPaginator(k models.SectionKey) (*pagination.Paginator, bool) {
	p, ok := s.paginators[k]
	return p, ok
}

// Load ingests docs found under root, links the graph and computes every
// permalink. The library is sealed afterwards. Errors are structural and
// abort the build.
func (s *Site) Load(root string, docs []library.Document) error {
	if s.lib != nil {
		return fmt.Errorf("site: content already loaded from %s", s.lib.Root())
	}
	lib := library.New(root)

	done := s.metrics.Track(metrics.PhaseLoad)
	err := lib.Ingest(docs)
	done()
	if err != nil {
		return err
	}
	s.metrics.SectionsLoaded.Store(int64(lib.NumSections()))
	s.metrics.PagesLoaded.Store(int64(lib.NumPages()))

	done = s.metrics.Track(metrics.PhaseGraph)
	err = graph.Populate(lib, s.cfg, s.logger)
	done()
	if err != nil {
		return err
	}
	// the graph may have synthesized the root section
	s.metrics.SectionsLoaded.Store(int64(lib.NumSections()))
	warnUnplaced(lib, s.logger)

	done = s.metrics.Track(metrics.PhasePermalinks)
	table, err := renderer.ComputePermalinks(lib, s.cfg)
	done()
	if err != nil {
		return err
	}

	lib.Seal()
	s.lib, s.table = lib, table
	s.logger.Debug("Content loaded",
		logfields.Count(lib.NumPages()),
		slog.Int("sections", lib.NumSections()),
		slog.Int("permalinks", table.Len()))
	return nil
}

// warnUnplaced logs orphan pages that no section routed to its ignored
// pages. Unlisted and unsorted pages are orphans on purpose.
func warnUnplaced(lib *library.Library, logger *slog.Logger) {
	ignored := make(map[models.PageKey]bool)
	for _, sec := range lib.Sections() {
		for _, k := range sec.IgnoredPages {
			ignored[k] = true
		}
	}
	for _, k := range lib.OrphanPages() {
		if !ignored[k] {
			logger.Warn("Page is not listed by any section", logfields.Path(lib.Page(k).File.RelPath))
		}
	}
}

// Index builds the taxonomies and the section paginators. The two passes
// only read the sealed library and run concurrently.
func (s *Site) Index(ctx context.Context) error {
	if s.lib == nil {
		return ErrNotLoaded
	}
	defer s.metrics.Track(metrics.PhaseTaxonomy)()

	var (
		taxonomies []*taxonomy.Taxonomy
		paginators map[models.SectionKey]*pagination.Paginator
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		taxonomies, err = taxonomy.Index(ctx, s.lib, s.cfg, s.logger)
		return err
	})
	g.Go(func() error {
		var err error
		paginators, err = s.paginateSections(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.taxonomies, s.paginators = taxonomies, paginators
	s.indexed = true
	return nil
}

func (s *Site) paginateSections(ctx context.Context) (map[models.SectionKey]*pagination.Paginator, error) {
	out := make(map[models.SectionKey]*pagination.Paginator)
	var failed []error
	for k, sec := range s.lib.Sections() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sec.Meta.PaginateBy <= 0 {
			continue
		}
		segment := sec.Meta.PaginatePath
		if segment == "" {
			segment = s.cfg.PaginationPathSegment
		}
		p, err := pagination.New(sec.Pages, sec.Meta.PaginateBy, sec.Permalink, sec.Path, segment)
		if err != nil {
			failed = append(failed, err)
			continue
		}
		out[k] = p
		s.logger.Debug("Paginated section", logfields.Section(sec.File.RelPath), logfields.Count(p.Len()))
	}
	return out, errors.Join(failed...)
}

// Render runs the second render phase over the loaded library.
func (s *Site) Render(ctx context.Context) *errs.Report {
	if s.lib == nil {
		report := errs.NewReport()
		report.Add(errs.InternalError("render", ErrNotLoaded))
		return report
	}
	defer s.metrics.Track(metrics.PhaseRender)()

	if s.cache != nil {
		s.prepareCache()
	}
	return renderer.Render(ctx, s.lib, s.cfg, s.table, renderer.Options{
		Logger:  s.logger,
		Cache:   s.cache,
		Metrics: s.metrics,
	})
}

// cacheID changes with anything that invalidates every stored render.
func (s *Site) cacheID() string {
	return cache.RenderKey(s.cfg.BaseURL, s.cfg.Markdown.HighlightStyle)
}

// prepareCache drops renders stored for another site. Failures only cost
// cache hits and are logged.
func (s *Site) prepareCache() {
	id := cache.HashString(s.cacheID())
	stale, err := s.cache.VerifyCacheID(id)
	if err != nil {
		s.logger.Warn("Render cache check failed", logfields.Error(err))
		return
	}
	if !stale {
		return
	}
	s.logger.Debug("Render cache belongs to another site, resetting", logfields.Path(s.cache.Path()))
	if err := s.cache.Reset(); err != nil {
		s.logger.Warn("Render cache reset failed", logfields.Error(err))
		return
	}
	if err := s.cache.SetCacheID(id); err != nil {
		s.logger.Warn("Render cache update failed", logfields.Error(err))
	}
}

// Build runs Load, Index and Render. Structural failures stop the build
// before rendering; every failure ends up in the returned report.
func (s *Site) Build(ctx context.Context, root string, docs []library.Document) *errs.Report {
	s.metrics.RecordStart()
	defer s.metrics.RecordEnd()

	report := errs.NewReport()
	if err := s.Load(root, docs); err != nil {
		report.Add(err)
		return report
	}
	if err := s.Index(ctx); err != nil {
		report.Add(err)
		return report
	}

	for _, e := range s.Render(ctx).Errors() {
		report.Add(e)
	}
	if s.cache != nil && !report.HasFatal() {
		if err := s.cache.MarkBuild(time.Now()); err != nil {
			s.logger.Warn("Failed to record build in cache", logfields.Error(err))
		}
	}
	return report
}
