package site

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Kush-Singh-26/koshgraph/builder/cache"
	"github.com/Kush-Singh-26/koshgraph/builder/errs"
	"github.com/Kush-Singh-26/koshgraph/builder/library"
	"github.com/Kush-Singh-26/koshgraph/builder/metrics"
	"github.com/Kush-Singh-26/koshgraph/builder/models"
	"github.com/Kush-Singh-26/koshgraph/builder/parser"
	"github.com/Kush-Singh-26/koshgraph/builder/renderer"
	"github.com/Kush-Singh-26/koshgraph/builder/testutil"
)

func build(t *testing.T, docs []library.Document, opts ...Option) (*Site, *errs.Report) {
	t.Helper()
	s := New(testutil.SiteConfig(), opts...)
	return s, s.Build(context.Background(), testutil.ContentRoot, docs)
}

func pageAt(t *testing.T, s *Site, rel string) *models.Page {
	t.Helper()
	k, ok := s.Library().PageByPath(testutil.ContentRoot + "/" + rel)
	require.True(t, ok, "page %s", rel)
	return s.Library().Page(k)
}

func sectionKey(t *testing.T, s *Site, rel string) models.SectionKey {
	t.Helper()
	k, ok := s.Library().SectionByPath(testutil.ContentRoot + "/" + rel)
	require.True(t, ok, "section %s", rel)
	return k
}

// withDoc edits the document at rel in place.
func withDoc(docs []library.Document, rel string, edit func(*library.Document)) []library.Document {
	for i := range docs {
		if docs[i].Path == testutil.ContentRoot+"/"+rel {
			edit(&docs[i])
		}
	}
	return docs
}

func TestLoad_IgnoredOrphansAreQuiet(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s := New(testutil.SiteConfig(), WithLogger(logger))
	require.NoError(t, s.Load(testutil.ContentRoot, testutil.SiteDocuments()))
	require.Len(t, s.Library().OrphanPages(), 1)
	require.NotContains(t, logs.String(), "not listed by any section")
}

func TestBuild_SampleSite(t *testing.T) {
	s, report := build(t, testutil.SiteDocuments())
	require.NoError(t, report.Err())

	lib := s.Library()
	require.True(t, lib.Sealed())
	require.Equal(t, 11, lib.NumSections())
	require.Equal(t, 22, lib.NumPages())
	undated, ok := lib.PageByPath(testutil.ContentRoot + "/unsorted/undated.md")
	require.True(t, ok)
	require.Equal(t, []models.PageKey{undated}, lib.OrphanPages(), "excluded unsorted pages are orphans")

	m := s.Metrics()
	require.EqualValues(t, 11, m.SectionsLoaded.Load())
	require.EqualValues(t, 22, m.PagesLoaded.Load())
	require.EqualValues(t, 33, m.Rendered.Load())
	require.EqualValues(t, 1, m.BrokenLinks.Load())
	require.Equal(t, []string{
		metrics.PhaseLoad, metrics.PhaseGraph, metrics.PhasePermalinks, metrics.PhaseTaxonomy, metrics.PhaseRender,
	}, m.Phases())

	// the override changes the URL only
	fixed := pageAt(t, s, "posts/fixed-url.md")
	require.Equal(t, "https://example.com/a-fixed-url/", fixed.Permalink)
	parent, ok := fixed.Parent()
	require.True(t, ok)
	require.Equal(t, sectionKey(t, s, "posts/_index.md"), parent)

	warnings := report.Warnings()
	require.Len(t, warnings, 1)
	require.Equal(t, "hello.md", warnings[0].Path)
	require.Equal(t, errs.CategoryBrokenReference, warnings[0].Category)
}

func TestBuild_LinksRoundTrip(t *testing.T) {
	s, report := build(t, testutil.SiteDocuments())
	require.NoError(t, report.Err())

	table := s.PermalinkTable()
	require.Equal(t, 33, table.Len())
	for _, p := range s.Library().Pages() {
		got, ok := table.Resolve(p.File.RelPath)
		require.True(t, ok, p.File.RelPath)
		require.Equal(t, p.Permalink, got)

		href, ok := parser.ResolveLink(table, "_index.md", "@/"+p.File.RelPath)
		require.True(t, ok)
		require.Equal(t, p.Permalink, href)
	}

	hello := pageAt(t, s, "hello.md")
	require.Contains(t, hello.Content, `href="https://example.com/posts/simple/"`)
	require.Contains(t, hello.Content, `href="https://example.com/posts/tutorials/programming/python/#setup"`)
	require.Contains(t, hello.Content, `class="broken-link"`)
}

func TestBuild_SectionPagination(t *testing.T) {
	s, report := build(t, testutil.SiteDocuments())
	require.NoError(t, report.Err())

	posts, ok := s.SectionPaginator(sectionKey(t, s, "posts/_index.md"))
	require.True(t, ok)
	require.Equal(t, 5, posts.Len())
	require.Equal(t, 10, posts.TotalItems)

	first, err := posts.Context(1)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/posts/", first.Permalink)
	require.Equal(t, "https://example.com/posts/page/2/", first.Next)
	require.False(t, first.HasPrev)
	require.Len(t, first.Pages, 2)
	require.Equal(t, "posts/fixed-url.md", s.Library().Page(first.Pages[0]).File.RelPath)
	require.Equal(t, "posts/simple.md", s.Library().Page(first.Pages[1]).File.RelPath)

	last, err := posts.Context(5)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/posts/page/5/", last.Permalink)
	require.False(t, last.HasNext)

	empty, ok := s.SectionPaginator(sectionKey(t, s, "paginated/_index.md"))
	require.True(t, ok)
	require.Equal(t, 1, empty.Len())
	ctx, err := empty.Context(1)
	require.NoError(t, err)
	require.Empty(t, ctx.Pages)
	require.Equal(t, "https://example.com/paginated/", ctx.Permalink)

	_, ok = s.SectionPaginator(sectionKey(t, s, "docs/_index.md"))
	require.False(t, ok, "docs does not paginate")
}

func TestBuild_Taxonomies(t *testing.T) {
	s, report := build(t, testutil.SiteDocuments())
	require.NoError(t, report.Err())
	require.Len(t, s.Taxonomies(), 2)

	categories, ok := s.Taxonomy("categories")
	require.True(t, ok)
	require.Equal(t, "https://example.com/categories/", categories.Permalink)
	require.Len(t, categories.Items, 2)
	for _, item := range categories.Items {
		require.Len(t, item.Pages, 11, item.Name)
		require.Equal(t, 1, item.Paginator.Len())
	}

	tags, ok := s.Taxonomy("tags")
	require.True(t, ok)
	a, ok := tags.Item("A")
	require.True(t, ok)
	require.Equal(t, "https://example.com/tags/a/", a.Permalink)
	require.Equal(t, "https://example.com/tags/a/atom.xml", a.FeedPermalink)
	require.Equal(t, 6, a.Paginator.Len())

	_, ok = s.Taxonomy("authors")
	require.False(t, ok)
}

func TestBuild_Rendering(t *testing.T) {
	s, report := build(t, testutil.SiteDocuments())
	require.NoError(t, report.Err())

	hello := pageAt(t, s, "hello.md")
	require.Contains(t, hello.Summary, "the simple post")
	require.NotContains(t, hello.Summary, "Details")
	require.Contains(t, hello.Content, renderer.ContinueReadingAnchor)
	require.GreaterOrEqual(t, hello.ReadingTime, 1)

	intro := pageAt(t, s, "docs/guides/intro.md")
	require.Contains(t, intro.Content, parser.AnchorHTML("first-steps"))
	require.Len(t, intro.Toc, 1)
	require.Equal(t, "Intro", intro.Toc[0].Title)
	require.Len(t, intro.Toc[0].Children, 1)
	require.Equal(t, "https://example.com/docs/guides/intro/#first-steps", intro.Toc[0].Children[0].Permalink)

	install := pageAt(t, s, "docs/install.md")
	require.NotContains(t, install.Content, "kosh-anchor")
	require.Equal(t, "doc.html", install.TemplateName())
}

func TestBuild_Redirects(t *testing.T) {
	docs := testutil.SiteDocuments()
	docs = withDoc(docs, "posts/simple.md", func(d *library.Document) {
		d.PageMeta.Aliases = []string{"old/simple", "/legacy.html"}
	})
	docs = withDoc(docs, "posts/archive/_index.md", func(d *library.Document) {
		d.SectionMeta.RedirectTo = "/posts/"
	})

	s, report := build(t, docs)
	require.NoError(t, report.Err())

	redirects, err := s.Redirects()
	require.NoError(t, err)
	require.Equal(t, []Redirect{
		{From: "/legacy.html", To: "https://example.com/posts/simple/"},
		{From: "/old/simple/", To: "https://example.com/posts/simple/"},
		{From: "/paginated/page/1/", To: "https://example.com/paginated/"},
		{From: "/posts/archive/", To: "https://example.com/posts/"},
		{From: "/posts/page/1/", To: "https://example.com/posts/"},
		{From: "/tags/a/page/1/", To: "https://example.com/tags/a/"},
		{From: "/tags/b/page/1/", To: "https://example.com/tags/b/"},
	}, redirects)
}

func TestBuild_AliasConflict(t *testing.T) {
	docs := withDoc(testutil.SiteDocuments(), "posts/simple.md", func(d *library.Document) {
		d.PageMeta.Aliases = []string{"a-fixed-url"}
	})

	s, report := build(t, docs)
	require.True(t, report.HasFatal())
	require.True(t, errs.IsCategory(report.Err(), errs.CategoryConflict))
	require.Nil(t, s.PermalinkTable())
	require.EqualValues(t, 0, s.Metrics().Rendered.Load())
}

func TestBuild_MissingSortKey(t *testing.T) {
	docs := withDoc(testutil.SiteDocuments(), "posts/simple.md", func(d *library.Document) {
		d.PageMeta.Date = models.Date{}
	})

	_, report := build(t, docs)
	fatal := report.Fatal()
	require.Len(t, fatal, 1)
	require.Equal(t, errs.CategoryMissingField, fatal[0].Category)
	require.Equal(t, "posts/simple.md", fatal[0].Path)
}

func TestBuild_Deterministic(t *testing.T) {
	first, report := build(t, testutil.SiteDocuments())
	require.NoError(t, report.Err())
	second, report := build(t, testutil.SiteDocuments())
	require.NoError(t, report.Err())

	a, err := first.Manifest()
	require.NoError(t, err)
	b, err := second.Manifest()
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Equal(t, first.PermalinkTable().Digest(), second.PermalinkTable().Digest())
}

func TestBuild_Manifest(t *testing.T) {
	s, report := build(t, testutil.SiteDocuments())
	require.NoError(t, report.Err())

	m, err := s.Manifest()
	require.NoError(t, err)
	require.Equal(t, "https://example.com", m.BaseURL)
	require.Len(t, m.Sections, 11)
	require.Len(t, m.Pages, 22)
	require.Len(t, m.Taxonomies, 2)

	require.Contains(t, m.URLs, "https://example.com/a-fixed-url/")
	require.Contains(t, m.URLs, "https://example.com/posts/page/5/")
	require.Contains(t, m.URLs, "https://example.com/tags/b/page/6/")
	require.True(t, strings.HasPrefix(m.URLs[0], "https://example.com/"))
	for i := 1; i < len(m.URLs); i++ {
		require.Less(t, m.URLs[i-1], m.URLs[i])
	}

	for _, sec := range m.Sections {
		if sec.RelativePath == "posts/_index.md" {
			require.Len(t, sec.Pagers, 5)
		}
	}
	for _, p := range m.Pages {
		if p.RelativePath == "posts/with-assets/index.md" {
			require.Equal(t, []string{"/posts/with-assets/cover.png"}, p.Assets)
		}
	}
}

func TestBuild_RenderCache(t *testing.T) {
	dir := t.TempDir()
	m, err := cache.Open(dir, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	first, report := build(t, testutil.SiteDocuments(), WithCache(m))
	require.NoError(t, report.Err())
	require.EqualValues(t, 0, first.Metrics().CacheHits.Load())
	require.EqualValues(t, 33, first.Metrics().CacheMisses.Load())

	second, report := build(t, testutil.SiteDocuments(), WithCache(m))
	require.NoError(t, report.Err())
	require.EqualValues(t, 33, second.Metrics().CacheHits.Load())
	require.Equal(t, pageAt(t, first, "hello.md").Content, pageAt(t, second, "hello.md").Content)
	require.Len(t, report.Warnings(), 1, "cached broken links are still reported")

	stats, err := m.Stats()
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.BuildCount)

	// another base URL invalidates the cache
	cfg := testutil.SiteConfig()
	cfg.BaseURL = "https://other.example.com"
	third := New(cfg, WithCache(m))
	report = third.Build(context.Background(), testutil.ContentRoot, testutil.SiteDocuments())
	require.NoError(t, report.Err())
	require.EqualValues(t, 0, third.Metrics().CacheHits.Load())
}

func TestSite_StageOrder(t *testing.T) {
	s := New(testutil.SiteConfig())
	require.ErrorIs(t, s.Index(context.Background()), ErrNotLoaded)
	_, err := s.Redirects()
	require.ErrorIs(t, err, ErrNotIndexed)
	_, err = s.Manifest()
	require.ErrorIs(t, err, ErrNotIndexed)

	report := s.Render(context.Background())
	require.True(t, report.HasFatal())
	require.True(t, errors.Is(report.Err(), ErrNotLoaded))

	require.NoError(t, s.Load(testutil.ContentRoot, testutil.SiteDocuments()))
	require.Error(t, s.Load(testutil.ContentRoot, testutil.SiteDocuments()))
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(testutil.SiteConfig())
	report := s.Build(ctx, testutil.ContentRoot, testutil.SiteDocuments())
	require.True(t, report.HasFatal())
	require.ErrorIs(t, report.Err(), context.Canceled)
}
