// Package testutil provides testing utilities and fixtures
package testutil

import (
	"fmt"
	"path"
	"time"

	"github.com/Kush-Singh-26/koshgraph/builder/config"
	"github.com/Kush-Singh-26/koshgraph/builder/library"
	"github.com/Kush-Singh-26/koshgraph/builder/models"
)

// ContentRoot is where the sample site pretends to live.
const ContentRoot = "/site/content"

// Date builds a UTC midnight front matter date
func Date(year int, month time.Month, day int) models.Date {
	return models.NewDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Weight returns a pointer for PageMeta.Weight
func Weight(w int) *int {
	return &w
}

// SiteConfig is the configuration of the sample site
func SiteConfig() *config.Config {
	cfg := config.Default()
	cfg.BaseURL = "https://example.com"
	cfg.Taxonomies = []config.Taxonomy{
		{Name: "categories"},
		{Name: "tags", PaginateBy: 2, Feed: true},
	}
	cfg.Build.Workers = 4
	return cfg
}

// SectionDoc creates a section document at rel under ContentRoot
func SectionDoc(rel string, meta models.SectionMeta, body string) library.Document {
	return library.Document{
		Path:        path.Join(ContentRoot, rel),
		Section:     true,
		SectionMeta: meta,
		Raw:         body,
	}
}

// PageDoc creates a page document at rel under ContentRoot
func PageDoc(rel string, meta models.PageMeta, body string) library.Document {
	return library.Document{
		Path:     path.Join(ContentRoot, rel),
		PageMeta: meta,
		Raw:      body,
	}
}

// HelloBody links to other documents of the sample site, one of them missing
const HelloBody = `# Hello

Start with [the simple post](@/posts/simple.md) or jump to
[Python setup](./posts/tutorials/programming/python.md#setup).

<!-- more -->

## Details

The [missing page](@/nope.md) is gone and [this one](https://example.org/x.md) is external.
`

// SiteDocuments returns the sample site: 11 sections nested up to three
// levels deep and 22 pages, including a page with an explicit path, a page
// bundle with an asset and a section that excludes unsorted pages.
// Page i carries the term "A" when i is even and "B" otherwise.
func SiteDocuments() []library.Document {
	sections := []library.Document{
		SectionDoc("_index.md", models.SectionMeta{Title: "Home"}, "# Home\n\nWelcome to the sample site.\n"),
		SectionDoc("posts/_index.md", models.SectionMeta{Title: "Posts", SortBy: models.SortDate, PaginateBy: 2, Weight: 1}, ""),
		SectionDoc("posts/tutorials/_index.md", models.SectionMeta{Title: "Tutorials", SortBy: models.SortWeight, Weight: 1}, ""),
		SectionDoc("posts/tutorials/programming/_index.md", models.SectionMeta{Title: "Programming", SortBy: models.SortWeight, Weight: 1}, ""),
		SectionDoc("posts/tutorials/devops/_index.md", models.SectionMeta{Title: "DevOps", SortBy: models.SortWeight, Weight: 2}, ""),
		SectionDoc("posts/archive/_index.md", models.SectionMeta{Title: "Archive", SortBy: models.SortDate, Weight: 2}, ""),
		SectionDoc("docs/_index.md", models.SectionMeta{Title: "Docs", SortBy: models.SortWeight, PageTemplate: "doc.html", Weight: 2}, ""),
		SectionDoc("docs/guides/_index.md", models.SectionMeta{Title: "Guides", Weight: 1, InsertAnchorLinks: models.AnchorLeft}, ""),
		SectionDoc("docs/reference/_index.md", models.SectionMeta{Title: "Reference", PageTemplate: "reference.html", Weight: 2}, ""),
		SectionDoc("unsorted/_index.md", models.SectionMeta{Title: "Unsorted", SortBy: models.SortDate, ExcludeUnsorted: true, Weight: 3}, ""),
		SectionDoc("paginated/_index.md", models.SectionMeta{Title: "Paginated", PaginateBy: 10, Weight: 4}, ""),
	}

	type page struct {
		rel  string
		meta models.PageMeta
		body string
	}
	pages := []page{
		{"hello.md", models.PageMeta{Title: "Hello", Date: Date(2024, 1, 1)}, HelloBody},
		{"posts/fixed-url.md", models.PageMeta{Title: "Fixed", Path: "a-fixed-url", Date: Date(2024, 3, 10)}, ""},
		{"posts/simple.md", models.PageMeta{Title: "Simple", Date: Date(2024, 3, 1)}, ""},
		{"posts/with-assets/index.md", models.PageMeta{Title: "With assets", Date: Date(2024, 2, 20)}, ""},
		{"posts/generics.md", models.PageMeta{Title: "Generics", Date: Date(2024, 2, 7)}, ""},
		{"posts/channels.md", models.PageMeta{Title: "Channels", Date: Date(2024, 2, 6)}, ""},
		{"posts/errors.md", models.PageMeta{Title: "Errors", Date: Date(2024, 2, 5)}, ""},
		{"posts/modules.md", models.PageMeta{Title: "Modules", Date: Date(2024, 2, 4)}, ""},
		{"posts/testing.md", models.PageMeta{Title: "Testing", Date: Date(2024, 2, 3)}, ""},
		{"posts/fuzzing.md", models.PageMeta{Title: "Fuzzing", Date: Date(2024, 2, 2)}, ""},
		{"posts/profiling.md", models.PageMeta{Title: "Profiling", Date: Date(2024, 2, 1)}, ""},
		{"posts/tutorials/programming/python.md", models.PageMeta{Title: "Python", Weight: Weight(1)}, "## Setup\n\nInstall it.\n"},
		{"posts/tutorials/programming/rust.md", models.PageMeta{Title: "Rust", Weight: Weight(2)}, ""},
		{"posts/tutorials/devops/docker.md", models.PageMeta{Title: "Docker", Weight: Weight(1)}, ""},
		{"posts/tutorials/devops/nix.md", models.PageMeta{Title: "Nix", Weight: Weight(2)}, ""},
		{"posts/archive/old-news.md", models.PageMeta{Title: "Old news", Date: Date(2019, 6, 1)}, ""},
		{"docs/install.md", models.PageMeta{Title: "Install", Weight: Weight(1)}, ""},
		{"docs/usage.md", models.PageMeta{Title: "Usage", Weight: Weight(2)}, ""},
		{"docs/guides/intro.md", models.PageMeta{Title: "Intro", Template: "guide.html"}, "# Intro\n\n## First steps\n\nRead on.\n"},
		{"docs/reference/api.md", models.PageMeta{Title: "API"}, ""},
		{"unsorted/dated.md", models.PageMeta{Title: "Dated", Date: Date(2024, 5, 1)}, ""},
		{"unsorted/undated.md", models.PageMeta{Title: "Undated"}, ""},
	}

	docs := sections
	for i, p := range pages {
		term := "A"
		if i%2 != 0 {
			term = "B"
		}
		p.meta.Taxonomies = map[string][]string{
			"categories": {term},
			"tags":       {term},
		}
		body := p.body
		if body == "" {
			body = fmt.Sprintf("Body of %s with a handful of words.\n", p.meta.Title)
		}
		doc := PageDoc(p.rel, p.meta, body)
		if p.rel == "posts/with-assets/index.md" {
			doc.Assets = []string{path.Join(ContentRoot, "posts/with-assets/cover.png")}
		}
		docs = append(docs, doc)
	}
	return docs
}

// NewLibrary ingests docs into a fresh library rooted at ContentRoot
func NewLibrary(docs []library.Document) (*library.Library, error) {
	lib := library.New(ContentRoot)
	if err := lib.Ingest(docs); err != nil {
		return nil, err
	}
	return lib, nil
}
