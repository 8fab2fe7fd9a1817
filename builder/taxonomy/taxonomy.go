// Package taxonomy groups pages by the terms they carry for each
// configured classification kind.
package taxonomy

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/Kush-Singh-26/koshgraph/builder/config"
	"github.com/Kush-Singh-26/koshgraph/builder/errs"
	"github.com/Kush-Singh-26/koshgraph/builder/library"
	"github.com/Kush-Singh-26/koshgraph/builder/logfields"
	"github.com/Kush-Singh-26/koshgraph/builder/models"
	"github.com/Kush-Singh-26/koshgraph/builder/pagination"
	"github.com/Kush-Singh-26/koshgraph/builder/utils"
)

// Item is one term and the pages carrying it.
type Item struct {
	Name          string
	Slug          string
	Path          string
	Permalink     string
	FeedPermalink string
	Pages         []models.PageKey
	Paginator     *pagination.Paginator
}

// Taxonomy is one kind with its terms ordered by slug.
type Taxonomy struct {
	Kind      config.Taxonomy
	Slug      string
	Path      string
	Permalink string
	Items     []Item
}

// Item finds a term by name or slug.
func (t *Taxonomy) Item(term string) (*Item, bool) {
	for i := range t.Items {
		if t.Items[i].Name == term || t.Items[i].Slug == term {
			return &t.Items[i], true
		}
	}
	return nil, false
}

// Terms maps each term name to its pages.
func (t *Taxonomy) Terms() map[string][]models.PageKey {
	out := make(map[string][]models.PageKey, len(t.Items))
	for _, it := range t.Items {
		out[it.Name] = it.Pages
	}
	return out
}

// Index builds every configured taxonomy. Kinds are independent and are
// built concurrently; the result follows configuration order.
func Index(ctx context.Context, lib *library.Library, cfg *config.Config, logger *slog.Logger) ([]*Taxonomy, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := checkKinds(lib, cfg); err != nil {
		return nil, err
	}

	out := make([]*Taxonomy, len(cfg.Taxonomies))
	g, ctx := errgroup.WithContext(ctx)
	for i, kind := range cfg.Taxonomies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := build(lib, cfg, kind)
			if err != nil {
				return err
			}
			out[i] = t
			logger.Debug("Indexed taxonomy", logfields.Taxonomy(kind.Name), logfields.Count(len(t.Items)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// checkKinds rejects pages using a kind the site does not declare.
func checkKinds(lib *library.Library, cfg *config.Config) error {
	var unknown []error
	for _, p := range lib.Pages() {
		if p.Meta.Draft {
			continue
		}
		for _, name := range slices.Sorted(maps.Keys(p.Meta.Taxonomies)) {
			if _, ok := cfg.Taxonomy(name); !ok {
				unknown = append(unknown, errs.New(errs.CategoryConfig, errs.SeverityFatal, p.File.RelPath,
					fmt.Sprintf("taxonomy %q is not declared in the site configuration", name)).
					WithContext("taxonomy", name))
			}
		}
	}
	return errors.Join(unknown...)
}

type group struct {
	name  string
	pages []models.PageKey
}

func build(lib *library.Library, cfg *config.Config, kind config.Taxonomy) (*Taxonomy, error) {
	// a Caser keeps state and must not be shared between goroutines
	fold := cases.Fold()
	groupKey := func(term string) string {
		if kind.IsCaseSensitive() {
			return term
		}
		return fold.String(term)
	}

	var order []string
	groups := make(map[string]*group)
	for k, p := range lib.Pages() {
		if p.Meta.Draft {
			continue
		}
		seen := make(map[string]bool)
		for _, term := range p.Meta.Taxonomies[kind.Name] {
			key := groupKey(term)
			if seen[key] {
				continue
			}
			seen[key] = true

			g, ok := groups[key]
			if !ok {
				g = &group{name: term}
				groups[key] = g
				order = append(order, key)
			}
			g.pages = append(g.pages, k)
		}
	}

	t := &Taxonomy{Kind: kind, Slug: utils.Slugify(kind.Name)}
	t.Path = "/" + t.Slug + "/"
	t.Permalink = cfg.MakePermalink(t.Path)

	bySlug := make(map[string]string, len(order))
	for _, key := range order {
		g := groups[key]
		slug := utils.Slugify(g.name)
		if slug == "" {
			return nil, errs.New(errs.CategoryConfig, errs.SeverityFatal, "",
				fmt.Sprintf("%s term %q has no usable characters for a URL", kind.Name, g.name))
		}
		if other, ok := bySlug[slug]; ok {
			return nil, errs.Conflict(t.Path+slug+"/", kind.Name+"/"+other, kind.Name+"/"+g.name)
		}
		bySlug[slug] = g.name

		slices.SortStableFunc(g.pages, func(x, y models.PageKey) int {
			return comparePages(lib.Page(x), lib.Page(y))
		})

		item := Item{
			Name:      g.name,
			Slug:      slug,
			Path:      t.Path + slug + "/",
			Pages:     g.pages,
			Permalink: cfg.MakePermalink(t.Path + slug + "/"),
		}
		if kind.Feed {
			item.FeedPermalink = cfg.MakePermalink(item.Path + cfg.FeedFilename)
		}

		by := kind.PaginateBy
		if by == 0 {
			by = max(1, len(g.pages))
		}
		segment := kind.PaginatePath
		if segment == "" {
			segment = cfg.PaginationPathSegment
		}
		pager, err := pagination.New(item.Pages, by, item.Permalink, item.Path, segment)
		if err != nil {
			return nil, err
		}
		item.Paginator = pager

		t.Items = append(t.Items, item)
	}

	slices.SortFunc(t.Items, func(a, b Item) int { return cmp.Compare(a.Slug, b.Slug) })
	return t, nil
}

// comparePages orders newest first; undated pages follow, by path.
func comparePages(a, b *models.Page) int {
	ad, bd := a.Meta.Date.Time, b.Meta.Date.Time
	switch {
	case !ad.IsZero() && !bd.IsZero():
		if c := bd.Compare(ad); c != 0 {
			return c
		}
	case !ad.IsZero():
		return -1
	case !bd.IsZero():
		return 1
	}
	return cmp.Compare(a.File.RelPath, b.File.RelPath)
}
