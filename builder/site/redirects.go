package site

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Kush-Singh-26/koshgraph/builder/pagination"
	"github.com/Kush-Singh-26/koshgraph/builder/renderer"
)

// Redirect sends visitors of the URL path From to the permalink To.
type Redirect struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Redirects lists aliases, section redirect_to targets and the first pager
// path of every paginated listing, ordered by From.
func (s *Site) Redirects() ([]Redirect, error) {
	if !s.indexed {
		return nil, ErrNotIndexed
	}

	var out []Redirect
	for _, sec := range s.lib.Sections() {
		for _, a := range sec.Meta.Aliases {
			out = append(out, Redirect{From: renderer.AliasPath(a), To: sec.Permalink})
		}
		if sec.Meta.RedirectTo != "" {
			out = append(out, Redirect{From: sec.Path, To: s.redirectTarget(sec.Meta.RedirectTo)})
		}
	}
	for _, p := range s.lib.Pages() {
		for _, a := range p.Meta.Aliases {
			out = append(out, Redirect{From: renderer.AliasPath(a), To: p.Permalink})
		}
	}

	for _, p := range s.paginators {
		out = append(out, pagerRedirect(p))
	}
	for _, t := range s.taxonomies {
		if t.Kind.PaginateBy <= 0 {
			continue
		}
		for _, item := range t.Items {
			out = append(out, pagerRedirect(item.Paginator))
		}
	}

	slices.SortFunc(out, func(a, b Redirect) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.To, b.To))
	})
	return out, nil
}

func pagerRedirect(p *pagination.Paginator) Redirect {
	from, to := p.Redirect()
	return Redirect{From: from, To: to}
}

// redirectTarget keeps absolute URLs and resolves site paths against base_url.
func (s *Site) redirectTarget(target string) string {
	if strings.Contains(target, "://") {
		return target
	}
	return s.cfg.MakePermalink(strings.TrimPrefix(target, "/"))
}
