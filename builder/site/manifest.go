package site

import (
	"slices"

	"github.com/Kush-Singh-26/koshgraph/builder/library"
)

// Manifest is the serializable result of a build: every record view plus
// the listings and redirects output writers need.
type Manifest struct {
	BaseURL    string             `json:"base_url"`
	Sections   []SectionEntry     `json:"sections"`
	Pages      []library.PageView `json:"pages"`
	Taxonomies []TaxonomyEntry    `json:"taxonomies"`
	Redirects  []Redirect         `json:"redirects"`
	URLs       []string           `json:"urls"`
}

type SectionEntry struct {
	library.SectionView
	Pagers []string `json:"pagers,omitempty"`
}

type TaxonomyEntry struct {
	Name      string      `json:"name"`
	Permalink string      `json:"permalink"`
	Items     []TermEntry `json:"items"`
}

type TermEntry struct {
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Permalink string   `json:"permalink"`
	Feed      string   `json:"feed,omitempty"`
	Pages     []string `json:"pages"`
	Pagers    []string `json:"pagers"`
}

// Manifest collects the indexed site. URLs is every public URL sorted,
// the input a sitemap writer consumes.
func (s *Site) Manifest() (*Manifest, error) {
	if !s.indexed {
		return nil, ErrNotIndexed
	}
	redirects, err := s.Redirects()
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		BaseURL:   s.cfg.BaseURL,
		Sections:  make([]SectionEntry, 0, s.lib.NumSections()),
		Pages:     make([]library.PageView, 0, s.lib.NumPages()),
		Redirects: redirects,
	}
	urls := make(map[string]bool)

	for k, sec := range s.lib.Sections() {
		entry := SectionEntry{SectionView: s.lib.SectionView(k)}
		if p, ok := s.paginators[k]; ok {
			entry.Pagers = p.URLs()
			for _, u := range entry.Pagers {
				urls[u] = true
			}
		}
		urls[sec.Permalink] = true
		m.Sections = append(m.Sections, entry)
	}
	for k, p := range s.lib.Pages() {
		m.Pages = append(m.Pages, s.lib.PageView(k))
		urls[p.Permalink] = true
	}

	for _, t := range s.taxonomies {
		te := TaxonomyEntry{Name: t.Kind.Name, Permalink: t.Permalink, Items: make([]TermEntry, 0, len(t.Items))}
		urls[t.Permalink] = true
		for _, item := range t.Items {
			term := TermEntry{
				Name:      item.Name,
				Slug:      item.Slug,
				Permalink: item.Permalink,
				Feed:      item.FeedPermalink,
				Pages:     make([]string, len(item.Pages)),
				Pagers:    item.Paginator.URLs(),
			}
			for i, pk := range item.Pages {
				term.Pages[i] = s.lib.Page(pk).File.RelPath
			}
			for _, u := range term.Pagers {
				urls[u] = true
			}
			te.Items = append(te.Items, term)
		}
		m.Taxonomies = append(m.Taxonomies, te)
	}

	m.URLs = make([]string, 0, len(urls))
	for u := range urls {
		m.URLs = append(m.URLs, u)
	}
	slices.Sort(m.URLs)
	return m, nil
}
