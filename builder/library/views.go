package library

import (
	"time"

	"github.com/Kush-Singh-26/koshgraph/builder/models"
)

// PageView is the read-only shape of a page handed to templates, feeds and search.
type PageView struct {
	RelativePath string              `json:"relative_path"`
	Title        string              `json:"title"`
	Description  string              `json:"description,omitempty"`
	Permalink    string              `json:"permalink"`
	Path         string              `json:"path"`
	Slug         string              `json:"slug"`
	Date         string              `json:"date,omitempty"`
	Weight       *int                `json:"weight,omitempty"`
	Draft        bool                `json:"draft,omitempty"`
	Template     string              `json:"template"`
	Content      string              `json:"content"`
	Summary      string              `json:"summary,omitempty"`
	Toc          []models.Header     `json:"toc"`
	WordCount    int                 `json:"word_count"`
	ReadingTime  int                 `json:"reading_time"`
	Ancestors    []string            `json:"ancestors"`
	Taxonomies   map[string][]string `json:"taxonomies,omitempty"`
	Assets       []string            `json:"assets"`
	Previous     string              `json:"previous,omitempty"`
	Next         string              `json:"next,omitempty"`
	Extra        map[string]any      `json:"extra,omitempty"`
}

// SectionView is the read-only shape of a section.
type SectionView struct {
	RelativePath string          `json:"relative_path"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Permalink    string          `json:"permalink"`
	Path         string          `json:"path"`
	Template     string          `json:"template"`
	Content      string          `json:"content"`
	Summary      string          `json:"summary,omitempty"`
	Toc          []models.Header `json:"toc"`
	WordCount    int             `json:"word_count"`
	ReadingTime  int             `json:"reading_time"`
	Ancestors    []string        `json:"ancestors"`
	Subsections  []string        `json:"subsections"`
	Pages        []PageView      `json:"pages"`
	Assets       []string        `json:"assets"`
	Extra        map[string]any  `json:"extra,omitempty"`
}

// ancestors are exposed by relative path so views stay comparable across builds
func (l *Library) ancestorPaths(keys []models.SectionKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = l.Section(k).File.RelPath
	}
	return out
}

func (l *Library) PageView(k models.PageKey) PageView {
	p := l.Page(k)
	v := PageView{
		RelativePath: p.File.RelPath,
		Title:        p.Meta.Title,
		Description:  p.Meta.Description,
		Permalink:    p.Permalink,
		Path:         p.Path,
		Slug:         p.Slug,
		Weight:       p.Meta.Weight,
		Draft:        p.Meta.Draft,
		Template:     p.TemplateName(),
		Content:      p.Content,
		Summary:      p.Summary,
		Toc:          p.Toc,
		WordCount:    p.WordCount,
		ReadingTime:  p.ReadingTime,
		Ancestors:    l.ancestorPaths(p.Ancestors),
		Taxonomies:   p.Meta.Taxonomies,
		Assets:       p.SerializedAssets,
		Extra:        p.Meta.Extra,
	}
	if !p.Meta.Date.IsZero() {
		v.Date = p.Meta.Date.Format(time.RFC3339)
	}
	if p.Previous.Valid() {
		v.Previous = l.Page(p.Previous).Permalink
	}
	if p.Next.Valid() {
		v.Next = l.Page(p.Next).Permalink
	}
	return v
}

func (l *Library) SectionView(k models.SectionKey) SectionView {
	s := l.Section(k)
	v := SectionView{
		RelativePath: s.File.RelPath,
		Title:        s.Meta.Title,
		Description:  s.Meta.Description,
		Permalink:    s.Permalink,
		Path:         s.Path,
		Template:     s.TemplateName(),
		Content:      s.Content,
		Summary:      s.Summary,
		Toc:          s.Toc,
		WordCount:    s.WordCount,
		ReadingTime:  s.ReadingTime,
		Ancestors:    l.ancestorPaths(s.Ancestors),
		Subsections:  l.ancestorPaths(s.Subsections),
		Pages:        make([]PageView, 0, len(s.Pages)),
		Assets:       s.SerializedAssets,
		Extra:        s.Meta.Extra,
	}
	for _, pk := range s.Pages {
		v.Pages = append(v.Pages, l.PageView(pk))
	}
	return v
}
