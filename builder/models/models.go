// defines the content records held by the library and the metadata parsed from front matter
package models

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SortBy names the order a section applies to its pages.
type SortBy string

const (
	SortDate     SortBy = "date"
	SortWeight   SortBy = "weight"
	SortTitle    SortBy = "title"
	SortFilename SortBy = "filename"
	SortNone     SortBy = "none"
)

// AnchorPolicy controls where heading anchors are injected.
type AnchorPolicy string

const (
	AnchorNone  AnchorPolicy = "none"
	AnchorLeft  AnchorPolicy = "left"
	AnchorRight AnchorPolicy = "right"
)

// SectionKey addresses a section inside one library generation.
// Only the library mints keys; the zero value addresses nothing.
type SectionKey struct {
	gen uint32
	idx uint32
}

// PageKey addresses a page inside one library generation.
type PageKey struct {
	gen uint32
	idx uint32
}

func MakeSectionKey(gen, idx uint32) SectionKey { return SectionKey{gen: gen, idx: idx} }
func MakePageKey(gen, idx uint32) PageKey       { return PageKey{gen: gen, idx: idx} }

func (k SectionKey) Generation() uint32 { return k.gen }
func (k SectionKey) Index() int         { return int(k.idx) }
func (k SectionKey) Valid() bool        { return k.gen != 0 }

func (k PageKey) Generation() uint32 { return k.gen }
func (k PageKey) Index() int         { return int(k.idx) }
func (k PageKey) Valid() bool        { return k.gen != 0 }

// --- File Identity ---

// FileInfo locates a document relative to the content root.
// All paths use forward slashes.
type FileInfo struct {
	Path       string   // absolute path of the document
	RelPath    string   // path relative to the content root, e.g. "posts/hello.md"
	Parent     string   // absolute directory holding the document
	Name       string   // file stem; bundles use their directory name
	Components []string // content-root-relative directories the document belongs to
	Bundle     bool     // page stored as <dir>/index.md
}

// NewFileInfo derives identity for the document at p under root.
func NewFileInfo(root, p string) FileInfo {
	root = strings.TrimSuffix(filepath.ToSlash(filepath.Clean(root)), "/")
	p = filepath.ToSlash(filepath.Clean(p))

	rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
	dir := path.Dir(rel)
	base := path.Base(rel)
	stem := strings.TrimSuffix(base, path.Ext(base))

	var components []string
	if dir != "." && dir != "" {
		components = strings.Split(dir, "/")
	}

	info := FileInfo{
		Path:       p,
		RelPath:    rel,
		Parent:     path.Dir(p),
		Name:       stem,
		Components: components,
	}

	// posts/with-assets/index.md is the page "with-assets" living in posts
	if stem == "index" && len(components) > 0 {
		info.Bundle = true
		info.Name = components[len(components)-1]
		info.Components = components[:len(components)-1]
	}
	return info
}

// DirKey joins components into the key used to match sections to directories.
func DirKey(components []string) string {
	return strings.Join(components, "/")
}

// --- Table of Contents ---

// Header is one heading of a rendered document with its nested children.
type Header struct {
	Level     int      `json:"level"`
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Permalink string   `json:"permalink"`
	Children  []Header `json:"children"`
}

// --- Front Matter ---

// SectionMeta is the front matter of an _index.md document.
type SectionMeta struct {
	Title               string         `yaml:"title"`
	Description         string         `yaml:"description"`
	SortBy              SortBy         `yaml:"sort_by"`
	Weight              int            `yaml:"weight"`
	Template            string         `yaml:"template"`
	PageTemplate        string         `yaml:"page_template"`
	PaginateBy          int            `yaml:"paginate_by"`
	PaginatePath        string         `yaml:"paginate_path"`
	InsertAnchorLinks   AnchorPolicy   `yaml:"insert_anchor_links"`
	ContinueReadingText string         `yaml:"continue_reading_text"`
	ExcludeUnsorted     bool           `yaml:"exclude_unsorted"`
	RedirectTo          string         `yaml:"redirect_to"`
	Aliases             []string       `yaml:"aliases"`
	Extra               map[string]any `yaml:"extra"`
}

// PageMeta is the front matter of a page document.
type PageMeta struct {
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
	Date        Date                `yaml:"date"`
	Weight      *int                `yaml:"weight"`
	Slug        string              `yaml:"slug"`
	Path        string              `yaml:"path"`
	Draft       bool                `yaml:"draft"`
	Template    string              `yaml:"template"`
	Taxonomies  map[string][]string `yaml:"taxonomies"`
	Aliases     []string            `yaml:"aliases"`
	Listed      *bool               `yaml:"listed"`
	Extra       map[string]any      `yaml:"extra"`
}

// HasSortKey reports whether the metadata carries the value key orders by.
func (m *PageMeta) HasSortKey(key SortBy) bool {
	switch key {
	case SortDate:
		return !m.Date.IsZero()
	case SortWeight:
		return m.Weight != nil
	case SortTitle:
		return strings.TrimSpace(m.Title) != ""
	default:
		return true
	}
}

// dateLayouts are the front matter date forms accepted in addition to
// unquoted YAML timestamps.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate reads an RFC3339 timestamp or a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q is neither RFC3339 nor YYYY-MM-DD", s)
}

// Date is a front matter date. Quoted and unquoted RFC3339 timestamps
// and YYYY-MM-DD dates are accepted.
type Date struct {
	time.Time
}

// NewDate wraps t.
func NewDate(t time.Time) Date { return Date{Time: t} }

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: date must be a scalar", value.Line)
	}
	if strings.TrimSpace(value.Value) == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := ParseDate(value.Value)
	if err != nil {
		if value.ShortTag() == "!!timestamp" {
			return value.Decode(&d.Time)
		}
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	d.Time = t
	return nil
}

// --- Records ---

// Section is one directory-level index document and its place in the graph.
type Section struct {
	File FileInfo
	Meta SectionMeta

	Path       string
	Components []string
	Permalink  string

	RawContent       string
	Content          string
	Summary          string
	Toc              []Header
	WordCount        int
	ReadingTime      int
	Assets           []string
	SerializedAssets []string

	Pages        []PageKey
	IgnoredPages []PageKey
	Ancestors    []SectionKey
	Subsections  []SectionKey
}

func (s *Section) IsIndex() bool {
	return len(s.File.Components) == 0
}

// TemplateName returns the template a renderer should use for the section.
func (s *Section) TemplateName() string {
	if s.Meta.Template != "" {
		return s.Meta.Template
	}
	if s.IsIndex() {
		return "index.html"
	}
	return "section.html"
}

// Page is one leaf document.
type Page struct {
	File FileInfo
	Meta PageMeta

	Slug       string
	Path       string
	Components []string
	Permalink  string

	RawContent       string
	Content          string
	Summary          string
	Toc              []Header
	WordCount        int
	ReadingTime      int
	Assets           []string
	SerializedAssets []string

	Ancestors []SectionKey
	Previous  PageKey
	Next      PageKey

	// Template inherited from the nearest section declaring page_template.
	Template string
}

// Listed reports whether the page wants to appear in its section's listing.
func (p *Page) Listed() bool {
	return p.Meta.Listed == nil || *p.Meta.Listed
}

// Parent returns the immediate section of the page.
func (p *Page) Parent() (SectionKey, bool) {
	if len(p.Ancestors) == 0 {
		return SectionKey{}, false
	}
	return p.Ancestors[len(p.Ancestors)-1], true
}

func (p *Page) TemplateName() string {
	switch {
	case p.Meta.Template != "":
		return p.Meta.Template
	case p.Template != "":
		return p.Template
	default:
		return "page.html"
	}
}
