// Package library owns every section and page of a build behind
// generation-checked keys.
package library

import (
	"errors"
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/Kush-Singh-26/koshgraph/builder/errs"
	"github.com/Kush-Singh-26/koshgraph/builder/models"
	"github.com/Kush-Singh-26/koshgraph/builder/utils"
)

// ErrSealed is returned by structural mutations after Seal.
var ErrSealed = errors.New("library is sealed")

var generations atomic.Uint32

// Library is the arena of one build. Records are never moved once inserted,
// so keys stay valid until the library is discarded.
type Library struct {
	gen  uint32
	root string

	sections []*models.Section
	pages    []*models.Page

	sectionPaths map[string]models.SectionKey
	pagePaths    map[string]models.PageKey

	sealed bool
}

// New begins a build generation for content stored under root.
func New(root string) *Library {
	return &Library{
		gen:          generations.Add(1),
		root:         utils.NormalizePath(root),
		sectionPaths: make(map[string]models.SectionKey),
		pagePaths:    make(map[string]models.PageKey),
	}
}

func (l *Library) Root() string       { return l.root }
func (l *Library) Generation() uint32 { return l.gen }

// InsertSection adds s. A second section with the same file path is reported
// and the original is kept.
func (l *Library) InsertSection(s *models.Section) (models.SectionKey, error) {
	if l.sealed {
		return models.SectionKey{}, ErrSealed
	}
	if key, ok := l.sectionPaths[s.File.Path]; ok {
		return key, errs.New(errs.CategoryConflict, errs.SeverityFatal, s.File.RelPath,
			"section document inserted twice")
	}
	key := models.MakeSectionKey(l.gen, uint32(len(l.sections)))
	l.sections = append(l.sections, s)
	l.sectionPaths[s.File.Path] = key
	return key, nil
}

// InsertPage adds p. A second page with the same file path is reported
// and the original is kept.
func (l *Library) InsertPage(p *models.Page) (models.PageKey, error) {
	if l.sealed {
		return models.PageKey{}, ErrSealed
	}
	if key, ok := l.pagePaths[p.File.Path]; ok {
		return key, errs.New(errs.CategoryConflict, errs.SeverityFatal, p.File.RelPath,
			"page document inserted twice")
	}
	key := models.MakePageKey(l.gen, uint32(len(l.pages)))
	l.pages = append(l.pages, p)
	l.pagePaths[p.File.Path] = key
	return key, nil
}

// Section returns the record behind k. Keys from another library panic.
func (l *Library) Section(k models.SectionKey) *models.Section {
	if k.Generation() != l.gen || k.Index() >= len(l.sections) {
		panic(fmt.Sprintf("library: section key {gen %d, idx %d} does not belong to generation %d",
			k.Generation(), k.Index(), l.gen))
	}
	return l.sections[k.Index()]
}

// Page returns the record behind k. Keys from another library panic.
func (l *Library) Page(k models.PageKey) *models.Page {
	if k.Generation() != l.gen || k.Index() >= len(l.pages) {
		panic(fmt.Sprintf("library: page key {gen %d, idx %d} does not belong to generation %d",
			k.Generation(), k.Index(), l.gen))
	}
	return l.pages[k.Index()]
}

// SectionByPath finds a section by its absolute file path.
func (l *Library) SectionByPath(path string) (models.SectionKey, bool) {
	k, ok := l.sectionPaths[utils.NormalizePath(path)]
	return k, ok
}

// PageByPath finds a page by its absolute file path.
func (l *Library) PageByPath(path string) (models.PageKey, bool) {
	k, ok := l.pagePaths[utils.NormalizePath(path)]
	return k, ok
}

// Sections iterates in insertion order.
func (l *Library) Sections() iter.Seq2[models.SectionKey, *models.Section] {
	return func(yield func(models.SectionKey, *models.Section) bool) {
		for i, s := range l.sections {
			if !yield(models.MakeSectionKey(l.gen, uint32(i)), s) {
				return
			}
		}
	}
}

// Pages iterates in insertion order.
func (l *Library) Pages() iter.Seq2[models.PageKey, *models.Page] {
	return func(yield func(models.PageKey, *models.Page) bool) {
		for i, p := range l.pages {
			if !yield(models.MakePageKey(l.gen, uint32(i)), p) {
				return
			}
		}
	}
}

func (l *Library) SectionKeys() []models.SectionKey {
	keys := make([]models.SectionKey, len(l.sections))
	for i := range l.sections {
		keys[i] = models.MakeSectionKey(l.gen, uint32(i))
	}
	return keys
}

func (l *Library) PageKeys() []models.PageKey {
	keys := make([]models.PageKey, len(l.pages))
	for i := range l.pages {
		keys[i] = models.MakePageKey(l.gen, uint32(i))
	}
	return keys
}

func (l *Library) NumSections() int { return len(l.sections) }
func (l *Library) NumPages() int    { return len(l.pages) }

// Root section of the tree, present once the graph has been populated.
func (l *Library) RootSection() (models.SectionKey, bool) {
	for k, s := range l.Sections() {
		if s.IsIndex() {
			return k, true
		}
	}
	return models.SectionKey{}, false
}

// Seal marks the structure final. Inserts fail afterwards.
func (l *Library) Seal()        { l.sealed = true }
func (l *Library) Sealed() bool { return l.sealed }

// OrphanPages returns pages that no section lists, in insertion order.
func (l *Library) OrphanPages() []models.PageKey {
	listed := make(map[models.PageKey]bool, len(l.pages))
	for _, s := range l.sections {
		for _, k := range s.Pages {
			listed[k] = true
		}
	}
	var out []models.PageKey
	for k := range l.Pages() {
		if !listed[k] {
			out = append(out, k)
		}
	}
	return out
}
