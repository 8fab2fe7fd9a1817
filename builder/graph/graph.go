// Package graph links the records of a library into the section tree:
// ancestors, subsections, page assignment, ordering and sibling links.
package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"

	"github.com/Kush-Singh-26/koshgraph/builder/config"
	"github.com/Kush-Singh-26/koshgraph/builder/errs"
	"github.com/Kush-Singh-26/koshgraph/builder/library"
	"github.com/Kush-Singh-26/koshgraph/builder/logfields"
	"github.com/Kush-Singh-26/koshgraph/builder/models"
)

// Builder populates relationships for one library.
type Builder struct {
	lib    *library.Library
	cfg    *config.Config
	logger *slog.Logger

	// directory key -> section living there
	byDir map[string]models.SectionKey
}

func NewBuilder(lib *library.Library, cfg *config.Config, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{lib: lib, cfg: cfg, logger: logger}
}

// Populate is a shorthand for NewBuilder(...).Populate().
func Populate(lib *library.Library, cfg *config.Config, logger *slog.Logger) error {
	return NewBuilder(lib, cfg, logger).Populate()
}

// Populate fixes the tree. Every derived relationship is recomputed, so
// calling it twice yields the same graph. Errors are structural and fatal.
func (b *Builder) Populate() error {
	if b.lib.Sealed() {
		return fmt.Errorf("graph: %w", library.ErrSealed)
	}

	if err := b.indexSections(); err != nil {
		return err
	}
	b.reset()
	b.linkSections()
	b.assignPages()

	if err := b.sortPages(); err != nil {
		return err
	}
	b.linkSiblings()
	b.propagatePageTemplates()

	b.logger.Debug("Content graph populated",
		logfields.Count(b.lib.NumSections()),
		slog.Int("pages", b.lib.NumPages()),
		slog.Int("orphans", len(b.lib.OrphanPages())))
	return nil
}

// indexSections maps each directory to its section, synthesizing the root
// section when the content tree has no _index.md at the top.
func (b *Builder) indexSections() error {
	b.byDir = make(map[string]models.SectionKey, b.lib.NumSections()+1)

	var conflicts []error
	for k, s := range b.lib.Sections() {
		dir := models.DirKey(s.File.Components)
		if prev, ok := b.byDir[dir]; ok {
			conflicts = append(conflicts, errs.New(errs.CategoryConflict, errs.SeverityFatal,
				s.File.RelPath,
				fmt.Sprintf("ambiguous parent: directory %q already has section %s",
					dir, b.lib.Section(prev).File.RelPath)))
			continue
		}
		b.byDir[dir] = k
	}
	if len(conflicts) > 0 {
		return errors.Join(conflicts...)
	}

	if _, ok := b.byDir[""]; !ok {
		root := &models.Section{
			File: models.NewFileInfo(b.lib.Root(), path.Join(b.lib.Root(), "_index.md")),
		}
		k, err := b.lib.InsertSection(root)
		if err != nil {
			return fmt.Errorf("graph: synthesize root section: %w", err)
		}
		b.byDir[""] = k
		b.logger.Debug("Synthesized default root section", logfields.Path(root.File.RelPath))
	}
	return nil
}

func (b *Builder) reset() {
	for _, s := range b.lib.Sections() {
		s.Pages = nil
		s.IgnoredPages = nil
		s.Ancestors = nil
		s.Subsections = nil
	}
	for _, p := range b.lib.Pages() {
		p.Ancestors = nil
		p.Previous = models.PageKey{}
		p.Next = models.PageKey{}
		p.Template = ""
	}
}

// enclosing returns the sections on the way from the root down to, but
// excluding, the directory named by components.
func (b *Builder) enclosing(components []string) []models.SectionKey {
	var chain []models.SectionKey
	for i := 0; i < len(components); i++ {
		if k, ok := b.byDir[models.DirKey(components[:i])]; ok {
			chain = append(chain, k)
		}
	}
	return chain
}

// nearest returns the section owning the directory or, failing that, the
// closest directory above it that has one. The root always matches.
func (b *Builder) nearest(components []string) models.SectionKey {
	for i := len(components); i >= 0; i-- {
		if k, ok := b.byDir[models.DirKey(components[:i])]; ok {
			return k
		}
	}
	return b.byDir[""]
}

func (b *Builder) linkSections() {
	for k, s := range b.lib.Sections() {
		if s.IsIndex() {
			continue
		}
		s.Ancestors = b.enclosing(s.File.Components)
		parent := b.lib.Section(s.Ancestors[len(s.Ancestors)-1])
		parent.Subsections = append(parent.Subsections, k)
	}

	for _, s := range b.lib.Sections() {
		slices.SortStableFunc(s.Subsections, func(x, y models.SectionKey) int {
			a, c := b.lib.Section(x), b.lib.Section(y)
			return compareWeight(a.Meta.Weight, c.Meta.Weight, a.File.RelPath, c.File.RelPath)
		})
	}
}

func (b *Builder) assignPages() {
	for k, p := range b.lib.Pages() {
		sk := b.nearest(p.File.Components)
		s := b.lib.Section(sk)

		p.Ancestors = append(slices.Clone(s.Ancestors), sk)
		if !p.Listed() {
			s.IgnoredPages = append(s.IgnoredPages, k)
			continue
		}
		s.Pages = append(s.Pages, k)
	}
}

func (b *Builder) sortKey(s *models.Section) models.SortBy {
	if s.Meta.SortBy != "" {
		return s.Meta.SortBy
	}
	return b.cfg.DefaultSortKey
}

// sortPages orders each section's pages. Pages lacking the key move to
// ignored_pages when the section excludes unsorted pages and fail the build otherwise.
func (b *Builder) sortPages() error {
	var missing []error
	for _, s := range b.lib.Sections() {
		key := b.sortKey(s)

		kept := s.Pages[:0]
		for _, pk := range s.Pages {
			p := b.lib.Page(pk)
			if p.Meta.HasSortKey(key) {
				kept = append(kept, pk)
				continue
			}
			if s.Meta.ExcludeUnsorted {
				s.IgnoredPages = append(s.IgnoredPages, pk)
				continue
			}
			missing = append(missing, errs.MissingField(p.File.RelPath, string(key)))
		}
		s.Pages = kept

		slices.SortStableFunc(s.Pages, pageComparator(b.lib, key))
		slices.SortStableFunc(s.IgnoredPages, func(x, y models.PageKey) int {
			return comparePath(b.lib.Page(x).File.RelPath, b.lib.Page(y).File.RelPath)
		})
	}
	return errors.Join(missing...)
}

func (b *Builder) linkSiblings() {
	for _, s := range b.lib.Sections() {
		for i, pk := range s.Pages {
			p := b.lib.Page(pk)
			if i > 0 {
				p.Previous = s.Pages[i-1]
			}
			if i < len(s.Pages)-1 {
				p.Next = s.Pages[i+1]
			}
		}
	}
}

// propagatePageTemplates gives each page the page_template of its nearest
// ancestor that declares one.
func (b *Builder) propagatePageTemplates() {
	for _, p := range b.lib.Pages() {
		for i := len(p.Ancestors) - 1; i >= 0; i-- {
			if tpl := b.lib.Section(p.Ancestors[i]).Meta.PageTemplate; tpl != "" {
				p.Template = tpl
				break
			}
		}
	}
}
