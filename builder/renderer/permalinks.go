package renderer

import (
	"errors"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/Kush-Singh-26/koshgraph/builder/cache"
	"github.com/Kush-Singh-26/koshgraph/builder/config"
	"github.com/Kush-Singh-26/koshgraph/builder/errs"
	"github.com/Kush-Singh-26/koshgraph/builder/library"
	"github.com/Kush-Singh-26/koshgraph/builder/models"
	"github.com/Kush-Singh-26/koshgraph/builder/utils"
)

// PermalinkTable maps content-relative source paths to permalinks. It is
// built once per library and only read afterwards.
type PermalinkTable struct {
	byFile map[string]string
	owners map[string]string // URL path -> source path claiming it
	digest string
}

// Resolve returns the permalink of the document at rel, e.g. "posts/a.md".
func (t *PermalinkTable) Resolve(rel string) (string, bool) {
	p, ok := t.byFile[rel]
	return p, ok
}

// Owner returns the source path that claimed the URL path.
func (t *PermalinkTable) Owner(urlPath string) (string, bool) {
	o, ok := t.owners[urlPath]
	return o, ok
}

func (t *PermalinkTable) Len() int {
	return len(t.byFile)
}

// Digest identifies the table contents; any permalink change changes it.
func (t *PermalinkTable) Digest() string {
	return t.digest
}

// Entries returns source path and permalink pairs ordered by source path.
func (t *PermalinkTable) Entries() [][2]string {
	out := make([][2]string, 0, len(t.byFile))
	for _, rel := range slices.Sorted(maps.Keys(t.byFile)) {
		out = append(out, [2]string{rel, t.byFile[rel]})
	}
	return out
}

type permalinkBuilder struct {
	cfg       *config.Config
	table     *PermalinkTable
	conflicts []error
}

// claim records that source owns urlPath.
func (b *permalinkBuilder) claim(urlPath, source string) {
	if other, ok := b.table.owners[urlPath]; ok {
		b.conflicts = append(b.conflicts, errs.Conflict(urlPath, other, source))
		return
	}
	b.table.owners[urlPath] = source
}

// ComputePermalinks is the first render phase. It assigns the URL path,
// components, permalink and serialized assets of every record and returns
// the source path to permalink table. Two records or aliases resolving to
// the same URL path are a fatal conflict.
func ComputePermalinks(lib *library.Library, cfg *config.Config) (*PermalinkTable, error) {
	if lib.Sealed() {
		return nil, fmt.Errorf("compute permalinks: %w", library.ErrSealed)
	}

	b := &permalinkBuilder{
		cfg: cfg,
		table: &PermalinkTable{
			byFile: make(map[string]string, lib.NumSections()+lib.NumPages()),
			owners: make(map[string]string, lib.NumSections()+lib.NumPages()),
		},
	}

	for _, s := range lib.Sections() {
		s.Components = slices.Clone(s.File.Components)
		s.Path = urlPath(s.Components)
		s.Permalink = cfg.MakePermalink(s.Path)
		s.SerializedAssets = serializeAssets(s.Path, s.Assets)

		b.claim(s.Path, s.File.RelPath)
		b.table.byFile[s.File.RelPath] = s.Permalink
	}

	for _, p := range lib.Pages() {
		if err := b.page(p); err != nil {
			b.conflicts = append(b.conflicts, err)
			continue
		}
		b.claim(p.Path, p.File.RelPath)
		b.table.byFile[p.File.RelPath] = p.Permalink
	}

	// aliases are claimed last so a record always wins the report's first slot
	for _, s := range lib.Sections() {
		for _, a := range s.Meta.Aliases {
			b.claim(AliasPath(a), s.File.RelPath)
		}
	}
	for _, p := range lib.Pages() {
		for _, a := range p.Meta.Aliases {
			b.claim(AliasPath(a), p.File.RelPath)
		}
	}

	if len(b.conflicts) > 0 {
		return nil, errors.Join(b.conflicts...)
	}
	b.table.digest = digest(b.table)
	return b.table, nil
}

func (b *permalinkBuilder) page(p *models.Page) error {
	name := p.Meta.Slug
	if name == "" {
		name = p.File.Name
	}
	p.Slug = utils.Slugify(name)
	if p.Slug == "" {
		return errs.New(errs.CategoryConfig, errs.SeverityFatal, p.File.RelPath,
			fmt.Sprintf("slug %q has no usable characters for a URL", name))
	}

	if override := strings.Trim(p.Meta.Path, "/"); p.Meta.Path != "" {
		// an explicit path ignores section nesting
		if override == "" {
			p.Components = nil
		} else {
			p.Components = strings.Split(override, "/")
		}
	} else {
		p.Components = append(slices.Clone(p.File.Components), p.Slug)
	}
	p.Path = urlPath(p.Components)
	p.Permalink = b.cfg.MakePermalink(p.Path)
	p.SerializedAssets = serializeAssets(p.Path, p.Assets)
	return nil
}

func urlPath(components []string) string {
	if len(components) == 0 {
		return "/"
	}
	return "/" + strings.Join(components, "/") + "/"
}

// AliasPath normalizes an alias to a URL path. Aliases naming a file
// ("old.html") keep no trailing slash.
func AliasPath(alias string) string {
	trimmed := strings.Trim(alias, "/")
	if trimmed == "" {
		return "/"
	}
	if path.Ext(trimmed) != "" {
		return "/" + trimmed
	}
	return "/" + trimmed + "/"
}

func serializeAssets(urlPath string, assets []string) []string {
	if len(assets) == 0 {
		return nil
	}
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = urlPath + path.Base(a)
	}
	return out
}

func digest(t *PermalinkTable) string {
	var sb strings.Builder
	for _, e := range t.Entries() {
		sb.WriteString(e[0])
		sb.WriteByte('\t')
		sb.WriteString(e[1])
		sb.WriteByte('\n')
	}
	return cache.HashString(sb.String())
}
