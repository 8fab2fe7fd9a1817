// Package loader discovers content documents on an afero filesystem and
// turns them into library documents.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/Kush-Singh-26/koshgraph/builder/config"
	"github.com/Kush-Singh-26/koshgraph/builder/errs"
	"github.com/Kush-Singh-26/koshgraph/builder/library"
	"github.com/Kush-Singh-26/koshgraph/builder/logfields"
	"github.com/Kush-Singh-26/koshgraph/builder/utils"
)

const (
	sectionFile = "_index.md"
	bundleFile  = "index.md"
)

type Loader struct {
	fs     afero.Fs
	cfg    *config.Config
	logger *slog.Logger
}

func New(fsys afero.Fs, cfg *config.Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{fs: fsys, cfg: cfg, logger: logger}
}

// directory is what one walked folder holds.
type directory struct {
	markdown []string
	assets   []string
}

// Load walks root and returns its documents ordered by path. Every
// document that fails to parse is reported; the others are still returned.
func (l *Loader) Load(ctx context.Context, root string) ([]library.Document, error) {
	root = utils.NormalizePath(root)
	dirs := make(map[string]*directory)
	var order []string

	err := afero.Walk(l.fs, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		p = utils.NormalizePath(p)
		rel := utils.SafeRel(root, p)

		if rel != "." && (strings.HasPrefix(info.Name(), ".") || l.ignored(rel)) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		dir := path.Dir(p)
		d, ok := dirs[dir]
		if !ok {
			d = &directory{}
			dirs[dir] = d
			order = append(order, dir)
		}
		if strings.HasSuffix(p, ".md") {
			d.markdown = append(d.markdown, p)
		} else {
			d.assets = append(d.assets, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	var docs []library.Document
	var failed []error
	for _, dir := range order {
		d := dirs[dir]
		hasSection := slices.ContainsFunc(d.markdown, func(p string) bool { return path.Base(p) == sectionFile })

		for _, p := range d.markdown {
			rel := utils.SafeRel(root, p)
			base := path.Base(p)
			if base == bundleFile && hasSection {
				failed = append(failed, errs.New(errs.CategoryConflict, errs.SeverityFatal, rel,
					"index.md and _index.md cannot share a directory"))
				continue
			}

			doc, err := l.document(p, rel)
			if err != nil {
				failed = append(failed, err)
				continue
			}
			if !doc.Section && doc.PageMeta.Draft && !l.cfg.IncludeDrafts {
				l.logger.Debug("Skipping draft", logfields.Path(rel))
				continue
			}
			// sections and bundles own the files next to them
			if doc.Section || base == bundleFile {
				doc.Assets = slices.Clone(d.assets)
			}
			docs = append(docs, doc)
		}
	}

	slices.SortFunc(docs, func(a, b library.Document) int { return strings.Compare(a.Path, b.Path) })
	l.logger.Debug("Content loaded", logfields.Path(root), logfields.Count(len(docs)))
	return docs, errors.Join(failed...)
}

func (l *Loader) document(p, rel string) (library.Document, error) {
	content, err := afero.ReadFile(l.fs, p)
	if err != nil {
		return library.Document{}, errs.Wrap(err, errs.CategoryInternal, errs.SeverityFatal, rel, "read document")
	}

	fm, body, _, err := SplitFrontMatter(content)
	if err != nil {
		return library.Document{}, errs.MalformedMarkup(rel, err.Error(), true)
	}

	doc := library.Document{
		Path:    p,
		Section: path.Base(p) == sectionFile,
		Raw:     string(body),
	}
	if len(bytes.TrimSpace(fm)) == 0 {
		return doc, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(fm))
	dec.KnownFields(true)
	if doc.Section {
		err = dec.Decode(&doc.SectionMeta)
	} else {
		err = dec.Decode(&doc.PageMeta)
	}
	if err != nil {
		return library.Document{}, errs.MalformedMarkup(rel, "front matter: "+err.Error(), true)
	}
	return doc, nil
}

// ignored matches rel and its base name against ignored_content globs.
func (l *Loader) ignored(rel string) bool {
	base := path.Base(rel)
	for _, pattern := range l.cfg.IgnoredContent {
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
