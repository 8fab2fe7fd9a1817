package library

import (
	"errors"
	"slices"

	"github.com/Kush-Singh-26/koshgraph/builder/models"
	"github.com/Kush-Singh-26/koshgraph/builder/utils"
)

// Document is one discovered content file as handed over by ingestion.
type Document struct {
	Path        string // absolute path
	Section     bool   // true for _index.md documents
	SectionMeta models.SectionMeta
	PageMeta    models.PageMeta
	Raw         string   // body without front matter
	Assets      []string // absolute paths of sibling non-document files
}

// Ingest inserts every document. All insert failures are returned together;
// documents that failed are skipped.
func (l *Library) Ingest(docs []Document) error {
	var failed []error
	for _, d := range docs {
		file := models.NewFileInfo(l.root, d.Path)
		assets := make([]string, len(d.Assets))
		for i, a := range d.Assets {
			assets[i] = utils.NormalizePath(a)
		}
		slices.Sort(assets)

		var err error
		if d.Section {
			_, err = l.InsertSection(&models.Section{
				File:       file,
				Meta:       d.SectionMeta,
				RawContent: d.Raw,
				Assets:     assets,
			})
		} else {
			_, err = l.InsertPage(&models.Page{
				File:       file,
				Meta:       d.PageMeta,
				RawContent: d.Raw,
				Assets:     assets,
			})
		}
		if err != nil {
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}
