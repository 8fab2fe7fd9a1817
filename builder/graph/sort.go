package graph

import (
	"cmp"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Kush-Singh-26/koshgraph/builder/library"
	"github.com/Kush-Singh-26/koshgraph/builder/models"
)

// Every ordering falls back to the relative path so the result is total.

func comparePath(a, b string) int {
	return cmp.Compare(a, b)
}

func compareWeight(a, b int, pathA, pathB string) int {
	return cmp.Or(cmp.Compare(a, b), comparePath(pathA, pathB))
}

// pageComparator orders pages of one section by key: dates newest first,
// weights lightest first, titles in collation order, file names lexically.
// Callers must have dropped pages without the key.
func pageComparator(lib *library.Library, key models.SortBy) func(x, y models.PageKey) int {
	switch key {
	case models.SortDate:
		return func(x, y models.PageKey) int {
			a, b := lib.Page(x), lib.Page(y)
			return cmp.Or(b.Meta.Date.Compare(a.Meta.Date.Time), comparePath(a.File.RelPath, b.File.RelPath))
		}
	case models.SortWeight:
		return func(x, y models.PageKey) int {
			a, b := lib.Page(x), lib.Page(y)
			return compareWeight(*a.Meta.Weight, *b.Meta.Weight, a.File.RelPath, b.File.RelPath)
		}
	case models.SortTitle:
		col := collate.New(language.Und, collate.IgnoreCase, collate.Numeric)
		return func(x, y models.PageKey) int {
			a, b := lib.Page(x), lib.Page(y)
			return cmp.Or(col.CompareString(a.Meta.Title, b.Meta.Title), comparePath(a.File.RelPath, b.File.RelPath))
		}
	case models.SortFilename:
		return func(x, y models.PageKey) int {
			a, b := lib.Page(x), lib.Page(y)
			return cmp.Or(cmp.Compare(a.File.Name, b.File.Name), comparePath(a.File.RelPath, b.File.RelPath))
		}
	default:
		return func(x, y models.PageKey) int {
			return comparePath(lib.Page(x).File.RelPath, lib.Page(y).File.RelPath)
		}
	}
}
