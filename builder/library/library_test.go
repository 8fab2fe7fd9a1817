package library

import (
	"testing"

	"github.com/Kush-Singh-26/koshgraph/builder/errs"
	"github.com/Kush-Singh-26/koshgraph/builder/models"
)

func newSection(root, rel string) *models.Section {
	return &models.Section{File: models.NewFileInfo(root, root+"/"+rel)}
}

func newPage(root, rel string) *models.Page {
	return &models.Page{File: models.NewFileInfo(root, root+"/"+rel)}
}

func TestInsertAndLookup(t *testing.T) {
	lib := New("/site/content")

	sk, err := lib.InsertSection(newSection("/site/content", "posts/_index.md"))
	if err != nil {
		t.Fatalf("InsertSection: %v", err)
	}
	pk, err := lib.InsertPage(newPage("/site/content", "posts/hello.md"))
	if err != nil {
		t.Fatalf("InsertPage: %v", err)
	}

	if got, ok := lib.SectionByPath("/site/content/posts/_index.md"); !ok || got != sk {
		t.Errorf("SectionByPath = %v, %v", got, ok)
	}
	if got, ok := lib.PageByPath("/site/content/posts/hello.md"); !ok || got != pk {
		t.Errorf("PageByPath = %v, %v", got, ok)
	}
	if _, ok := lib.PageByPath("/site/content/posts/missing.md"); ok {
		t.Error("PageByPath found a page that was never inserted")
	}
	if lib.Page(pk).File.RelPath != "posts/hello.md" {
		t.Errorf("RelPath = %q", lib.Page(pk).File.RelPath)
	}
}

func TestInsertDuplicateKeepsOriginal(t *testing.T) {
	lib := New("/c")

	first := newPage("/c", "a.md")
	first.RawContent = "first"
	k1, _ := lib.InsertPage(first)

	second := newPage("/c", "a.md")
	second.RawContent = "second"
	k2, err := lib.InsertPage(second)

	if err == nil {
		t.Fatal("duplicate insert should be reported")
	}
	if !errs.IsCategory(err, errs.CategoryConflict) {
		t.Errorf("category = %s, want structural_conflict", errs.GetCategory(err))
	}
	if k1 != k2 {
		t.Error("duplicate insert should return the existing key")
	}
	if lib.Page(k1).RawContent != "first" || lib.NumPages() != 1 {
		t.Error("duplicate insert overwrote the original record")
	}
}

func TestForeignKeyPanics(t *testing.T) {
	a := New("/c")
	b := New("/c")
	k, _ := a.InsertSection(newSection("/c", "_index.md"))
	_, _ = b.InsertSection(newSection("/c", "_index.md"))

	defer func() {
		if recover() == nil {
			t.Error("using a key from another generation should panic")
		}
	}()
	b.Section(k)
}

func TestSealRejectsInserts(t *testing.T) {
	lib := New("/c")
	lib.Seal()

	if _, err := lib.InsertPage(newPage("/c", "a.md")); err != ErrSealed {
		t.Errorf("err = %v, want ErrSealed", err)
	}
	if !lib.Sealed() {
		t.Error("Sealed() = false after Seal")
	}
}

func TestIterationOrderAndOrphans(t *testing.T) {
	lib := New("/c")
	root, _ := lib.InsertSection(newSection("/c", "_index.md"))
	names := []string{"b.md", "a.md", "c.md"}
	keys := make([]models.PageKey, len(names))
	for i, n := range names {
		keys[i], _ = lib.InsertPage(newPage("/c", n))
	}

	i := 0
	for k, p := range lib.Pages() {
		if k != keys[i] || p.File.RelPath != names[i] {
			t.Errorf("position %d: got %s", i, p.File.RelPath)
		}
		i++
	}

	lib.Section(root).Pages = []models.PageKey{keys[0], keys[2]}
	orphans := lib.OrphanPages()
	if len(orphans) != 1 || orphans[0] != keys[1] {
		t.Errorf("OrphanPages = %v, want [%v]", orphans, keys[1])
	}

	if got, ok := lib.RootSection(); !ok || got != root {
		t.Error("RootSection did not find the index section")
	}
}

func TestViews(t *testing.T) {
	lib := New("/c")
	root, _ := lib.InsertSection(newSection("/c", "_index.md"))
	a, _ := lib.InsertPage(newPage("/c", "a.md"))
	b, _ := lib.InsertPage(newPage("/c", "b.md"))

	lib.Section(root).Pages = []models.PageKey{a, b}
	lib.Section(root).Permalink = "https://example.com/"
	lib.Page(a).Ancestors = []models.SectionKey{root}
	lib.Page(a).Next = b
	lib.Page(b).Permalink = "https://example.com/b/"

	view := lib.SectionView(root)
	if view.Template != "index.html" {
		t.Errorf("Template = %q, want index.html", view.Template)
	}
	if len(view.Pages) != 2 {
		t.Fatalf("Pages = %d, want 2", len(view.Pages))
	}
	if view.Pages[0].Next != "https://example.com/b/" {
		t.Errorf("Next = %q", view.Pages[0].Next)
	}
	if len(view.Pages[0].Ancestors) != 1 || view.Pages[0].Ancestors[0] != "_index.md" {
		t.Errorf("Ancestors = %v", view.Pages[0].Ancestors)
	}
	if view.Pages[0].Template != "page.html" {
		t.Errorf("page Template = %q", view.Pages[0].Template)
	}
}
