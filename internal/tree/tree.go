// Package tree prints the section tree of a loaded site.
package tree

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Kush-Singh-26/koshgraph/builder/library"
	"github.com/Kush-Singh-26/koshgraph/builder/models"
	"github.com/Kush-Singh-26/koshgraph/builder/site"
	"github.com/Kush-Singh-26/koshgraph/internal/project"
)

// Node is one section or page in display order.
type Node struct {
	Title     string
	Path      string
	IsSection bool
	Ignored   bool // page not listed by its section
	Children  []*Node
}

// Load reads the project and returns its tree. Bodies are not rendered.
func Load(ctx context.Context, p *project.Project) (*Node, error) {
	docs, err := p.Documents(ctx)
	if err != nil {
		return nil, err
	}
	s := site.New(p.Config, site.WithLogger(p.Logger))
	if err := s.Load(p.ContentRoot, docs); err != nil {
		return nil, err
	}
	return Build(s.Library()), nil
}

// Build returns the tree rooted at the index section. Children follow the
// graph order: subsections first, then listed pages, then ignored pages.
func Build(lib *library.Library) *Node {
	root, ok := lib.RootSection()
	if !ok {
		return nil
	}
	return sectionNode(lib, root)
}

func sectionNode(lib *library.Library, k models.SectionKey) *Node {
	s := lib.Section(k)
	n := &Node{Title: sectionTitle(s), Path: s.Path, IsSection: true}
	for _, sub := range s.Subsections {
		n.Children = append(n.Children, sectionNode(lib, sub))
	}
	for _, pk := range s.Pages {
		n.Children = append(n.Children, pageNode(lib.Page(pk), false))
	}
	for _, pk := range s.IgnoredPages {
		n.Children = append(n.Children, pageNode(lib.Page(pk), true))
	}
	return n
}

func pageNode(p *models.Page, ignored bool) *Node {
	title := p.Meta.Title
	if title == "" {
		title = fallbackTitle(p.Slug)
	}
	return &Node{Title: title, Path: p.Path, Ignored: ignored}
}

func sectionTitle(s *models.Section) string {
	if s.Meta.Title != "" {
		return s.Meta.Title
	}
	if s.IsIndex() {
		return "Home"
	}
	return fallbackTitle(s.File.Components[len(s.File.Components)-1])
}

// fallbackTitle turns "getting-started" into "Getting Started".
func fallbackTitle(name string) string {
	return cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(name))
}

// Print writes n as an indented tree.
func Print(w io.Writer, n *Node) {
	if n == nil {
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", n.Title, n.Path)
	printChildren(w, n.Children, "")
}

func printChildren(w io.Writer, nodes []*Node, prefix string) {
	for i, c := range nodes {
		branch, next := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, next = "└── ", "    "
		}
		label := c.Title
		if c.IsSection {
			label += "/"
		}
		if c.Ignored {
			label += " (unlisted)"
		}
		_, _ = fmt.Fprintf(w, "%s%s%s %s\n", prefix, branch, label, c.Path)
		printChildren(w, c.Children, prefix+next)
	}
}
