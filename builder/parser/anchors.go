package parser

import (
	"fmt"
	"html"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/Kush-Singh-26/koshgraph/builder/models"
)

// AnchorHTML is the markup injected next to a heading with the given id.
func AnchorHTML(id string) string {
	escaped := html.EscapeString(id)
	return fmt.Sprintf(`<a class="kosh-anchor" href="#%s" aria-label="Anchor link for: %s">🔗</a>`, escaped, escaped)
}

type anchorTransformer struct{}

func (t *anchorTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	policy := documentFrom(pc).Anchors
	if policy != models.AnchorLeft && policy != models.AnchorRight {
		return
	}

	var headings []*ast.Heading
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindHeading {
			headings = append(headings, n.(*ast.Heading))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, h := range headings {
		id := headingID(h)
		if id == "" {
			continue
		}
		anchor := ast.NewString([]byte(AnchorHTML(id)))
		anchor.SetCode(true)

		if policy == models.AnchorLeft {
			if first := h.FirstChild(); first != nil {
				h.InsertBefore(h, first, anchor)
			} else {
				h.AppendChild(h, anchor)
			}
			continue
		}
		h.AppendChild(h, anchor)
	}
}
