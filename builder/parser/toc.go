package parser

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/Kush-Singh-26/koshgraph/builder/models"
)

var tocKey = parser.NewContextKey()

// GetTOC returns the nested table of contents of the converted document.
func GetTOC(pc parser.Context) []models.Header {
	if v := pc.Get(tocKey); v != nil {
		return v.([]models.Header)
	}
	return nil
}

type tocTransformer struct{}

func (t *tocTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	doc := documentFrom(pc)
	source := reader.Source()

	var flat []models.Header
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		heading := n.(*ast.Heading)
		id := headingID(heading)
		if id == "" {
			return ast.WalkSkipChildren, nil
		}
		flat = append(flat, models.Header{
			Level:     heading.Level,
			ID:        id,
			Title:     plainText(heading, source),
			Permalink: doc.Permalink + "#" + id,
		})
		return ast.WalkSkipChildren, nil
	})

	if len(flat) > 0 {
		pc.Set(tocKey, nest(flat))
	}
}

func headingID(h *ast.Heading) string {
	v, ok := h.AttributeString("id")
	if !ok {
		return ""
	}
	switch id := v.(type) {
	case []byte:
		return string(id)
	case string:
		return id
	}
	return ""
}

func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := child.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(source))
			if c.SoftLineBreak() || c.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			if !c.IsCode() {
				b.Write(c.Value)
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// nest folds a flat heading list into a tree. A heading becomes a child
// of the closest preceding heading with a smaller level.
func nest(flat []models.Header) []models.Header {
	var roots []models.Header
	// stack holds pointers into the tree being built
	var stack []*models.Header

	for _, h := range flat {
		for len(stack) > 0 && stack[len(stack)-1].Level >= h.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, h)
			stack = append(stack, &roots[len(roots)-1])
			continue
		}
		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, h)
		stack = append(stack, &parent.Children[len(parent.Children)-1])
	}
	return roots
}
