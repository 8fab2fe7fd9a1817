package parser

import (
	"path"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var brokenLinksKey = parser.NewContextKey()

// GetBrokenLinks returns the internal link targets that did not resolve,
// in document order.
func GetBrokenLinks(pc parser.Context) []string {
	if v := pc.Get(brokenLinksKey); v != nil {
		return v.([]string)
	}
	return nil
}

func addBrokenLink(pc parser.Context, target string) {
	pc.Set(brokenLinksKey, append(GetBrokenLinks(pc), target))
}

type linkTransformer struct {
	resolver Resolver
}

func (t *linkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	doc := documentFrom(pc)

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindLink {
			return ast.WalkContinue, nil
		}
		link := n.(*ast.Link)
		dest := string(link.Destination)
		if !IsInternalLink(dest) {
			return ast.WalkContinue, nil
		}
		if href, ok := ResolveLink(t.resolver, doc.RelPath, dest); ok {
			link.Destination = []byte(href)
			return ast.WalkContinue, nil
		}
		addBrokenLink(pc, dest)
		link.SetAttributeString("class", []byte("broken-link"))
		return ast.WalkContinue, nil
	})
}

// IsInternalLink reports whether dest points at a markdown source file:
// "@/posts/a.md", "../a.md#frag" or "posts/a.md".
func IsInternalLink(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "//") || strings.Contains(dest, "://") {
		return false
	}
	if strings.HasPrefix(dest, "mailto:") || strings.HasPrefix(dest, "tel:") {
		return false
	}
	target, _, _ := strings.Cut(dest, "#")
	return strings.HasSuffix(target, ".md")
}

// ResolveLink turns an internal link into a permalink. "@/" targets are
// taken from the content root; anything else is tried relative to the
// linking file first, then from the content root.
func ResolveLink(r Resolver, source, dest string) (string, bool) {
	target, fragment, _ := strings.Cut(dest, "#")

	var candidates []string
	if rest, ok := strings.CutPrefix(target, "@/"); ok {
		candidates = []string{path.Clean(rest)}
	} else {
		candidates = []string{
			path.Join(path.Dir(source), target),
			strings.TrimPrefix(path.Clean(target), "/"),
		}
	}

	for _, c := range candidates {
		c = strings.TrimPrefix(c, "/")
		if strings.HasPrefix(c, "../") {
			continue
		}
		permalink, ok := r.Resolve(c)
		if !ok {
			continue
		}
		if fragment != "" {
			return permalink + "#" + fragment, true
		}
		return permalink, true
	}
	return "", false
}
