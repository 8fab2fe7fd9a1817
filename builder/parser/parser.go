// Configures the markdown parser and the per-document transformers
package parser

import (
	"strings"

	chroma_html "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/gohugoio/hugo-goldmark-extensions/passthrough"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/Kush-Singh-26/koshgraph/builder/models"
	"github.com/Kush-Singh-26/koshgraph/builder/utils"
)

// Resolver maps a content-relative source path to its permalink.
type Resolver interface {
	Resolve(relPath string) (string, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(relPath string) (string, bool)

func (f ResolverFunc) Resolve(relPath string) (string, bool) { return f(relPath) }

type Options struct {
	HighlightStyle string
	Resolver       Resolver
}

func codeBlockWrapper(w util.BufWriter, c highlighting.CodeBlockContext, entering bool) {
	if entering {
		langBytes, _ := c.Language()
		lang := string(langBytes)
		if lang == "" {
			lang = "text"
		}
		_, _ = w.WriteString(`<div class="code-wrapper" data-lang="` + lang + `">`)
	} else {
		_, _ = w.WriteString(`</div>`)
	}
}

// New builds a goldmark instance. It holds no per-document state and
// may be shared by every render worker.
func New(opts Options) goldmark.Markdown {
	style := opts.HighlightStyle
	if style == "" {
		style = "nord"
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = ResolverFunc(func(string) (string, bool) { return "", false })
	}

	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chroma_html.WithClasses(true),
				),
				highlighting.WithWrapperRenderer(codeBlockWrapper),
			),
			passthrough.New(passthrough.Config{
				InlineDelimiters: []passthrough.Delimiters{{Open: "$", Close: "$"}, {Open: "\\(", Close: "\\)"}},
				BlockDelimiters:  []passthrough.Delimiters{{Open: "$$", Close: "$$"}, {Open: "\\[", Close: "\\]"}},
			}),
		),
		goldmark.WithParserOptions(
			parser.WithBlockParsers(
				util.Prioritized(newFenceParser(), 699),
			),
			parser.WithASTTransformers(
				util.Prioritized(&markupTransformer{}, 10),
				util.Prioritized(&linkTransformer{resolver: resolver}, 50),
				util.Prioritized(&tocTransformer{}, 100),
				util.Prioritized(&anchorTransformer{}, 200),
			),
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// Document describes the record being converted.
type Document struct {
	// RelPath is the content-relative source path; relative links resolve against it.
	RelPath   string
	Permalink string
	Anchors   models.AnchorPolicy
}

// Result is the output of one conversion.
type Result struct {
	HTML        string
	Toc         []models.Header
	BrokenLinks []string
}

var documentKey = parser.NewContextKey()

// NewContext prepares a parser context carrying doc and a fresh heading
// id generator.
func NewContext(doc Document) parser.Context {
	pc := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	pc.Set(documentKey, doc)
	pc.Set(markupKey, &markupState{open: make(map[ast.Node]int)})
	return pc
}

func documentFrom(pc parser.Context) Document {
	if v := pc.Get(documentKey); v != nil {
		return v.(Document)
	}
	return Document{}
}

// Convert renders source for doc. An unterminated code fence or HTML
// comment block is reported as a *MarkupError next to the rendered result.
func Convert(md goldmark.Markdown, source []byte, doc Document) (Result, error) {
	pc := NewContext(doc)
	buf := utils.SharedBufferPool.Get()
	defer utils.SharedBufferPool.Put(buf)

	if err := md.Convert(source, buf, parser.WithContext(pc)); err != nil {
		return Result{}, err
	}
	return Result{
		HTML:        strings.Clone(buf.String()),
		Toc:         GetTOC(pc),
		BrokenLinks: GetBrokenLinks(pc),
	}, markupError(pc)
}
