package parser

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// MarkupError locates a construct the markdown parser would silently
// swallow to the end of the document.
type MarkupError struct {
	Line   int
	Reason string
}

func (e *MarkupError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

var commentClose = []byte("-->")

// markupState tracks fenced code blocks that were opened but never saw
// their closing fence, keyed by node with the offset of the opening line.
type markupState struct {
	open map[ast.Node]int
	err  *MarkupError
}

var markupKey = parser.NewContextKey()

func markupFrom(pc parser.Context) *markupState {
	if v := pc.Get(markupKey); v != nil {
		return v.(*markupState)
	}
	st := &markupState{open: make(map[ast.Node]int)}
	pc.Set(markupKey, st)
	return st
}

// fenceParser is goldmark's fenced code block parser, recording whether
// each block was closed by a fence.
type fenceParser struct {
	parser.BlockParser
}

func newFenceParser() *fenceParser {
	return &fenceParser{BlockParser: parser.NewFencedCodeBlockParser()}
}

func (p *fenceParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	_, segment := reader.PeekLine()
	node, state := p.BlockParser.Open(parent, reader, pc)
	if node != nil {
		markupFrom(pc).open[node] = segment.Start
	}
	return node, state
}

func (p *fenceParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	state := p.BlockParser.Continue(node, reader, pc)
	if state == parser.Close {
		delete(markupFrom(pc).open, node)
	}
	return state
}

// markupTransformer reports the first unterminated fence or HTML comment block.
type markupTransformer struct{}

func (t *markupTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	st := markupFrom(pc)

	report := func(offset int, reason string) {
		line := bytes.Count(source[:offset], []byte("\n")) + 1
		if st.err == nil || line < st.err.Line {
			st.err = &MarkupError{Line: line, Reason: reason}
		}
	}

	for _, offset := range st.open {
		report(offset, "unterminated code fence")
	}

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := n.(*ast.HTMLBlock)
		if !ok || block.HTMLBlockType != ast.HTMLBlockType2 || block.HasClosure() {
			return ast.WalkContinue, nil
		}
		// a comment closed on its opening line carries no closure line
		lines := block.Lines()
		if lines.Len() == 0 {
			return ast.WalkContinue, nil
		}
		first := lines.At(0)
		if !bytes.Contains(first.Value(source), commentClose) {
			report(first.Start, "unterminated HTML comment")
		}
		return ast.WalkSkipChildren, nil
	})
}

// markupError returns the problem found while parsing with pc, if any.
func markupError(pc parser.Context) error {
	if st := markupFrom(pc); st.err != nil {
		return st.err
	}
	return nil
}

// CheckMarkup parses source with md and reports an unterminated code
// fence or HTML comment block.
func CheckMarkup(md goldmark.Markdown, source []byte) error {
	pc := NewContext(Document{})
	md.Parser().Parse(text.NewReader(source), parser.WithContext(pc))
	return markupError(pc)
}
