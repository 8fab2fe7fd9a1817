package parser

import (
	"strings"
	"testing"

	"github.com/Kush-Singh-26/koshgraph/builder/models"
)

func convert(t *testing.T, source string, doc Document) Result {
	t.Helper()
	md := New(Options{Resolver: site})
	res, err := Convert(md, []byte(source), doc)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	return res
}

func TestConvertLinks(t *testing.T) {
	source := "See [simple](@/posts/simple.md), [python](./posts/tutorials/programming/python.md#setup), " +
		"[gone](@/nope.md) and [site](https://example.org/x.md).\n"
	res := convert(t, source, Document{RelPath: "hello.md", Permalink: "https://example.com/hello/"})

	for _, want := range []string{
		`<a href="https://example.com/posts/simple/">simple</a>`,
		`<a href="https://example.com/posts/tutorials/programming/python/#setup">python</a>`,
		`class="broken-link"`,
		`<a href="https://example.org/x.md">site</a>`,
	} {
		if !strings.Contains(res.HTML, want) {
			t.Errorf("HTML missing %s:\n%s", want, res.HTML)
		}
	}
	if len(res.BrokenLinks) != 1 || res.BrokenLinks[0] != "@/nope.md" {
		t.Errorf("broken links = %v", res.BrokenLinks)
	}
}

func TestConvertAnchors(t *testing.T) {
	tests := []struct {
		policy models.AnchorPolicy
		want   string
	}{
		{models.AnchorLeft, `<h2 id="setup">` + AnchorHTML("setup") + `Setup</h2>`},
		{models.AnchorRight, `<h2 id="setup">Setup` + AnchorHTML("setup") + `</h2>`},
		{models.AnchorNone, `<h2 id="setup">Setup</h2>`},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			res := convert(t, "## Setup\n", Document{Anchors: tt.policy})
			if !strings.Contains(res.HTML, tt.want) {
				t.Errorf("HTML = %s, want %s", res.HTML, tt.want)
			}
		})
	}
}

func TestConvertAnchorsDoNotLeakIntoTOC(t *testing.T) {
	res := convert(t, "## Setup\n", Document{Anchors: models.AnchorLeft, Permalink: "https://example.com/a/"})
	if len(res.Toc) != 1 || res.Toc[0].Title != "Setup" {
		t.Errorf("toc = %+v", res.Toc)
	}
}

func TestConvertCodeBlock(t *testing.T) {
	res := convert(t, "```go\nfunc main() {}\n```\n", Document{})
	if !strings.Contains(res.HTML, `<div class="code-wrapper" data-lang="go">`) {
		t.Errorf("code block not wrapped:\n%s", res.HTML)
	}
}

func TestConvertMathPassthrough(t *testing.T) {
	res := convert(t, "Inline $a_b * c_d$ math.\n", Document{})
	if !strings.Contains(res.HTML, "$a_b * c_d$") {
		t.Errorf("math was rewritten:\n%s", res.HTML)
	}
}

func TestConvertIsolatedPerDocument(t *testing.T) {
	md := New(Options{Resolver: site})
	a, _ := Convert(md, []byte("## Setup\n[x](@/nope.md)\n"), Document{})
	b, _ := Convert(md, []byte("## Setup\n"), Document{})

	if len(b.BrokenLinks) != 0 {
		t.Errorf("broken links leaked between documents: %v", b.BrokenLinks)
	}
	if a.Toc[0].ID != "setup" || b.Toc[0].ID != "setup" {
		t.Errorf("heading ids leaked between documents: %q %q", a.Toc[0].ID, b.Toc[0].ID)
	}
}
