package parser

import (
	"strconv"

	"github.com/yuin/goldmark/ast"

	"github.com/Kush-Singh-26/koshgraph/builder/utils"
)

// headingIDs hands out unique heading ids within one document: the
// second "Setup" becomes "setup-1", the third "setup-2".
type headingIDs struct {
	used map[string]bool
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{used: make(map[string]bool)}
}

func (s *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	base := utils.Slugify(string(value))
	if base == "" {
		base = "heading"
	}
	id := base
	for i := 1; s.used[id]; i++ {
		id = base + "-" + strconv.Itoa(i)
	}
	s.used[id] = true
	return []byte(id)
}

// Put reserves an explicit {#id}.
func (s *headingIDs) Put(value []byte) {
	s.used[string(value)] = true
}
