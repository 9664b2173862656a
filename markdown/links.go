package markdown

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ExtractLinks returns every link and image destination in src, in document
// order. Destinations are returned verbatim; the caller classifies them as
// internal or external.
func ExtractLinks(src []byte) []string {
	doc := engine.Parser().Parse(text.NewReader(src))
	var out []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Link:
			out = append(out, string(v.Destination))
		case *ast.Image:
			out = append(out, string(v.Destination))
		}
		return ast.WalkContinue, nil
	})
	return out
}
