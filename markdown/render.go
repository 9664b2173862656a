// Package markdown parses front matter and renders Markdown to HTML.
// The content contract is small on purpose: a TOML or YAML front matter
// block (title, date, tags, description, draft, optional slug) followed by
// a free-form Markdown body.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// engine is shared across calls. It is configured once and never mutated,
// so a single instance serves every render.
var engine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Footnote,
		extension.Typographer,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

// Render converts Markdown to HTML. Raw HTML in the source passes through
// unchanged: content here is written by the site author, not by visitors.
func Render(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := engine.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// Markdown returns a templ.Component that renders src as HTML.
func Markdown(src string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		out, err := Render([]byte(src))
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	})
}
