// Package markdown renders Markdown to plain text for extraction.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/abdullah-sah/brain-assistant/internal/core/domain"
	"github.com/abdullah-sah/brain-assistant/internal/core/ports/driven"
	"github.com/abdullah-sah/brain-assistant/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.DecodeBackend = (*Normaliser)(nil)

// CauseEmpty is returned when the document has no text.
const CauseEmpty = "Markdown file is empty."

var multiNewlines = regexp.MustCompile(`\n{3,}`)

// Normaliser handles Markdown documents.
type Normaliser struct {
	md goldmark.Markdown
}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{md: goldmark.New()}
}

// SupportedMediaTypes returns the media types this normaliser handles.
func (n *Normaliser) SupportedMediaTypes() []domain.MediaType {
	return []domain.MediaType{domain.MediaTypeMarkdown}
}

// Decode parses the document and returns its text with formatting removed.
// Headings, paragraphs and list items become lines; images and raw HTML
// are dropped; code is kept verbatim.
func (n *Normaliser) Decode(_ context.Context, content []byte, _ domain.MediaType) (string, error) {
	src := []byte(plaintext.Clean(content))
	out := n.render(src)
	if out == "" {
		return "", domain.NewDecodeError(domain.DecodeEmptyDocument, CauseEmpty, nil)
	}
	return out, nil
}

func (n *Normaliser) render(src []byte) string {
	doc := n.md.Parser().Parse(text.NewReader(src))

	var w strings.Builder
	newline := func() {
		if s := w.String(); s != "" && !strings.HasSuffix(s, "\n") {
			w.WriteByte('\n')
		}
	}

	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		switch v := node.(type) {
		case *ast.Image, *ast.RawHTML, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.ListItem:
			if entering {
				newline()
				w.WriteString("- ")
			}
			return ast.WalkContinue, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				newline()
				lines := node.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					w.Write(seg.Value(src))
				}
				newline()
			}
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			if entering {
				w.Write(v.Label(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if entering {
				w.Write(v.Segment.Value(src))
				if v.HardLineBreak() || v.SoftLineBreak() {
					w.WriteByte('\n')
				}
			}
			return ast.WalkContinue, nil
		case *ast.String:
			if entering {
				w.Write(v.Value)
			}
			return ast.WalkContinue, nil
		}

		if !entering && node.Type() == ast.TypeBlock {
			newline()
		}
		return ast.WalkContinue, nil
	})

	out := multiNewlines.ReplaceAllString(w.String(), "\n\n")
	return strings.TrimSpace(out)
}
