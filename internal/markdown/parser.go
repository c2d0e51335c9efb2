package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

// Parser renders the Markdown used for outgoing emails. A document may open
// with a YAML frontmatter block carrying metadata such as the subject line.
type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			&frontmatter.Extender{},
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)

	return &Parser{
		md: md,
	}
}

type Document struct {
	Meta map[string]any
	HTML string
	// Text is the Markdown body without frontmatter, used as the plain text part.
	Text string
}

// Get returns a string metadata value, or "" when missing.
func (d *Document) Get(key string) string {
	v, ok := d.Meta[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (p *Parser) Render(source []byte) (*Document, error) {
	ctx := parser.NewContext()
	var buf bytes.Buffer

	err := p.md.Convert(source, &buf, parser.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	meta := make(map[string]any)
	if data := frontmatter.Get(ctx); data != nil {
		if err := data.Decode(&meta); err != nil {
			return nil, fmt.Errorf("invalid frontmatter: %w", err)
		}
	}

	return &Document{
		Meta: meta,
		HTML: buf.String(),
		Text: string(bytes.TrimSpace(stripFrontmatter(source))),
	}, nil
}

func stripFrontmatter(source []byte) []byte {
	const fence = "---\n"
	if !bytes.HasPrefix(source, []byte(fence)) {
		return source
	}
	rest := source[len(fence):]
	end := bytes.Index(rest, []byte("\n"+fence))
	if end < 0 {
		return source
	}
	return rest[end+len(fence)+1:]
}
