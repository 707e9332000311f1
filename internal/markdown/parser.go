package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
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

func (p *Parser) ParseWithFrontmatter(source []byte) (content []byte, meta map[string]any, err error) {
	context := parser.NewContext()
	var buf bytes.Buffer

	err = p.md.Convert(source, &buf, parser.WithContext(context))
	if err != nil {
		return nil, nil, err
	}

	data := frontmatter.Get(context)
	if data == nil {
		meta = make(map[string]any)
	} else {
		err = data.Decode(&meta)
		if err != nil {
			meta = make(map[string]any)
		}
	}

	return buf.Bytes(), meta, nil
}

// Body returns source without its leading YAML frontmatter block, used as the
// plain-text part of an email.
func Body(source []byte) []byte {
	const fence = "---"

	trimmed := bytes.TrimLeft(source, "\r\n")
	if !bytes.HasPrefix(trimmed, []byte(fence+"\n")) && !bytes.HasPrefix(trimmed, []byte(fence+"\r\n")) {
		return source
	}

	rest := trimmed[len(fence):]
	end := bytes.Index(rest, []byte("\n"+fence))
	if end < 0 {
		return source
	}

	body := rest[end+len("\n"+fence):]
	return bytes.TrimLeft(body, "\r\n")
}
