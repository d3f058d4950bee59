// Package utils holds helpers for model-generated markdown.
package utils

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

var renderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// CleanMarkdown trims the text and removes a code fence wrapping the whole
// answer (```markdown ... ```), which some models add.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)
	if !strings.HasPrefix(cleaned, "```") || !strings.HasSuffix(cleaned, "```") || len(cleaned) < 6 {
		return cleaned
	}
	body := strings.TrimSuffix(strings.TrimPrefix(cleaned, "```"), "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		lang := strings.TrimSpace(body[:nl])
		if lang == "" || strings.EqualFold(lang, "markdown") || strings.EqualFold(lang, "md") {
			body = body[nl+1:]
		} else {
			return cleaned
		}
	}
	return strings.TrimSpace(body)
}

// RenderHTML converts markdown, including GFM tables, to HTML. Raw HTML in
// the input is not passed through.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(CleanMarkdown(markdown)), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PlainText flattens markdown to its text content, one block per line.
func PlainText(markdown string) string {
	src := []byte(CleanMarkdown(markdown))
	doc := renderer.Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteByte('\n')
				}
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					b.Write(seg.Value(src))
				}
			}
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			if !entering && !strings.HasSuffix(b.String(), "\n") {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
