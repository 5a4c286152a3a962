// Package markdown is the concrete PageCompiler implementation that lets
// the rebuild pipeline be exercised end to end without a real Typst
// backend: goldmark parses Markdown to HTML, goldmark-emoji extends it
// with emoji shortcodes, and bluemonday sanitizes the result before it
// ever reaches the VDOM's Processed phase.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/tola-rs/tola/internal/compiler"
	"github.com/tola-rs/tola/internal/core"
)

// Compiler implements compiler.PageCompiler for Markdown sources.
type Compiler struct {
	md       goldmark.Markdown
	sanitize *bluemonday.Policy
}

// New returns a ready-to-use Markdown compiler.
func New() *Compiler {
	md := goldmark.New(
		goldmark.WithExtensions(emoji.Emoji),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	return &Compiler{
		md:       md,
		sanitize: bluemonday.UGCPolicy(),
	}
}

// Compile implements compiler.PageCompiler.
func (c *Compiler) Compile(ctx context.Context, in compiler.Input) (compiler.Output, error) {
	accessed := detectAccessedPackages(in.Content)

	reader := text.NewReader(in.Content)
	doc := c.md.Parser().Parse(reader)

	var buf bytes.Buffer
	if err := c.md.Renderer().Render(&buf, in.Content, doc); err != nil {
		return compiler.Output{}, fmt.Errorf("render markdown %s: %w", in.Source, err)
	}
	sanitized := c.sanitize.SanitizeBytes(buf.Bytes())

	headings := collectHeadings(doc, in.Content)
	title := ""
	if len(headings) > 0 && headings[0].Level == 1 {
		title = headings[0].Text
	}

	return compiler.Output{
		HTML:             sanitized,
		Title:            title,
		Headings:         headings,
		Links:            collectLinks(doc, in.Content),
		AccessedPackages: accessed,
	}, nil
}

func collectHeadings(doc ast.Node, source []byte) []compiler.HeadingOut {
	var out []compiler.HeadingOut
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		var text bytes.Buffer
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			text.Write(c.Text(source))
		}
		id := ""
		if v, ok := h.AttributeString("id"); ok {
			if b, ok := v.([]byte); ok {
				id = string(b)
			}
		}
		out = append(out, compiler.HeadingOut{Level: h.Level, Text: text.String(), ID: id})
		return ast.WalkContinue, nil
	})
	return out
}

func collectLinks(doc ast.Node, source []byte) []core.Permalink {
	var out []core.Permalink
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		dest := string(link.Destination)
		if strings.HasPrefix(dest, "/") {
			out = append(out, core.NewPermalink(dest))
		}
		return ast.WalkContinue, nil
	})
	return out
}

// detectAccessedPackages is a textual scan for the injected-package
// placeholders a Markdown page can reference (e.g. "{{ @tola/pages }}"),
// standing in for a real template-engine's access tracking.
func detectAccessedPackages(content []byte) map[string]bool {
	out := make(map[string]bool)
	for _, pkg := range []string{"@tola/site", "@tola/pages", "@tola/current"} {
		if bytes.Contains(content, []byte(pkg)) {
			out[pkg] = true
		}
	}
	return out
}
