// Package markdown converts manuscript markdown into standalone HTML
// documents carrying the entry's stylesheet list, title, and language.
package markdown

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Options carries the document metadata merged into the converted output.
type Options struct {
	Styles   []string
	Title    string
	Language string
	// Generator, when set, is emitted as a generator meta tag so the
	// document is recognized as tool-produced on later runs.
	Generator string
}

var converter = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		// Manuscripts may embed raw HTML (figures, footnote anchors).
		gmhtml.WithUnsafe(),
	),
)

// Render converts markdown source into a complete HTML document.
func Render(source []byte, opts Options) ([]byte, error) {
	var body bytes.Buffer
	if err := converter.Convert(source, &body); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	var doc bytes.Buffer
	doc.WriteString("<!doctype html>\n")
	if opts.Language != "" {
		fmt.Fprintf(&doc, "<html lang=%q>\n", opts.Language)
	} else {
		doc.WriteString("<html>\n")
	}
	doc.WriteString("<head>\n<meta charset=\"utf-8\">\n")
	if opts.Generator != "" {
		fmt.Fprintf(&doc, "<meta name=\"generator\" content=%q>\n", opts.Generator)
	}
	if opts.Title != "" {
		fmt.Fprintf(&doc, "<title>%s</title>\n", html.EscapeString(opts.Title))
	}
	for _, style := range opts.Styles {
		fmt.Fprintf(&doc, "<link rel=\"stylesheet\" type=\"text/css\" href=%q>\n", style)
	}
	doc.WriteString("</head>\n<body>\n")
	doc.Write(body.Bytes())
	doc.WriteString("</body>\n</html>\n")
	return doc.Bytes(), nil
}
