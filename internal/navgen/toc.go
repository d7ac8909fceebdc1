// Package navgen builds the generated navigation documents of a
// publication: the table of contents and the cover page. Link paths are
// computed relative to each generated file's own directory, so multiple ToC
// files at different depths each get a correct relative base.
package navgen

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/bookbinder/internal/config"
)

// DefaultTocTitle is used when neither the ToC title nor the entry title is
// configured.
const DefaultTocTitle = "Table of Contents"

// Options carries per-document metadata resolved by the compiler.
type Options struct {
	Styles   []string
	Language string
}

var tocTemplate = template.Must(template.New("toc").Parse(`<!doctype html>
<html{{if .Language}} lang="{{.Language}}"{{end}}>
<head>
<meta charset="utf-8">
` + GeneratorMeta + `
<title>{{.Title}}</title>
{{range .Styles}}<link rel="stylesheet" type="text/css" href="{{.}}">
{{end}}</head>
<body>
<h1>{{.Title}}</h1>
<nav id="toc" role="doc-toc">
{{.List}}</nav>
</body>
</html>
`))

// tocItem is one navigation link plus its in-document section links.
type tocItem struct {
	href     string
	label    string
	sections []section
}

type section struct {
	level int
	href  string
	label string
}

// GenerateToc builds the table-of-contents document for tocEntry, linking to
// every manuscript entry (contents/cover entries are excluded). When the
// entry's section depth admits in-document headings, each compiled target is
// scanned for linkable headings up to that depth. The optional transform
// hook post-processes the markup before it is returned.
func GenerateToc(p *config.Project, tocEntry *config.Entry, opts Options) (string, error) {
	tocDir := filepath.Dir(tocEntry.Target)

	var items []tocItem
	for i := range p.Entries {
		e := &p.Entries[i]
		if e.Generated() {
			continue
		}
		href, err := filepath.Rel(tocDir, e.Target)
		if err != nil {
			return "", fmt.Errorf("failed to relativize %s against %s: %w", e.Target, tocDir, err)
		}
		item := tocItem{
			href:  filepath.ToSlash(href),
			label: entryLabel(e),
		}
		if tocEntry.SectionDepth > 1 {
			sections, err := scanSections(e.Target, tocEntry.SectionDepth)
			if err != nil {
				return "", err
			}
			item.sections = sections
		}
		items = append(items, item)
	}

	title := tocTitle(tocEntry)
	data := map[string]any{
		"Language": opts.Language,
		"Styles":   opts.Styles,
		"Title":    html.EscapeString(title),
		"List":     renderList(items),
	}
	var buf bytes.Buffer
	if err := tocTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render table of contents: %w", err)
	}

	markup := buf.String()
	if tocEntry.Transform != nil {
		transformed, err := tocEntry.Transform(markup)
		if err != nil {
			return "", fmt.Errorf("toc transform failed: %w", err)
		}
		markup = transformed
	}
	return markup, nil
}

// tocTitle applies the precedence: entry-level ToC title, else entry title,
// else the fixed default.
func tocTitle(e *config.Entry) string {
	if e.TocTitle != "" {
		return e.TocTitle
	}
	if e.Title != "" {
		return e.Title
	}
	return DefaultTocTitle
}

func entryLabel(e *config.Entry) string {
	if e.Title != "" {
		return e.Title
	}
	base := filepath.Base(e.Target)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// renderList produces the nested ordered list for the navigation element.
func renderList(items []tocItem) string {
	var b strings.Builder
	b.WriteString("<ol>\n")
	for _, item := range items {
		fmt.Fprintf(&b, "<li><a href=%q>%s</a>", item.href, html.EscapeString(item.label))
		if len(item.sections) > 0 {
			b.WriteString("\n")
			renderSections(&b, item.href, item.sections)
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ol>\n")
	return b.String()
}

// renderSections emits nested lists following the heading levels. Levels
// open and close <ol> elements as they rise and fall.
func renderSections(b *strings.Builder, baseHref string, sections []section) {
	depth := 0
	for _, s := range sections {
		for depth < s.level-1 {
			b.WriteString("<ol>\n")
			depth++
		}
		for depth > s.level-1 {
			b.WriteString("</ol>\n")
			depth--
		}
		fmt.Fprintf(b, "<li><a href=\"%s#%s\">%s</a></li>\n", baseHref, s.href, html.EscapeString(s.label))
	}
	for depth > 0 {
		b.WriteString("</ol>\n")
		depth--
	}
}

// scanSections extracts linkable headings (h2..hN with an id) from a
// compiled document. Headings without an id cannot be linked and are
// skipped.
func scanSections(path string, depth int) ([]section, error) {
	f, err := os.Open(path) // #nosec G304 -- compiled targets come from validated configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read compiled entry %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return scanHeadings(f, depth)
}
