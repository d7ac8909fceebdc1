// Package htmlproc rewrites hand-authored HTML/XHTML manuscripts: it
// injects the entry's stylesheet links, title, language, and content-type
// metadata without disturbing the document body.
package htmlproc

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Options carries the metadata injected into a parsed document.
type Options struct {
	Styles      []string
	Title       string
	Language    string
	ContentType string // e.g. "text/html;charset=utf-8"
	// Generator, when set, is injected as a generator meta tag so the
	// document is recognized as tool-produced on later runs.
	Generator string
}

// Inject parses the document, applies the metadata, and re-serializes it.
// Existing title and charset metadata are replaced rather than duplicated;
// stylesheet links are appended after any the author already declared.
func Inject(source []byte, opts Options) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML document: %w", err)
	}

	htmlNode := findElement(doc, atom.Html)
	if htmlNode == nil {
		return nil, fmt.Errorf("document has no html element")
	}
	head := findElement(htmlNode, atom.Head)
	if head == nil {
		head = &html.Node{Type: html.ElementNode, DataAtom: atom.Head, Data: "head"}
		htmlNode.InsertBefore(head, htmlNode.FirstChild)
	}

	if opts.Language != "" {
		setAttr(htmlNode, "lang", opts.Language)
	}
	if opts.ContentType != "" {
		meta := findMetaHTTPEquiv(head, "content-type")
		if meta == nil {
			meta = &html.Node{Type: html.ElementNode, DataAtom: atom.Meta, Data: "meta"}
			head.InsertBefore(meta, head.FirstChild)
		}
		setAttr(meta, "http-equiv", "content-type")
		setAttr(meta, "content", opts.ContentType)
	}
	if opts.Generator != "" {
		meta := findMetaName(head, "generator")
		if meta == nil {
			meta = &html.Node{Type: html.ElementNode, DataAtom: atom.Meta, Data: "meta"}
			head.InsertBefore(meta, head.FirstChild)
		}
		setAttr(meta, "name", "generator")
		setAttr(meta, "content", opts.Generator)
	}
	if opts.Title != "" {
		title := findElement(head, atom.Title)
		if title == nil {
			title = &html.Node{Type: html.ElementNode, DataAtom: atom.Title, Data: "title"}
			head.AppendChild(title)
		}
		for title.FirstChild != nil {
			title.RemoveChild(title.FirstChild)
		}
		title.AppendChild(&html.Node{Type: html.TextNode, Data: opts.Title})
	}
	for _, style := range opts.Styles {
		link := &html.Node{Type: html.ElementNode, DataAtom: atom.Link, Data: "link"}
		setAttr(link, "rel", "stylesheet")
		setAttr(link, "type", "text/css")
		setAttr(link, "href", style)
		head.AppendChild(link)
	}

	var out bytes.Buffer
	if err := html.Render(&out, doc); err != nil {
		return nil, fmt.Errorf("failed to serialize HTML document: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func findMetaName(head *html.Node, value string) *html.Node {
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Meta {
			continue
		}
		for _, attr := range c.Attr {
			if attr.Key == "name" && attr.Val == value {
				return c
			}
		}
	}
	return nil
}

func findMetaHTTPEquiv(head *html.Node, value string) *html.Node {
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Meta {
			continue
		}
		for _, attr := range c.Attr {
			if attr.Key == "http-equiv" && attr.Val == value {
				return c
			}
		}
	}
	return nil
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
