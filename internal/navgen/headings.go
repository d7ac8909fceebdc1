package navgen

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// scanHeadings collects h2..h<depth> headings carrying an id attribute, in
// document order, from a compiled HTML document.
func scanHeadings(r io.Reader, depth int) ([]section, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	var sections []section
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level >= 2 && level <= depth {
				if id := attrValue(n, "id"); id != "" {
					sections = append(sections, section{
						level: level,
						href:  id,
						label: textContent(n),
					})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return sections, nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
