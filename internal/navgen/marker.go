package navgen

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// GeneratorName identifies documents synthesized by this tool. Preflight
// checks use the marker to tell a previously generated ToC/cover apart from
// a hand-authored file occupying the same target.
const GeneratorName = "bookbinder"

// GeneratorMeta is the marker tag embedded in every generated document.
const GeneratorMeta = `<meta name="generator" content="` + GeneratorName + `">`

// IsGenerated reports whether the document carries the generator marker.
// It tolerates malformed input: anything unparsable is not generated.
func IsGenerated(r io.Reader) bool {
	tok := html.NewTokenizer(r)
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tok.TagName()
			if string(name) != "meta" || !hasAttr {
				continue
			}
			var metaName, content string
			for {
				key, val, more := tok.TagAttr()
				switch string(key) {
				case "name":
					metaName = string(val)
				case "content":
					content = string(val)
				}
				if !more {
					break
				}
			}
			if metaName == "generator" && strings.HasPrefix(content, GeneratorName) {
				return true
			}
		}
	}
}
