package normalizer

import (
	"strings"

	"golang.org/x/net/html"
)

// skippedElements are removed with their entire subtree during
// sanitization; their text never reaches the normalized description.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"iframe":   true,
	"object":   true,
	"embed":    true,
	"form":     true,
	"noscript": true,
}

// FlattenHTML parses markup and returns its visible text with
// whitespace collapsed to single spaces. Plain text passes through
// unchanged apart from the whitespace collapse. Unparseable input
// degrades to whatever text the tolerant parser recovers.
func FlattenHTML(input string) string {
	if input == "" {
		return ""
	}
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return strings.Join(strings.Fields(input), " ")
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}
