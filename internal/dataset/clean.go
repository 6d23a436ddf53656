package dataset

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	// tagPattern matches well-formed start, end and self-closing tags plus comments
	tagPattern = regexp.MustCompile(`(?is)<!--.*?-->|</?[a-z][a-z0-9]*(?:\s+[^<>]*)?/?>`)

	entityPattern = regexp.MustCompile(`&(?:#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)
)

// CleanText strips HTML markup and entities from a review body and collapses whitespace.
// Text without real tags or entities is only whitespace-collapsed, so "x<y" stays intact.
func CleanText(s string) string {
	if !HasMarkup(s) {
		return strings.Join(strings.Fields(s), " ")
	}

	doc, err := html.Parse(strings.NewReader(escapeStrayBrackets(s)))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	return strings.Join(strings.Fields(visibleText(doc)), " ")
}

// HasMarkup reports whether s contains an HTML tag, comment or character reference
func HasMarkup(s string) bool {
	if !strings.ContainsAny(s, "<&") {
		return false
	}
	return tagPattern.MatchString(s) || entityPattern.MatchString(s)
}

// escapeStrayBrackets rewrites every '<' that does not open a real tag as &lt;
// so the parser does not swallow the rest of the text as a bogus element.
func escapeStrayBrackets(s string) string {
	var buf strings.Builder
	last := 0
	for _, loc := range tagPattern.FindAllStringIndex(s, -1) {
		buf.WriteString(strings.ReplaceAll(s[last:loc[0]], "<", "&lt;"))
		buf.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	buf.WriteString(strings.ReplaceAll(s[last:], "<", "&lt;"))
	return buf.String()
}

// visibleText collects text nodes, skipping script and style content
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}
