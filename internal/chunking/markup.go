package chunking

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	markdownLink  = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	markdownChars = strings.NewReplacer("*", "", "_", "", "`", "", "~", "")
	htmlTag       = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	bareURL       = regexp.MustCompile(`https?://[^\s)]+`)
)

// StripMarkup removes Markdown emphasis and any HTML tags from text so it
// can be sent without a parse mode. Links keep their label and URL.
func StripMarkup(text string) string {
	if htmlTag.MatchString(text) {
		text = StripHTML(text)
	}
	text = markdownLink.ReplaceAllString(text, "$1 ($2)")

	// URLs are kept intact; underscores in them are not emphasis.
	var out strings.Builder
	last := 0
	for _, loc := range bareURL.FindAllStringIndex(text, -1) {
		out.WriteString(markdownChars.Replace(text[last:loc[0]]))
		out.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	out.WriteString(markdownChars.Replace(text[last:]))
	return out.String()
}

// StripHTML returns the text content of an HTML fragment. Block elements
// and <br> become line breaks; script and style content is dropped.
func StripHTML(fragment string) string {
	parent := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		return html.UnescapeString(htmlTag.ReplaceAllString(fragment, ""))
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		writeText(&buf, n)
	}
	return strings.TrimSpace(buf.String())
}

func writeText(buf *bytes.Buffer, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(strings.ReplaceAll(n.Data, "\u00A0", " "))
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "br":
			buf.WriteString("\n")
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(buf, c)
	}
	if isBlockElement(n) && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		buf.WriteString("\n")
	}
}

// isBlockElement reports whether n ends a line when rendered.
func isBlockElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "address", "article", "blockquote", "div", "dd", "dl", "dt", "h1", "h2", "h3", "h4", "h5", "h6", "header", "hr", "li", "ol", "p", "pre", "section", "table", "tr", "ul":
		return true
	default:
		return false
	}
}
