package normalizer

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags end a line of visible text when rendering HTML.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "ul": true, "ol": true,
}

// cellTags separate adjacent table cells with a space so "Total" and the
// amount in the next cell do not run together.
var cellTags = map[string]bool{
	"td": true, "th": true,
}

// ExtractHTMLText renders the visible text of an HTML document: script and
// style subtrees are dropped entirely, block elements become line breaks.
// A document that fails to parse yields "" rather than an error.
func ExtractHTMLText(htmlContent string) string {
	if strings.TrimSpace(htmlContent) == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	collectText(doc, &sb)
	return condenseWhitespace(sb.String())
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}

	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, sb)
	}

	if n.Type == html.ElementNode {
		switch {
		case blockTags[n.Data]:
			sb.WriteString("\n")
		case cellTags[n.Data]:
			sb.WriteString(" ")
		}
	}
}

// condenseWhitespace collapses runs of spaces and blank lines left behind by
// the markup.
func condenseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
