// Package mathguard hides math spans from the Markdown renderer.
//
// Extract swaps every span for an opaque token before rendering, and
// Restore puts the original spans back into the generated HTML.
package mathguard

import (
	"html"
	"regexp"
	"strconv"

	"github.com/hesusruiz/paperview/sliceedit"
)

// Patterns are applied in this order. Inline math cannot span a newline.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)\$\$.*?\$\$`),
	regexp.MustCompile(`(?s)\\\[.*?\\\]`),
	regexp.MustCompile(`\$[^$\n]*\$`),
}

// Guard holds the spans extracted from a text, in token order.
type Guard struct {
	spans []string
}

// Token returns the placeholder of the n-th span.
func Token(n int) string {
	return "@@MATH" + strconv.Itoa(n) + "@@"
}

// Extract replaces every math span of text with its token.
func Extract(text string) (string, *Guard) {
	g := &Guard{}

	for _, re := range patterns {
		text = re.ReplaceAllStringFunc(text, func(span string) string {
			token := Token(len(g.spans))
			g.spans = append(g.spans, span)
			return token
		})
	}

	return text, g
}

// Len is the number of spans held.
func (g *Guard) Len() int {
	if g == nil {
		return 0
	}
	return len(g.spans)
}

// Spans returns the captured spans in token order.
func (g *Guard) Spans() []string {
	if g == nil {
		return nil
	}
	return append([]string(nil), g.spans...)
}

// Restore replaces the first occurrence of each token in html by its span.
// Tokens missing from html are ignored.
func (g *Guard) Restore(html string) string {
	return g.restore(html, func(span string) string { return span })
}

// RestoreHTML is like Restore but escapes the spans, so that math like
// $a<b$ survives when the result is parsed as HTML.
func (g *Guard) RestoreHTML(src string) string {
	return g.restore(src, html.EscapeString)
}

func (g *Guard) restore(src string, convert func(string) string) string {
	if g.Len() == 0 {
		return src
	}

	buf := sliceedit.NewBufferString(src)
	for i, span := range g.spans {
		buf.ReplaceFirstString(Token(i), convert(span))
	}
	return buf.String()
}
