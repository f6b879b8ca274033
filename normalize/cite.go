package normalize

import (
	"fmt"
	"html"
	"strings"

	"github.com/hesusruiz/paperview/citation"
)

// Anchor renders the inline link for one cited key. A key without a number
// is rendered as its bare, escaped text.
func Anchor(key string, cites citation.Map) string {
	n, ok := cites.Number(key)
	if !ok {
		return html.EscapeString(key)
	}

	return fmt.Sprintf(`<a class="citation" href="#%s" data-cite="%s">[%d]</a>`,
		citation.AnchorID(key), html.EscapeString(key), n)
}

// LinkCitations replaces every citation command with the anchors of its keys
// joined by "; ". A command with no keys disappears.
func LinkCitations(cites citation.Map) Pass {
	return Pass{
		Name: "citations",
		Apply: func(text string) string {
			return replaceSubmatchFunc(citation.ReCite, text, func(groups []string) string {
				keys := citation.SplitKeys(groups[2])
				links := make([]string, len(keys))
				for i, key := range keys {
					links[i] = Anchor(key, cites)
				}
				return strings.Join(links, "; ")
			})
		},
	}
}
