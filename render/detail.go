package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/hesusruiz/paperview/citation"
)

// RenderDetail renders the side panel for a selected citation. A nil entry
// renders the not-found placeholder with the key.
func RenderDetail(key string, r *citation.Resolved) string {
	var b strings.Builder
	b.WriteString(`<div class="citation-detail">`)

	if r == nil {
		b.WriteString(`<p class="not-found">Reference not found</p>`)
		fmt.Fprintf(&b, `<p class="citekey">%s</p>`, html.EscapeString(key))
		b.WriteString("</div>")
		return b.String()
	}

	fmt.Fprintf(&b, `<h3><span class="ref-label">[%d]</span> %s</h3>`, r.Number, html.EscapeString(title(*r)))

	b.WriteString("<dl>")
	field := func(name, value string) {
		if len(value) > 0 {
			fmt.Fprintf(&b, "<dt>%s</dt><dd>%s</dd>", name, value)
		}
	}

	field("Authors", html.EscapeString(FormatAuthors(r.Authors())))
	field("Venue", html.EscapeString(venue(*r)))
	field("Year", html.EscapeString(r.Field("year")))
	if doi := r.Field("doi"); len(doi) > 0 {
		field("DOI", fmt.Sprintf(`<a href="%s" %s>%s</a>`,
			html.EscapeString("https://doi.org/"+doi), linkAttrs, html.EscapeString(doi)))
	}
	if u := r.Field("url"); len(u) > 0 {
		field("URL", fmt.Sprintf(`<a href="%s" %s>%s</a>`, html.EscapeString(u), linkAttrs, html.EscapeString(u)))
	}
	field("Type", html.EscapeString(r.Type))
	field("Key", html.EscapeString(r.CiteKey))
	b.WriteString("</dl>")

	fmt.Fprintf(&b, `<p><a href="#%s">Go to reference</a></p>`, html.EscapeString(citation.AnchorID(r.CiteKey)))

	b.WriteString("</div>")
	return b.String()
}
