package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/hesusruiz/paperview/citation"
)

const linkAttrs = `target="_blank" rel="noopener noreferrer"`

// FormatAuthors joins author names: one as is, two with an ampersand, more as
// a comma list ending in ", & last".
func FormatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return authors[0]
	case 2:
		return authors[0] + " & " + authors[1]
	}
	return strings.Join(authors[:len(authors)-1], ", ") + ", & " + authors[len(authors)-1]
}

// title falls back to the citekey
func title(r citation.Resolved) string {
	if t := r.Field("title"); len(t) > 0 {
		return t
	}
	return r.CiteKey
}

// venue is the journal, else the proceedings name
func venue(r citation.Resolved) string {
	if j := r.Field("journal"); len(j) > 0 {
		return j
	}
	return r.Field("booktitle")
}

// link returns the URL of the entry and its label. A DOI is preferred.
func link(r citation.Resolved) (url, label string) {
	if doi := r.Field("doi"); len(doi) > 0 {
		return "https://doi.org/" + doi, "doi"
	}
	if u := r.Field("url"); len(u) > 0 {
		return u, "link"
	}
	return "", ""
}

// RenderReferences renders the references section of the page.
func RenderReferences(resolved []citation.Resolved) string {
	var b strings.Builder

	b.WriteString(`<section class="references"><h2 id="references">References</h2><ol>`)
	b.WriteString("\n")
	for _, r := range resolved {
		fmt.Fprintf(&b, `<li id="%s">`, html.EscapeString(citation.AnchorID(r.CiteKey)))
		b.WriteString(formatEntry(r))
		b.WriteString("</li>\n")
	}
	b.WriteString("</ol></section>\n")

	return b.String()
}

func formatEntry(r citation.Resolved) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<span class="ref-label">[%d]</span> `, r.Number)
	fmt.Fprintf(&b, `<span class="ref-title">%s</span>`, html.EscapeString(title(r)))

	if year := r.Field("year"); len(year) > 0 {
		b.WriteString(" (" + html.EscapeString(year) + ")")
	}
	if authors := FormatAuthors(r.Authors()); len(authors) > 0 {
		b.WriteString(" " + html.EscapeString(authors))
	}
	if v := venue(r); len(v) > 0 {
		b.WriteString(" — " + html.EscapeString(v))
	}
	if url, label := link(r); len(url) > 0 {
		fmt.Fprintf(&b, ` <a href="%s" %s>%s</a>`, html.EscapeString(url), linkAttrs, label)
	}

	return b.String()
}

// FormatText renders a reference as one line of plain text.
func FormatText(r citation.Resolved) string {
	parts := []string{fmt.Sprintf("[%d] %s", r.Number, title(r))}

	if year := r.Field("year"); len(year) > 0 {
		parts = append(parts, "("+year+")")
	}
	if authors := FormatAuthors(r.Authors()); len(authors) > 0 {
		parts = append(parts, authors)
	}
	if v := venue(r); len(v) > 0 {
		parts = append(parts, "— "+v)
	}
	if url, _ := link(r); len(url) > 0 {
		parts = append(parts, url)
	}

	return strings.Join(parts, " ")
}
