// Package highlight renders source code blocks to HTML with chroma.
// Both renderers use it, so code looks the same whichever path produced the page.
package highlight

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	hlhtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is used when no style name is configured
const DefaultStyle = "github"

// Code writes the highlighted tokens of source to w, without the surrounding pre.
// An empty lang selects the plain text lexer; an unknown one is guessed from the content.
func Code(w io.Writer, source, lang, styleName string) error {

	// Determine lexer
	var l chroma.Lexer
	if len(strings.TrimSpace(lang)) == 0 {
		l = lexers.Get("plaintext")
	} else {
		l = lexers.Get(strings.TrimSpace(lang))
		if l == nil {
			l = lexers.Analyse(source)
		}
	}
	if l == nil {
		l = lexers.Fallback
	}
	l = chroma.Coalesce(l)

	if len(styleName) == 0 {
		styleName = DefaultStyle
	}
	s := styles.Get(styleName)

	f := hlhtml.New(hlhtml.Standalone(false), hlhtml.PreventSurroundingPre(true))

	it, err := l.Tokenise(nil, source)
	if err != nil {
		return fmt.Errorf("tokenising code block: %w", err)
	}

	if err := f.Format(w, s, it); err != nil {
		return fmt.Errorf("formatting code block: %w", err)
	}
	return nil
}

// Block renders a complete code block. When highlighting fails the code is
// emitted escaped, so a block is always produced.
func Block(source, lang, styleName string) string {
	rb := &bytes.Buffer{}
	if err := Code(rb, source, lang, styleName); err != nil {
		rb.Reset()
		rb.WriteString(html.EscapeString(source))
	}

	var b strings.Builder
	b.WriteString(`<div class="codecolor">`)
	b.WriteString(`<pre class="nohighlight precolor">`)
	b.Write(rb.Bytes())
	b.WriteString("</pre></div>\n")
	return b.String()
}
