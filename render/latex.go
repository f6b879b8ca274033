package render

import (
	"golang.org/x/net/html"

	"github.com/hesusruiz/paperview/texdom"
)

// LaTeX is the LaTeX backend, based on texdom.
type LaTeX struct {
	// Name of the document in error messages
	Name      string
	CodeStyle string
}

// NewLaTeX returns the LaTeX backend. Verbatim blocks are highlighted with
// the chroma style codeStyle.
func NewLaTeX(codeStyle string) *LaTeX {
	return &LaTeX{Name: "paper.tex", CodeStyle: codeStyle}
}

// Render parses src and returns the rendered nodes.
func (l *LaTeX) Render(src string) ([]*html.Node, error) {
	doc, err := texdom.Parse(l.Name, src)
	if err != nil {
		return nil, err
	}
	if len(l.CodeStyle) > 0 {
		doc.CodeStyle = l.CodeStyle
	}
	return doc.Fragment()
}

// StylesAndScripts returns the stylesheets of the rendered document.
func (l *LaTeX) StylesAndScripts(base string) []*html.Node {
	return texdom.StylesAndScripts(base)
}
