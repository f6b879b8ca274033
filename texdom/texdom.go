// Package texdom turns a LaTeX document into HTML.
//
// It understands the subset of LaTeX found in our papers: user macros
// defined with \newcommand, numbered sections, paragraphs, lists, quotes,
// verbatim blocks, simple tables and the common inline commands. Math is
// not typeset here. Math spans are kept as LaTeX source in the output, so a
// typesetter can process them afterwards.
//
// Raw HTML anchors in the text (<a ...>...</a>) are passed through
// unchanged, which is how citations are linked before parsing.
package texdom

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hesusruiz/paperview/highlight"
)

// Document is a parsed LaTeX document.
type Document struct {
	// Name of the source, used in error messages
	Name string

	// Macros defined in the document
	Macros Macros

	// CodeStyle is the chroma style for verbatim blocks
	CodeStyle string

	root *Node
}

// Parse reads the LaTeX source src. The name is used in error messages.
// A document with unbalanced braces or badly nested environments is rejected
// with a *SyntaxError.
func Parse(name, src string) (*Document, error) {

	if err := Validate(name, src); err != nil {
		return nil, err
	}

	text := StripComments(src)

	macros, text, err := extractMacros(name, text)
	if err != nil {
		return nil, err
	}

	expanded, err := macros.Expand(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	p := newParser(name, expanded)
	root := &Node{Type: DocumentNode}
	if err := p.parseBlocks(root, nil); err != nil {
		return nil, err
	}

	return &Document{
		Name:      name,
		Macros:    macros,
		CodeStyle: highlight.DefaultStyle,
		root:      root,
	}, nil
}

// Root returns the root node of the document tree.
func (d *Document) Root() *Node {
	return d.root
}

// RenderHTML renders the document body to HTML.
func (d *Document) RenderHTML() []byte {
	br := &ByteRenderer{}
	d.root.renderHTML(br, d.CodeStyle)
	return br.Bytes()
}

// Fragment returns the rendered document as a list of HTML nodes, ready to be
// inserted into a page.
func (d *Document) Fragment() ([]*html.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}
	return html.ParseFragment(bytes.NewReader(d.RenderHTML()), context)
}

// stylesheets served under the asset base
var stylesheets = []string{"css/base.css", "css/article.css"}

// StylesAndScripts returns the elements that must be added to the head of the
// page for the rendered document to display properly.
func StylesAndScripts(base string) []*html.Node {
	var nodes []*html.Node
	for _, sheet := range stylesheets {
		nodes = append(nodes, &html.Node{
			Type:     html.ElementNode,
			Data:     "link",
			DataAtom: atom.Link,
			Attr: []html.Attribute{
				{Key: "type", Val: "text/css"},
				{Key: "rel", Val: "stylesheet"},
				{Key: "href", Val: base + sheet},
			},
		})
	}
	return nodes
}
