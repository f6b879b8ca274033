package render

import (
	"context"
	"regexp"
	"strings"

	"github.com/wyatt915/treeblood"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hesusruiz/paperview/normalize"
	"github.com/hesusruiz/paperview/page"
	"github.com/hesusruiz/paperview/texdom"
)

// Math spans in rendered text. The display forms come first so that $$ is
// not read as an empty inline span.
var reMath = regexp.MustCompile(`(?s)\$\$(.+?)\$\$|\\\[(.+?)\\\]|\\\((.+?)\\\)|\$([^$\n]+?)\$`)

// Elements whose text is never typeset
var noMath = map[atom.Atom]bool{
	atom.Pre:      true,
	atom.Code:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Math:     true,
	atom.Template: true,
	atom.Textarea: true,
}

// MathML typesets math to MathML with treeblood.
type MathML struct {
	// Macros expanded before conversion
	Macros texdom.Macros
}

// NewMathML returns a typesetter that knows the macros of the LaTeX prelude.
func NewMathML() *MathML {
	macros, err := texdom.ParseMacros(normalize.Prelude)
	if err != nil {
		panic(err)
	}
	return &MathML{Macros: macros}
}

// Typeset replaces the math spans in the text below root by MathML elements.
// A span that cannot be converted is left as it is.
func (m *MathML) Typeset(ctx context.Context, root *html.Node) error {
	var texts []*html.Node
	collectMathText(root, &texts)

	for _, t := range texts {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.typesetText(t)
	}
	return nil
}

func collectMathText(n *html.Node, texts *[]*html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.ContainsAny(c.Data, `$\`) {
				*texts = append(*texts, c)
			}
		case html.ElementNode:
			if !noMath[c.DataAtom] {
				collectMathText(c, texts)
			}
		}
	}
}

// typesetText splits the text node t around its math spans.
func (m *MathML) typesetText(t *html.Node) {
	src := t.Data
	matches := reMath.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return
	}

	var out []*html.Node
	last := 0
	for _, loc := range matches {
		tex, display := "", false
		switch {
		case loc[2] >= 0:
			tex, display = src[loc[2]:loc[3]], true
		case loc[4] >= 0:
			tex, display = src[loc[4]:loc[5]], true
		case loc[6] >= 0:
			tex = src[loc[6]:loc[7]]
		default:
			tex = src[loc[8]:loc[9]]
		}

		nodes, ok := m.convert(tex, display)
		if !ok {
			continue
		}

		if loc[0] > last {
			out = append(out, &html.Node{Type: html.TextNode, Data: src[last:loc[0]]})
		}
		out = append(out, nodes...)
		last = loc[1]
	}

	if len(out) == 0 {
		return
	}
	if last < len(src) {
		out = append(out, &html.Node{Type: html.TextNode, Data: src[last:]})
	}

	parent := t.Parent
	for _, n := range out {
		parent.InsertBefore(n, t)
	}
	parent.RemoveChild(t)
}

// convert typesets one span. The macros are expanded here, so treeblood gets
// no macro table of its own.
func (m *MathML) convert(tex string, display bool) (nodes []*html.Node, ok bool) {
	defer func() {
		// Malformed formulas stay as source
		if r := recover(); r != nil {
			nodes, ok = nil, false
		}
	}()

	tex, err := m.Macros.Expand(strings.TrimSpace(tex))
	if err != nil {
		return nil, false
	}

	var mml string
	if display {
		mml, err = treeblood.DisplayStyle(tex, nil)
	} else {
		mml, err = treeblood.InlineStyle(tex, nil)
	}
	if err != nil || len(mml) == 0 {
		return nil, false
	}

	nodes, err = page.ParseFragment(mml)
	if err != nil || len(nodes) == 0 {
		return nil, false
	}
	return nodes, true
}
