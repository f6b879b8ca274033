package render

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/hesusruiz/paperview/page"
)

func TestMathMLTypeset(t *testing.T) {
	nodes, err := page.ParseFragment(`<p>Let $x^2$ be</p><pre>$y$</pre><code>$z$</code>`)
	require.NoError(t, err)

	root := page.New()
	root.SetContent(nodes)

	require.NoError(t, NewMathML().Typeset(context.Background(), root.Content()))

	out := root.ContentHTML()
	assert.Contains(t, out, "<p>Let <math")
	assert.NotContains(t, out, "$x^2$")
	assert.Contains(t, out, "<pre>$y$</pre>")
	assert.Contains(t, out, "<code>$z$</code>")
}

func TestMathMLCancelled(t *testing.T) {
	nodes, err := page.ParseFragment(`<p>$a$</p><p>$b$</p>`)
	require.NoError(t, err)

	root := page.New()
	root.SetContent(nodes)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewMathML().Typeset(ctx, root.Content()), context.Canceled)
}

func TestMathMLKnowsPreludeMacros(t *testing.T) {
	m := NewMathML()
	_, ok := m.Macros["argmax"]
	assert.True(t, ok)
}

func TestMathMLConvert(t *testing.T) {
	m := NewMathML()

	attr := func(n *html.Node, key string) string {
		for _, a := range n.Attr {
			if a.Key == key {
				return a.Val
			}
		}
		return ""
	}

	nodes, ok := m.convert(`\argmax_x f(x)`, true)
	require.True(t, ok)
	require.NotEmpty(t, nodes)
	assert.Equal(t, "math", nodes[0].Data)
	assert.Equal(t, "block", attr(nodes[0], "display"))

	var sb strings.Builder
	require.NoError(t, html.Render(&sb, nodes[0]))
	assert.Contains(t, sb.String(), "argmax")
	assert.NotContains(t, sb.String(), `\argmax`)

	nodes, ok = m.convert("a+b", false)
	require.True(t, ok)
	assert.Equal(t, "math", nodes[0].Data)
	assert.NotEqual(t, "block", attr(nodes[0], "display"))
}
