package mathguard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractOrder(t *testing.T) {
	text := "inline $a_1$ then $$x*y$$ and \\[z_2\\] and $b$"

	guarded, g := Extract(text)

	// Display dollar first, then brackets, then inline
	assert.Equal(t, "inline @@MATH2@@ then @@MATH0@@ and @@MATH1@@ and @@MATH3@@", guarded)
	assert.Equal(t, []string{"$$x*y$$", `\[z_2\]`, "$a_1$", "$b$"}, g.Spans())
}

func TestRoundTrip(t *testing.T) {
	text := "# Title\n\n$$\nE = mc^2\n$$\n\nWith $x_i * y_i$ and\n\\[\na &= b \\\\\nc &= d\n\\]\n"

	guarded, g := Extract(text)
	require.Equal(t, 3, g.Len())
	assert.NotContains(t, guarded, "$")
	assert.NotContains(t, guarded, `\[`)

	assert.Equal(t, text, g.Restore(guarded))
}

func TestRestoreAfterTransformation(t *testing.T) {
	guarded, g := Extract("A $x$ B $$y$$")

	// A renderer wraps the text in markup but leaves the tokens alone
	html := "<p>" + strings.ReplaceAll(guarded, " ", "&nbsp;") + "</p>"
	assert.Equal(t, "<p>A&nbsp;$x$&nbsp;B&nbsp;$$y$$</p>", g.Restore(html))
}

func TestRestoreFirstOccurrenceOnly(t *testing.T) {
	_, g := Extract("$a$ $b$")

	got := g.Restore("@@MATH0@@ @@MATH0@@ @@MATH1@@")
	assert.Equal(t, "$a$ @@MATH0@@ $b$", got)
}

func TestRestoreTokenPrefixes(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 12; i++ {
		b.WriteString("$v$ ")
	}
	guarded, g := Extract(b.String())
	require.Equal(t, 12, g.Len())
	assert.Contains(t, guarded, "@@MATH11@@")

	assert.Equal(t, b.String(), g.Restore(guarded))
}

func TestMultilineInlineIsNotCaptured(t *testing.T) {
	text := "cost $a +\nb$ here"
	guarded, g := Extract(text)
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, text, guarded)
}

func TestIdempotentWithoutMath(t *testing.T) {
	guarded, g := Extract("no math here")
	assert.Equal(t, "no math here", guarded)
	assert.Equal(t, "no math here", g.Restore(guarded))

	var nilGuard *Guard
	assert.Equal(t, "x", nilGuard.Restore("x"))
}

func TestRestoreHTMLEscapesSpans(t *testing.T) {
	guarded, g := Extract("if $a<b$ & $c$")
	assert.Equal(t, "<p>if $a&lt;b$ &amp; $c$</p>", g.RestoreHTML("<p>"+strings.Replace(guarded, "&", "&amp;", 1)+"</p>"))
}
