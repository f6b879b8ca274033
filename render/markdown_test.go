package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownBackend(t *testing.T) {
	md := NewMarkdown("")

	out, err := md.Render("See <a class=\"citation\" href=\"#ref-a\" data-cite=\"a\">[1]</a>.\n")
	require.NoError(t, err)
	assert.Equal(t, "<p>See <a class=\"citation\" href=\"#ref-a\" data-cite=\"a\">[1]</a>.</p>\n", out)

	out, err = md.Render("```text\nfor i < n\n```\n")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `<div class="codecolor"><pre class="nohighlight precolor">`))
	assert.Contains(t, out, "for i &lt; n")
}
