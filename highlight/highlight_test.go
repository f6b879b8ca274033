package highlight

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodePlainText(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, Code(&b, "State x <- 0", "", ""))

	out := b.String()
	assert.Contains(t, out, "State x &lt;- 0")
	assert.NotContains(t, out, "<pre")
}

func TestCodeKnownLanguage(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, Code(&b, "func main() {}", "go", "monokai"))
	assert.Contains(t, b.String(), "<span")
	assert.Contains(t, b.String(), "main")
}

func TestBlock(t *testing.T) {
	out := Block("a < b", "text", "")
	assert.True(t, strings.HasPrefix(out, `<div class="codecolor"><pre class="nohighlight precolor">`))
	assert.True(t, strings.HasSuffix(out, "</pre></div>\n"))
	assert.Contains(t, out, "a &lt; b")
}
