package sliceedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindAll(t *testing.T) {
	tests := []struct {
		buf  string
		item string
		want []int
	}{
		{"abcabc", "abc", []int{0, 3}},
		{"aaaa", "aa", []int{0, 2}},
		{"xyz", "q", []int{}},
		{"xyz", "", []int{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FindAll([]byte(tt.buf), tt.item), "%q in %q", tt.item, tt.buf)
	}
}

func TestReplaceFirstString(t *testing.T) {
	b := NewBufferString("one X two X three")
	assert.True(t, b.ReplaceFirstString("X", "1"))
	assert.True(t, b.ReplaceFirstString("X", "2"))
	assert.False(t, b.ReplaceFirstString("X", "3"))
	assert.Equal(t, "one 1 two 2 three", b.String())
}

func TestEditsSeeOriginalData(t *testing.T) {
	b := NewBufferString("@@A@@ and @@B@@")
	b.ReplaceFirstString("@@A@@", "@@B@@")
	b.ReplaceFirstString("@@B@@", "b")

	// The text inserted by the first edit is never matched again
	assert.Equal(t, "@@B@@ and b", b.String())
}
