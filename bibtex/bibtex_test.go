package bibtex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBib = `% references for the paper
@Article{smith2020,
  author = {John Smith and Jane Doe},
  title = {A {Robust} Method
           for Things},
  journal = "Journal of Things",
  year = 2020,
}

  % an indented comment line
@inproceedings{Lee2019,
  title={Conference Paper},
  booktitle = {Proceedings of Stuff},
  doi = {10.1000/xyz}
}
`

func TestParse(t *testing.T) {
	entries := Parse(sampleBib)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "article", first.Type)
	assert.Equal(t, "smith2020", first.CiteKey)
	assert.Equal(t, "John Smith and Jane Doe", first.Fields["author"])
	assert.Equal(t, "Journal of Things", first.Fields["journal"])
	assert.Equal(t, "2020", first.Fields["year"])

	second := entries[1]
	assert.Equal(t, "inproceedings", second.Type)
	assert.Equal(t, "Lee2019", second.CiteKey)
	assert.Equal(t, "Conference Paper", second.Fields["title"])
	assert.Equal(t, "10.1000/xyz", second.Fields["doi"])
}

func TestParseNestedBracesAreNotBalanced(t *testing.T) {
	// The value pattern does not accept nested braces, so the inner group
	// is captured as a bare run up to the first comma or newline.
	entries := Parse(sampleBib)
	require.NotEmpty(t, entries)
	title := entries[0].Fields["title"]
	assert.NotEqual(t, "A Robust Method for Things", title)
}

func TestParseFieldCleaning(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  string
	}{
		{name: "braces", field: `note = {  spaced   out  }`, want: "spaced out"},
		{name: "quotes", field: `note = "quoted value"`, want: "quoted value"},
		{name: "padded quotes", field: "note = \"  padded\t\"", want: "padded"},
		{name: "braces inside quotes", field: `note = "{ inner }"`, want: "{ inner }"},
		{name: "bare", field: `note = 42`, want: "42"},
		{name: "multiline", field: "note = {first\n   second}", want: "first second"},
		{name: "uppercase key", field: `NOTE = {x}`, want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "@misc{k,\n  " + tt.field + "\n}\n"
			entries := Parse(src)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.want, entries[0].Fields["note"])
		})
	}
}

func TestParseMalformedEntriesAreSkipped(t *testing.T) {
	src := "@{missingtype,\n title = {x}\n}\n@misc{ok,\n title = {Fine}\n}\n"
	entries := Parse(src)
	require.Len(t, entries, 1)
	assert.Equal(t, "ok", entries[0].CiteKey)
}

func TestParseEntryEndsAtLineStartingBrace(t *testing.T) {
	src := "@misc{cut,\n title = {Before},\n abstract = {line\n} after},\n year = 1999\n}\n"
	entries := Parse(src)
	require.Len(t, entries, 1)
	assert.Equal(t, "Before", entries[0].Fields["title"])
	_, hasYear := entries[0].Fields["year"]
	assert.False(t, hasYear)
}

func TestParseEmpty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("% only a comment\n"))
}

func TestParseReader(t *testing.T) {
	entries, err := ParseReader(strings.NewReader(sampleBib))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAuthors(t *testing.T) {
	e := Entry{Fields: map[string]string{"author": "A. One AND B. Two and C. Three"}}
	assert.Equal(t, []string{"A. One", "B. Two", "C. Three"}, e.Authors())

	assert.Nil(t, Entry{}.Authors())
}

func TestIndexFirstWins(t *testing.T) {
	entries := []Entry{
		{CiteKey: "dup", Fields: map[string]string{"title": "first"}},
		{CiteKey: "dup", Fields: map[string]string{"title": "second"}},
		{CiteKey: "Dup", Fields: map[string]string{"title": "other case"}},
	}
	idx := Index(entries)
	assert.Len(t, idx, 2)
	assert.Equal(t, "first", idx["dup"].Field("title"))
	assert.Equal(t, "other case", idx["Dup"].Field("TITLE"))
}
