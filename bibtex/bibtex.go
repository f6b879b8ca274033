// Package bibtex reads the subset of the BibTeX database format used by the
// papers we render: `@type{citekey, field = value, ...}` records.
//
// The parser is deliberately lenient. An entry ends at the first closing
// brace that starts a line, so a field value containing a bare '}' at the
// beginning of a line cuts the entry short. Malformed entries are skipped or
// partially captured, and never reported as errors.
package bibtex

import (
	"io"
	"regexp"
	"strings"
)

// Entry is one record of the bibliography database.
type Entry struct {
	// Type is the lowercased entry kind, like "article" or "inproceedings"
	Type string

	// CiteKey identifies the entry in citation commands. It is case-sensitive.
	CiteKey string

	// Fields maps lowercased field names to their cleaned values.
	// Fields not present in the source are simply absent.
	Fields map[string]string
}

var (
	reCommentLine = regexp.MustCompile(`(?m)^[ \t]*%.*$`)
	reEntry       = regexp.MustCompile(`@(\w+)\s*\{\s*([^,]+),([\s\S]*?)\n\}`)
	reField       = regexp.MustCompile(`(\w+)\s*=\s*(\{[^{}]*\}|"[^"]*"|[^,\n]+)\s*,?`)
	reBlanks      = regexp.MustCompile(`\s+`)
	reAuthorSep   = regexp.MustCompile(`(?i)\s+and\s+`)
)

// Parse returns the entries of the raw bibliography text in file order.
func Parse(raw string) []Entry {
	entries := []Entry{}

	// Full-line comments are removed before looking for entries
	cleaned := reCommentLine.ReplaceAllString(raw, "")

	for _, m := range reEntry.FindAllStringSubmatch(cleaned, -1) {
		entry := Entry{
			Type:    strings.ToLower(m[1]),
			CiteKey: m[2],
			Fields:  parseFields(m[3]),
		}
		entries = append(entries, entry)
	}

	return entries
}

// ParseReader is like Parse but reads the bibliography from r.
func ParseReader(r io.Reader) ([]Entry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(raw)), nil
}

func parseFields(body string) map[string]string {
	fields := make(map[string]string)

	for _, m := range reField.FindAllStringSubmatch(body, -1) {
		fields[strings.ToLower(m[1])] = cleanValue(m[2])
	}

	return fields
}

// cleanValue strips one layer of braces, then one layer of quotes, and
// collapses runs of whitespace. The result is trimmed, also inside the
// delimiters.
func cleanValue(raw string) string {
	val := strings.TrimSpace(raw)
	val = strings.TrimPrefix(val, "{")
	val = strings.TrimSuffix(val, "}")
	val = strings.TrimPrefix(val, `"`)
	val = strings.TrimSuffix(val, `"`)
	return strings.TrimSpace(reBlanks.ReplaceAllString(val, " "))
}

// Field returns the value of the named field, or the empty string.
func (e Entry) Field(name string) string {
	if e.Fields == nil {
		return ""
	}
	return e.Fields[strings.ToLower(name)]
}

// Authors splits the author field on the BibTeX "and" separator.
func (e Entry) Authors() []string {
	raw := e.Field("author")
	if len(raw) == 0 {
		return nil
	}

	authors := reAuthorSep.Split(raw, -1)
	for i := range authors {
		authors[i] = strings.TrimSpace(authors[i])
	}
	return authors
}

// Index maps each citekey to its entry. When a citekey appears more than once
// in the database, the first entry wins.
func Index(entries []Entry) map[string]Entry {
	idx := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if _, exists := idx[e.CiteKey]; !exists {
			idx[e.CiteKey] = e
		}
	}
	return idx
}
