// Package citation resolves the citation commands of a document against a
// bibliography, numbering every distinct key by its first appearance.
package citation

import (
	"regexp"
	"strings"

	"github.com/hesusruiz/paperview/bibtex"
)

// Order is the sequence of distinct citekeys in first-appearance order.
type Order []string

// Map assigns a 1-based number to each cited key.
// Numbers are dense and follow the document order, not the bibliography file order.
type Map map[string]int

// Resolved is a bibliography entry selected by a citation, with its number.
type Resolved struct {
	bibtex.Entry
	Number int

	// Stub is true when the key was cited but is not in the bibliography
	Stub bool
}

// ReCite matches the citation command in all its variants: \cite, \citep and \citet.
// The second group is the comma-separated list of keys.
var ReCite = regexp.MustCompile(`\\cite(p|t)?\{([^}]*)\}`)

var reSlugInvalid = regexp.MustCompile(`[^a-z0-9_-]+`)

// SplitKeys splits the argument of a citation command, trimming the keys and
// dropping the empty ones.
func SplitKeys(arg string) []string {
	keys := []string{}
	for _, k := range strings.Split(arg, ",") {
		k = strings.TrimSpace(k)
		if len(k) > 0 {
			keys = append(keys, k)
		}
	}
	return keys
}

// Collect scans the body left to right and returns the distinct cited keys in
// the order they first appear. The body is the raw source, so keys cited only
// in comments are numbered too.
func Collect(body string) Order {
	order := Order{}
	seen := map[string]bool{}

	for _, m := range ReCite.FindAllStringSubmatch(body, -1) {
		for _, key := range SplitKeys(m[2]) {
			if !seen[key] {
				seen[key] = true
				order = append(order, key)
			}
		}
	}

	return order
}

// NewMap numbers the keys by their position in the order.
func NewMap(order Order) Map {
	m := make(Map, len(order))
	for i, key := range order {
		m[key] = i + 1
	}
	return m
}

// Number returns the number assigned to key, if it was cited.
func (m Map) Number(key string) (int, bool) {
	n, ok := m[key]
	return n, ok
}

// Filter returns one resolved entry per cited key, in citation order.
// A key missing from the bibliography gets a stub entry whose title is the key itself.
func Filter(entries []bibtex.Entry, order Order) []Resolved {
	idx := bibtex.Index(entries)

	resolved := make([]Resolved, 0, len(order))
	for i, key := range order {
		entry, found := idx[key]
		if !found {
			entry = bibtex.Entry{
				CiteKey: key,
				Fields:  map[string]string{"title": key},
			}
		}
		resolved = append(resolved, Resolved{Entry: entry, Number: i + 1, Stub: !found})
	}

	return resolved
}

// Slugify builds the fragment identifier of a reference from its key.
// Keys differing only in case produce the same slug.
func Slugify(key string) string {
	return reSlugInvalid.ReplaceAllString(strings.ToLower(key), "-")
}

// AnchorID is the id of the reference list item for key.
func AnchorID(key string) string {
	return "ref-" + Slugify(key)
}

// Lookup finds the resolved entry for key.
func Lookup(resolved []Resolved, key string) (*Resolved, bool) {
	for i := range resolved {
		if resolved[i].CiteKey == key {
			return &resolved[i], true
		}
	}
	return nil, false
}

// All numbers every entry of the bibliography in file order. Repeated
// citekeys are listed once.
func All(entries []bibtex.Entry) []Resolved {
	resolved := make([]Resolved, 0, len(entries))
	seen := map[string]bool{}
	for _, e := range entries {
		if seen[e.CiteKey] {
			continue
		}
		seen[e.CiteKey] = true
		resolved = append(resolved, Resolved{Entry: e, Number: len(resolved) + 1})
	}
	return resolved
}
