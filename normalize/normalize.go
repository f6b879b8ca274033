// Package normalize rewrites the LaTeX dialect of our papers into the two
// intermediate forms consumed by the renderers: Markdown with raw HTML
// citation anchors, and a LaTeX subset the in-house LaTeX engine understands.
//
// Each form is produced by a Pipeline: an ordered list of named passes over
// the text. Later passes assume the earlier ones already ran, so the order of
// the passes is part of the contract.
package normalize

import (
	"regexp"
	"strings"
)

const (
	beginDocument = `\begin{document}`
	endDocument   = `\end{document}`
)

// Pass is a named rewrite step over the document text.
type Pass struct {
	Name  string
	Apply func(text string) string
}

// Pipeline is a sequence of passes applied in order.
type Pipeline []Pass

// Run applies every pass of the pipeline to text.
func (p Pipeline) Run(text string) string {
	for _, pass := range p {
		text = pass.Apply(text)
	}
	return text
}

// Find returns the pass with the given name.
func (p Pipeline) Find(name string) (Pass, bool) {
	for _, pass := range p {
		if pass.Name == name {
			return pass, true
		}
	}
	return Pass{}, false
}

// Names lists the pass names in execution order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, pass := range p {
		names[i] = pass.Name
	}
	return names
}

// ExtractBody returns the trimmed text between the begin and end document
// markers. When any marker is missing or they are out of order, the whole
// text is the body.
func ExtractBody(tex string) string {
	start := strings.Index(tex, beginDocument)
	end := strings.Index(tex, endDocument)

	if start != -1 && end != -1 && end > start {
		return strings.TrimSpace(tex[start+len(beginDocument) : end])
	}

	return tex
}

// remove deletes every match of expr.
func remove(name, expr string) Pass {
	re := regexp.MustCompile(expr)
	return Pass{
		Name: name,
		Apply: func(text string) string {
			return re.ReplaceAllLiteralString(text, "")
		},
	}
}

// replace substitutes every match of expr with the template repl, which may
// refer to submatches as ${n}.
func replace(name, expr, repl string) Pass {
	re := regexp.MustCompile(expr)
	return Pass{
		Name: name,
		Apply: func(text string) string {
			return re.ReplaceAllString(text, repl)
		},
	}
}

// replaceFirst is like replace but only touches the first match.
func replaceFirst(name, expr, repl string) Pass {
	re := regexp.MustCompile(expr)
	return Pass{
		Name: name,
		Apply: func(text string) string {
			loc := re.FindStringSubmatchIndex(text)
			if loc == nil {
				return text
			}
			dst := []byte(text[:loc[0]])
			dst = re.ExpandString(dst, repl, text, loc)
			return string(dst) + text[loc[1]:]
		},
	}
}

// replaceFunc substitutes every match of expr with the result of fn, which
// receives the full match followed by the submatches.
func replaceFunc(name, expr string, fn func(groups []string) string) Pass {
	re := regexp.MustCompile(expr)
	return Pass{
		Name: name,
		Apply: func(text string) string {
			return replaceSubmatchFunc(re, text, fn)
		},
	}
}

func replaceSubmatchFunc(re *regexp.Regexp, text string, fn func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0

	for _, loc := range matches {
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = text[loc[2*i]:loc[2*i+1]]
			}
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(fn(groups))
		last = loc[1]
	}

	b.WriteString(text[last:])
	return b.String()
}

// Passes shared by both pipelines.

func stripComments() Pass {
	return remove("comments", `(?m)^%.*$`)
}

func stripTwoColumnOpen() Pass {
	return remove("twocolumn-open", `\\twocolumn\[`)
}

func stripClosingBracket() Pass {
	return remove("closing-bracket", `(?m)^\]\s*$`)
}

func stripLabels() Pass {
	return remove("labels", `\\label\{[^}]*\}`)
}

func stripBibliographyDirectives() Pass {
	return remove("bibliography-directives", `\\(?:bibliographystyle|addbibresource|bibliography)\{[^}]*\}`)
}

func stripLayout(name, command string) Pass {
	return remove(name, `\\`+command)
}
