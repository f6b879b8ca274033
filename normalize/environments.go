package normalize

import (
	"regexp"
	"strings"
)

// Theorem-like environments and the label that replaces their opening.
var Theorems = []struct {
	Env   string
	Label string
}{
	{"theorem", "Theorem."},
	{"lemma", "Lemma."},
	{"corollary", "Corollary."},
	{"conjecture", "Conjecture."},
	{"assumption", "Assumption."},
	{"proof", "Proof."},
}

var (
	reAlgorithm       = regexp.MustCompile(`(?s)\\begin\{algorithm\*?\}.*?\\end\{algorithm\*?\}`)
	reAlgorithmicOpen = regexp.MustCompile(`\\begin\{algorithmic\}\[?\d*\]?`)
	reAlgorithmicEnd  = regexp.MustCompile(`\\end\{algorithmic\}`)
	reCaption         = regexp.MustCompile(`\\caption\{([^}]*)\}`)
	reLabel           = regexp.MustCompile(`\\label\{[^}]*\}`)
	reGraphics        = regexp.MustCompile(`\\includegraphics(?:\[.*?\])?\{([^}]*)\}`)
	reLeadingSlash    = regexp.MustCompile(`^\\`)
)

const reFigure = `(?s)\\begin\{figure\*?\}.*?\\end\{figure\*?\}`

// AlgorithmLines returns the pseudo-code lines of a whole algorithm block:
// the algorithmic markers, captions and labels are removed, each line loses one
// leading backslash and is trimmed, and blank lines are dropped. The lines of
// the algorithm environment itself are kept, as begin{algorithm} and
// end{algorithm}.
func AlgorithmLines(block string) []string {
	block = reAlgorithmicOpen.ReplaceAllLiteralString(block, "")
	block = reAlgorithmicEnd.ReplaceAllLiteralString(block, "")
	block = reCaption.ReplaceAllLiteralString(block, "")
	block = reLabel.ReplaceAllLiteralString(block, "")

	lines := []string{}
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(reLeadingSlash.ReplaceAllLiteralString(line, ""))
		if len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

// convertAlgorithms rewrites every algorithm environment with wrap.
func convertAlgorithms(wrap func(lines []string) string) Pass {
	return Pass{
		Name: "algorithms",
		Apply: func(text string) string {
			return reAlgorithm.ReplaceAllStringFunc(text, func(block string) string {
				return wrap(AlgorithmLines(block))
			})
		},
	}
}

// Caption returns the caption text of a figure, if any.
func Caption(figure string) (string, bool) {
	m := reCaption.FindStringSubmatch(figure)
	if m == nil || len(m[1]) == 0 {
		return "", false
	}
	return m[1], true
}

// GraphicsPath returns the path of the first included graphic, if any.
func GraphicsPath(figure string) (string, bool) {
	m := reGraphics.FindStringSubmatch(figure)
	if m == nil || len(m[1]) == 0 {
		return "", false
	}
	return m[1], true
}

// convertTheorems replaces the opening of each theorem-like environment by the
// result of open, and removes the closing.
func convertTheorems(open func(label string) string) Pass {
	type rewrite struct {
		begin *regexp.Regexp
		end   *regexp.Regexp
		with  string
	}

	rewrites := make([]rewrite, len(Theorems))
	for i, th := range Theorems {
		rewrites[i] = rewrite{
			begin: regexp.MustCompile(`\\begin\{` + th.Env + `\*?\}`),
			end:   regexp.MustCompile(`\\end\{` + th.Env + `\*?\}`),
			with:  open(th.Label),
		}
	}

	return Pass{
		Name: "theorems",
		Apply: func(text string) string {
			for _, r := range rewrites {
				text = r.begin.ReplaceAllLiteralString(text, r.with)
				text = r.end.ReplaceAllLiteralString(text, "")
			}
			return text
		},
	}
}
