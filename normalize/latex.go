package normalize

import (
	"strings"

	"github.com/hesusruiz/paperview/citation"
)

// Prelude defines the macros of the conference style files that the LaTeX
// engine does not know about.
const Prelude = `\newcommand{\aistatstitle}[1]{\section*{#1}}
\newcommand{\aistatsauthor}[1]{}
\newcommand{\aistatsaddress}[1]{}
\newcommand{\textproc}[1]{\texttt{#1}}
\newcommand{\mathds}[1]{\mathbb{#1}}
\newcommand{\citep}[1]{[ #1 ]}
\newcommand{\citet}[1]{[ #1 ]}
\newcommand{\argmax}{\mathrm{argmax}}
\newcommand{\argmin}{\mathrm{argmin}}
\newcommand{\logit}{\mathrm{logit}}
\newcommand{\ceil}[1]{\lceil #1 \rceil}
\newcommand{\floor}[1]{\lfloor #1 \rfloor}`

// LaTeXPipeline returns the passes that reduce a document body to the LaTeX
// subset of the LaTeX backend. The last pass prepends the Prelude.
func LaTeXPipeline(cites citation.Map) Pipeline {
	return Pipeline{
		stripComments(),
		stripTwoColumnOpen(),
		stripClosingBracket(),
		remove("usepackage", `\\usepackage[^\n]*\n`),
		stripBibliographyDirectives(),
		remove("includegraphics", `\\includegraphics\[.*?\]\{[^}]*\}`),
		stripLayout("newpage", "newpage"),
		stripLayout("onecolumn", "onecolumn"),
		stripLayout("twocolumn", "twocolumn"),
		replace("appendix", `\\appendix`, `\section*{Appendix}`),
		stripLabels(),

		LinkCitations(cites),

		convertTheorems(func(label string) string {
			return `\paragraph{` + label + `}`
		}),
		replaceFunc("figures", reFigure, func(groups []string) string {
			caption, ok := Caption(groups[0])
			if !ok {
				caption = "Figure"
			}
			return `\begin{quote}` + caption + `\end{quote}`
		}),
		convertAlgorithms(func(lines []string) string {
			return "\\begin{verbatim}\n" + strings.Join(lines, "\n") + "\n\\end{verbatim}"
		}),

		{Name: "prelude", Apply: func(text string) string {
			return Prelude + "\n" + text
		}},
	}
}

// ToLaTeX converts a document body into the LaTeX subset.
func ToLaTeX(body string, cites citation.Map) string {
	return LaTeXPipeline(cites).Run(body)
}
