package normalize

import (
	"regexp"
	"strings"

	"github.com/hesusruiz/paperview/citation"
)

var reItem = regexp.MustCompile(`\\item\s*`)

// MarkdownPipeline returns the passes that turn a document body into Markdown.
// Citations are linked before anything else touches brackets.
func MarkdownPipeline(cites citation.Map) Pipeline {
	return Pipeline{
		LinkCitations(cites),
		stripComments(),
		stripTwoColumnOpen(),
		stripClosingBracket(),
		stripBibliographyDirectives(),

		replaceFirst("title", `\\aistatstitle\{([^}]*)\}`, "# ${1}\n"),
		replaceFirst("author", `\\aistatsauthor\{([^}]*)\}`, "*${1}*\n"),
		replaceFirst("address", `\\aistatsaddress\{([^}]*)\}`, "*${1}*\n"),
		replaceFirst("abstract-begin", `\\begin\{abstract\}`, "### Abstract\n"),
		replaceFirst("abstract-end", `\\end\{abstract\}`, "\n"),

		replace("section", `\\section\*?\{([^}]*)\}`, "## ${1}"),
		replace("subsection", `\\subsection\*?\{([^}]*)\}`, "### ${1}"),
		replace("subsubsection", `\\subsubsection\*?\{([^}]*)\}`, "#### ${1}"),

		replaceFunc("enumerate", `(?s)\\begin\{enumerate\}(?:\[[^\]]*\])?(.*?)\\end\{enumerate\}`, func(groups []string) string {
			return reItem.ReplaceAllLiteralString(groups[1], "1. ")
		}),
		remove("itemize", `\\(?:begin|end)\{itemize\}`),
		replace("item", `\\item\s*`, "- "),

		replaceFunc("equation", `(?s)\\begin\{equation\*?\}(.*?)\\end\{equation\*?\}`, displayDollar),
		replaceFunc("gather", `(?s)\\begin\{gather\*?\}(.*?)\\end\{gather\*?\}`, displayDollar),
		replaceFunc("align", `(?s)\\begin\{align\*?\}(.*?)\\end\{align\*?\}`, displayBracket),

		stripLabels(),
		replace("textproc", `\\textproc\{([^}]*)\}`, "`${1}`"),
		replace("mathds", `\\mathds\{([^}]*)\}`, `\mathbb{${1}}`),
		remove("usepackage", `\\usepackage[^\n]*\n`),

		convertAlgorithms(func(lines []string) string {
			return "\n```text\n" + strings.Join(lines, "\n") + "\n```\n"
		}),
		replaceFunc("figures", reFigure, func(groups []string) string {
			pieces := []string{}
			if caption, ok := Caption(groups[0]); ok {
				pieces = append(pieces, caption)
			}
			if src, ok := GraphicsPath(groups[0]); ok {
				pieces = append(pieces, src)
			}
			if len(pieces) == 0 {
				return "> Figure\n"
			}
			return "> " + strings.Join(pieces, " — ") + "\n"
		}),
		convertTheorems(func(label string) string {
			return "**" + label + "**"
		}),

		replace("appendix", `\\appendix`, "\n## Appendix\n"),
		stripLayout("newpage", "newpage"),
		stripLayout("onecolumn", "onecolumn"),
		stripLayout("twocolumn", "twocolumn"),

		replace("blank-lines", `\n{3,}`, "\n\n"),
		{Name: "trim", Apply: strings.TrimSpace},
	}
}

// ToMarkdown converts a document body into Markdown.
func ToMarkdown(body string, cites citation.Map) string {
	return MarkdownPipeline(cites).Run(body)
}

func displayDollar(groups []string) string {
	return "$$\n" + strings.TrimSpace(groups[1]) + "\n$$"
}

// displayBracket keeps the lines of the environment as they are, without any
// alignment.
func displayBracket(groups []string) string {
	return "\\[\n" + strings.TrimSpace(groups[1]) + "\n\\]"
}
