package texdom

import (
	"html"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Commands with one argument rendered inside an element
var styleTags = map[string]string{
	"textbf":          "strong",
	"textit":          "em",
	"textsl":          "em",
	"emph":            "em",
	"texttt":          "code",
	"underline":       "u",
	"textsuperscript": "sup",
	"textsubscript":   "sub",
}

// Commands with one argument rendered as plain content
var plainWrappers = map[string]bool{
	"textrm":     true,
	"textsf":     true,
	"textup":     true,
	"textmd":     true,
	"textnormal": true,
	"mbox":       true,
	"hbox":       true,
	"text":       true,
}

// Font declarations allowed at the start of a group, like {\bf text}
var declarationTags = map[string]string{
	"bf":       "strong",
	"bfseries": "strong",
	"it":       "em",
	"itshape":  "em",
	"em":       "em",
	"sl":       "em",
	"tt":       "code",
	"ttfamily": "code",
}

var symbols = map[string]string{
	"ldots":          "…",
	"dots":           "…",
	"textellipsis":   "…",
	"LaTeX":          "LaTeX",
	"TeX":            "TeX",
	"S":              "§",
	"P":              "¶",
	"dag":            "†",
	"ddag":           "‡",
	"copyright":      "©",
	"textregistered": "®",
	"texttrademark":  "™",
	"textbackslash":  `\`,
	"textasciitilde": "~",
	"textbar":        "|",
	"textless":       "&lt;",
	"textgreater":    "&gt;",
	"textendash":     "–",
	"textemdash":     "—",
	"quad":           "\u2003",
	"qquad":          "\u2003\u2003",
	"ss":             "ß",
	"ae":             "æ",
	"AE":             "Æ",
	"oe":             "œ",
	"OE":             "Œ",
	"o":              "ø",
	"O":              "Ø",
	"aa":             "å",
	"AA":             "Å",
	"l":              "ł",
	"L":              "Ł",
	"i":              "ı",
	"j":              "ȷ",
}

// Commands that produce nothing. The value is the number of arguments they consume.
var ignored = map[string]int{
	"noindent":        0,
	"centering":       0,
	"raggedright":     0,
	"raggedleft":      0,
	"maketitle":       0,
	"tableofcontents": 0,
	"clearpage":       0,
	"newpage":         0,
	"smallskip":       0,
	"medskip":         0,
	"bigskip":         0,
	"hfill":           0,
	"vfill":           0,
	"protect":         0,
	"relax":           0,
	"tiny":            0,
	"small":           0,
	"footnotesize":    0,
	"normalsize":      0,
	"large":           0,
	"Large":           0,
	"huge":            0,
	"hline":           0,
	"bf":              0,
	"it":              0,
	"em":              0,
	"rm":              0,
	"sc":              0,
	"tt":              0,
	"label":           1,
	"nocite":          1,
	"vspace":          1,
	"hspace":          1,
	"phantom":         1,
	"setlength":       2,
	"addtolength":     2,
}

// Combining marks for the accent commands
var accents = map[string]rune{
	"'":  '\u0301',
	"`":  '\u0300',
	"\"": '\u0308',
	"^":  '\u0302',
	"~":  '\u0303',
	"=":  '\u0304',
	".":  '\u0307',
	"c":  '\u0327',
	"v":  '\u030C',
	"u":  '\u0306',
	"H":  '\u030B',
	"r":  '\u030A',
}

// inline renders the LaTeX source of a paragraph to HTML.
type inline struct {
	scanner
	out ByteRenderer
}

// RenderInline converts inline LaTeX to HTML. White space is collapsed and
// math spans are kept as source for the typesetter.
func RenderInline(src string) string {
	in := &inline{scanner: scanner{src: src}}
	in.run()
	return strings.TrimSpace(in.out.String())
}

func (in *inline) write(s string) {
	in.out.Render(s)
}

func (in *inline) space() {
	if in.out.Len() > 0 && in.out.lastByte() != ' ' {
		in.out.Render(byte(' '))
	}
}

func (in *inline) run() {
	for !in.eof() {
		c := in.peek()

		switch c {
		case '\\':
			in.command()

		case '{':
			group, ok := in.readGroup()
			if !ok {
				// Unbalanced, treated as a literal brace
				in.pos++
				in.write("{")
				continue
			}
			in.group(group)

		case '}':
			in.pos++

		case '$':
			in.math()

		case '~':
			in.pos++
			in.write("&nbsp;")

		case '-':
			switch {
			case in.hasPrefix("---"):
				in.pos += 3
				in.write("—")
			case in.hasPrefix("--"):
				in.pos += 2
				in.write("–")
			default:
				in.pos++
				in.write("-")
			}

		case '`':
			if in.hasPrefix("``") {
				in.pos += 2
				in.write("“")
			} else {
				in.pos++
				in.write("‘")
			}

		case '\'':
			if in.hasPrefix("''") {
				in.pos += 2
				in.write("”")
			} else {
				in.pos++
				in.write("’")
			}

		case '<':
			if in.hasPrefix("<a ") {
				if end := strings.Index(in.src[in.pos:], "</a>"); end != -1 {
					// Links inserted by the citation linker are kept as they are
					in.write(in.src[in.pos : in.pos+end+4])
					in.pos += end + 4
					continue
				}
			}
			in.pos++
			in.write("&lt;")

		case '>':
			in.pos++
			in.write("&gt;")

		case '&':
			in.pos++
			in.write("&amp;")

		case ' ', '\t', '\n', '\r':
			in.pos++
			in.space()

		default:
			in.out.Render(c)
			in.pos++
		}
	}
}

// math copies a math span as escaped source.
func (in *inline) math() {
	delim := "$"
	if in.hasPrefix("$$") {
		delim = "$$"
	}
	start := in.pos
	in.pos += len(delim)

	for i := in.pos; i < len(in.src); i++ {
		if in.src[i] == '\\' {
			i++
			continue
		}
		if strings.HasPrefix(in.src[i:], delim) {
			in.write(html.EscapeString(in.src[start : i+len(delim)]))
			in.pos = i + len(delim)
			return
		}
	}

	// No closing delimiter: a plain dollar sign
	in.write(delim)
}

// group renders the content of a {...} group, applying a leading font declaration.
func (in *inline) group(src string) {
	trimmed := strings.TrimLeft(src, " \t\n")
	if strings.HasPrefix(trimmed, `\`) {
		s := &scanner{src: trimmed}
		name := s.readCommandName()
		if tag, ok := declarationTags[name]; ok {
			in.write("<" + tag + ">" + RenderInline(trimmed[s.pos:]) + "</" + tag + ">")
			return
		}
		if name == "sc" || name == "scshape" {
			in.write(`<span class="smallcaps">` + RenderInline(trimmed[s.pos:]) + "</span>")
			return
		}
	}
	in.write(RenderInline(src))
}

func (in *inline) command() {
	name := in.readCommandName()

	if len(name) == 0 {
		in.write(`\`)
		return
	}

	if !isLetter(name[0]) {
		in.controlSymbol(name)
		return
	}

	if tag, ok := styleTags[name]; ok {
		arg, _ := in.readArg()
		in.write("<" + tag + ">" + RenderInline(arg) + "</" + tag + ">")
		return
	}

	if plainWrappers[name] {
		arg, _ := in.readArg()
		in.write(RenderInline(arg))
		return
	}

	if s, ok := symbols[name]; ok {
		in.write(s)
		return
	}

	if mark, ok := accents[name]; ok {
		in.accent(mark)
		return
	}

	if n, ok := ignored[name]; ok {
		in.skipStar()
		in.skipOptionals()
		for i := 0; i < n; i++ {
			in.readArg()
		}
		return
	}

	switch name {
	case "textsc":
		arg, _ := in.readArg()
		in.write(`<span class="smallcaps">` + RenderInline(arg) + "</span>")

	case "url":
		arg, _ := in.readArg()
		u := html.EscapeString(strings.TrimSpace(arg))
		in.write(`<a href="` + u + `">` + u + "</a>")

	case "href":
		target, _ := in.readArg()
		text, _ := in.readArg()
		in.write(`<a href="` + html.EscapeString(strings.TrimSpace(target)) + `">` + RenderInline(text) + "</a>")

	case "footnote":
		arg, _ := in.readArg()
		in.write(`<span class="footnote">` + RenderInline(arg) + "</span>")

	case "cite", "citep", "citet", "citealp":
		in.skipOptionals()
		arg, _ := in.readArg()
		in.write("[" + html.EscapeString(arg) + "]")

	default:
		// Unknown commands degrade to the text of their arguments
		in.skipStar()
		in.skipOptionals()
		for in.peek() == '{' {
			arg, ok := in.readGroup()
			if !ok {
				break
			}
			in.write(RenderInline(arg))
		}
	}
}

func (in *inline) controlSymbol(name string) {
	switch name {
	case `\`:
		in.skipStar()
		in.skipOptionals()
		in.write("<br>")
	case "%", "$", "#", "_", "{", "}":
		in.write(name)
	case "&":
		in.write("&amp;")
	case " ", ";", ":", ">":
		in.write(" ")
	case ",":
		in.write("\u2009")
	case "!", "-", "/", "@":
		// nothing
	case "(":
		in.inlineParenMath()
	default:
		if mark, ok := accents[name]; ok {
			in.accent(mark)
			return
		}
		in.write(html.EscapeString(name))
	}
}

// inlineParenMath turns \(...\) into $...$ so the typesetter finds one syntax.
func (in *inline) inlineParenMath() {
	body, ok := in.readUntil(`\)`)
	if !ok {
		in.write("(")
		return
	}
	in.write(html.EscapeString("$" + body + "$"))
}

// accent applies a combining mark to the first letter of the next argument.
func (in *inline) accent(mark rune) {
	arg, ok := in.readArg()
	if !ok {
		return
	}

	switch arg {
	case `\i`:
		arg = "ı"
	case `\j`:
		arg = "ȷ"
	}

	r, size := utf8.DecodeRuneInString(arg)
	if r == utf8.RuneError {
		in.write(html.EscapeString(arg))
		return
	}
	in.write(norm.NFC.String(string(r)+string(mark)) + RenderInline(arg[size:]))
}
