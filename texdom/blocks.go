package texdom

import (
	"fmt"
	"strings"
)

var sectionLevels = map[string]int{
	"section":       1,
	"subsection":    2,
	"subsubsection": 3,
}

// Display math environments rendered between \[ and \]
var bracketMathEnvs = map[string]bool{
	"align":    true,
	"gather":   true,
	"multline": true,
	"eqnarray": true,
	"flalign":  true,
	"alignat":  true,
}

var listTags = map[string]string{
	"itemize":     "ul",
	"enumerate":   "ol",
	"description": "dl",
}

// Containers rendered with a specific tag. Any other environment becomes a div
// with the environment name as class.
var containerTags = map[string]string{
	"quote":     "blockquote",
	"quotation": "blockquote",
	"verse":     "blockquote",
	"figure":    "figure",
}

// Number of mandatory arguments taken by some environments, skipped on output.
var envArgs = map[string]int{
	"minipage":   1,
	"multicols":  1,
	"wrapfigure": 2,
	"tabularx":   1,
}

type parser struct {
	scanner

	// counters of the numbered sections, by level
	counters [3]int
}

func newParser(name, src string) *parser {
	return &parser{scanner: scanner{name: name, src: src}}
}

// atBlankLine reports whether the new line at the cursor is followed by an
// empty line.
func (p *parser) atBlankLine() bool {
	if p.peek() != '\n' {
		return false
	}
	for i := p.pos + 1; i < len(p.src); i++ {
		switch p.src[i] {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

// parseBlocks reads block content and appends it to parent, until stop
// returns true or the source is exhausted.
func (p *parser) parseBlocks(parent *Node, stop func() bool) error {
	var para strings.Builder
	var runIn string
	var sections []*Node

	container := func() *Node {
		if len(sections) > 0 {
			return sections[len(sections)-1]
		}
		return parent
	}

	flush := func() {
		text := strings.TrimSpace(para.String())
		if len(text) > 0 || len(runIn) > 0 {
			container().AppendChild(&Node{Type: ParagraphNode, Text: text, Title: runIn})
		}
		para.Reset()
		runIn = ""
	}

	for !p.eof() {
		if stop != nil && stop() {
			break
		}

		c := p.peek()
		switch {

		case c == '\n' && p.atBlankLine():
			flush()
			p.skipSpaces()

		case p.hasPrefix("$$"):
			flush()
			p.pos += 2
			body, ok := p.readUntil("$$")
			if !ok {
				p.pos -= 2
				return p.errorf("display math not closed")
			}
			container().AppendChild(&Node{Type: MathNode, Text: "$$\n" + strings.TrimSpace(body) + "\n$$"})

		case c == '$':
			start := p.pos
			p.skipInlineMath()
			para.WriteString(p.src[start:p.pos])

		case p.hasPrefix(`\[`):
			flush()
			p.pos += 2
			body, ok := p.readUntil(`\]`)
			if !ok {
				p.pos -= 2
				return p.errorf("display math not closed")
			}
			container().AppendChild(&Node{Type: MathNode, Text: "\\[\n" + strings.TrimSpace(body) + "\n\\]"})

		case c == '{':
			start := p.pos
			if _, ok := p.readGroup(); !ok {
				return p.errorf("unclosed brace")
			}
			para.WriteString(p.src[start:p.pos])

		case c == '\\':
			name := p.peekCommandName()

			switch {
			case name == "begin":
				flush()
				if err := p.parseEnvironment(container()); err != nil {
					return err
				}

			case name == "end":
				env := p.peekEnvName()
				return p.errorf(`\end{%s} without matching \begin{%s}`, env, env)

			case sectionLevels[name] > 0:
				flush()
				if err := p.parseSection(parent, &sections); err != nil {
					return err
				}

			case name == "paragraph" || name == "subparagraph":
				flush()
				p.readCommandName()
				p.skipStar()
				p.skipOptionals()
				p.skipBlanks()
				title, ok := p.readGroup()
				if !ok {
					return p.errorf(`missing title in \%s`, name)
				}
				runIn = strings.TrimSpace(title)

			case name == "par":
				flush()
				p.readCommandName()

			default:
				// Inline command, rendered later with its paragraph
				start := p.pos
				p.readCommandName()
				para.WriteString(p.src[start:p.pos])
			}

		default:
			para.WriteByte(c)
			p.pos++
		}
	}

	flush()
	return nil
}

// skipInlineMath consumes a $...$ span. A dollar without its closing pair is
// consumed alone.
func (p *parser) skipInlineMath() {
	for i := p.pos + 1; i < len(p.src); i++ {
		switch p.src[i] {
		case '\\':
			i++
		case '$':
			p.pos = i + 1
			return
		}
	}
	p.pos++
}

// peekEnvName returns the environment name of the \begin or \end at the cursor.
func (p *parser) peekEnvName() string {
	save := p.pos
	defer func() { p.pos = save }()

	p.readCommandName()
	p.skipBlanks()
	env, _ := p.readGroup()
	return env
}

func (p *parser) parseSection(parent *Node, sections *[]*Node) error {
	name := p.readCommandName()
	level := sectionLevels[name]
	starred := p.skipStar()
	p.skipOptionals()
	p.skipSpaces()

	title, ok := p.readGroup()
	if !ok {
		return p.errorf(`missing title in \%s`, name)
	}

	node := &Node{Type: SectionNode, Level: level, Title: strings.TrimSpace(title)}

	if !starred {
		p.counters[level-1]++
		for i := level; i < len(p.counters); i++ {
			p.counters[i] = 0
		}
		for _, n := range p.counters[:level] {
			node.Outline = fmt.Sprintf("%s%d.", node.Outline, n)
		}
	}

	// A section closes the open sections of the same or a deeper level
	for len(*sections) > 0 && (*sections)[len(*sections)-1].Level >= level {
		*sections = (*sections)[:len(*sections)-1]
	}

	if len(*sections) > 0 {
		(*sections)[len(*sections)-1].AppendChild(node)
	} else {
		parent.AppendChild(node)
	}
	*sections = append(*sections, node)

	return nil
}

// expectEnd consumes the \end{env} closing the environment.
func (p *parser) expectEnd(env string) error {
	if p.eof() {
		return p.errorf("environment %s not closed", env)
	}
	if got := p.peekEnvName(); !p.atCommand("end") || got != env {
		return p.errorf(`\end{%s} does not match \begin{%s}`, got, env)
	}
	p.readCommandName()
	p.skipBlanks()
	p.readGroup()
	return nil
}

func (p *parser) parseEnvironment(parent *Node) error {
	begin := p.pos

	if env, body, _, found, err := p.readVerbatimEnv(); err != nil {
		return err
	} else if found {
		if env == "comment" {
			return nil
		}
		parent.AppendChild(verbatimNode(env, body))
		return nil
	}

	p.readCommandName()
	p.skipBlanks()
	env, ok := p.readGroup()
	if !ok {
		p.pos = begin
		return p.errorf(`missing environment name after \begin`)
	}
	base := strings.TrimSuffix(env, "*")

	switch {

	case base == "document":
		if err := p.parseBlocks(parent, p.atEndCommand); err != nil {
			return err
		}
		return p.expectEnd(env)

	case base == "equation" || base == "displaymath" || base == "math":
		body, ok := p.readUntil(`\end{` + env + `}`)
		if !ok {
			p.pos = begin
			return p.errorf("environment %s not closed", env)
		}
		parent.AppendChild(&Node{Type: MathNode, Text: "$$\n" + strings.TrimSpace(body) + "\n$$"})
		return nil

	case bracketMathEnvs[base]:
		if base == "alignat" {
			p.readArg()
		}
		body, ok := p.readUntil(`\end{` + env + `}`)
		if !ok {
			p.pos = begin
			return p.errorf("environment %s not closed", env)
		}
		parent.AppendChild(&Node{Type: MathNode, Text: "\\[\n" + strings.TrimSpace(body) + "\n\\]"})
		return nil

	case base == "tabular" || base == "tabularx":
		return p.parseTabular(parent, env, begin)

	case len(listTags[base]) > 0:
		return p.parseList(parent, env, listTags[base])
	}

	node := &Node{Type: BlockNode, Tag: "div", Class: base}
	if tag, ok := containerTags[base]; ok {
		node.Tag = tag
		node.Class = ""
	}
	if base == "abstract" {
		node.Title = "Abstract"
	}

	p.skipOptionals()
	for i := 0; i < envArgs[base]; i++ {
		p.skipBlanks()
		p.readGroup()
	}

	if err := p.parseBlocks(node, p.atEndCommand); err != nil {
		return err
	}
	if err := p.expectEnd(env); err != nil {
		return err
	}

	parent.AppendChild(node)
	return nil
}

func (p *parser) atEndCommand() bool {
	return p.atCommand("end")
}

func verbatimNode(env, body string) *Node {
	lang := ""

	// Options after the \begin of listings and minted
	s := &scanner{src: body}
	switch env {
	case "lstlisting", "Verbatim":
		if opts, ok := s.readOptional(); ok {
			lang = optionValue(opts, "language")
		}
	case "minted":
		s.skipOptionals()
		lang, _ = s.readGroup()
	}
	body = body[s.pos:]

	body = strings.TrimPrefix(body, "\r")
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimRight(body, " \t\r\n")

	return &Node{Type: VerbatimNode, Text: body, Lang: strings.TrimSpace(lang)}
}

// optionValue extracts the value of key from a key=value option list.
func optionValue(opts, key string) string {
	for _, opt := range strings.Split(opts, ",") {
		k, v, found := strings.Cut(opt, "=")
		if found && strings.TrimSpace(k) == key {
			return strings.Trim(strings.TrimSpace(v), "{}")
		}
	}
	return ""
}

func (p *parser) parseList(parent *Node, env, tag string) error {
	list := &Node{Type: ListNode, Tag: tag}
	p.skipOptionals()

	stopAtItem := func() bool {
		return p.atCommand("item") || p.atCommand("end")
	}

	for {
		p.skipSpaces()

		if p.eof() {
			return p.errorf("environment %s not closed", env)
		}
		if p.atCommand("end") {
			break
		}
		if !p.atCommand("item") {
			// Content before the first item is dropped
			if err := p.parseBlocks(&Node{}, stopAtItem); err != nil {
				return err
			}
			continue
		}

		p.readCommandName()
		item := &Node{Type: ItemNode}

		save := p.pos
		p.skipBlanks()
		if label, ok := p.readOptional(); ok {
			item.Title = strings.TrimSpace(label)
		} else {
			p.pos = save
		}

		if err := p.parseBlocks(item, stopAtItem); err != nil {
			return err
		}
		list.AppendChild(item)
	}

	if err := p.expectEnd(env); err != nil {
		return err
	}

	parent.AppendChild(list)
	return nil
}

var tableRules = []string{`\hline`, `\toprule`, `\midrule`, `\bottomrule`}

func (p *parser) parseTabular(parent *Node, env string, begin int) error {
	if strings.TrimSuffix(env, "*") == "tabularx" {
		p.skipBlanks()
		p.readGroup()
	}
	p.skipOptionals()
	p.skipBlanks()
	p.readGroup() // column specification

	body, ok := p.readUntil(`\end{` + env + `}`)
	if !ok {
		p.pos = begin
		return p.errorf("environment %s not closed", env)
	}

	table := &Node{Type: TableNode}
	for _, row := range splitTopLevel(body, `\\`) {
		for _, rule := range tableRules {
			row = strings.ReplaceAll(row, rule, "")
		}
		row = stripCommandWithArg(row, "cline")
		if len(strings.TrimSpace(row)) == 0 {
			continue
		}

		cells := splitTopLevel(row, "&")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		table.Rows = append(table.Rows, cells)
	}

	parent.AppendChild(table)
	return nil
}

// splitTopLevel splits src at the separators that are not inside a group.
// The separator is either `\\` or a single character.
func splitTopLevel(src, sep string) []string {
	var parts []string
	depth := 0
	start := 0

	for i := 0; i < len(src); i++ {
		switch c := src[i]; {
		case c == '\\':
			if sep == `\\` && depth == 0 && i+1 < len(src) && src[i+1] == '\\' {
				parts = append(parts, src[start:i])
				i++
				// An optional vertical space after the row end
				s := &scanner{src: src, pos: i + 1}
				s.skipBlanks()
				if _, ok := s.readOptional(); ok {
					i = s.pos - 1
				}
				start = i + 1
				continue
			}
			i++
		case c == '{':
			depth++
		case c == '}':
			depth--
		case depth == 0 && len(sep) == 1 && c == sep[0]:
			parts = append(parts, src[start:i])
			start = i + 1
		}
	}

	return append(parts, src[start:])
}

// stripCommandWithArg removes every \name{...} from src.
func stripCommandWithArg(src, name string) string {
	for {
		i := strings.Index(src, `\`+name+`{`)
		if i == -1 {
			return src
		}
		end, ok := matchingBrace(src, i+len(name)+1)
		if !ok {
			return src
		}
		src = src[:i] + src[end+1:]
	}
}
