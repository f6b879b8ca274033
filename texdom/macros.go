package texdom

import (
	"strconv"
	"strings"
)

// maxExpansionDepth bounds the number of expansion rounds over a text.
const maxExpansionDepth = 32

// Macro is a user command defined with \newcommand and friends.
type Macro struct {
	Name string
	Args int

	// Optional is the default of the first argument, when it is optional
	Optional *string

	Body string
}

// Macros maps command names, without the backslash, to their definition.
type Macros map[string]Macro

var definitionCommands = map[string]bool{
	"newcommand":          true,
	"renewcommand":        true,
	"providecommand":      true,
	"DeclareMathOperator": true,
}

// ParseMacros reads the macro definitions in src. Anything else in src is ignored.
func ParseMacros(src string) (Macros, error) {
	macros, _, err := extractMacros("macros", src)
	return macros, err
}

// extractMacros collects the definitions of src and returns the text without them.
func extractMacros(name, src string) (Macros, string, error) {
	macros := Macros{}
	s := &scanner{name: name, src: src}
	var b strings.Builder

	for !s.eof() {
		c := s.peek()
		if c != '\\' {
			b.WriteByte(c)
			s.pos++
			continue
		}

		if _, _, whole, found, err := s.readVerbatimEnv(); err != nil {
			return nil, "", err
		} else if found {
			b.WriteString(whole)
			continue
		}

		start := s.pos
		cmd := s.readCommandName()
		if !definitionCommands[cmd] {
			b.WriteString(src[start:s.pos])
			continue
		}

		m, err := s.readDefinition(cmd)
		if err != nil {
			return nil, "", err
		}
		if _, exists := macros[m.Name]; exists && cmd == "providecommand" {
			continue
		}
		macros[m.Name] = m
	}

	return macros, b.String(), nil
}

// readDefinition parses the rest of a definition command:
// {\name}[args][default]{body}, or {\name}{text} for math operators.
func (s *scanner) readDefinition(cmd string) (Macro, error) {
	s.skipStar()
	s.skipSpaces()

	var m Macro
	switch s.peek() {
	case '{':
		g, _ := s.readGroup()
		g = strings.TrimSpace(g)
		if !strings.HasPrefix(g, `\`) || len(g) < 2 {
			return m, s.errorf(`invalid macro name in \%s`, cmd)
		}
		m.Name = g[1:]
	case '\\':
		m.Name = s.readCommandName()
	default:
		return m, s.errorf(`missing macro name in \%s`, cmd)
	}

	s.skipSpaces()

	if cmd == "DeclareMathOperator" {
		text, ok := s.readGroup()
		if !ok {
			return m, s.errorf(`missing operator text for \%s`, m.Name)
		}
		m.Body = `\mathrm{` + text + `}`
		return m, nil
	}

	if n, ok := s.readOptional(); ok {
		args, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || args < 0 || args > 9 {
			return m, s.errorf(`invalid argument count %q for \%s`, n, m.Name)
		}
		m.Args = args
		s.skipSpaces()

		if def, ok := s.readOptional(); ok {
			m.Optional = &def
			s.skipSpaces()
		}
	}

	body, ok := s.readGroup()
	if !ok {
		return m, s.errorf(`missing body for \%s`, m.Name)
	}
	m.Body = body

	return m, nil
}

// Expand replaces every use of the macros in text by its body, until no macro
// is left. Literal environments are not expanded.
func (m Macros) Expand(text string) (string, error) {
	if len(m) == 0 {
		return text, nil
	}

	for depth := 0; depth < maxExpansionDepth; depth++ {
		out, changed := m.expandOnce(text)
		if !changed {
			return out, nil
		}
		text = out
	}

	return "", ErrExpansionDepth
}

func (m Macros) expandOnce(text string) (string, bool) {
	s := &scanner{src: text}
	var b strings.Builder
	changed := false

	for !s.eof() {
		c := s.peek()
		if c != '\\' {
			b.WriteByte(c)
			s.pos++
			continue
		}

		if _, _, whole, found, err := s.readVerbatimEnv(); err == nil && found {
			b.WriteString(whole)
			continue
		}

		start := s.pos
		name := s.readCommandName()
		mac, ok := m[name]
		if !ok {
			b.WriteString(text[start:s.pos])
			continue
		}

		args := s.readMacroArgs(mac)
		b.WriteString(mac.apply(args))
		changed = true
	}

	return b.String(), changed
}

func (s *scanner) readMacroArgs(mac Macro) []string {
	args := make([]string, 0, mac.Args)

	required := mac.Args
	if mac.Optional != nil && mac.Args > 0 {
		save := s.pos
		s.skipBlanks()
		if opt, ok := s.readOptional(); ok {
			args = append(args, opt)
		} else {
			s.pos = save
			args = append(args, *mac.Optional)
		}
		required--
	}

	for i := 0; i < required; i++ {
		arg, ok := s.readArg()
		if !ok {
			break
		}
		args = append(args, arg)
	}

	return args
}

// apply substitutes the parameters #1..#9 of the body.
func (mac Macro) apply(args []string) string {
	if !strings.Contains(mac.Body, "#") {
		return mac.Body
	}

	var b strings.Builder
	body := mac.Body
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '#' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		next := body[i+1]
		switch {
		case next == '#':
			b.WriteByte('#')
			i++
		case '1' <= next && next <= '9':
			if n := int(next - '1'); n < len(args) {
				b.WriteString(args[n])
			}
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
