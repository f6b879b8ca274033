package texdom

import (
	"strings"
	"unicode/utf8"
)

// Environments whose content is taken literally.
var verbatimEnvs = map[string]bool{
	"verbatim":   true,
	"verbatim*":  true,
	"Verbatim":   true,
	"lstlisting": true,
	"minted":     true,
	"comment":    true,
}

// scanner is a cursor over LaTeX source.
type scanner struct {
	name string
	src  string
	pos  int
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) hasPrefix(prefix string) bool {
	return strings.HasPrefix(s.src[s.pos:], prefix)
}

func (s *scanner) errorf(format string, args ...any) *SyntaxError {
	return syntaxErrorAt(s.name, s.src, s.pos, format, args...)
}

// atCommand reports whether the cursor is at the control word \name.
func (s *scanner) atCommand(name string) bool {
	if !s.hasPrefix(`\` + name) {
		return false
	}
	next := s.pos + 1 + len(name)
	return next >= len(s.src) || !isLetter(s.src[next])
}

// peekCommandName returns the name of the control sequence at the cursor
// without consuming it.
func (s *scanner) peekCommandName() string {
	save := s.pos
	name := s.readCommandName()
	s.pos = save
	return name
}

// readCommandName consumes a control sequence and returns its name: a run of
// letters, or a single character for control symbols. The cursor must be at
// the backslash.
func (s *scanner) readCommandName() string {
	s.pos++ // the backslash
	if s.eof() {
		return ""
	}
	if !isLetter(s.src[s.pos]) {
		_, size := utf8.DecodeRuneInString(s.src[s.pos:])
		name := s.src[s.pos : s.pos+size]
		s.pos += size
		return name
	}
	start := s.pos
	for !s.eof() && isLetter(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// skipSpaces skips any white space, new lines included.
func (s *scanner) skipSpaces() {
	for !s.eof() {
		switch s.src[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

// skipBlanks skips spaces and tabs on the current line.
func (s *scanner) skipBlanks() {
	for !s.eof() && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

// skipStar consumes a '*' at the cursor, reporting whether there was one.
func (s *scanner) skipStar() bool {
	if s.peek() == '*' {
		s.pos++
		return true
	}
	return false
}

// readGroup consumes a balanced {...} group at the cursor and returns its content.
func (s *scanner) readGroup() (string, bool) {
	if s.peek() != '{' {
		return "", false
	}
	end, ok := matchingBrace(s.src, s.pos)
	if !ok {
		return "", false
	}
	inner := s.src[s.pos+1 : end]
	s.pos = end + 1
	return inner, true
}

// readOptional consumes a [...] argument at the cursor. Brackets inside braces
// do not close it.
func (s *scanner) readOptional() (string, bool) {
	if s.peek() != '[' {
		return "", false
	}
	depth := 0
	for i := s.pos + 1; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
		case ']':
			if depth == 0 {
				inner := s.src[s.pos+1 : i]
				s.pos = i + 1
				return inner, true
			}
		}
	}
	return "", false
}

// skipOptionals consumes any [...] arguments at the cursor.
func (s *scanner) skipOptionals() {
	for {
		save := s.pos
		s.skipBlanks()
		if _, ok := s.readOptional(); !ok {
			s.pos = save
			return
		}
	}
}

// readArg consumes one macro argument: a group, a control sequence or a single character.
func (s *scanner) readArg() (string, bool) {
	s.skipSpaces()
	if s.eof() {
		return "", false
	}
	switch s.peek() {
	case '{':
		return s.readGroup()
	case '\\':
		start := s.pos
		s.readCommandName()
		return s.src[start:s.pos], true
	}
	_, size := utf8.DecodeRuneInString(s.src[s.pos:])
	arg := s.src[s.pos : s.pos+size]
	s.pos += size
	return arg, true
}

// readUntil consumes everything up to and including marker, returning the
// text before it.
func (s *scanner) readUntil(marker string) (string, bool) {
	i := strings.Index(s.src[s.pos:], marker)
	if i == -1 {
		return "", false
	}
	text := s.src[s.pos : s.pos+i]
	s.pos += i + len(marker)
	return text, true
}

// readVerbatimEnv checks whether the cursor is at the beginning of a literal
// environment. If so it consumes the whole environment and returns its name,
// the text after the \begin{name} and the complete source of the environment.
func (s *scanner) readVerbatimEnv() (env, body, whole string, found bool, err error) {
	if !s.atCommand("begin") {
		return "", "", "", false, nil
	}
	start := s.pos
	s.readCommandName()
	s.skipBlanks()
	env, ok := s.readGroup()
	if !ok || !verbatimEnvs[env] {
		s.pos = start
		return "", "", "", false, nil
	}

	end := `\end{` + env + `}`
	body, ok = s.readUntil(end)
	if !ok {
		s.pos = start
		return "", "", "", false, s.errorf("environment %s not closed", env)
	}
	return env, body, s.src[start:s.pos], true, nil
}

// matchingBrace returns the position of the brace closing the one at open.
func matchingBrace(src string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
