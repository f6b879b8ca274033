package texdom

import "strings"

type openEnv struct {
	name string
	pos  int
}

// Validate checks that braces are balanced and that environments are
// properly nested. Comments and literal environments are not inspected.
func Validate(name, src string) error {
	s := &scanner{name: name, src: src}

	var braces []int
	var envs []openEnv

	for !s.eof() {
		switch s.peek() {
		case '%':
			s.skipComment()

		case '{':
			braces = append(braces, s.pos)
			s.pos++

		case '}':
			if len(braces) == 0 {
				return s.errorf("unbalanced closing brace")
			}
			braces = braces[:len(braces)-1]
			s.pos++

		case '\\':
			if _, _, _, found, err := s.readVerbatimEnv(); err != nil {
				return err
			} else if found {
				continue
			}

			start := s.pos
			cmd := s.readCommandName()
			if cmd != "begin" && cmd != "end" {
				continue
			}

			s.skipBlanks()
			env, ok := s.readGroup()
			if !ok {
				s.pos = start
				return s.errorf(`missing environment name after \%s`, cmd)
			}

			if cmd == "begin" {
				envs = append(envs, openEnv{name: env, pos: start})
				continue
			}

			if len(envs) == 0 {
				s.pos = start
				return s.errorf(`\end{%s} without matching \begin{%s}`, env, env)
			}
			top := envs[len(envs)-1]
			if top.name != env {
				s.pos = start
				opened := syntaxErrorAt(name, src, top.pos, "")
				return s.errorf(`\end{%s} does not match \begin{%s} at line %d`, env, top.name, opened.Line)
			}
			envs = envs[:len(envs)-1]

		default:
			s.pos++
		}
	}

	if len(envs) > 0 {
		top := envs[len(envs)-1]
		return syntaxErrorAt(name, src, top.pos, "environment %s not closed", top.name)
	}
	if len(braces) > 0 {
		return syntaxErrorAt(name, src, braces[len(braces)-1], "unclosed brace")
	}

	return nil
}

// skipComment consumes a comment up to and including the end of the line.
func (s *scanner) skipComment() {
	if i := strings.IndexByte(s.src[s.pos:], '\n'); i >= 0 {
		s.pos += i + 1
		return
	}
	s.pos = len(s.src)
}

// StripComments removes comments, including the line break that ends them and
// the indentation of the next line. The comment environment is removed whole.
func StripComments(src string) string {
	s := &scanner{src: src}
	var b strings.Builder

	for !s.eof() {
		switch c := s.peek(); c {
		case '%':
			s.skipComment()
			s.skipBlanks()

		case '\\':
			start := s.pos
			env, _, whole, found, err := s.readVerbatimEnv()
			if err != nil {
				// Left for the parser to report
				b.WriteString(src[s.pos:])
				return b.String()
			}
			if found {
				if env != "comment" {
					b.WriteString(whole)
				}
				continue
			}
			s.readCommandName()
			b.WriteString(src[start:s.pos])

		default:
			b.WriteByte(c)
			s.pos++
		}
	}

	return b.String()
}
