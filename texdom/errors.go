package texdom

import (
	"errors"
	"fmt"
	"strings"
)

type SyntaxError struct {
	Filename string
	Line     int
	Column   int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Msg)
}

// ErrExpansionDepth means that macro expansion did not settle, usually
// because of a recursive definition.
var ErrExpansionDepth = errors.New("macro expansion too deep")

// syntaxErrorAt builds a SyntaxError for the byte offset pos of src.
func syntaxErrorAt(name, src string, pos int, format string, args ...any) *SyntaxError {
	if pos > len(src) {
		pos = len(src)
	}
	before := src[:pos]
	line := strings.Count(before, "\n") + 1
	column := pos - strings.LastIndexByte(before, '\n')

	return &SyntaxError{
		Filename: name,
		Line:     line,
		Column:   column,
		Msg:      fmt.Sprintf(format, args...),
	}
}
