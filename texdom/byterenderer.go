package texdom

import (
	"fmt"
	"strconv"
)

// ByteRenderer accumulates rendered output.
type ByteRenderer struct {
	buf []byte
}

// Render appends its arguments to the output. Strings, byte slices, bytes,
// runes and ints are written directly; anything else is formatted with %v.
func (br *ByteRenderer) Render(items ...any) {
	for _, item := range items {
		switch v := item.(type) {
		case string:
			br.buf = append(br.buf, v...)
		case []byte:
			br.buf = append(br.buf, v...)
		case byte:
			br.buf = append(br.buf, v)
		case rune:
			br.buf = append(br.buf, string(v)...)
		case int:
			br.buf = strconv.AppendInt(br.buf, int64(v), 10)
		default:
			br.buf = fmt.Append(br.buf, v)
		}
	}
}

// Renderln is like Render and ends the output with a newline.
func (br *ByteRenderer) Renderln(items ...any) {
	br.Render(items...)
	br.buf = append(br.buf, '\n')
}

// Bytes returns the accumulated output. It aliases the internal buffer.
func (br *ByteRenderer) Bytes() []byte {
	return br.buf
}

func (br *ByteRenderer) String() string {
	return string(br.buf)
}

// Len is the number of bytes accumulated.
func (br *ByteRenderer) Len() int {
	return len(br.buf)
}

// lastByte returns the last byte written, or zero.
func (br *ByteRenderer) lastByte() byte {
	if len(br.buf) == 0 {
		return 0
	}
	return br.buf[len(br.buf)-1]
}
