// Copyright 2023 Jesus Ruiz. All rights reserved.
// Use of this source code is governed by an Apache-2.0
// license that can be found in the LICENSE file.

// Package sliceedit queues literal substring edits over a byte slice using
// rsc.io/edit, so that many replacements cost a single final allocation.
// All positions refer to the original data: an edit never sees the result of
// a previous one.
package sliceedit

import (
	"bytes"

	"rsc.io/edit"
)

// A Buffer is a queue of edits to apply to a given byte slice.
type Buffer struct {
	ed  *edit.Buffer
	buf []byte

	// claimed records the byte ranges already covered by a queued edit
	claimed []span
}

type span struct {
	start, end int
}

// NewBuffer returns a new buffer to accumulate changes to an initial data slice.
// The caller must not modify the data until the Buffer is done being used.
func NewBuffer(buf []byte) *Buffer {
	return &Buffer{
		ed:  edit.NewBuffer(buf),
		buf: buf,
	}
}

// NewBufferString is like NewBuffer for string data.
func NewBufferString(s string) *Buffer {
	return NewBuffer([]byte(s))
}

// FindAll finds all non-overlapping instances of item in buf.
func FindAll(buf []byte, item string) []int {
	found := []int{}

	if len(item) == 0 {
		return found
	}

	offset := 0
	for {
		i := bytes.Index(buf[offset:], []byte(item))
		if i == -1 {
			return found
		}
		found = append(found, offset+i)
		offset += i + len(item)
	}
}

func (b *Buffer) free(start, end int) bool {
	for _, s := range b.claimed {
		if start < s.end && s.start < end {
			return false
		}
	}
	return true
}

func (b *Buffer) queue(start, end int, s string) {
	b.ed.Replace(start, end, s)
	b.claimed = append(b.claimed, span{start, end})
}

// ReplaceFirstString replaces the first instance of old not already covered
// by another edit. It reports whether an instance was found.
func (b *Buffer) ReplaceFirstString(old string, new string) bool {
	for _, hit := range FindAll(b.buf, old) {
		if b.free(hit, hit+len(old)) {
			b.queue(hit, hit+len(old), new)
			return true
		}
	}
	return false
}

// Bytes returns a new byte slice containing the original data
// with the queued edits applied.
func (b *Buffer) Bytes() []byte {
	return b.ed.Bytes()
}

// String returns a string containing the original data
// with the queued edits applied.
func (b *Buffer) String() string {
	return string(b.Bytes())
}
