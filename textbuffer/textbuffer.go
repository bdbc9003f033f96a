// Package textbuffer implements the mutable, bounds-checked text buffer
// of spec.md §4.10: a single growable sequence that Add appends to and
// Replace mutates by half-open range.
//
// Grounded on original_source's editing::textbuffer (TextBuffer::new/
// add/replace/read/consume), generalized from Rust's byte-indexed
// String slicing to code-point indexing throughout, per spec.md
// §4.10's "indices are treated as character (code-point) indices
// wherever the regex is fed from the input; the buffer itself indexes
// the same units."
package textbuffer

import (
	coreerrors "github.com/coregx/sed/errors"
)

// Buffer is a mutable, code-point-indexed text buffer.
type Buffer struct {
	runes []rune
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// NewFromString returns a Buffer seeded with the code points of s.
func NewFromString(s string) *Buffer {
	return &Buffer{runes: []rune(s)}
}

// Add appends s's code points to the buffer.
func (b *Buffer) Add(s string) {
	b.runes = append(b.runes, []rune(s)...)
}

// Get returns the code points of [start, start+length) as a string, or
// a BufferBoundsError if that range exceeds the buffer's current length.
func (b *Buffer) Get(start, length int) (string, error) {
	if start < 0 || length < 0 || start+length > len(b.runes) {
		return "", &coreerrors.BufferBoundsError{Start: start, Length: length, BufferLen: len(b.runes)}
	}
	return string(b.runes[start : start+length]), nil
}

// Replace overwrites the half-open range [start, start+length) with
// replacement's code points, or returns a BufferBoundsError if that
// range exceeds the buffer's current length.
func (b *Buffer) Replace(start, length int, replacement string) error {
	if start < 0 || length < 0 || start+length > len(b.runes) {
		return &coreerrors.BufferBoundsError{Start: start, Length: length, BufferLen: len(b.runes)}
	}
	repl := []rune(replacement)
	out := make([]rune, 0, len(b.runes)-length+len(repl))
	out = append(out, b.runes[:start]...)
	out = append(out, repl...)
	out = append(out, b.runes[start+length:]...)
	b.runes = out
	return nil
}

// Len returns the buffer's current length in code points.
func (b *Buffer) Len() int {
	return len(b.runes)
}

// Read returns the buffer's current contents without consuming it.
func (b *Buffer) Read() string {
	return string(b.runes)
}

// Consume returns the buffer's contents, leaving it empty.
func (b *Buffer) Consume() string {
	s := string(b.runes)
	b.runes = nil
	return s
}
