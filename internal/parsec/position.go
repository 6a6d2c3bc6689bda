// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package parsec

import (
	"errors"
	"fmt"

	"gopkg.microglot.org/parsec.go/internal/exc"
	"gopkg.microglot.org/parsec.go/internal/idl"
)

// ErrEndOfInput is returned by Position.Current when the cursor is exhausted.
var ErrEndOfInput = errors.New("end of input")

// input is shared, by reference, between every Position derived from the
// same Start call. It is never modified after construction.
type input[E any] struct {
	elems    []E
	newline  func(E) bool
	uri      string
	maxDepth int
}

// Position is an immutable cursor into a fixed input sequence. Advancing
// returns a new Position; the receiver is never modified, which lets any
// combinator rewind by keeping a copy.
type Position[E any] struct {
	in     *input[E]
	offset int
	line   int32
	column int32
	depth  int
}

// Start returns a cursor at the beginning of elems. Without a newline
// predicate every element advances the column, so the column is always the
// offset plus one.
func Start[E any](elems []E, opts ...Option) Position[E] {
	return start(elems, nil, opts)
}

// StartLines is Start with line tracking: elements for which newline returns
// true move the cursor to column 1 of the next line.
func StartLines[E any](elems []E, newline func(E) bool, opts ...Option) Position[E] {
	return start(elems, newline, opts)
}

// StartRunes returns a line-tracking cursor over code points.
func StartRunes(runes []rune, opts ...Option) Position[rune] {
	return start(runes, isNewline, opts)
}

// StartString returns a line-tracking cursor over the code points of s.
func StartString(s string, opts ...Option) Position[rune] {
	return StartRunes([]rune(s), opts...)
}

func isNewline(r rune) bool {
	return r == '\n'
}

func start[E any](elems []E, newline func(E) bool, opts []Option) Position[E] {
	cfg := newConfig(opts)
	return Position[E]{
		in: &input[E]{
			elems:    elems,
			newline:  newline,
			uri:      cfg.uri,
			maxDepth: cfg.maxDepth,
		},
		line:   1,
		column: 1,
	}
}

// AtEnd reports whether every element has been consumed.
func (p Position[E]) AtEnd() bool {
	return p.in == nil || p.offset >= len(p.in.elems)
}

// Current returns the element under the cursor or ErrEndOfInput.
func (p Position[E]) Current() (E, error) {
	if p.AtEnd() {
		var zero E
		return zero, ErrEndOfInput
	}
	return p.in.elems[p.offset], nil
}

// Next returns the cursor one element further. At the end of input the
// receiver is returned unchanged.
func (p Position[E]) Next() Position[E] {
	if p.AtEnd() {
		return p
	}
	e := p.in.elems[p.offset]
	p.offset = p.offset + 1
	if p.in.newline != nil && p.in.newline(e) {
		p.line = p.line + 1
		p.column = 1
	} else {
		p.column = p.column + 1
	}
	return p
}

// Offset is the 0-based index of the current element.
func (p Position[E]) Offset() int {
	return p.offset
}

// Line is the 1-based line of the current element.
func (p Position[E]) Line() int {
	return int(p.line)
}

// Column is the 1-based column of the current element.
func (p Position[E]) Column() int {
	return int(p.column)
}

// Remaining returns the unconsumed elements. The slice aliases the input and
// must not be modified.
func (p Position[E]) Remaining() []E {
	if p.AtEnd() {
		return nil
	}
	return p.in.elems[p.offset:]
}

// Location converts the cursor into an exception location.
func (p Position[E]) Location() exc.Location {
	loc := exc.Location{
		Location: idl.Location{
			Line:   p.line,
			Column: p.column,
			Offset: int64(p.offset),
		},
	}
	if p.in != nil {
		loc.URI = p.in.uri
	}
	return loc
}

func (p Position[E]) String() string {
	return fmt.Sprintf("at row %d, col %d", p.line, p.column)
}

// between returns the elements consumed moving from p to end.
func (p Position[E]) between(end Position[E]) []E {
	if p.in == nil {
		return nil
	}
	return p.in.elems[p.offset:end.offset]
}

// descend returns the cursor one recursion level deeper and whether the
// configured depth limit still allows it.
func (p Position[E]) descend() (Position[E], bool) {
	p.depth = p.depth + 1
	if p.in != nil && p.in.maxDepth > 0 && p.depth > p.in.maxDepth {
		return p, false
	}
	return p, true
}

func (p Position[E]) withDepth(depth int) Position[E] {
	p.depth = depth
	return p
}
