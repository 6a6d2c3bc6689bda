// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package parsec

import (
	"strconv"
	"strings"
	"unicode"
)

// Satisfy consumes one element for which pred holds.
func Satisfy[E any](pred func(E) bool) Parser[E, E] {
	return func(pos Position[E]) Result[E, E] {
		e, err := pos.Current()
		if err != nil {
			return failed[E, E](endOfInput(pos), pos)
		}
		if !pred(e) {
			return failed[E, E](unexpected(pos), pos)
		}
		return success(e, pos.Next())
	}
}

// Any consumes any one element.
func Any[E any]() Parser[E, E] {
	return Satisfy(func(E) bool { return true })
}

// Elem consumes exactly the element want.
func Elem[E comparable](want E) Parser[E, E] {
	return func(pos Position[E]) Result[E, E] {
		e, err := pos.Current()
		if err != nil {
			return failed[E, E](endOfInput(pos), pos)
		}
		if e != want {
			return failed[E, E](mismatch(pos, "expected %s, found %s", describe(want), describe(e)), pos)
		}
		return success(e, pos.Next())
	}
}

// Elems consumes the exact element sequence want. On mismatch nothing is
// consumed and the failure is reported at the start of the sequence.
func Elems[E comparable](want ...E) Parser[E, []E] {
	return func(pos Position[E]) Result[E, []E] {
		cur := pos
		for _, w := range want {
			e, err := cur.Current()
			if err != nil || e != w {
				return failed[E, []E](mismatch(pos, "expected %v", want), pos)
			}
			cur = cur.Next()
		}
		return success(pos.between(cur), cur)
	}
}

// Char consumes the code point r.
func Char(r rune) Parser[rune, rune] {
	return Elem(r)
}

// CharIn consumes one code point contained in set.
func CharIn(set string) Parser[rune, rune] {
	return Satisfy(func(r rune) bool { return strings.ContainsRune(set, r) })
}

// CharNotIn consumes one code point not contained in set.
func CharNotIn(set string) Parser[rune, rune] {
	return Satisfy(func(r rune) bool { return !strings.ContainsRune(set, r) })
}

// CharRange consumes one code point in [lo, hi].
func CharRange(lo, hi rune) Parser[rune, rune] {
	return Satisfy(func(r rune) bool { return r >= lo && r <= hi })
}

// Digit consumes one decimal digit.
func Digit() Parser[rune, rune] {
	return CharRange('0', '9')
}

// Letter consumes one Unicode letter.
func Letter() Parser[rune, rune] {
	return Satisfy(unicode.IsLetter)
}

// Space consumes one Unicode white space code point.
func Space() Parser[rune, rune] {
	return Satisfy(unicode.IsSpace)
}

// Spaces skips zero or more white space code points. It always succeeds.
func Spaces() Parser[rune, struct{}] {
	return func(pos Position[rune]) Result[rune, struct{}] {
		cur := pos
		for {
			r, err := cur.Current()
			if err != nil || !unicode.IsSpace(r) {
				return success(struct{}{}, cur)
			}
			cur = cur.Next()
		}
	}
}

// Literal consumes text. When caseSensitive is false code points are
// compared with simple Unicode case folding. The value is the matched input,
// which may differ in case from text. A mismatch anywhere fails at the start
// of the literal without consuming anything.
func Literal(text string, caseSensitive bool) Parser[rune, string] {
	want := []rune(text)
	quoted := strconv.Quote(text)
	return func(pos Position[rune]) Result[rune, string] {
		cur := pos
		for _, w := range want {
			r, err := cur.Current()
			if err != nil {
				return failed[rune, string](mismatch(pos, "expected %s, found end of input", quoted), pos)
			}
			if r != w && (caseSensitive || !equalFold(r, w)) {
				return failed[rune, string](mismatch(pos, "expected %s", quoted), pos)
			}
			cur = cur.Next()
		}
		return success(string(pos.between(cur)), cur)
	}
}

func equalFold(a, b rune) bool {
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}

// End matches only at the end of input.
func End[E any]() Parser[E, struct{}] {
	return func(pos Position[E]) Result[E, struct{}] {
		if !pos.AtEnd() {
			return failed[E, struct{}](mismatch(pos, "expected end of input, found %s", excerpt(pos, 16)), pos)
		}
		return success(struct{}{}, pos)
	}
}

// Value always succeeds with v and consumes nothing.
func Value[E, T any](v T) Parser[E, T] {
	return func(pos Position[E]) Result[E, T] {
		return success(v, pos)
	}
}

// Empty always succeeds and consumes nothing.
func Empty[E any]() Parser[E, struct{}] {
	return Value[E](struct{}{})
}

// Fail always fails with an ordinary mismatch carrying message.
func Fail[E, T any](message string) Parser[E, T] {
	return func(pos Position[E]) Result[E, T] {
		return failed[E, T](mismatch(pos, "%s", message), pos)
	}
}
