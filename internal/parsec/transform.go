// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package parsec

import (
	"gopkg.microglot.org/parsec.go/internal/idl"
)

// Map transforms the value of a successful match. f is never called on
// failure.
func Map[E, T, U any](p Parser[E, T], f func(T) U) Parser[E, U] {
	return func(pos Position[E]) Result[E, U] {
		r := p(pos)
		if !r.OK() {
			return rewind[U](r, pos)
		}
		return success(f(r.Value()), r.Remainder())
	}
}

// MapTo replaces the value of a successful match with v.
func MapTo[E, T, U any](p Parser[E, T], v U) Parser[E, U] {
	return Map(p, func(T) U { return v })
}

// Discard drops the value of a successful match.
func Discard[E, T any](p Parser[E, T]) Parser[E, struct{}] {
	return MapTo(p, struct{}{})
}

// TryMap is Map with a conversion that may fail. A conversion error becomes
// an ordinary mismatch at the start of the match, so enclosing choices may
// still try other alternatives.
func TryMap[E, T, U any](p Parser[E, T], f func(T) (U, error)) Parser[E, U] {
	return func(pos Position[E]) Result[E, U] {
		r := p(pos)
		if !r.OK() {
			return rewind[U](r, pos)
		}
		v, err := f(r.Value())
		if err != nil {
			fail := mismatch(pos, "%s", err.Error())
			fail.cause = err
			return failed[E, U](fail, pos)
		}
		return success(v, r.Remainder())
	}
}

// FlatMap runs p and then the parser f builds from p's value, against the
// remaining input. It expresses context-sensitive rules such as a closing
// tag that must repeat the opening tag's name.
func FlatMap[E, T, U any](p Parser[E, T], f func(T) Parser[E, U]) Parser[E, U] {
	return func(pos Position[E]) Result[E, U] {
		r := p(pos)
		if !r.OK() {
			return rewind[U](r, pos)
		}
		next := f(r.Value())(r.Remainder())
		if !next.OK() {
			return rewind[U](next, pos)
		}
		return next
	}
}

// Consumed runs p and yields the elements it consumed instead of its value.
// The slice aliases the input.
func Consumed[E, T any](p Parser[E, T]) Parser[E, []E] {
	return func(pos Position[E]) Result[E, []E] {
		r := p(pos)
		if !r.OK() {
			return rewind[[]E](r, pos)
		}
		return success(pos.between(r.Remainder()), r.Remainder())
	}
}

// Recognize runs p and yields the text it consumed.
func Recognize[T any](p Parser[rune, T]) Parser[rune, string] {
	return Map(Consumed(p), func(rs []rune) string { return string(rs) })
}

// Span is a value together with where it was found.
type Span[T any] struct {
	Value T
	Start idl.Location
	End   idl.Location
}

// Located records the input span a match covered.
func Located[E, T any](p Parser[E, T]) Parser[E, Span[T]] {
	return func(pos Position[E]) Result[E, Span[T]] {
		r := p(pos)
		if !r.OK() {
			return rewind[Span[T]](r, pos)
		}
		return success(Span[T]{
			Value: r.Value(),
			Start: pos.Location().Location,
			End:   r.Remainder().Location().Location,
		}, r.Remainder())
	}
}

// Label replaces the message of a recoverable failure of p with
// "expected <name>" reported at the cursor p started at. Fatal failures are
// left untouched.
func Label[E, T any](p Parser[E, T], name string) Parser[E, T] {
	return func(pos Position[E]) Result[E, T] {
		r := p(pos)
		if r.OK() || r.Fatal() {
			return r
		}
		kind := r.Failure().Kind()
		if kind == KindNoAlternative {
			kind = KindMismatch
		}
		return failed[E, T](newFailure(kind, pos, "expected "+name), pos)
	}
}
