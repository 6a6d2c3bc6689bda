// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package parsec

import (
	"errors"
	"sync"
)

// ErrMaxDepth is the cause of the fatal failure produced when recursion
// through Lazy or Ref exceeds the configured depth.
var ErrMaxDepth = errors.New("maximum grammar recursion depth exceeded")

// Lazy defers building a parser until it is first invoked. Use it to refer
// to a rule that is not defined yet, including the rule being defined:
//
//	var expr Parser[rune, int]
//	expr = OneOf(number, Between(Char('('), Lazy(func() Parser[rune, int] { return expr }), Char(')')))
//
// The supplier runs exactly once, on the first invocation; later invocations
// reuse its result.
func Lazy[E, T any](supplier func() Parser[E, T]) Parser[E, T] {
	resolve := sync.OnceValue(supplier)
	return func(pos Position[E]) Result[E, T] {
		return descend(resolve(), pos)
	}
}

// Ref is a two-phase rule: declare it, hand out Parser() wherever the rule is
// referenced, then Define it once the whole grammar exists.
type Ref[E, T any] struct {
	target  Parser[E, T]
	defined bool
}

// NewRef declares a rule with no definition.
func NewRef[E, T any]() *Ref[E, T] {
	return &Ref[E, T]{}
}

// Define binds the rule. It panics if the rule is already defined or p is
// nil. Define must happen before the grammar is used.
func (r *Ref[E, T]) Define(p Parser[E, T]) {
	if p == nil {
		panic("parsec: Ref defined with a nil parser")
	}
	if r.defined {
		panic("parsec: Ref defined twice")
	}
	r.target = p
	r.defined = true
}

// Parser returns a parser that delegates to the definition. Invoking it
// before Define panics: that is a bug in the grammar, not a parse failure.
func (r *Ref[E, T]) Parser() Parser[E, T] {
	return func(pos Position[E]) Result[E, T] {
		if !r.defined {
			panic("parsec: Ref invoked before Define")
		}
		return descend(r.target, pos)
	}
}

// descend runs p one recursion level deeper and restores the caller's depth
// on the returned cursor.
func descend[E, T any](p Parser[E, T], pos Position[E]) Result[E, T] {
	inner, ok := pos.descend()
	if !ok {
		f := newFailure(KindFatal, pos, ErrMaxDepth.Error())
		f.cause = ErrMaxDepth
		return failed[E, T](f, pos)
	}
	r := p(inner)
	r.remainder = r.remainder.withDepth(pos.depth)
	return r
}
