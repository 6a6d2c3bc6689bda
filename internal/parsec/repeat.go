// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package parsec

import (
	"gopkg.microglot.org/parsec.go/internal/optional"
)

// repeat applies p up to max times (unbounded when max < 0) starting at pos.
// It returns the collected values, the cursor after the last match, and the
// failure that ended the loop, if any. When unbounded, an iteration that
// matches without advancing is kept and then ends the loop, so operands that
// can match the empty input never spin forever. A bounded loop runs every
// iteration up to max.
func repeat[E, T any](p Parser[E, T], pos Position[E], max int) ([]T, Position[E], Result[E, T]) {
	values := make([]T, 0)
	cur := pos
	var last Result[E, T]
	for max < 0 || len(values) < max {
		last = p(cur)
		if !last.OK() {
			return values, cur, last
		}
		values = append(values, last.Value())
		next := last.Remainder()
		if max < 0 && next.Offset() == cur.Offset() {
			break
		}
		cur = next
	}
	return values, cur, last
}

// Many applies p until it fails and collects the values. It always succeeds
// unless p fails fatally.
func Many[E, T any](p Parser[E, T]) Parser[E, []T] {
	return func(pos Position[E]) Result[E, []T] {
		values, cur, last := repeat(p, pos, -1)
		if last.Fatal() {
			return rewind[[]T](last, pos)
		}
		return success(values, cur)
	}
}

// Many1 is Many that requires at least one match. When there is none the
// failure of the first attempt is returned.
func Many1[E, T any](p Parser[E, T]) Parser[E, []T] {
	return func(pos Position[E]) Result[E, []T] {
		values, cur, last := repeat(p, pos, -1)
		if last.Fatal() || len(values) == 0 {
			return rewind[[]T](last, pos)
		}
		return success(values, cur)
	}
}

// Repeat applies p greedily at most max times and succeeds when it matched
// at least min times. Matches beyond max are left unconsumed. A negative max
// means no upper bound.
func Repeat[E, T any](p Parser[E, T], min, max int) Parser[E, []T] {
	return func(pos Position[E]) Result[E, []T] {
		values, cur, last := repeat(p, pos, max)
		if last.Fatal() {
			return rewind[[]T](last, pos)
		}
		if len(values) < min {
			if !last.OK() {
				return rewind[[]T](last, pos)
			}
			return failed[E, []T](mismatch(cur, "expected at least %d repetitions, found %d", min, len(values)), pos)
		}
		return success(values, cur)
	}
}

// Times applies p exactly n times.
func Times[E, T any](p Parser[E, T], n int) Parser[E, []T] {
	return Repeat(p, n, n)
}

// Opt returns def without consuming input when p fails recoverably.
func Opt[E, T any](p Parser[E, T], def T) Parser[E, T] {
	return func(pos Position[E]) Result[E, T] {
		r := p(pos)
		if r.OK() || r.Fatal() {
			return r
		}
		return success(def, pos)
	}
}

// Maybe is Opt that records whether p matched.
func Maybe[E, T any](p Parser[E, T]) Parser[E, optional.Optional[T]] {
	return Opt(Map(p, optional.Some[T]), optional.None[T]())
}

// Separated holds the items and delimiters matched by SeparatedBy.
// len(Delims) is always len(Items)-1.
type Separated[T, D any] struct {
	Items  []T
	Delims []D
}

// SeparatedBy parses item (delim item)* and keeps the delimiters. At least
// one item is required. A trailing delimiter that is not followed by an item
// is left unconsumed.
func SeparatedBy[E, T, D any](item Parser[E, T], delim Parser[E, D]) Parser[E, Separated[T, D]] {
	return func(pos Position[E]) Result[E, Separated[T, D]] {
		first := item(pos)
		if !first.OK() {
			return rewind[Separated[T, D]](first, pos)
		}
		out := Separated[T, D]{Items: []T{first.Value()}, Delims: []D{}}
		cur := first.Remainder()
		for {
			rd := delim(cur)
			if rd.Fatal() {
				return rewind[Separated[T, D]](rd, pos)
			}
			if !rd.OK() {
				break
			}
			ri := item(rd.Remainder())
			if ri.Fatal() {
				return rewind[Separated[T, D]](ri, pos)
			}
			if !ri.OK() {
				break
			}
			out.Delims = append(out.Delims, rd.Value())
			out.Items = append(out.Items, ri.Value())
			if ri.Remainder().Offset() == cur.Offset() {
				cur = ri.Remainder()
				break
			}
			cur = ri.Remainder()
		}
		return success(out, cur)
	}
}

// SepBy parses item (delim item)* and discards the delimiters. At least one
// item is required; wrap in Opt for possibly empty lists.
func SepBy[E, T, D any](item Parser[E, T], delim Parser[E, D]) Parser[E, []T] {
	return Map(SeparatedBy(item, delim), func(s Separated[T, D]) []T { return s.Items })
}

// ChainLeft parses operand (op operand)* and folds the values from the left,
// so "1-2-3" evaluates as (1-2)-3.
func ChainLeft[E, T any](operand Parser[E, T], op Parser[E, func(T, T) T]) Parser[E, T] {
	return Map(SeparatedBy(operand, op), func(s Separated[T, func(T, T) T]) T {
		acc := s.Items[0]
		for x, f := range s.Delims {
			acc = f(acc, s.Items[x+1])
		}
		return acc
	})
}

// ChainRight parses operand (op operand)* and folds the values from the
// right, so "2^3^2" evaluates as 2^(3^2).
func ChainRight[E, T any](operand Parser[E, T], op Parser[E, func(T, T) T]) Parser[E, T] {
	return Map(SeparatedBy(operand, op), func(s Separated[T, func(T, T) T]) T {
		acc := s.Items[len(s.Items)-1]
		for x := len(s.Delims) - 1; x >= 0; x = x - 1 {
			acc = s.Delims[x](s.Items[x], acc)
		}
		return acc
	})
}
