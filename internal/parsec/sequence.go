// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package parsec

// Pair holds the values of two sequenced parsers.
type Pair[A, B any] struct {
	First  A
	Second B
}

// And runs a then b and pairs their values. If either fails the failure is
// returned positioned at the cursor And was invoked at.
func And[E, A, B any](a Parser[E, A], b Parser[E, B]) Parser[E, Pair[A, B]] {
	return Seq2(a, b, func(x A, y B) Pair[A, B] {
		return Pair[A, B]{First: x, Second: y}
	})
}

// Seq2 runs a then b and combines their values with f.
func Seq2[E, A, B, R any](a Parser[E, A], b Parser[E, B], f func(A, B) R) Parser[E, R] {
	return func(pos Position[E]) Result[E, R] {
		ra := a(pos)
		if !ra.OK() {
			return rewind[R](ra, pos)
		}
		rb := b(ra.Remainder())
		if !rb.OK() {
			return rewind[R](rb, pos)
		}
		return success(f(ra.Value(), rb.Value()), rb.Remainder())
	}
}

// Seq3 runs three parsers in order and combines their values with f.
func Seq3[E, A, B, C, R any](a Parser[E, A], b Parser[E, B], c Parser[E, C], f func(A, B, C) R) Parser[E, R] {
	return func(pos Position[E]) Result[E, R] {
		ra := a(pos)
		if !ra.OK() {
			return rewind[R](ra, pos)
		}
		rb := b(ra.Remainder())
		if !rb.OK() {
			return rewind[R](rb, pos)
		}
		rc := c(rb.Remainder())
		if !rc.OK() {
			return rewind[R](rc, pos)
		}
		return success(f(ra.Value(), rb.Value(), rc.Value()), rc.Remainder())
	}
}

// Seq4 runs four parsers in order and combines their values with f.
func Seq4[E, A, B, C, D, R any](a Parser[E, A], b Parser[E, B], c Parser[E, C], d Parser[E, D], f func(A, B, C, D) R) Parser[E, R] {
	return func(pos Position[E]) Result[E, R] {
		ra := a(pos)
		if !ra.OK() {
			return rewind[R](ra, pos)
		}
		rb := b(ra.Remainder())
		if !rb.OK() {
			return rewind[R](rb, pos)
		}
		rc := c(rb.Remainder())
		if !rc.OK() {
			return rewind[R](rc, pos)
		}
		rd := d(rc.Remainder())
		if !rd.OK() {
			return rewind[R](rd, pos)
		}
		return success(f(ra.Value(), rb.Value(), rc.Value(), rd.Value()), rd.Remainder())
	}
}

// Seq5 runs five parsers in order and combines their values with f.
func Seq5[E, A, B, C, D, F, R any](a Parser[E, A], b Parser[E, B], c Parser[E, C], d Parser[E, D], e Parser[E, F], f func(A, B, C, D, F) R) Parser[E, R] {
	return func(pos Position[E]) Result[E, R] {
		ra := a(pos)
		if !ra.OK() {
			return rewind[R](ra, pos)
		}
		rb := b(ra.Remainder())
		if !rb.OK() {
			return rewind[R](rb, pos)
		}
		rc := c(rb.Remainder())
		if !rc.OK() {
			return rewind[R](rc, pos)
		}
		rd := d(rc.Remainder())
		if !rd.OK() {
			return rewind[R](rd, pos)
		}
		re := e(rd.Remainder())
		if !re.OK() {
			return rewind[R](re, pos)
		}
		return success(f(ra.Value(), rb.Value(), rc.Value(), rd.Value(), re.Value()), re.Remainder())
	}
}

// SeqOf runs parsers of a single value type in order and collects their
// values.
func SeqOf[E, T any](ps ...Parser[E, T]) Parser[E, []T] {
	return func(pos Position[E]) Result[E, []T] {
		values := make([]T, 0, len(ps))
		cur := pos
		for _, p := range ps {
			r := p(cur)
			if !r.OK() {
				return rewind[[]T](r, pos)
			}
			values = append(values, r.Value())
			cur = r.Remainder()
		}
		return success(values, cur)
	}
}

// KeepLeft runs a then b and keeps a's value.
func KeepLeft[E, A, B any](a Parser[E, A], b Parser[E, B]) Parser[E, A] {
	return Seq2(a, b, func(x A, _ B) A { return x })
}

// KeepRight runs a then b and keeps b's value.
func KeepRight[E, A, B any](a Parser[E, A], b Parser[E, B]) Parser[E, B] {
	return Seq2(a, b, func(_ A, y B) B { return y })
}

// Between runs open, p and closing in order and keeps p's value.
func Between[E, O, T, C any](open Parser[E, O], p Parser[E, T], closing Parser[E, C]) Parser[E, T] {
	return Seq3(open, p, closing, func(_ O, v T, _ C) T { return v })
}

// SurroundBy is Between with the same delimiter on both sides.
func SurroundBy[E, T, S any](p Parser[E, T], s Parser[E, S]) Parser[E, T] {
	return Between(s, p, s)
}

// Trim skips white space on both sides of p.
func Trim[T any](p Parser[rune, T]) Parser[rune, T] {
	return SurroundBy(p, Spaces())
}

// Lexeme skips white space after p.
func Lexeme[T any](p Parser[rune, T]) Parser[rune, T] {
	return KeepLeft(p, Spaces())
}
