// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package parsec

// Or tries p and, only if p fails recoverably, tries q from the same cursor.
// A fatal failure from p is returned without running q. When both fail the
// failure of q is returned.
func Or[E, T any](p, q Parser[E, T]) Parser[E, T] {
	return func(pos Position[E]) Result[E, T] {
		r := p(pos)
		if r.OK() || r.Fatal() {
			return r
		}
		r = q(pos)
		if !r.OK() {
			return rewind[T](r, pos)
		}
		return r
	}
}

// OneOf is ordered choice over any number of alternatives: the first match
// wins. A fatal failure stops the search. When every alternative fails
// recoverably, or there are none, the result is a KindNoAlternative failure
// at the cursor OneOf was invoked at.
func OneOf[E, T any](ps ...Parser[E, T]) Parser[E, T] {
	return func(pos Position[E]) Result[E, T] {
		for _, p := range ps {
			r := p(pos)
			if r.OK() || r.Fatal() {
				return r
			}
		}
		return failed[E, T](newFailure(KindNoAlternative, pos, "no alternative matched "+excerpt(pos, 16)), pos)
	}
}

// Peek runs p and on success returns its value without consuming input.
func Peek[E, T any](p Parser[E, T]) Parser[E, T] {
	return func(pos Position[E]) Result[E, T] {
		r := p(pos)
		if !r.OK() {
			return rewind[T](r, pos)
		}
		return success(r.Value(), pos)
	}
}

// Expect succeeds without consuming input when p would match here.
func Expect[E, T any](p Parser[E, T]) Parser[E, struct{}] {
	return func(pos Position[E]) Result[E, struct{}] {
		r := p(pos)
		if !r.OK() {
			return rewind[struct{}](r, pos)
		}
		return success(struct{}{}, pos)
	}
}

// Not succeeds without consuming input when p would not match here. A fatal
// failure of p is still fatal.
func Not[E, T any](p Parser[E, T]) Parser[E, struct{}] {
	return func(pos Position[E]) Result[E, struct{}] {
		r := p(pos)
		if r.Fatal() {
			return rewind[struct{}](r, pos)
		}
		if r.OK() {
			return failed[E, struct{}](unexpected(pos), pos)
		}
		return success(struct{}{}, pos)
	}
}
