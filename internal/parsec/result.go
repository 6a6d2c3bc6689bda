// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package parsec

// Result is the outcome of running a parser: either a value and the cursor
// after it, or a failure and the cursor the parser was invoked at. A Result
// never holds both.
type Result[E, T any] struct {
	value     T
	remainder Position[E]
	failure   *Failure
}

func success[E, T any](v T, rem Position[E]) Result[E, T] {
	return Result[E, T]{value: v, remainder: rem}
}

func failed[E, T any](f *Failure, at Position[E]) Result[E, T] {
	return Result[E, T]{failure: f, remainder: at}
}

// rewind converts a failed result of any value type into one of type U
// positioned at the given cursor.
func rewind[U, E, T any](r Result[E, T], at Position[E]) Result[E, U] {
	return Result[E, U]{failure: r.failure, remainder: at}
}

// OK reports whether the parser matched.
func (r Result[E, T]) OK() bool {
	return r.failure == nil
}

// Value returns the parsed value; the zero value on failure.
func (r Result[E, T]) Value() T {
	return r.value
}

// Remainder is the cursor after a match, or the cursor the parser started at
// when it failed.
func (r Result[E, T]) Remainder() Position[E] {
	return r.remainder
}

// Failure returns nil on success.
func (r Result[E, T]) Failure() *Failure {
	return r.failure
}

// Fatal reports whether the result is a fatal failure.
func (r Result[E, T]) Fatal() bool {
	return r.failure != nil && r.failure.Fatal()
}
