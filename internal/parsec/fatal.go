// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package parsec

import (
	"fmt"

	"gopkg.microglot.org/parsec.go/internal/exc"
)

// ErrorBuilder produces the payload of a fatal failure from the location
// where the underlying parser failed.
type ErrorBuilder func(at exc.Location) error

// Fatal commits to p: a recoverable failure of p becomes a fatal failure
// carrying the error built by build. Fatal failures are not absorbed by Or,
// OneOf, Opt, Not or any repetition, so they reach the top-level caller with
// the precise message instead of a generic "no alternative matched".
func Fatal[E, T any](p Parser[E, T], build ErrorBuilder) Parser[E, T] {
	return func(pos Position[E]) Result[E, T] {
		r := p(pos)
		if r.OK() || r.Fatal() {
			return r
		}
		loc := r.Failure().Location()
		f := &Failure{kind: KindFatal, location: loc}
		if cause := build(loc); cause != nil {
			f.message = cause.Error()
			f.cause = cause
		} else {
			f.message = r.Failure().Message()
			f.cause = r.Failure()
		}
		return failed[E, T](f, pos)
	}
}

// Must is Fatal with the message "expected <what>".
func Must[E, T any](p Parser[E, T], what string) Parser[E, T] {
	return Fatal(p, func(exc.Location) error {
		return fmt.Errorf("expected %s", what)
	})
}
