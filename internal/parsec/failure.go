// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package parsec

import (
	"fmt"
	"strconv"

	"gopkg.microglot.org/parsec.go/internal/exc"
)

// Kind classifies a parse failure.
type Kind uint8

const (
	// KindMismatch means a primitive's condition was not met.
	KindMismatch Kind = iota + 1
	// KindEndOfInput means a primitive needed an element but none was left.
	KindEndOfInput
	// KindFatal is produced only by Fatal and is never recovered.
	KindFatal
	// KindNoAlternative is reported by OneOf when every alternative missed.
	KindNoAlternative
)

func (k Kind) String() string {
	switch k {
	case KindMismatch:
		return "mismatch"
	case KindEndOfInput:
		return "end of input"
	case KindFatal:
		return "fatal"
	case KindNoAlternative:
		return "no alternative"
	default:
		return fmt.Sprintf("unknown-%d", k)
	}
}

// Recoverable reports whether Or, OneOf, Opt and the repetition combinators
// may absorb a failure of this kind.
func (k Kind) Recoverable() bool {
	return k != KindFatal
}

// Code maps the kind onto its exception code.
func (k Kind) Code() string {
	switch k {
	case KindMismatch:
		return exc.CodeMismatch
	case KindEndOfInput:
		return exc.CodeEndOfInput
	case KindFatal:
		return exc.CodeFatal
	case KindNoAlternative:
		return exc.CodeNoAlternative
	default:
		return exc.CodeUnknownFatal
	}
}

// Failure describes why a parser did not match. It implements
// exc.Exception so failures can be reported alongside every other error the
// tooling produces.
type Failure struct {
	kind     Kind
	message  string
	location exc.Location
	cause    error
}

var _ exc.Exception = (*Failure)(nil)

func newFailure[E any](kind Kind, at Position[E], message string) *Failure {
	return &Failure{
		kind:     kind,
		message:  message,
		location: at.Location(),
	}
}

func mismatch[E any](at Position[E], format string, args ...any) *Failure {
	return newFailure(KindMismatch, at, fmt.Sprintf(format, args...))
}

func endOfInput[E any](at Position[E]) *Failure {
	return newFailure(KindEndOfInput, at, "unexpected end of input")
}

func unexpected[E any](at Position[E]) *Failure {
	e, err := at.Current()
	if err != nil {
		return endOfInput(at)
	}
	return mismatch(at, "unexpected %s", describe(e))
}

// Kind returns the failure's classification.
func (f *Failure) Kind() Kind {
	return f.kind
}

// Fatal reports whether the failure escapes every recovering combinator.
func (f *Failure) Fatal() bool {
	return f.kind == KindFatal
}

func (f *Failure) Code() string {
	return f.kind.Code()
}

func (f *Failure) Message() string {
	return f.message
}

func (f *Failure) Location() exc.Location {
	return f.location
}

// Error formats the failure as "at row R, col C: message".
func (f *Failure) Error() string {
	return fmt.Sprintf("at row %d, col %d: %s", f.location.Line, f.location.Column, f.message)
}

// Unwrap exposes the payload given to Fatal, if any.
func (f *Failure) Unwrap() error {
	return f.cause
}

// describe renders an element for diagnostics.
func describe(e any) string {
	switch v := e.(type) {
	case rune:
		return strconv.QuoteRune(v)
	case byte:
		return strconv.QuoteRune(rune(v))
	case string:
		return strconv.Quote(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// excerpt renders up to max elements of the remaining input.
func excerpt[E any](at Position[E], max int) string {
	rest := at.Remaining()
	if len(rest) == 0 {
		return "end of input"
	}
	if rs, ok := any(rest).([]rune); ok {
		if len(rs) > max {
			return strconv.Quote(string(rs[:max]) + "...")
		}
		return strconv.Quote(string(rs))
	}
	if len(rest) > max {
		rest = rest[:max]
	}
	return fmt.Sprintf("%v", rest)
}
