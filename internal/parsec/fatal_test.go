// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package parsec

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/parsec.go/internal/exc"
)

type unexpectedCharError struct {
	want rune
	at   exc.Location
}

func (e *unexpectedCharError) Error() string {
	return fmt.Sprintf("expected %q at offset %d", e.want, e.at.Offset)
}

func expecting(want rune) ErrorBuilder {
	return func(at exc.Location) error {
		return &unexpectedCharError{want: want, at: at}
	}
}

func commitGrammar() Parser[rune, string] {
	str := func(rs ...rune) string { return string(rs) }
	return OneOf(
		Seq2(Char('a'), Char('b').Fatal(expecting('b')), func(a, b rune) string { return str(a, b) }),
		Seq3(Char('b'), Char('y').Fatal(expecting('y')), Char('c').Fatal(expecting('c')), func(a, b, c rune) string { return str(a, b, c) }),
		Seq2(Char('c'), Char('m').Fatal(expecting('m')), func(a, b rune) string { return str(a, b) }),
	)
}

func TestFatalEscapesChoice(t *testing.T) {
	t.Parallel()

	p := commitGrammar()

	v, err := Parse(p, "ab")
	require.Nil(t, err)
	require.Equal(t, "ab", v)

	_, err = Parse(p, "ax")
	require.NotNil(t, err)
	var payload *unexpectedCharError
	require.True(t, errors.As(err, &payload))
	require.Equal(t, 'b', payload.want)
	require.Equal(t, int64(1), payload.at.Offset)
	var f *Failure
	require.True(t, errors.As(err, &f))
	require.Equal(t, KindFatal, f.Kind())
	require.Equal(t, exc.CodeFatal, f.Code())
	require.Equal(t, `at row 1, col 2: expected 'b' at offset 1`, err.Error())

	_, err = Parse(p, "byx")
	require.True(t, errors.As(err, &payload))
	require.Equal(t, 'c', payload.want)

	_, err = Parse(p, "dfagdf")
	require.NotNil(t, err)
	require.False(t, errors.As(err, &payload))
	require.True(t, errors.As(err, &f))
	require.Equal(t, KindNoAlternative, f.Kind())
	require.Equal(t, int64(0), f.Location().Offset)
	require.Equal(t, int32(1), f.Location().Line)
	require.Equal(t, int32(1), f.Location().Column)
}

func TestFatalSkipsEveryRecovery(t *testing.T) {
	t.Parallel()

	committed := KeepRight(Char('#'), Must(Digit(), "digit"))
	var calls int
	fallback := counting(MapTo(Any[rune](), '?'), &calls)

	r := Or(committed, fallback)(StartString("#x"))
	require.True(t, r.Fatal())
	require.Equal(t, 0, calls)

	m := Many(Or(committed, fallback))(StartString("#1ab#x"))
	require.True(t, m.Fatal())
	require.Equal(t, 2, calls)

	n := Not(committed)(StartString("#x"))
	require.True(t, n.Fatal())

	pk := Peek(committed)(StartString("#x"))
	require.True(t, pk.Fatal())

	// An already fatal failure keeps its original payload.
	outer := Fatal(committed, func(exc.Location) error { return errors.New("outer") })
	r = outer(StartString("#x"))
	require.Equal(t, "expected digit", r.Failure().Message())

	// A nil payload falls back to the underlying failure.
	quiet := Fatal(Char('a'), func(exc.Location) error { return nil })
	r = quiet(StartString("b"))
	require.True(t, r.Fatal())
	require.Equal(t, "expected 'a', found 'b'", r.Failure().Message())
}
