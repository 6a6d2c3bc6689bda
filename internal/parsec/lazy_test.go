// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package parsec

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// balanced builds expr := 'x' | '(' expr ')' and returns the number of times
// the lazy supplier has run.
func balanced() (Parser[rune, int], *int) {
	var resolved int
	var expr Parser[rune, int]
	self := Lazy(func() Parser[rune, int] {
		resolved = resolved + 1
		return expr
	})
	expr = OneOf(
		MapTo(Char('x'), 0),
		Between(Char('('), Map(self, func(depth int) int { return depth + 1 }), Char(')')),
	)
	return expr, &resolved
}

func nest(depth int) string {
	return strings.Repeat("(", depth) + "x" + strings.Repeat(")", depth)
}

func TestLazyBalanced(t *testing.T) {
	t.Parallel()

	expr, resolved := balanced()
	require.Equal(t, 0, *resolved)

	for _, depth := range []int{0, 1, 2, 10, 500} {
		v, err := Parse(expr, nest(depth), OptionWithConsumeAll())
		require.Nil(t, err)
		require.Equal(t, depth, v)
	}
	require.Equal(t, 1, *resolved)

	_, err := Parse(expr, "((x)", OptionWithConsumeAll())
	require.NotNil(t, err)
	_, err = Parse(expr, "(x))", OptionWithConsumeAll())
	require.NotNil(t, err)
	require.Equal(t, "at row 1, col 4: unexpected trailing input \")\"", err.Error())
}

func TestLazyMaxDepth(t *testing.T) {
	t.Parallel()

	expr, _ := balanced()

	_, err := Parse(expr, nest(20), OptionWithMaxDepth(10))
	require.ErrorIs(t, err, ErrMaxDepth)
	var f *Failure
	require.True(t, errors.As(err, &f))
	require.Equal(t, KindFatal, f.Kind())

	v, err := Parse(expr, nest(10), OptionWithMaxDepth(10))
	require.Nil(t, err)
	require.Equal(t, 10, v)

	v, err = Parse(expr, nest(20), OptionWithMaxDepth(0))
	require.Nil(t, err)
	require.Equal(t, 20, v)
}

func TestRef(t *testing.T) {
	t.Parallel()

	// list := '[' (list (',' list)*)? ']'
	list := NewRef[rune, int]()
	items := Opt(SepBy(list.Parser(), Char(',')), nil)
	list.Define(Between(Char('['), Map(items, func(vs []int) int {
		total := 1
		for _, v := range vs {
			total = total + v
		}
		return total
	}), Char(']')))

	v, err := Parse(list.Parser(), "[[],[[]],[]]")
	require.Nil(t, err)
	require.Equal(t, 5, v)

	r := list.Parser()(StartString("[[]"))
	require.False(t, r.OK())
	require.Equal(t, 0, r.Remainder().Offset())
}

func TestRefMisuse(t *testing.T) {
	t.Parallel()

	undefined := NewRef[rune, rune]()
	p := undefined.Parser()
	require.Panics(t, func() { _ = p(StartString("a")) })

	twice := NewRef[rune, rune]()
	twice.Define(Char('a'))
	require.Panics(t, func() { twice.Define(Char('b')) })
	require.Panics(t, func() { NewRef[rune, rune]().Define(nil) })
}

func TestLazyRestoresDepth(t *testing.T) {
	t.Parallel()

	expr, _ := balanced()
	start := StartString("(x)")
	r := expr(start)
	require.True(t, r.OK())
	require.Equal(t, start.depth, r.Remainder().depth)
}
