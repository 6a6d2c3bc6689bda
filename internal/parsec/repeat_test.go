// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package parsec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/parsec.go/internal/optional"
)

func TestMany(t *testing.T) {
	t.Parallel()

	p := Many(Char('a'))

	r := p(StartString(""))
	require.True(t, r.OK())
	require.NotNil(t, r.Value())
	require.Empty(t, r.Value())
	require.Equal(t, 0, r.Remainder().Offset())

	r = p(StartString("aaa"))
	require.True(t, r.OK())
	require.Equal(t, []rune{'a', 'a', 'a'}, r.Value())
	require.True(t, r.Remainder().AtEnd())

	r = p(StartString("aab"))
	require.True(t, r.OK())
	require.Len(t, r.Value(), 2)
	require.Equal(t, "b", rest(r))
}

func TestManyZeroWidth(t *testing.T) {
	t.Parallel()

	// The operand matches the empty input: the loop keeps one such match and
	// stops.
	r := Many(Opt(Char('x'), 'z'))(StartString("abc"))
	require.True(t, r.OK())
	require.Equal(t, []rune{'z'}, r.Value())
	require.Equal(t, 0, r.Remainder().Offset())

	r = Many(Opt(Char('x'), 'z'))(StartString("xxa"))
	require.True(t, r.OK())
	require.Equal(t, []rune{'x', 'x', 'z'}, r.Value())
	require.Equal(t, "a", rest(r))

	nested := Many(Many(Char('a')))(StartString("aaab"))
	require.True(t, nested.OK())
	require.Equal(t, [][]rune{{'a', 'a', 'a'}, {}}, nested.Value())
	require.Equal(t, "b", rest(nested))

	e := Many(Empty[rune]())(StartString(""))
	require.True(t, e.OK())
	require.Len(t, e.Value(), 1)
}

func TestMany1(t *testing.T) {
	t.Parallel()

	p := Many1(Digit())
	r := p(StartString("42x"))
	require.True(t, r.OK())
	require.Equal(t, []rune{'4', '2'}, r.Value())

	r = p(StartString("x"))
	require.False(t, r.OK())
	require.Equal(t, KindMismatch, r.Failure().Kind())

	r = p(StartString(""))
	require.False(t, r.OK())
	require.Equal(t, KindEndOfInput, r.Failure().Kind())
}

func TestRepeat(t *testing.T) {
	t.Parallel()

	p := Repeat(Char('a'), 3, 5)

	r := p(StartString("aaaaaa"))
	require.True(t, r.OK())
	require.Len(t, r.Value(), 5)
	require.Equal(t, "a", rest(r))

	r = p(StartString("aaa"))
	require.True(t, r.OK())
	require.Len(t, r.Value(), 3)

	start := StartString("aa")
	r = p(start)
	require.False(t, r.OK())
	require.Equal(t, start, r.Remainder())

	// Bounded loops count zero-width matches up to max.
	z := Repeat(Empty[rune](), 2, 4)(StartString("x"))
	require.True(t, z.OK())
	require.Len(t, z.Value(), 4)
	require.Equal(t, 0, z.Remainder().Offset())

	dashes := Times(Opt(Char('a'), '-'), 3)(StartString(""))
	require.True(t, dashes.OK())
	require.Equal(t, []rune{'-', '-', '-'}, dashes.Value())

	mixed := Times(Opt(Char('a'), '-'), 3)(StartString("ab"))
	require.True(t, mixed.OK())
	require.Equal(t, []rune{'a', '-', '-'}, mixed.Value())
	require.Equal(t, 1, mixed.Remainder().Offset())

	unbounded := Repeat(Empty[rune](), 2, -1)(StartString("x"))
	require.False(t, unbounded.OK())
	require.Equal(t, "expected at least 2 repetitions, found 1", unbounded.Failure().Message())

	u := Repeat(Char('b'), 0, -1)(StartString("bbbb"))
	require.True(t, u.OK())
	require.Len(t, u.Value(), 4)

	n := Times(Digit(), 2)(StartString("123"))
	require.True(t, n.OK())
	require.Equal(t, []rune{'1', '2'}, n.Value())
	require.Equal(t, "3", rest(n))
}

func TestOptAndMaybe(t *testing.T) {
	t.Parallel()

	r := Opt(Char('-'), '+')(StartString("5"))
	require.True(t, r.OK())
	require.Equal(t, '+', r.Value())
	require.Equal(t, 0, r.Remainder().Offset())

	r = Char('-').Opt('+')(StartString("-5"))
	require.True(t, r.OK())
	require.Equal(t, '-', r.Value())

	m := Maybe(Char('-'))(StartString("5"))
	require.True(t, m.OK())
	require.Equal(t, optional.None[rune](), m.Value())

	m = Maybe(Char('-'))(StartString("-5"))
	require.True(t, m.OK())
	require.Equal(t, optional.Some('-'), m.Value())
}

func TestSepBy(t *testing.T) {
	t.Parallel()

	p := SepBy(Letter(), Char(','))

	r := p(StartString("a,b,c"))
	require.True(t, r.OK())
	require.Equal(t, []rune{'a', 'b', 'c'}, r.Value())

	// A delimiter without an item stays in the remainder.
	r = p(StartString("a,b,"))
	require.True(t, r.OK())
	require.Equal(t, []rune{'a', 'b'}, r.Value())
	require.Equal(t, ",", rest(r))

	// Zero items is not a list.
	r = p(StartString(""))
	require.False(t, r.OK())

	s := SeparatedBy(Letter(), CharIn(",;"))(StartString("a;b,c"))
	require.True(t, s.OK())
	require.Equal(t, []rune{'a', 'b', 'c'}, s.Value().Items)
	require.Equal(t, []rune{';', ','}, s.Value().Delims)

	o := Opt(p, []rune{})(StartString(")"))
	require.True(t, o.OK())
	require.Empty(t, o.Value())
}

func TestChain(t *testing.T) {
	t.Parallel()

	num := Map(Digit(), func(r rune) int { return int(r - '0') })
	sub := MapTo(Char('-'), func(a, b int) int { return a - b })
	pow := MapTo(Char('^'), func(a, b int) int {
		out := 1
		for x := 0; x < b; x = x + 1 {
			out = out * a
		}
		return out
	})

	r := ChainLeft(num, sub)(StartString("9-3-2"))
	require.True(t, r.OK())
	require.Equal(t, 4, r.Value())

	r = ChainRight(num, pow)(StartString("2^3^2"))
	require.True(t, r.OK())
	require.Equal(t, 512, r.Value())

	r = ChainLeft(num, sub)(StartString("7"))
	require.True(t, r.OK())
	require.Equal(t, 7, r.Value())
}

func TestRepetitionPropagatesFatal(t *testing.T) {
	t.Parallel()

	item := Seq2(Char('('), Must(Char(')'), "')'"), func(a, b rune) string { return string([]rune{a, b}) })

	r := Many(item)(StartString("()()(x"))
	require.False(t, r.OK())
	require.True(t, r.Fatal())
	require.Equal(t, "at row 1, col 6: expected ')'", r.Failure().Error())
	require.Equal(t, 0, r.Remainder().Offset())

	r = Repeat(item, 0, 10)(StartString("(x"))
	require.True(t, r.Fatal())

	r = SepBy(item, Char(','))(StartString("(),(x"))
	require.True(t, r.Fatal())

	o := Opt(item, "")(StartString("(x"))
	require.True(t, o.Fatal())
}
