// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package arith parses and evaluates arithmetic expressions over float64.
//
// Precedence, lowest first: + and - (left), * / % (left), unary minus,
// ^ (right). So -2^2 is -(2^2), 2^3^2 is 2^(3^2) and 2^-1 is 2^(-1).
package arith

import (
	"strconv"

	"gopkg.microglot.org/parsec.go/internal/parsec"
)

var grammar = build()

func symbol(r rune) parsec.Parser[rune, rune] {
	return parsec.Lexeme(parsec.Char(r))
}

// operator matches r and commits to an operand following it. The lookahead
// only inspects one code point so it adds no backtracking.
func operator(r rune) parsec.Parser[rune, func(Node, Node) Node] {
	operand := parsec.Must(parsec.Expect(parsec.CharIn("0123456789(-")), "operand")
	return parsec.MapTo(parsec.KeepLeft(symbol(r), operand), func(left, right Node) Node {
		return &Binary{Op: r, Left: left, Right: right}
	})
}

func number() parsec.Parser[rune, Node] {
	digits := parsec.Discard(parsec.Many1(parsec.Digit()))
	fraction := parsec.Opt(parsec.KeepRight(parsec.Char('.'), digits), struct{}{})
	exponent := parsec.Opt(parsec.SeqOf(
		parsec.Discard(parsec.CharIn("eE")),
		parsec.Opt(parsec.Discard(parsec.CharIn("+-")), struct{}{}),
		digits,
	), nil)
	text := parsec.Recognize(parsec.SeqOf(digits, fraction, parsec.Discard(exponent)))
	return parsec.Lexeme(parsec.TryMap(text, func(s string) (Node, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		return Number(v), nil
	})).Label("number")
}

func build() parsec.Parser[rune, Node] {
	var expr parsec.Parser[rune, Node]
	nested := parsec.Lazy(func() parsec.Parser[rune, Node] { return expr })

	primary := parsec.OneOf(
		number(),
		parsec.Between(symbol('('), nested, parsec.Must(symbol(')'), "')'")),
	)

	unary := parsec.NewRef[rune, Node]()

	// The exponent is a full unary operand, so 2^-1 raises to -1 and
	// 2^3^2 still groups to the right.
	raise := parsec.Seq2(operator('^'), unary.Parser(), func(f func(Node, Node) Node, exp Node) func(Node) Node {
		return func(base Node) Node { return f(base, exp) }
	})
	power := parsec.Seq2(primary, parsec.Opt(raise, func(n Node) Node { return n }), func(base Node, apply func(Node) Node) Node {
		return apply(base)
	})

	unary.Define(parsec.OneOf(
		parsec.Map(parsec.KeepRight(symbol('-'), unary.Parser()), func(n Node) Node {
			return &Negate{Operand: n}
		}),
		power,
	).Label("expression"))

	term := parsec.ChainLeft(unary.Parser(), parsec.OneOf(operator('*'), operator('/'), operator('%')))
	expr = parsec.ChainLeft(term, parsec.OneOf(operator('+'), operator('-')))
	return parsec.KeepRight(parsec.Spaces(), expr)
}

// Parse builds the expression tree for src. The whole input must be a
// single expression.
func Parse(src string, opts ...parsec.Option) (Node, error) {
	return parsec.Parse(grammar, src, append([]parsec.Option{parsec.OptionWithConsumeAll()}, opts...)...)
}

// Evaluate parses and evaluates src.
func Evaluate(src string, opts ...parsec.Option) (float64, error) {
	n, err := Parse(src, opts...)
	if err != nil {
		return 0, err
	}
	return n.Eval()
}
