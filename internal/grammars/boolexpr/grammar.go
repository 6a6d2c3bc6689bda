// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package boolexpr parses and evaluates boolean expressions such as
// "a AND NOT (b || c)". Keywords are case-insensitive and must not run into
// a following identifier character, so "order" is a variable, not "or".
//
// Precedence, loosest first: or, xor, and, not.
package boolexpr

import (
	"unicode"

	"gopkg.microglot.org/parsec.go/internal/parsec"
)

var grammar = build()

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func keyword(word string) parsec.Parser[rune, string] {
	return parsec.Lexeme(parsec.KeepLeft(
		parsec.Literal(word, false),
		parsec.Not(parsec.Satisfy(isIdentRune)),
	))
}

func symbol(text string) parsec.Parser[rune, string] {
	return parsec.Lexeme(parsec.Literal(text, true))
}

func connective(op Op, word, sym string) parsec.Parser[rune, func(Expr, Expr) Expr] {
	var spelled parsec.Parser[rune, string]
	if sym == "" {
		spelled = keyword(word)
	} else {
		spelled = parsec.Or(keyword(word), symbol(sym))
	}
	return parsec.MapTo(spelled, func(l, r Expr) Expr {
		return &Binary{Op: op, Left: l, Right: r}
	})
}

func build() parsec.Parser[rune, Expr] {
	reserved := parsec.OneOf(keyword("true"), keyword("false"), keyword("and"), keyword("or"), keyword("xor"), keyword("not"))
	identifier := parsec.Lexeme(parsec.KeepRight(
		parsec.Not(reserved),
		parsec.Recognize(parsec.And(
			parsec.Satisfy(func(r rune) bool { return r == '_' || unicode.IsLetter(r) }),
			parsec.Many(parsec.Satisfy(isIdentRune)),
		)),
	))

	var expr parsec.Parser[rune, Expr]
	nested := parsec.Lazy(func() parsec.Parser[rune, Expr] { return expr })

	atom := parsec.OneOf(
		parsec.MapTo(keyword("true"), Expr(Const(true))),
		parsec.MapTo(keyword("false"), Expr(Const(false))),
		parsec.Map(identifier, func(name string) Expr { return Var(name) }),
		parsec.Between(symbol("("), nested, parsec.Must(symbol(")"), "')'")),
	)

	negation := parsec.NewRef[rune, Expr]()
	negation.Define(parsec.OneOf(
		parsec.Map(
			parsec.KeepRight(parsec.Or(keyword("not"), symbol("!")), parsec.Must(negation.Parser(), "operand")),
			func(e Expr) Expr { return &Not{Operand: e} },
		),
		atom,
	).Label("operand"))

	conjunction := parsec.ChainLeft(negation.Parser(), connective(OpAnd, "and", "&&"))
	exclusive := parsec.ChainLeft(conjunction, connective(OpXor, "xor", ""))
	expr = parsec.ChainLeft(exclusive, connective(OpOr, "or", "||"))
	return parsec.KeepRight(parsec.Spaces(), expr)
}

// Parse builds the expression tree for src.
func Parse(src string, opts ...parsec.Option) (Expr, error) {
	return parsec.Parse(grammar, src, append([]parsec.Option{parsec.OptionWithConsumeAll()}, opts...)...)
}

// Evaluate parses src and evaluates it against vars. Variables missing from
// vars produce an *UndefinedError, but only when evaluation reaches them.
func Evaluate(src string, vars map[string]bool, opts ...parsec.Option) (bool, error) {
	e, err := Parse(src, opts...)
	if err != nil {
		return false, err
	}
	return e.Eval(vars)
}
