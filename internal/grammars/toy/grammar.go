// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package toy implements a small dynamically typed scripting language:
//
//	fn counter() {
//	    let n = 0;
//	    return fn() { n = n + 1; return n; };
//	}
//	let next = counter();
//	while (next() < 3) { print("tick"); }
//
// Numbers are float64. Strings concatenate with +. Blocks introduce lexical
// scopes and functions close over the scope they are declared in.
package toy

import (
	"strconv"
	"unicode"

	"gopkg.microglot.org/parsec.go/internal/grammars/lexer"
	"gopkg.microglot.org/parsec.go/internal/parsec"
)

var grammar = build()

var skip = parsec.Discard(parsec.Many(parsec.Or(
	parsec.Discard(parsec.Space()),
	parsec.Discard(parsec.And(parsec.Literal("//", true), parsec.Many(parsec.CharNotIn("\n")))),
)))

func lexeme[T any](p parsec.Parser[rune, T]) parsec.Parser[rune, T] {
	return parsec.KeepLeft(p, skip)
}

func sym(s string) parsec.Parser[rune, string] {
	return lexeme(parsec.Literal(s, true))
}

// single matches an operator that is also the first half of the same
// operator followed by '=', such as = and !.
func single(s string) parsec.Parser[rune, string] {
	return lexeme(parsec.KeepLeft(parsec.Literal(s, true), parsec.Not(parsec.Char('='))))
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func kw(word string) parsec.Parser[rune, string] {
	return lexeme(parsec.KeepLeft(parsec.Literal(word, true), parsec.Not(parsec.Satisfy(isIdentRune))))
}

func must[T any](p parsec.Parser[rune, T], what string) parsec.Parser[rune, T] {
	return parsec.Must(p, what)
}

func binary(operand parsec.Parser[rune, Expr], ops ...string) parsec.Parser[rune, Expr] {
	alts := make([]parsec.Parser[rune, string], 0, len(ops))
	for _, op := range ops {
		alts = append(alts, sym(op))
	}
	fold := parsec.Map(parsec.Located(parsec.OneOf(alts...)), func(s parsec.Span[string]) func(Expr, Expr) Expr {
		return func(l, r Expr) Expr {
			return &Binary{Op: s.Value, Left: l, Right: r, At: s.Start}
		}
	})
	return parsec.ChainLeft(operand, fold)
}

func build() parsec.Parser[rune, *Program] {
	reserved := make([]parsec.Parser[rune, string], 0, len(lexer.Keywords))
	for _, word := range lexer.Keywords {
		reserved = append(reserved, kw(word))
	}
	identifier := lexeme(parsec.KeepRight(
		parsec.Not(parsec.OneOf(reserved...)),
		parsec.Recognize(parsec.And(
			parsec.Satisfy(func(r rune) bool { return r == '_' || unicode.IsLetter(r) }),
			parsec.Many(parsec.Satisfy(isIdentRune)),
		)),
	)).Label("identifier")

	number := lexeme(parsec.TryMap(
		parsec.Recognize(parsec.And(
			parsec.Many1(parsec.Digit()),
			parsec.Opt(parsec.KeepRight(parsec.Char('.'), parsec.Many1(parsec.Digit())), nil),
		)),
		func(s string) (Expr, error) {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, err
			}
			return Number(v), nil
		},
	))

	escape := parsec.KeepRight(parsec.Char('\\'), must(parsec.OneOf(
		parsec.MapTo(parsec.Char('n'), '\n'),
		parsec.MapTo(parsec.Char('t'), '\t'),
		parsec.MapTo(parsec.Char('"'), '"'),
		parsec.MapTo(parsec.Char('\\'), '\\'),
	), "escape sequence"))
	str := lexeme(parsec.Map(
		parsec.Between(
			parsec.Char('"'),
			parsec.Many(parsec.Or(escape, parsec.CharNotIn("\"\\\n"))),
			must(parsec.Char('"'), "closing quote"),
		),
		func(rs []rune) Expr { return String(rs) },
	))

	var expr parsec.Parser[rune, Expr]
	nested := parsec.Lazy(func() parsec.Parser[rune, Expr] { return expr })
	stmts := parsec.NewRef[rune, []Stmt]()

	block := parsec.Between(sym("{"), stmts.Parser(), must(sym("}"), "'}'"))
	params := parsec.Between(
		sym("("),
		parsec.Opt(parsec.SepBy(identifier, sym(",")), nil),
		must(sym(")"), "')'"),
	)
	args := parsec.Between(
		sym("("),
		parsec.Opt(parsec.SepBy(nested, sym(",")), nil),
		must(sym(")"), "')'"),
	)

	funcLit := parsec.KeepRight(kw("fn"), parsec.Seq2(
		must(params, "parameter list"),
		must(block, "function body"),
		func(ps []string, body []Stmt) Expr { return &FuncLit{Params: ps, Body: body} },
	))

	primary := parsec.OneOf(
		number,
		str,
		parsec.MapTo(kw("true"), Expr(Bool(true))),
		parsec.MapTo(kw("false"), Expr(Bool(false))),
		parsec.MapTo(kw("nil"), Expr(Nil{})),
		funcLit,
		parsec.Map(parsec.Located(identifier), func(s parsec.Span[string]) Expr {
			return &Ident{Name: s.Value, At: s.Start}
		}),
		parsec.Between(sym("("), nested, must(sym(")"), "')'")),
	).Label("expression")

	call := parsec.Seq2(primary, parsec.Many(parsec.Located(args)), func(callee Expr, calls []parsec.Span[[]Expr]) Expr {
		for _, c := range calls {
			callee = &Call{Callee: callee, Args: c.Value, At: c.Start}
		}
		return callee
	})

	unary := parsec.NewRef[rune, Expr]()
	unary.Define(parsec.OneOf(
		parsec.Seq2(
			parsec.Located(parsec.Or(single("!"), sym("-"))),
			must(unary.Parser(), "operand"),
			func(op parsec.Span[string], x Expr) Expr { return &Unary{Op: op.Value, X: x, At: op.Start} },
		),
		call,
	))

	factor := binary(unary.Parser(), "*", "/", "%")
	term := binary(factor, "+", "-")
	comparison := binary(term, "<=", ">=", "<", ">")
	equality := binary(comparison, "==", "!=")
	conjunction := binary(equality, "&&")
	expr = binary(conjunction, "||")

	semicolon := must(sym(";"), "';'")
	condition := parsec.Between(must(sym("("), "'('"), must(nested, "condition"), must(sym(")"), "')'"))

	let := parsec.KeepRight(kw("let"), parsec.Seq4(
		must(parsec.Located(identifier), "identifier"),
		must(single("="), "'='"),
		must(nested, "expression"),
		semicolon,
		func(name parsec.Span[string], _ string, v Expr, _ string) Stmt {
			return &Let{Name: name.Value, Value: v, At: name.Start}
		},
	))

	assign := parsec.Seq4(
		parsec.Located(identifier),
		single("="),
		must(nested, "expression"),
		semicolon,
		func(name parsec.Span[string], _ string, v Expr, _ string) Stmt {
			return &Assign{Name: name.Value, Value: v, At: name.Start}
		},
	)

	ifStmt := parsec.NewRef[rune, Stmt]()
	elseBranch := parsec.KeepRight(kw("else"), must(parsec.Or(
		parsec.Map(ifStmt.Parser(), func(s Stmt) []Stmt { return []Stmt{s} }),
		block,
	), "block"))
	ifStmt.Define(parsec.KeepRight(kw("if"), parsec.Seq3(
		condition,
		must(block, "block"),
		parsec.Opt(elseBranch, nil),
		func(c Expr, then []Stmt, els []Stmt) Stmt { return &If{Cond: c, Then: then, Else: els} },
	)))

	while := parsec.KeepRight(kw("while"), parsec.Seq2(
		condition,
		must(block, "block"),
		func(c Expr, body []Stmt) Stmt { return &While{Cond: c, Body: body} },
	))

	funcDecl := parsec.KeepRight(kw("fn"), parsec.Seq3(
		identifier,
		must(params, "parameter list"),
		must(block, "function body"),
		func(name string, ps []string, body []Stmt) Stmt {
			return &FuncDecl{Name: name, Params: ps, Body: body}
		},
	))

	ret := parsec.KeepRight(kw("return"), parsec.Map(
		parsec.KeepLeft(parsec.Opt(nested, nil), semicolon),
		func(v Expr) Stmt { return &Return{Value: v} },
	))

	printStmt := parsec.KeepRight(kw("print"), parsec.Map(
		parsec.KeepLeft(must(args, "argument list"), semicolon),
		func(xs []Expr) Stmt { return &Print{Args: xs} },
	))

	exprStmt := parsec.Map(parsec.KeepLeft(nested, semicolon), func(x Expr) Stmt { return &ExprStmt{X: x} })

	stmts.Define(parsec.Many(parsec.OneOf(
		let,
		ifStmt.Parser(),
		while,
		funcDecl,
		ret,
		printStmt,
		assign,
		exprStmt,
	)))

	return parsec.Map(
		parsec.Between(skip, stmts.Parser(), must(parsec.End[rune](), "statement")),
		func(body []Stmt) *Program { return &Program{Body: body} },
	)
}

// Parse builds the syntax tree of a program.
func Parse(src string, opts ...parsec.Option) (*Program, error) {
	return parsec.Parse(grammar, src, opts...)
}
