// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package protobuf parses a proto3 subset into descriptor protos: package,
// imports, options (including bracketed field options and parenthesized
// extension names), messages with nested messages and enums, repeated and
// optional fields, oneofs, and reserved ranges and names. Maps, groups,
// services and extensions are not supported.
//
// Names are resolved against declarations in the same file. A reference
// that cannot be resolved is an error unless the file has imports, in which
// case it is left as written for a later link step.
package protobuf

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"google.golang.org/protobuf/types/descriptorpb"

	"gopkg.microglot.org/parsec.go/internal/exc"
	"gopkg.microglot.org/parsec.go/internal/parsec"
)

// MaxFieldNumber is the largest valid field number.
const MaxFieldNumber = 536870911

var grammar = build()

var skip = parsec.Discard(parsec.Many(parsec.OneOf(
	parsec.Discard(parsec.Space()),
	parsec.Discard(parsec.And(parsec.Literal("//", true), parsec.Many(parsec.CharNotIn("\n")))),
	parsec.Seq3(
		parsec.Literal("/*", true),
		parsec.Many(parsec.KeepRight(parsec.Not(parsec.Literal("*/", true)), parsec.Any[rune]())),
		parsec.Must(parsec.Literal("*/", true), "'*/'"),
		func(string, []rune, string) struct{} { return struct{}{} },
	),
)))

func lexeme[T any](p parsec.Parser[rune, T]) parsec.Parser[rune, T] {
	return parsec.KeepLeft(p, skip)
}

func sym(s string) parsec.Parser[rune, string] {
	return lexeme(parsec.Literal(s, true))
}

func isIdentStart(r rune) bool {
	return r == '_' || (r < unicode.MaxASCII && unicode.IsLetter(r))
}

func isIdentRune(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func kw(word string) parsec.Parser[rune, string] {
	return lexeme(parsec.KeepLeft(parsec.Literal(word, true), parsec.Not(parsec.Satisfy(isIdentRune))))
}

func must[T any](p parsec.Parser[rune, T], what string) parsec.Parser[rune, T] {
	return parsec.Must(p, what)
}

func body[T any](items parsec.Parser[rune, func(T)]) parsec.Parser[rune, []func(T)] {
	return parsec.Between(must(sym("{"), "'{'"), parsec.Many(items), must(sym("}"), "'}'"))
}

func noop[T any]() parsec.Parser[rune, func(T)] {
	return parsec.MapTo(sym(";"), func(T) {})
}

var errSyntax = errors.New(`only syntax = "proto3" is supported`)

// stringLiteral matches one single or double quoted string. The closing
// quote must be the same as the opening one.
func stringLiteral() parsec.Parser[rune, string] {
	code := func(digits parsec.Parser[rune, string], base int) parsec.Parser[rune, rune] {
		return parsec.TryMap(digits, func(s string) (rune, error) {
			v, err := strconv.ParseUint(s, base, 8)
			return rune(v), err
		})
	}
	escape := parsec.KeepRight(parsec.Char('\\'), must(parsec.OneOf(
		parsec.MapTo(parsec.Char('n'), '\n'),
		parsec.MapTo(parsec.Char('r'), '\r'),
		parsec.MapTo(parsec.Char('t'), '\t'),
		parsec.MapTo(parsec.Char('\\'), '\\'),
		parsec.MapTo(parsec.Char('"'), '"'),
		parsec.MapTo(parsec.Char('\''), '\''),
		parsec.KeepRight(parsec.CharIn("xX"), code(parsec.Recognize(parsec.Repeat(parsec.Satisfy(isHex), 1, 2)), 16)),
		code(parsec.Recognize(parsec.Repeat(parsec.CharRange('0', '7'), 1, 3)), 8),
	), "escape sequence"))
	quoted := parsec.FlatMap(parsec.CharIn(`"'`), func(quote rune) parsec.Parser[rune, string] {
		chars := parsec.Many(parsec.Or(escape, parsec.CharNotIn(string(quote)+"\\\n")))
		return parsec.KeepLeft(
			parsec.Map(chars, func(rs []rune) string { return string(rs) }),
			must(parsec.Char(quote), "closing quote"),
		)
	})
	// Adjacent literals concatenate.
	return parsec.Map(parsec.Many1(lexeme(quoted)), func(parts []string) string {
		return strings.Join(parts, "")
	})
}

func build() parsec.Parser[rune, *fileDecl] {
	semicolon := must(sym(";"), "';'")
	identRaw := parsec.Recognize(parsec.And(parsec.Satisfy(isIdentStart), parsec.Many(parsec.Satisfy(isIdentRune))))
	ident := lexeme(parsec.Located(identRaw)).Label("identifier")
	dottedRaw := parsec.Recognize(parsec.SeqOf(
		parsec.Opt(parsec.Discard(parsec.Char('.')), struct{}{}),
		parsec.Discard(identRaw),
		parsec.Discard(parsec.Many(parsec.And(parsec.Char('.'), identRaw))),
	))
	dotted := lexeme(dottedRaw).Label("name")
	str := stringLiteral()

	hexText := parsec.Recognize(parsec.And(parsec.Literal("0x", false), parsec.Many1(parsec.Satisfy(isHex))))
	decText := parsec.Recognize(parsec.Many1(parsec.Digit()))
	intValue := lexeme(parsec.TryMap(parsec.Or(hexText, decText), func(s string) (int64, error) {
		return strconv.ParseInt(s, 0, 64)
	})).Label("integer")
	signedInt := parsec.Seq2(
		parsec.Opt(parsec.MapTo(sym("-"), true), false),
		intValue,
		func(neg bool, v int64) int64 {
			if neg {
				return -v
			}
			return v
		},
	)
	floatText := parsec.Recognize(parsec.SeqOf(
		parsec.Discard(parsec.Many1(parsec.Digit())),
		parsec.Opt(parsec.Discard(parsec.And(parsec.Char('.'), parsec.Many(parsec.Digit()))), struct{}{}),
		parsec.Opt(parsec.Discard(parsec.SeqOf(
			parsec.Discard(parsec.CharIn("eE")),
			parsec.Opt(parsec.Discard(parsec.CharIn("+-")), struct{}{}),
			parsec.Discard(parsec.Many1(parsec.Digit())),
		)), struct{}{}),
	))

	scalar := parsec.OneOf(
		parsec.Map(lexeme(parsec.Or(hexText, floatText)), func(s string) constant { return constant{kind: constNumber, text: s} }),
		parsec.Map(dotted, func(s string) constant { return constant{kind: constIdent, text: s} }),
	)
	constantValue := parsec.Map(parsec.Located(parsec.OneOf(
		parsec.Map(str, func(s string) constant { return constant{kind: constString, text: s} }),
		parsec.Seq2(
			parsec.Opt(parsec.Or(parsec.MapTo(sym("-"), true), parsec.MapTo(sym("+"), false)), false),
			scalar,
			func(neg bool, c constant) constant {
				c.negative = neg
				return c
			},
		),
	)), func(s parsec.Span[constant]) constant {
		c := s.Value
		c.at = s.Start
		return c
	})

	optionName := lexeme(parsec.SepBy(parsec.OneOf(
		parsec.Map(
			parsec.Between(parsec.Char('('), dottedRaw, must(parsec.Char(')'), "')'")),
			func(s string) namePart { return namePart{name: s, extension: true} },
		),
		parsec.Map(identRaw, func(s string) namePart { return namePart{name: s} }),
	), parsec.Char('.'))).Label("option name")
	optionAssign := parsec.Map(parsec.Located(parsec.Seq3(
		optionName,
		must(sym("="), "'='"),
		must(constantValue, "constant"),
		func(name []namePart, _ string, v constant) optionDecl { return optionDecl{name: name, value: v} },
	)), func(s parsec.Span[optionDecl]) optionDecl {
		o := s.Value
		o.at = s.Start
		return o
	})
	optionStmt := parsec.KeepRight(kw("option"), parsec.KeepLeft(must(optionAssign, "option name"), semicolon))
	bracketOptions := parsec.Opt(parsec.Between(
		sym("["),
		parsec.SepBy(must(optionAssign, "option name"), sym(",")),
		must(sym("]"), "']'"),
	), nil)

	field := func(labeled bool) parsec.Parser[rune, *fieldDecl] {
		label := parsec.Value[rune]("")
		if labeled {
			label = parsec.Opt(parsec.Or(kw("repeated"), kw("optional")), "")
		}
		head := parsec.Seq3(label, dotted, ident, func(l, typeName string, name parsec.Span[string]) *fieldDecl {
			return &fieldDecl{label: l, typeName: typeName, name: name.Value, at: name.Start, oneof: -1}
		})
		return parsec.Seq4(
			head,
			must(sym("="), "'='"),
			must(parsec.Located(intValue), "field number"),
			parsec.KeepLeft(bracketOptions, semicolon),
			func(f *fieldDecl, _ string, n parsec.Span[int64], opts []optionDecl) *fieldDecl {
				f.number = n.Value
				f.numberAt = n.Start
				f.options = opts
				return f
			},
		)
	}

	rangeEnd := parsec.Or(intValue, parsec.MapTo(kw("max"), int64(MaxFieldNumber)))
	reservedRange := parsec.Seq2(
		intValue,
		parsec.Opt(parsec.KeepRight(kw("to"), must(rangeEnd, "range end")), -1),
		func(lo, hi int64) [2]int64 {
			if hi < 0 {
				hi = lo
			}
			return [2]int64{lo, hi}
		},
	)
	reserved := parsec.Seq2(
		parsec.Located(kw("reserved")),
		parsec.KeepLeft(must(parsec.Or(
			parsec.Map(parsec.SepBy(str, sym(",")), func(names []string) reservedDecl { return reservedDecl{names: names} }),
			parsec.Map(parsec.SepBy(reservedRange, sym(",")), func(rs [][2]int64) reservedDecl { return reservedDecl{ranges: rs} }),
		), "field numbers or names"), semicolon),
		func(k parsec.Span[string], r reservedDecl) reservedDecl {
			r.at = k.Start
			return r
		},
	)

	enumValue := parsec.Seq2(
		ident,
		parsec.Seq3(
			must(sym("="), "'='"),
			must(signedInt, "enum value number"),
			parsec.KeepLeft(bracketOptions, semicolon),
			func(_ string, n int64, opts []optionDecl) *enumValueDecl {
				return &enumValueDecl{number: n, options: opts}
			},
		),
		func(name parsec.Span[string], v *enumValueDecl) *enumValueDecl {
			v.name = name.Value
			v.at = name.Start
			return v
		},
	)
	enum := parsec.KeepRight(kw("enum"), parsec.Seq2(
		must(ident, "enum name"),
		body(parsec.OneOf(
			parsec.Map(optionStmt, func(o optionDecl) func(*enumDecl) {
				return func(e *enumDecl) { e.options = append(e.options, o) }
			}),
			parsec.Map(enumValue, func(v *enumValueDecl) func(*enumDecl) {
				return func(e *enumDecl) { e.values = append(e.values, v) }
			}),
			noop[*enumDecl](),
		)),
		func(name parsec.Span[string], items []func(*enumDecl)) *enumDecl {
			e := &enumDecl{name: name.Value, at: name.Start}
			for _, apply := range items {
				apply(e)
			}
			return e
		},
	))

	type oneofBody struct {
		decl   *oneofDecl
		fields []*fieldDecl
	}
	oneof := parsec.KeepRight(kw("oneof"), parsec.Seq2(
		must(ident, "oneof name"),
		body(parsec.OneOf(
			parsec.Map(optionStmt, func(o optionDecl) func(*oneofBody) {
				return func(b *oneofBody) { b.decl.options = append(b.decl.options, o) }
			}),
			parsec.Map(field(false), func(f *fieldDecl) func(*oneofBody) {
				return func(b *oneofBody) { b.fields = append(b.fields, f) }
			}),
			noop[*oneofBody](),
		)),
		func(name parsec.Span[string], items []func(*oneofBody)) *oneofBody {
			b := &oneofBody{decl: &oneofDecl{name: name.Value}}
			for _, apply := range items {
				apply(b)
			}
			return b
		},
	))

	message := parsec.NewRef[rune, *messageDecl]()
	message.Define(parsec.KeepRight(kw("message"), parsec.Seq2(
		must(ident, "message name"),
		body(parsec.OneOf(
			parsec.Map(optionStmt, func(o optionDecl) func(*messageDecl) {
				return func(m *messageDecl) { m.options = append(m.options, o) }
			}),
			parsec.Map(reserved, func(r reservedDecl) func(*messageDecl) {
				return func(m *messageDecl) { m.reserved = append(m.reserved, r) }
			}),
			parsec.Map(message.Parser(), func(n *messageDecl) func(*messageDecl) {
				return func(m *messageDecl) { m.messages = append(m.messages, n) }
			}),
			parsec.Map(enum, func(e *enumDecl) func(*messageDecl) {
				return func(m *messageDecl) { m.enums = append(m.enums, e) }
			}),
			parsec.Map(oneof, func(b *oneofBody) func(*messageDecl) {
				return func(m *messageDecl) {
					index := len(m.oneofs)
					m.oneofs = append(m.oneofs, b.decl)
					for _, f := range b.fields {
						f.oneof = index
						m.fields = append(m.fields, f)
					}
				}
			}),
			parsec.Map(field(true), func(f *fieldDecl) func(*messageDecl) {
				return func(m *messageDecl) { m.fields = append(m.fields, f) }
			}),
			noop[*messageDecl](),
		)),
		func(name parsec.Span[string], items []func(*messageDecl)) *messageDecl {
			m := &messageDecl{name: name.Value, at: name.Start}
			for _, apply := range items {
				apply(m)
			}
			return m
		},
	)))

	syntax := parsec.KeepRight(kw("syntax"), parsec.KeepLeft(parsec.KeepRight(
		must(sym("="), "'='"),
		parsec.Fatal(parsec.TryMap(str, func(s string) (string, error) {
			if s != "proto3" {
				return "", errSyntax
			}
			return s, nil
		}), func(exc.Location) error { return errSyntax }),
	), semicolon))

	pkg := parsec.KeepRight(kw("package"), parsec.KeepLeft(must(dotted, "package name"), semicolon))
	imp := parsec.KeepRight(kw("import"), parsec.Seq2(
		parsec.Opt(parsec.Or(kw("public"), kw("weak")), ""),
		parsec.KeepLeft(must(str, "import path"), semicolon),
		func(modifier, path string) importDecl {
			return importDecl{path: path, public: modifier == "public", weak: modifier == "weak"}
		},
	))

	items := parsec.Many(parsec.OneOf(
		parsec.Map(imp, func(i importDecl) func(*fileDecl) {
			return func(f *fileDecl) { f.imports = append(f.imports, i) }
		}),
		parsec.Map(pkg, func(name string) func(*fileDecl) {
			return func(f *fileDecl) { f.pkg = name }
		}),
		parsec.Map(optionStmt, func(o optionDecl) func(*fileDecl) {
			return func(f *fileDecl) { f.options = append(f.options, o) }
		}),
		parsec.Map(message.Parser(), func(m *messageDecl) func(*fileDecl) {
			return func(f *fileDecl) { f.messages = append(f.messages, m) }
		}),
		parsec.Map(enum, func(e *enumDecl) func(*fileDecl) {
			return func(f *fileDecl) { f.enums = append(f.enums, e) }
		}),
		noop[*fileDecl](),
	))

	return parsec.Between(
		skip,
		parsec.Map(parsec.KeepRight(must(syntax, "syntax declaration"), items), func(all []func(*fileDecl)) *fileDecl {
			f := &fileDecl{}
			for _, apply := range all {
				apply(f)
			}
			return f
		}),
		must(parsec.End[rune](), "declaration"),
	)
}

// Parse parses a proto3 file and lowers it to a descriptor. name becomes
// the descriptor's name and the URI of every reported location. Syntax
// errors are returned as a *parsec.Failure; everything found while lowering
// is returned together as an exc.MultiException.
func Parse(name string, src string, opts ...parsec.Option) (*descriptorpb.FileDescriptorProto, error) {
	decl, err := parsec.Parse(grammar, src, append([]parsec.Option{parsec.OptionWithURI(name)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return lower(name, decl)
}
