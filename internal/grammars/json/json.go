// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package json decodes RFC 8259 JSON text into protobuf struct values.
//
// Objects with repeated keys keep the last value. A lone UTF-16 surrogate in
// a \u escape decodes to U+FFFD.
package json

import (
	"errors"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"google.golang.org/protobuf/types/known/structpb"

	"gopkg.microglot.org/parsec.go/internal/parsec"
)

var grammar = build()

var ws = parsec.Discard(parsec.Many(parsec.CharIn(" \t\r\n")))

func token(r rune) parsec.Parser[rune, rune] {
	return parsec.KeepLeft(parsec.Char(r), ws)
}

func keyword(word string, v func() *structpb.Value) parsec.Parser[rune, *structpb.Value] {
	return parsec.KeepLeft(parsec.Map(parsec.Literal(word, true), func(string) *structpb.Value { return v() }), ws)
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hex4() parsec.Parser[rune, rune] {
	digits := parsec.Recognize(parsec.Times(parsec.Satisfy(isHex), 4))
	return parsec.Map(digits, func(s string) rune {
		v, _ := strconv.ParseUint(s, 16, 32)
		return rune(v)
	})
}

var errUnpaired = errors.New("unpaired surrogate")

// unicodeEscape decodes the part of \uXXXX after the backslash. A high
// surrogate pairs with an immediately following \uXXXX low surrogate.
func unicodeEscape() parsec.Parser[rune, rune] {
	low := parsec.KeepRight(parsec.Literal(`\u`, true), hex4())
	return parsec.FlatMap(parsec.KeepRight(parsec.Char('u'), hex4().Must("four hex digits")), func(hi rune) parsec.Parser[rune, rune] {
		if !utf16.IsSurrogate(hi) {
			return parsec.Value[rune](hi)
		}
		if hi > 0xDBFF {
			return parsec.Value[rune](utf8.RuneError)
		}
		paired := parsec.TryMap(low, func(lo rune) (rune, error) {
			r := utf16.DecodeRune(hi, lo)
			if r == utf8.RuneError {
				return 0, errUnpaired
			}
			return r, nil
		})
		return parsec.Opt(paired, utf8.RuneError)
	})
}

func stringLiteral() parsec.Parser[rune, string] {
	simple := func(code rune, out rune) parsec.Parser[rune, rune] {
		return parsec.MapTo(parsec.Char(code), out)
	}
	escape := parsec.KeepRight(parsec.Char('\\'), parsec.OneOf(
		simple('"', '"'),
		simple('\\', '\\'),
		simple('/', '/'),
		simple('b', '\b'),
		simple('f', '\f'),
		simple('n', '\n'),
		simple('r', '\r'),
		simple('t', '\t'),
		unicodeEscape(),
	).Must("escape sequence"))
	plain := parsec.Satisfy(func(r rune) bool { return r != '"' && r != '\\' && r >= 0x20 })
	body := parsec.Many(parsec.Or(plain, escape))
	return parsec.KeepLeft(
		parsec.Map(
			parsec.Between(parsec.Char('"'), body, parsec.Char('"').Must("closing quote")),
			func(rs []rune) string { return string(rs) },
		),
		ws,
	)
}

func number() parsec.Parser[rune, *structpb.Value] {
	digits := parsec.Discard(parsec.Many1(parsec.Digit()))
	integer := parsec.Or(
		parsec.Discard(parsec.Char('0')),
		parsec.Discard(parsec.And(parsec.CharRange('1', '9'), parsec.Many(parsec.Digit()))),
	)
	fraction := parsec.KeepRight(parsec.Char('.'), digits.Must("digit"))
	exponent := parsec.SeqOf(
		parsec.Discard(parsec.CharIn("eE")),
		parsec.Opt(parsec.Discard(parsec.CharIn("+-")), struct{}{}),
		digits.Must("digit"),
	)
	text := parsec.Recognize(parsec.SeqOf(
		parsec.Opt(parsec.Discard(parsec.Char('-')), struct{}{}),
		integer,
		parsec.Opt(fraction, struct{}{}),
		parsec.Opt(parsec.Discard(exponent), struct{}{}),
	))
	return parsec.KeepLeft(parsec.TryMap(text, func(s string) (*structpb.Value, error) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		return structpb.NewNumberValue(f), nil
	}), ws)
}

func build() parsec.Parser[rune, *structpb.Value] {
	var value parsec.Parser[rune, *structpb.Value]
	nested := parsec.Lazy(func() parsec.Parser[rune, *structpb.Value] { return value })
	str := stringLiteral()

	member := parsec.Seq3(
		str.Label("string"),
		token(':').Must("':'"),
		nested.Must("value"),
		func(k string, _ rune, v *structpb.Value) *structpb.Struct {
			return &structpb.Struct{Fields: map[string]*structpb.Value{k: v}}
		},
	)
	members := parsec.Seq2(
		member,
		parsec.Many(parsec.KeepRight(token(','), member.Must("string"))),
		func(first *structpb.Struct, rest []*structpb.Struct) *structpb.Struct {
			for _, m := range rest {
				for k, v := range m.Fields {
					first.Fields[k] = v
				}
			}
			return first
		},
	)
	object := parsec.Map(
		parsec.Between(token('{'), parsec.Opt(members, nil), token('}').Must("',' or '}'")),
		func(s *structpb.Struct) *structpb.Value {
			if s == nil {
				s = &structpb.Struct{Fields: map[string]*structpb.Value{}}
			}
			return structpb.NewStructValue(s)
		},
	)

	elements := parsec.Seq2(
		nested,
		parsec.Many(parsec.KeepRight(token(','), nested.Must("value"))),
		func(first *structpb.Value, rest []*structpb.Value) []*structpb.Value {
			return append([]*structpb.Value{first}, rest...)
		},
	)
	array := parsec.Map(
		parsec.Between(token('['), parsec.Opt(elements, nil), token(']').Must("',' or ']'")),
		func(vs []*structpb.Value) *structpb.Value {
			if vs == nil {
				vs = []*structpb.Value{}
			}
			return structpb.NewListValue(&structpb.ListValue{Values: vs})
		},
	)

	value = parsec.OneOf(
		object,
		array,
		parsec.Map(str, structpb.NewStringValue),
		number(),
		keyword("true", func() *structpb.Value { return structpb.NewBoolValue(true) }),
		keyword("false", func() *structpb.Value { return structpb.NewBoolValue(false) }),
		keyword("null", structpb.NewNullValue),
	).Label("value")

	return parsec.KeepRight(ws, value)
}

// Decode parses a single JSON text.
func Decode(src string, opts ...parsec.Option) (*structpb.Value, error) {
	return parsec.Parse(grammar, src, append([]parsec.Option{parsec.OptionWithConsumeAll()}, opts...)...)
}
