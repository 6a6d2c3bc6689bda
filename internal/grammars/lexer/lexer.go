// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package lexer splits C-like source text into tokens. Every code point of
// the input belongs to exactly one token, trivia included, so concatenating
// the Text of all tokens reproduces the input.
package lexer

import (
	"context"
	"fmt"
	"unicode"

	"gopkg.microglot.org/parsec.go/internal/idl"
	"gopkg.microglot.org/parsec.go/internal/iter"
	"gopkg.microglot.org/parsec.go/internal/parsec"
)

type Kind uint8

const (
	KindIdentifier Kind = iota + 1
	KindKeyword
	KindNumber
	KindString
	KindOperator
	KindPunctuation
	KindComment
	KindWhitespace
	KindNewline
)

func (k Kind) String() string {
	switch k {
	case KindIdentifier:
		return "identifier"
	case KindKeyword:
		return "keyword"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindOperator:
		return "operator"
	case KindPunctuation:
		return "punctuation"
	case KindComment:
		return "comment"
	case KindWhitespace:
		return "whitespace"
	case KindNewline:
		return "newline"
	default:
		return fmt.Sprintf("unknown-%d", k)
	}
}

// Trivia reports whether tokens of this kind carry no syntax.
func (k Kind) Trivia() bool {
	return k == KindComment || k == KindWhitespace || k == KindNewline
}

type Token struct {
	Kind     Kind
	Text     string
	Location idl.Location
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d %s %q", t.Location.Line, t.Location.Column, t.Kind, t.Text)
}

// Keywords lists the words lexed as KindKeyword instead of KindIdentifier.
var Keywords = []string{"else", "false", "fn", "if", "let", "nil", "print", "return", "true", "while"}

var operators = []string{"==", "!=", "<=", ">=", "&&", "||", "=", "<", ">", "+", "-", "*", "/", "%", "!"}

var grammar = build()

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func kind(k Kind, p parsec.Parser[rune, string]) parsec.Parser[rune, Token] {
	return parsec.Map(parsec.Located(p), func(s parsec.Span[string]) Token {
		return Token{Kind: k, Text: s.Value, Location: s.Start}
	})
}

func choice(words []string) parsec.Parser[rune, string] {
	ps := make([]parsec.Parser[rune, string], 0, len(words))
	for _, w := range words {
		ps = append(ps, parsec.Literal(w, true))
	}
	return parsec.OneOf(ps...)
}

func build() parsec.Parser[rune, []Token] {
	newline := parsec.Or(parsec.Literal("\r\n", true), parsec.Recognize(parsec.Char('\n')))
	whitespace := parsec.Recognize(parsec.Many1(parsec.CharIn(" \t\r\f\v")))

	lineComment := parsec.Recognize(parsec.And(
		parsec.Literal("//", true),
		parsec.Many(parsec.CharNotIn("\n")),
	))
	blockComment := parsec.Recognize(parsec.Seq3(
		parsec.Literal("/*", true),
		parsec.Many(parsec.KeepRight(parsec.Not(parsec.Literal("*/", true)), parsec.Any[rune]())),
		parsec.Must(parsec.Literal("*/", true), "'*/'"),
		func(string, []rune, string) struct{} { return struct{}{} },
	))

	word := parsec.Recognize(parsec.And(parsec.Satisfy(isIdentStart), parsec.Many(parsec.Satisfy(isIdentRune))))
	keyword := parsec.KeepLeft(choice(Keywords), parsec.Not(parsec.Satisfy(isIdentRune)))

	digits := parsec.Many1(parsec.Digit())
	number := parsec.Recognize(parsec.And(
		digits,
		parsec.Opt(parsec.KeepRight(parsec.Char('.'), digits), nil),
	))

	escape := parsec.Discard(parsec.And(parsec.Char('\\'), parsec.Any[rune]().Must("escaped character")))
	str := parsec.Recognize(parsec.Seq3(
		parsec.Char('"'),
		parsec.Many(parsec.Or(escape, parsec.Discard(parsec.CharNotIn("\"\\\n")))),
		parsec.Must(parsec.Char('"'), "closing quote"),
		func(rune, []struct{}, rune) struct{} { return struct{}{} },
	))

	token := parsec.OneOf(
		kind(KindNewline, newline),
		kind(KindWhitespace, whitespace),
		kind(KindComment, parsec.Or(lineComment, blockComment)),
		kind(KindKeyword, keyword),
		kind(KindIdentifier, word),
		kind(KindNumber, number),
		kind(KindString, str),
		kind(KindOperator, choice(operators)),
		kind(KindPunctuation, parsec.Recognize(parsec.CharIn("(){}[],;.:"))),
	)
	return parsec.KeepLeft(parsec.Many(token), parsec.Must(parsec.End[rune](), "token"))
}

// Tokenize lexes the whole of src.
func Tokenize(src string, opts ...parsec.Option) ([]Token, error) {
	return parsec.Parse(grammar, src, opts...)
}

// TokenizeRunes is Tokenize over decoded input.
func TokenizeRunes(src []rune, opts ...parsec.Option) ([]Token, error) {
	return parsec.ParseRunes(grammar, src, opts...)
}

// Significant drops comment, white space and newline tokens.
func Significant(ctx context.Context, tokens []Token) ([]Token, error) {
	filtered := iter.NewIteratorFilter(iter.NewSlice(tokens), iter.FilterFunc[Token](func(_ context.Context, t Token) bool {
		return !t.Kind.Trivia()
	}))
	return iter.Collect(ctx, filtered)
}
