// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.microglot.org/parsec.go/internal/exc"
	"gopkg.microglot.org/parsec.go/internal/grammars/arith"
	"gopkg.microglot.org/parsec.go/internal/grammars/boolexpr"
	"gopkg.microglot.org/parsec.go/internal/grammars/json"
	"gopkg.microglot.org/parsec.go/internal/grammars/lexer"
	"gopkg.microglot.org/parsec.go/internal/grammars/protobuf"
	"gopkg.microglot.org/parsec.go/internal/grammars/toy"
	"gopkg.microglot.org/parsec.go/internal/idl"
	"gopkg.microglot.org/parsec.go/internal/parsec"
)

// Grammar turns the content of one file into a value. opts already carry the
// file's URI.
type Grammar interface {
	Parse(ctx context.Context, uri string, src []rune, opts ...parsec.Option) (any, error)
}

type GrammarFunc func(ctx context.Context, uri string, src []rune, opts ...parsec.Option) (any, error)

func (f GrammarFunc) Parse(ctx context.Context, uri string, src []rune, opts ...parsec.Option) (any, error) {
	return f(ctx, uri, src, opts...)
}

func DefaultGrammars() map[idl.FileKind]Grammar {
	return map[idl.FileKind]Grammar{
		idl.FileKindArith:    GrammarFunc(parseArith),
		idl.FileKindBool:     &BoolGrammar{},
		idl.FileKindJSON:     GrammarFunc(parseJSON),
		idl.FileKindTokens:   GrammarFunc(parseTokens),
		idl.FileKindToy:      GrammarFunc(runToy),
		idl.FileKindProtobuf: &ProtobufGrammar{},
	}
}

// Evaluation is an expression's parenthesized tree and its value.
type Evaluation struct {
	Tree  string `json:"tree" yaml:"tree"`
	Value any    `json:"value" yaml:"value"`
}

func evalErr(uri string, err error) error {
	return exc.Wrap(exc.Location{URI: uri}, exc.CodeEvaluation, err)
}

func parseArith(ctx context.Context, uri string, src []rune, opts ...parsec.Option) (any, error) {
	n, err := arith.Parse(string(src), opts...)
	if err != nil {
		return nil, err
	}
	v, err := n.Eval()
	if err != nil {
		return nil, evalErr(uri, err)
	}
	return Evaluation{Tree: n.String(), Value: v}, nil
}

// BoolGrammar evaluates boolean expressions against Vars.
type BoolGrammar struct {
	Vars map[string]bool
}

func (self *BoolGrammar) Parse(ctx context.Context, uri string, src []rune, opts ...parsec.Option) (any, error) {
	e, err := boolexpr.Parse(string(src), opts...)
	if err != nil {
		return nil, err
	}
	v, err := e.Eval(self.Vars)
	if err != nil {
		return nil, evalErr(uri, err)
	}
	return Evaluation{Tree: e.String(), Value: v}, nil
}

func parseJSON(ctx context.Context, uri string, src []rune, opts ...parsec.Option) (any, error) {
	return json.Decode(string(src), opts...)
}

func parseTokens(ctx context.Context, uri string, src []rune, opts ...parsec.Option) (any, error) {
	tokens, err := lexer.TokenizeRunes(src, opts...)
	if err != nil {
		return nil, err
	}
	significant, err := lexer.Significant(ctx, tokens)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(significant))
	for _, t := range significant {
		out = append(out, t.String())
	}
	return out, nil
}

// runToy executes the program and yields everything it printed.
func runToy(ctx context.Context, uri string, src []rune, opts ...parsec.Option) (any, error) {
	var out bytes.Buffer
	if err := toy.Run(ctx, string(src), &out, opts...); err != nil {
		var e exc.Exception
		if errors.As(err, &e) && e.Location().URI == "" {
			loc := e.Location()
			loc.URI = uri
			return nil, exc.New(loc, e.Code(), e.Message())
		}
		return nil, err
	}
	return out.String(), nil
}

// ProtobufGrammar lowers proto3 files to descriptors. With Verify set every
// file is also parsed by protocompile and the two results must agree.
type ProtobufGrammar struct {
	Verify bool
}

func (self *ProtobufGrammar) Parse(ctx context.Context, uri string, src []rune, opts ...parsec.Option) (any, error) {
	fd, err := protobuf.Parse(uri, string(src), opts...)
	if err != nil {
		return nil, err
	}
	if !self.Verify {
		return fd, nil
	}
	ref, err := protobuf.Reference(uri, strings.NewReader(string(src)), exc.NewReporter(nil))
	if err != nil {
		return nil, exc.Wrap(exc.Location{URI: uri}, exc.CodeProtobufParseError, fmt.Errorf("accepted input that protocompile rejects: %w", err))
	}
	got, want := protobuf.Summarize(fd), protobuf.Summarize(ref)
	for x := 0; x < len(got) || x < len(want); x = x + 1 {
		var g, w string
		if x < len(got) {
			g = got[x]
		}
		if x < len(want) {
			w = want[x]
		}
		if g != w {
			return nil, exc.New(exc.Location{URI: uri}, exc.CodeProtobufParseError, fmt.Sprintf("descriptor differs from protocompile: have %q, want %q", g, w))
		}
	}
	return fd, nil
}
