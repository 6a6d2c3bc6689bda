// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package parsec

// DefaultMaxDepth bounds how many Lazy or Ref indirections may be active at
// once. Each level costs several Go stack frames per combinator on the path,
// so this keeps deeply nested input from exhausting the stack. Exceeding it
// produces a fatal failure wrapping ErrMaxDepth.
const DefaultMaxDepth = 4096

// Parser consumes a prefix of the input at a cursor and reports a Result.
// Parsers are plain function values; combinators only read their operands,
// so a finished grammar is immutable and may be invoked concurrently.
type Parser[E, T any] func(pos Position[E]) Result[E, T]

// Or is shorthand for Or(p, q).
func (p Parser[E, T]) Or(q Parser[E, T]) Parser[E, T] {
	return Or(p, q)
}

// Fatal is shorthand for Fatal(p, build).
func (p Parser[E, T]) Fatal(build ErrorBuilder) Parser[E, T] {
	return Fatal(p, build)
}

// Must is shorthand for Must(p, what).
func (p Parser[E, T]) Must(what string) Parser[E, T] {
	return Must(p, what)
}

// Label is shorthand for Label(p, name).
func (p Parser[E, T]) Label(name string) Parser[E, T] {
	return Label(p, name)
}

// Opt is shorthand for Opt(p, def).
func (p Parser[E, T]) Opt(def T) Parser[E, T] {
	return Opt(p, def)
}

type config struct {
	uri        string
	maxDepth   int
	consumeAll bool
}

func newConfig(opts []Option) *config {
	cfg := &config{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Option configures a parse.
type Option func(c *config)

// OptionWithURI names the input in failure locations.
func OptionWithURI(uri string) Option {
	return func(c *config) {
		c.uri = uri
	}
}

// OptionWithMaxDepth overrides DefaultMaxDepth. Zero or negative disables
// the limit.
func OptionWithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// OptionWithConsumeAll makes Parse fail when the parser matches without
// consuming the whole input.
func OptionWithConsumeAll() Option {
	return func(c *config) {
		c.consumeAll = true
	}
}

// Parse runs p over the code points of input. The returned error, when not
// nil, is a *Failure.
func Parse[T any](p Parser[rune, T], input string, opts ...Option) (T, error) {
	return ParseRunes(p, []rune(input), opts...)
}

// ParseRunes is Parse over an already decoded input.
func ParseRunes[T any](p Parser[rune, T], input []rune, opts ...Option) (T, error) {
	return run(p, start(input, isNewline, opts), opts)
}

// ParseElements runs p over an arbitrary element sequence.
func ParseElements[E, T any](p Parser[E, T], elems []E, opts ...Option) (T, error) {
	return run(p, start(elems, nil, opts), opts)
}

func run[E, T any](p Parser[E, T], pos Position[E], opts []Option) (T, error) {
	var zero T
	r := p(pos)
	if !r.OK() {
		return zero, r.Failure()
	}
	if newConfig(opts).consumeAll && !r.Remainder().AtEnd() {
		rem := r.Remainder()
		return zero, mismatch(rem, "unexpected trailing input %s", excerpt(rem, 16))
	}
	return r.Value(), nil
}
