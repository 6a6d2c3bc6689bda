// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

/*
Package parsec is a parser combinator engine. Grammars are assembled from
small parsers that match elements of an input sequence and combinators that
sequence, choose between, repeat and transform them.

# Parsers and positions

A Parser[E, T] is a function from a Position[E] to a Result[E, T]. E is the
element type of the input (rune for text, or any token type) and T is the
type of value produced. Positions are immutable cursors, so backtracking is
keeping an old Position around and trying again from it. Building a grammar
performs no scanning; invoking it does.

	digits := Recognize(Many1(Digit()))
	sum := ChainLeft(Lexeme(number), MapTo(Lexeme(Char('+')), add))
	v, err := Parse(sum, "1 + 2 + 3")

# Failures

A failed Result carries a *Failure classified by Kind. Mismatch and
end-of-input failures are recoverable: Or, OneOf, Opt, Not and the
repetition combinators absorb them and try something else from the original
cursor. A failed Result's Remainder is always the cursor the parser was
invoked at, so a failing sequence never leaks partial consumption.

OneOf reports KindNoAlternative at its own start when nothing matched. That
message is generic by design of ordered choice; to report where a grammar
actually went wrong, commit with Fatal or Must once an alternative has seen
enough input to be certain:

	ifStmt := Seq3(keyword("if"), Must(condition, "condition"), Must(block, "block"), newIf)

A fatal failure skips every recovering combinator and reaches Parse, which
returns it as the error. Failure formats as "at row R, col C: message".

# Repetition

Unbounded loops (Many, Many1, SepBy, the chains and Repeat with a negative
max) stop the first time an iteration matches without consuming input; that
iteration's value is kept once. This makes them terminate even over
operands that can match the empty input. A bounded Repeat or Times runs
every iteration up to max, so Times(Opt(p, d), 3) always yields three
values.

# Recursion

Recursive rules are wired through Lazy or Ref. Each indirection counts one
level of depth and exceeding the limit set by OptionWithMaxDepth (default
DefaultMaxDepth) is a fatal failure wrapping ErrMaxDepth rather than a stack
overflow. There is no memoization: heavily backtracking grammars can take
exponential time.
*/
package parsec
