// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package boolexpr

import (
	"fmt"
	"strconv"
)

// UndefinedError reports a variable that has no binding.
type UndefinedError struct {
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("undefined variable %q", e.Name)
}

// Expr is a boolean expression tree.
type Expr interface {
	Eval(vars map[string]bool) (bool, error)
	String() string
}

type Const bool

func (c Const) Eval(map[string]bool) (bool, error) {
	return bool(c), nil
}

func (c Const) String() string {
	return strconv.FormatBool(bool(c))
}

type Var string

func (v Var) Eval(vars map[string]bool) (bool, error) {
	b, ok := vars[string(v)]
	if !ok {
		return false, &UndefinedError{Name: string(v)}
	}
	return b, nil
}

func (v Var) String() string {
	return string(v)
}

type Not struct {
	Operand Expr
}

func (n *Not) Eval(vars map[string]bool) (bool, error) {
	b, err := n.Operand.Eval(vars)
	return !b, err
}

func (n *Not) String() string {
	return "(not " + n.Operand.String() + ")"
}

// Op is a binary connective.
type Op uint8

const (
	OpAnd Op = iota
	OpOr
	OpXor
)

func (o Op) String() string {
	switch o {
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpXor:
		return "xor"
	default:
		return fmt.Sprintf("op-%d", o)
	}
}

// Binary evaluates its right operand only when the left one does not
// decide the result.
type Binary struct {
	Op    Op
	Left  Expr
	Right Expr
}

func (b *Binary) Eval(vars map[string]bool) (bool, error) {
	l, err := b.Left.Eval(vars)
	if err != nil {
		return false, err
	}
	switch {
	case b.Op == OpAnd && !l:
		return false, nil
	case b.Op == OpOr && l:
		return true, nil
	}
	r, err := b.Right.Eval(vars)
	if err != nil {
		return false, err
	}
	if b.Op == OpXor {
		return l != r, nil
	}
	return r, nil
}

func (b *Binary) String() string {
	return "(" + b.Left.String() + " " + b.Op.String() + " " + b.Right.String() + ")"
}
