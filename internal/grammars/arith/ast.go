// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package arith

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrDivisionByZero is returned by Eval for x/0 and x%0.
var ErrDivisionByZero = errors.New("division by zero")

// Node is an arithmetic expression tree.
type Node interface {
	Eval() (float64, error)
	String() string
}

type Number float64

func (n Number) Eval() (float64, error) {
	return float64(n), nil
}

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

type Negate struct {
	Operand Node
}

func (n *Negate) Eval() (float64, error) {
	v, err := n.Operand.Eval()
	if err != nil {
		return 0, err
	}
	return -v, nil
}

func (n *Negate) String() string {
	return "(-" + n.Operand.String() + ")"
}

// Binary is an infix operation. Op is one of + - * / % ^.
type Binary struct {
	Op    rune
	Left  Node
	Right Node
}

func (b *Binary) Eval() (float64, error) {
	l, err := b.Left.Eval()
	if err != nil {
		return 0, err
	}
	r, err := b.Right.Eval()
	if err != nil {
		return 0, err
	}
	switch b.Op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		if r == 0 {
			return 0, ErrDivisionByZero
		}
		return l / r, nil
	case '%':
		if r == 0 {
			return 0, ErrDivisionByZero
		}
		return math.Mod(l, r), nil
	case '^':
		return math.Pow(l, r), nil
	default:
		return 0, fmt.Errorf("unknown operator %q", b.Op)
	}
}

func (b *Binary) String() string {
	return "(" + b.Left.String() + " " + string(b.Op) + " " + b.Right.String() + ")"
}
