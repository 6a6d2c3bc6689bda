// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package toy

import (
	"gopkg.microglot.org/parsec.go/internal/idl"
)

type Program struct {
	Body []Stmt
}

type Stmt interface {
	stmt()
}

type Expr interface {
	expr()
}

type (
	Let struct {
		Name  string
		Value Expr
		At    idl.Location
	}
	Assign struct {
		Name  string
		Value Expr
		At    idl.Location
	}
	If struct {
		Cond Expr
		Then []Stmt
		// Else is nil when there is no else branch. An else-if chain is an
		// Else holding a single *If.
		Else []Stmt
	}
	While struct {
		Cond Expr
		Body []Stmt
	}
	FuncDecl struct {
		Name   string
		Params []string
		Body   []Stmt
	}
	Return struct {
		// Value is nil for a bare return.
		Value Expr
	}
	Print struct {
		Args []Expr
	}
	ExprStmt struct {
		X Expr
	}
)

func (*Let) stmt()      {}
func (*Assign) stmt()   {}
func (*If) stmt()       {}
func (*While) stmt()    {}
func (*FuncDecl) stmt() {}
func (*Return) stmt()   {}
func (*Print) stmt()    {}
func (*ExprStmt) stmt() {}

type (
	Number float64
	String string
	Bool   bool
	Nil    struct{}
	Ident  struct {
		Name string
		At   idl.Location
	}
	Unary struct {
		Op string
		X  Expr
		At idl.Location
	}
	// Binary covers arithmetic, comparison and the short-circuit && and ||.
	Binary struct {
		Op    string
		Left  Expr
		Right Expr
		At    idl.Location
	}
	Call struct {
		Callee Expr
		Args   []Expr
		At     idl.Location
	}
	FuncLit struct {
		Params []string
		Body   []Stmt
	}
)

func (Number) expr()   {}
func (String) expr()   {}
func (Bool) expr()     {}
func (Nil) expr()      {}
func (*Ident) expr()   {}
func (*Unary) expr()   {}
func (*Binary) expr()  {}
func (*Call) expr()    {}
func (*FuncLit) expr() {}
