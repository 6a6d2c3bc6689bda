// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package toy

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.microglot.org/parsec.go/internal/exc"
	"gopkg.microglot.org/parsec.go/internal/idl"
	"gopkg.microglot.org/parsec.go/internal/parsec"
)

// DefaultMaxCallDepth bounds nested function calls.
const DefaultMaxCallDepth = 1000

// Function is a closure: a function literal or declaration together with the
// scope it was created in.
type Function struct {
	Name   string
	Params []string
	Body   []Stmt
	Env    *Env
}

// Builtin is a function implemented in Go.
type Builtin struct {
	Name  string
	Arity int
	Fn    func(args []any) (any, error)
}

type Interpreter struct {
	out          io.Writer
	globals      *Env
	maxCallDepth int
	depth        int
}

type Option func(in *Interpreter)

func OptionWithMaxCallDepth(depth int) Option {
	return func(in *Interpreter) {
		in.maxCallDepth = depth
	}
}

// OptionWithGlobal binds a value in the global scope before execution.
func OptionWithGlobal(name string, v any) Option {
	return func(in *Interpreter) {
		in.globals.Define(name, v)
	}
}

// NewInterpreter returns an interpreter whose print statements write to out.
// An Interpreter keeps its globals across Exec calls and is not safe for
// concurrent use.
func NewInterpreter(out io.Writer, opts ...Option) *Interpreter {
	in := &Interpreter{
		out:          out,
		globals:      NewEnv(nil),
		maxCallDepth: DefaultMaxCallDepth,
	}
	for _, b := range builtins {
		in.globals.Define(b.Name, b)
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

var builtins = []*Builtin{
	{Name: "len", Arity: 1, Fn: func(args []any) (any, error) {
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("len of %s", typeName(args[0]))
		}
		return float64(utf8.RuneCountInString(s)), nil
	}},
	{Name: "str", Arity: 1, Fn: func(args []any) (any, error) {
		return Format(args[0]), nil
	}},
}

func runtimeError(at idl.Location, format string, args ...any) error {
	return exc.New(exc.Location{Location: at}, exc.CodeEvaluation, fmt.Sprintf(format, args...))
}

// Exec runs a program in the interpreter's global scope. Cancelling ctx
// stops loops and calls at their next iteration.
func (in *Interpreter) Exec(ctx context.Context, p *Program) error {
	_, _, err := in.block(ctx, p.Body, in.globals)
	return err
}

// block runs stmts in env. returned reports whether a return statement
// ended it, in which case v is the returned value.
func (in *Interpreter) block(ctx context.Context, stmts []Stmt, env *Env) (v any, returned bool, err error) {
	for _, s := range stmts {
		v, returned, err = in.stmt(ctx, s, env)
		if err != nil || returned {
			return v, returned, err
		}
	}
	return nil, false, nil
}

func (in *Interpreter) stmt(ctx context.Context, s Stmt, env *Env) (any, bool, error) {
	switch s := s.(type) {
	case *Let:
		v, err := in.eval(ctx, s.Value, env)
		if err != nil {
			return nil, false, err
		}
		env.Define(s.Name, v)
	case *Assign:
		v, err := in.eval(ctx, s.Value, env)
		if err != nil {
			return nil, false, err
		}
		if !env.Assign(s.Name, v) {
			return nil, false, runtimeError(s.At, "assignment to undefined variable %q", s.Name)
		}
	case *If:
		c, err := in.eval(ctx, s.Cond, env)
		if err != nil {
			return nil, false, err
		}
		if Truthy(c) {
			return in.block(ctx, s.Then, NewEnv(env))
		}
		if s.Else != nil {
			return in.block(ctx, s.Else, NewEnv(env))
		}
	case *While:
		for {
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}
			c, err := in.eval(ctx, s.Cond, env)
			if err != nil {
				return nil, false, err
			}
			if !Truthy(c) {
				break
			}
			v, returned, err := in.block(ctx, s.Body, NewEnv(env))
			if err != nil || returned {
				return v, returned, err
			}
		}
	case *FuncDecl:
		env.Define(s.Name, &Function{Name: s.Name, Params: s.Params, Body: s.Body, Env: env})
	case *Return:
		if s.Value == nil {
			return nil, true, nil
		}
		v, err := in.eval(ctx, s.Value, env)
		return v, err == nil, err
	case *Print:
		parts := make([]string, 0, len(s.Args))
		for _, a := range s.Args {
			v, err := in.eval(ctx, a, env)
			if err != nil {
				return nil, false, err
			}
			parts = append(parts, Format(v))
		}
		if _, err := fmt.Fprintln(in.out, strings.Join(parts, " ")); err != nil {
			return nil, false, err
		}
	case *ExprStmt:
		_, err := in.eval(ctx, s.X, env)
		return nil, false, err
	default:
		return nil, false, fmt.Errorf("unknown statement %T", s)
	}
	return nil, false, nil
}

func (in *Interpreter) eval(ctx context.Context, e Expr, env *Env) (any, error) {
	switch e := e.(type) {
	case Number:
		return float64(e), nil
	case String:
		return string(e), nil
	case Bool:
		return bool(e), nil
	case Nil:
		return nil, nil
	case *Ident:
		v, ok := env.Lookup(e.Name)
		if !ok {
			return nil, runtimeError(e.At, "undefined variable %q", e.Name)
		}
		return v, nil
	case *FuncLit:
		return &Function{Params: e.Params, Body: e.Body, Env: env}, nil
	case *Unary:
		x, err := in.eval(ctx, e.X, env)
		if err != nil {
			return nil, err
		}
		if e.Op == "!" {
			return !Truthy(x), nil
		}
		n, ok := x.(float64)
		if !ok {
			return nil, runtimeError(e.At, "cannot negate %s", typeName(x))
		}
		return -n, nil
	case *Binary:
		return in.binary(ctx, e, env)
	case *Call:
		return in.call(ctx, e, env)
	default:
		return nil, fmt.Errorf("unknown expression %T", e)
	}
}

func (in *Interpreter) binary(ctx context.Context, e *Binary, env *Env) (any, error) {
	l, err := in.eval(ctx, e.Left, env)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "&&":
		if !Truthy(l) {
			return false, nil
		}
		r, err := in.eval(ctx, e.Right, env)
		return Truthy(r), err
	case "||":
		if Truthy(l) {
			return true, nil
		}
		r, err := in.eval(ctx, e.Right, env)
		return Truthy(r), err
	}
	r, err := in.eval(ctx, e.Right, env)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "==":
		return equal(l, r), nil
	case "!=":
		return !equal(l, r), nil
	case "+":
		ls, lok := l.(string)
		rs, rok := r.(string)
		if lok || rok {
			if !lok {
				ls = Format(l)
			}
			if !rok {
				rs = Format(r)
			}
			return ls + rs, nil
		}
	case "<", "<=", ">", ">=":
		if ls, ok := l.(string); ok {
			if rs, ok := r.(string); ok {
				return compare(e.Op, strings.Compare(ls, rs)), nil
			}
		}
	}
	ln, lok := l.(float64)
	rn, rok := r.(float64)
	if !lok || !rok {
		return nil, runtimeError(e.At, "operator %s does not apply to %s and %s", e.Op, typeName(l), typeName(r))
	}
	switch e.Op {
	case "+":
		return ln + rn, nil
	case "-":
		return ln - rn, nil
	case "*":
		return ln * rn, nil
	case "/", "%":
		if rn == 0 {
			return nil, runtimeError(e.At, "division by zero")
		}
		if e.Op == "/" {
			return ln / rn, nil
		}
		return float64(int64(ln) % int64(rn)), nil
	case "<", "<=", ">", ">=":
		c := 0
		if ln < rn {
			c = -1
		} else if ln > rn {
			c = 1
		}
		return compare(e.Op, c), nil
	default:
		return nil, runtimeError(e.At, "unknown operator %s", e.Op)
	}
}

func compare(op string, c int) bool {
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	default:
		return c >= 0
	}
}

func equal(l, r any) bool {
	switch l.(type) {
	case nil, float64, string, bool, *Function, *Builtin:
		return l == r
	default:
		return false
	}
}

func (in *Interpreter) call(ctx context.Context, e *Call, env *Env) (any, error) {
	callee, err := in.eval(ctx, e.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]any, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := in.eval(ctx, a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	switch fn := callee.(type) {
	case *Builtin:
		if len(args) != fn.Arity {
			return nil, runtimeError(e.At, "%s expects %d arguments, got %d", fn.Name, fn.Arity, len(args))
		}
		v, err := fn.Fn(args)
		if err != nil {
			return nil, runtimeError(e.At, "%s", err.Error())
		}
		return v, nil
	case *Function:
		if len(args) != len(fn.Params) {
			return nil, runtimeError(e.At, "%s expects %d arguments, got %d", Format(fn), len(fn.Params), len(args))
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if in.maxCallDepth > 0 && in.depth >= in.maxCallDepth {
			return nil, runtimeError(e.At, "maximum call depth %d exceeded", in.maxCallDepth)
		}
		in.depth = in.depth + 1
		defer func() { in.depth = in.depth - 1 }()
		scope := NewEnv(fn.Env)
		for x, name := range fn.Params {
			scope.Define(name, args[x])
		}
		v, _, err := in.block(ctx, fn.Body, scope)
		return v, err
	default:
		return nil, runtimeError(e.At, "%s is not callable", typeName(callee))
	}
}

// Truthy reports whether v counts as true in a condition. Only false and
// nil are false.
func Truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		return true
	}
}

// Format renders a value the way print does.
func Format(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case *Function:
		if v.Name == "" {
			return "<fn>"
		}
		return "<fn " + v.Name + ">"
	case *Builtin:
		return "<builtin " + v.Name + ">"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case float64:
		return "number"
	case string:
		return "string"
	case bool:
		return "bool"
	case *Function, *Builtin:
		return "function"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Run parses src and executes it with a fresh interpreter.
func Run(ctx context.Context, src string, out io.Writer, opts ...parsec.Option) error {
	p, err := Parse(src, opts...)
	if err != nil {
		return err
	}
	return NewInterpreter(out).Exec(ctx, p)
}
